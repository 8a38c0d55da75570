package domain

// Event representa um fato ocorrido no sistema, publicado no barramento de eventos.
type Event[T any] interface {
	EventName() string
	Payload() T
}

// IDGenerator gera identificadores únicos (requisições, mensagens, consumidores).
type IDGenerator[T any] func() T
