package adapter

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"

	"github.com/mateusmacedo/van-bff/pkg/application"
	"github.com/mateusmacedo/van-bff/pkg/domain"
)

const requestIDMetadata = "request_id"

// RetryConfig limita as novas tentativas de um manipulador que falhou. Esgotadas
// as tentativas a mensagem é confirmada e descartada com log de erro.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2,
	}
}

type Option func(*options)

type options struct {
	retry RetryConfig
}

func WithRetry(cfg RetryConfig) Option {
	return func(o *options) { o.retry = cfg }
}

// WatermillEventBus publica eventos como mensagens watermill, um tópico por nome
// de evento. Os manipuladores são chamados a partir da assinatura do tópico, de
// modo que o mesmo código serve para gochannel, redis streams e kafka.
type WatermillEventBus[E domain.Event[D], D any] struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	handlers   map[string][]application.EventHandler[E, D]
	mu         sync.RWMutex
	logger     application.AppLogger
	retry      RetryConfig
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func NewWatermillEventBus[E domain.Event[D], D any](publisher message.Publisher, subscriber message.Subscriber, logger application.AppLogger, opts ...Option) *WatermillEventBus[E, D] {
	o := options{retry: DefaultRetryConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WatermillEventBus[E, D]{
		publisher:  publisher,
		subscriber: subscriber,
		handlers:   make(map[string][]application.EventHandler[E, D]),
		logger:     logger,
		retry:      o.retry,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (bus *WatermillEventBus[E, D]) RegisterHandler(eventName string, handler application.EventHandler[E, D]) {
	bus.mu.Lock()
	_, subscribed := bus.handlers[eventName]
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
	bus.mu.Unlock()

	if subscribed {
		return
	}

	messages, err := bus.subscriber.Subscribe(bus.ctx, eventName)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error subscribing to event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		for msg := range messages {
			bus.handleMessage(eventName, msg)
		}
	}()
}

func (bus *WatermillEventBus[E, D]) handleMessage(eventName string, msg *message.Message) {
	ctx := bus.ctx
	if requestID := msg.Metadata.Get(requestIDMetadata); requestID != "" {
		ctx = context.WithValue(ctx, application.RequestIDKey, requestID)
	}

	var payload D
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		// payload inválido nunca vai decodificar; reentregar não adianta
		application.LogError(ctx, bus.logger, "error unmarshalling event payload", err, map[string]interface{}{
			"event_name": eventName,
			"message_id": msg.UUID,
		})
		msg.Ack()
		return
	}

	event := &dynamicEvent[D]{eventName: eventName, payload: payload}
	typedEvent, ok := interface{}(event).(E)
	if !ok {
		bus.logger.Error(ctx, "error asserting event type", map[string]interface{}{
			"event_name": eventName,
		})
		msg.Ack()
		return
	}

	bus.mu.RLock()
	handlers := append([]application.EventHandler[E, D](nil), bus.handlers[eventName]...)
	bus.mu.RUnlock()

	// cada manipulador que já concluiu não roda de novo nas novas tentativas
	done := make([]bool, len(handlers))
	deliver := func(*message.Message) ([]*message.Message, error) {
		for i, handler := range handlers {
			if done[i] {
				continue
			}
			if err := handler.Handle(ctx, typedEvent); err != nil {
				return nil, err
			}
			done[i] = true
		}
		return nil, nil
	}

	msg.SetContext(bus.ctx)
	retry := middleware.Retry{
		MaxRetries:      bus.retry.MaxRetries,
		InitialInterval: bus.retry.InitialInterval,
		MaxInterval:     bus.retry.MaxInterval,
		Multiplier:      bus.retry.Multiplier,
		Logger:          NewWatermillLoggerAdapter(bus.logger),
		OnRetryHook: func(retryNum int, delay time.Duration) {
			bus.logger.Debug(ctx, "retrying event handler", map[string]interface{}{
				"event_name": eventName,
				"message_id": msg.UUID,
				"retry":      retryNum,
				"delay":      delay.String(),
			})
		},
	}
	if _, err := retry.Middleware(deliver)(msg); err != nil {
		// sem fila de descarte: a mensagem é confirmada para não voltar em laço
		application.LogError(ctx, bus.logger, "event dropped after retries", err, map[string]interface{}{
			"event_name": eventName,
			"message_id": msg.UUID,
			"retries":    bus.retry.MaxRetries,
		})
		msg.Ack()
		return
	}

	bus.logger.Debug(ctx, "event handled", map[string]interface{}{
		"event_name": eventName,
		"message_id": msg.UUID,
	})
	msg.Ack()
}

func (bus *WatermillEventBus[E, D]) Publish(ctx context.Context, event E) error {
	eventName := event.EventName()

	payload, err := application.MarshalPayload(event.Payload())
	if err != nil {
		application.LogError(ctx, bus.logger, "error marshalling event payload", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if requestID := application.RequestID(ctx); requestID != "" {
		msg.Metadata.Set(requestIDMetadata, requestID)
	}

	if err := bus.publisher.Publish(eventName, msg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	bus.logger.Debug(ctx, "event published", map[string]interface{}{
		"event_name": eventName,
		"message_id": msg.UUID,
	})
	return nil
}

// Close encerra as assinaturas e espera os consumidores em andamento.
// O transporte em si é fechado por quem o criou.
func (bus *WatermillEventBus[E, D]) Close() {
	bus.cancel()
	bus.wg.Wait()
}

type dynamicEvent[D any] struct {
	eventName string
	payload   D
}

func (e *dynamicEvent[D]) EventName() string {
	return e.eventName
}

func (e *dynamicEvent[D]) Payload() D {
	return e.payload
}
