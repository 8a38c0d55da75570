package application

import (
	"context"

	"github.com/mateusmacedo/van-bff/pkg/domain"
)

// CommandHandler executa um comando. Comandos não devolvem dados; quem precisa
// do estado resultante despacha uma query em seguida.
type CommandHandler[C domain.Command[T], T any] interface {
	Handle(ctx context.Context, command C) error
}

// CommandBus roteia comandos pelo nome para o manipulador registrado.
type CommandBus[C domain.Command[T], T any] interface {
	RegisterHandler(commandName string, handler CommandHandler[C, T])
	Dispatch(ctx context.Context, command C) error
}
