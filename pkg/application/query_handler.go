package application

import (
	"context"

	"github.com/mateusmacedo/van-bff/pkg/domain"
)

// QueryHandler responde uma consulta sem efeitos colaterais.
type QueryHandler[Q domain.Query[T], T any, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// QueryBus roteia consultas pelo nome para o manipulador registrado.
type QueryBus[Q domain.Query[D], D any, R any] interface {
	RegisterHandler(queryName string, handler QueryHandler[Q, D, R])
	Dispatch(ctx context.Context, query Q) (R, error)
}
