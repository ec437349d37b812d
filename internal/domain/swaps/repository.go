package swaps

import (
	"context"

	"slot-swapper/internal/domain/events"
)

// Repository es el Swap Request Store. Los adapters devuelven ErrNotFound si el id no existe.
type Repository interface {
	Create(ctx context.Context, r SwapRequest) error
	GetByID(ctx context.Context, id string) (SwapRequest, error)
	Update(ctx context.Context, r SwapRequest) error
	List(ctx context.Context) ([]SwapRequest, error)
}

// Tx expone ambos stores ligados a una misma transacción.
type Tx interface {
	Events() events.Repository
	Requests() Repository
}

// TxRunner ejecuta fn de forma atómica: si fn devuelve error no queda nada escrito.
// La implementación garantiza que ninguna otra mutación se intercala entre
// las lecturas y escrituras de fn.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Store: repos "sueltos" para lecturas + runner para las operaciones compuestas.
type Store interface {
	Tx
	TxRunner
}
