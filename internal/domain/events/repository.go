package events

import "context"

// Repository es el Event Store. Los adapters devuelven ErrNotFound si el id no existe.
type Repository interface {
	Create(ctx context.Context, e Event) error
	GetByID(ctx context.Context, id string) (Event, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Event, error)
	ListByStatus(ctx context.Context, status Status) ([]Event, error)
	Update(ctx context.Context, e Event) error
	Delete(ctx context.Context, id string) error
}

// Store agrega el repo "suelto" (lecturas) y un runner transaccional.
// Las ediciones directas del dueño corren dentro de RunInEventTx para que el
// chequeo de status y la escritura no se intercalen con el motor de swaps.
type Store interface {
	Events() Repository
	RunInEventTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
