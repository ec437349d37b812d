package swaps

import "time"

// Status de una solicitud. ACCEPTED y REJECTED son terminales.
// @Enum PENDING, ACCEPTED, REJECTED
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// SwapRequest propone intercambiar OfferedEventID (del requester) por RequestedEventID.
type SwapRequest struct {
	ID string

	RequesterID      string
	OfferedEventID   string
	RequestedEventID string

	// Dueño del slot pedido al momento de crear la solicitud.
	// Define "incoming" y quién puede responder; no cambia con swaps posteriores.
	RequestedOwnerID string

	Status Status

	CreatedAt   time.Time
	UpdatedAt   time.Time
	RespondedAt *time.Time
}
