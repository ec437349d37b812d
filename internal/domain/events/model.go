package events

import "time"

// Event es un slot de calendario. El OwnerID cambia solo al aceptarse un swap.
type Event struct {
	ID      string
	OwnerID string

	Title string

	StartTime time.Time
	EndTime   time.Time

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

