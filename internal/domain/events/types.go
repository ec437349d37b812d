package events

// Status del slot.
// @Enum BUSY, SWAPPABLE, SWAP_PENDING
type Status string

const (
	StatusBusy        Status = "BUSY"
	StatusSwappable   Status = "SWAPPABLE"
	StatusSwapPending Status = "SWAP_PENDING"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBusy, StatusSwappable, StatusSwapPending:
		return true
	default:
		return false
	}
}
