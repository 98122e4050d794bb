package domain

// Audit events emitted by the modify-in-place rental operations. Consumed by
// off-core observers (UI, indexers); the engine never reads them back.
const (
	EventRentalAdjusted    = "rental_adjusted"
	EventRentalRenewed     = "rental_renewed"
	EventRentalTransferred = "rental_transferred"
	EventRentalExtended    = "rental_extended"
)

type Event struct {
	ID        string
	Type      string
	RentalID  string
	Actor     string
	Fields    map[string]any
	CreatedAt int64
}
