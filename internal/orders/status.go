package orders

type Status string

const (
	StatusDraft     Status = "DRAFT"     // client-only, no remote id
	StatusConfirmed Status = "CONFIRMED" // saved remotely, table occupied
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Transitions are monotonic per table: a confirmed order never goes back to
// draft without an explicit cancel. Updates keep a confirmed order confirmed.
var validNext = map[Status]map[Status]bool{
	StatusDraft:     {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusConfirmed: true, StatusPaid: true, StatusCancelled: true},
	StatusPaid:      {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
