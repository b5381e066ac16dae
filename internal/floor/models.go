package floor

import "time"

// TableStatus is the canonical status owned by the remote system of record.
// Only confirmed remote mutations change it.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

type Table struct {
	ID       string
	Number   int // staff-facing, unique
	Capacity int
	SalonID  string
	Status   TableStatus
}

// Salon groups tables into a floor or section.
type Salon struct {
	ID       string
	Name     string
	Capacity int
}

type Reservation struct {
	ID        string
	TableID   string
	PartySize int
	At        time.Time
	Special   bool // special reservations warn on a shorter window before start
}
