package floor

import "time"

// EffectiveStatus is what staff actually see for a table: canonical status
// combined with reservation metadata and wall-clock time. It is derived on
// every read and never stored.
type EffectiveStatus string

const (
	StatusEmpty            EffectiveStatus = "empty"
	StatusOccupied         EffectiveStatus = "occupied"
	StatusReserved         EffectiveStatus = "reserved"
	StatusReservedImminent EffectiveStatus = "reserved-imminent"
	StatusReservedFuture   EffectiveStatus = "reserved-future"
)

const (
	imminentWindow = 59 * time.Minute
	futureWindow   = 60 * time.Minute
)

// Resolve computes the effective display status for a table.
//
// needsCorrection is true when the canonical status says reserved but no
// upcoming reservation backs it up (record missing, or its start time has
// already passed): the table resolves to empty and the caller should patch
// the canonical status back to available.
func Resolve(t Table, reservations []Reservation, now time.Time) (status EffectiveStatus, needsCorrection bool) {
	switch t.Status {
	case TableOccupied:
		return StatusOccupied, false
	case TableReserved:
		// fall through to reservation logic below
	default:
		return StatusEmpty, false
	}

	res, ok := nextUpcoming(t.ID, reservations, now)
	if !ok {
		// canonical says reserved but the reservation is gone or lapsed
		return StatusEmpty, true
	}

	delta := res.At.Sub(now)
	if res.Special && delta <= imminentWindow {
		return StatusReservedImminent, false
	}
	if delta > futureWindow {
		return StatusReservedFuture, false
	}
	return StatusReserved, false
}

// nextUpcoming picks the earliest reservation for the table that is still in
// the future. Records for other tables are ignored so callers may pass an
// unfiltered slice.
func nextUpcoming(tableID string, reservations []Reservation, now time.Time) (Reservation, bool) {
	var best Reservation
	found := false
	for _, r := range reservations {
		if r.TableID != tableID || !r.At.After(now) {
			continue
		}
		if !found || r.At.Before(best.At) {
			best = r
			found = true
		}
	}
	return best, found
}
