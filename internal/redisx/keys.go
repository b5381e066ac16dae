package redisx

import "time"

const (
	// Fallback cache blobs, overwritten on every successful refresh.
	// Never a second source of truth while the remote is reachable.

	// table status by staff-facing number: floor:table_status:{number}
	KeyTableStatus = "floor:table_status:%d"

	// confirmed order for a table: floor:order:table:{table_id}
	KeyTableOrder = "floor:order:table:%s"

	// completed orders audit list (RPUSH)
	KeyCompletedOrders = "floor:orders:completed"

	// reservation blob: floor:reservation:{id}
	KeyReservation = "floor:reservation:%s"

	// dedup for audit event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLFallback  = 24 * time.Hour
	TTLCompleted = 7 * 24 * time.Hour
	TTLDedup     = 48 * time.Hour
)
