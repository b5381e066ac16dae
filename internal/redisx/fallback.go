package redisx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-resto-floor.git/internal/floor"
	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
)

// Fallback persists keyed JSON blobs that survive a process restart. They
// are written through on every successful refresh and lifecycle transition,
// and read back only when the remote is unreachable at startup.
type Fallback struct {
	R *redis.Client
}

func (f *Fallback) SaveTableStatuses(ctx context.Context, tables map[string]floor.Table) {
	for _, t := range tables {
		b, err := json.Marshal(map[string]string{"status": string(t.Status)})
		if err != nil {
			continue
		}
		key := fmt.Sprintf(KeyTableStatus, t.Number)
		_ = f.R.Set(ctx, key, b, TTLFallback).Err()
	}
}

func (f *Fallback) SaveOrder(ctx context.Context, o orders.Order) {
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	key := fmt.Sprintf(KeyTableOrder, o.TableID)
	_ = f.R.Set(ctx, key, b, TTLFallback).Err()
}

func (f *Fallback) DropOrder(ctx context.Context, tableID string) {
	_ = f.R.Del(ctx, fmt.Sprintf(KeyTableOrder, tableID)).Err()
}

func (f *Fallback) AppendCompleted(ctx context.Context, o orders.Order) {
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	_ = f.R.RPush(ctx, KeyCompletedOrders, b).Err()
	_ = f.R.Expire(ctx, KeyCompletedOrders, TTLCompleted).Err()
}

func (f *Fallback) SaveReservations(ctx context.Context, rs []floor.Reservation) {
	for _, r := range rs {
		b, err := json.Marshal(r)
		if err != nil {
			continue
		}
		_ = f.R.Set(ctx, fmt.Sprintf(KeyReservation, r.ID), b, TTLFallback).Err()
	}
}

func (f *Fallback) DropReservation(ctx context.Context, id string) {
	_ = f.R.Del(ctx, fmt.Sprintf(KeyReservation, id)).Err()
}

// LoadOrders restores cached open orders, keyed by table id. Used only when
// the very first refresh fails and there is no snapshot to serve.
func (f *Fallback) LoadOrders(ctx context.Context) map[string]orders.Order {
	out := map[string]orders.Order{}
	iter := f.R.Scan(ctx, 0, fmt.Sprintf(KeyTableOrder, "*"), 100).Iterator()
	for iter.Next(ctx) {
		b, err := f.R.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var o orders.Order
		if err := json.Unmarshal(b, &o); err != nil {
			continue
		}
		if o.TableID != "" {
			out[o.TableID] = o
		}
	}
	return out
}
