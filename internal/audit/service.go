package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
	"github.com/ariefcatur/go-resto-floor.git/internal/redisx"
)

// Service ingests the audit stream into the durable log.
type Service struct {
	Store       *Store
	Redis       *redis.Client
	ServiceName string
}

// HandleEvent is wired as the consumer handler for the audit topic.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventID == "" {
		return nil // not ours, skip without blocking the partition
	}

	// dedup via Redis; the insert is ON CONFLICT DO NOTHING anyway, this
	// just keeps redelivered batches cheap
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}

	if err := s.Store.Insert(ctx, env); err != nil {
		return err
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	return nil
}
