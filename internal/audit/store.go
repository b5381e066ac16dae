package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
)

// Store persists the order-history audit log.
type Store struct{ DB *pgxpool.Pool }

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (s *Store) Insert(ctx context.Context, env orders.Envelope) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO audit_events(event_id, event_type, occurred_at, producer, correlation_id, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING
	`, env.EventID, env.EventType, env.OccurredAt, env.Producer, env.CorrelationID, []byte(env.Payload))
	return err
}

// Recent returns the latest audit entries for a correlation id (usually an
// order id), newest first.
func (s *Store) Recent(ctx context.Context, correlationID string, limit int) ([]orders.Envelope, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.Query(ctx, `
		SELECT event_id, event_type, occurred_at, producer, correlation_id, payload
		FROM audit_events
		WHERE correlation_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`, correlationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.Envelope
	for rows.Next() {
		var env orders.Envelope
		var payload []byte
		if err := rows.Scan(&env.EventID, &env.EventType, &env.OccurredAt, &env.Producer, &env.CorrelationID, &payload); err != nil {
			return nil, err
		}
		env.EventVersion = 1
		env.Payload = payload
		out = append(out, env)
	}
	return out, rows.Err()
}
