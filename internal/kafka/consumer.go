package kafka

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler must return nil only when processing succeeded and the offset may
// be committed.
type Handler func(ctx context.Context, m kafka.Message) error

// messageSource is the slice of kafka.Reader the consume loop needs.
type messageSource interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer drains one topic into a handler with a small worker pool and
// manual commits: an event is committed only after the handler accepted it,
// so a crash mid-batch redelivers instead of losing audit entries.
type Consumer struct {
	src     messageSource
	group   string
	topic   string
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{src: r, group: group, topic: topic, workers: workers}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.src.Close()

	jobs := make(chan kafka.Message, 1024)
	errs := make(chan error, c.workers)

	for i := 0; i < c.workers; i++ {
		go c.work(ctx, i, jobs, errs, h)
	}

	for {
		m, err := c.src.ReadMessage(ctx)
		if err != nil {
			close(jobs)
			// quiet exit on shutdown
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			return nil
		}

		// drain worker errors without blocking the dispatch loop
		select {
		case e := <-errs:
			log.Printf("consumer %s/%s: %v", c.group, c.topic, e)
			time.Sleep(200 * time.Millisecond)
		default:
		}
	}
}

func (c *Consumer) work(ctx context.Context, id int, jobs <-chan kafka.Message, errs chan<- error, h Handler) {
	for m := range jobs {
		if err := h(ctx, m); err != nil {
			// leave the offset uncommitted; the group redelivers
			log.Printf("consumer %s/%s worker %d: offset %d kept for redelivery", c.group, c.topic, id, m.Offset)
			errs <- err
			continue
		}
		if err := c.src.CommitMessages(ctx, m); err != nil {
			errs <- err
		}
	}
}
