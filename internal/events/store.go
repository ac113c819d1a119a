package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Store persists domain events in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// InsertDomainEvent appends one event and returns the persisted row.
func (s *Store) InsertDomainEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	if s == nil || s.Pool == nil {
		return Event{}, errors.New("event store not configured")
	}
	ev := Event{ID: uuid.New(), Topic: topic, AggregateID: aggregateID, Payload: payload}
	err := s.Pool.QueryRow(ctx, `INSERT INTO domain_events (id, topic, aggregate_id, payload)
		VALUES ($1, $2, $3, $4) RETURNING occurred_at`,
		ev.ID, ev.Topic, ev.AggregateID, ev.Payload).Scan(&ev.OccurredAt)
	if err != nil {
		return Event{}, fmt.Errorf("insert domain event: %w", err)
	}
	return ev, nil
}

// LogNotifier writes emitted events to the structured log.
type LogNotifier struct {
	Log zerolog.Logger
}

// Notify logs the event at info level.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	n.Log.Info().
		Str("topic", event.Topic).
		Str("aggregate_id", event.AggregateID.String()).
		RawJSON("payload", event.Payload).
		Msg("domain event")
	return nil
}
