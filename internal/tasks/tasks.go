package tasks

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Task type names as they appear in the asynq queue.
const (
	TypeDiscountExpire = "discount:expire"
	TypeDraftPurge     = "draft:purge"
)

// NewDiscountExpireTask builds the periodic discount expiry sweep task.
func NewDiscountExpireTask() *asynq.Task {
	return asynq.NewTask(TypeDiscountExpire, nil)
}

// NewDraftPurgeTask builds the periodic stale-draft purge task.
func NewDraftPurgeTask() *asynq.Task {
	return asynq.NewTask(TypeDraftPurge, nil)
}

// DiscountSweeper deactivates discount rules whose window has closed.
type DiscountSweeper interface {
	ExpireSweep(ctx context.Context) (int64, error)
}

// DraftPurger removes drafts untouched for longer than the ttl.
type DraftPurger interface {
	PurgeStale(ctx context.Context, ttl time.Duration) (int, error)
}

// Handlers wires background task types to their domain services.
type Handlers struct {
	Discounts DiscountSweeper
	Drafts    DraftPurger
	DraftTTL  time.Duration
	Log       zerolog.Logger
	Observe   func(task, result string)
}

// Register attaches every handler to the mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeDiscountExpire, h.HandleDiscountExpire)
	mux.HandleFunc(TypeDraftPurge, h.HandleDraftPurge)
}

// HandleDiscountExpire deactivates rules past their end date.
func (h *Handlers) HandleDiscountExpire(ctx context.Context, _ *asynq.Task) error {
	n, err := h.Discounts.ExpireSweep(ctx)
	if err != nil {
		h.observe(TypeDiscountExpire, "error")
		h.Log.Error().Err(err).Msg("discount expiry sweep failed")
		return err
	}
	h.observe(TypeDiscountExpire, "success")
	if n > 0 {
		h.Log.Info().Int64("deactivated", n).Msg("discount rules expired")
	}
	return nil
}

// HandleDraftPurge deletes drafts untouched for longer than the configured ttl.
func (h *Handlers) HandleDraftPurge(ctx context.Context, _ *asynq.Task) error {
	n, err := h.Drafts.PurgeStale(ctx, h.DraftTTL)
	if err != nil {
		h.observe(TypeDraftPurge, "error")
		h.Log.Error().Err(err).Msg("draft purge failed")
		return err
	}
	h.observe(TypeDraftPurge, "success")
	if n > 0 {
		h.Log.Info().Int("purged", n).Msg("stale drafts removed")
	}
	return nil
}

func (h *Handlers) observe(task, result string) {
	if h.Observe != nil {
		h.Observe(task, result)
	}
}
