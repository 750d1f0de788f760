// ABOUTME: Pipeline board state and the drag-and-drop stage transition
// ABOUTME: Moves are confirmed by the deal store before the board changes
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/forms"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/notify"
	"go.uber.org/zap"
)

// MoveFailedMessage is shown when the store rejects a stage change.
const MoveFailedMessage = "Failed to update deal stage"

// DealStore is the deal store surface the board needs.
type DealStore interface {
	GetAll(ctx context.Context) ([]models.Deal, error)
	Update(ctx context.Context, id int, patch models.Deal) (models.Deal, error)
}

// Column is one stage of the board with its deals and stats.
type Column struct {
	Stage models.Stage
	Deals []models.Deal
	Stats StageStats
}

// Board is the visible state of the pipeline: the deals last confirmed by
// the store, in store order.
type Board struct {
	store    DealStore
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.RWMutex
	deals []models.Deal
}

// BoardOption customizes a Board.
type BoardOption func(*Board)

func WithLogger(logger *zap.Logger) BoardOption {
	return func(b *Board) { b.logger = logger }
}

func WithClock(now func() time.Time) BoardOption {
	return func(b *Board) { b.now = now }
}

func NewBoard(store DealStore, notifier notify.Notifier, opts ...BoardOption) *Board {
	b := &Board{
		store:    store,
		notifier: notifier,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load replaces the board with the store's current deals.
func (b *Board) Load(ctx context.Context) error {
	deals, err := b.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load deals: %w", err)
	}
	b.mu.Lock()
	b.deals = deals
	b.mu.Unlock()
	return nil
}

// Deals returns a copy of the visible deals.
func (b *Board) Deals() []models.Deal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Deal, len(b.deals))
	for i, d := range b.deals {
		out[i] = d.Clone()
	}
	return out
}

// Deal looks up a visible deal.
func (b *Board) Deal(id int) (models.Deal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := b.indexOf(id)
	if i < 0 {
		return models.Deal{}, false
	}
	return b.deals[i].Clone(), true
}

func (b *Board) indexOf(id int) int {
	return slices.IndexFunc(b.deals, func(d models.Deal) bool { return d.ID == id })
}

// Columns groups the visible deals by stage in board order. Deals with an
// unknown stage appear in no column.
func (b *Board) Columns() []Column {
	deals := b.Deals()
	summary := Aggregate(deals)
	cols := make([]Column, len(models.Stages))
	for i, stage := range models.Stages {
		cols[i] = Column{Stage: stage, Stats: summary.Stage(stage)}
	}
	for _, d := range deals {
		if i := d.Stage.Index(); i >= 0 {
			cols[i].Deals = append(cols[i].Deals, d)
		}
	}
	return cols
}

// Summary aggregates the visible deals.
func (b *Board) Summary() Summary {
	return Aggregate(b.Deals())
}

// Replace puts a confirmed record on the board, appending it if new.
func (b *Board) Replace(deal models.Deal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(deal.ID); i >= 0 {
		b.deals[i] = deal.Clone()
		return
	}
	b.deals = append(b.deals, deal.Clone())
}

// Remove drops a deal from the board.
func (b *Board) Remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(id); i >= 0 {
		b.deals = slices.Delete(b.deals, i, i+1)
	}
}

// Move drops a deal onto the target stage column.
//
// Dropping onto the deal's current stage does nothing. Otherwise only stage
// and updated_at are written through the store; probability is left alone.
// The board changes only after the store confirms, and the user gets one
// notification either way, sent to the board's notifier and to any notifier
// attached to ctx with notify.WithNotifier. A caller that abandons ctx gets
// ctx's error and no notification.
func (b *Board) Move(ctx context.Context, dealID int, target models.Stage) (models.Deal, error) {
	notifier := notify.From(ctx, b.notifier)
	current, ok := b.Deal(dealID)
	if !ok {
		err := fmt.Errorf("deal with ID %d: %w", dealID, db.ErrNotFound)
		notify.Report(notifier, b.logger, err)
		return models.Deal{}, err
	}
	if !target.Valid() {
		err := &forms.ValidationError{}
		err.Add("stage", "Must be one of: "+strings.Join(models.StageNames(), ", "))
		notify.Report(notifier, b.logger, err)
		return current, err
	}
	if current.Stage == target {
		return current, nil
	}

	updated, err := b.store.Update(ctx, dealID, models.Deal{Stage: target, UpdatedAt: b.now()})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return current, err
		}
		b.logger.Error("failed to update deal stage",
			zap.Int("deal_id", dealID),
			zap.Stringer("target", target),
			zap.Error(err))
		notifier.Failure(MoveFailedMessage)
		return current, err
	}

	b.Replace(updated)
	b.logger.Info("deal moved",
		zap.Int("deal_id", dealID),
		zap.Stringer("from", current.Stage),
		zap.Stringer("to", target))
	notifier.Success(fmt.Sprintf("Deal moved to %s", target))
	return updated, nil
}
