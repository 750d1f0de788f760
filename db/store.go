// ABOUTME: Generic in-memory record store with simulated latency
// ABOUTME: Provides CRUD, filtering and patch merging shared by every entity store
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/imdario/mergo"
)

var (
	// ErrNotFound is the only failure a store raises for a well formed call.
	ErrNotFound = errors.New("record not found")
	// ErrFieldExists is returned when a table already has a field with that name.
	ErrFieldExists = errors.New("field with this name already exists")
	// ErrFieldNotFound is returned when a table has no field with that name.
	ErrFieldNotFound = errors.New("field not found")
)

// Record is implemented by pointers to the model types held in a Store.
type Record[T any] interface {
	*T
	RecordID() int
	SetRecordID(id int)
	Clone() T
}

// StoreOptions configures latency and the clock for a Store.
type StoreOptions struct {
	Latency time.Duration
	Now     func() time.Time
}

// Store owns one entity collection. Every call waits the configured latency
// before touching the collection; a caller that abandons the context before
// then gets ctx.Err() and nothing is read or written. The mutex only keeps
// memory safe, concurrent writes to one record are last-write-wins.
type Store[T any, P Record[T]] struct {
	name    string
	latency time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	items []T

	beforeCreate func(rec P, now time.Time)
	beforeUpdate func(rec P, now time.Time)
	// keep copies fields a full replacement must not change, such as
	// creation stamps, from the stored record onto the replacement.
	keep func(rec P, stored T)
}

// NewStore seeds a store with copies of the given records.
func NewStore[T any, P Record[T]](name string, seed []T, opts StoreOptions) *Store[T, P] {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	items := make([]T, 0, len(seed))
	for _, rec := range seed {
		items = append(items, P(&rec).Clone())
	}
	return &Store[T, P]{
		name:    name,
		latency: opts.Latency,
		now:     now,
		items:   items,
	}
}

// Name is the entity label used in error messages.
func (s *Store[T, P]) Name() string {
	return s.name
}

// Now returns the store clock's current time.
func (s *Store[T, P]) Now() time.Time {
	return s.now()
}

func (s *Store[T, P]) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store[T, P]) notFound(id int) error {
	return fmt.Errorf("%s with ID %d: %w", s.name, id, ErrNotFound)
}

// indexOf must be called with the lock held.
func (s *Store[T, P]) indexOf(id int) int {
	return slices.IndexFunc(s.items, func(rec T) bool {
		return P(&rec).RecordID() == id
	})
}

// GetAll returns copies of every record in insertion order.
func (s *Store[T, P]) GetAll(ctx context.Context) ([]T, error) {
	return s.Filter(ctx, func(T) bool { return true })
}

// Filter returns copies of the records matching keep, in insertion order.
func (s *Store[T, P]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.items))
	for i := range s.items {
		if keep(s.items[i]) {
			out = append(out, P(&s.items[i]).Clone())
		}
	}
	return out, nil
}

func (s *Store[T, P]) GetByID(ctx context.Context, id int) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return zero, s.notFound(id)
	}
	return P(&s.items[i]).Clone(), nil
}

// Create assigns the next Id (highest existing plus one) and appends the
// record. Any Id set on rec is ignored.
func (s *Store[T, P]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for i := range s.items {
		maxID = max(maxID, P(&s.items[i]).RecordID())
	}
	created := P(&rec).Clone()
	P(&created).SetRecordID(maxID + 1)
	if s.beforeCreate != nil {
		s.beforeCreate(P(&created), s.now())
	}
	s.items = append(s.items, created)
	return P(&created).Clone(), nil
}

// Update merges the non-zero fields of patch over the stored record. The
// record keeps its original Id whatever the patch says. Use Replace to clear
// a field.
func (s *Store[T, P]) Update(ctx context.Context, id int, patch T) (T, error) {
	return s.Mutate(ctx, id, func(rec P) error {
		merged, err := mergePatch(*rec, patch)
		if err != nil {
			return err
		}
		*rec = merged
		if s.beforeUpdate != nil {
			s.beforeUpdate(rec, s.now())
		}
		return nil
	})
}

// Replace stores rec as the whole new state of the record, so zero values in
// rec clear the stored ones. The Id and anything the entity keeps (creation
// stamps) come from the stored record.
func (s *Store[T, P]) Replace(ctx context.Context, id int, rec T) (T, error) {
	return s.Mutate(ctx, id, func(stored P) error {
		next := P(&rec).Clone()
		if s.keep != nil {
			s.keep(P(&next), *stored)
		}
		if s.beforeUpdate != nil {
			s.beforeUpdate(P(&next), s.now())
		}
		*stored = next
		return nil
	})
}

// Mutate locates a record, applies fn to a copy and stores the copy when fn
// succeeds. The Id is restored after fn runs.
func (s *Store[T, P]) Mutate(ctx context.Context, id int, fn func(rec P) error) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return zero, s.notFound(id)
	}
	working := P(&s.items[i]).Clone()
	if err := fn(P(&working)); err != nil {
		return zero, err
	}
	P(&working).SetRecordID(id)
	s.items[i] = working
	return P(&working).Clone(), nil
}

// Delete removes the record and returns it.
func (s *Store[T, P]) Delete(ctx context.Context, id int) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return zero, s.notFound(id)
	}
	removed := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	return removed, nil
}

// Len reports the number of records without waiting.
func (s *Store[T, P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// mergePatch overlays the JSON-present fields of patch onto current. Model
// fields are tagged omitzero, so zero values in the patch leave the current
// value alone.
func mergePatch[T any](current, patch T) (T, error) {
	var out T
	base, err := toMap(current)
	if err != nil {
		return out, err
	}
	overlay, err := toMap(patch)
	if err != nil {
		return out, err
	}
	if err := mergo.Merge(&base, overlay, mergo.WithOverride); err != nil {
		return out, fmt.Errorf("failed to merge patch: %w", err)
	}
	data, err := json.Marshal(base)
	if err != nil {
		return out, fmt.Errorf("failed to encode merged record: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode merged record: %w", err)
	}
	return out, nil
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return m, nil
}
