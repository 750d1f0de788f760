// ABOUTME: Activity store with contact, deal and type lookups
// ABOUTME: Lookups return activities newest first
package db

import (
	"context"
	"sort"
	"time"

	"github.com/harperreed/dealboard/models"
)

type ActivityStore struct {
	*Store[models.Activity, *models.Activity]
}

func NewActivityStore(seed []models.Activity, opts StoreOptions) *ActivityStore {
	s := NewStore[models.Activity]("activity", seed, opts)
	s.beforeCreate = func(a *models.Activity, now time.Time) {
		a.CreatedAt = now
		if a.Date.IsZero() {
			a.Date = now
		}
	}
	s.keep = func(a *models.Activity, stored models.Activity) {
		a.CreatedAt = stored.CreatedAt
	}
	return &ActivityStore{Store: s}
}

func (s *ActivityStore) GetByContactID(ctx context.Context, contactID int) ([]models.Activity, error) {
	return s.newestFirst(ctx, func(a models.Activity) bool { return a.ContactID == contactID })
}

func (s *ActivityStore) GetByDealID(ctx context.Context, dealID int) ([]models.Activity, error) {
	return s.newestFirst(ctx, func(a models.Activity) bool { return a.DealID == dealID })
}

func (s *ActivityStore) GetByType(ctx context.Context, kind models.ActivityType) ([]models.Activity, error) {
	return s.newestFirst(ctx, func(a models.Activity) bool { return a.Type == kind })
}

// Recent returns every activity, newest first.
func (s *ActivityStore) Recent(ctx context.Context) ([]models.Activity, error) {
	return s.newestFirst(ctx, func(models.Activity) bool { return true })
}

func (s *ActivityStore) newestFirst(ctx context.Context, keep func(models.Activity) bool) ([]models.Activity, error) {
	activities, err := s.Filter(ctx, keep)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Date.After(activities[j].Date)
	})
	return activities, nil
}
