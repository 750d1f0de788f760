// ABOUTME: Deal store with contact and stage lookups
// ABOUTME: Stamps created and updated timestamps on write
package db

import (
	"context"
	"time"

	"github.com/harperreed/dealboard/models"
)

type DealStore struct {
	*Store[models.Deal, *models.Deal]
}

func NewDealStore(seed []models.Deal, opts StoreOptions) *DealStore {
	s := NewStore[models.Deal]("deal", seed, opts)
	s.beforeCreate = func(d *models.Deal, now time.Time) {
		d.CreatedAt = now
		d.UpdatedAt = now
	}
	s.beforeUpdate = func(d *models.Deal, now time.Time) {
		d.UpdatedAt = now
	}
	s.keep = func(d *models.Deal, stored models.Deal) {
		d.CreatedAt = stored.CreatedAt
	}
	return &DealStore{Store: s}
}

func (s *DealStore) GetByContactID(ctx context.Context, contactID int) ([]models.Deal, error) {
	return s.Filter(ctx, func(d models.Deal) bool {
		return d.ContactID == contactID
	})
}

func (s *DealStore) GetByStage(ctx context.Context, stage models.Stage) ([]models.Deal, error) {
	return s.Filter(ctx, func(d models.Deal) bool {
		return d.Stage == stage
	})
}
