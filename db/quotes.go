// ABOUTME: Quote store with contact and status lookups
// ABOUTME: Stamps created and updated dates on write
package db

import (
	"context"
	"time"

	"github.com/harperreed/dealboard/models"
)

type QuoteStore struct {
	*Store[models.Quote, *models.Quote]
}

func NewQuoteStore(seed []models.Quote, opts StoreOptions) *QuoteStore {
	s := NewStore[models.Quote]("quote", seed, opts)
	s.beforeCreate = func(q *models.Quote, now time.Time) {
		q.CreatedDate = now
		q.UpdatedDate = now
		if q.Status == "" {
			q.Status = models.QuoteDraft
		}
	}
	s.beforeUpdate = func(q *models.Quote, now time.Time) {
		q.UpdatedDate = now
	}
	s.keep = func(q *models.Quote, stored models.Quote) {
		q.CreatedDate = stored.CreatedDate
	}
	return &QuoteStore{Store: s}
}

func (s *QuoteStore) GetByContactID(ctx context.Context, contactID int) ([]models.Quote, error) {
	return s.Filter(ctx, func(q models.Quote) bool {
		return q.ContactID == contactID
	})
}

func (s *QuoteStore) GetByStatus(ctx context.Context, status models.QuoteStatus) ([]models.Quote, error) {
	return s.Filter(ctx, func(q models.Quote) bool {
		return q.Status == status
	})
}
