// ABOUTME: Contact store with company lookup and last-contacted tracking
// ABOUTME: New contacts start with no last-contacted timestamp
package db

import (
	"context"
	"time"

	"github.com/harperreed/dealboard/models"
)

type ContactStore struct {
	*Store[models.Contact, *models.Contact]
}

func NewContactStore(seed []models.Contact, opts StoreOptions) *ContactStore {
	s := NewStore[models.Contact]("contact", seed, opts)
	s.beforeCreate = func(c *models.Contact, now time.Time) {
		c.CreatedAt = now
		c.LastContactedAt = nil
	}
	s.keep = func(c *models.Contact, stored models.Contact) {
		c.CreatedAt = stored.CreatedAt
	}
	return &ContactStore{Store: s}
}

// UpdateLastContacted stamps the contact's last-contacted time with now.
func (s *ContactStore) UpdateLastContacted(ctx context.Context, id int) (models.Contact, error) {
	return s.Mutate(ctx, id, func(c *models.Contact) error {
		now := s.now()
		c.LastContactedAt = &now
		return nil
	})
}

func (s *ContactStore) GetByCompanyID(ctx context.Context, companyID int) ([]models.Contact, error) {
	return s.Filter(ctx, func(c models.Contact) bool {
		return c.CompanyID == companyID
	})
}

func (s *ContactStore) GetByStatus(ctx context.Context, status models.ContactStatus) ([]models.Contact, error) {
	return s.Filter(ctx, func(c models.Contact) bool {
		return c.Status == status
	})
}
