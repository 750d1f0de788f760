// ABOUTME: Company store
// ABOUTME: Stamps created and updated timestamps on write
package db

import (
	"context"
	"strings"
	"time"

	"github.com/harperreed/dealboard/models"
)

type CompanyStore struct {
	*Store[models.Company, *models.Company]
}

func NewCompanyStore(seed []models.Company, opts StoreOptions) *CompanyStore {
	s := NewStore[models.Company]("company", seed, opts)
	s.beforeCreate = func(c *models.Company, now time.Time) {
		c.CreatedAt = now
		c.UpdatedAt = now
	}
	s.beforeUpdate = func(c *models.Company, now time.Time) {
		c.UpdatedAt = now
	}
	s.keep = func(c *models.Company, stored models.Company) {
		c.CreatedAt = stored.CreatedAt
	}
	return &CompanyStore{Store: s}
}

// FindByName does a case-insensitive substring match on the company name.
func (s *CompanyStore) FindByName(ctx context.Context, query string) ([]models.Company, error) {
	q := strings.ToLower(query)
	return s.Filter(ctx, func(c models.Company) bool {
		return strings.Contains(strings.ToLower(c.Name), q)
	})
}
