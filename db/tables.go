// ABOUTME: Custom table metadata store
// ABOUTME: Manages table descriptors and their field lists, never row data
package db

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/harperreed/dealboard/models"
)

type TableStore struct {
	*Store[models.Table, *models.Table]
}

func NewTableStore(seed []models.Table, opts StoreOptions) *TableStore {
	s := NewStore[models.Table]("table", seed, opts)
	s.beforeCreate = func(t *models.Table, now time.Time) {
		t.CreatedAt = now
		t.UpdatedAt = now
		if t.Status == "" {
			t.Status = models.TableStatusActive
		}
		if t.Type == "" {
			t.Type = models.TableTypeCustom
		}
		if t.Fields == nil {
			t.Fields = []models.Field{}
		}
	}
	s.beforeUpdate = func(t *models.Table, now time.Time) {
		t.UpdatedAt = now
	}
	s.keep = func(t *models.Table, stored models.Table) {
		t.CreatedAt = stored.CreatedAt
		t.Fields = stored.Fields
	}
	return &TableStore{Store: s}
}

// Update only changes name, description, status and type. Fields are managed
// through AddField, UpdateField and DeleteField.
func (s *TableStore) Update(ctx context.Context, id int, patch models.Table) (models.Table, error) {
	return s.Store.Update(ctx, id, models.Table{
		Name:        patch.Name,
		Description: patch.Description,
		Status:      patch.Status,
		Type:        patch.Type,
	})
}

func (s *TableStore) AddField(ctx context.Context, tableID int, field models.Field) (models.Table, error) {
	return s.Mutate(ctx, tableID, func(t *models.Table) error {
		if fieldIndex(t.Fields, field.Name) >= 0 {
			return fmt.Errorf("%s: %w", field.Name, ErrFieldExists)
		}
		t.Fields = append(t.Fields, field)
		t.UpdatedAt = s.now()
		return nil
	})
}

// UpdateField replaces the named field. Renaming onto another existing field
// is rejected.
func (s *TableStore) UpdateField(ctx context.Context, tableID int, name string, field models.Field) (models.Table, error) {
	return s.Mutate(ctx, tableID, func(t *models.Table) error {
		i := fieldIndex(t.Fields, name)
		if i < 0 {
			return fmt.Errorf("%s: %w", name, ErrFieldNotFound)
		}
		if j := fieldIndex(t.Fields, field.Name); j >= 0 && j != i {
			return fmt.Errorf("%s: %w", field.Name, ErrFieldExists)
		}
		t.Fields[i] = field
		t.UpdatedAt = s.now()
		return nil
	})
}

func (s *TableStore) DeleteField(ctx context.Context, tableID int, name string) (models.Table, error) {
	return s.Mutate(ctx, tableID, func(t *models.Table) error {
		i := fieldIndex(t.Fields, name)
		if i < 0 {
			return fmt.Errorf("%s: %w", name, ErrFieldNotFound)
		}
		t.Fields = slices.Delete(t.Fields, i, i+1)
		t.UpdatedAt = s.now()
		return nil
	})
}

func fieldIndex(fields []models.Field, name string) int {
	return slices.IndexFunc(fields, func(f models.Field) bool {
		return strings.EqualFold(f.Name, name)
	})
}
