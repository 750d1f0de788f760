// ABOUTME: Table and field forms for the customization screen
// ABOUTME: Validates identifiers before touching the table store
package forms

import (
	"context"

	"github.com/harperreed/dealboard/models"
)

// FieldWriter is the field bookkeeping surface of the table store.
type FieldWriter interface {
	AddField(ctx context.Context, tableID int, field models.Field) (models.Table, error)
	UpdateField(ctx context.Context, tableID int, name string, field models.Field) (models.Table, error)
}

func ValidateTable(t models.Table) error {
	return check(t).OrNil()
}

func SaveTable(ctx context.Context, w Writer[models.Table], t models.Table) (models.Table, error) {
	return save(ctx, w, t.ID, t, check(t))
}

func ValidateField(f models.Field) error {
	return check(f).OrNil()
}

func AddField(ctx context.Context, w FieldWriter, tableID int, f models.Field) (models.Table, error) {
	if err := ValidateField(f); err != nil {
		return models.Table{}, err
	}
	return w.AddField(ctx, tableID, f)
}

func UpdateField(ctx context.Context, w FieldWriter, tableID int, name string, f models.Field) (models.Table, error) {
	if err := ValidateField(f); err != nil {
		return models.Table{}, err
	}
	return w.UpdateField(ctx, tableID, name, f)
}
