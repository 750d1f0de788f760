// ABOUTME: Tests for fixture loading and validation
// ABOUTME: Uses the embedded fixture set and in-memory file systems
package db

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/harperreed/dealboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenEmbeddedFixtures(t *testing.T) {
	database, err := Open(Options{Now: fixedClock})
	require.NoError(t, err)

	deals, err := database.Deals.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, deals)
	for _, d := range deals {
		assert.True(t, d.Stage.Valid(), "fixture deal %d has stage %q", d.ID, d.Stage)
	}

	order, err := database.SalesOrders.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.IsPositive(), "fixture order totals are derived from line items")
}

func TestLoadSeedMissingFilesAreEmpty(t *testing.T) {
	fsys := fstest.MapFS{
		"contacts.json": {Data: []byte(`[{"id": 3, "name": "Gil"}]`)},
	}
	seed, err := LoadSeed(fsys)
	require.NoError(t, err)
	assert.Len(t, seed.Contacts, 1)
	assert.Empty(t, seed.Deals)
}

func TestLoadSeedRejectsBadIDs(t *testing.T) {
	dup := fstest.MapFS{
		"deals.json": {Data: []byte(`[{"id": 1, "title": "a"}, {"id": 1, "title": "b"}]`)},
	}
	_, err := LoadSeed(dup)
	assert.ErrorContains(t, err, "duplicate id 1")

	zero := fstest.MapFS{
		"tables.json": {Data: []byte(`[{"id": 0, "name": "a"}]`)},
	}
	_, err = LoadSeed(zero)
	assert.ErrorContains(t, err, "not a positive integer")
}

func TestLoadSeedRejectsMalformedJSON(t *testing.T) {
	_, err := LoadSeed(fstest.MapFS{"quotes.json": {Data: []byte(`{`)}})
	assert.ErrorContains(t, err, "failed to parse fixture quotes.json")
}

func TestOpenFixtureDirectory(t *testing.T) {
	_, err := Open(Options{FixturesDir: t.TempDir() + "/missing"})
	assert.Error(t, err)

	database, err := Open(Options{FixturesDir: t.TempDir()})
	require.NoError(t, err)
	c, err := database.Contacts.Create(context.Background(), models.Contact{Name: "first"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.ID)
}
