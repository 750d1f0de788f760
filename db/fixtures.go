// ABOUTME: Fixture loading for the in-memory stores
// ABOUTME: Reads one JSON array per entity from the embedded set or a directory
package db

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/harperreed/dealboard/models"
)

//go:embed fixtures/*.json
var embeddedFixtures embed.FS

// Seed is the initial content of every store.
type Seed struct {
	Contacts    []models.Contact
	Companies   []models.Company
	Deals       []models.Deal
	Activities  []models.Activity
	Quotes      []models.Quote
	SalesOrders []models.SalesOrder
	Tables      []models.Table
}

// EmbeddedFixtures returns the fixture set compiled into the binary.
func EmbeddedFixtures() fs.FS {
	sub, err := fs.Sub(embeddedFixtures, "fixtures")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadSeed reads contacts.json, companies.json, deals.json, activities.json,
// quotes.json, sales_orders.json and tables.json from fsys. A missing file
// seeds an empty collection.
func LoadSeed(fsys fs.FS) (Seed, error) {
	var seed Seed
	files := []struct {
		name string
		dst  any
	}{
		{"contacts.json", &seed.Contacts},
		{"companies.json", &seed.Companies},
		{"deals.json", &seed.Deals},
		{"activities.json", &seed.Activities},
		{"quotes.json", &seed.Quotes},
		{"sales_orders.json", &seed.SalesOrders},
		{"tables.json", &seed.Tables},
	}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f.name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Seed{}, fmt.Errorf("failed to read fixture %s: %w", f.name, err)
		}
		if err := json.Unmarshal(data, f.dst); err != nil {
			return Seed{}, fmt.Errorf("failed to parse fixture %s: %w", f.name, err)
		}
	}
	if err := seed.Validate(); err != nil {
		return Seed{}, err
	}
	for i := range seed.SalesOrders {
		seed.SalesOrders[i].Recalculate()
	}
	return seed, nil
}

// LoadSeedDir reads fixtures from a directory on disk.
func LoadSeedDir(dir string) (Seed, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to open fixture directory: %w", err)
	}
	if !info.IsDir() {
		return Seed{}, fmt.Errorf("fixture path is not a directory: %s", dir)
	}
	return LoadSeed(os.DirFS(dir))
}

// Validate checks that every collection has unique positive Ids.
func (s Seed) Validate() error {
	checks := []struct {
		name string
		ids  []int
	}{
		{"contacts", ids(s.Contacts)},
		{"companies", ids(s.Companies)},
		{"deals", ids(s.Deals)},
		{"activities", ids(s.Activities)},
		{"quotes", ids(s.Quotes)},
		{"sales_orders", ids(s.SalesOrders)},
		{"tables", ids(s.Tables)},
	}
	for _, c := range checks {
		seen := make(map[int]bool, len(c.ids))
		for _, id := range c.ids {
			if id <= 0 {
				return fmt.Errorf("invalid fixture %s: id %d is not a positive integer", c.name, id)
			}
			if seen[id] {
				return fmt.Errorf("invalid fixture %s: duplicate id %d", c.name, id)
			}
			seen[id] = true
		}
	}
	return nil
}

func ids[T any, P Record[T]](records []T) []int {
	out := make([]int, len(records))
	for i := range records {
		out[i] = P(&records[i]).RecordID()
	}
	return out
}
