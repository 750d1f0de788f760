// ABOUTME: Database composition root holding every record store
// ABOUTME: Builds the stores from a fixture seed with shared latency and clock
package db

import (
	"time"
)

// Options controls how Open builds the stores.
type Options struct {
	// FixturesDir overrides the embedded fixtures when set.
	FixturesDir string
	Latency     time.Duration
	Now         func() time.Time
}

// Database owns one store per entity. Each process gets its own instance;
// nothing written to it outlives the process.
type Database struct {
	Contacts    *ContactStore
	Companies   *CompanyStore
	Deals       *DealStore
	Activities  *ActivityStore
	Quotes      *QuoteStore
	SalesOrders *SalesOrderStore
	Tables      *TableStore
}

// Open loads fixtures and builds a Database.
func Open(opts Options) (*Database, error) {
	var (
		seed Seed
		err  error
	)
	if opts.FixturesDir != "" {
		seed, err = LoadSeedDir(opts.FixturesDir)
	} else {
		seed, err = LoadSeed(EmbeddedFixtures())
	}
	if err != nil {
		return nil, err
	}
	return New(seed, StoreOptions{Latency: opts.Latency, Now: opts.Now}), nil
}

// New builds a Database from an in-memory seed.
func New(seed Seed, opts StoreOptions) *Database {
	return &Database{
		Contacts:    NewContactStore(seed.Contacts, opts),
		Companies:   NewCompanyStore(seed.Companies, opts),
		Deals:       NewDealStore(seed.Deals, opts),
		Activities:  NewActivityStore(seed.Activities, opts),
		Quotes:      NewQuoteStore(seed.Quotes, opts),
		SalesOrders: NewSalesOrderStore(seed.SalesOrders, opts),
		Tables:      NewTableStore(seed.Tables, opts),
	}
}
