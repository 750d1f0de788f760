// ABOUTME: Tests for building a Database from fixtures
// ABOUTME: Checks that every store is populated and options reach each store
package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPopulatesEveryStore(t *testing.T) {
	database, err := Open(Options{Now: fixedClock})
	require.NoError(t, err)

	assert.Positive(t, database.Contacts.Len())
	assert.Positive(t, database.Companies.Len())
	assert.Positive(t, database.Deals.Len())
	assert.Positive(t, database.Activities.Len())
	assert.Positive(t, database.Quotes.Len())
	assert.Positive(t, database.SalesOrders.Len())
	assert.Positive(t, database.Tables.Len())
}

func TestOpenInstancesAreIndependent(t *testing.T) {
	a, err := Open(Options{Now: fixedClock})
	require.NoError(t, err)
	b, err := Open(Options{Now: fixedClock})
	require.NoError(t, err)

	_, err = a.Deals.Delete(context.Background(), 1)
	require.NoError(t, err)

	_, err = b.Deals.GetByID(context.Background(), 1)
	assert.NoError(t, err)
}

func TestOpenLatencyReachesStores(t *testing.T) {
	database, err := Open(Options{Latency: time.Hour, Now: fixedClock})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = database.Companies.GetAll(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
