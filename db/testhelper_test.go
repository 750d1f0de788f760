// ABOUTME: Shared helpers for store tests
// ABOUTME: Builds databases with zero latency and a fixed clock
package db

import (
	"testing"
	"time"

	"github.com/harperreed/dealboard/models"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	seed := Seed{
		Contacts: []models.Contact{
			{ID: 1, Name: "Ada", Email: "ada@example.com", CompanyID: 1, Status: models.ContactActive},
			{ID: 4, Name: "Brian", Email: "brian@example.com", CompanyID: 2, Status: models.ContactProspect},
		},
		Companies: []models.Company{
			{ID: 1, Name: "Initech", Industry: "Software"},
			{ID: 2, Name: "Hooli", Industry: "Search"},
		},
		Deals: []models.Deal{
			{ID: 1, Title: "Seats", Value: decimal.NewFromInt(1000), ContactID: 1, ContactName: "Ada", Stage: models.StageLead, Probability: 25},
			{ID: 2, Title: "Upgrade", Value: decimal.NewFromInt(3000), ContactID: 4, ContactName: "Brian", Stage: models.StageClosed, Probability: 100},
		},
		Activities: []models.Activity{
			{ID: 1, Type: models.ActivityCall, ContactID: 1, DealID: 1, Subject: "old", Date: testNow.AddDate(0, 0, -10)},
			{ID: 2, Type: models.ActivityEmail, ContactID: 1, Subject: "new", Date: testNow.AddDate(0, 0, -1)},
		},
		Tables: []models.Table{
			{ID: 1, Name: "partners", Description: "Partners", Status: models.TableStatusActive, Type: models.TableTypeCustom,
				Fields: []models.Field{{Name: "tier", Type: models.FieldText}}},
		},
	}
	return New(seed, StoreOptions{Now: fixedClock})
}
