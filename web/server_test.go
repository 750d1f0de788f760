// ABOUTME: Tests for the web API
// ABOUTME: Exercises routes through httptest against the embedded fixtures
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func setupServer(t *testing.T) (*Server, *db.Database) {
	t.Helper()
	clock := func() time.Time { return testNow }
	database, err := db.Open(db.Options{Now: clock})
	require.NoError(t, err)
	s, err := NewServer(context.Background(), Options{DB: database, Now: clock})
	require.NoError(t, err)
	return s, database
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestIndexServesBoard(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/pipeline")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestListAndGetContacts(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodGet, "/api/contacts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	contacts := decode[[]models.Contact](t, w)
	assert.Len(t, contacts, 5)

	w = do(t, s, http.MethodGet, "/api/contacts/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Maria Chen", decode[models.Contact](t, w).Name)

	w = do(t, s, http.MethodGet, "/api/contacts/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/contacts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateContactValidation(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodPost, "/api/contacts", map[string]any{"name": "No Email"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[map[string]any](t, w)
	assert.Contains(t, body["fields"], "email")

	w = do(t, s, http.MethodPost, "/api/contacts", map[string]any{"name": "Lena Fischer", "email": "lena@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.Contact](t, w)
	assert.Equal(t, 6, created.ID)
	assert.Equal(t, models.ContactProspect, created.Status)
}

func TestUpdateKeepsAbsentFields(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodPatch, "/api/contacts/1", map[string]any{"phone": "+1 555 0100"})
	require.Equal(t, http.StatusOK, w.Code)
	c := decode[models.Contact](t, w)
	assert.Equal(t, "+1 555 0100", c.Phone)
	assert.Equal(t, "Maria Chen", c.Name)
}

func TestCreateDealDefaultsProbability(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodPost, "/api/deals", map[string]any{
		"title": "Granite expansion", "value": "18000", "contact_id": 4, "stage": "Proposal",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	d := decode[models.Deal](t, w)
	assert.Equal(t, 75, d.Probability)
	assert.Equal(t, "Tom Becker", d.ContactName)

	_, ok := s.board.Deal(d.ID)
	assert.True(t, ok)
}

func TestUpdateDealStageResetsProbability(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodPut, "/api/deals/3", map[string]any{"stage": "Negotiation"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90, decode[models.Deal](t, w).Probability)

	w = do(t, s, http.MethodPut, "/api/deals/3", map[string]any{"stage": "Won"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUpdateDealClearsFields(t *testing.T) {
	s, database := setupServer(t)

	w := do(t, s, http.MethodPut, "/api/deals/1", map[string]any{"notes": "", "probability": 0})
	require.Equal(t, http.StatusOK, w.Code)
	d := decode[models.Deal](t, w)
	assert.Equal(t, 0, d.Probability)
	assert.Empty(t, d.Notes)

	stored, err := database.Deals.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Probability)
	assert.Empty(t, stored.Notes)
	assert.NotEmpty(t, stored.Title)
}

func TestUpdateContactClearsPhone(t *testing.T) {
	s, database := setupServer(t)

	w := do(t, s, http.MethodPut, "/api/contacts/1", map[string]any{"phone": ""})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := database.Contacts.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, stored.Phone)
	assert.Equal(t, "Maria Chen", stored.Name)
}

func TestDeleteDealLeavesBoard(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodDelete, "/api/deals/3", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	_, ok := s.board.Deal(3)
	assert.False(t, ok)

	w = do(t, s, http.MethodDelete, "/api/deals/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMoveDeal(t *testing.T) {
	s, database := setupServer(t)

	w := do(t, s, http.MethodPost, "/api/deals/3/move", map[string]any{"stage": "closed"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Deal          models.Deal `json:"deal"`
		Notifications []struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		} `json:"notifications"`
	}](t, w)
	assert.Equal(t, models.StageClosed, body.Deal.Stage)
	assert.Equal(t, 25, body.Deal.Probability)
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "Deal moved to Closed", body.Notifications[0].Message)

	stored, err := database.Deals.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.StageClosed, stored.Stage)
}

func TestMoveDealErrors(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodPost, "/api/deals/99/move", map[string]any{"stage": "Lead"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/api/deals/3/move", map[string]any{"stage": "Archived"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, s, http.MethodPost, "/api/deals/3/move", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMoveDealStoreFailureUsesBoardMessage(t *testing.T) {
	s, database := setupServer(t)

	_, err := database.Deals.Delete(context.Background(), 3)
	require.NoError(t, err)

	w := do(t, s, http.MethodPost, "/api/deals/3/move", map[string]any{"stage": "Closed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "Failed to update deal stage", body["error"])
	assert.Len(t, body["notifications"], 1)

	onBoard, ok := s.board.Deal(3)
	require.True(t, ok)
	assert.NotEqual(t, models.StageClosed, onBoard.Stage)
}

func TestPipeline(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodGet, "/api/pipeline", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[pipelineView](t, w)
	require.Len(t, p.Columns, 5)
	assert.Equal(t, models.StageLead, p.Columns[0].Stage)
	assert.Equal(t, "$525,000", p.TotalPipelineValue)
	assert.Equal(t, "33.3%", p.ConversionRate)
	assert.Equal(t, 2, p.Columns[4].Count)
}

func TestConvertQuote(t *testing.T) {
	s, database := setupServer(t)

	w := do(t, s, http.MethodPost, "/api/quotes/1/convert", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode[models.SalesOrder](t, w)
	assert.Equal(t, 1, order.QuoteID)
	assert.Equal(t, models.OrderDraft, order.Status)

	q, err := database.Quotes.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteAccepted, q.Status)
}

func TestTableFields(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodPost, "/api/tables/2/fields", map[string]any{"name": "tier", "type": "text"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, s, http.MethodPost, "/api/tables/2/fields", map[string]any{"name": "tier", "type": "text"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, s, http.MethodDelete, "/api/tables/2/fields/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReports(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodGet, "/api/reports?type=pipeline&from=2025-01-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "pipeline", body["report_type"])

	w = do(t, s, http.MethodGet, "/api/reports?type=forecast", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestExportCSV(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodGet, "/api/reports/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "overview-report-2025-03-15.csv")
	assert.True(t, strings.Contains(w.Body.String(), ","))

	w = do(t, s, http.MethodGet, "/api/reports/export?format=xml", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
