// ABOUTME: Shared helpers for the MCP tool handlers
// ABOUTME: Converts dates, amounts and limits between tool arguments and models
package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultLimit = 10
	dateLayout   = "2006-01-02"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// parseDate accepts yyyy-mm-dd or RFC 3339. An empty string is the zero time.
func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: expected YYYY-MM-DD or RFC 3339", field)
	}
	return t, nil
}

// parseAmount reads a decimal amount. An empty string is zero.
func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.ReplaceAll(s, ",", ""), "$"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	return d, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}

// containsFold reports whether any of fields contains query, ignoring case.
// An empty query matches everything.
func containsFold(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
