// ABOUTME: Sales order store with range lookups and summary statistics
// ABOUTME: Order totals are recalculated from line items on every write
package db

import (
	"context"
	"time"

	"github.com/harperreed/dealboard/models"
	"github.com/shopspring/decimal"
)

type SalesOrderStore struct {
	*Store[models.SalesOrder, *models.SalesOrder]
}

// OrderSummary aggregates every order in the store.
type OrderSummary struct {
	TotalOrders       int                        `json:"total_orders"`
	TotalRevenue      decimal.Decimal            `json:"total_revenue"`
	AverageOrderValue decimal.Decimal            `json:"average_order_value"`
	StatusCounts      map[models.OrderStatus]int `json:"status_counts"`
}

func NewSalesOrderStore(seed []models.SalesOrder, opts StoreOptions) *SalesOrderStore {
	s := NewStore[models.SalesOrder]("sales order", seed, opts)
	s.beforeCreate = func(o *models.SalesOrder, now time.Time) {
		o.CreatedDate = now
		o.UpdatedDate = now
		if o.Status == "" {
			o.Status = models.OrderDraft
		}
		o.Recalculate()
	}
	s.beforeUpdate = func(o *models.SalesOrder, now time.Time) {
		o.UpdatedDate = now
		o.Recalculate()
	}
	s.keep = func(o *models.SalesOrder, stored models.SalesOrder) {
		o.CreatedDate = stored.CreatedDate
	}
	return &SalesOrderStore{Store: s}
}

func (s *SalesOrderStore) GetByContactID(ctx context.Context, contactID int) ([]models.SalesOrder, error) {
	return s.Filter(ctx, func(o models.SalesOrder) bool { return o.ContactID == contactID })
}

func (s *SalesOrderStore) GetByCompanyID(ctx context.Context, companyID int) ([]models.SalesOrder, error) {
	return s.Filter(ctx, func(o models.SalesOrder) bool { return o.CompanyID == companyID })
}

func (s *SalesOrderStore) GetByStatus(ctx context.Context, status models.OrderStatus) ([]models.SalesOrder, error) {
	return s.Filter(ctx, func(o models.SalesOrder) bool { return o.Status == status })
}

// GetByDateRange returns orders whose order date lies in [start, end].
func (s *SalesOrderStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.SalesOrder, error) {
	return s.Filter(ctx, func(o models.SalesOrder) bool {
		return !o.OrderDate.Before(start) && !o.OrderDate.After(end)
	})
}

// GetByAmountRange returns orders whose total lies in [low, high].
func (s *SalesOrderStore) GetByAmountRange(ctx context.Context, low, high decimal.Decimal) ([]models.SalesOrder, error) {
	return s.Filter(ctx, func(o models.SalesOrder) bool {
		return o.TotalAmount.GreaterThanOrEqual(low) && o.TotalAmount.LessThanOrEqual(high)
	})
}

func (s *SalesOrderStore) Summary(ctx context.Context) (OrderSummary, error) {
	orders, err := s.GetAll(ctx)
	if err != nil {
		return OrderSummary{}, err
	}
	summary := OrderSummary{
		TotalOrders:  len(orders),
		TotalRevenue: decimal.Zero,
		StatusCounts: make(map[models.OrderStatus]int),
	}
	for _, o := range orders {
		summary.TotalRevenue = summary.TotalRevenue.Add(o.TotalAmount)
		summary.StatusCounts[o.Status]++
	}
	if summary.TotalOrders > 0 {
		summary.AverageOrderValue = summary.TotalRevenue.Div(decimal.NewFromInt(int64(summary.TotalOrders))).Round(2)
	}
	return summary, nil
}
