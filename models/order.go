// ABOUTME: Sales order line item arithmetic
// ABOUTME: Computes line totals with discount and tax and derives order totals
package models

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineItem is one product row on a sales order. Discount and Tax are
// percentages.
type LineItem struct {
	ProductName string          `json:"product_name,omitzero"`
	Quantity    decimal.Decimal `json:"quantity,omitzero"`
	UnitPrice   decimal.Decimal `json:"unit_price,omitzero"`
	Discount    decimal.Decimal `json:"discount,omitzero"`
	Tax         decimal.Decimal `json:"tax,omitzero"`
	Total       decimal.Decimal `json:"total,omitzero"`
}

// ComputeTotal returns quantity x price, less the discount, plus tax on the
// discounted amount.
func (li LineItem) ComputeTotal() decimal.Decimal {
	subtotal := li.Quantity.Mul(li.UnitPrice)
	discount := subtotal.Mul(li.Discount).Div(hundred)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(li.Tax).Div(hundred)
	return taxable.Add(tax)
}

// Recalculate refreshes every line total and, when the order has line items,
// replaces TotalAmount with their sum. Orders without line items keep the
// manually entered total.
func (o *SalesOrder) Recalculate() {
	if len(o.LineItems) == 0 {
		return
	}
	sum := decimal.Zero
	for i := range o.LineItems {
		o.LineItems[i].Total = o.LineItems[i].ComputeTotal()
		sum = sum.Add(o.LineItems[i].Total)
	}
	o.TotalAmount = sum
}
