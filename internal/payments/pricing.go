package payments

import "strings"

// Pricing derives the charge for an export from its record count.
type Pricing struct {
	PerRecordCents       int64
	DiscountCode         string
	DiscountedTotalCents int64
}

// Total is the undiscounted charge for recordCount records.
func (p Pricing) Total(recordCount int) int64 {
	if recordCount < 0 {
		return 0
	}
	return int64(recordCount) * p.PerRecordCents
}

// DiscountApplies compares a submitted code against the configured one,
// case-insensitively. An empty configured code disables discounts.
func (p Pricing) DiscountApplies(code string) bool {
	if p.DiscountCode == "" || code == "" {
		return false
	}
	return strings.EqualFold(code, p.DiscountCode)
}

// ValidAmount reports whether a captured amount is an acceptable charge
// for recordCount records: either the full total or the discounted one.
// The server has no record of whether the client applied a discount
// code at order creation, so both are valid.
func (p Pricing) ValidAmount(recordCount int, amountCents int64) bool {
	if amountCents == p.Total(recordCount) {
		return true
	}
	return p.DiscountCode != "" && amountCents == p.DiscountedTotalCents
}
