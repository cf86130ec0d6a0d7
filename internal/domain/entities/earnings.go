package entities

import "fmt"

// VendorSharePercent is the vendor's share of an order amount
const VendorSharePercent = 80

// SplitEarnings splits an amount in minor units. The vendor share is rounded
// down; the platform receives the remainder so both always sum to amount.
func SplitEarnings(amountCents int64) (vendorCents, platformCents int64) {
	if amountCents <= 0 {
		return 0, 0
	}
	vendorCents = amountCents * VendorSharePercent / 100
	return vendorCents, amountCents - vendorCents
}

// VendorEarnings returns the vendor's earnings for an order, falling back to
// the standard split for rows written before the split was persisted.
func VendorEarnings(o *Order) int64 {
	if o == nil {
		return 0
	}
	if o.VendorEarningsCents.Valid {
		return o.VendorEarningsCents.Int64
	}
	vendor, _ := SplitEarnings(o.AmountCents)
	return vendor
}

// VendorEarningsSQL is VendorEarnings as a column expression over the orders
// table, for aggregating balances in the database.
var VendorEarningsSQL = fmt.Sprintf(
	"COALESCE(vendor_earnings_cents, CASE WHEN amount_cents > 0 THEN amount_cents * %d / 100 ELSE 0 END)",
	VendorSharePercent,
)
