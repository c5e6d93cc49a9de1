package projection

import (
	"time"
)

type MatchStatus string

const (
	MatchStatusUnmatched MatchStatus = "unmatched"
	MatchStatusMatched   MatchStatus = "matched"
	// MatchStatusPartial marks collection-level fallback matches for
	// sentinel-SKU projections, as opposed to exact SKU matches.
	MatchStatusPartial MatchStatus = "partial"
	MatchStatusExpired MatchStatus = "expired"
)

// ActiveProjection is the mutable working copy of the latest snapshot for a
// (vendor, sku, year, month). The matcher writes its fields; rebuilds replace
// the whole set while snapshots accumulate history.
type ActiveProjection struct {
	VendorCode string
	SKU        string
	Year       int
	Month      time.Month
	OrderType  OrderType
	Quantity   int
	ValueCents int64
	Collection string
	Client     string
	Comment    string

	MatchStatus      MatchStatus
	MatchedPONumber  string
	ActualQuantity   *int
	ActualValueCents *int64
	QuantityVariance *int64
	ValueVariance    *int64
	VariancePct      *float64
}

// Key identifies the at-most-one non-expired active projection per
// (vendor, sku, year, month).
type Key struct {
	VendorCode string
	SKU        string
	Year       int
	Month      time.Month
}

func (a ActiveProjection) MatchKey() Key {
	return Key{VendorCode: a.VendorCode, SKU: a.SKU, Year: a.Year, Month: a.Month}
}

// FromSnapshot derives a fresh, unmatched active projection.
func FromSnapshot(s Snapshot) ActiveProjection {
	return ActiveProjection{
		VendorCode:  s.VendorCode(),
		SKU:         s.SKU(),
		Year:        s.Year(),
		Month:       s.Month(),
		OrderType:   s.OrderType(),
		Quantity:    s.Quantity(),
		ValueCents:  s.ValueCents(),
		Collection:  s.Collection(),
		Client:      s.Client(),
		MatchStatus: MatchStatusUnmatched,
	}
}

// WithMatch records a match outcome and its variance fields.
func (a ActiveProjection) WithMatch(status MatchStatus, poNumber string, actualQty int, actualValueCents int64, variancePct *float64) ActiveProjection {
	out := a
	out.MatchStatus = status
	out.MatchedPONumber = poNumber
	out.ActualQuantity = &actualQty
	out.ActualValueCents = &actualValueCents
	qv := int64(actualQty - a.Quantity)
	vv := actualValueCents - a.ValueCents
	out.QuantityVariance = &qv
	out.ValueVariance = &vv
	out.VariancePct = variancePct
	return out
}

// WithStatus clears any match fields and sets a terminal or pending status.
func (a ActiveProjection) WithStatus(status MatchStatus) ActiveProjection {
	out := a
	out.MatchStatus = status
	out.MatchedPONumber = ""
	out.ActualQuantity = nil
	out.ActualValueCents = nil
	out.QuantityVariance = nil
	out.ValueVariance = nil
	out.VariancePct = nil
	return out
}
