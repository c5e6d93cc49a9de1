package projection

import (
	"strings"
	"time"
)

type OrderType string

const (
	// OrderTypeRegular projections match POs inside a 90-day order window.
	OrderTypeRegular OrderType = "regular"
	// OrderTypeSPO is made-to-order; the window shrinks to 30 days.
	OrderTypeSPO OrderType = "spo"
)

// SentinelSKU marks made-to-order projections with no fixed catalog SKU.
// The matcher falls back to collection-level matching for these.
const SentinelSKU = "SPO"

// Snapshot is one row of a forecast import. Snapshots are append-only and
// never mutated after creation; they are the audit trail ActiveProjections
// are rebuilt from.
type Snapshot struct {
	vendorCode string
	sku        string
	year       int
	month      time.Month
	importDate time.Time
	orderType  OrderType
	quantity   int
	valueCents int64
	collection string
	client     string
}

func NewSnapshot(
	vendorCode, sku string,
	year int,
	month time.Month,
	importDate time.Time,
	orderType OrderType,
	quantity int,
	valueCents int64,
	collection, client string,
) Snapshot {
	return Snapshot{
		vendorCode: strings.TrimSpace(vendorCode),
		sku:        strings.TrimSpace(sku),
		year:       year,
		month:      month,
		importDate: importDate,
		orderType:  orderType,
		quantity:   quantity,
		valueCents: valueCents,
		collection: strings.TrimSpace(collection),
		client:     strings.TrimSpace(client),
	}
}

func (s Snapshot) VendorCode() string    { return s.vendorCode }
func (s Snapshot) SKU() string           { return s.sku }
func (s Snapshot) Year() int             { return s.year }
func (s Snapshot) Month() time.Month     { return s.month }
func (s Snapshot) ImportDate() time.Time { return s.importDate }
func (s Snapshot) OrderType() OrderType  { return s.orderType }
func (s Snapshot) Quantity() int         { return s.quantity }
func (s Snapshot) ValueCents() int64     { return s.valueCents }
func (s Snapshot) Collection() string    { return s.collection }
func (s Snapshot) Client() string        { return s.client }

// PeriodKey identifies the target period a projection forecasts.
type PeriodKey struct {
	SKU   string
	Year  int
	Month time.Month
}

func (s Snapshot) PeriodKey() PeriodKey {
	return PeriodKey{SKU: s.sku, Year: s.year, Month: s.month}
}
