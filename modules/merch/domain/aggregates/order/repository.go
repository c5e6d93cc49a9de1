package order

import (
	"context"
	"time"
)

type FindParams struct {
	VendorCode           string
	Client               string
	Merchandiser         string
	MerchandisingManager string
	From                 *time.Time
	To                   *time.Time
	Limit                int
	Offset               int
}

// LineItemQuery selects match candidates for the projection matcher. SKU and
// Collection are alternatives: exactly one is set per query.
type LineItemQuery struct {
	SKU        string
	Collection string
	VendorCode string
	From       time.Time
	To         time.Time
}

type LineItemCandidate struct {
	PONumber   string
	PODate     time.Time
	VendorCode string
	SKU        string
	Collection string
	Quantity   int
	ValueCents int64
}

// ShipmentClassification is the persisted delivery-performance outcome of
// one shipment. DaysLate is nil while the status is pending.
type ShipmentClassification struct {
	Sequence          int
	OTDStatus         string
	OriginalOTDStatus string
	DaysLate          *int
}

// Classification carries one order's persisted classification outcomes.
// Ad-hoc SQL reads these columns, so they are written by an engine pass
// rather than computed per query.
type Classification struct {
	PONumber  string
	AtRisk    bool
	Shipments []ShipmentClassification
}

type Repository interface {
	GetByNumber(ctx context.Context, poNumber string) (PurchaseOrder, error)
	Find(ctx context.Context, params *FindParams) ([]PurchaseOrder, error)
	ListNumbers(ctx context.Context) ([]string, error)
	CreateBatch(ctx context.Context, orders []PurchaseOrder) error
	UpdateBatch(ctx context.Context, orders []PurchaseOrder) error
	UpsertShipments(ctx context.Context, poNumber string, shipments []Shipment) error
	SaveClassifications(ctx context.Context, rows []Classification) error
	ListLineItemCandidates(ctx context.Context, q LineItemQuery) ([]LineItemCandidate, error)
	ShippedValueByVendor(ctx context.Context, year int) (map[string]int64, error)
	// DeleteAll backs the explicit "clear all" administrative action that
	// precedes a full-refresh import. No other path deletes orders.
	DeleteAll(ctx context.Context) (int64, error)
}
