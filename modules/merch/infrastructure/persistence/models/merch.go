// Package models holds the pgx row shapes for the merch schema. Fields map
// one to one onto table columns; domain conversions live in the mappers.
package models

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseOrder struct {
	ID                   uuid.UUID
	PONumber             string
	VendorCode           string
	Client               string
	Collection           string
	ProgramDescription   string
	Merchandiser         string
	MerchandisingManager string
	PODate               *time.Time
	OriginalShipDate     *time.Time
	RevisedShipDate      *time.Time
	OriginalCancelDate   *time.Time
	RevisedCancelDate    *time.Time
	RevisedBy            string
	Quantity             int
	TotalValueCents      int64
	ShippedValueCents    int64
	Status               string
	ShipmentStatus       string
	IsSample             bool
}

type LineItem struct {
	PONumber       string
	SKU            string
	Description    string
	Quantity       int
	UnitPriceCents int64
	ValueCents     int64
}

type Shipment struct {
	PONumber               string
	Sequence               int
	DeliveryToConsolidator *time.Time
	ActualSailingDate      *time.Time
	QtyShipped             int
	ShippedValueCents      int64
}

type Milestone struct {
	PONumber    string
	Name        string
	PlannedDate *time.Time
	RevisedDate *time.Time
	ActualDate  *time.Time
}

type ProjectionSnapshot struct {
	VendorCode string
	SKU        string
	Year       int
	Month      int
	ImportDate time.Time
	OrderType  string
	Quantity   int
	ValueCents int64
	Collection string
	Client     string
}

type ActiveProjection struct {
	VendorCode       string
	SKU              string
	Year             int
	Month            int
	OrderType        string
	Quantity         int
	ValueCents       int64
	Collection       string
	Client           string
	Comment          string
	MatchStatus      string
	MatchedPONumber  string
	ActualQuantity   *int
	ActualValueCents *int64
	QuantityVariance *int64
	ValueVariance    *int64
	VariancePct      *float64
}

type VendorCapacity struct {
	VendorCode                  string
	Client                      string
	Year                        int
	Month                       int
	ShipmentConfirmedCents      int64
	ShipmentUnconfirmedCents    int64
	ProjectionTotalCents        int64
	ReservedCapacityCents       int64
	FactoryOverallCapacityCents int64
	IsLocked                    bool
}

type Inspection struct {
	CompositeKey   string
	SKU            string
	InspectionType string
	InspectionDate *time.Time
	PONumber       string
	Booked         bool
	Result         string
}

type QualityTest struct {
	CompositeKey string
	SKU          string
	TestType     string
	TestDate     *time.Time
	PONumber     string
	Submitted    bool
	Result       string
}

type Vendor struct {
	ID      uuid.UUID
	Code    string
	Name    string
	Aliases []string
}

type Staff struct {
	ID    uuid.UUID
	Name  string
	Title string
	Role  string
}
