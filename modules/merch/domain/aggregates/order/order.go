package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusComplete  Status = "complete"
	StatusCancelled Status = "cancelled"
)

type ShipmentStatus string

const (
	ShipmentStatusPending ShipmentStatus = "Pending"
	ShipmentStatusPartial ShipmentStatus = "Partially Shipped"
	ShipmentStatusShipped ShipmentStatus = "Shipped"
)

// LineItem is one SKU line on a purchase order. Monetary values are integer
// cents.
type LineItem struct {
	SKU            string
	Description    string
	Quantity       int
	UnitPriceCents int64
	ValueCents     int64
}

// Shipment is one split shipment against a purchase order.
// DeliveryToConsolidator is the HOD actual, ActualSailingDate the ETD actual.
type Shipment struct {
	Sequence               int
	DeliveryToConsolidator *time.Time
	ActualSailingDate      *time.Time
	QtyShipped             int
	ShippedValueCents      int64
}

// Milestone is one timeline milestone on the order. The target date is the
// revised date when set, otherwise the planned date.
type Milestone struct {
	Name        string
	PlannedDate *time.Time
	RevisedDate *time.Time
	ActualDate  *time.Time
}

func (m Milestone) TargetDate() *time.Time {
	if m.RevisedDate != nil {
		return m.RevisedDate
	}
	return m.PlannedDate
}

// Details carries every persisted field of a purchase order. Hydrate takes it
// whole because the header is too wide for a positional constructor.
type Details struct {
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
	Status               Status
	ShipmentStatus       ShipmentStatus
	IsSample             bool
	LineItems            []LineItem
	Shipments            []Shipment
	Milestones           []Milestone
}

type PurchaseOrder struct {
	d Details
}

func New(poNumber, vendorCode, client string) PurchaseOrder {
	return PurchaseOrder{d: Details{
		PONumber:       strings.TrimSpace(poNumber),
		VendorCode:     strings.TrimSpace(vendorCode),
		Client:         strings.TrimSpace(client),
		Status:         StatusActive,
		ShipmentStatus: ShipmentStatusPending,
	}}
}

func Hydrate(d Details) PurchaseOrder {
	d.PONumber = strings.TrimSpace(d.PONumber)
	d.VendorCode = strings.TrimSpace(d.VendorCode)
	return PurchaseOrder{d: d}
}

func (p PurchaseOrder) ID() uuid.UUID                { return p.d.ID }
func (p PurchaseOrder) PONumber() string             { return p.d.PONumber }
func (p PurchaseOrder) VendorCode() string           { return p.d.VendorCode }
func (p PurchaseOrder) Client() string               { return p.d.Client }
func (p PurchaseOrder) Collection() string           { return p.d.Collection }
func (p PurchaseOrder) ProgramDescription() string   { return p.d.ProgramDescription }
func (p PurchaseOrder) Merchandiser() string         { return p.d.Merchandiser }
func (p PurchaseOrder) MerchandisingManager() string { return p.d.MerchandisingManager }
func (p PurchaseOrder) PODate() *time.Time           { return p.d.PODate }
func (p PurchaseOrder) OriginalShipDate() *time.Time { return p.d.OriginalShipDate }
func (p PurchaseOrder) RevisedShipDate() *time.Time  { return p.d.RevisedShipDate }
func (p PurchaseOrder) OriginalCancelDate() *time.Time {
	return p.d.OriginalCancelDate
}
func (p PurchaseOrder) RevisedCancelDate() *time.Time  { return p.d.RevisedCancelDate }
func (p PurchaseOrder) RevisedBy() string              { return p.d.RevisedBy }
func (p PurchaseOrder) Quantity() int                  { return p.d.Quantity }
func (p PurchaseOrder) TotalValueCents() int64         { return p.d.TotalValueCents }
func (p PurchaseOrder) ShippedValueCents() int64       { return p.d.ShippedValueCents }
func (p PurchaseOrder) Status() Status                 { return p.d.Status }
func (p PurchaseOrder) ShipmentStatus() ShipmentStatus { return p.d.ShipmentStatus }
func (p PurchaseOrder) IsSample() bool                 { return p.d.IsSample }
func (p PurchaseOrder) LineItems() []LineItem          { return p.d.LineItems }
func (p PurchaseOrder) Shipments() []Shipment          { return p.d.Shipments }
func (p PurchaseOrder) Milestones() []Milestone        { return p.d.Milestones }
func (p PurchaseOrder) IsZero() bool                   { return p.d.ID == uuid.Nil && p.d.PONumber == "" }

func (p PurchaseOrder) Details() Details { return p.d }

// EffectiveCancelDate is the revised cancel date when one exists, otherwise
// the original.
func (p PurchaseOrder) EffectiveCancelDate() *time.Time {
	if p.d.RevisedCancelDate != nil {
		return p.d.RevisedCancelDate
	}
	return p.d.OriginalCancelDate
}

func (p PurchaseOrder) EffectiveShipDate() *time.Time {
	if p.d.RevisedShipDate != nil {
		return p.d.RevisedShipDate
	}
	return p.d.OriginalShipDate
}

// MinSailingDate is the earliest actual sailing date across the order's
// shipments. Revenue recognition keys the header shipped value by this date
// so split shipments never count twice.
func (p PurchaseOrder) MinSailingDate() *time.Time {
	var min *time.Time
	for i := range p.d.Shipments {
		d := p.d.Shipments[i].ActualSailingDate
		if d == nil {
			continue
		}
		if min == nil || d.Before(*min) {
			min = d
		}
	}
	return min
}
