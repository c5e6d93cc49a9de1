package capacity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// VendorCapacityData is one vendor-client-month capacity row. Monetary
// values are integer cents. A locked row survives every bulk clear.
type VendorCapacityData struct {
	vendorCode                  string
	client                      string
	year                        int
	month                       time.Month
	shipmentConfirmedCents      int64
	shipmentUnconfirmedCents    int64
	projectionTotalCents        int64
	reservedCapacityCents       int64
	factoryOverallCapacityCents int64
	isLocked                    bool
}

type Details struct {
	VendorCode                  string
	Client                      string
	Year                        int
	Month                       time.Month
	ShipmentConfirmedCents      int64
	ShipmentUnconfirmedCents    int64
	ProjectionTotalCents        int64
	ReservedCapacityCents       int64
	FactoryOverallCapacityCents int64
	IsLocked                    bool
}

func Hydrate(d Details) VendorCapacityData {
	return VendorCapacityData{
		vendorCode:                  strings.TrimSpace(d.VendorCode),
		client:                      strings.TrimSpace(d.Client),
		year:                        d.Year,
		month:                       d.Month,
		shipmentConfirmedCents:      d.ShipmentConfirmedCents,
		shipmentUnconfirmedCents:    d.ShipmentUnconfirmedCents,
		projectionTotalCents:        d.ProjectionTotalCents,
		reservedCapacityCents:       d.ReservedCapacityCents,
		factoryOverallCapacityCents: d.FactoryOverallCapacityCents,
		isLocked:                    d.IsLocked,
	}
}

func (c VendorCapacityData) VendorCode() string              { return c.vendorCode }
func (c VendorCapacityData) Client() string                  { return c.client }
func (c VendorCapacityData) Year() int                       { return c.year }
func (c VendorCapacityData) Month() time.Month               { return c.month }
func (c VendorCapacityData) ShipmentConfirmedCents() int64   { return c.shipmentConfirmedCents }
func (c VendorCapacityData) ShipmentUnconfirmedCents() int64 { return c.shipmentUnconfirmedCents }
func (c VendorCapacityData) ProjectionTotalCents() int64     { return c.projectionTotalCents }
func (c VendorCapacityData) ReservedCapacityCents() int64    { return c.reservedCapacityCents }
func (c VendorCapacityData) FactoryOverallCapacityCents() int64 {
	return c.factoryOverallCapacityCents
}
func (c VendorCapacityData) IsLocked() bool   { return c.isLocked }
func (c VendorCapacityData) Details() Details {
	return Details{
		VendorCode:                  c.vendorCode,
		Client:                      c.client,
		Year:                        c.year,
		Month:                       c.month,
		ShipmentConfirmedCents:      c.shipmentConfirmedCents,
		ShipmentUnconfirmedCents:    c.shipmentUnconfirmedCents,
		ProjectionTotalCents:        c.projectionTotalCents,
		ReservedCapacityCents:       c.reservedCapacityCents,
		FactoryOverallCapacityCents: c.factoryOverallCapacityCents,
		IsLocked:                    c.isLocked,
	}
}

// TotalShipmentCents is confirmed plus unconfirmed shipment value.
func (c VendorCapacityData) TotalShipmentCents() int64 {
	return c.shipmentConfirmedCents + c.shipmentUnconfirmedCents
}

// BalanceCents is reserved capacity minus total shipment value.
func (c VendorCapacityData) BalanceCents() int64 {
	return c.reservedCapacityCents - c.TotalShipmentCents()
}

// UtilizedCapacityPct is total shipment over factory capacity as a 0-100
// percentage, clamped, with null-safe division: zero capacity yields 0.
func (c VendorCapacityData) UtilizedCapacityPct() float64 {
	if c.factoryOverallCapacityCents == 0 {
		return 0
	}
	pct := decimal.NewFromInt(c.TotalShipmentCents()).
		Div(decimal.NewFromInt(c.factoryOverallCapacityCents)).
		Mul(decimal.NewFromInt(100))
	f, _ := pct.Float64()
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}
