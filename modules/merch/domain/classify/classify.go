// Package classify holds the pure delivery-performance rules. Nothing here
// touches storage; every function is deterministic over its inputs, and
// missing or malformed dates degrade to pending rather than erroring.
package classify

import (
	"strings"
	"time"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
)

type OTDStatus string

const (
	OTDOnTime  OTDStatus = "on_time"
	OTDLate    OTDStatus = "late"
	OTDPending OTDStatus = "pending"
)

// Business constants. These are given policy, matched as-is.
const (
	// FranchisePOPrefix marks franchise orders, which never enter OTD
	// denominators.
	FranchisePOPrefix = "F"
	// Program8X8Marker excludes the 8X8 program from OTD.
	Program8X8Marker = "8X8"
)

// Amnesty parties: a date revision attributed to one of these reclassifies
// an otherwise-late shipment as on-time. Vendor revisions never qualify.
const (
	RevisedByClient    = "CLIENT"
	RevisedByForwarder = "FORWARDER"
)

// IsExcluded reports whether a purchase order is outside OTD scope entirely:
// franchise-prefixed numbers, the 8X8 program, zero/negative value orders,
// and designated samples.
func IsExcluded(po order.PurchaseOrder) bool {
	if strings.HasPrefix(po.PONumber(), FranchisePOPrefix) {
		return true
	}
	if strings.Contains(strings.ToUpper(po.ProgramDescription()), Program8X8Marker) {
		return true
	}
	if po.TotalValueCents() <= 0 {
		return true
	}
	return po.IsSample()
}

// HasAmnesty reports whether the order's date revision was client- or
// forwarder-initiated.
func HasAmnesty(po order.PurchaseOrder) bool {
	revisedBy := strings.ToUpper(strings.TrimSpace(po.RevisedBy()))
	return revisedBy == RevisedByClient || revisedBy == RevisedByForwarder
}

// OTDStatusFor classifies a shipped PO against its effective cancel date.
// DaysLate is the signed whole-day difference (negative means early) and is
// meaningful for both outcomes. Late shipments under client/forwarder
// amnesty classify as on-time.
func OTDStatusFor(po order.PurchaseOrder, s order.Shipment) (OTDStatus, int) {
	hod := s.DeliveryToConsolidator
	cancel := po.EffectiveCancelDate()
	if hod == nil || cancel == nil {
		return OTDPending, 0
	}
	daysLate := wholeDays(*hod, *cancel)
	if daysLate <= 0 {
		return OTDOnTime, daysLate
	}
	if HasAmnesty(po) {
		return OTDOnTime, daysLate
	}
	return OTDLate, daysLate
}

// OriginalOTDStatusFor is the stricter variant: it compares against the
// original cancel date and ignores revisions and amnesty entirely.
func OriginalOTDStatusFor(po order.PurchaseOrder, s order.Shipment) (OTDStatus, int) {
	hod := s.DeliveryToConsolidator
	cancel := po.OriginalCancelDate()
	if hod == nil || cancel == nil {
		return OTDPending, 0
	}
	daysLate := wholeDays(*hod, *cancel)
	if daysLate <= 0 {
		return OTDOnTime, daysLate
	}
	return OTDLate, daysLate
}

// IsLatePO reports whether an unshipped order has blown past its effective
// cancel date.
func IsLatePO(po order.PurchaseOrder, now time.Time) bool {
	cancel := po.EffectiveCancelDate()
	if cancel == nil {
		return false
	}
	return now.After(*cancel) && po.ShipmentStatus() != order.ShipmentStatusShipped
}

func wholeDays(a, b time.Time) int {
	return int(a.Sub(b) / (24 * time.Hour))
}
