package classify

import (
	"fmt"
	"time"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/quality"
)

// Risk-window thresholds, in days before HOD.
const (
	inlineBookingLeadDays = 14
	finalBookingLeadDays  = 7
	ptsLeadDays           = 30
	riskWindowDays        = 30
)

// RiskInput is everything the at-risk predicate looks at for one order.
type RiskInput struct {
	PO          order.PurchaseOrder
	Inspections []quality.Inspection
	Tests       []quality.QualityTest
	Now         time.Time
}

// AtRisk evaluates the at-risk predicate independently of OTD status: an
// order can be on time so far and still at risk. Reasons list every rule
// that fired. The HOD target is the effective ship date; an order with no
// ship date at all cannot be placed in the risk window and is not at risk.
func AtRisk(in RiskInput) (bool, []string) {
	var reasons []string

	for _, insp := range in.Inspections {
		if insp.InspectionType == quality.InspectionTypeFinal && insp.Result == quality.ResultFailed {
			reasons = append(reasons, "failed final inspection")
			break
		}
	}

	hod := in.PO.EffectiveShipDate()
	if hod == nil {
		return len(reasons) > 0, reasons
	}

	daysToHOD := wholeDays(*hod, in.Now)
	inWindow := daysToHOD >= 0 && daysToHOD <= riskWindowDays

	if daysToHOD >= 0 && daysToHOD <= inlineBookingLeadDays && !hasBooked(in.Inspections, quality.InspectionTypeInline) {
		reasons = append(reasons, fmt.Sprintf("inline inspection unbooked with %d days to HOD", daysToHOD))
	}
	if daysToHOD >= 0 && daysToHOD <= finalBookingLeadDays && !hasBooked(in.Inspections, quality.InspectionTypeFinal) {
		reasons = append(reasons, fmt.Sprintf("final inspection unbooked with %d days to HOD", daysToHOD))
	}
	if daysToHOD >= 0 && daysToHOD <= ptsLeadDays && !hasSubmittedPTS(in.Tests) {
		reasons = append(reasons, fmt.Sprintf("PTS not submitted with %d days to HOD", daysToHOD))
	}
	if inWindow && !hasAnyShipmentDate(in.PO.Shipments()) {
		reasons = append(reasons, "no delivery or sailing date recorded in risk window")
	}

	return len(reasons) > 0, reasons
}

func hasBooked(inspections []quality.Inspection, kind quality.InspectionType) bool {
	for _, insp := range inspections {
		if insp.InspectionType == kind && insp.Booked {
			return true
		}
	}
	return false
}

func hasSubmittedPTS(tests []quality.QualityTest) bool {
	for _, t := range tests {
		if t.TestType == quality.TestTypePTS && t.Submitted {
			return true
		}
	}
	return false
}

func hasAnyShipmentDate(shipments []order.Shipment) bool {
	for i := range shipments {
		if shipments[i].DeliveryToConsolidator != nil || shipments[i].ActualSailingDate != nil {
			return true
		}
	}
	return false
}
