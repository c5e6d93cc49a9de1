package persistence

import (
	"time"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/capacity"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/projection"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/quality"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/staff"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/vendor"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/infrastructure/persistence/models"
)

func toDomainPurchaseOrder(row *models.PurchaseOrder, lineItems []order.LineItem, shipments []order.Shipment, milestones []order.Milestone) order.PurchaseOrder {
	return order.Hydrate(order.Details{
		ID:                   row.ID,
		PONumber:             row.PONumber,
		VendorCode:           row.VendorCode,
		Client:               row.Client,
		Collection:           row.Collection,
		ProgramDescription:   row.ProgramDescription,
		Merchandiser:         row.Merchandiser,
		MerchandisingManager: row.MerchandisingManager,
		PODate:               row.PODate,
		OriginalShipDate:     row.OriginalShipDate,
		RevisedShipDate:      row.RevisedShipDate,
		OriginalCancelDate:   row.OriginalCancelDate,
		RevisedCancelDate:    row.RevisedCancelDate,
		RevisedBy:            row.RevisedBy,
		Quantity:             row.Quantity,
		TotalValueCents:      row.TotalValueCents,
		ShippedValueCents:    row.ShippedValueCents,
		Status:               order.Status(row.Status),
		ShipmentStatus:       order.ShipmentStatus(row.ShipmentStatus),
		IsSample:             row.IsSample,
		LineItems:            lineItems,
		Shipments:            shipments,
		Milestones:           milestones,
	})
}

func toDomainLineItem(row *models.LineItem) order.LineItem {
	return order.LineItem{
		SKU:            row.SKU,
		Description:    row.Description,
		Quantity:       row.Quantity,
		UnitPriceCents: row.UnitPriceCents,
		ValueCents:     row.ValueCents,
	}
}

func toDomainShipment(row *models.Shipment) order.Shipment {
	return order.Shipment{
		Sequence:               row.Sequence,
		DeliveryToConsolidator: row.DeliveryToConsolidator,
		ActualSailingDate:      row.ActualSailingDate,
		QtyShipped:             row.QtyShipped,
		ShippedValueCents:      row.ShippedValueCents,
	}
}

func toDomainMilestone(row *models.Milestone) order.Milestone {
	return order.Milestone{
		Name:        row.Name,
		PlannedDate: row.PlannedDate,
		RevisedDate: row.RevisedDate,
		ActualDate:  row.ActualDate,
	}
}

func toDomainSnapshot(row *models.ProjectionSnapshot) projection.Snapshot {
	return projection.NewSnapshot(
		row.VendorCode,
		row.SKU,
		row.Year,
		time.Month(row.Month),
		row.ImportDate,
		projection.OrderType(row.OrderType),
		row.Quantity,
		row.ValueCents,
		row.Collection,
		row.Client,
	)
}

func toDomainActiveProjection(row *models.ActiveProjection) projection.ActiveProjection {
	return projection.ActiveProjection{
		VendorCode:       row.VendorCode,
		SKU:              row.SKU,
		Year:             row.Year,
		Month:            time.Month(row.Month),
		OrderType:        projection.OrderType(row.OrderType),
		Quantity:         row.Quantity,
		ValueCents:       row.ValueCents,
		Collection:       row.Collection,
		Client:           row.Client,
		Comment:          row.Comment,
		MatchStatus:      projection.MatchStatus(row.MatchStatus),
		MatchedPONumber:  row.MatchedPONumber,
		ActualQuantity:   row.ActualQuantity,
		ActualValueCents: row.ActualValueCents,
		QuantityVariance: row.QuantityVariance,
		ValueVariance:    row.ValueVariance,
		VariancePct:      row.VariancePct,
	}
}

func toDomainCapacity(row *models.VendorCapacity) capacity.VendorCapacityData {
	return capacity.Hydrate(capacity.Details{
		VendorCode:                  row.VendorCode,
		Client:                      row.Client,
		Year:                        row.Year,
		Month:                       time.Month(row.Month),
		ShipmentConfirmedCents:      row.ShipmentConfirmedCents,
		ShipmentUnconfirmedCents:    row.ShipmentUnconfirmedCents,
		ProjectionTotalCents:        row.ProjectionTotalCents,
		ReservedCapacityCents:       row.ReservedCapacityCents,
		FactoryOverallCapacityCents: row.FactoryOverallCapacityCents,
		IsLocked:                    row.IsLocked,
	})
}

func toDomainInspection(row *models.Inspection) quality.Inspection {
	return quality.Inspection{
		SKU:            row.SKU,
		InspectionType: quality.InspectionType(row.InspectionType),
		InspectionDate: row.InspectionDate,
		PONumber:       row.PONumber,
		Booked:         row.Booked,
		Result:         quality.InspectionResult(row.Result),
	}
}

func toDomainQualityTest(row *models.QualityTest) quality.QualityTest {
	return quality.QualityTest{
		SKU:       row.SKU,
		TestType:  row.TestType,
		TestDate:  row.TestDate,
		PONumber:  row.PONumber,
		Submitted: row.Submitted,
		Result:    quality.InspectionResult(row.Result),
	}
}

func toDomainVendor(row *models.Vendor) vendor.Vendor {
	return vendor.Hydrate(row.ID, row.Code, row.Name, row.Aliases)
}

func toDomainStaff(row *models.Staff) staff.Staff {
	return staff.Hydrate(row.ID, row.Name, row.Title, staff.Role(row.Role))
}
