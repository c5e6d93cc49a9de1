package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/quality"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/classify"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/eventbus"
)

// ClassificationService persists delivery-performance outcomes onto the
// order and shipment rows, so ad-hoc SQL consumers read the same values the
// dashboards compute. A pass over unchanged state rewrites identical rows.
type ClassificationService struct {
	orders    order.Repository
	quality   quality.Repository
	publisher eventbus.EventBus
	log       *logrus.Logger
	now       func() time.Time
}

func NewClassificationService(
	orders order.Repository,
	qualityRepo quality.Repository,
	publisher eventbus.EventBus,
	log *logrus.Logger,
) *ClassificationService {
	return &ClassificationService{
		orders:    orders,
		quality:   qualityRepo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Refresh reclassifies every order and writes the outcomes in one
// transaction.
func (s *ClassificationService) Refresh(ctx context.Context) (int, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int, error) {
		orders, err := s.orders.Find(txCtx, &order.FindParams{})
		if err != nil {
			return 0, err
		}
		now := s.now()

		var unshipped []string
		for _, po := range orders {
			if po.ShipmentStatus() != order.ShipmentStatusShipped {
				unshipped = append(unshipped, po.PONumber())
			}
		}
		inspections := map[string][]quality.Inspection{}
		tests := map[string][]quality.QualityTest{}
		if len(unshipped) > 0 {
			if inspections, err = s.quality.ListInspectionsByPO(txCtx, unshipped); err != nil {
				return 0, err
			}
			if tests, err = s.quality.ListTestsByPO(txCtx, unshipped); err != nil {
				return 0, err
			}
		}

		rows := make([]order.Classification, 0, len(orders))
		for _, po := range orders {
			c := order.Classification{PONumber: po.PONumber()}
			// At-risk applies to orders still in flight; a shipped order's
			// flag always resets.
			if po.ShipmentStatus() != order.ShipmentStatusShipped {
				c.AtRisk, _ = classify.AtRisk(classify.RiskInput{
					PO:          po,
					Inspections: inspections[po.PONumber()],
					Tests:       tests[po.PONumber()],
					Now:         now,
				})
			}
			for _, shipment := range po.Shipments() {
				sc := order.ShipmentClassification{Sequence: shipment.Sequence}
				status, days := classify.OTDStatusFor(po, shipment)
				sc.OTDStatus = string(status)
				if status != classify.OTDPending {
					d := days
					sc.DaysLate = &d
				}
				origStatus, _ := classify.OriginalOTDStatusFor(po, shipment)
				sc.OriginalOTDStatus = string(origStatus)
				c.Shipments = append(c.Shipments, sc)
			}
			rows = append(rows, c)
		}

		if err := s.orders.SaveClassifications(txCtx, rows); err != nil {
			return 0, err
		}
		s.log.WithField("orders", len(rows)).Info("classification outcomes persisted")
		s.publisher.Publish(&order.ClassifiedEvent{Orders: len(rows)})
		return len(rows), nil
	})
}
