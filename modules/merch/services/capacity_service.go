package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/capacity"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/eventbus"
)

// CapacityDrift is one vendor-year where the stored shipment totals no
// longer agree with the values derived from shipped purchase orders.
// Reconciliation flags drift; it never writes over the capacity rows.
type CapacityDrift struct {
	VendorCode   string
	Year         int
	StoredCents  int64
	DerivedCents int64
}

func (d CapacityDrift) DeltaCents() int64 {
	return d.DerivedCents - d.StoredCents
}

// CapacityService manages the vendor capacity ledger: yearly lock and
// unlock, bulk clears that respect the lock, and reconciliation of stored
// shipment totals against actual shipped orders.
type CapacityService struct {
	repo      capacity.Repository
	orders    order.Repository
	publisher eventbus.EventBus
	log       *logrus.Logger
}

func NewCapacityService(
	repo capacity.Repository,
	orders order.Repository,
	publisher eventbus.EventBus,
	log *logrus.Logger,
) *CapacityService {
	return &CapacityService{
		repo:      repo,
		orders:    orders,
		publisher: publisher,
		log:       log,
	}
}

// LockCapacityYear freezes every capacity row of the year. Locking an
// already locked year reports zero touched rows and is not an error.
func (s *CapacityService) LockCapacityYear(ctx context.Context, year int) (capacity.LockResult, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (capacity.LockResult, error) {
		res, err := s.repo.LockYear(txCtx, year)
		if err != nil {
			return capacity.LockResult{}, err
		}
		s.log.WithFields(logrus.Fields{
			"year":         year,
			"data_rows":    res.DataRows,
			"summary_rows": res.SummaryRows,
		}).Info("capacity year locked")
		s.publisher.Publish(&capacity.YearLockedEvent{Year: year, Locked: true, Rows: res})
		return res, nil
	})
}

// UnlockCapacityYear reopens the year for edits and clears.
func (s *CapacityService) UnlockCapacityYear(ctx context.Context, year int) (capacity.LockResult, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (capacity.LockResult, error) {
		res, err := s.repo.UnlockYear(txCtx, year)
		if err != nil {
			return capacity.LockResult{}, err
		}
		s.log.WithFields(logrus.Fields{
			"year":         year,
			"data_rows":    res.DataRows,
			"summary_rows": res.SummaryRows,
		}).Info("capacity year unlocked")
		s.publisher.Publish(&capacity.YearLockedEvent{Year: year, Locked: false, Rows: res})
		return res, nil
	})
}

// ClearUnlockedCapacityData deletes capacity rows for the given years,
// leaving locked rows untouched. Returns the number of rows deleted.
func (s *CapacityService) ClearUnlockedCapacityData(ctx context.Context, years []int) (int64, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		preserved, err := s.repo.CountLocked(txCtx, years)
		if err != nil {
			return 0, err
		}
		deleted, err := s.repo.DeleteUnlocked(txCtx, years)
		if err != nil {
			return 0, err
		}
		if preserved > 0 {
			lockedRowsPreservedTotal.Add(float64(preserved))
		}
		s.log.WithFields(logrus.Fields{
			"years":     years,
			"deleted":   deleted,
			"preserved": preserved,
		}).Info("capacity data cleared")
		return deleted, nil
	})
}

// ListByYear returns the capacity ledger for one year.
func (s *CapacityService) ListByYear(ctx context.Context, year int) ([]capacity.VendorCapacityData, error) {
	return s.repo.ListByYear(ctx, year)
}

// YearSummaries returns the per-vendor roll-ups for one year. Summaries are
// refreshed by capacity imports, so a year with no feed yet has none.
func (s *CapacityService) YearSummaries(ctx context.Context, year int) ([]capacity.Summary, error) {
	return s.repo.ListSummaries(ctx, year)
}

// ShippedValuesByVendor derives per-vendor shipped value for the year from
// purchase orders whose shipment status is Shipped, keyed by MIN actual
// sailing date across the order's shipments.
func (s *CapacityService) ShippedValuesByVendor(ctx context.Context, year int) (map[string]int64, error) {
	return s.orders.ShippedValueByVendor(ctx, year)
}

// ReconcileShipments compares the stored shipment totals per vendor-year
// against values derived from shipped orders and returns the rows that
// disagree. The stored ledger is left as-is: drift is a review queue, not
// an auto-correction.
func (s *CapacityService) ReconcileShipments(ctx context.Context, year int) ([]CapacityDrift, error) {
	derived, err := s.orders.ShippedValueByVendor(ctx, year)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	stored := make(map[string]int64)
	for _, r := range rows {
		stored[r.VendorCode()] += r.TotalShipmentCents()
	}

	var drift []CapacityDrift
	for vendorCode, storedCents := range stored {
		if derivedCents := derived[vendorCode]; derivedCents != storedCents {
			drift = append(drift, CapacityDrift{
				VendorCode:   vendorCode,
				Year:         year,
				StoredCents:  storedCents,
				DerivedCents: derivedCents,
			})
		}
	}
	// Vendors with shipped orders but no capacity rows at all.
	for vendorCode, derivedCents := range derived {
		if _, ok := stored[vendorCode]; !ok && derivedCents != 0 {
			drift = append(drift, CapacityDrift{
				VendorCode:   vendorCode,
				Year:         year,
				DerivedCents: derivedCents,
			})
		}
	}

	sort.Slice(drift, func(i, j int) bool { return drift[i].VendorCode < drift[j].VendorCode })
	if len(drift) > 0 {
		s.log.WithFields(logrus.Fields{
			"year":  year,
			"count": len(drift),
		}).Warn("capacity shipment drift detected")
	}
	return drift, nil
}
