package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/capacity"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/projection"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/quality"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/vendor"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/eventbus"
)

const defaultImportBatchSize = 500

// POImportRow is one parsed row of a purchase order feed. VendorName is the
// raw spelling from the feed; it resolves to a canonical vendor code, or
// stops at the unknown-vendor gate.
type POImportRow struct {
	PONumber             string
	VendorName           string
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
	Status               order.Status
	ShipmentStatus       order.ShipmentStatus
	IsSample             bool
	LineItems            []order.LineItem
}

// ImportResult tallies one reconciliation pass. Errors carries per-row and
// per-batch failures; a failure never aborts the rest of the pass.
type ImportResult struct {
	Created int
	Updated int
	Skipped int
	Errors  []string
}

// VendorAction is a human decision on a vendor name no resolver entry
// covers.
type VendorAction string

const (
	// VendorActionCreate registers the raw name as a brand-new vendor.
	VendorActionCreate VendorAction = "create"
	// VendorActionMap records the raw name as an alias of an existing vendor.
	VendorActionMap VendorAction = "map"
	// VendorActionSkip drops the rows carrying this name.
	VendorActionSkip VendorAction = "skip"
)

// VendorDecision resolves one unknown vendor name. Decisions are keyed by
// the raw spelling as it appears in the feed.
type VendorDecision struct {
	Action VendorAction
	// Code and Name apply to VendorActionCreate.
	Code string
	Name string
	// MapToCode applies to VendorActionMap.
	MapToCode string
}

// ImportService reconciles external feeds into the store. Natural composite
// keys decide insert versus update; rows never duplicate on re-import. Each
// entity import runs in a single transaction so a pass is all-or-nothing at
// the statement level but tolerant of bad rows.
type ImportService struct {
	orders      order.Repository
	vendors     vendor.Repository
	quality     quality.Repository
	capacity    capacity.Repository
	snapshots   projection.SnapshotRepository
	projections *ProjectionService
	publisher   eventbus.EventBus
	log         *logrus.Logger
	batchSize   int
}

func NewImportService(
	orders order.Repository,
	vendors vendor.Repository,
	qualityRepo quality.Repository,
	capacityRepo capacity.Repository,
	snapshots projection.SnapshotRepository,
	projections *ProjectionService,
	publisher eventbus.EventBus,
	log *logrus.Logger,
	batchSize int,
) *ImportService {
	if batchSize <= 0 {
		batchSize = defaultImportBatchSize
	}
	return &ImportService{
		orders:      orders,
		vendors:     vendors,
		quality:     qualityRepo,
		capacity:    capacityRepo,
		snapshots:   snapshots,
		projections: projections,
		publisher:   publisher,
		log:         log,
		batchSize:   batchSize,
	}
}

// UnknownVendors returns the distinct raw vendor names in the rows that no
// existing vendor code, name or alias resolves, in feed order. Callers
// collect decisions for these before running ImportPOs.
func (s *ImportService) UnknownVendors(ctx context.Context, rows []POImportRow) ([]string, error) {
	vendorList, err := s.vendors.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	resolver := vendor.NewResolver(vendorList)

	seen := make(map[string]bool)
	var unknown []string
	for _, row := range rows {
		name := strings.TrimSpace(row.VendorName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := resolver.Resolve(name); !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown, nil
}

// ImportPOs upserts purchase orders by PO number. Rows whose vendor name is
// unknown and has no decision are skipped and reported; nothing is guessed.
func (s *ImportService) ImportPOs(ctx context.Context, rows []POImportRow, decisions map[string]VendorDecision) (*ImportResult, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*ImportResult, error) {
		resolver, err := s.applyVendorDecisions(txCtx, decisions)
		if err != nil {
			return nil, err
		}

		existing, err := s.orders.ListNumbers(txCtx)
		if err != nil {
			return nil, err
		}
		known := make(map[string]bool, len(existing))
		for _, n := range existing {
			known[n] = true
		}

		result := &ImportResult{}
		var toInsert, toUpdate []order.PurchaseOrder
		seen := make(map[string]bool, len(rows))
		for _, row := range rows {
			poNumber := strings.TrimSpace(row.PONumber)
			if poNumber == "" {
				result.Skipped++
				result.Errors = append(result.Errors, "row with empty PO number skipped")
				continue
			}
			if seen[poNumber] {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("duplicate PO %s in feed skipped", poNumber))
				continue
			}
			vendorCode, ok := resolver.Resolve(row.VendorName)
			if !ok {
				decision, has := decisions[strings.TrimSpace(row.VendorName)]
				if has && decision.Action == VendorActionSkip {
					result.Skipped++
					continue
				}
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("PO %s: unknown vendor %q awaiting decision", poNumber, row.VendorName))
				continue
			}
			seen[poNumber] = true

			po := order.Hydrate(detailsFor(row, poNumber, vendorCode))
			if known[poNumber] {
				toUpdate = append(toUpdate, po)
			} else {
				toInsert = append(toInsert, po)
			}
		}

		result.Created = runBatches(txCtx, s, "po", toInsert, s.orders.CreateBatch, result)
		result.Updated = runBatches(txCtx, s, "po", toUpdate, s.orders.UpdateBatch, result)

		importRowsTotal.WithLabelValues("po", "created").Add(float64(result.Created))
		importRowsTotal.WithLabelValues("po", "updated").Add(float64(result.Updated))
		importRowsTotal.WithLabelValues("po", "skipped").Add(float64(result.Skipped))

		s.log.WithFields(logrus.Fields{
			"created": result.Created,
			"updated": result.Updated,
			"skipped": result.Skipped,
		}).Info("purchase order import complete")
		s.publisher.Publish(&order.ImportedEvent{
			Created: result.Created,
			Updated: result.Updated,
			Skipped: result.Skipped,
		})
		return result, nil
	})
}

// applyVendorDecisions registers created vendors and new aliases, then
// returns a resolver that covers them.
func (s *ImportService) applyVendorDecisions(ctx context.Context, decisions map[string]VendorDecision) (*vendor.Resolver, error) {
	for rawName, d := range decisions {
		switch d.Action {
		case VendorActionCreate:
			name := d.Name
			if name == "" {
				name = rawName
			}
			created, err := s.vendors.Create(ctx, vendor.New(d.Code, name))
			if err != nil {
				return nil, err
			}
			if !strings.EqualFold(created.Name(), rawName) {
				if err := s.vendors.Update(ctx, created.WithAlias(rawName)); err != nil {
					return nil, err
				}
			}
		case VendorActionMap:
			target, err := s.vendors.GetByCode(ctx, d.MapToCode)
			if err != nil {
				return nil, err
			}
			if err := s.vendors.Update(ctx, target.WithAlias(rawName)); err != nil {
				return nil, err
			}
		case VendorActionSkip:
		default:
			return nil, fmt.Errorf("vendor %q: unsupported action %q", rawName, d.Action)
		}
	}

	vendorList, err := s.vendors.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return vendor.NewResolver(vendorList), nil
}

// ImportShipments upserts split shipments under their PO, keyed by
// (po_number, sequence).
func (s *ImportService) ImportShipments(ctx context.Context, shipments map[string][]order.Shipment) (*ImportResult, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*ImportResult, error) {
		result := &ImportResult{}
		for poNumber, rows := range shipments {
			if err := s.orders.UpsertShipments(txCtx, poNumber, rows); err != nil {
				result.Skipped += len(rows)
				result.Errors = append(result.Errors, fmt.Sprintf("PO %s: shipment upsert failed: %v", poNumber, err))
				s.log.WithError(err).WithField("po_number", poNumber).Error("shipment upsert failed")
				continue
			}
			result.Updated += len(rows)
		}
		importRowsTotal.WithLabelValues("shipment", "updated").Add(float64(result.Updated))
		importRowsTotal.WithLabelValues("shipment", "skipped").Add(float64(result.Skipped))
		return result, nil
	})
}

// ImportInspections upserts inspections by composite key. A re-imported row
// updates in place so linked child records survive.
func (s *ImportService) ImportInspections(ctx context.Context, rows []quality.Inspection) (*ImportResult, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*ImportResult, error) {
		existing, err := s.quality.ListInspectionKeys(txCtx)
		if err != nil {
			return nil, err
		}

		result := &ImportResult{}
		var toInsert, toUpdate []quality.Inspection
		seen := make(map[string]bool, len(rows))
		for _, row := range rows {
			key := row.CompositeKey()
			if seen[key] {
				result.Skipped++
				continue
			}
			seen[key] = true
			if existing[key] {
				toUpdate = append(toUpdate, row)
			} else {
				toInsert = append(toInsert, row)
			}
		}

		result.Created = runBatches(txCtx, s, "inspection", toInsert, s.quality.CreateInspections, result)
		result.Updated = runBatches(txCtx, s, "inspection", toUpdate, s.quality.UpdateInspections, result)
		importRowsTotal.WithLabelValues("inspection", "created").Add(float64(result.Created))
		importRowsTotal.WithLabelValues("inspection", "updated").Add(float64(result.Updated))
		return result, nil
	})
}

// ImportQualityTests mirrors ImportInspections for lab tests.
func (s *ImportService) ImportQualityTests(ctx context.Context, rows []quality.QualityTest) (*ImportResult, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*ImportResult, error) {
		existing, err := s.quality.ListTestKeys(txCtx)
		if err != nil {
			return nil, err
		}

		result := &ImportResult{}
		var toInsert, toUpdate []quality.QualityTest
		seen := make(map[string]bool, len(rows))
		for _, row := range rows {
			key := row.CompositeKey()
			if seen[key] {
				result.Skipped++
				continue
			}
			seen[key] = true
			if existing[key] {
				toUpdate = append(toUpdate, row)
			} else {
				toInsert = append(toInsert, row)
			}
		}

		result.Created = runBatches(txCtx, s, "quality_test", toInsert, s.quality.CreateTests, result)
		result.Updated = runBatches(txCtx, s, "quality_test", toUpdate, s.quality.UpdateTests, result)
		importRowsTotal.WithLabelValues("quality_test", "created").Add(float64(result.Created))
		importRowsTotal.WithLabelValues("quality_test", "updated").Add(float64(result.Updated))
		return result, nil
	})
}

// ImportCapacity upserts capacity rows. Rows targeting a locked year are
// skipped and reported; the lock always wins over a feed.
func (s *ImportService) ImportCapacity(ctx context.Context, rows []capacity.VendorCapacityData) (*ImportResult, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*ImportResult, error) {
		result := &ImportResult{}

		lockedYears := make(map[int]bool)
		for _, row := range rows {
			year := row.Year()
			if _, checked := lockedYears[year]; checked {
				continue
			}
			locked, err := s.capacity.CountLocked(txCtx, []int{year})
			if err != nil {
				return nil, err
			}
			lockedYears[year] = locked > 0
		}

		var toUpsert []capacity.VendorCapacityData
		for _, row := range rows {
			if lockedYears[row.Year()] {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("capacity %s %d-%02d: year %d is locked", row.VendorCode(), row.Year(), row.Month(), row.Year()))
				continue
			}
			toUpsert = append(toUpsert, row)
		}

		result.Updated = runBatches(txCtx, s, "capacity", toUpsert, s.capacity.UpsertBatch, result)

		// Re-derive the vendor-year roll-ups for every year the feed touched.
		seenYears := make(map[int]bool, len(toUpsert))
		var years []int
		for _, row := range toUpsert {
			if !seenYears[row.Year()] {
				seenYears[row.Year()] = true
				years = append(years, row.Year())
			}
		}
		if len(years) > 0 {
			if _, err := s.capacity.RefreshSummary(txCtx, years); err != nil {
				return nil, err
			}
		}

		importRowsTotal.WithLabelValues("capacity", "updated").Add(float64(result.Updated))
		importRowsTotal.WithLabelValues("capacity", "skipped").Add(float64(result.Skipped))
		return result, nil
	})
}

// ImportProjections appends forecast snapshots and rebuilds the active set.
// Snapshots are append-only; an identical re-import adds history rows but
// leaves the rebuilt working set unchanged.
func (s *ImportService) ImportProjections(ctx context.Context, snapshots []projection.Snapshot) (*ImportResult, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*ImportResult, error) {
		result := &ImportResult{}
		result.Created = runBatches(txCtx, s, "projection", snapshots, s.snapshots.AppendBatch, result)
		importRowsTotal.WithLabelValues("projection", "created").Add(float64(result.Created))

		if _, err := s.projections.Rebuild(txCtx); err != nil {
			return nil, err
		}
		return result, nil
	})
}

// ClearOrders is the administrative full clear that precedes a full-refresh
// import.
func (s *ImportService) ClearOrders(ctx context.Context) (int64, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		deleted, err := s.orders.DeleteAll(txCtx)
		if err != nil {
			return 0, err
		}
		s.log.WithField("deleted", deleted).Warn("all purchase orders cleared")
		s.publisher.Publish(&order.ClearedEvent{Deleted: deleted})
		return deleted, nil
	})
}

// runBatches writes rows in batchSize chunks. A failed chunk logs its first
// record, lands in result.Errors, and the pass moves on to the next chunk.
func runBatches[T any](ctx context.Context, s *ImportService, entity string, rows []T, write func(context.Context, []T) error, result *ImportResult) int {
	written := 0
	for start := 0; start < len(rows); start += s.batchSize {
		end := start + s.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]
		if err := write(ctx, chunk); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"entity":       entity,
				"batch_start":  start,
				"batch_size":   len(chunk),
				"first_record": fmt.Sprintf("%+v", chunk[0]),
			}).Error("import batch failed")
			result.Errors = append(result.Errors, fmt.Sprintf("%s batch starting at row %d failed: %v", entity, start, err))
			result.Skipped += len(chunk)
			continue
		}
		written += len(chunk)
	}
	return written
}

func detailsFor(row POImportRow, poNumber, vendorCode string) order.Details {
	status := row.Status
	if status == "" {
		status = order.StatusActive
	}
	shipmentStatus := row.ShipmentStatus
	if shipmentStatus == "" {
		shipmentStatus = order.ShipmentStatusPending
	}
	return order.Details{
		PONumber:             poNumber,
		VendorCode:           vendorCode,
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
		Status:               status,
		ShipmentStatus:       shipmentStatus,
		IsSample:             row.IsSample,
		LineItems:            row.LineItems,
	}
}
