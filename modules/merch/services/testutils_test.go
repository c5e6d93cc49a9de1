package services

import (
	"context"
	"io"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/capacity"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/projection"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/quality"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/staff"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/vendor"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
)

// fakeTx satisfies pgx.Tx so InTx reuses it instead of opening a real
// transaction. In-memory repositories never touch it.
type fakeTx struct{ pgx.Tx }

func testCtx() context.Context {
	return composables.WithTx(context.Background(), fakeTx{})
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type capturingBus struct {
	events []interface{}
}

func (b *capturingBus) Publish(args ...interface{})     { b.events = append(b.events, args...) }
func (b *capturingBus) Subscribe(handler interface{})   {}
func (b *capturingBus) Unsubscribe(handler interface{}) {}
func (b *capturingBus) Clear()                          {}
func (b *capturingBus) SubscribersCount() int           { return 0 }

type memActiveRepo struct {
	rows       []projection.ActiveProjection
	saveCalls  int
	savedRows  []projection.ActiveProjection
	replaceErr error
}

func (m *memActiveRepo) ListAll(ctx context.Context) ([]projection.ActiveProjection, error) {
	out := make([]projection.ActiveProjection, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *memActiveRepo) ReplaceAll(ctx context.Context, projections []projection.ActiveProjection) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.rows = append([]projection.ActiveProjection{}, projections...)
	return nil
}

func (m *memActiveRepo) SaveMatches(ctx context.Context, projections []projection.ActiveProjection) error {
	m.saveCalls++
	m.savedRows = append([]projection.ActiveProjection{}, projections...)
	byKey := make(map[projection.Key]projection.ActiveProjection, len(projections))
	for _, p := range projections {
		byKey[p.MatchKey()] = p
	}
	for i := range m.rows {
		if p, ok := byKey[m.rows[i].MatchKey()]; ok {
			m.rows[i] = p
		}
	}
	return nil
}

type memSnapshotRepo struct {
	rows []projection.Snapshot
}

func (m *memSnapshotRepo) AppendBatch(ctx context.Context, snapshots []projection.Snapshot) error {
	m.rows = append(m.rows, snapshots...)
	return nil
}

// ListLatest keeps the newest snapshot per (sku, year, month), like the SQL
// window query.
func (m *memSnapshotRepo) ListLatest(ctx context.Context) ([]projection.Snapshot, error) {
	latest := make(map[projection.PeriodKey]projection.Snapshot)
	for _, s := range m.rows {
		key := s.PeriodKey()
		if prev, ok := latest[key]; !ok || !s.ImportDate().Before(prev.ImportDate()) {
			latest[key] = s
		}
	}
	out := make([]projection.Snapshot, 0, len(latest))
	for _, s := range latest {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU() < out[j].SKU() })
	return out, nil
}

type memOrderRepo struct {
	orders     map[string]order.PurchaseOrder
	candidates map[string][]order.LineItemCandidate // keyed by sku or collection
	shipped    map[string]int64
	findParams *order.FindParams
	created    []order.PurchaseOrder
	updated    []order.PurchaseOrder
	createErr  error
	shipments  map[string][]order.Shipment
	classified map[string]order.Classification
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders:     make(map[string]order.PurchaseOrder),
		candidates: make(map[string][]order.LineItemCandidate),
		shipped:    make(map[string]int64),
		shipments:  make(map[string][]order.Shipment),
		classified: make(map[string]order.Classification),
	}
}

func (m *memOrderRepo) GetByNumber(ctx context.Context, poNumber string) (order.PurchaseOrder, error) {
	return m.orders[poNumber], nil
}

func (m *memOrderRepo) Find(ctx context.Context, params *order.FindParams) ([]order.PurchaseOrder, error) {
	m.findParams = params
	numbers := make([]string, 0, len(m.orders))
	for n := range m.orders {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	var out []order.PurchaseOrder
	for _, n := range numbers {
		po := m.orders[n]
		if params != nil {
			if params.Merchandiser != "" && po.Merchandiser() != params.Merchandiser {
				continue
			}
			if params.MerchandisingManager != "" && po.MerchandisingManager() != params.MerchandisingManager {
				continue
			}
			if params.VendorCode != "" && po.VendorCode() != params.VendorCode {
				continue
			}
			// Date bounds select on po_date, like the SQL; NULL never matches.
			if params.From != nil || params.To != nil {
				d := po.PODate()
				if d == nil {
					continue
				}
				if params.From != nil && d.Before(*params.From) {
					continue
				}
				if params.To != nil && d.After(*params.To) {
					continue
				}
			}
		}
		out = append(out, po)
	}
	return out, nil
}

func (m *memOrderRepo) ListNumbers(ctx context.Context) ([]string, error) {
	var out []string
	for n := range m.orders {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memOrderRepo) CreateBatch(ctx context.Context, orders []order.PurchaseOrder) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, po := range orders {
		m.orders[po.PONumber()] = po
		m.created = append(m.created, po)
	}
	return nil
}

func (m *memOrderRepo) UpdateBatch(ctx context.Context, orders []order.PurchaseOrder) error {
	for _, po := range orders {
		m.orders[po.PONumber()] = po
		m.updated = append(m.updated, po)
	}
	return nil
}

func (m *memOrderRepo) UpsertShipments(ctx context.Context, poNumber string, shipments []order.Shipment) error {
	m.shipments[poNumber] = shipments
	return nil
}

func (m *memOrderRepo) SaveClassifications(ctx context.Context, rows []order.Classification) error {
	for _, c := range rows {
		m.classified[c.PONumber] = c
	}
	return nil
}

func (m *memOrderRepo) ListLineItemCandidates(ctx context.Context, q order.LineItemQuery) ([]order.LineItemCandidate, error) {
	key := q.SKU
	if key == "" {
		key = q.Collection
	}
	var out []order.LineItemCandidate
	for _, c := range m.candidates[key] {
		if c.VendorCode != q.VendorCode {
			continue
		}
		if c.PODate.Before(q.From) || c.PODate.After(q.To) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memOrderRepo) ShippedValueByVendor(ctx context.Context, year int) (map[string]int64, error) {
	out := make(map[string]int64, len(m.shipped))
	for k, v := range m.shipped {
		out[k] = v
	}
	return out, nil
}

func (m *memOrderRepo) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(m.orders))
	m.orders = make(map[string]order.PurchaseOrder)
	return n, nil
}

type memVendorRepo struct {
	vendors map[string]vendor.Vendor
}

func newMemVendorRepo(vendors ...vendor.Vendor) *memVendorRepo {
	m := &memVendorRepo{vendors: make(map[string]vendor.Vendor)}
	for _, v := range vendors {
		m.vendors[v.Code()] = v
	}
	return m
}

func (m *memVendorRepo) GetAll(ctx context.Context) ([]vendor.Vendor, error) {
	codes := make([]string, 0, len(m.vendors))
	for c := range m.vendors {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	out := make([]vendor.Vendor, 0, len(codes))
	for _, c := range codes {
		out = append(out, m.vendors[c])
	}
	return out, nil
}

func (m *memVendorRepo) GetByCode(ctx context.Context, code string) (vendor.Vendor, error) {
	return m.vendors[code], nil
}

func (m *memVendorRepo) Create(ctx context.Context, data vendor.Vendor) (vendor.Vendor, error) {
	m.vendors[data.Code()] = data
	return data, nil
}

func (m *memVendorRepo) Update(ctx context.Context, data vendor.Vendor) error {
	m.vendors[data.Code()] = data
	return nil
}

type summaryKey struct {
	vendorCode string
	year       int
}

type memCapacityRepo struct {
	rows      []capacity.VendorCapacityData
	summaries map[summaryKey]capacity.Summary
}

func (m *memCapacityRepo) ListByYear(ctx context.Context, year int) ([]capacity.VendorCapacityData, error) {
	var out []capacity.VendorCapacityData
	for _, r := range m.rows {
		if r.Year() == year {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memCapacityRepo) UpsertBatch(ctx context.Context, rows []capacity.VendorCapacityData) error {
	for _, row := range rows {
		replaced := false
		for i, existing := range m.rows {
			if existing.VendorCode() == row.VendorCode() && existing.Client() == row.Client() &&
				existing.Year() == row.Year() && existing.Month() == row.Month() {
				if !existing.IsLocked() {
					m.rows[i] = row
				}
				replaced = true
				break
			}
		}
		if !replaced {
			m.rows = append(m.rows, row)
		}
	}
	return nil
}

func (m *memCapacityRepo) setLock(year int, locked bool) capacity.LockResult {
	var res capacity.LockResult
	for i, r := range m.rows {
		if r.Year() == year && r.IsLocked() != locked {
			d := r.Details()
			d.IsLocked = locked
			m.rows[i] = capacity.Hydrate(d)
			res.DataRows++
		}
	}
	for k, s := range m.summaries {
		if k.year == year && s.IsLocked != locked {
			s.IsLocked = locked
			m.summaries[k] = s
			res.SummaryRows++
		}
	}
	return res
}

func (m *memCapacityRepo) LockYear(ctx context.Context, year int) (capacity.LockResult, error) {
	return m.setLock(year, true), nil
}

func (m *memCapacityRepo) UnlockYear(ctx context.Context, year int) (capacity.LockResult, error) {
	return m.setLock(year, false), nil
}

func (m *memCapacityRepo) DeleteUnlocked(ctx context.Context, years []int) (int64, error) {
	inYears := make(map[int]bool, len(years))
	for _, y := range years {
		inYears[y] = true
	}
	var kept []capacity.VendorCapacityData
	var deleted int64
	for _, r := range m.rows {
		if inYears[r.Year()] && !r.IsLocked() {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	for k, s := range m.summaries {
		if inYears[k.year] && !s.IsLocked {
			delete(m.summaries, k)
		}
	}
	return deleted, nil
}

// RefreshSummary mirrors the SQL roll-up: totals re-derived per vendor-year,
// locked summaries skipped.
func (m *memCapacityRepo) RefreshSummary(ctx context.Context, years []int) (int64, error) {
	if m.summaries == nil {
		m.summaries = make(map[summaryKey]capacity.Summary)
	}
	inYears := make(map[int]bool, len(years))
	for _, y := range years {
		inYears[y] = true
	}
	derived := make(map[summaryKey]capacity.Summary)
	for _, r := range m.rows {
		if !inYears[r.Year()] {
			continue
		}
		key := summaryKey{vendorCode: r.VendorCode(), year: r.Year()}
		s := derived[key]
		s.VendorCode = r.VendorCode()
		s.Year = r.Year()
		s.TotalShipmentCents += r.TotalShipmentCents()
		s.TotalReservedCents += r.ReservedCapacityCents()
		derived[key] = s
	}
	var written int64
	for key, s := range derived {
		if prev, ok := m.summaries[key]; ok && prev.IsLocked {
			continue
		}
		m.summaries[key] = s
		written++
	}
	return written, nil
}

func (m *memCapacityRepo) ListSummaries(ctx context.Context, year int) ([]capacity.Summary, error) {
	var out []capacity.Summary
	for k, s := range m.summaries {
		if k.year == year {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VendorCode < out[j].VendorCode })
	return out, nil
}

func (m *memCapacityRepo) CountByYear(ctx context.Context, year int) (int64, error) {
	var n int64
	for _, r := range m.rows {
		if r.Year() == year {
			n++
		}
	}
	return n, nil
}

func (m *memCapacityRepo) CountLocked(ctx context.Context, years []int) (int64, error) {
	inYears := make(map[int]bool, len(years))
	for _, y := range years {
		inYears[y] = true
	}
	var n int64
	for _, r := range m.rows {
		if inYears[r.Year()] && r.IsLocked() {
			n++
		}
	}
	return n, nil
}

type memQualityRepo struct {
	inspections map[string]quality.Inspection
	tests       map[string]quality.QualityTest
	listErr     error
}

func newMemQualityRepo() *memQualityRepo {
	return &memQualityRepo{
		inspections: make(map[string]quality.Inspection),
		tests:       make(map[string]quality.QualityTest),
	}
}

func (m *memQualityRepo) ListInspectionsByPO(ctx context.Context, poNumbers []string) (map[string][]quality.Inspection, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make(map[string][]quality.Inspection)
	for _, i := range m.inspections {
		out[i.PONumber] = append(out[i.PONumber], i)
	}
	return out, nil
}

func (m *memQualityRepo) ListTestsByPO(ctx context.Context, poNumbers []string) (map[string][]quality.QualityTest, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make(map[string][]quality.QualityTest)
	for _, t := range m.tests {
		out[t.PONumber] = append(out[t.PONumber], t)
	}
	return out, nil
}

func (m *memQualityRepo) ListInspectionKeys(ctx context.Context) (map[string]bool, error) {
	out := make(map[string]bool, len(m.inspections))
	for k := range m.inspections {
		out[k] = true
	}
	return out, nil
}

func (m *memQualityRepo) ListTestKeys(ctx context.Context) (map[string]bool, error) {
	out := make(map[string]bool, len(m.tests))
	for k := range m.tests {
		out[k] = true
	}
	return out, nil
}

func (m *memQualityRepo) CreateInspections(ctx context.Context, rows []quality.Inspection) error {
	for _, r := range rows {
		m.inspections[r.CompositeKey()] = r
	}
	return nil
}

func (m *memQualityRepo) UpdateInspections(ctx context.Context, rows []quality.Inspection) error {
	for _, r := range rows {
		m.inspections[r.CompositeKey()] = r
	}
	return nil
}

func (m *memQualityRepo) CreateTests(ctx context.Context, rows []quality.QualityTest) error {
	for _, r := range rows {
		m.tests[r.CompositeKey()] = r
	}
	return nil
}

func (m *memQualityRepo) UpdateTests(ctx context.Context, rows []quality.QualityTest) error {
	for _, r := range rows {
		m.tests[r.CompositeKey()] = r
	}
	return nil
}

func (m *memQualityRepo) CountInspections(ctx context.Context) (int64, error) {
	return int64(len(m.inspections)), nil
}

type memStaffRepo struct {
	members map[string]staff.Staff
}

func newMemStaffRepo(members ...staff.Staff) *memStaffRepo {
	m := &memStaffRepo{members: make(map[string]staff.Staff)}
	for _, s := range members {
		m.members[s.Name()] = s
	}
	return m
}

func (m *memStaffRepo) GetAll(ctx context.Context) ([]staff.Staff, error) {
	var out []staff.Staff
	for _, s := range m.members {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStaffRepo) GetByName(ctx context.Context, name string) (staff.Staff, error) {
	return m.members[name], nil
}

func (m *memStaffRepo) Create(ctx context.Context, data staff.Staff) (staff.Staff, error) {
	m.members[data.Name()] = data
	return data, nil
}

func (m *memStaffRepo) Update(ctx context.Context, data staff.Staff) error {
	m.members[data.Name()] = data
	return nil
}
