package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/quality"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/staff"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/classify"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/period"
)

// AnalyticsFilter narrows dashboard aggregates. Zero-value fields mean "no
// restriction"; staff scoping layers on top of it.
type AnalyticsFilter struct {
	VendorCode           string
	Client               string
	Merchandiser         string
	MerchandisingManager string
	From                 *time.Time
	To                   *time.Time
}

// DashboardKPIs is one dashboard payload. Rate fields are nil when the
// denominator is empty. The dashboard stays up when a secondary source
// fails: Errors carries what could not be computed.
type DashboardKPIs struct {
	TotalOrders          int
	TotalValueCents      int64
	OTDRatePct           *float64
	OriginalOTDRatePct   *float64
	LatePOCount          int
	AtRiskCount          int
	YTDRevenueCents      int64
	PriorYTDRevenueCents int64
	RevenueYoYPct        *float64
	Errors               []string
}

// SKUStat aggregates ordered demand for one SKU across matching orders.
type SKUStat struct {
	SKU          string
	OrderCount   int
	TotalQty     int
	ValueCents   int64
	ShippedCents int64
}

type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// trendThresholdPct is the month-over-month movement, in percentage points,
// below which the trend reads as stable.
const trendThresholdPct = 3.0

type OTDTrendPoint struct {
	Year       int
	Month      time.Month
	OnTime     int
	Late       int
	OTDRatePct *float64
}

type OTDTrend struct {
	Points    []OTDTrendPoint
	Direction TrendDirection
}

// AnalyticsService computes the read-only dashboard aggregates. Everything
// here derives from orders, quality records and staff scope at query time;
// nothing is persisted.
type AnalyticsService struct {
	orders  order.Repository
	quality quality.Repository
	staff   staff.Repository
	log     *logrus.Logger
}

func NewAnalyticsService(
	orders order.Repository,
	qualityRepo quality.Repository,
	staffRepo staff.Repository,
	log *logrus.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		orders:  orders,
		quality: qualityRepo,
		staff:   staffRepo,
		log:     log,
	}
}

// DashboardKPIs computes the headline numbers as of the given instant.
func (s *AnalyticsService) DashboardKPIs(ctx context.Context, filter AnalyticsFilter, asOf time.Time) (*DashboardKPIs, error) {
	orders, err := s.orders.Find(ctx, findParamsFor(filter))
	if err != nil {
		return nil, err
	}
	return s.computeKPIs(ctx, orders, asOf), nil
}

// StaffKPIs computes the same dashboard scoped to what the named staff
// member's role allows them to see.
func (s *AnalyticsService) StaffKPIs(ctx context.Context, name string, asOf time.Time) (*DashboardKPIs, error) {
	member, err := s.staff.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	scope := staff.ScopeFor(member)
	return s.DashboardKPIs(ctx, AnalyticsFilter{
		Merchandiser:         scope.Merchandiser,
		MerchandisingManager: scope.MerchandisingManager,
	}, asOf)
}

func (s *AnalyticsService) computeKPIs(ctx context.Context, orders []order.PurchaseOrder, asOf time.Time) *DashboardKPIs {
	kpis := &DashboardKPIs{TotalOrders: len(orders)}

	var onTime, late, origOnTime, origLate int
	for _, po := range orders {
		kpis.TotalValueCents += po.TotalValueCents()

		if classify.IsLatePO(po, asOf) {
			kpis.LatePOCount++
		}
		if classify.IsExcluded(po) {
			continue
		}
		for _, shipment := range po.Shipments() {
			switch status, _ := classify.OTDStatusFor(po, shipment); status {
			case classify.OTDOnTime:
				onTime++
			case classify.OTDLate:
				late++
			}
			switch status, _ := classify.OriginalOTDStatusFor(po, shipment); status {
			case classify.OTDOnTime:
				origOnTime++
			case classify.OTDLate:
				origLate++
			}
		}
	}
	kpis.OTDRatePct = ratePct(onTime, onTime+late)
	kpis.OriginalOTDRatePct = ratePct(origOnTime, origOnTime+origLate)

	s.countAtRisk(ctx, orders, asOf, kpis)
	s.revenueYTD(orders, asOf, kpis)
	return kpis
}

// countAtRisk is best effort: a quality-store failure degrades the at-risk
// tile instead of failing the whole dashboard.
func (s *AnalyticsService) countAtRisk(ctx context.Context, orders []order.PurchaseOrder, asOf time.Time, kpis *DashboardKPIs) {
	poNumbers := make([]string, 0, len(orders))
	for _, po := range orders {
		if po.ShipmentStatus() != order.ShipmentStatusShipped {
			poNumbers = append(poNumbers, po.PONumber())
		}
	}
	if len(poNumbers) == 0 {
		return
	}

	inspections, err := s.quality.ListInspectionsByPO(ctx, poNumbers)
	if err != nil {
		s.log.WithError(err).Warn("at-risk count unavailable")
		kpis.Errors = append(kpis.Errors, fmt.Sprintf("at-risk count unavailable: %v", err))
		return
	}
	tests, err := s.quality.ListTestsByPO(ctx, poNumbers)
	if err != nil {
		s.log.WithError(err).Warn("at-risk count unavailable")
		kpis.Errors = append(kpis.Errors, fmt.Sprintf("at-risk count unavailable: %v", err))
		return
	}

	for _, po := range orders {
		if po.ShipmentStatus() == order.ShipmentStatusShipped {
			continue
		}
		atRisk, _ := classify.AtRisk(classify.RiskInput{
			PO:          po,
			Inspections: inspections[po.PONumber()],
			Tests:       tests[po.PONumber()],
			Now:         asOf,
		})
		if atRisk {
			kpis.AtRiskCount++
		}
	}
}

// revenueYTD recognizes a whole order's shipped value on its earliest
// actual sailing date, so an order split into N shipments counts once. The
// prior-year window ends on the same calendar date, leap-day clamped.
func (s *AnalyticsService) revenueYTD(orders []order.PurchaseOrder, asOf time.Time, kpis *DashboardKPIs) {
	ytdStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, asOf.Location())
	priorEnd := period.PriorYearSameDate(asOf)
	priorStart := time.Date(priorEnd.Year(), time.January, 1, 0, 0, 0, 0, asOf.Location())

	for _, po := range orders {
		sailed := po.MinSailingDate()
		if sailed == nil {
			continue
		}
		switch {
		case !sailed.Before(ytdStart) && !sailed.After(asOf):
			kpis.YTDRevenueCents += po.ShippedValueCents()
		case !sailed.Before(priorStart) && !sailed.After(priorEnd):
			kpis.PriorYTDRevenueCents += po.ShippedValueCents()
		}
	}
	if kpis.PriorYTDRevenueCents != 0 {
		pct, _ := decimal.NewFromInt(kpis.YTDRevenueCents - kpis.PriorYTDRevenueCents).
			Div(decimal.NewFromInt(kpis.PriorYTDRevenueCents)).
			Mul(decimal.NewFromInt(100)).
			Float64()
		kpis.RevenueYoYPct = &pct
	}
}

// SKUStats aggregates ordered and shipped demand per SKU over the filtered
// order set, largest value first.
func (s *AnalyticsService) SKUStats(ctx context.Context, filter AnalyticsFilter) ([]SKUStat, error) {
	orders, err := s.orders.Find(ctx, findParamsFor(filter))
	if err != nil {
		return nil, err
	}

	bySKU := make(map[string]*SKUStat)
	for _, po := range orders {
		for _, li := range po.LineItems() {
			stat, ok := bySKU[li.SKU]
			if !ok {
				stat = &SKUStat{SKU: li.SKU}
				bySKU[li.SKU] = stat
			}
			stat.OrderCount++
			stat.TotalQty += li.Quantity
			stat.ValueCents += li.ValueCents
		}
		if po.ShipmentStatus() == order.ShipmentStatusShipped {
			// Shipped value lives on the header; attribute it to the
			// order's largest line when lines exist.
			if skuOfLargestLine := largestLineSKU(po.LineItems()); skuOfLargestLine != "" {
				bySKU[skuOfLargestLine].ShippedCents += po.ShippedValueCents()
			}
		}
	}

	out := make([]SKUStat, 0, len(bySKU))
	for _, stat := range bySKU {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ValueCents != out[j].ValueCents {
			return out[i].ValueCents > out[j].ValueCents
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

// OTDTrend buckets shipments by HOD month over the trailing window and
// reads the direction off the last two months with data. The window bounds
// apply to delivery dates at bucketing time, not to po_date: a shipment
// delivered this month usually belongs to an order placed months earlier.
func (s *AnalyticsService) OTDTrend(ctx context.Context, filter AnalyticsFilter, months int, asOf time.Time) (*OTDTrend, error) {
	if months <= 0 {
		months = 6
	}
	from := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location()).AddDate(0, -(months - 1), 0)

	orders, err := s.orders.Find(ctx, findParamsFor(filter))
	if err != nil {
		return nil, err
	}

	type bucket struct{ onTime, late int }
	buckets := make(map[string]*bucket, months)
	keys := make([]string, 0, months)
	points := make([]OTDTrendPoint, 0, months)
	for i := 0; i < months; i++ {
		m := from.AddDate(0, i, 0)
		key := m.Format("2006-01")
		buckets[key] = &bucket{}
		keys = append(keys, key)
		points = append(points, OTDTrendPoint{Year: m.Year(), Month: m.Month()})
	}

	for _, po := range orders {
		if classify.IsExcluded(po) {
			continue
		}
		for _, shipment := range po.Shipments() {
			if shipment.DeliveryToConsolidator == nil {
				continue
			}
			b, ok := buckets[shipment.DeliveryToConsolidator.Format("2006-01")]
			if !ok {
				continue
			}
			switch status, _ := classify.OTDStatusFor(po, shipment); status {
			case classify.OTDOnTime:
				b.onTime++
			case classify.OTDLate:
				b.late++
			}
		}
	}

	for i, key := range keys {
		b := buckets[key]
		points[i].OnTime = b.onTime
		points[i].Late = b.late
		points[i].OTDRatePct = ratePct(b.onTime, b.onTime+b.late)
	}

	return &OTDTrend{Points: points, Direction: trendDirection(points)}, nil
}

func trendDirection(points []OTDTrendPoint) TrendDirection {
	var withData []float64
	for _, p := range points {
		if p.OTDRatePct != nil {
			withData = append(withData, *p.OTDRatePct)
		}
	}
	if len(withData) < 2 {
		return TrendStable
	}
	delta := withData[len(withData)-1] - withData[len(withData)-2]
	switch {
	case delta >= trendThresholdPct:
		return TrendImproving
	case delta <= -trendThresholdPct:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func largestLineSKU(lines []order.LineItem) string {
	var sku string
	var best int64 = -1
	for _, li := range lines {
		if li.ValueCents > best {
			best = li.ValueCents
			sku = li.SKU
		}
	}
	return sku
}

func findParamsFor(f AnalyticsFilter) *order.FindParams {
	return &order.FindParams{
		VendorCode:           f.VendorCode,
		Client:               f.Client,
		Merchandiser:         f.Merchandiser,
		MerchandisingManager: f.MerchandisingManager,
		From:                 f.From,
		To:                   f.To,
	}
}

// ratePct is numerator over denominator as a 0-100 percentage, nil when the
// denominator is zero.
func ratePct(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	pct, _ := decimal.NewFromInt(int64(num)).
		Div(decimal.NewFromInt(int64(den))).
		Mul(decimal.NewFromInt(100)).
		Float64()
	return &pct
}
