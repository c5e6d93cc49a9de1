package services

import (
	"testing"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/stretchr/testify/require"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/staff"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newTestAnalytics(orders *memOrderRepo, qualityRepo *memQualityRepo, staffRepo *memStaffRepo) *AnalyticsService {
	return NewAnalyticsService(orders, qualityRepo, staffRepo, testLogger())
}

func TestDashboardKPIs_SplitShipmentsCountOnce(t *testing.T) {
	orders := newMemOrderRepo()
	// One order split into three shipments: revenue is the header value,
	// recognized in the year of the earliest sailing date.
	orders.orders["100001"] = order.Hydrate(order.Details{
		PONumber:          "100001",
		VendorCode:        "V1",
		TotalValueCents:   300_000,
		ShippedValueCents: 300_000,
		ShipmentStatus:    order.ShipmentStatusShipped,
		Shipments: []order.Shipment{
			{Sequence: 1, ActualSailingDate: datePtr(2025, time.February, 1)},
			{Sequence: 2, ActualSailingDate: datePtr(2025, time.March, 1)},
			{Sequence: 3, ActualSailingDate: datePtr(2025, time.April, 1)},
		},
	})
	svc := newTestAnalytics(orders, newMemQualityRepo(), newMemStaffRepo())

	kpis, err := svc.DashboardKPIs(testCtx(), AnalyticsFilter{}, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, int64(300_000), kpis.YTDRevenueCents)
}

func TestDashboardKPIs_LeapDayClampedPriorWindow(t *testing.T) {
	orders := newMemOrderRepo()
	orders.orders["100001"] = order.Hydrate(order.Details{
		PONumber:          "100001",
		ShippedValueCents: 100_000,
		ShipmentStatus:    order.ShipmentStatusShipped,
		Shipments:         []order.Shipment{{Sequence: 1, ActualSailingDate: datePtr(2023, time.February, 28)}},
	})
	orders.orders["100002"] = order.Hydrate(order.Details{
		PONumber:          "100002",
		ShippedValueCents: 999_999,
		ShipmentStatus:    order.ShipmentStatusShipped,
		Shipments:         []order.Shipment{{Sequence: 1, ActualSailingDate: datePtr(2023, time.March, 1)}},
	})
	svc := newTestAnalytics(orders, newMemQualityRepo(), newMemStaffRepo())

	// As of Feb 29 2024 the prior-year window ends Feb 28 2023, not Mar 1.
	asOf := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	kpis, err := svc.DashboardKPIs(testCtx(), AnalyticsFilter{}, asOf)
	require.NoError(t, err)
	require.Equal(t, int64(100_000), kpis.PriorYTDRevenueCents)
}

func TestDashboardKPIs_AmnestyDivergence(t *testing.T) {
	orders := newMemOrderRepo()
	// Delivered 4 days after the original cancel date; client moved the
	// date. Counts on-time under OTD, late under Original OTD.
	orders.orders["100001"] = order.Hydrate(order.Details{
		PONumber:           "100001",
		TotalValueCents:    100_000,
		OriginalCancelDate: datePtr(2024, time.June, 1),
		RevisedCancelDate:  datePtr(2024, time.June, 3),
		RevisedBy:          "CLIENT",
		ShipmentStatus:     order.ShipmentStatusShipped,
		Shipments: []order.Shipment{
			{Sequence: 1, DeliveryToConsolidator: datePtr(2024, time.June, 5)},
		},
	})
	svc := newTestAnalytics(orders, newMemQualityRepo(), newMemStaffRepo())

	kpis, err := svc.DashboardKPIs(testCtx(), AnalyticsFilter{}, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.InDelta(t, 100.0, *kpis.OTDRatePct, 0.001)
	require.InDelta(t, 0.0, *kpis.OriginalOTDRatePct, 0.001)
}

func TestDashboardKPIs_ExcludedOrdersOutOfOTDDenominator(t *testing.T) {
	orders := newMemOrderRepo()
	orders.orders["F12345"] = order.Hydrate(order.Details{
		PONumber:           "F12345",
		TotalValueCents:    100_000,
		OriginalCancelDate: datePtr(2024, time.June, 1),
		Shipments: []order.Shipment{
			{Sequence: 1, DeliveryToConsolidator: datePtr(2024, time.June, 30)},
		},
	})
	svc := newTestAnalytics(orders, newMemQualityRepo(), newMemStaffRepo())

	kpis, err := svc.DashboardKPIs(testCtx(), AnalyticsFilter{}, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Nil(t, kpis.OTDRatePct, "franchise order leaves the denominator empty")
	require.Equal(t, 1, kpis.TotalOrders, "excluded orders still count as orders")
}

func TestDashboardKPIs_QualityFailureDegrades(t *testing.T) {
	orders := newMemOrderRepo()
	orders.orders["100001"] = order.Hydrate(order.Details{
		PONumber:         "100001",
		TotalValueCents:  100_000,
		OriginalShipDate: datePtr(2024, time.June, 10),
		ShipmentStatus:   order.ShipmentStatusPending,
	})
	qualityRepo := newMemQualityRepo()
	qualityRepo.listErr = gerrors.New("quality store down")
	svc := newTestAnalytics(orders, qualityRepo, newMemStaffRepo())

	kpis, err := svc.DashboardKPIs(testCtx(), AnalyticsFilter{}, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err, "dashboard stays up when a secondary source fails")
	require.Zero(t, kpis.AtRiskCount)
	require.NotEmpty(t, kpis.Errors)
}

func TestStaffKPIs_RoleScoping(t *testing.T) {
	orders := newMemOrderRepo()
	orders.orders["100001"] = order.Hydrate(order.Details{
		PONumber: "100001", TotalValueCents: 100, MerchandisingManager: "Kim Lee",
	})
	orders.orders["100002"] = order.Hydrate(order.Details{
		PONumber: "100002", TotalValueCents: 200, MerchandisingManager: "Someone Else",
	})
	staffRepo := newMemStaffRepo(
		staff.New("Kim Lee", "Merchandising Manager"),
		staff.New("Ana Cruz", "Head of Merchandising"),
	)
	svc := newTestAnalytics(orders, newMemQualityRepo(), staffRepo)
	asOf := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	kpis, err := svc.StaffKPIs(testCtx(), "Kim Lee", asOf)
	require.NoError(t, err)
	require.Equal(t, 1, kpis.TotalOrders)
	require.Equal(t, "Kim Lee", orders.findParams.MerchandisingManager)

	kpis, err = svc.StaffKPIs(testCtx(), "Ana Cruz", asOf)
	require.NoError(t, err)
	require.Equal(t, 2, kpis.TotalOrders, "org role sees everything")
}

func TestSKUStats_AggregatesLines(t *testing.T) {
	orders := newMemOrderRepo()
	orders.orders["100001"] = order.Hydrate(order.Details{
		PONumber: "100001",
		LineItems: []order.LineItem{
			{SKU: "SKU-A", Quantity: 10, ValueCents: 1000},
			{SKU: "SKU-B", Quantity: 5, ValueCents: 5000},
		},
	})
	orders.orders["100002"] = order.Hydrate(order.Details{
		PONumber:  "100002",
		LineItems: []order.LineItem{{SKU: "SKU-A", Quantity: 3, ValueCents: 300}},
	})
	svc := newTestAnalytics(orders, newMemQualityRepo(), newMemStaffRepo())

	stats, err := svc.SKUStats(testCtx(), AnalyticsFilter{})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	require.Equal(t, "SKU-B", stats[0].SKU, "largest value first")
	require.Equal(t, "SKU-A", stats[1].SKU)
	require.Equal(t, 13, stats[1].TotalQty)
	require.Equal(t, int64(1300), stats[1].ValueCents)
}

func TestOTDTrend_Direction(t *testing.T) {
	mkOrder := func(po string, cancel, delivered *time.Time) order.PurchaseOrder {
		return order.Hydrate(order.Details{
			PONumber:           po,
			TotalValueCents:    100,
			OriginalCancelDate: cancel,
			Shipments:          []order.Shipment{{Sequence: 1, DeliveryToConsolidator: delivered}},
		})
	}

	orders := newMemOrderRepo()
	// April: 1 of 2 on time (50%). May: all on time (100%). Delta over the
	// 3pp threshold reads as improving.
	orders.orders["1"] = mkOrder("1", datePtr(2025, time.April, 30), datePtr(2025, time.April, 10))
	orders.orders["2"] = mkOrder("2", datePtr(2025, time.April, 5), datePtr(2025, time.April, 20))
	orders.orders["3"] = mkOrder("3", datePtr(2025, time.May, 30), datePtr(2025, time.May, 10))
	orders.orders["4"] = mkOrder("4", datePtr(2025, time.May, 30), datePtr(2025, time.May, 12))
	svc := newTestAnalytics(orders, newMemQualityRepo(), newMemStaffRepo())

	trend, err := svc.OTDTrend(testCtx(), AnalyticsFilter{}, 3, time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, trend.Points, 3)
	require.Equal(t, TrendImproving, trend.Direction)
}

func TestOTDTrend_CountsDeliveriesFromOlderOrders(t *testing.T) {
	orders := newMemOrderRepo()
	// Ordered in January, delivered on time in May. The trailing window is
	// about delivery months; the order date must not gate the fetch.
	orders.orders["100001"] = order.Hydrate(order.Details{
		PONumber:           "100001",
		TotalValueCents:    100,
		PODate:             datePtr(2025, time.January, 15),
		OriginalCancelDate: datePtr(2025, time.May, 30),
		Shipments: []order.Shipment{
			{Sequence: 1, DeliveryToConsolidator: datePtr(2025, time.May, 10)},
		},
	})
	svc := newTestAnalytics(orders, newMemQualityRepo(), newMemStaffRepo())

	trend, err := svc.OTDTrend(testCtx(), AnalyticsFilter{}, 3, time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	may := trend.Points[len(trend.Points)-1]
	require.Equal(t, 1, may.OnTime, "on-time May delivery must count in the May bucket")
}

func TestTrendDirection_Thresholds(t *testing.T) {
	pct := func(v float64) *float64 { return &v }
	cases := []struct {
		name   string
		points []OTDTrendPoint
		want   TrendDirection
	}{
		{"stable within threshold", []OTDTrendPoint{{OTDRatePct: pct(90)}, {OTDRatePct: pct(92)}}, TrendStable},
		{"declining", []OTDTrendPoint{{OTDRatePct: pct(90)}, {OTDRatePct: pct(80)}}, TrendDeclining},
		{"improving at exactly threshold", []OTDTrendPoint{{OTDRatePct: pct(90)}, {OTDRatePct: pct(93)}}, TrendImproving},
		{"single point", []OTDTrendPoint{{OTDRatePct: pct(90)}}, TrendStable},
		{"empty months ignored", []OTDTrendPoint{{OTDRatePct: pct(90)}, {}, {OTDRatePct: pct(70)}}, TrendDeclining},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, trendDirection(tc.points))
		})
	}
}
