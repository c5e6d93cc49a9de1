package mappers

import (
	"fmt"
	"time"

	"github.com/Rhymond/go-money"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/capacity"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/projection"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/classify"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/presentation/viewmodels"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/services"
)

func formatCents(cents int64) string {
	return money.New(cents, money.USD).Display()
}

func formatDate(d *time.Time) string {
	if d == nil {
		return "n/a"
	}
	return d.Format("2006-01-02")
}

func formatPct(pct *float64) string {
	if pct == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *pct)
}

func KPIsToViewModel(kpis *services.DashboardKPIs) *viewmodels.KPICards {
	if kpis == nil {
		return nil
	}
	return &viewmodels.KPICards{
		TotalOrders:        fmt.Sprintf("%d", kpis.TotalOrders),
		TotalValue:         formatCents(kpis.TotalValueCents),
		OTDRate:            formatPct(kpis.OTDRatePct),
		OriginalOTDRate:    formatPct(kpis.OriginalOTDRatePct),
		LatePOCount:        fmt.Sprintf("%d", kpis.LatePOCount),
		AtRiskCount:        fmt.Sprintf("%d", kpis.AtRiskCount),
		YTDRevenue:         formatCents(kpis.YTDRevenueCents),
		PriorYTDRevenue:    formatCents(kpis.PriorYTDRevenueCents),
		RevenueYoY:         formatPct(kpis.RevenueYoYPct),
		PartialDataNotices: kpis.Errors,
	}
}

func ProjectionToViewModel(p projection.ActiveProjection) *viewmodels.ProjectionRow {
	row := &viewmodels.ProjectionRow{
		VendorCode:      p.VendorCode,
		SKU:             p.SKU,
		Period:          fmt.Sprintf("%d-%02d", p.Year, p.Month),
		OrderType:       string(p.OrderType),
		Quantity:        fmt.Sprintf("%d", p.Quantity),
		Value:           formatCents(p.ValueCents),
		Comment:         p.Comment,
		MatchStatus:     string(p.MatchStatus),
		MatchedPONumber: p.MatchedPONumber,
		ActualQuantity:  "n/a",
		ActualValue:     "n/a",
		ValueVariance:   "n/a",
		VariancePct:     formatPct(p.VariancePct),
	}
	if p.ActualQuantity != nil {
		row.ActualQuantity = fmt.Sprintf("%d", *p.ActualQuantity)
	}
	if p.ActualValueCents != nil {
		row.ActualValue = formatCents(*p.ActualValueCents)
	}
	if p.ValueVariance != nil {
		row.ValueVariance = formatCents(*p.ValueVariance)
	}
	return row
}

func CapacityToViewModel(c capacity.VendorCapacityData) *viewmodels.CapacityRow {
	utilized := c.UtilizedCapacityPct()
	return &viewmodels.CapacityRow{
		VendorCode:       c.VendorCode(),
		Client:           c.Client(),
		Period:           fmt.Sprintf("%d-%02d", c.Year(), c.Month()),
		TotalShipment:    formatCents(c.TotalShipmentCents()),
		Reserved:         formatCents(c.ReservedCapacityCents()),
		Balance:          formatCents(c.BalanceCents()),
		UtilizedCapacity: formatPct(&utilized),
		Locked:           c.IsLocked(),
	}
}

func SKUStatToViewModel(s services.SKUStat) *viewmodels.SKURow {
	return &viewmodels.SKURow{
		SKU:        s.SKU,
		OrderCount: fmt.Sprintf("%d", s.OrderCount),
		TotalQty:   fmt.Sprintf("%d", s.TotalQty),
		Value:      formatCents(s.ValueCents),
	}
}

// TimelineToViewModel evaluates every milestone of the order as of now and
// pre-formats the result for rendering.
func TimelineToViewModel(po order.PurchaseOrder, now time.Time) *viewmodels.POTimeline {
	out := &viewmodels.POTimeline{PONumber: po.PONumber()}
	for _, m := range po.Milestones() {
		state := classify.MilestoneStateFor(m, now)
		row := viewmodels.MilestoneRow{
			Name:   m.Name,
			Target: formatDate(m.TargetDate()),
			Actual: formatDate(m.ActualDate),
			Status: string(state.Status),
		}
		switch state.Status {
		case classify.MilestoneLate:
			row.Detail = fmt.Sprintf("%d days late", state.DaysLate)
		case classify.MilestoneOverdue:
			row.Detail = fmt.Sprintf("%d days overdue", state.DaysOverdue)
		case classify.MilestoneAtRisk:
			row.Detail = fmt.Sprintf("due in %d days", state.DaysUntil)
		}
		out.Milestones = append(out.Milestones, row)
	}
	return out
}

func TrendToViewModel(t *services.OTDTrend) *viewmodels.TrendSection {
	if t == nil {
		return nil
	}
	out := &viewmodels.TrendSection{Direction: string(t.Direction)}
	for _, p := range t.Points {
		out.Points = append(out.Points, viewmodels.TrendPoint{
			Period:  fmt.Sprintf("%d-%02d", p.Year, p.Month),
			OTDRate: formatPct(p.OTDRatePct),
		})
	}
	return out
}
