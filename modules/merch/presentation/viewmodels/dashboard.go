package viewmodels

// Read-contract shapes for the dashboard. Everything is pre-formatted
// strings so the rendering layer never does math or locale work.

type KPICards struct {
	TotalOrders        string
	TotalValue         string
	OTDRate            string
	OriginalOTDRate    string
	LatePOCount        string
	AtRiskCount        string
	YTDRevenue         string
	PriorYTDRevenue    string
	RevenueYoY         string
	PartialDataNotices []string
}

type ProjectionRow struct {
	VendorCode      string
	SKU             string
	Period          string
	OrderType       string
	Quantity        string
	Value           string
	Comment         string
	MatchStatus     string
	MatchedPONumber string
	ActualQuantity  string
	ActualValue     string
	ValueVariance   string
	VariancePct     string
}

type CapacityRow struct {
	VendorCode       string
	Client           string
	Period           string
	TotalShipment    string
	Reserved         string
	Balance          string
	UtilizedCapacity string
	Locked           bool
}

type SKURow struct {
	SKU        string
	OrderCount string
	TotalQty   string
	Value      string
}

// MilestoneRow is one evaluated milestone on a purchase order timeline.
// Detail carries the day count matching the status, empty when the status
// has none.
type MilestoneRow struct {
	Name   string
	Target string
	Actual string
	Status string
	Detail string
}

type POTimeline struct {
	PONumber   string
	Milestones []MilestoneRow
}

type TrendPoint struct {
	Period  string
	OTDRate string
}

type TrendSection struct {
	Points    []TrendPoint
	Direction string
}
