package quality

import (
	"fmt"
	"strings"
	"time"
)

type InspectionType string

const (
	InspectionTypeInline InspectionType = "inline"
	InspectionTypeFinal  InspectionType = "final"
)

type InspectionResult string

const (
	ResultPending InspectionResult = "pending"
	ResultPassed  InspectionResult = "passed"
	ResultFailed  InspectionResult = "failed"
)

// Inspection is a booked or planned inspection for a PO/SKU pair. Linked
// child records (tasks, comments) hang off the row, so re-imports must
// upsert by CompositeKey rather than insert duplicates.
type Inspection struct {
	SKU            string
	InspectionType InspectionType
	InspectionDate *time.Time
	PONumber       string
	Booked         bool
	Result         InspectionResult
}

// CompositeKey is the natural identity of an inspection across imports.
func (i Inspection) CompositeKey() string {
	return compositeKey(i.SKU, string(i.InspectionType), i.InspectionDate, i.PONumber)
}

// QualityTest is a lab/compliance test (PTS and friends) linked to a PO/SKU
// pair, upserted by the same composite-key discipline as inspections.
type QualityTest struct {
	SKU       string
	TestType  string
	TestDate  *time.Time
	PONumber  string
	Submitted bool
	Result    InspectionResult
}

func (t QualityTest) CompositeKey() string {
	return compositeKey(t.SKU, t.TestType, t.TestDate, t.PONumber)
}

// TestTypePTS is the pre-shipment test submission tracked by the at-risk
// rules.
const TestTypePTS = "PTS"

func compositeKey(sku, kind string, date *time.Time, poNumber string) string {
	d := ""
	if date != nil {
		d = date.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%s|%s", strings.TrimSpace(sku), strings.TrimSpace(kind), d, strings.TrimSpace(poNumber))
}
