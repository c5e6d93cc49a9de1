package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/projection"
)

func snapshot(vendorCode, sku string, year int, month time.Month, importDate time.Time, qty int, valueCents int64) projection.Snapshot {
	return projection.NewSnapshot(vendorCode, sku, year, month, importDate, projection.OrderTypeRegular, qty, valueCents, "", "")
}

func TestRebuildActiveProjections_FreshSet(t *testing.T) {
	latest := []projection.Snapshot{
		snapshot("V1", "SKU-1", 2025, time.March, time.Now(), 10, 1000),
		snapshot("V2", "SKU-2", 2025, time.April, time.Now(), 20, 2000),
	}
	out := RebuildActiveProjections(latest, nil)
	require.Len(t, out, 2)
	require.Equal(t, projection.MatchStatusUnmatched, out[0].MatchStatus)
	require.Equal(t, "V1", out[0].VendorCode)
}

func TestRebuildActiveProjections_CommentAndMatchSurvive(t *testing.T) {
	latest := []projection.Snapshot{
		snapshot("V1", "SKU-1", 2025, time.March, time.Now(), 12, 1200),
	}
	qty := 10
	val := int64(1000)
	prior := []projection.ActiveProjection{{
		VendorCode:       "V1",
		SKU:              "SKU-1",
		Year:             2025,
		Month:            time.March,
		Quantity:         10,
		ValueCents:       1000,
		Comment:          "vendor confirmed by phone",
		MatchStatus:      projection.MatchStatusMatched,
		MatchedPONumber:  "200001",
		ActualQuantity:   &qty,
		ActualValueCents: &val,
	}}

	out := RebuildActiveProjections(latest, prior)
	require.Len(t, out, 1)
	require.Equal(t, "vendor confirmed by phone", out[0].Comment)
	require.Equal(t, projection.MatchStatusMatched, out[0].MatchStatus)
	require.Equal(t, "200001", out[0].MatchedPONumber)
	// Forecast fields come from the new snapshot, not the prior row.
	require.Equal(t, 12, out[0].Quantity)
	require.Equal(t, int64(1200), out[0].ValueCents)
}

func TestRebuildActiveProjections_DroppedKeyDropsOverrides(t *testing.T) {
	latest := []projection.Snapshot{
		snapshot("V1", "SKU-NEW", 2025, time.March, time.Now(), 5, 500),
	}
	prior := []projection.ActiveProjection{{
		VendorCode: "V1", SKU: "SKU-OLD", Year: 2025, Month: time.March,
		Comment: "stale", MatchStatus: projection.MatchStatusMatched,
	}}
	out := RebuildActiveProjections(latest, prior)
	require.Len(t, out, 1)
	require.Equal(t, "SKU-NEW", out[0].SKU)
	require.Empty(t, out[0].Comment)
	require.Equal(t, projection.MatchStatusUnmatched, out[0].MatchStatus)
}

func TestRebuildActiveProjections_DedupesKeys(t *testing.T) {
	now := time.Now()
	latest := []projection.Snapshot{
		snapshot("V1", "SKU-1", 2025, time.March, now, 10, 1000),
		snapshot("V1", "SKU-1", 2025, time.March, now, 99, 9900),
	}
	out := RebuildActiveProjections(latest, nil)
	require.Len(t, out, 1)
	require.Equal(t, 10, out[0].Quantity)
}

func TestProjectionServiceRebuild_UsesLatestSnapshotPerPeriod(t *testing.T) {
	snapshots := &memSnapshotRepo{}
	active := &memActiveRepo{}
	bus := &capturingBus{}
	svc := NewProjectionService(snapshots, active, bus, testLogger())

	older := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 1, 0)
	require.NoError(t, snapshots.AppendBatch(testCtx(), []projection.Snapshot{
		snapshot("V1", "SKU-1", 2025, time.March, older, 10, 1000),
		snapshot("V1", "SKU-1", 2025, time.March, newer, 15, 1500),
	}))

	count, err := svc.Rebuild(testCtx())
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, 15, active.rows[0].Quantity)
	require.Len(t, bus.events, 1)
	require.IsType(t, &projection.RebuiltEvent{}, bus.events[0])
}
