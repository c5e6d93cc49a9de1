package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/projection"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/eventbus"
)

// ProjectionService owns the active-projection working set: an explicit
// materialized view over the append-only snapshot history, rebuilt whenever
// a new snapshot import lands.
type ProjectionService struct {
	snapshots projection.SnapshotRepository
	active    projection.ActiveRepository
	publisher eventbus.EventBus
	log       *logrus.Logger
}

func NewProjectionService(
	snapshots projection.SnapshotRepository,
	active projection.ActiveRepository,
	publisher eventbus.EventBus,
	log *logrus.Logger,
) *ProjectionService {
	return &ProjectionService{
		snapshots: snapshots,
		active:    active,
		publisher: publisher,
		log:       log,
	}
}

// RebuildActiveProjections derives the new working set from the latest
// snapshot per period and the prior set's user-entered state. Comments
// always survive; match fields survive when the same (vendor, sku, year,
// month) key is still present, and the idempotent matcher reconciles them
// on its next pass. Pure function: both inputs are taken as-is.
func RebuildActiveProjections(latest []projection.Snapshot, prior []projection.ActiveProjection) []projection.ActiveProjection {
	priorByKey := make(map[projection.Key]projection.ActiveProjection, len(prior))
	for _, p := range prior {
		priorByKey[p.MatchKey()] = p
	}

	seen := make(map[projection.Key]bool, len(latest))
	out := make([]projection.ActiveProjection, 0, len(latest))
	for _, s := range latest {
		next := projection.FromSnapshot(s)
		key := next.MatchKey()
		if seen[key] {
			// At most one non-expired row per key; ListLatest should not
			// produce duplicates, but a duplicate in the input must not
			// produce one in the output.
			continue
		}
		seen[key] = true

		if prev, ok := priorByKey[key]; ok {
			next.Comment = prev.Comment
			next.MatchStatus = prev.MatchStatus
			next.MatchedPONumber = prev.MatchedPONumber
			next.ActualQuantity = prev.ActualQuantity
			next.ActualValueCents = prev.ActualValueCents
			next.QuantityVariance = prev.QuantityVariance
			next.ValueVariance = prev.ValueVariance
			next.VariancePct = prev.VariancePct
		}
		out = append(out, next)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.VendorCode != b.VendorCode {
			return a.VendorCode < b.VendorCode
		}
		if a.SKU != b.SKU {
			return a.SKU < b.SKU
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})
	return out
}

// Rebuild replaces the active projection set from the latest snapshots.
func (s *ProjectionService) Rebuild(ctx context.Context) (int, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int, error) {
		latest, err := s.snapshots.ListLatest(txCtx)
		if err != nil {
			return 0, err
		}
		prior, err := s.active.ListAll(txCtx)
		if err != nil {
			return 0, err
		}

		next := RebuildActiveProjections(latest, prior)
		if err := s.active.ReplaceAll(txCtx, next); err != nil {
			return 0, err
		}

		s.log.WithField("count", len(next)).Info("active projections rebuilt")
		s.publisher.Publish(&projection.RebuiltEvent{Count: len(next)})
		return len(next), nil
	})
}
