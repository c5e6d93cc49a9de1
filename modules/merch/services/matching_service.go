package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/projection"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/vendor"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/period"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/eventbus"
)

const (
	defaultRegularWindowDays = 90
	defaultSpoWindowDays     = 30
)

// MatchReport summarizes one matching pass. Skipped rows carry a reason
// each; they are reported, never silently dropped.
type MatchReport struct {
	Matched   int
	Partial   int
	Unmatched int
	Expired   int
	Skipped   int
	Reasons   []string
}

// MatchingConfig tunes order-window lengths. Zero values fall back to the
// 90/30-day defaults.
type MatchingConfig struct {
	RegularWindowDays int
	SpoWindowDays     int
}

// MatchingService reconciles active projections against actual purchase
// order line items. It writes match fields back onto active projections
// only; snapshots are never touched. Running it twice over the same state
// yields identical results.
type MatchingService struct {
	active    projection.ActiveRepository
	orders    order.Repository
	vendors   vendor.Repository
	publisher eventbus.EventBus
	log       *logrus.Logger

	regularWindowDays int
	spoWindowDays     int
	now               func() time.Time
}

func NewMatchingService(
	active projection.ActiveRepository,
	orders order.Repository,
	vendors vendor.Repository,
	publisher eventbus.EventBus,
	log *logrus.Logger,
	cfg MatchingConfig,
) *MatchingService {
	if cfg.RegularWindowDays <= 0 {
		cfg.RegularWindowDays = defaultRegularWindowDays
	}
	if cfg.SpoWindowDays <= 0 {
		cfg.SpoWindowDays = defaultSpoWindowDays
	}
	return &MatchingService{
		active:            active,
		orders:            orders,
		vendors:           vendors,
		publisher:         publisher,
		log:               log,
		regularWindowDays: cfg.RegularWindowDays,
		spoWindowDays:     cfg.SpoWindowDays,
		now:               time.Now,
	}
}

// Run executes one matching pass over the whole active projection set.
func (s *MatchingService) Run(ctx context.Context) (*MatchReport, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*MatchReport, error) {
		projections, err := s.active.ListAll(txCtx)
		if err != nil {
			return nil, err
		}
		vendorList, err := s.vendors.GetAll(txCtx)
		if err != nil {
			return nil, err
		}
		resolver := vendor.NewResolver(vendorList)
		now := s.now()

		report := &MatchReport{}
		updated := make([]projection.ActiveProjection, 0, len(projections))
		for _, p := range projections {
			next, skipReason, err := s.matchOne(txCtx, p, resolver, now)
			if err != nil {
				return nil, err
			}
			if skipReason != "" {
				report.Skipped++
				report.Reasons = append(report.Reasons, skipReason)
				continue
			}

			switch next.MatchStatus {
			case projection.MatchStatusMatched:
				report.Matched++
			case projection.MatchStatusPartial:
				report.Partial++
			case projection.MatchStatusExpired:
				report.Expired++
			default:
				report.Unmatched++
			}

			if !sameMatch(p, next) {
				updated = append(updated, next)
				matchOutcomesTotal.WithLabelValues(string(next.MatchStatus)).Inc()
				s.publisher.Publish(&projection.MatchedEvent{
					Key:      next.MatchKey(),
					Status:   next.MatchStatus,
					PONumber: next.MatchedPONumber,
				})
			}
		}

		if len(updated) > 0 {
			if err := s.active.SaveMatches(txCtx, updated); err != nil {
				return nil, err
			}
		}

		s.log.WithFields(logrus.Fields{
			"matched":   report.Matched,
			"partial":   report.Partial,
			"unmatched": report.Unmatched,
			"expired":   report.Expired,
			"skipped":   report.Skipped,
		}).Info("projection matching pass complete")
		return report, nil
	})
}

func (s *MatchingService) matchOne(
	ctx context.Context,
	p projection.ActiveProjection,
	resolver *vendor.Resolver,
	now time.Time,
) (projection.ActiveProjection, string, error) {
	if p.Quantity <= 0 {
		return p, fmt.Sprintf("projection %s %d-%02d: non-positive quantity %d", p.SKU, p.Year, p.Month, p.Quantity), nil
	}
	if p.VendorCode == "" {
		return p, fmt.Sprintf("projection %s %d-%02d: missing vendor code", p.SKU, p.Year, p.Month), nil
	}
	vendorCode, ok := resolver.Resolve(p.VendorCode)
	if !ok {
		return p, fmt.Sprintf("projection %s %d-%02d: unresolvable vendor %q", p.SKU, p.Year, p.Month, p.VendorCode), nil
	}

	windowDays := s.regularWindowDays
	if p.OrderType == projection.OrderTypeSPO {
		windowDays = s.spoWindowDays
	}
	start, end := period.OrderWindow(p.Year, p.Month, windowDays)
	midpoint := period.MonthMidpoint(p.Year, p.Month)

	// SKU-level match comes first, sentinel or not: a literal "SPO" line
	// item still wins over the collection fallback.
	candidates, err := s.orders.ListLineItemCandidates(ctx, order.LineItemQuery{
		SKU:        p.SKU,
		VendorCode: vendorCode,
		From:       start,
		To:         end,
	})
	if err != nil {
		return p, "", err
	}
	if best, ok := pickBest(candidates, midpoint); ok {
		return withVariance(p, projection.MatchStatusMatched, best), "", nil
	}

	if p.SKU == projection.SentinelSKU && p.Collection != "" {
		candidates, err = s.orders.ListLineItemCandidates(ctx, order.LineItemQuery{
			Collection: p.Collection,
			VendorCode: vendorCode,
			From:       start,
			To:         end,
		})
		if err != nil {
			return p, "", err
		}
		if best, ok := pickBest(candidates, midpoint); ok {
			return withVariance(p, projection.MatchStatusPartial, best), "", nil
		}
	}

	if now.After(end) {
		return p.WithStatus(projection.MatchStatusExpired), "", nil
	}
	return p.WithStatus(projection.MatchStatusUnmatched), "", nil
}

// pickBest applies the deterministic tie-break: smallest absolute date
// distance from the target month midpoint, then the lexically lower PO
// number.
func pickBest(candidates []order.LineItemCandidate, midpoint time.Time) (order.LineItemCandidate, bool) {
	if len(candidates) == 0 {
		return order.LineItemCandidate{}, false
	}
	best := candidates[0]
	bestDist := absDuration(best.PODate.Sub(midpoint))
	for _, c := range candidates[1:] {
		dist := absDuration(c.PODate.Sub(midpoint))
		if dist < bestDist || (dist == bestDist && c.PONumber < best.PONumber) {
			best = c
			bestDist = dist
		}
	}
	return best, true
}

func withVariance(p projection.ActiveProjection, status projection.MatchStatus, c order.LineItemCandidate) projection.ActiveProjection {
	var variancePct *float64
	if p.ValueCents != 0 {
		pct, _ := decimal.NewFromInt(c.ValueCents - p.ValueCents).
			Div(decimal.NewFromInt(p.ValueCents)).
			Mul(decimal.NewFromInt(100)).
			Float64()
		variancePct = &pct
	}
	return p.WithMatch(status, c.PONumber, c.Quantity, c.ValueCents, variancePct)
}

func sameMatch(a, b projection.ActiveProjection) bool {
	if a.MatchStatus != b.MatchStatus || a.MatchedPONumber != b.MatchedPONumber {
		return false
	}
	return eqIntPtr(a.ActualQuantity, b.ActualQuantity) &&
		eqInt64Ptr(a.ActualValueCents, b.ActualValueCents)
}

func eqIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
