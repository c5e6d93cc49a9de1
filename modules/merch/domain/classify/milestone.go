package classify

import (
	"time"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/order"
)

type MilestoneStatus string

const (
	MilestonePending  MilestoneStatus = "pending"
	MilestoneAtRisk   MilestoneStatus = "at-risk"
	MilestoneOverdue  MilestoneStatus = "overdue"
	MilestoneLate     MilestoneStatus = "late"
	MilestoneComplete MilestoneStatus = "complete"
)

const milestoneAtRiskLeadDays = 7

// MilestoneState is the evaluated state of one timeline milestone. Only the
// counter matching the status is set.
type MilestoneState struct {
	Status      MilestoneStatus
	DaysLate    int
	DaysOverdue int
	DaysUntil   int
}

// MilestoneStateFor runs the per-milestone state machine. The target date is
// the revised date when set, else the planned date; a milestone with no
// target and no actual stays pending.
func MilestoneStateFor(m order.Milestone, now time.Time) MilestoneState {
	target := m.TargetDate()

	if m.ActualDate != nil {
		if target != nil && m.ActualDate.After(*target) {
			return MilestoneState{Status: MilestoneLate, DaysLate: wholeDays(*m.ActualDate, *target)}
		}
		return MilestoneState{Status: MilestoneComplete}
	}

	if target == nil {
		return MilestoneState{Status: MilestonePending}
	}

	if target.Before(now) {
		return MilestoneState{Status: MilestoneOverdue, DaysOverdue: wholeDays(now, *target)}
	}

	if daysUntil := wholeDays(*target, now); daysUntil <= milestoneAtRiskLeadDays {
		return MilestoneState{Status: MilestoneAtRisk, DaysUntil: daysUntil}
	}

	return MilestoneState{Status: MilestonePending}
}
