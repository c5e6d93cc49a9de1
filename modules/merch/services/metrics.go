package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "merch",
		Subsystem: "import",
		Name:      "rows_total",
		Help:      "Import reconciliation outcomes broken down by entity and result.",
	}, []string{"entity", "outcome"})

	matchOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "merch",
		Subsystem: "matching",
		Name:      "outcomes_total",
		Help:      "Projection matching outcomes by resulting match status.",
	}, []string{"status"})

	lockedRowsPreservedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "merch",
		Subsystem: "capacity",
		Name:      "locked_rows_preserved_total",
		Help:      "Capacity rows excluded from bulk clears because their year is locked.",
	})
)
