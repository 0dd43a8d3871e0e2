package domain

import "time"

type MetricsCollector interface {
	RecordPopulation(trigger PopulationTrigger, size int, duration time.Duration, err error)
	RecordSelection(strategy string, err error)
	RecordStickyRotation()
	RecordScheduledRefresh()
}
