package usecase

import "time"

// Observer receives domain-level measurements; metrics.PortalMetrics implements it.
type Observer interface {
	ObserveAccessRecord(status string)
	ObserveSummary(outcome string, duration time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveAccessRecord(string)           {}
func (nopObserver) ObserveSummary(string, time.Duration) {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
