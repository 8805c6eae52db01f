package main

import (
	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
)

// initMetrics binds the domain instruments to the global meter provider and
// exposes the session gauge on /metrics. Call it after observability.Setup.
func initMetrics(store *session.Store) error {
	if err := calculator.InitMetrics(); err != nil {
		return err
	}

	if err := session.InitMetrics(); err != nil {
		return err
	}

	return observability.RegisterCollector(store.Collector())
}
