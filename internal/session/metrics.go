package session

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var (
	inputCounter   metric.Int64Counter       = noop.Int64Counter{}
	ignoredCounter metric.Int64Counter       = noop.Int64Counter{}
	resetCounter   metric.Int64Counter       = noop.Int64Counter{}
	errorCounter   metric.Int64Counter       = noop.Int64Counter{}
	sessionCounter metric.Int64UpDownCounter = noop.Int64UpDownCounter{}
)

// InitMetrics registers the OTel instruments for keypad sessions.
func InitMetrics() error {
	meter := otel.Meter("calculator.session")

	inputs, err := meter.Int64Counter("calculator.session.inputs.total",
		metric.WithDescription("Keypad tokens applied to sessions"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return fmt.Errorf("creating input counter: %w", err)
	}

	ignored, err := meter.Int64Counter("calculator.session.ignored.total",
		metric.WithDescription("Keypad tokens that did not apply to the session state"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return fmt.Errorf("creating ignored counter: %w", err)
	}

	resets, err := meter.Int64Counter("calculator.session.resets.total",
		metric.WithDescription("Sessions reset after a failed evaluation"),
		metric.WithUnit("{reset}"),
	)
	if err != nil {
		return fmt.Errorf("creating reset counter: %w", err)
	}

	errs, err := meter.Int64Counter("calculator.session.errors.total",
		metric.WithDescription("Rejected session requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	sessions, err := meter.Int64UpDownCounter("calculator.session.open",
		metric.WithDescription("Sessions opened minus sessions deleted through the API"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return fmt.Errorf("creating session counter: %w", err)
	}

	inputCounter, ignoredCounter, resetCounter, errorCounter, sessionCounter = inputs, ignored, resets, errs, sessions
	return nil
}
