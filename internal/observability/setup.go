package observability

import (
	"context"
	"errors"
	"fmt"
)

// Setup initialises OTLP tracing, metrics and log export. With export
// disabled the global no-op providers stay in place and the returned
// shutdown does nothing. The shutdown function flushes every provider that
// was started, in reverse order.
func Setup(ctx context.Context, export bool) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error

	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if !export {
		return shutdown, nil
	}

	steps := []struct {
		name string
		init func(context.Context) (func(context.Context) error, error)
	}{
		{name: "tracing", init: InitTracing},
		{name: "metrics", init: InitMetrics},
		{name: "logging", init: InitLogging},
	}

	for _, step := range steps {
		fn, err := step.init(ctx)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("init %s: %w", step.name, err), shutdown(ctx))
		}
		shutdowns = append(shutdowns, fn)
	}

	return shutdown, nil
}
