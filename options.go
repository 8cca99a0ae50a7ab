package fiber

import (
	"github.com/joeycumines/logiface"
)

// schedulerOptions holds configuration applied by New.
type schedulerOptions struct {
	logger *logiface.Logger[logiface.Event]
}

// Option configures a [Scheduler] instance.
type Option interface {
	apply(*schedulerOptions)
}

type optionImpl struct {
	applyFunc func(*schedulerOptions)
}

func (o *optionImpl) apply(opts *schedulerOptions) {
	o.applyFunc(opts)
}

// WithLogger attaches a structured logger to the scheduler. The scheduler
// emits trace-level events for spawn, notify, and deadline sweeps, and
// debug-level events for cancellation. A nil logger (the default) disables
// logging entirely.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *schedulerOptions) {
		opts.logger = logger
	}}
}

// resolveOptions applies Option instances to schedulerOptions.
func resolveOptions(options []Option) *schedulerOptions {
	cfg := &schedulerOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	return cfg
}
