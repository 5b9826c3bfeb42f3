package linepipe

import "go.uber.org/zap"

type options struct {
	logger  *zap.Logger
	metrics *Metrics
	workers *Workers
}

// Option configures a Runtime or a Pipeline.
type Option func(*options)

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records activity on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithWorkers runs goroutines on w instead of spawning them freely.
func WithWorkers(w *Workers) Option {
	return func(o *options) {
		o.workers = w
	}
}
