package bitvec

import "log/slog"

// DefaultInitialLength is the capacity a Growable allocates on its first Add.
const DefaultInitialLength = 1024

type options struct {
	initialLength    int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Growable.
type Option func(*options)

// WithInitialLength sets the capacity a Growable allocates on its first Add.
// Values <= 0 select DefaultInitialLength.
func WithInitialLength(length int) Option {
	return func(o *options) {
		o.initialLength = length
	}
}

// WithMetricsCollector configures a metrics collector for growth events.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &bitvec.BasicMetricsCollector{}
//	live := bitvec.NewGrowable(bitvec.WithMetricsCollector(metrics))
//	// ... run the analysis ...
//	stats := metrics.GetStats()
//	fmt.Printf("Growths: %d, max length: %d\n", stats.GrowthCount, stats.MaxLength)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for growth events.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		initialLength:    DefaultInitialLength,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.initialLength <= 0 {
		o.initialLength = DefaultInitialLength
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
