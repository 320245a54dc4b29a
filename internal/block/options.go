package block

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Block beyond its construction Options.
type Option func(*Block)

// WithLogger sets the logger for tune and hook diagnostics.
// The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Block) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithDebounce overrides the mutation debounce quiet period. The default,
// ModificationsDebounce, is part of the behavioral contract; overriding it
// is intended for tests.
func WithDebounce(d time.Duration) Option {
	return func(b *Block) {
		if d > 0 {
			b.debounce = d
		}
	}
}
