package dna

import "go.uber.org/zap"

// Option configures a Reader or Writer.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger sets the logger used for progress and failure messages.
// Failures are always reported through the returned Status as well.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
