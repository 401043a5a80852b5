package cached

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Option func(*options)

type options struct {
	name         string
	logger       *zap.Logger
	capacityHint int
}

func newOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	mergeDefaultOptions(o)
	return o
}

func mergeDefaultOptions(o *options) {
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.name == "" {
		o.name = uuid.NewString()
	}
	if o.capacityHint < 0 {
		o.capacityHint = 0
	}
}

// WithLogger sets the logger advances and terminal events are reported to.
// Everything is logged at debug level except source failures.
// The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName sets the value of the "iterable" field on every log entry.
// A random UUID is used by default.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithCapacityHint preallocates room for n cached elements.
func WithCapacityHint(n int) Option {
	return func(o *options) {
		o.capacityHint = n
	}
}
