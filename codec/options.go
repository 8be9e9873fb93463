package codec

import "go.uber.org/zap"

// DefaultMaxDepth bounds container nesting during encode and decode.
const DefaultMaxDepth = 512

type config struct {
	log      *zap.Logger
	maxDepth int
	double   bool
	strict   bool
}

func newConfig(opts []Option) config {
	c := config{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *config) logger() *zap.Logger {
	if c.log != nil {
		return c.log
	}
	return Logger()
}

// Option configures an Encoder or Decoder.
type Option func(*config)

// WithDoublePrecision packs non-zero reals as 8-byte doubles instead of
// 4-byte singles. Finite reals beyond the float32 range fail with overflow
// unless it is set. Encoder only.
func WithDoublePrecision(on bool) Option {
	return func(c *config) { c.double = on }
}

// WithStrict makes DecodeFirst fail when bytes follow the first element.
// Decoder only.
func WithStrict(on bool) Option {
	return func(c *config) { c.strict = on }
}

// WithMaxDepth sets the container nesting limit. Zero or negative disables it.
func WithMaxDepth(n int) Option {
	return func(c *config) { c.maxDepth = n }
}

// WithLogger overrides the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.log = l }
}
