package cache

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultTTL applies when a caller passes a ttl <= 0.
const DefaultTTL = time.Hour

// Recorder receives cache outcomes. Implementations must be safe for
// concurrent use.
type Recorder interface {
	// Observe records one lookup or write. result is one of the Result* constants.
	Observe(cache, kind, result string)
	VersionBumped(collection string)
}

const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
	ResultWrite = "write"
)

type nopRecorder struct{}

func (nopRecorder) Observe(string, string, string) {}
func (nopRecorder) VersionBumped(string)           {}

type options struct {
	codec      Codec
	defaultTTL time.Duration
	logger     zerolog.Logger
	recorder   Recorder
}

// Option configures EntityCache and PaginationCache.
type Option func(*options)

func defaultOptions() options {
	return options{
		codec:      JSONCodec{},
		defaultTTL: DefaultTTL,
		logger:     zerolog.Nop(),
		recorder:   nopRecorder{},
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithCodec sets the payload codec.
func WithCodec(codec Codec) Option {
	return func(o *options) {
		if codec != nil {
			o.codec = codec
		}
	}
}

// WithDefaultTTL replaces the fallback ttl. Non positive values are ignored.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.defaultTTL = ttl
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

func (o options) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return o.defaultTTL
	}
	return ttl
}
