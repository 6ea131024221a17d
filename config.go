package eventchannel

import (
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

const (
	// defaultCapacity is the initial listener capacity when none is configured.
	defaultCapacity = 1

	// maxSaneCapacity is the largest capacity hint accepted without a warning.
	maxSaneCapacity = 100

	envPrefix = "EVENTCHANNEL_"
)

var (
	defaultOptions []Option
	defaultOptMu   sync.Mutex
)

// Option configures a Channel at construction.
type Option func(*settings)

type settings struct {
	id       string
	capacity int
	debug    bool
	logger   *zap.Logger
	metrics  *Metrics
}

func newSettings(opts []Option) settings {
	s := settings{capacity: defaultCapacity}

	defaultOptMu.Lock()
	defaults := defaultOptions
	defaultOptMu.Unlock()

	for _, opt := range defaults {
		opt(&s)
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Configure sets options applied to every channel created afterwards, before
// the options passed to New. Calling Configure with no options resets them.
func Configure(opts ...Option) {
	defaultOptMu.Lock()
	defaultOptions = opts
	defaultOptMu.Unlock()
}

// WithID sets the channel's identity. Without it a random UUID is used.
func WithID(id string) Option {
	return func(s *settings) {
		s.id = id
	}
}

// WithInitialCapacity sets the listener capacity hint. Values below 1 are
// raised to 1 and values above 100 are accepted with a warning.
func WithInitialCapacity(n int) Option {
	return func(s *settings) {
		s.capacity = n
	}
}

// WithDebugLogging sets the initial state of diagnostic logging.
func WithDebugLogging(enabled bool) Option {
	return func(s *settings) {
		s.debug = enabled
	}
}

// WithLogger sets the logger used for diagnostics. Defaults to zap.L().
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithMetrics records raise and failure counts into m.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithConfig applies a Config loaded from the environment.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.capacity = cfg.InitialCapacity
		s.debug = cfg.DebugLogging
	}
}

// Config holds the channel settings that can be supplied from the environment.
type Config struct {
	InitialCapacity int  `env:"INITIAL_CAPACITY" envDefault:"1"`
	DebugLogging    bool `env:"DEBUG" envDefault:"false"`
}

// ConfigFromEnv loads a Config from EVENTCHANNEL_-prefixed variables.
// A non-empty prefix scopes the lookup further, so ConfigFromEnv("SCORE_")
// reads EVENTCHANNEL_SCORE_INITIAL_CAPACITY and EVENTCHANNEL_SCORE_DEBUG.
func ConfigFromEnv(prefix string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix + prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
