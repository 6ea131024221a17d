package eventchannel

import (
	"slices"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Responder is a Listener that forwards each received value to a list of
// response functions, and whose registration follows a host's lifecycle:
// Enable registers it with its channel and Disable unregisters it.
//
// Each response runs in isolation; one panicking response does not keep the
// others from running.
type Responder[T any] struct {
	channel    *Channel[T]
	responses  []func(T)
	registered bool
	name       string
	debug      bool
	logger     *zap.Logger
	mu         sync.Mutex
}

// ResponderOption configures a Responder.
type ResponderOption func(*responderSettings)

type responderSettings struct {
	name   string
	debug  bool
	logger *zap.Logger
}

// WithResponderName sets the name used to tag the responder's log lines.
func WithResponderName(name string) ResponderOption {
	return func(s *responderSettings) {
		s.name = name
	}
}

// WithResponderDebug enables informational logging for the responder.
func WithResponderDebug(enabled bool) ResponderOption {
	return func(s *responderSettings) {
		s.debug = enabled
	}
}

// WithResponderLogger sets the responder's logger. Defaults to zap.L().
func WithResponderLogger(logger *zap.Logger) ResponderOption {
	return func(s *responderSettings) {
		s.logger = logger
	}
}

// NewResponder creates a Responder for ch. A nil ch is allowed; Enable will
// then log an error instead of registering.
func NewResponder[T any](ch *Channel[T], opts ...ResponderOption) *Responder[T] {
	var s responderSettings
	for _, opt := range opts {
		opt(&s)
	}
	if s.name == "" {
		s.name = "responder"
	}
	logger := s.logger
	if logger == nil {
		logger = zap.L()
	}

	return &Responder[T]{
		channel: ch,
		name:    s.name,
		debug:   s.debug,
		logger:  logger.Named("eventchannel").With(zap.String("responder", s.name)),
	}
}

// AddResponse appends fn to the response list.
func (r *Responder[T]) AddResponse(fn func(T)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.responses = append(r.responses, fn)
	r.mu.Unlock()
}

// OnEventRaised invokes every response with value.
func (r *Responder[T]) OnEventRaised(value T) {
	if r.debug {
		r.logger.Info("event received", zap.Any("value", value))
	}

	r.mu.Lock()
	responses := slices.Clone(r.responses)
	r.mu.Unlock()

	var errs error
	for _, fn := range responses {
		errs = multierr.Append(errs, respond(fn, value))
	}
	if errs != nil {
		r.logger.Error("event response failed",
			zap.Int("failed", len(multierr.Errors(errs))),
			zap.Int("responses", len(responses)),
			zap.Error(errs),
		)
	}
}

func respond[T any](fn func(T), value T) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = newPanicError(rec)
		}
	}()
	fn(value)
	return nil
}

// Enable registers the responder with its channel.
func (r *Responder[T]) Enable() {
	if r.channel == nil {
		r.logger.Error("no event channel assigned")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// The channel may have been cleared since the last Enable.
	if r.registered && r.channel.has(r) {
		r.logger.Warn("already registered to event channel")
		return
	}

	r.channel.RegisterListener(r)
	r.registered = true

	if r.debug {
		r.logger.Info("registered to event channel", zap.String("channel", r.channel.ID()))
	}
}

// Disable unregisters the responder. It does nothing when no channel is
// assigned or the responder is not registered.
func (r *Responder[T]) Disable() {
	if r.channel == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.registered {
		return
	}

	r.channel.UnregisterListener(r)
	r.registered = false

	if r.debug {
		r.logger.Info("unregistered from event channel", zap.String("channel", r.channel.ID()))
	}
}

// Registered reports whether the responder is currently registered with its
// channel. Clearing the channel unregisters it.
func (r *Responder[T]) Registered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registered && r.channel.has(r)
}

// Scope enables the responder for the duration of fn. The responder is
// disabled when fn returns, including by panic.
func (r *Responder[T]) Scope(fn func()) {
	r.Enable()
	defer r.Disable()
	fn()
}

// Bind ties the responder to lc: enabled on start, disabled on stop.
func (r *Responder[T]) Bind(lc fx.Lifecycle) {
	lc.Append(fx.StartStopHook(r.Enable, r.Disable))
}
