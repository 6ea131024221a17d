package eventchannel

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Channel is a typed broadcast point for payloads of type T.
//
// All methods are safe for concurrent use. The listener set is guarded by a
// per-channel mutex that is never held while listener code runs.
//
// The recursion guard only catches a listener raising the channel that is
// currently notifying it. It is not a lock: two goroutines raising the same
// channel at once may both dispatch, or one may be dropped with a warning.
type Channel[T any] struct {
	id          string
	listeners   []Listener[T]
	index       map[Listener[T]]struct{}
	subscribers []*Subscription[T]
	mu          sync.Mutex
	raising     atomic.Bool
	raises      atomic.Int64
	debug       atomic.Bool
	capacity    int
	logger      *zap.Logger
	metrics     *Metrics
}

// New creates a Channel with the given options.
// Options set with Configure are applied first.
func New[T any](opts ...Option) *Channel[T] {
	s := newSettings(opts)

	id := s.id
	if id == "" {
		id = uuid.NewString()
	}
	logger := s.logger
	if logger == nil {
		logger = zap.L()
	}

	c := &Channel[T]{
		id:      id,
		logger:  logger.Named("eventchannel").With(zap.String("channel", id)),
		metrics: s.metrics,
	}
	c.capacity = c.checkCapacity(s.capacity)
	c.listeners = make([]Listener[T], 0, c.capacity)
	c.index = make(map[Listener[T]]struct{}, c.capacity)
	c.debug.Store(s.debug)
	return c
}

func (c *Channel[T]) checkCapacity(n int) int {
	switch {
	case n < 1:
		c.logger.Warn("initial listener capacity must be at least 1, adjusting", zap.Int("capacity", n))
		return 1
	case n > maxSaneCapacity:
		c.logger.Warn("very large initial listener capacity", zap.Int("capacity", n))
	}
	return n
}

// ID returns the channel's stable identity.
func (c *Channel[T]) ID() string {
	return c.id
}

// Raise delivers value to every live listener registered when the call
// began, in registration order, then to the ambient subscribers.
//
// A panicking listener is logged and skipped; the rest still receive value.
// Subscribers are invoked as one unit: a panic there is logged and ends the
// subscriber pass for this raise.
func (c *Channel[T]) Raise(value T) {
	if c.raising.Load() {
		c.logger.Warn("recursive raise suppressed")
		c.metrics.suppress(c.id)
		return
	}

	count := c.raises.Add(1)
	c.metrics.raised(c.id)

	c.mu.Lock()
	if len(c.listeners) == 0 && len(c.subscribers) == 0 {
		c.mu.Unlock()
		if c.debug.Load() {
			c.logger.Info("no listeners registered", zap.Int64("raises", count))
		}
		return
	}
	listeners := slices.Clone(c.listeners)
	subscribers := slices.Clone(c.subscribers)
	c.mu.Unlock()

	c.raising.Store(true)
	defer c.raising.Store(false)

	for _, l := range listeners {
		c.deliver(l, value, count)
	}

	if len(subscribers) > 0 {
		c.broadcast(subscribers, value, count)
	}
}

func (c *Channel[T]) deliver(l Listener[T], value T, count int64) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("listener failed",
				zap.String("listener", listenerName(l)),
				zap.Error(newPanicError(r)),
			)
			c.metrics.failed(c.id, sinkListener)
		}
	}()

	// Alive is listener code too, so it runs under the same recover.
	if !alive(l) {
		return
	}
	if c.debug.Load() {
		c.logger.Info("raising event to listener",
			zap.String("listener", listenerName(l)),
			zap.Int64("raises", count),
		)
	}
	l.OnEventRaised(value)
}

func (c *Channel[T]) broadcast(subscribers []*Subscription[T], value T, count int64) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("subscriber failed", zap.Error(newPanicError(r)))
			c.metrics.failed(c.id, sinkSubscriber)
		}
	}()

	if c.debug.Load() {
		c.logger.Info("raising event to subscribers",
			zap.Int("subscribers", len(subscribers)),
			zap.Int64("raises", count),
		)
	}
	for _, s := range subscribers {
		if s.closed.Load() {
			continue
		}
		s.fn(value)
	}
}

// RaiseIf raises value only when predicate(value) is true.
// A nil predicate returns ErrNilPredicate without raising. A panicking
// predicate is logged and the panic propagates to the caller.
func (c *Channel[T]) RaiseIf(value T, predicate func(T) bool) error {
	if predicate == nil {
		return ErrNilPredicate
	}

	if c.evaluate(value, predicate) {
		c.Raise(value)
		return nil
	}

	if c.debug.Load() {
		c.logger.Info("event not raised, condition returned false")
	}
	return nil
}

func (c *Channel[T]) evaluate(value T, predicate func(T) bool) bool {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("raise condition failed", zap.Error(newPanicError(r)))
			panic(r)
		}
	}()
	return predicate(value)
}

// RegisterListener adds l to the channel. Registering nil, or a listener whose
// dynamic type is not comparable, logs an error and does nothing. Registering
// the same listener twice logs a warning and does nothing.
func (c *Channel[T]) RegisterListener(l Listener[T]) {
	if isNil(l) {
		c.logger.Error("attempted to register nil listener")
		return
	}
	if !hasIdentity(l) {
		c.logger.Error("listener type is not comparable", zap.String("listener", listenerName(l)))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.index[l]; exists {
		c.logger.Warn("listener already registered", zap.String("listener", listenerName(l)))
		return
	}

	c.index[l] = struct{}{}
	c.listeners = append(c.listeners, l)
	c.metrics.setListeners(c.id, len(c.listeners))

	if c.debug.Load() {
		c.logger.Info("registered listener",
			zap.String("listener", listenerName(l)),
			zap.Int("listeners", len(c.listeners)),
			zap.Int64("raises", c.raises.Load()),
		)
	}
}

// UnregisterListener removes l from the channel. The relative order of the
// remaining listeners is preserved.
func (c *Channel[T]) UnregisterListener(l Listener[T]) {
	if isNil(l) {
		c.logger.Error("attempted to unregister nil listener")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !hasIdentity(l) {
		c.notRegistered(l)
		return
	}
	if _, exists := c.index[l]; !exists {
		c.notRegistered(l)
		return
	}

	delete(c.index, l)
	if i := slices.Index(c.listeners, l); i >= 0 {
		c.listeners = slices.Delete(c.listeners, i, i+1)
	}
	c.metrics.setListeners(c.id, len(c.listeners))

	if c.debug.Load() {
		c.logger.Info("unregistered listener",
			zap.String("listener", listenerName(l)),
			zap.Int("listeners", len(c.listeners)),
			zap.Int64("raises", c.raises.Load()),
		)
	}
}

func (c *Channel[T]) notRegistered(l Listener[T]) {
	if c.debug.Load() {
		c.logger.Warn("attempted to unregister listener that was not registered",
			zap.String("listener", listenerName(l)),
		)
	}
}

// ClearListeners removes every listener and ambient subscriber.
func (c *Channel[T]) ClearListeners() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.debug.Load() && (len(c.listeners) > 0 || len(c.subscribers) > 0) {
		c.logger.Info("cleared listeners",
			zap.Int("listeners", len(c.listeners)),
			zap.Int("subscribers", len(c.subscribers)),
			zap.Int64("raises", c.raises.Load()),
		)
	}

	for _, s := range c.subscribers {
		s.closed.Store(true)
	}
	clear(c.listeners)
	clear(c.subscribers)
	clear(c.index)
	c.listeners = c.listeners[:0]
	c.subscribers = nil
	c.metrics.setListeners(c.id, 0)
}

// has reports whether l is currently registered.
func (c *Channel[T]) has(l Listener[T]) bool {
	if isNil(l) || !hasIdentity(l) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.index[l]
	return exists
}

// ListenerCount returns the number of registered listeners.
func (c *Channel[T]) ListenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// SubscriberCount returns the number of attached ambient subscribers.
func (c *Channel[T]) SubscriberCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscribers)
}

// EnableDebugLogging turns informational diagnostics on or off.
// Warnings and errors are logged regardless.
func (c *Channel[T]) EnableDebugLogging(enabled bool) {
	c.debug.Store(enabled)
}

// DebugLogging reports whether informational diagnostics are enabled.
func (c *Channel[T]) DebugLogging() bool {
	return c.debug.Load()
}

// RaiseCount returns the number of Raise calls since the last Activate,
// including calls that found no listeners.
func (c *Channel[T]) RaiseCount() int64 {
	return c.raises.Load()
}

// IsRaising reports whether a Raise is currently dispatching.
func (c *Channel[T]) IsRaising() bool {
	return c.raising.Load()
}

// Activate marks the start of a session and resets the raise count.
func (c *Channel[T]) Activate() {
	c.raises.Store(0)
}

// Deactivate tears the channel down for its owning context by clearing all
// listeners and subscribers. The channel may be activated again.
func (c *Channel[T]) Deactivate() {
	c.ClearListeners()
}
