package eventchannel

import (
	"slices"
	"sync/atomic"

	"go.uber.org/zap"
)

// Subscription is an ambient callback attached to a Channel.
// Call Close to detach it. Unlike listeners, subscriptions carry no identity
// beyond the handle itself, so the same function may be attached many times.
type Subscription[T any] struct {
	fn      func(T)
	channel *Channel[T]
	closed  atomic.Bool
}

// Subscribe attaches fn to receive every value raised on the channel after
// the registered listeners have been notified. A nil fn logs an error and
// returns nil; Close on a nil Subscription is a no-op.
func (c *Channel[T]) Subscribe(fn func(T)) *Subscription[T] {
	if fn == nil {
		c.logger.Error("attempted to subscribe nil callback")
		return nil
	}

	s := &Subscription[T]{fn: fn, channel: c}

	c.mu.Lock()
	c.subscribers = append(c.subscribers, s)
	n := len(c.subscribers)
	c.mu.Unlock()

	if c.debug.Load() {
		c.logger.Info("attached subscriber", zap.Int("subscribers", n))
	}
	return s
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription[T]) Close() {
	if s == nil || s.closed.Swap(true) {
		return
	}
	s.channel.unsubscribe(s)
}

// Active reports whether the subscription is still attached.
func (s *Subscription[T]) Active() bool {
	return s != nil && !s.closed.Load()
}

func (c *Channel[T]) unsubscribe(s *Subscription[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := slices.Index(c.subscribers, s); i >= 0 {
		c.subscribers = slices.Delete(c.subscribers, i, i+1)
	}
}
