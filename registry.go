package eventchannel

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// managed is the payload-independent view of a Channel used by Registry.
type managed interface {
	ID() string
	Activate()
	Deactivate()
	ListenerCount() int
	SubscriberCount() int
	RaiseCount() int64
}

// Registry holds named channels of any payload type, so that producers and
// consumers can find the same channel by name and so that every channel can be
// activated and deactivated together.
type Registry struct {
	channels map[string]managed
	opts     []Option
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewRegistry creates an empty Registry. The options are applied to every
// channel it creates, before any options passed to Lookup.
func NewRegistry(opts ...Option) *Registry {
	s := newSettings(opts)
	logger := s.logger
	if logger == nil {
		logger = zap.L()
	}
	return &Registry{
		channels: make(map[string]managed),
		opts:     opts,
		logger:   logger.Named("eventchannel"),
	}
}

// Lookup returns the channel registered under name, creating it if needed.
// A new channel takes name as its identity unless opts override it. If name
// is already taken by a channel of another payload type, Lookup returns
// ErrTypeMismatch.
func Lookup[T any](r *Registry, name string, opts ...Option) (*Channel[T], error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	r.mu.RLock()
	existing, ok := r.channels[name]
	r.mu.RUnlock()
	if ok {
		return typed[T](name, existing)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have created it.
	if existing, ok := r.channels[name]; ok {
		return typed[T](name, existing)
	}

	all := make([]Option, 0, len(r.opts)+len(opts)+1)
	all = append(all, r.opts...)
	all = append(all, WithID(name))
	all = append(all, opts...)

	ch := New[T](all...)
	r.channels[name] = ch
	r.logger.Debug("channel created", zap.String("name", name), zap.String("channel", ch.ID()))
	return ch, nil
}

// LookupVoid is Lookup for payload-free channels.
func LookupVoid(r *Registry, name string, opts ...Option) (*VoidChannel, error) {
	ch, err := Lookup[Void](r, name, opts...)
	if err != nil {
		return nil, err
	}
	return &VoidChannel{Channel: ch}, nil
}

func typed[T any](name string, m managed) (*Channel[T], error) {
	ch, ok := m.(*Channel[T])
	if !ok {
		var zero T
		return nil, fmt.Errorf("%w: %q holds %T, requested payload %T", ErrTypeMismatch, name, m, zero)
	}
	return ch, nil
}

// Remove deactivates and forgets the channel registered under name.
// It reports whether a channel was removed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	ch, ok := r.channels[name]
	delete(r.channels, name)
	r.mu.Unlock()

	if ok {
		ch.Deactivate()
	}
	return ok
}

// Names returns the registered channel names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// ActivateAll resets the raise count of every channel.
func (r *Registry) ActivateAll() {
	for _, ch := range r.snapshot() {
		ch.Activate()
	}
}

// DeactivateAll clears the listeners and subscribers of every channel.
func (r *Registry) DeactivateAll() {
	for _, ch := range r.snapshot() {
		ch.Deactivate()
	}
}

func (r *Registry) snapshot() []managed {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]managed, 0, len(r.channels))
	for _, ch := range r.channels {
		channels = append(channels, ch)
	}
	return channels
}

// Stats returns listener, subscriber and raise counts for every channel.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		Channels:         len(r.channels),
		ListenerCounts:   make(map[string]int, len(r.channels)),
		SubscriberCounts: make(map[string]int, len(r.channels)),
		RaiseCounts:      make(map[string]int64, len(r.channels)),
	}

	for name, ch := range r.channels {
		stats.ListenerCounts[name] = ch.ListenerCount()
		stats.SubscriberCounts[name] = ch.SubscriberCount()
		stats.RaiseCounts[name] = ch.RaiseCount()
	}

	return stats
}
