package eventchannel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestResponderEnableDisable(t *testing.T) {
	c := New[int]()
	r := NewResponder(c)
	var got []int
	r.AddResponse(func(v int) { got = append(got, v) })

	r.Enable()
	assert.True(t, r.Registered())
	assert.Equal(t, 1, c.ListenerCount())
	c.Raise(1)

	r.Disable()
	assert.False(t, r.Registered())
	assert.Zero(t, c.ListenerCount())
	c.Raise(2)

	assert.Equal(t, []int{1}, got)
}

func TestResponderEnableTwice(t *testing.T) {
	logger, logs := observed()
	c := New[int]()
	r := NewResponder(c, WithResponderLogger(logger), WithResponderName("hud"))

	r.Enable()
	r.Enable()

	assert.Equal(t, 1, c.ListenerCount())
	warnings := logs.FilterMessage("already registered to event channel")
	require.Equal(t, 1, warnings.Len())
	assert.Equal(t, "hud", warnings.All()[0].ContextMap()["responder"])
}

func TestResponderNoChannel(t *testing.T) {
	logger, logs := observed()
	r := NewResponder[int](nil, WithResponderLogger(logger))

	r.Enable()
	r.Disable()

	assert.False(t, r.Registered())
	assert.Equal(t, 1, logs.FilterMessage("no event channel assigned").Len())
}

func TestResponderDisableWhenNotRegistered(t *testing.T) {
	logger, logs := observed()
	c := New[int](WithLogger(logger), WithDebugLogging(true))
	r := NewResponder(c)

	r.Disable()

	assert.Zero(t, logs.FilterMessage("attempted to unregister listener that was not registered").Len())
}

func TestResponderReenable(t *testing.T) {
	c := New[string]()
	r := NewResponder(c)
	var got []string
	r.AddResponse(func(s string) { got = append(got, s) })

	r.Enable()
	r.Disable()
	r.Enable()
	c.Raise("back")

	assert.Equal(t, []string{"back"}, got)
}

func TestResponderReenableAfterChannelCleared(t *testing.T) {
	logger, logs := observed()
	c := New[int]()
	r := NewResponder(c, WithResponderLogger(logger))
	var got []int
	r.AddResponse(func(v int) { got = append(got, v) })

	r.Enable()
	c.Deactivate()
	assert.False(t, r.Registered())

	c.Activate()
	r.Enable()
	c.Raise(1)

	assert.True(t, r.Registered())
	assert.Equal(t, 1, c.ListenerCount())
	assert.Equal(t, []int{1}, got)
	assert.Zero(t, logs.FilterMessage("already registered to event channel").Len())
}

func TestResponderResponsesInOrder(t *testing.T) {
	c := New[int]()
	r := NewResponder(c)
	var trace []string
	r.AddResponse(func(int) { trace = append(trace, "first") })
	r.AddResponse(func(int) { trace = append(trace, "second") })
	r.AddResponse(nil)

	r.OnEventRaised(1)

	assert.Equal(t, []string{"first", "second"}, trace)
}

// Each response is isolated, which is stricter than the channel's ambient
// subscriber pass.
func TestResponderResponseFailureIsolated(t *testing.T) {
	logger, logs := observed()
	c := New[int]()
	r := NewResponder(c, WithResponderLogger(logger))
	var after []int
	r.AddResponse(func(int) { panic("first failed") })
	r.AddResponse(func(int) { panic("second failed") })
	r.AddResponse(func(v int) { after = append(after, v) })
	r.Enable()

	assert.NotPanics(t, func() { c.Raise(5) })

	assert.Equal(t, []int{5}, after)
	failures := logs.FilterMessage("event response failed")
	require.Equal(t, 1, failures.Len())
	fields := failures.All()[0].ContextMap()
	assert.EqualValues(t, 2, fields["failed"])
	assert.EqualValues(t, 3, fields["responses"])
	assert.Contains(t, fields["error"], "first failed")
	assert.Contains(t, fields["error"], "second failed")
}

func TestResponderDebugLogging(t *testing.T) {
	logger, logs := observed()
	c := New[int]()
	r := NewResponder(c, WithResponderLogger(logger), WithResponderDebug(true))

	r.Enable()
	c.Raise(3)
	r.Disable()

	assert.Equal(t, 1, logs.FilterMessage("registered to event channel").Len())
	assert.Equal(t, 1, logs.FilterMessage("event received").Len())
	assert.Equal(t, 1, logs.FilterMessage("unregistered from event channel").Len())
}

func TestResponderScope(t *testing.T) {
	c := New[int]()
	r := NewResponder(c)
	var got []int
	r.AddResponse(func(v int) { got = append(got, v) })

	r.Scope(func() {
		assert.True(t, r.Registered())
		c.Raise(1)
	})
	c.Raise(2)

	assert.Equal(t, []int{1}, got)
	assert.False(t, r.Registered())
}

func TestResponderScopeReleasesOnPanic(t *testing.T) {
	c := New[int]()
	r := NewResponder(c)

	assert.Panics(t, func() {
		r.Scope(func() { panic("scope body") })
	})

	assert.False(t, r.Registered())
	assert.Zero(t, c.ListenerCount())
}

func TestResponderDisableFromResponse(t *testing.T) {
	c := New[int]()
	r := NewResponder(c)
	calls := 0
	r.AddResponse(func(int) {
		calls++
		r.Disable()
	})
	r.Enable()

	c.Raise(1)
	c.Raise(2)

	assert.Equal(t, 1, calls)
	assert.False(t, r.Registered())
}

func TestResponderBind(t *testing.T) {
	c := New[int]()
	r := NewResponder(c)
	lc := fxtest.NewLifecycle(t)

	r.Bind(lc)
	assert.False(t, r.Registered())

	lc.RequireStart()
	assert.True(t, r.Registered())
	assert.Equal(t, 1, c.ListenerCount())

	lc.RequireStop()
	assert.False(t, r.Registered())
	assert.Zero(t, c.ListenerCount())
}
