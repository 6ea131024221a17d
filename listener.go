package eventchannel

import (
	"fmt"
	"reflect"
)

// Listener receives values raised on a Channel.
// Channels hold listeners by identity (interface equality), so implementations
// are normally pointer types. Channels never take ownership of a listener.
type Listener[T any] interface {
	OnEventRaised(value T)
}

// Liveness is an optional capability for listeners whose backing object can
// be torn down without unregistering. Raise skips listeners reporting false.
type Liveness interface {
	Alive() bool
}

type funcListener[T any] struct {
	fn func(T)
}

func (l *funcListener[T]) OnEventRaised(value T) {
	l.fn(value)
}

// Func adapts fn to a Listener. Each call returns a distinct identity, so keep
// the returned value to unregister it later.
func Func[T any](fn func(T)) Listener[T] {
	return &funcListener[T]{fn: fn}
}

// isNil reports whether l is absent, including a typed nil inside the interface.
func isNil(l any) bool {
	if l == nil {
		return true
	}
	v := reflect.ValueOf(l)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Interface, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// hasIdentity reports whether l can be used as a set key.
func hasIdentity(l any) bool {
	return reflect.ValueOf(l).Comparable()
}

func alive(l any) bool {
	if isNil(l) {
		return false
	}
	if lv, ok := l.(Liveness); ok {
		return lv.Alive()
	}
	return true
}

func listenerName(l any) string {
	return fmt.Sprintf("%T", l)
}
