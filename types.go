// Package eventchannel provides typed, synchronous event channels for Go.
//
// A Channel is a named broadcast point for one payload type. Producers call
// Raise with a value; every listener registered at that moment receives it,
// in registration order, before Raise returns. Alongside registered listeners,
// a channel carries ambient subscribers: plain callbacks attached with
// Subscribe that receive every raised value without implementing Listener.
//
// Quick example:
//
//	scores := eventchannel.New[int](eventchannel.WithID("score.changed"))
//
//	hud := eventchannel.Func(func(score int) {
//	    // Update display...
//	})
//	scores.RegisterListener(hud)
//	defer scores.UnregisterListener(hud)
//
//	scores.Raise(42)
//
// Listener failures (panics) are recovered and logged per listener; they never
// reach the raiser and never stop delivery to the remaining listeners.
// A listener that raises the channel it is being notified by is suppressed
// with a warning instead of recursing.
package eventchannel

// Void is the payload of channels that carry no data.
type Void struct{}

// IntChannel is a channel carrying int payloads.
type IntChannel = Channel[int]

// StringChannel is a channel carrying string payloads.
type StringChannel = Channel[string]

// BoolChannel is a channel carrying bool payloads.
type BoolChannel = Channel[bool]

// VoidChannel is a channel that signals without a payload.
type VoidChannel struct {
	*Channel[Void]
}

// NewVoidChannel creates a VoidChannel with the given options.
func NewVoidChannel(opts ...Option) *VoidChannel {
	return &VoidChannel{Channel: New[Void](opts...)}
}

// Fire raises the channel.
func (c *VoidChannel) Fire() {
	c.Raise(Void{})
}

// Stats provides a point-in-time view of the channels held by a Registry.
type Stats struct {
	// Channels is the number of channels in the registry.
	Channels int

	// ListenerCounts maps each channel name to its registered listener count.
	ListenerCounts map[string]int

	// SubscriberCounts maps each channel name to its ambient subscriber count.
	SubscriberCounts map[string]int

	// RaiseCounts maps each channel name to raises since its last activation.
	RaiseCounts map[string]int64
}
