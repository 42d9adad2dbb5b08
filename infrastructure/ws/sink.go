// Package ws is the WebSocket transport: admission, the per-connection
// event queue, and dispatch of inbound frames to the services.
package ws

import (
	"context"
	"fmt"

	"campushub/domain/event"
	"campushub/errors"
)

// Sink is the buffered outbound queue of one connection. The registry writes
// into it during fanout; the connection's write pump drains it onto the wire.
type Sink struct {
	Outbound chan event.Event
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Outbound: make(chan event.Event, bufferSize)}
}

// Consume is called by the fanout. A full buffer means the connection is not
// keeping up; the subscriber gets until the caller's deadline (the registry's
// sink timeout) to make room, then the event is dropped for it and reported,
// so the registry counts the loss without stalling the sweep.
func (s *Sink) Consume(ctx context.Context, e event.Event) error {
	select {
	case s.Outbound <- e:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: outbound buffer full: %v", errors.ErrDelivery, ctx.Err())
	}
}
