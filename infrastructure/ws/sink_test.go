package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campushub/domain/event"
	"campushub/errors"
)

func TestSink_Consume_Queues_When_There_Is_Room(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)

	err := sink.Consume(context.Background(), event.UnreadCount{Count: 1})

	req.NoError(err)
	req.Len(sink.Outbound, 1)
}

func TestSink_Full_Buffer_Drops_At_The_Deadline(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)

	// Given a connection that stopped draining its queue
	req.NoError(sink.Consume(context.Background(), event.UnreadCount{Count: 1}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// When fanout offers another event within the sink timeout
	err := sink.Consume(ctx, event.UnreadCount{Count: 2})

	// Then the event is dropped for this subscriber and reported
	req.ErrorIs(err, errors.ErrDelivery)
	req.Len(sink.Outbound, 1)
}

func TestSink_Slow_Reader_Gets_Until_The_Deadline(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)
	req.NoError(sink.Consume(context.Background(), event.UnreadCount{Count: 1}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Given the write pump frees a slot shortly after the buffer filled
	go func() {
		time.Sleep(20 * time.Millisecond)
		<-sink.Outbound
	}()

	// Then the waiting event still lands instead of being dropped
	err := sink.Consume(ctx, event.UnreadCount{Count: 2})
	req.NoError(err)
	req.Len(sink.Outbound, 1)
}
