package client

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campushub/domain/event"
)

type handlerFunc struct {
	fn func(event.Event)
}

func (h *handlerFunc) Handle(e event.Event) { h.fn(e) }

// scriptedConn is a transport whose inbound frames come from a channel.
type scriptedConn struct {
	inbound   chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	writes [][]byte
}

func newScriptedConn() *scriptedConn {
	return &scriptedConn{inbound: make(chan []byte, 16), closed: make(chan struct{})}
}

func (c *scriptedConn) ReadMessage() (int, []byte, error) {
	select {
	case raw := <-c.inbound:
		return 1, raw, nil
	case <-c.closed:
		return 0, nil, fmt.Errorf("connection closed")
	}
}

func (c *scriptedConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, data)
	return nil
}

func (c *scriptedConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *scriptedConn) written() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func newTestManager(cfg Config) *Manager {
	return NewManager(slog.Default(), cfg)
}

func TestBackoff_Doubles_Up_To_The_Ceiling(t *testing.T) {
	req := require.New(t)
	base := 100 * time.Millisecond
	ceiling := 1 * time.Second

	req.Equal(100*time.Millisecond, Backoff(base, ceiling, 0))
	req.Equal(200*time.Millisecond, Backoff(base, ceiling, 1))
	req.Equal(400*time.Millisecond, Backoff(base, ceiling, 2))
	req.Equal(800*time.Millisecond, Backoff(base, ceiling, 3))
	req.Equal(ceiling, Backoff(base, ceiling, 4))
	req.Equal(ceiling, Backoff(base, ceiling, 10))
}

func TestManager_Exhausted_Retries_End_In_Failed(t *testing.T) {
	req := require.New(t)
	m := newTestManager(Config{
		BackoffBase: 100 * time.Millisecond,
		BackoffCap:  1 * time.Second,
		MaxRetries:  3,
	})

	// Given a server that never answers
	var dials int
	m.dial = func(Config) (transport, error) {
		dials++
		return nil, fmt.Errorf("connection refused")
	}

	var slept []time.Duration
	m.sleep = func(d time.Duration) { slept = append(slept, d) }

	failed := make(chan event.ReconnectFailed, 1)
	m.On(event.KindReconnectFailed, &handlerFunc{fn: func(e event.Event) {
		failed <- e.(event.ReconnectFailed)
	}})

	m.Connect()

	// Then the retry budget is spent on the exponential schedule: after n
	// consecutive failures the next dial waits min(base * 2^n, cap)
	select {
	case signal := <-failed:
		req.Equal(3, signal.Attempts)
	case <-time.After(2 * time.Second):
		req.Fail("expected a reconnect_failed signal")
	}
	req.Equal(StateFailed, m.State())
	req.Equal(4, dials)
	req.Equal([]time.Duration{200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond}, slept)

	// And the 4th dial was scheduled no earlier than base * 2^3
	req.GreaterOrEqual(slept[2], 8*100*time.Millisecond)
}

func TestManager_Connect_Then_Caller_Disconnect_Never_Retries(t *testing.T) {
	req := require.New(t)
	m := newTestManager(Config{BackoffBase: time.Millisecond, BackoffCap: time.Second, MaxRetries: 3})

	conn := newScriptedConn()
	m.dial = func(Config) (transport, error) { return conn, nil }

	connected := make(chan struct{}, 1)
	disconnected := make(chan event.Disconnected, 1)
	m.On(event.KindConnected, &handlerFunc{fn: func(event.Event) { connected <- struct{}{} }})
	m.On(event.KindDisconnected, &handlerFunc{fn: func(e event.Event) {
		disconnected <- e.(event.Disconnected)
	}})

	m.Connect()
	select {
	case <-connected:
	case <-time.After(time.Second):
		req.Fail("expected a connected signal")
	}
	req.Equal(StateConnected, m.State())

	// When the caller disconnects
	m.Disconnect()

	// Then a disconnected signal fires and the state settles without retry
	select {
	case <-disconnected:
	case <-time.After(time.Second):
		req.Fail("expected a disconnected signal")
	}
	req.Eventually(func() bool { return m.State() == StateDisconnected }, time.Second, 5*time.Millisecond)
}

func TestManager_Dispatches_Typed_Events_To_Handlers(t *testing.T) {
	req := require.New(t)
	m := newTestManager(Config{BackoffBase: time.Millisecond, BackoffCap: time.Second, MaxRetries: 0})

	conn := newScriptedConn()
	m.dial = func(Config) (transport, error) { return conn, nil }

	got := make(chan event.UnreadCount, 1)
	m.On(event.KindUnreadCount, &handlerFunc{fn: func(e event.Event) {
		got <- e.(event.UnreadCount)
	}})

	m.Connect()

	raw, err := event.EncodeFrame(event.UnreadCount{Count: 7})
	req.NoError(err)
	conn.inbound <- raw

	select {
	case count := <-got:
		req.Equal(int64(7), count.Count)
	case <-time.After(time.Second):
		req.Fail("expected the unread_count handler to fire")
	}

	m.Disconnect()
}

func TestManager_Send_Helpers_Drop_While_Disconnected(t *testing.T) {
	req := require.New(t)
	m := newTestManager(Config{BackoffBase: time.Millisecond, BackoffCap: time.Second, MaxRetries: 0})

	// No Connect: every helper is a silent no-op, nothing panics, nothing queues
	m.SendMessage(event.SendMessage{ConversationID: "conv-1", Type: "text", Content: "hi"})
	m.JoinConversation("conv-1")
	m.TypingStart("conv-1")
	m.GetUnreadCount()

	req.Equal(StateDisconnected, m.State())
}

func TestManager_Off_Removes_Handler(t *testing.T) {
	req := require.New(t)
	m := newTestManager(Config{})

	var first, second int
	h1 := &handlerFunc{fn: func(event.Event) { first++ }}
	h2 := &handlerFunc{fn: func(event.Event) { second++ }}
	m.On(event.KindConnected, h1)
	m.On(event.KindConnected, h2)

	m.Off(event.KindConnected, h1)
	m.emit(event.Connected{})

	req.Zero(first)
	req.Equal(1, second)
}

func TestManager_Reconnects_After_Transport_Drop(t *testing.T) {
	req := require.New(t)
	m := newTestManager(Config{BackoffBase: time.Millisecond, BackoffCap: time.Second, MaxRetries: 5})

	first := newScriptedConn()
	second := newScriptedConn()
	conns := []*scriptedConn{first, second}
	var dials int
	m.dial = func(Config) (transport, error) {
		conn := conns[dials]
		dials++
		return conn, nil
	}
	m.sleep = func(time.Duration) {}

	connected := make(chan struct{}, 2)
	m.On(event.KindConnected, &handlerFunc{fn: func(event.Event) { connected <- struct{}{} }})

	m.Connect()
	<-connected

	// When the transport drops without a caller Disconnect
	_ = first.Close()

	// Then the manager dials again and recovers
	select {
	case <-connected:
	case <-time.After(time.Second):
		req.Fail("expected an automatic reconnect")
	}
	req.Equal(2, dials)
	req.Equal(StateConnected, m.State())
	req.Zero(second.written())

	m.Disconnect()
}
