// Package client is the connection manager used by host applications to talk
// to the server: connect/disconnect lifecycle, exponential reconnect backoff,
// and a handler registry decoupling callers from the transport.
package client

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"campushub/domain/event"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	// StateFailed is terminal: the retry budget is spent and only a new
	// explicit Connect leaves it.
	StateFailed State = "failed"
)

type Config struct {
	ServerAddr       string
	Token            string
	HandshakeTimeout time.Duration
	BackoffBase      time.Duration
	BackoffCap       time.Duration
	MaxRetries       int
}

// transport is the slice of *websocket.Conn the manager needs; tests inject
// scripted implementations.
type transport interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type dialFunc func(cfg Config) (transport, error)

type Manager struct {
	log  *slog.Logger
	cfg  Config
	dial dialFunc
	// sleep waits between retries; tests replace it to make the schedule
	// observable without real delays.
	sleep func(d time.Duration)

	mu       sync.Mutex
	state    State
	conn     transport
	closing  bool
	handlers map[event.Kind][]event.Handler
	done     chan struct{}
}

func NewManager(log *slog.Logger, cfg Config) *Manager {
	m := &Manager{
		log:      log,
		cfg:      cfg,
		dial:     dialWebSocket,
		state:    StateDisconnected,
		handlers: make(map[event.Kind][]event.Handler),
	}
	m.sleep = m.interruptibleSleep
	return m
}

func dialWebSocket(cfg Config) (transport, error) {
	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	header := http.Header{"Authorization": []string{"Bearer " + cfg.Token}}
	conn, resp, err := dialer.Dial(cfg.ServerAddr, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Connect starts the connection loop. It returns immediately; progress is
// observable through State and the connected/disconnected/reconnect_failed
// signals. Calling it while a loop is already running is a no-op.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.state == StateConnecting || m.state == StateConnected {
		m.mu.Unlock()
		return
	}
	m.state = StateConnecting
	m.closing = false
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.run()
}

// Disconnect is caller-initiated and never auto-retried.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.closing = true
	conn := m.conn
	done := m.done
	m.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		default:
			close(done)
		}
	}
	if conn != nil {
		_ = conn.Close()
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// run is the reconnect loop. The attempt counter resets on every successful
// handshake and the delay grows as min(base * 2^attempt, cap).
func (m *Manager) run() {
	attempt := 0
	for {
		m.setState(StateConnecting)
		conn, err := m.dial(m.cfg)
		if err == nil {
			m.attach(conn)
			m.setState(StateConnected)
			attempt = 0
			m.emit(event.Connected{})

			reason := m.readLoop(conn)
			m.detach()
			m.emit(event.Disconnected{Reason: reason})
		} else {
			m.log.Debug("Dial failed", "addr", m.cfg.ServerAddr, "error", err)
		}

		if m.isClosing() {
			m.setState(StateDisconnected)
			return
		}

		attempt++
		if attempt > m.cfg.MaxRetries {
			m.setState(StateFailed)
			m.emit(event.ReconnectFailed{Attempts: attempt - 1})
			return
		}
		m.setState(StateDisconnected)
		m.sleep(Backoff(m.cfg.BackoffBase, m.cfg.BackoffCap, attempt))
	}
}

// Backoff computes min(base * 2^attempt, ceiling), the delay after the
// given number of consecutive failed attempts.
func Backoff(base, ceiling time.Duration, attempt int) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	if d > ceiling {
		return ceiling
	}
	return d
}

func (m *Manager) readLoop(conn transport) string {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err.Error()
		}
		frame, err := event.DecodeFrame(raw)
		if err != nil {
			m.log.Debug("Dropping malformed frame", "error", err)
			continue
		}
		e, err := decodeServerEvent(frame)
		if err != nil {
			m.log.Debug("Dropping unknown frame", "event", string(frame.Event), "error", err)
			continue
		}
		m.emit(e)
	}
}

// On registers a handler for one event kind.
func (m *Manager) On(kind event.Kind, h event.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[kind] = append(m.handlers[kind], h)
}

// Off removes a previously registered handler.
func (m *Manager) Off(kind event.Kind, h event.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.handlers[kind][:0]
	for _, existing := range m.handlers[kind] {
		if existing != h {
			kept = append(kept, existing)
		}
	}
	m.handlers[kind] = kept
}

// emit calls the handlers registered for the event's kind, outside the lock.
func (m *Manager) emit(e event.Event) {
	m.mu.Lock()
	snapshot := make([]event.Handler, len(m.handlers[e.Kind()]))
	copy(snapshot, m.handlers[e.Kind()])
	m.mu.Unlock()

	for _, h := range snapshot {
		h.Handle(e)
	}
}

// send silently drops when not connected: callers must not assume delivery
// while disconnected, and nothing is queued.
func (m *Manager) send(e event.Event) {
	m.mu.Lock()
	conn := m.conn
	connected := m.state == StateConnected
	m.mu.Unlock()

	if !connected || conn == nil {
		m.log.Debug("Dropping send while disconnected", "event", string(e.Kind()))
		return
	}

	raw, err := event.EncodeFrame(e)
	if err != nil {
		m.log.Error("Failed to encode frame", "event", string(e.Kind()), "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		m.log.Debug("Write failed", "event", string(e.Kind()), "error", err)
	}
}

// Typed send helpers.

func (m *Manager) JoinConversation(conversationID string) {
	m.send(event.JoinConversation{ConversationID: conversationID})
}

func (m *Manager) LeaveConversation(conversationID string) {
	m.send(event.LeaveConversation{ConversationID: conversationID})
}

func (m *Manager) SendMessage(cmd event.SendMessage) {
	m.send(cmd)
}

func (m *Manager) TypingStart(conversationID string) {
	m.send(event.TypingStart{ConversationID: conversationID})
}

func (m *Manager) TypingStop(conversationID string) {
	m.send(event.TypingStop{ConversationID: conversationID})
}

func (m *Manager) MarkNotificationRead(notificationID string) {
	m.send(event.MarkNotificationRead{NotificationID: notificationID})
}

func (m *Manager) GetUnreadCount() {
	m.send(event.GetUnreadCount{})
}

func (m *Manager) GetPreferences() {
	m.send(event.GetPreferences{})
}

func (m *Manager) UpdatePreferences(patch event.UpdatePreferences) {
	m.send(patch)
}

func (m *Manager) BroadcastNotification(cmd event.Broadcast) {
	m.send(cmd)
}

func (m *Manager) AttendanceMarked(cmd event.AttendanceMarked) {
	m.send(cmd)
}

func (m *Manager) attach(conn transport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conn = conn
}

func (m *Manager) detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Manager) isClosing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closing
}

// interruptibleSleep waits out the backoff delay unless Disconnect fires.
func (m *Manager) interruptibleSleep(d time.Duration) {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-done:
	}
}
