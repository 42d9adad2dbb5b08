package ws

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"campushub/contract"
	"campushub/domain"
	"campushub/observability"
)

type Config struct {
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PongTimeout      time.Duration
	BufferSize       int
}

// Server admits WebSocket connections. The identity gate runs before the
// upgrade: a bad credential is answered with 401 over plain HTTP and no
// partial or anonymous session is ever admitted.
type Server struct {
	log        *slog.Logger
	gate       contract.IIdentityGate
	registry   contract.IRegistry
	dispatcher *Dispatcher
	monitoring *observability.MonitoringManager
	upgrader   websocket.Upgrader
	cfg        Config

	mu       sync.Mutex
	sessions map[string]*Connection
}

func NewServer(log *slog.Logger, gate contract.IIdentityGate, registry contract.IRegistry,
	dispatcher *Dispatcher, monitoring *observability.MonitoringManager, cfg Config) *Server {
	return &Server{
		log:        log,
		gate:       gate,
		registry:   registry,
		dispatcher: dispatcher,
		monitoring: monitoring,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
		cfg:      cfg,
		sessions: make(map[string]*Connection),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. Authenticate before upgrading; the gate runs exactly once
	claim, err := s.gate.Verify(bearerToken(r))
	if err != nil {
		s.log.Info("Connection rejected", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	// 2. One session per connection; a user with two tabs holds two sessions
	sessionID := uuid.NewString()
	sink := NewSink(s.cfg.BufferSize)
	connection := newConnection(sessionID, claim, conn, sink, s.log, s.cfg.PingInterval, s.cfg.PongTimeout)

	// 3. Auto-subscribe the org and per-user channels at admission
	s.registry.Subscribe(sessionID, domain.OrgChannel(claim.OrgID), sink)
	s.registry.Subscribe(sessionID, domain.UserChannel(claim.UserID), sink)

	s.track(connection)
	s.monitoring.ConnectionOpened()
	s.log.Info("Connection admitted",
		"session_id", sessionID, "user_id", claim.UserID, "org_id", claim.OrgID, "role", string(claim.Role))

	go connection.writePump()
	connection.readPump(r.Context(), s.dispatcher)

	// 4. Teardown: no channel membership outlives the connection
	s.registry.Drop(sessionID)
	s.untrack(sessionID)
	s.monitoring.ConnectionClosed()
	s.log.Info("Connection closed", "session_id", sessionID, "user_id", claim.UserID)
}

// SweepStale closes every session whose peer stopped answering pings. Called
// by the heartbeat worker; returns how many sessions were reaped.
func (s *Server) SweepStale(maxIdle time.Duration) int {
	now := time.Now()

	s.mu.Lock()
	var stale []*Connection
	for _, c := range s.sessions {
		if c.idleSince(now) > maxIdle {
			stale = append(stale, c)
		}
	}
	s.mu.Unlock()

	for _, c := range stale {
		s.log.Info("Reaping stale session", "session_id", c.sessionID, "user_id", c.claim.UserID)
		c.close()
	}
	return len(stale)
}

func (s *Server) track(c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[c.sessionID] = c
}

func (s *Server) untrack(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// bearerToken accepts the credential from the Authorization header or, for
// browser clients that cannot set headers on a WebSocket, a query parameter.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
