package e2e

import (
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"

	"campushub/auth"
	"campushub/client"
	"campushub/domain"
	"campushub/domain/event"
	"campushub/infrastructure/ws"
	"campushub/moderation"
	"campushub/observability"
	"campushub/repositories"
	"campushub/runtime"
	"campushub/services"
)

// BaseWsSuite boots a complete server once for the suite and hands out
// connected client managers per test step. With E2E_SERVER_ADDR set it skips
// the in-process stack and targets a deployed server instead; the suite then
// assumes that server was seeded with the same directory fixtures.
type BaseWsSuite struct {
	suite.Suite
	Config Config

	gate          *auth.Gate
	Conversations repositories.ConversationRepository
	Directory     repositories.DirectoryRepository

	url     string
	dbDir   string
	db      *badger.DB
	httpSrv *httptest.Server
}

func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	s.gate = auth.NewGate(s.Config.JWTSecret)

	if s.Config.ServerAddr != "" {
		s.url = s.Config.ServerAddr
		return
	}
	s.startInProcess()
}

func (s *BaseWsSuite) TearDownSuite() {
	if s.httpSrv != nil {
		s.httpSrv.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.dbDir != "" {
		_ = os.RemoveAll(s.dbDir)
	}
}

func (s *BaseWsSuite) startInProcess() {
	log := slog.Default()

	dir, err := os.MkdirTemp("", "campushub-e2e-*")
	s.Require().NoError(err)
	s.dbDir = dir

	s.db, err = badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)

	s.Conversations = repositories.NewConversationRepository(s.db, log)
	messages := repositories.NewMessageRepository(s.db, log)
	notifications := repositories.NewNotificationRepository(s.db, log)
	preferences := repositories.NewPreferenceRepository(s.db, log)
	s.Directory = repositories.NewDirectoryRepository(s.db, log)

	monitoring := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry(log, 2*time.Second, monitoring)

	censored, err := moderation.NewCensoredLoader().LoadAll()
	s.Require().NoError(err)
	moderator, err := moderation.NewModerator(censored.Words, '*', log)
	s.Require().NoError(err)

	notificationService := services.NewNotificationService(
		log, registry, notifications, preferences, s.Directory, monitoring)
	messagingService := services.NewMessagingService(
		log, registry, s.Conversations, messages, notificationService,
		&moderator, monitoring, domain.ReadByAll)

	dispatcher := ws.NewDispatcher(log, messagingService, notificationService)
	server := ws.NewServer(log, s.gate, registry, dispatcher, monitoring, ws.Config{
		HandshakeTimeout: 2 * time.Second,
		PingInterval:     200 * time.Millisecond,
		PongTimeout:      5 * time.Second,
		BufferSize:       64,
	})

	s.httpSrv = httptest.NewServer(server)
	s.url = "ws" + strings.TrimPrefix(s.httpSrv.URL, "http")
}

// StepHeader prints a colorized banner so interleaved client logs stay readable.
func (s *BaseWsSuite) StepHeader(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// WithClient mints a token for the claim, connects a manager, runs fn, and
// disconnects. The manager uses a short retry budget: an e2e step should
// never paper over a flapping server.
func (s *BaseWsSuite) WithClient(name string, claim domain.Claim, fn func(m *client.Manager)) {
	s.StepHeader(name)

	token, err := s.gate.Mint(claim, time.Hour)
	s.Require().NoError(err)

	m := client.NewManager(slog.Default(), client.Config{
		ServerAddr:       s.url,
		Token:            token,
		HandshakeTimeout: 2 * time.Second,
		BackoffBase:      100 * time.Millisecond,
		BackoffCap:       time.Second,
		MaxRetries:       2,
	})

	connected := make(chan struct{}, 1)
	m.On(event.KindConnected, handlerOf(func(event.Event) { connected <- struct{}{} }))

	m.Connect()
	select {
	case <-connected:
	case <-time.After(s.Config.Timeout):
		s.Require().FailNowf("connect timeout", "client %s never connected to %s", claim.UserID, s.url)
	}
	defer m.Disconnect()

	fn(m)
}

// Collect subscribes a channel to one event kind; steps receive from it with
// WaitOn instead of sleeping.
func Collect(m *client.Manager, kind event.Kind) <-chan event.Event {
	ch := make(chan event.Event, 16)
	m.On(kind, handlerOf(func(e event.Event) { ch <- e }))
	return ch
}

func (s *BaseWsSuite) WaitOn(ch <-chan event.Event, what string) event.Event {
	select {
	case e := <-ch:
		return e
	case <-time.After(s.Config.Timeout):
		s.Require().FailNowf("event timeout", "never received %s", what)
		return nil
	}
}

type handlerOf func(event.Event)

func (h handlerOf) Handle(e event.Event) { h(e) }
