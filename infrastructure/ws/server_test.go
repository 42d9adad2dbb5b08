package ws

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"campushub/auth"
	"campushub/domain"
	"campushub/domain/event"
	"campushub/moderation"
	"campushub/observability"
	"campushub/repositories"
	"campushub/runtime"
	"campushub/services"
)

const testSecret = "test-secret"

type fixture struct {
	url           string
	gate          *auth.Gate
	conversations repositories.ConversationRepository
	directory     repositories.DirectoryRepository
}

func newServerFixture(t *testing.T) fixture {
	t.Helper()
	req := require.New(t)
	log := slog.Default()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	conversations := repositories.NewConversationRepository(db, log)
	messages := repositories.NewMessageRepository(db, log)
	notifications := repositories.NewNotificationRepository(db, log)
	preferences := repositories.NewPreferenceRepository(db, log)
	directory := repositories.NewDirectoryRepository(db, log)

	monitoring := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry(log, 2*time.Second, monitoring)

	moderator, err := moderation.NewModerator([]string{"badger"}, '*', log)
	req.NoError(err)

	notificationService := services.NewNotificationService(log, registry, notifications, preferences, directory, monitoring)
	messagingService := services.NewMessagingService(log, registry, conversations, messages,
		notificationService, &moderator, monitoring, domain.ReadByAll)

	gate := auth.NewGate(testSecret)
	dispatcher := NewDispatcher(log, messagingService, notificationService)
	server := NewServer(log, gate, registry, dispatcher, monitoring, Config{
		HandshakeTimeout: 2 * time.Second,
		PingInterval:     200 * time.Millisecond,
		PongTimeout:      5 * time.Second,
		BufferSize:       64,
	})

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	return fixture{
		url:           "ws" + strings.TrimPrefix(ts.URL, "http"),
		gate:          gate,
		conversations: conversations,
		directory:     directory,
	}
}

func (f fixture) dial(t *testing.T, claim domain.Claim) *websocket.Conn {
	t.Helper()
	token, err := f.gate.Mint(claim, time.Hour)
	require.NoError(t, err)

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.Dial(f.url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, e event.Event) {
	t.Helper()
	raw, err := event.EncodeFrame(e)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

// waitFor reads frames until one of the wanted kind arrives, skipping others.
func waitFor(t *testing.T, conn *websocket.Conn, kind event.Kind) event.Frame {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", kind)
		frame, err := event.DecodeFrame(raw)
		require.NoError(t, err)
		if frame.Event == kind {
			return frame
		}
	}
}

func TestServer_Rejects_Bad_Credentials_Before_Upgrade(t *testing.T) {
	req := require.New(t)
	f := newServerFixture(t)

	header := http.Header{"Authorization": []string{"Bearer not-a-token"}}
	conn, resp, err := websocket.DefaultDialer.Dial(f.url, header)
	req.Error(err)
	req.Nil(conn)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestServer_Message_Flow_Between_Two_Connections(t *testing.T) {
	req := require.New(t)
	f := newServerFixture(t)

	conv := domain.Conversation{
		ID:           uuid.NewString(),
		OrgID:        "org-1",
		Type:         domain.ConversationDirect,
		Participants: []string{"alice", "bob"},
	}
	req.NoError(f.conversations.Put(conv))

	alice := f.dial(t, domain.Claim{UserID: "alice", Role: domain.RoleTeacher, OrgID: "org-1"})
	bob := f.dial(t, domain.Claim{UserID: "bob", Role: domain.RoleParent, OrgID: "org-1"})

	// Given both participants joined the conversation channel
	send(t, alice, event.JoinConversation{ConversationID: conv.ID})
	waitFor(t, alice, event.KindJoinedConversation)
	send(t, bob, event.JoinConversation{ConversationID: conv.ID})
	waitFor(t, bob, event.KindJoinedConversation)

	// When alice sends a message
	send(t, alice, event.SendMessage{ConversationID: conv.ID, Type: domain.MessageText, Content: "hello bob"})

	// Then bob receives new_message on the conversation channel
	frame := waitFor(t, bob, event.KindNewMessage)
	var posted event.NewMessage
	req.NoError(event.DecodePayload(frame, &posted))
	req.Equal("alice", posted.Message.SenderID)
	req.Equal("hello bob", posted.Message.Content)

	// And bob receives the per-user notification on his auto-subscribed channel
	frame = waitFor(t, bob, event.KindNotification)
	var notified event.Notification
	req.NoError(event.DecodePayload(frame, &notified))
	req.Equal("bob", notified.Notification.RecipientID)
	req.Equal(domain.NotificationMessage, notified.Notification.Type)
}

func TestServer_Identity_Comes_From_The_Claim(t *testing.T) {
	req := require.New(t)
	f := newServerFixture(t)

	conv := domain.Conversation{
		ID:           uuid.NewString(),
		OrgID:        "org-1",
		Type:         domain.ConversationDirect,
		Participants: []string{"alice", "bob"},
	}
	req.NoError(f.conversations.Put(conv))

	// mallory is not a participant; her frames carry no identity fields at
	// all, so the only identity in play is her rejected claim
	mallory := f.dial(t, domain.Claim{UserID: "mallory", Role: domain.RoleParent, OrgID: "org-1"})
	send(t, mallory, event.SendMessage{ConversationID: conv.ID, Type: domain.MessageText, Content: "hi"})

	frame := waitFor(t, mallory, event.KindError)
	var wireErr event.Error
	req.NoError(event.DecodePayload(frame, &wireErr))
	req.Equal("not_found", wireErr.Code)
}

func TestServer_Broadcast_Reaches_User_Channel(t *testing.T) {
	req := require.New(t)
	f := newServerFixture(t)

	req.NoError(f.directory.PutUser(domain.User{ID: "admin-1", OrgID: "org-1", Role: domain.RoleAdmin, Active: true}))
	req.NoError(f.directory.PutUser(domain.User{ID: "parent-1", OrgID: "org-1", Role: domain.RoleParent, Active: true}))

	admin := f.dial(t, domain.Claim{UserID: "admin-1", Role: domain.RoleAdmin, OrgID: "org-1"})
	parent := f.dial(t, domain.Claim{UserID: "parent-1", Role: domain.RoleParent, OrgID: "org-1"})

	send(t, admin, event.Broadcast{
		Title:          "Snow day",
		Message:        "School closed",
		TargetAudience: []domain.Audience{domain.AudienceParents},
		Priority:       domain.PriorityHigh,
	})

	// Then the admin gets the count and the parent gets the notification
	frame := waitFor(t, admin, event.KindBroadcastSent)
	var sent event.BroadcastSent
	req.NoError(event.DecodePayload(frame, &sent))
	req.Equal(1, sent.Recipients)

	frame = waitFor(t, parent, event.KindNotification)
	var notified event.Notification
	req.NoError(event.DecodePayload(frame, &notified))
	req.Equal("true", notified.Notification.Metadata["broadcast"])
}

func TestServer_Unread_Count_Round_Trip(t *testing.T) {
	req := require.New(t)
	f := newServerFixture(t)

	user := f.dial(t, domain.Claim{UserID: "carol", Role: domain.RoleParent, OrgID: "org-1"})

	send(t, user, event.GetUnreadCount{})
	frame := waitFor(t, user, event.KindUnreadCount)
	var count event.UnreadCount
	req.NoError(event.DecodePayload(frame, &count))
	req.Zero(count.Count)
}
