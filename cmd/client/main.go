package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gookit/color"
	"github.com/samber/lo"

	"campushub/client"
	"campushub/domain"
	"campushub/domain/event"
)

// Interactive terminal client. One process is one authenticated user; run
// several side by side to watch the fanout live.
func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws", "Server WebSocket URL")
	token := flag.String("token", "", "Bearer token minted by the host application")
	flag.Parse()

	if *token == "" {
		log.Fatal("A -token is required")
	}

	manager := client.NewManager(slog.Default(), client.Config{
		ServerAddr:       *addr,
		Token:            *token,
		HandshakeTimeout: 5 * time.Second,
		BackoffBase:      500 * time.Millisecond,
		BackoffCap:       30 * time.Second,
		MaxRetries:       10,
	})

	registerRenderers(manager)
	manager.Connect()

	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(" campushub client "))
	fmt.Println("Commands: /join <conv> | /leave <conv> | /file <conv> <path> | /read <notif>")
	fmt.Println("          /unread | /prefs | /broadcast <audiences> <title>: <message> | /quit")
	fmt.Println("Anything else sends a text message to the last joined conversation.")

	scanner := bufio.NewScanner(os.Stdin)
	currentConv := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			if currentConv == "" {
				color.Yellow.Println("Join a conversation first: /join <conv>")
				continue
			}
			manager.SendMessage(event.SendMessage{
				ConversationID: currentConv,
				Type:           domain.MessageText,
				Content:        line,
			})
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "/quit":
			manager.Disconnect()
			return
		case "/join":
			if len(fields) != 2 {
				color.Yellow.Println("Usage: /join <conv>")
				continue
			}
			currentConv = fields[1]
			manager.JoinConversation(currentConv)
		case "/leave":
			if len(fields) != 2 {
				color.Yellow.Println("Usage: /leave <conv>")
				continue
			}
			manager.LeaveConversation(fields[1])
			if currentConv == fields[1] {
				currentConv = ""
			}
		case "/file":
			if len(fields) != 3 {
				color.Yellow.Println("Usage: /file <conv> <path>")
				continue
			}
			sendFile(manager, fields[1], fields[2])
		case "/read":
			if len(fields) != 2 {
				color.Yellow.Println("Usage: /read <notif>")
				continue
			}
			manager.MarkNotificationRead(fields[1])
		case "/unread":
			manager.GetUnreadCount()
		case "/prefs":
			manager.GetPreferences()
		case "/broadcast":
			cmd, err := parseBroadcast(line)
			if err != nil {
				color.Yellow.Println(err.Error())
				continue
			}
			manager.BroadcastNotification(cmd)
		default:
			color.Yellow.Printf("Unknown command %s\n", fields[0])
		}
	}
}

// sendFile ships a file message. The bytes themselves travel through the host
// application's upload pipeline; here we only detect the type and describe it.
func sendFile(manager *client.Manager, conversationID, path string) {
	info, err := os.Stat(path)
	if err != nil {
		color.Yellow.Printf("Cannot read %s: %v\n", path, err)
		return
	}
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		color.Yellow.Printf("Cannot detect type of %s: %v\n", path, err)
		return
	}
	manager.SendMessage(event.SendMessage{
		ConversationID: conversationID,
		Type:           domain.MessageFile,
		Content:        fmt.Sprintf("Shared %s (%s)", filepath.Base(path), mime.String()),
		FileURL:        "file://" + path,
		FileName:       filepath.Base(path),
		FileSize:       info.Size(),
	})
}

// parseBroadcast reads "/broadcast teachers,parents Title here: message here".
func parseBroadcast(line string) (event.Broadcast, error) {
	usage := fmt.Errorf("usage: /broadcast <audiences> <title>: <message>")
	rest := strings.TrimSpace(strings.TrimPrefix(line, "/broadcast"))
	parts := strings.SplitN(rest, " ", 2)
	if len(parts) != 2 {
		return event.Broadcast{}, usage
	}
	titleAndMessage := strings.SplitN(parts[1], ":", 2)
	if len(titleAndMessage) != 2 {
		return event.Broadcast{}, usage
	}
	audiences := lo.Map(strings.Split(parts[0], ","), func(s string, _ int) domain.Audience {
		return domain.Audience(strings.TrimSpace(s))
	})
	for _, a := range audiences {
		if !a.Valid() {
			return event.Broadcast{}, fmt.Errorf("unknown audience %q", a)
		}
	}
	return event.Broadcast{
		Title:          strings.TrimSpace(titleAndMessage[0]),
		Message:        strings.TrimSpace(titleAndMessage[1]),
		TargetAudience: audiences,
	}, nil
}

type renderer func(event.Event)

func (r renderer) Handle(e event.Event) { r(e) }

func registerRenderers(manager *client.Manager) {
	manager.On(event.KindConnected, renderer(func(event.Event) {
		color.Green.Println("* connected")
	}))
	manager.On(event.KindDisconnected, renderer(func(e event.Event) {
		color.Red.Printf("* disconnected: %s\n", e.(event.Disconnected).Reason)
	}))
	manager.On(event.KindReconnectFailed, renderer(func(e event.Event) {
		color.Red.Printf("* gave up after %d attempts\n", e.(event.ReconnectFailed).Attempts)
	}))
	manager.On(event.KindJoinedConversation, renderer(func(e event.Event) {
		joined := e.(event.JoinedConversation)
		color.Cyan.Printf("* joined %s\n", joined.ConversationID)
	}))
	manager.On(event.KindNewMessage, renderer(func(e event.Event) {
		m := e.(event.NewMessage).Message
		prefix := color.New(color.FgCyan).Render(fmt.Sprintf("[%s] %s:", m.ConversationID, m.SenderID))
		fmt.Printf("%s %s\n", prefix, m.Content)
	}))
	manager.On(event.KindMessagesRead, renderer(func(e event.Event) {
		read := e.(event.MessagesRead)
		color.Gray.Printf("* %s read %d messages in %s\n",
			read.ReaderID, len(read.MessageIDs), read.ConversationID)
	}))
	manager.On(event.KindUserTyping, renderer(func(e event.Event) {
		color.Gray.Printf("* %s is typing...\n", e.(event.UserTyping).UserID)
	}))
	manager.On(event.KindUserStoppedTyping, renderer(func(e event.Event) {
		color.Gray.Printf("* %s stopped typing\n", e.(event.UserStoppedTyping).UserID)
	}))
	manager.On(event.KindNotification, renderer(func(e event.Event) {
		n := e.(event.Notification).Notification
		header := color.New(color.BgBlue, color.FgWhite).Render(fmt.Sprintf(" %s ", n.Type))
		fmt.Printf("%s %s - %s (id=%s)\n", header, n.Title, n.Message, n.ID)
	}))
	manager.On(event.KindNotificationRead, renderer(func(e event.Event) {
		color.Gray.Printf("* notification %s read\n", e.(event.NotificationRead).NotificationID)
	}))
	manager.On(event.KindUnreadCount, renderer(func(e event.Event) {
		color.Cyan.Printf("* %d unread notifications\n", e.(event.UnreadCount).Count)
	}))
	manager.On(event.KindNotificationPreferences, renderer(func(e event.Event) {
		p := e.(event.NotificationPreferences).Preferences
		color.Cyan.Printf("* prefs: messages=%v attendance=%v announcements=%v\n",
			p.MessageAlerts, p.AttendanceAlerts, p.AnnouncementAlerts)
	}))
	manager.On(event.KindPreferencesUpdated, renderer(func(e event.Event) {
		color.Green.Println("* preferences updated")
	}))
	manager.On(event.KindBroadcastSent, renderer(func(e event.Event) {
		color.Green.Printf("* broadcast reached %d recipients\n", e.(event.BroadcastSent).Recipients)
	}))
	manager.On(event.KindError, renderer(func(e event.Event) {
		wire := e.(event.Error)
		color.Red.Printf("! %s: %s\n", wire.Code, wire.Message)
	}))
}
