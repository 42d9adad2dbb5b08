package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"campushub/contract"
	"campushub/domain"
	"campushub/domain/event"
	"campushub/errors"
	"campushub/moderation"
	"campushub/observability"
	"campushub/repositories"
)

type IMessagingService interface {
	Join(ctx context.Context, claim domain.Claim, sessionID, conversationID string, sink contract.EventSink) (event.JoinedConversation, error)
	Leave(claim domain.Claim, sessionID, conversationID string)
	Send(ctx context.Context, claim domain.Claim, cmd event.SendMessage) error
	TypingStart(ctx context.Context, claim domain.Claim, sessionID, conversationID string) error
	TypingStop(ctx context.Context, claim domain.Claim, sessionID, conversationID string) error
}

// Notifier is the single-recipient emission path of the notification service.
// The messaging engine depends on this narrow view only.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

type MessagingService struct {
	log           *slog.Logger
	registry      contract.IRegistry
	conversations repositories.IConversationRepository
	messages      repositories.IMessageRepository
	notifier      Notifier
	moderator     *moderation.Moderator
	monitoring    *observability.MonitoringManager
	readPolicy    domain.ReadPolicy
}

func NewMessagingService(
	log *slog.Logger,
	registry contract.IRegistry,
	conversations repositories.IConversationRepository,
	messages repositories.IMessageRepository,
	notifier Notifier,
	moderator *moderation.Moderator,
	monitoring *observability.MonitoringManager,
	readPolicy domain.ReadPolicy,
) *MessagingService {
	return &MessagingService{
		log:           log,
		registry:      registry,
		conversations: conversations,
		messages:      messages,
		notifier:      notifier,
		moderator:     moderator,
		monitoring:    monitoring,
		readPolicy:    readPolicy,
	}
}

// Join subscribes the session to the conversation channel and marks every
// message authored by someone else as read. Re-joining is idempotent: the
// registry ignores duplicate subscriptions and MarkReadBy ignores users
// already present in readBy, so no duplicate messages_read event is emitted.
func (s *MessagingService) Join(ctx context.Context, claim domain.Claim, sessionID, conversationID string, sink contract.EventSink) (event.JoinedConversation, error) {
	// 1. Access check: participant, or group-type room, within the caller's org
	conv, err := s.access(claim, conversationID)
	if err != nil {
		return event.JoinedConversation{}, err
	}

	// 2. Subscribe before read-marking so the caller sees subsequent traffic
	channel := domain.ConversationChannel(conversationID)
	s.registry.Subscribe(sessionID, channel, sink)

	// 3. Mark unread messages from others as read
	msgs, err := s.messages.ListByConversation(conversationID)
	if err != nil {
		return event.JoinedConversation{}, err
	}

	var changed []domain.Message
	var changedIDs []string
	for i := range msgs {
		if msgs[i].MarkReadBy(claim.UserID, conv.Participants, s.readPolicy) {
			changed = append(changed, msgs[i])
			changedIDs = append(changedIDs, msgs[i].ID)
		}
	}

	if len(changed) > 0 {
		if err := s.messages.UpdateReadState(changed); err != nil {
			return event.JoinedConversation{}, err
		}

		// 4. Tell the other subscribed connections, not the reader itself
		readEvent := event.MessagesRead{
			ConversationID: conversationID,
			ReaderID:       claim.UserID,
			MessageIDs:     changedIDs,
			At:             time.Now().UTC(),
		}
		if err := s.registry.PublishExcept(ctx, channel, readEvent, sessionID); err != nil {
			s.log.Warn("Degraded messages_read fanout", "conversation_id", conversationID, "error", err)
		}
	}

	return event.JoinedConversation{ConversationID: conversationID, UserID: claim.UserID}, nil
}

// Leave unsubscribes only. No persistence effect.
func (s *MessagingService) Leave(claim domain.Claim, sessionID, conversationID string) {
	s.registry.Unsubscribe(sessionID, domain.ConversationChannel(conversationID))
}

// Send re-validates access, persists the message, then fans out. Persistence
// failure aborts before any fanout; fanout failure after a successful persist
// is logged and never rolls the message back.
func (s *MessagingService) Send(ctx context.Context, claim domain.Claim, cmd event.SendMessage) error {
	// 1. Re-validate access. A missing conversation and a denied one are
	// indistinguishable to the sender, so channel names can't be probed.
	conv, err := s.access(claim, cmd.ConversationID)
	if stderrors.Is(err, errors.ErrAccessDenied) || stderrors.Is(err, errors.ErrNotFound) {
		return errors.ErrNotFound
	}
	if err != nil {
		return err
	}

	// 2. Validate and moderate content
	content := cmd.Content
	if cmd.Type == domain.MessageText {
		if strings.TrimSpace(content) == "" {
			return fmt.Errorf("%w: empty text message", errors.ErrValidation)
		}
		if s.moderator != nil {
			censored, matched := s.moderator.Censor(content)
			if len(matched) > 0 {
				s.log.Warn("Censored message content",
					"conversation_id", cmd.ConversationID, "sender_id", claim.UserID, "words", len(matched))
			}
			content = censored
		}
	}

	// 3. Persist before any fanout; sender identity comes from the claim only
	msg := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		OrgID:          claim.OrgID,
		SenderID:       claim.UserID,
		Type:           cmd.Type,
		Content:        content,
		FileURL:        cmd.FileURL,
		FileName:       cmd.FileName,
		FileSize:       cmd.FileSize,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Store(msg); err != nil {
		return err
	}
	s.monitoring.IncrMessagesPersisted()

	if err := s.conversations.BumpLastMessage(conv.OrgID, conv.ID, msg.CreatedAt); err != nil {
		s.log.Warn("Failed to bump lastMessageAt", "conversation_id", conv.ID, "error", err)
	}

	// 4. Live fanout to the conversation channel
	if err := s.registry.Publish(ctx, domain.ConversationChannel(conv.ID), event.NewMessage{Message: msg}); err != nil {
		s.log.Warn("Degraded new_message fanout", "conversation_id", conv.ID, "error", err)
	}

	// 5. One notification per other participant through the per-recipient path
	for _, recipientID := range conv.RecipientsExcept(claim.UserID) {
		n := domain.Notification{
			ID:          uuid.NewString(),
			OrgID:       claim.OrgID,
			RecipientID: recipientID,
			SenderID:    claim.UserID,
			Title:       "New message",
			Message:     preview(content, 120),
			Type:        domain.NotificationMessage,
			Priority:    domain.PriorityMedium,
			Metadata:    map[string]string{"conversation_id": conv.ID, "message_id": msg.ID},
			CreatedAt:   msg.CreatedAt,
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.log.Warn("Failed to notify participant",
				"recipient_id", recipientID, "conversation_id", conv.ID, "error", err)
		}
	}

	return nil
}

func (s *MessagingService) TypingStart(ctx context.Context, claim domain.Claim, sessionID, conversationID string) error {
	if _, err := s.access(claim, conversationID); err != nil {
		return err
	}
	return s.registry.PublishExcept(ctx, domain.ConversationChannel(conversationID),
		event.UserTyping{ConversationID: conversationID, UserID: claim.UserID}, sessionID)
}

func (s *MessagingService) TypingStop(ctx context.Context, claim domain.Claim, sessionID, conversationID string) error {
	if _, err := s.access(claim, conversationID); err != nil {
		return err
	}
	return s.registry.PublishExcept(ctx, domain.ConversationChannel(conversationID),
		event.UserStoppedTyping{ConversationID: conversationID, UserID: claim.UserID}, sessionID)
}

// access loads the conversation inside the caller's org and checks the
// participant/group rule.
func (s *MessagingService) access(claim domain.Claim, conversationID string) (domain.Conversation, error) {
	conv, err := s.conversations.Get(claim.OrgID, conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if !conv.Accessible(claim) {
		return domain.Conversation{}, errors.ErrAccessDenied
	}
	return conv, nil
}

func preview(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "…"
}
