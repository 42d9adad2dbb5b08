package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"campushub/contract"
	"campushub/domain"
	"campushub/domain/event"
	"campushub/errors"
	"campushub/observability"
	"campushub/repositories"
)

type INotificationService interface {
	Notifier
	Broadcast(ctx context.Context, claim domain.Claim, cmd event.Broadcast) (event.BroadcastSent, error)
	MarkRead(ctx context.Context, claim domain.Claim, notificationID string) error
	UnreadCount(claim domain.Claim) (event.UnreadCount, error)
	GetPreferences(claim domain.Claim) (event.NotificationPreferences, error)
	UpdatePreferences(claim domain.Claim, patch domain.PreferencePatch) (event.PreferencesUpdated, error)
	AttendanceMarked(ctx context.Context, claim domain.Claim, cmd event.AttendanceMarked) error
}

type NotificationService struct {
	log           *slog.Logger
	registry      contract.IRegistry
	notifications repositories.INotificationRepository
	preferences   repositories.IPreferenceRepository
	directory     repositories.IDirectoryRepository
	monitoring    *observability.MonitoringManager
}

func NewNotificationService(
	log *slog.Logger,
	registry contract.IRegistry,
	notifications repositories.INotificationRepository,
	preferences repositories.IPreferenceRepository,
	directory repositories.IDirectoryRepository,
	monitoring *observability.MonitoringManager,
) *NotificationService {
	return &NotificationService{
		log:           log,
		registry:      registry,
		notifications: notifications,
		preferences:   preferences,
		directory:     directory,
		monitoring:    monitoring,
	}
}

// Notify persists exactly one notification row, then publishes it to the
// recipient's per-user channel. A fanout failure after the persist is logged
// only: the row is durable and will surface on the next fetch.
func (s *NotificationService) Notify(ctx context.Context, n domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if err := s.notifications.Store(n); err != nil {
		return err
	}
	s.monitoring.IncrNotificationsSent()

	if err := s.registry.Publish(ctx, domain.UserChannel(n.RecipientID), event.Notification{Notification: n}); err != nil {
		s.log.Warn("Degraded notification fanout", "recipient_id", n.RecipientID, "error", err)
	}
	return nil
}

// Broadcast resolves the requested audience segments against the directory,
// unions them, and routes one notification per recipient through Notify.
// Admin only. An empty resolution is a success with count 0.
func (s *NotificationService) Broadcast(ctx context.Context, claim domain.Claim, cmd event.Broadcast) (event.BroadcastSent, error) {
	// 1. Only the organization's administrative role may broadcast
	if !claim.IsAdmin() {
		return event.BroadcastSent{}, fmt.Errorf("%w: broadcast requires the admin role", errors.ErrAccessDenied)
	}

	// 2. Resolve each segment, then union
	recipients, err := s.resolveAudiences(claim.OrgID, cmd.TargetAudience)
	if err != nil {
		return event.BroadcastSent{}, err
	}

	priority := cmd.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	// 3. One durable row per recipient; per-recipient delivery is independent
	now := time.Now().UTC()
	for _, recipientID := range recipients {
		n := domain.Notification{
			ID:          uuid.NewString(),
			OrgID:       claim.OrgID,
			RecipientID: recipientID,
			SenderID:    claim.UserID,
			Title:       cmd.Title,
			Message:     cmd.Message,
			Type:        domain.NotificationAnnouncement,
			Priority:    priority,
			Metadata:    map[string]string{"broadcast": "true"},
			CreatedAt:   now,
		}
		if err := s.Notify(ctx, n); err != nil {
			return event.BroadcastSent{}, err
		}
	}

	s.monitoring.IncrBroadcastsSent()
	s.log.Info("Broadcast sent", "org_id", claim.OrgID, "sender_id", claim.UserID,
		"audiences", cmd.TargetAudience, "recipients", len(recipients))
	return event.BroadcastSent{Recipients: len(recipients)}, nil
}

// resolveAudiences maps audience names to concrete user ids. Students hold
// no accounts of their own; their segment resolves to guardian ids, deduped
// so a guardian with several children is notified once.
func (s *NotificationService) resolveAudiences(orgID string, audiences []domain.Audience) ([]string, error) {
	var recipients []string
	for _, audience := range audiences {
		switch audience {
		case domain.AudienceAll:
			users, err := s.directory.ActiveUsers(orgID)
			if err != nil {
				return nil, err
			}
			recipients = append(recipients, lo.Map(users, userID)...)
		case domain.AudienceTeachers:
			users, err := s.directory.ActiveUsersByRole(orgID, domain.RoleTeacher)
			if err != nil {
				return nil, err
			}
			recipients = append(recipients, lo.Map(users, userID)...)
		case domain.AudienceParents:
			users, err := s.directory.ActiveUsersByRole(orgID, domain.RoleParent)
			if err != nil {
				return nil, err
			}
			recipients = append(recipients, lo.Map(users, userID)...)
		case domain.AudienceStudents:
			students, err := s.directory.ActiveStudents(orgID)
			if err != nil {
				return nil, err
			}
			recipients = append(recipients, lo.Map(students, func(st domain.Student, _ int) string {
				return st.GuardianID
			})...)
		default:
			return nil, fmt.Errorf("%w: unknown audience %q", errors.ErrValidation, audience)
		}
	}
	return lo.Uniq(recipients), nil
}

func userID(u domain.User, _ int) string {
	return u.ID
}

// MarkRead flips read/readAt on the caller's own notification. A foreign or
// missing id is a silent no-op: both walk the same lookup path and return
// the same way, so existence is never leaked.
func (s *NotificationService) MarkRead(ctx context.Context, claim domain.Claim, notificationID string) error {
	n, err := s.notifications.Get(claim.UserID, notificationID)
	if stderrors.Is(err, errors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if n.Read {
		return nil
	}

	now := time.Now().UTC()
	n.Read = true
	n.ReadAt = &now
	if err := s.notifications.Update(n); err != nil {
		return err
	}

	readEvent := event.NotificationRead{NotificationID: n.ID, ReadAt: now}
	if err := s.registry.Publish(ctx, domain.UserChannel(claim.UserID), readEvent); err != nil {
		s.log.Warn("Degraded notification_read fanout", "user_id", claim.UserID, "error", err)
	}
	return nil
}

func (s *NotificationService) UnreadCount(claim domain.Claim) (event.UnreadCount, error) {
	count, err := s.notifications.CountUnread(claim.UserID)
	if err != nil {
		return event.UnreadCount{}, err
	}
	return event.UnreadCount{Count: count}, nil
}

// GetPreferences serves the stored record, or the all-true baseline when the
// user never saved one.
func (s *NotificationService) GetPreferences(claim domain.Claim) (event.NotificationPreferences, error) {
	pref, ok, err := s.preferences.Get(claim.OrgID, claim.UserID)
	if err != nil {
		return event.NotificationPreferences{}, err
	}
	if !ok {
		pref = domain.DefaultPreference(claim.UserID, claim.OrgID)
	}
	return event.NotificationPreferences{Preferences: pref}, nil
}

// UpdatePreferences merges the patch into the current record (stored or
// baseline); unspecified fields retain their prior values.
func (s *NotificationService) UpdatePreferences(claim domain.Claim, patch domain.PreferencePatch) (event.PreferencesUpdated, error) {
	pref, ok, err := s.preferences.Get(claim.OrgID, claim.UserID)
	if err != nil {
		return event.PreferencesUpdated{}, err
	}
	if !ok {
		pref = domain.DefaultPreference(claim.UserID, claim.OrgID)
	}

	updated := pref.Apply(patch, time.Now().UTC())
	if err := s.preferences.Put(updated); err != nil {
		return event.PreferencesUpdated{}, err
	}
	return event.PreferencesUpdated{Preferences: updated}, nil
}

// AttendanceMarked alerts the guardian of the student named by the external
// attendance workflow. Teacher or admin only.
func (s *NotificationService) AttendanceMarked(ctx context.Context, claim domain.Claim, cmd event.AttendanceMarked) error {
	if !claim.CanReportAttendance() {
		return fmt.Errorf("%w: attendance reports require the teacher or admin role", errors.ErrAccessDenied)
	}

	student, err := s.directory.GetStudent(claim.OrgID, cmd.StudentID)
	if err != nil {
		return err
	}

	return s.Notify(ctx, domain.Notification{
		OrgID:       claim.OrgID,
		RecipientID: student.GuardianID,
		SenderID:    claim.UserID,
		Title:       "Attendance update",
		Message:     fmt.Sprintf("Attendance marked %s on %s", cmd.Status, cmd.Date),
		Type:        domain.NotificationAttendance,
		Priority:    domain.PriorityHigh,
		Metadata:    map[string]string{"student_id": cmd.StudentID, "status": cmd.Status, "date": cmd.Date},
	})
}
