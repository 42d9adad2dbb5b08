package domain

import "time"

// NotificationPreference holds the named boolean channels of one user in one
// organization. Absent records are served as the all-true baseline.
type NotificationPreference struct {
	UserID             string    `json:"user_id"`
	OrgID              string    `json:"org_id"`
	Push               bool      `json:"push"`
	Email              bool      `json:"email"`
	SMS                bool      `json:"sms"`
	MessageAlerts      bool      `json:"message_alerts"`
	AttendanceAlerts   bool      `json:"attendance_alerts"`
	AnnouncementAlerts bool      `json:"announcement_alerts"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultPreference is the baseline used when no record exists yet.
func DefaultPreference(userID, orgID string) NotificationPreference {
	return NotificationPreference{
		UserID:             userID,
		OrgID:              orgID,
		Push:               true,
		Email:              true,
		SMS:                true,
		MessageAlerts:      true,
		AttendanceAlerts:   true,
		AnnouncementAlerts: true,
	}
}

// PreferencePatch is a partial update. Nil fields keep their prior value.
type PreferencePatch struct {
	Push               *bool `json:"push,omitempty"`
	Email              *bool `json:"email,omitempty"`
	SMS                *bool `json:"sms,omitempty"`
	MessageAlerts      *bool `json:"message_alerts,omitempty"`
	AttendanceAlerts   *bool `json:"attendance_alerts,omitempty"`
	AnnouncementAlerts *bool `json:"announcement_alerts,omitempty"`
}

// Apply merges the patch into the preference. Update is a merge, not a replace.
func (p NotificationPreference) Apply(patch PreferencePatch, now time.Time) NotificationPreference {
	if patch.Push != nil {
		p.Push = *patch.Push
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.SMS != nil {
		p.SMS = *patch.SMS
	}
	if patch.MessageAlerts != nil {
		p.MessageAlerts = *patch.MessageAlerts
	}
	if patch.AttendanceAlerts != nil {
		p.AttendanceAlerts = *patch.AttendanceAlerts
	}
	if patch.AnnouncementAlerts != nil {
		p.AnnouncementAlerts = *patch.AnnouncementAlerts
	}
	p.UpdatedAt = now
	return p
}
