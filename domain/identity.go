// Package domain contains core concepts of the messaging and notification system.
// This file defines the identity claim attached to every authenticated connection.
// No runtime, network, or UI logic should be added here.
package domain

// Role is the directory role carried by an identity claim.
// Students have no accounts of their own; their notifications are routed
// through their guardian's per-user channel.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
)

// Claim is the verified identity attached to a connection after the gate ran.
// It is derived exactly once per connection and never taken from a payload.
type Claim struct {
	UserID string
	Role   Role
	OrgID  string
}

// IsAdmin reports whether the claim holds the organization's administrative role.
func (c Claim) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanReportAttendance restricts the attendance convenience path to staff.
func (c Claim) CanReportAttendance() bool {
	return c.Role == RoleAdmin || c.Role == RoleTeacher
}
