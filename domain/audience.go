package domain

// Audience is a named recipient-resolution rule used by broadcast.
// Requested audiences are unioned, never intersected.
type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceTeachers Audience = "teachers"
	AudienceParents  Audience = "parents"
	// AudienceStudents resolves to the guardian ids of every active student,
	// deduplicated: a guardian with several children is notified once.
	AudienceStudents Audience = "students"
)

func (a Audience) Valid() bool {
	switch a {
	case AudienceAll, AudienceTeachers, AudienceParents, AudienceStudents:
		return true
	}
	return false
}

// User is a read-only directory record. This subsystem never mutates it.
type User struct {
	ID     string `json:"id"`
	OrgID  string `json:"org_id"`
	Role   Role   `json:"role"`
	Active bool   `json:"active"`
}

// Student is a read-only directory record linking a student to a guardian
// account. Students hold no account of their own.
type Student struct {
	ID         string `json:"id"`
	OrgID      string `json:"org_id"`
	GuardianID string `json:"guardian_id"`
	Active     bool   `json:"active"`
}
