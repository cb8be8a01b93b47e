package user

import "time"

// Role vocabulary. Earlier drafts used student/professor/organization; that
// naming is obsolete.
const (
	RoleLearner   = "learner"
	RoleEducator  = "educator"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Account status.
const (
	StatusActive = "active"
)

// HistoryCap bounds the per-user event list; oldest entries fall off.
const HistoryCap = 50

// History entry types.
const (
	HistoryTaken   = "taken"
	HistoryCreated = "created"
)

// HistoryEntry is one quiz-taken or quiz-created event, most recent first.
type HistoryEntry struct {
	QuizID  string    `json:"quizId"`
	Title   string    `json:"title,omitempty"`
	Type    string    `json:"type"`
	Score   int       `json:"score,omitempty"`
	Passed  bool      `json:"passed,omitempty"`
	TakenAt time.Time `json:"takenAt"`
}

type User struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Email               string         `json:"email"`
	Username            string         `json:"username"`
	Role                string         `json:"role"`
	AvatarURL           string         `json:"avatarUrl,omitempty"`
	XP                  int            `json:"xp"`
	History             []HistoryEntry `json:"history"`
	Status              string         `json:"status,omitempty"`
	ForcePasswordChange bool           `json:"forcePasswordChange,omitempty"`
	CreatedAt           time.Time      `json:"createdAt,omitempty"`
	UpdatedAt           time.Time      `json:"updatedAt,omitempty"`
	PasswordUpdatedAt   time.Time      `json:"passwordUpdatedAt,omitempty"`
	PasswordHash        string         `json:"passwordHash,omitempty"`
}

// Safe strips the credential hash for responses.
func (u User) Safe() User {
	u.PasswordHash = ""
	return u
}
