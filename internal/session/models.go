package session

import "time"

// Lifecycle status. Ended is terminal.
const (
	StatusLive  = "live"
	StatusEnded = "ended"
)

// DefaultDuration is applied when a create request carries no duration.
const DefaultDuration = 30 * time.Minute

// Session is one live quiz run an educator opened for joining by code.
type Session struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	QuizID    string    `json:"quizId"`
	OwnerID   string    `json:"ownerId"`
	Status    string    `json:"status"`
	Privacy   string    `json:"privacy"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Joinable derives the read-time liveness check. Expiry is lazy: the status
// field is never flipped by a background sweeper.
func (s Session) Joinable(now time.Time) bool {
	return s.Status == StatusLive && !now.After(s.ExpiresAt)
}

// Result is a quiz result scoped to one session, feeding participant lists
// and leaderboards.
type Result struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	QuizID       string    `json:"quizId"`
	StudentName  string    `json:"studentName"`
	StudentEmail string    `json:"studentEmail"`
	Score        int       `json:"score"`
	Passed       bool      `json:"passed"`
	CompletedAt  time.Time `json:"completedAt"`
}

// LeaderboardEntry is a score row for one participant.
type LeaderboardEntry struct {
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
	Score        int    `json:"score"`
	Passed       bool   `json:"passed"`
}

// Leaderboard captures the ordered scoreboard for one session.
type Leaderboard struct {
	SessionID string             `json:"sessionId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
