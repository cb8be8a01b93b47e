package quiz

import "time"

// Difficulty levels.
const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

// Privacy settings.
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
	PrivacyOrg     = "org"
)

// Lifecycle status.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Question types.
const (
	TypeMultipleChoice = "multiple-choice"
	TypeTrueFalse      = "true-false"
)

// Creator identifies who authored a quiz.
type Creator struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Question is one prompt with an ordered option list and a single correct
// option index.
type Question struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

type Quiz struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Difficulty   string     `json:"difficulty,omitempty"`
	Duration     int        `json:"duration,omitempty"` // minutes
	PassingScore int        `json:"passingScore"`       // percentage 0-100
	Questions    []Question `json:"questions"`
	Privacy      string     `json:"privacy,omitempty"`
	Status       string     `json:"status,omitempty"`
	Creator      *Creator   `json:"creator,omitempty"`
	CreatedAt    time.Time  `json:"createdAt,omitempty"`
}

// Answer is one submitted selection. Unanswered questions are simply absent.
type Answer struct {
	QuestionID     int `json:"questionId"`
	SelectedAnswer int `json:"selectedAnswer"`
}

// Summary is the outcome of scoring one answer set against one quiz.
type Summary struct {
	Score          int  `json:"score"`
	TotalQuestions int  `json:"totalQuestions"`
	CorrectAnswers int  `json:"correctAnswers"`
	Passed         bool `json:"passed"`
}

// Result is the immutable record of one submission.
type Result struct {
	ID             string    `json:"id"`
	QuizID         string    `json:"quizId"`
	SessionID      string    `json:"sessionId,omitempty"`
	StudentName    string    `json:"studentName"`
	StudentEmail   string    `json:"studentEmail"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	Passed         bool      `json:"passed"`
	CompletedAt    time.Time `json:"completedAt"`
	Answers        []Answer  `json:"answers"`
}
