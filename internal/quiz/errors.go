package quiz

import "errors"

var (
	// ErrNotFound indicates the quiz (or result) does not exist.
	ErrNotFound = errors.New("quiz not found")
	// ErrExists indicates a create collided with an existing quiz id.
	ErrExists = errors.New("quiz with this id already exists")
	// ErrForbidden is an access-gate denial.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalid wraps validation failures; the message carries the reason.
	ErrInvalid = errors.New("invalid quiz")
	// ErrNoQuestions guards the scoring division. Creation validation keeps
	// playable quizzes from ever hitting it.
	ErrNoQuestions = errors.New("quiz has no questions")
)
