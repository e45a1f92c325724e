package domain

import "time"

// Todo is a task owned by a single user.
type Todo struct {
	ID         string
	Title      string
	Contents   string
	Weather    string
	UserID     string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// TodoWithOwner is a todo joined with its owner's public profile.
type TodoWithOwner struct {
	Todo
	Owner UserSummary
}

// Manager assigns a user as a collaborator on a todo.
type Manager struct {
	ID        string
	TodoID    string
	UserID    string
	CreatedAt time.Time
}

// ManagerWithUser is a manager assignment joined with the manager's public profile.
type ManagerWithUser struct {
	Manager
	User UserSummary
}

// Comment is a note attached to a todo by a user.
type Comment struct {
	ID         string
	TodoID     string
	UserID     string
	Contents   string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// CommentWithAuthor is a comment joined with its author's public profile.
type CommentWithAuthor struct {
	Comment
	Author UserSummary
}

// ManagerLogStatus is the outcome of a manager assignment attempt.
type ManagerLogStatus string

const (
	ManagerLogSuccess ManagerLogStatus = "SUCCESS"
	ManagerLogFailure ManagerLogStatus = "FAILURE"
)

// MaxManagerLogMessageLength bounds the stored failure message.
const MaxManagerLogMessageLength = 500

// ManagerLog records one manager assignment attempt, successful or not.
type ManagerLog struct {
	ID            string
	TodoID        string
	RequestUserID string
	ManagerUserID string
	Status        ManagerLogStatus
	ErrorMessage  *string
	CreatedAt     time.Time
}
