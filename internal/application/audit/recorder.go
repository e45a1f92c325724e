// Package audit records manager assignment attempts independently of the
// transaction that performs the assignment.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/expertteam/expert/internal/domain"
)

// Repository persists manager logs.
// Implementations must commit each log on its own, outside any caller transaction.
type Repository interface {
	CreateManagerLog(ctx context.Context, log *domain.ManagerLog) error
	ListManagerLogs(ctx context.Context, todoID string) ([]domain.ManagerLog, error)
}

// Recorder writes manager assignment logs.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a new audit recorder.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// RecordSuccess logs a successful assignment.
func (r *Recorder) RecordSuccess(ctx context.Context, todoID, requestUserID, managerUserID string) error {
	entry, err := newManagerLog(todoID, requestUserID, managerUserID, domain.ManagerLogSuccess, nil)
	if err != nil {
		return err
	}
	if err := r.repo.CreateManagerLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to save manager log: %w", err)
	}

	slog.InfoContext(ctx, "manager assignment recorded",
		"todo_id", todoID,
		"request_user_id", requestUserID,
		"manager_user_id", managerUserID,
		"status", string(domain.ManagerLogSuccess))
	return nil
}

// RecordFailure logs a failed assignment with the cause truncated to the storable length.
func (r *Recorder) RecordFailure(ctx context.Context, todoID, requestUserID, managerUserID string, cause error) error {
	var msg *string
	if cause != nil {
		m := truncate(cause.Error(), domain.MaxManagerLogMessageLength)
		msg = &m
	}

	entry, err := newManagerLog(todoID, requestUserID, managerUserID, domain.ManagerLogFailure, msg)
	if err != nil {
		return err
	}
	if err := r.repo.CreateManagerLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to save manager log: %w", err)
	}

	slog.InfoContext(ctx, "manager assignment failure recorded",
		"todo_id", todoID,
		"request_user_id", requestUserID,
		"manager_user_id", managerUserID,
		"status", string(domain.ManagerLogFailure),
		"error", cause)
	return nil
}

// ManagerLogs returns every recorded assignment attempt on a todo, oldest first.
func (r *Recorder) ManagerLogs(ctx context.Context, todoID string) ([]domain.ManagerLog, error) {
	logs, err := r.repo.ListManagerLogs(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.ManagerLog{}
	}
	return logs, nil
}

func newManagerLog(todoID, requestUserID, managerUserID string, status domain.ManagerLogStatus, msg *string) (*domain.ManagerLog, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}
	return &domain.ManagerLog{
		ID:            id.String(),
		TodoID:        todoID,
		RequestUserID: requestUserID,
		ManagerUserID: managerUserID,
		Status:        status,
		ErrorMessage:  msg,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
