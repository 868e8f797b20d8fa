package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/screening-service/internal/quiz"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// SessionRepository holds live screening sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *quiz.Session) error
	GetByID(ctx context.Context, id string) (*quiz.Session, error)
	// Delete removes the session and returns it so the caller can release it.
	Delete(ctx context.Context, id string) (*quiz.Session, error)

	// DeleteIdleBefore removes every session whose last activity is before cutoff.
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) ([]*quiz.Session, error)
	DeleteAll(ctx context.Context) ([]*quiz.Session, error)
	Count(ctx context.Context) (int, error)
}
