package repository

import (
	"context"

	"github.com/aasfg1234/vote-system/internal/domain"
)

type MeetingRepository interface {
	// CreateIfUnderCap inserts the meeting only while fewer than max
	// non-terminated meetings are stored, atomically with the pin
	// collision check.
	CreateIfUnderCap(ctx context.Context, meeting *domain.Meeting, max int) error
	Get(ctx context.Context, pin string) (*domain.Meeting, error)
	Delete(ctx context.Context, pin string) error
	List(ctx context.Context) ([]*domain.Meeting, error)
}
