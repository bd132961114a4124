package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/aasfg1234/vote-system/internal/domain"
)

var (
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrPinExists       = errors.New("meeting pin already exists")
	ErrCapacityReached = errors.New("meeting capacity reached")
)

// InMemoryMeetingRepository is the authoritative store: meetings live
// only in this process and are keyed by their 4-digit pin. Terminated
// meetings stay tracked until their deferred deletion, so pin collision
// checks cover them too.
type InMemoryMeetingRepository struct {
	mu       sync.RWMutex
	meetings map[string]*domain.Meeting
}

func NewInMemoryMeetingRepository() *InMemoryMeetingRepository {
	return &InMemoryMeetingRepository{
		meetings: make(map[string]*domain.Meeting),
	}
}

func (r *InMemoryMeetingRepository) CreateIfUnderCap(ctx context.Context, meeting *domain.Meeting, max int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.countActiveLocked() >= max {
		return ErrCapacityReached
	}
	if _, ok := r.meetings[meeting.Pin]; ok {
		return ErrPinExists
	}

	r.meetings[meeting.Pin] = meeting
	return nil
}

func (r *InMemoryMeetingRepository) Get(ctx context.Context, pin string) (*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	meeting, ok := r.meetings[pin]
	if !ok {
		return nil, ErrMeetingNotFound
	}

	return meeting, nil
}

func (r *InMemoryMeetingRepository) Delete(ctx context.Context, pin string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.meetings[pin]; !ok {
		return ErrMeetingNotFound
	}

	delete(r.meetings, pin)
	return nil
}

func (r *InMemoryMeetingRepository) List(ctx context.Context) ([]*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Meeting, 0, len(r.meetings))
	for _, meeting := range r.meetings {
		result = append(result, meeting)
	}
	return result, nil
}

// countActiveLocked counts non-terminated meetings. Terminated ones are
// excluded so meetings awaiting deferred deletion do not hold capacity.
// Caller holds r.mu.
func (r *InMemoryMeetingRepository) countActiveLocked() int {
	count := 0
	for _, meeting := range r.meetings {
		meeting.Mutex.RLock()
		terminated := meeting.Status == domain.StatusTerminated
		meeting.Mutex.RUnlock()
		if !terminated {
			count++
		}
	}
	return count
}
