package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	authdomain "github.com/eskrenkovic/tictactoe-go/internal/modules/auth/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/game/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/storage"
)

var _ storage.EventStore = (*EventStore)(nil)

// EventStore keeps session records in a map keyed by id. It reads from the
// user store to answer AvailableOpponents.
type EventStore struct {
	mu     sync.RWMutex
	users  *UserStore
	events map[int64]domain.Event
	nextID int64
}

func NewEventStore(users *UserStore) *EventStore {
	return &EventStore{
		users:  users,
		events: make(map[int64]domain.Event),
	}
}

func (s *EventStore) Get(ctx context.Context, id int64) (domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return domain.Event{}, fmt.Errorf("event %d: %w", id, storage.ErrNotFound)
	}

	return event, nil
}

func (s *EventStore) Create(ctx context.Context, event domain.Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	event.ID = s.nextID
	event.CreatedAt = time.Now().UTC()
	s.events[event.ID] = event

	return event.ID, nil
}

func (s *EventStore) Update(ctx context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; !ok {
		return fmt.Errorf("event %d: %w", event.ID, storage.ErrNotFound)
	}

	s.events[event.ID] = event
	return nil
}

func (s *EventStore) InvitationFor(ctx context.Context, username string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *domain.Event
	for id := range s.events {
		event := s.events[id]
		if event.Status != domain.StatusPending || event.Opponent != username {
			continue
		}

		if newest == nil || event.ID > newest.ID {
			newest = &event
		}
	}

	return newest, nil
}

func (s *EventStore) InvitationResponseFor(ctx context.Context, username string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *domain.Event
	for id := range s.events {
		event := s.events[id]
		answered := event.Status == domain.StatusAccepted || event.Status == domain.StatusDeclined
		if !answered || event.Sender != username {
			continue
		}

		if newest == nil || event.ID > newest.ID {
			newest = &event
		}
	}

	return newest, nil
}

func (s *EventStore) HasActiveGame(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, event := range s.events {
		active := event.Status == domain.StatusAccepted || event.Status == domain.StatusPlaying
		if active && event.Participant(username) {
			return true, nil
		}
	}

	return false, nil
}

func (s *EventStore) AvailableOpponents(ctx context.Context, username string) ([]authdomain.User, error) {
	s.mu.RLock()
	engaged := make(map[string]struct{})
	for _, event := range s.events {
		if event.Live() {
			engaged[event.Sender] = struct{}{}
			engaged[event.Opponent] = struct{}{}
		}
	}
	s.mu.RUnlock()

	available := make([]authdomain.User, 0)
	for _, user := range s.users.all() {
		if !user.Online || user.Username == username {
			continue
		}

		if _, ok := engaged[user.Username]; ok {
			continue
		}

		available = append(available, user)
	}

	sort.Slice(available, func(i, j int) bool {
		return available[i].Username < available[j].Username
	})

	return available, nil
}

func (s *EventStore) ActiveGameFor(ctx context.Context, username string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *domain.Event
	for id := range s.events {
		event := s.events[id]
		if event.Status != domain.StatusPlaying || !event.Participant(username) {
			continue
		}

		if newest == nil || event.ID > newest.ID {
			newest = &event
		}
	}

	return newest, nil
}

func (s *EventStore) Promote(ctx context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; !ok {
		return fmt.Errorf("event %d: %w", event.ID, storage.ErrNotFound)
	}

	// Both writes happen under the same lock hold, so no reader sees the
	// siblings aborted without the promoted event's new status.
	for id, sibling := range s.events {
		if id == event.ID || !sibling.Live() || !sibling.Participant(event.Sender) {
			continue
		}

		sibling.Status = domain.StatusAborted
		s.events[id] = sibling
	}

	s.events[event.ID] = event
	return nil
}
