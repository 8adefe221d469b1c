package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ideaboard/internal/domain"
)

type voteKey struct {
	ideaID string
	userID string
}

// MemoryStore keeps ideas, users and votes in process memory. It satisfies
// VoteStore and IdeaRepository directly and UserRepository through Users().
// It backs the service when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	ideas    map[string]domain.Idea
	users    map[string]domain.User
	byGoogle map[string]string
	votes    map[voteKey]time.Time
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ideas:    make(map[string]domain.Idea),
		users:    make(map[string]domain.User),
		byGoogle: make(map[string]string),
		votes:    make(map[voteKey]time.Time),
		now:      time.Now,
	}
}

// AddIdea stores an idea, assigning an id and timestamps when missing
func (s *MemoryStore) AddIdea(idea domain.Idea) domain.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = s.now()
	}
	if idea.UpdatedAt.IsZero() {
		idea.UpdatedAt = idea.CreatedAt
	}
	s.ideas[idea.ID] = idea
	return idea
}

func (s *MemoryStore) Exists(_ context.Context, ideaID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.votes[voteKey{ideaID, userID}]
	return ok, nil
}

func (s *MemoryStore) Create(_ context.Context, ideaID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ideas[ideaID]; !ok {
		return domain.ErrIdeaNotFound
	}
	key := voteKey{ideaID, userID}
	if _, ok := s.votes[key]; ok {
		return domain.ErrDuplicateVote
	}
	s.votes[key] = s.now()
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, ideaID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey{ideaID, userID}
	if _, ok := s.votes[key]; !ok {
		return domain.ErrVoteNotFound
	}
	delete(s.votes, key)
	return nil
}

func (s *MemoryStore) CountFor(_ context.Context, ideaID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for key := range s.votes {
		if key.ideaID == ideaID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) List(_ context.Context, filter domain.IdeaFilter) ([]domain.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ideas := make([]domain.Idea, 0, len(s.ideas))
	for _, idea := range s.ideas {
		if filter.CategoryID > 0 && idea.CategoryID != filter.CategoryID {
			continue
		}
		if filter.StatusID > 0 && idea.StatusID != filter.StatusID {
			continue
		}
		ideas = append(ideas, idea)
	}

	sort.Slice(ideas, func(i, j int) bool {
		if ideas[i].CreatedAt.Equal(ideas[j].CreatedAt) {
			return ideas[i].ID < ideas[j].ID
		}
		return ideas[i].CreatedAt.After(ideas[j].CreatedAt)
	})
	return ideas, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*domain.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idea, ok := s.ideas[id]
	if !ok {
		return nil, domain.ErrIdeaNotFound
	}
	return &idea, nil
}

// Categories lists the categories referenced by stored ideas
func (s *MemoryStore) Categories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int]domain.Category)
	for _, idea := range s.ideas {
		seen[idea.CategoryID] = domain.Category{ID: idea.CategoryID, Name: idea.CategoryName}
	}

	categories := make([]domain.Category, 0, len(seen))
	for _, c := range seen {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// Statuses lists the statuses referenced by stored ideas
func (s *MemoryStore) Statuses(_ context.Context) ([]domain.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int]domain.Status)
	for _, idea := range s.ideas {
		seen[idea.StatusID] = domain.Status{ID: idea.StatusID, Name: idea.StatusName, Class: idea.StatusClass}
	}

	statuses := make([]domain.Status, 0, len(seen))
	for _, st := range seen {
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].ID < statuses[j].ID })
	return statuses, nil
}

func (s *MemoryStore) UpsertByGoogleID(_ context.Context, profile domain.GoogleProfile) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if id, ok := s.byGoogle[profile.Sub]; ok {
		user := s.users[id]
		user.Email = profile.Email
		user.Name = profile.Name
		user.AvatarURL = profile.Picture
		user.UpdatedAt = now
		s.users[id] = user
		return &user, nil
	}

	user := domain.User{
		ID:        uuid.NewString(),
		GoogleID:  profile.Sub,
		Email:     profile.Email,
		Name:      profile.Name,
		AvatarURL: profile.Picture,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[user.ID] = user
	s.byGoogle[profile.Sub] = user.ID
	return &user, nil
}

// GetUser is GetByID for users; the idea lookup owns the GetByID name.
func (s *MemoryStore) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// Users adapts the store to UserRepository
func (s *MemoryStore) Users() UserRepository {
	return memoryUsers{s}
}

type memoryUsers struct {
	s *MemoryStore
}

func (m memoryUsers) UpsertByGoogleID(ctx context.Context, profile domain.GoogleProfile) (*domain.User, error) {
	return m.s.UpsertByGoogleID(ctx, profile)
}

func (m memoryUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return m.s.GetUser(ctx, id)
}
