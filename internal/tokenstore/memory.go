package tokenstore

import (
	"context"
	"sync"

	"github.com/psikotes-app/go-client/internal/models"
)

// memoryStore — хранилище в памяти без срока хранения.
// Используется в тестах и в сценариях «не запоминать меня».
type memoryStore struct {
	mu     sync.Mutex
	tokens *models.TokenPair
	user   *models.User
}

// NewMemory создаёт пустое in-memory хранилище.
func NewMemory() Store {
	return &memoryStore{}
}

func (s *memoryStore) Tokens(_ context.Context) (*models.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokens == nil {
		return nil, nil
	}

	tp := *s.tokens
	return &tp, nil
}

func (s *memoryStore) SaveTokens(_ context.Context, tp *models.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *tp
	s.tokens = &cp
	return nil
}

func (s *memoryStore) User(_ context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil, nil
	}

	u := *s.user
	return &u, nil
}

func (s *memoryStore) SaveUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *u
	s.user = &cp
	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = nil
	s.user = nil
	return nil
}
