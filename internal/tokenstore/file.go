package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/psikotes-app/go-client/internal/models"
)

// fileStore — файловое хранилище: по JSON-файлу на запись, права 0600.
// Каждая запись обёрнута конвертом со сроком хранения; просроченный
// конверт при чтении трактуется как отсутствующий и удаляется.
type fileStore struct {
	mu        sync.Mutex
	dir       string
	retention time.Duration
	now       func() time.Time
}

// envelope — конверт записи на диске.
type envelope struct {
	ExpiresAt time.Time       `json:"expires_at"`
	Value     json.RawMessage `json:"value"`
}

// NewFile создаёт файловое хранилище в директории dir.
// Пустой dir означает ~/.psikotes. retention <= 0 — DefaultRetention.
func NewFile(dir string, retention time.Duration) (Store, error) {
	const op = "tokenstore.file.NewFile"

	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		dir = filepath.Join(home, ".psikotes")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if retention <= 0 {
		retention = DefaultRetention
	}

	return &fileStore{dir: dir, retention: retention, now: time.Now}, nil
}

func (s *fileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// read — fail-soft чтение записи: нет файла, битый JSON или истёкший
// конверт дают (nil, nil).
func (s *fileStore) read(key string) (json.RawMessage, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil
	}

	if env.ExpiresAt.IsZero() || !s.now().Before(env.ExpiresAt) {
		_ = os.Remove(s.path(key))
		return nil, nil
	}

	return env.Value, nil
}

func (s *fileStore) write(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	env := envelope{
		ExpiresAt: s.now().Add(s.retention),
		Value:     raw,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	// Пишем во временный файл и переименовываем: замена атомарна.
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, s.path(key))
}

func (s *fileStore) Tokens(_ context.Context) (*models.TokenPair, error) {
	const op = "tokenstore.file.Tokens"

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.read(keyTokens)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if raw == nil {
		return nil, nil
	}

	var tp models.TokenPair
	if err := json.Unmarshal(raw, &tp); err != nil {
		return nil, nil
	}

	return &tp, nil
}

func (s *fileStore) SaveTokens(_ context.Context, tp *models.TokenPair) error {
	const op = "tokenstore.file.SaveTokens"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(keyTokens, tp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *fileStore) User(_ context.Context) (*models.User, error) {
	const op = "tokenstore.file.User"

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.read(keyUser)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if raw == nil {
		return nil, nil
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, nil
	}

	return &u, nil
}

func (s *fileStore) SaveUser(_ context.Context, u *models.User) error {
	const op = "tokenstore.file.SaveUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(keyUser, u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *fileStore) Clear(_ context.Context) error {
	const op = "tokenstore.file.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{keyTokens, keyUser} {
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}
