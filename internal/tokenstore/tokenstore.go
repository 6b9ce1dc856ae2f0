// tokenstore — локальное хранилище учётных данных сессии.
//
// Хранилище — единственный источник истины по токенам: и API-клиент,
// и контроллер сессии работают с ним только через интерфейс Store,
// прямого доступа к носителю (файл/Redis) больше нигде нет.
//
// Контракт чтения — fail-soft: отсутствующая или повреждённая запись
// возвращает (nil, nil), а не ошибку. Ошибка означает отказ носителя
// (например, недоступный Redis).
package tokenstore

import (
	"context"
	"time"

	"github.com/psikotes-app/go-client/internal/models"
)

const (
	// keyTokens и keyUser — имена записей в носителе.
	keyTokens = "auth_tokens"
	keyUser   = "auth_user"

	// ExpirySkew — страховой зазор: токен считается истёкшим за 60 секунд
	// до фактического expires_at, чтобы не отправлять запросы с токеном,
	// который умрёт в полёте.
	ExpirySkew = 60 * time.Second

	// DefaultRetention — срок хранения записей (7 суток).
	DefaultRetention = 7 * 24 * time.Hour
)

//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks github.com/psikotes-app/go-client/internal/tokenstore Store

// Store — контракт хранилища токенов и профиля.
type Store interface {
	// Tokens возвращает сохранённую пару или (nil, nil), если её нет.
	Tokens(ctx context.Context) (*models.TokenPair, error)
	// SaveTokens атомарно заменяет пару целиком.
	SaveTokens(ctx context.Context, tp *models.TokenPair) error
	// User возвращает сохранённый профиль или (nil, nil).
	User(ctx context.Context) (*models.User, error)
	// SaveUser заменяет сохранённый профиль.
	SaveUser(ctx context.Context, u *models.User) error
	// Clear удаляет обе записи; идемпотентен.
	Clear(ctx context.Context) error
}

// IsExpired — чистая проверка срока действия access-токена.
// true, если now >= ExpiresAt-ExpirySkew; отсутствие ExpiresAt
// трактуется как «истёк». Никаких побочных эффектов и сети.
func IsExpired(tp *models.TokenPair, now time.Time) bool {
	if tp == nil || tp.ExpiresAt.IsZero() {
		return true
	}

	return !now.Before(tp.ExpiresAt.Add(-ExpirySkew))
}
