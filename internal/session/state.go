// session — жизненный цикл пользовательской сессии как явный конечный автомат.
//
// Состояния: Initializing -> Unauthenticated | Authenticated.
// Переходы выполняются только типизированными событиями через чистую
// функцию apply; прямой записи полей снапшота в пакете больше нигде нет.
// Единственный компонент, которому позволено менять состояние, — Controller.
package session

import "github.com/psikotes-app/go-client/internal/models"

// State — состояние автомата сессии.
type State int

const (
	// StateInitializing — восстановление сессии ещё не завершено.
	StateInitializing State = iota
	// StateUnauthenticated — пользователя и токенов нет.
	StateUnauthenticated
	// StateAuthenticated — пользователь и токены на месте.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot — неизменяемый срез состояния сессии, отдаваемый подписчикам.
type Snapshot struct {
	State  State
	User   *models.User
	Tokens *models.TokenPair
}

// IsLoading — сессия ещё восстанавливается.
func (s Snapshot) IsLoading() bool { return s.State == StateInitializing }

// IsAuthenticated — сессия активна.
func (s Snapshot) IsAuthenticated() bool { return s.State == StateAuthenticated }

// event — типизированное событие перехода.
type event interface{ isEvent() }

// evLoggedIn — успешный вход или восстановление сессии.
type evLoggedIn struct {
	user   *models.User
	tokens *models.TokenPair
}

// evLoggedOut — выход, провал восстановления или истечение сессии.
type evLoggedOut struct{}

// evTokensRefreshed — новая пара токенов в рамках той же сессии.
type evTokensRefreshed struct{ tokens *models.TokenPair }

// evUserUpdated — локальное обновление профиля без смены состояния.
type evUserUpdated struct{ user *models.User }

func (evLoggedIn) isEvent()        {}
func (evLoggedOut) isEvent()       {}
func (evTokensRefreshed) isEvent() {}
func (evUserUpdated) isEvent()     {}

// apply — чистая функция перехода. События, не имеющие смысла в текущем
// состоянии (refresh без сессии, update без пользователя), игнорируются:
// автомат никогда не оказывается в противоречивом снапшоте.
func apply(s Snapshot, ev event) Snapshot {
	switch ev := ev.(type) {
	case evLoggedIn:
		return Snapshot{State: StateAuthenticated, User: ev.user, Tokens: ev.tokens}
	case evLoggedOut:
		return Snapshot{State: StateUnauthenticated}
	case evTokensRefreshed:
		if s.State != StateAuthenticated {
			return s
		}

		s.Tokens = ev.tokens
		return s
	case evUserUpdated:
		if s.State != StateAuthenticated {
			return s
		}

		s.User = ev.user
		return s
	default:
		return s
	}
}
