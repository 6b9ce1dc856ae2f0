package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/psikotes-app/go-client/internal/apiclient"
	"github.com/psikotes-app/go-client/internal/config"
	"github.com/psikotes-app/go-client/internal/models"
	"github.com/psikotes-app/go-client/internal/pkg/log"
	"github.com/psikotes-app/go-client/internal/pkg/redact"
	"github.com/psikotes-app/go-client/internal/tokenstore"
	"github.com/psikotes-app/go-client/internal/validate"
)

// ErrNotAuthenticated — операция требует активной сессии.
var ErrNotAuthenticated = errors.New("not authenticated")

type adminLoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type participantLoginRequest struct {
	Phone      string `json:"phone"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

type logoutRequest struct {
	AllDevices bool `json:"all_devices"`
}

type loginResponse struct {
	User   *models.User      `json:"user"`
	Tokens *models.TokenPair `json:"tokens"`
}

// Controller управляет жизненным циклом сессии. Все переходы автомата
// проходят через dispatch; снаружи состояние доступно только как Snapshot.
type Controller struct {
	api   *apiclient.Client
	store tokenstore.Store

	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	snap    Snapshot
	subs    map[int]chan Snapshot
	nextSub int
}

// New создаёт контроллер в состоянии Initializing и подписывает его
// на сигнал истечения сессии от API-клиента.
func New(api *apiclient.Client, store tokenstore.Store, cfg config.SessionConfig) *Controller {
	c := &Controller{
		api:      api,
		store:    store,
		interval: cfg.RefreshInterval,
		now:      time.Now,
		snap:     Snapshot{State: StateInitializing},
		subs:     make(map[int]chan Snapshot),
	}

	api.OnSessionExpired(c.handleExpired)

	return c
}

// Snapshot возвращает текущий срез состояния.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snap
}

// Subscribe возвращает канал снапшотов и функцию отписки.
// Канал буферизован; при переполнении снапшот отбрасывается — подписчик
// всегда может перечитать актуальное состояние через Snapshot().
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++

	ch := make(chan Snapshot, 8)
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// dispatch применяет событие и рассылает новый снапшот подписчикам.
func (c *Controller) dispatch(ev event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap = apply(c.snap, ev)

	for _, sub := range c.subs {
		select {
		case sub <- c.snap:
		default:
		}
	}
}

// Restore восстанавливает сессию из хранилища при старте.
//
// Порядок: нет токенов -> Unauthenticated; токены живы -> Authenticated
// и best-effort обновление профиля; токены истекли -> одна попытка refresh,
// по её результату Authenticated либо Unauthenticated с очисткой хранилища.
// Провал восстановления — не ошибка вызова: корректный переход в
// Unauthenticated, ошибку получает лог, а не вызывающий.
func (c *Controller) Restore(ctx context.Context) error {
	const op = "session.controller.Restore"

	lg := log.From(ctx)

	tp, err := c.store.Tokens(ctx)
	if err != nil {
		c.dispatch(evLoggedOut{})
		return fmt.Errorf("%s: %w", op, err)
	}

	if tp == nil {
		c.dispatch(evLoggedOut{})
		return nil
	}

	user, err := c.store.User(ctx)
	if err != nil {
		c.dispatch(evLoggedOut{})
		return fmt.Errorf("%s: %w", op, err)
	}

	if user == nil {
		// Профиль потерян, а токены целы: собираем минимальный профиль
		// из claims access-токена, /auth/me ниже его уточнит.
		user = userFromClaims(tp.AccessToken)
	}

	if !tokenstore.IsExpired(tp, c.now()) {
		c.completeRestore(ctx, tp, user)
		return nil
	}

	if err := c.api.Refresh(ctx); err != nil {
		_ = c.store.Clear(ctx)
		c.dispatch(evLoggedOut{})
		lg.Warn("session_restore_refresh_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return nil
	}

	tp, err = c.store.Tokens(ctx)
	if err != nil || tp == nil {
		c.dispatch(evLoggedOut{})
		return nil
	}

	c.completeRestore(ctx, tp, user)

	return nil
}

// completeRestore завершает восстановление сессии. Authenticated требует
// и токены, и пользователя: если профиль потерян и из claims не собрался,
// сессия держится только на ответе /auth/me — его отказ в этом случае
// означает провал восстановления, а не вход без пользователя.
func (c *Controller) completeRestore(ctx context.Context, tp *models.TokenPair, user *models.User) {
	const op = "session.controller.completeRestore"

	if user == nil {
		u, err := c.fetchProfile(ctx)
		if err != nil {
			_ = c.store.Clear(ctx)
			c.dispatch(evLoggedOut{})
			log.From(ctx).Warn("session_restore_no_profile",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)

			return
		}

		c.dispatch(evLoggedIn{user: u, tokens: tp})

		return
	}

	c.dispatch(evLoggedIn{user: user, tokens: tp})
	c.refreshProfile(ctx)
}

// userFromClaims — минимальный профиль из неверифицированных claims.
func userFromClaims(accessToken string) *models.User {
	claims, err := models.ParseAccessClaims(accessToken)
	if err != nil {
		return nil
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil
	}

	return &models.User{ID: id, Role: claims.Role, IsActive: true}
}

// fetchProfile запрашивает /auth/me и сохраняет профиль в хранилище.
func (c *Controller) fetchProfile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.api.Get(ctx, "/auth/me", &u); err != nil {
		return nil, err
	}

	_ = c.store.SaveUser(ctx, &u)

	return &u, nil
}

// refreshProfile — best-effort запрос /auth/me. Отказ не роняет сессию
// и не всплывает к вызывающему: максимум запись в лог.
func (c *Controller) refreshProfile(ctx context.Context) {
	const op = "session.controller.refreshProfile"

	u, err := c.fetchProfile(ctx)
	if err != nil {
		log.From(ctx).Warn("profile_refresh_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return
	}

	c.dispatch(evUserUpdated{user: u})
}

// LoginAdmin выполняет вход администратора по identifier+пароль.
// Ошибка валидации не доходит до сети; ошибка входа оставляет автомат
// в Unauthenticated и пробрасывается вызывающему для показа.
func (c *Controller) LoginAdmin(ctx context.Context, identifier, password string) error {
	const op = "session.controller.LoginAdmin"

	lg := log.From(ctx)

	ident, err := validate.AdminLogin(identifier, password)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var resp loginResponse
	if err := c.api.Post(ctx, "/auth/admin/login", adminLoginRequest{Identifier: ident, Password: password}, &resp); err != nil {
		lg.Warn("admin_login_failed",
			slog.String("op", op),
			slog.String("identifier", redact.Email(ident)),
			slog.String("err", err.Error()),
		)

		return fmt.Errorf("%s: %w", op, err)
	}

	return c.completeLogin(ctx, resp)
}

// LoginParticipant выполняет вход участника по номеру телефона.
func (c *Controller) LoginParticipant(ctx context.Context, phone string, rememberMe bool) error {
	const op = "session.controller.LoginParticipant"

	lg := log.From(ctx)

	normPhone, err := validate.ParticipantPhone(phone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var resp loginResponse
	if err := c.api.Post(ctx, "/auth/participant/login", participantLoginRequest{Phone: normPhone, RememberMe: rememberMe}, &resp); err != nil {
		lg.Warn("participant_login_failed",
			slog.String("op", op),
			slog.String("phone", redact.Phone(normPhone)),
			slog.String("err", err.Error()),
		)

		return fmt.Errorf("%s: %w", op, err)
	}

	return c.completeLogin(ctx, resp)
}

func (c *Controller) completeLogin(ctx context.Context, resp loginResponse) error {
	const op = "session.controller.completeLogin"

	if resp.User == nil || resp.Tokens == nil {
		return fmt.Errorf("%s: incomplete login response", op)
	}

	if err := c.store.SaveTokens(ctx, resp.Tokens); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.store.SaveUser(ctx, resp.User); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.dispatch(evLoggedIn{user: resp.User, tokens: resp.Tokens})

	log.From(ctx).Info("login_ok",
		slog.String("op", op),
		slog.String("role", string(resp.User.Role)),
	)

	return nil
}

// Logout завершает сессию. Серверный вызов — best-effort: его отказ
// пишется в лог и никогда не блокирует локальную очистку, поэтому метод
// не возвращает ошибку — итог всегда Unauthenticated с пустым хранилищем.
func (c *Controller) Logout(ctx context.Context, allDevices bool) {
	const op = "session.controller.Logout"

	lg := log.From(ctx)

	if c.Snapshot().IsAuthenticated() {
		if err := c.api.Post(ctx, "/auth/logout", logoutRequest{AllDevices: allDevices}, nil); err != nil {
			lg.Warn("server_logout_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	c.forceLogout(ctx)
	lg.Info("logout_ok", slog.String("op", op))
}

// forceLogout — локальная очистка без серверного вызова; идемпотентен.
func (c *Controller) forceLogout(ctx context.Context) {
	_ = c.store.Clear(ctx)
	c.dispatch(evLoggedOut{})
}

// handleExpired — реакция на терминальный отказ refresh в API-клиенте.
// Хранилище к этому моменту уже очищено клиентом; остаётся перевести автомат.
func (c *Controller) handleExpired() {
	c.forceLogout(context.Background())
}

// RefreshTokens — явный ручной refresh (в отличие от реактивного в клиенте).
// Семантика отказа та же: очистка состояния и переход в Unauthenticated.
func (c *Controller) RefreshTokens(ctx context.Context) error {
	const op = "session.controller.RefreshTokens"

	if !c.Snapshot().IsAuthenticated() {
		return fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	if err := c.api.Refresh(ctx); err != nil {
		c.forceLogout(ctx)
		return fmt.Errorf("%s: %w", op, err)
	}

	tp, err := c.store.Tokens(ctx)
	if err != nil || tp == nil {
		c.forceLogout(ctx)
		return fmt.Errorf("%s: token pair missing after refresh", op)
	}

	c.dispatch(evTokensRefreshed{tokens: tp})

	return nil
}

// UpdateUser — локальное слияние изменений профиля с записью в хранилище.
// Состояние автомата не меняется.
func (c *Controller) UpdateUser(ctx context.Context, upd models.UserUpdate) error {
	const op = "session.controller.UpdateUser"

	snap := c.Snapshot()
	if !snap.IsAuthenticated() || snap.User == nil {
		return fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	u := snap.User.Apply(upd)

	if err := c.store.SaveUser(ctx, &u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.dispatch(evUserUpdated{user: &u})

	return nil
}

// Run — фоновый цикл упреждающего refresh: раз в interval проверяет срок
// действия токена и при необходимости обновляет его. Ошибки только логируются.
// Блокируется до отмены ctx.
func (c *Controller) Run(ctx context.Context) {
	const op = "session.controller.Run"

	lg := log.From(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := c.Snapshot()
			if !snap.IsAuthenticated() {
				continue
			}

			// Реактивный refresh в API-клиенте обновляет хранилище, минуя
			// снапшот: срок действия читаем из хранилища, иначе тикер делал
			// бы лишний refresh поверх уже обновлённой пары.
			tp, err := c.store.Tokens(ctx)
			if err != nil || tp == nil {
				tp = snap.Tokens
			}

			if !tokenstore.IsExpired(tp, c.now()) {
				if snap.Tokens == nil || tp.AccessToken != snap.Tokens.AccessToken {
					c.dispatch(evTokensRefreshed{tokens: tp})
				}

				continue
			}

			if err := c.RefreshTokens(ctx); err != nil {
				lg.Warn("background_refresh_failed",
					slog.String("op", op),
					slog.String("err", err.Error()),
				)
			}
		}
	}
}

// HasRole — чистый предикат роли текущего пользователя.
func (c *Controller) HasRole(role models.Role) bool {
	snap := c.Snapshot()

	return snap.IsAuthenticated() && snap.User != nil && snap.User.Role == role
}

// CanAccess — предикат маршрутной защиты: без аргументов пропускает любого
// аутентифицированного пользователя, с аргументами — любого из ролей.
func (c *Controller) CanAccess(roles ...models.Role) bool {
	snap := c.Snapshot()
	if !snap.IsAuthenticated() || snap.User == nil {
		return false
	}

	if len(roles) == 0 {
		return true
	}

	for _, r := range roles {
		if snap.User.Role == r {
			return true
		}
	}

	return false
}
