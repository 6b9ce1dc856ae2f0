// apiclient — единственная точка исходящего HTTP-трафика к REST API платформы.
//
// Клиент подставляет bearer-токен из tokenstore в каждый запрос, разворачивает
// конверт {success, message, data, timestamp} и прозрачно обновляет пару
// токенов по реактивной схеме: refresh выполняется только в ответ на 401,
// строго в одном экземпляре (см. refresh.go), и каждый запрос повторяется
// после обновления не более одного раза.
//
// Ошибки:
//   - *APIError — прикладной отказ (success:false или не-2xx статус);
//   - ErrNoRefreshToken / ErrRefreshFailed — терминальные отказы refresh;
//   - прочие ошибки транспорта пробрасываются вызывающему без изменений.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"

	"github.com/psikotes-app/go-client/internal/config"
	"github.com/psikotes-app/go-client/internal/metrics"
	"github.com/psikotes-app/go-client/internal/tokenstore"
)

var (
	// ErrNoRefreshToken — refresh запрошен, а refresh-токена в хранилище нет.
	// Хранилище очищается, сигнал истечения сессии НЕ рассылается
	// (сессии и так не было, а рассылка зациклила бы logout).
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrRefreshFailed — /auth/refresh вернул отказ или не ответил.
	// Хранилище очищается, подписчики OnSessionExpired уведомляются один раз.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// APIError — прикладная ошибка API: success=false либо не-2xx ответ.
// Message — текст из конверта ответа, пригодный для показа пользователю.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// envelope — единый конверт ответов бэкенда.
type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

const (
	// maxResponseBytes — предохранитель от неограниченного тела ответа.
	maxResponseBytes = 10 << 20

	// transportRetries — число повторов при сетевых сбоях и 502/503/504.
	transportRetries = 2

	retryInitialInterval = 100 * time.Millisecond
)

// Client — HTTP-шлюз к API платформы. Безопасен для конкурентного
// использования из разных горутин.
type Client struct {
	baseURL     string
	userAgent   string
	http        *http.Client
	refreshHTTP *http.Client
	store       tokenstore.Store

	sf singleflight.Group

	mu        sync.Mutex
	onExpired []func()
}

// New создаёт клиент поверх хранилища токенов.
// BaseURL уже провалидирован при загрузке конфигурации.
func New(cfg config.APIConfig, store tokenstore.Store) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		http:        &http.Client{Timeout: cfg.RequestTimeout},
		refreshHTTP: &http.Client{Timeout: cfg.RefreshTimeout},
		store:       store,
	}
}

// OnSessionExpired регистрирует наблюдателя терминального отказа refresh.
// Замена браузерного глобального события: подписка явная, без globals.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onExpired = append(c.onExpired, fn)
}

func (c *Client) notifyExpired() {
	c.mu.Lock()
	handlers := make([]func(), len(c.onExpired))
	copy(handlers, c.onExpired)
	c.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

// Get выполняет GET и кладёт поле data конверта в out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

// do — общий путь запроса: отправка, реакция на 401, разбор конверта.
// Повтор после refresh структурно ограничен одним разом: второй 401
// возвращается вызывающему как терминальная прикладная ошибка.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	const op = "apiclient.client.do"

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		payload = b
	}

	status, raw, err := c.send(ctx, c.http, method, path, payload, true)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if status == http.StatusUnauthorized && c.refreshable(ctx) {
		if err := c.Refresh(ctx); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		metrics.RetriesTotal.Inc()

		status, raw, err = c.send(ctx, c.http, method, path, payload, true)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return decode(status, raw, out)
}

// refreshable — есть ли refresh-токен, ради которого стоит обновляться.
// 401 на запросе без сессии (неверные учётные данные при входе) — прикладной
// отказ: он уходит в decode, чтобы вызывающий получил текст из message,
// а не ErrNoRefreshToken.
func (c *Client) refreshable(ctx context.Context) bool {
	tp, err := c.store.Tokens(ctx)

	return err == nil && tp != nil && tp.RefreshToken != ""
}

// transient — статусы, при которых повтор с backoff уместен.
func transient(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// send отправляет один логический запрос с повторами на сетевых сбоях.
// Bearer-токен читается из хранилища перед КАЖДОЙ попыткой: после refresh
// повтор уходит уже с новым access-токеном.
func (c *Client) send(ctx context.Context, hc *http.Client, method, path string, payload []byte, auth bool) (int, []byte, error) {
	var (
		status int
		raw    []byte
	)

	attempt := func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		if auth {
			if tp, terr := c.store.Tokens(ctx); terr == nil && tp != nil && tp.AccessToken != "" {
				req.Header.Set("Authorization", "Bearer "+tp.AccessToken)
			}
		}

		resp, err := hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}

			return err
		}
		defer func() { _ = resp.Body.Close() }()

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return err
		}

		if transient(resp.StatusCode) {
			return fmt.Errorf("upstream status %d", resp.StatusCode)
		}

		status, raw = resp.StatusCode, b
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialInterval

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(bo, transportRetries), ctx))
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(method, "error").Inc()
		return 0, nil, err
	}

	metrics.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	return status, raw, nil
}

// decode разворачивает конверт. Ответ без success:true — прикладная ошибка,
// даже если транспортный статус был 200.
func decode(status int, raw []byte, out any) error {
	const op = "apiclient.client.decode"

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		msg := http.StatusText(status)
		if status >= 200 && status < 300 {
			msg = "malformed response body"
		}

		return &APIError{StatusCode: status, Message: msg}
	}

	if !env.Success || status < 200 || status >= 300 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(status)
		}

		return &APIError{StatusCode: status, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}
