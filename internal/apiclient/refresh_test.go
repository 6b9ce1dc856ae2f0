package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/psikotes-app/go-client/internal/models"
)

// authedMux — сервер, отдающий /data только с токеном goodAccess;
// /auth/refresh меняет refresh-токен на новую пару. Счётчики атомарны:
// тесты ниже крутят несколько запросов параллельно.
type authedMux struct {
	*http.ServeMux

	goodAccess   string
	refreshCalls atomic.Int32
	dataCalls    atomic.Int32
	refreshDelay time.Duration
	failRefresh  bool
	rejectData   bool
}

func newAuthedMux(goodAccess string) *authedMux {
	m := &authedMux{ServeMux: http.NewServeMux(), goodAccess: goodAccess}

	m.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		m.dataCalls.Add(1)

		if m.rejectData || r.Header.Get("Authorization") != "Bearer "+m.goodAccess {
			writeEnvelope(w, http.StatusUnauthorized, false, "unauthorized", nil)
			return
		}

		writeEnvelope(w, http.StatusOK, true, "ok", map[string]string{"value": "data"})
	})

	m.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		m.refreshCalls.Add(1)

		if m.refreshDelay > 0 {
			time.Sleep(m.refreshDelay)
		}

		if m.failRefresh {
			writeEnvelope(w, http.StatusUnauthorized, false, "refresh token revoked", nil)
			return
		}

		var in struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.RefreshToken == "" {
			writeEnvelope(w, http.StatusBadRequest, false, "missing refresh token", nil)
			return
		}

		writeEnvelope(w, http.StatusOK, true, "ok", models.TokenPair{
			AccessToken:  m.goodAccess,
			RefreshToken: "rotated-refresh",
			TokenType:    "Bearer",
			ExpiresIn:    3600,
			ExpiresAt:    time.Now().Add(time.Hour),
		})
	})

	return m
}

// TestRefresh_SingleFlight — два параллельных запроса ловят 401, но
// /auth/refresh вызывается ровно один раз, и оба запроса завершаются успешно.
func TestRefresh_SingleFlight(t *testing.T) {
	t.Parallel()

	mux := newAuthedMux("fresh-access")
	mux.refreshDelay = 100 * time.Millisecond

	c, store := newTestClient(t, mux)
	seedTokens(t, store, "stale-access", "valid-refresh")

	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Get(context.Background(), "/data", nil)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	require.Equal(t, int32(1), mux.refreshCalls.Load(), "ровно один refresh при параллельных 401")

	// Новая пара сохранена в хранилище.
	tp, err := store.Tokens(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tp)
	require.Equal(t, "fresh-access", tp.AccessToken)
	require.Equal(t, "rotated-refresh", tp.RefreshToken)
}

// TestRefresh_RetriedWithNewToken — после refresh повтор уходит уже
// с новым access-токеном, и каждый запрос повторяется один раз.
func TestRefresh_RetriedWithNewToken(t *testing.T) {
	t.Parallel()

	mux := newAuthedMux("fresh-access")

	c, store := newTestClient(t, mux)
	seedTokens(t, store, "stale-access", "valid-refresh")

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, c.Get(context.Background(), "/data", &out))
	require.Equal(t, "data", out.Value)

	// 401 + успешный повтор.
	require.Equal(t, int32(2), mux.dataCalls.Load())
	require.Equal(t, int32(1), mux.refreshCalls.Load())
}

// TestRefresh_Failure — терминальный отказ: оба ожидающих запроса падают,
// хранилище очищено, сигнал истечения сессии приходит ровно один раз.
func TestRefresh_Failure(t *testing.T) {
	t.Parallel()

	mux := newAuthedMux("fresh-access")
	mux.failRefresh = true
	mux.refreshDelay = 100 * time.Millisecond

	c, store := newTestClient(t, mux)
	seedTokens(t, store, "stale-access", "doomed-refresh")

	var expiredEvents atomic.Int32
	c.OnSessionExpired(func() { expiredEvents.Add(1) })

	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Get(context.Background(), "/data", nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		require.ErrorIs(t, err, ErrRefreshFailed)
	}

	require.Equal(t, int32(1), mux.refreshCalls.Load())
	require.Equal(t, int32(1), expiredEvents.Load(), "сигнал ровно один раз")

	tp, err := store.Tokens(context.Background())
	require.NoError(t, err)
	require.Nil(t, tp, "хранилище очищено")

	u, err := store.User(context.Background())
	require.NoError(t, err)
	require.Nil(t, u)
}

// TestRefresh_NoRefreshToken — refresh без сохранённого refresh-токена
// падает сразу, чистит хранилище и НЕ шлёт сигнал (сессии не было).
func TestRefresh_NoRefreshToken(t *testing.T) {
	t.Parallel()

	mux := newAuthedMux("fresh-access")

	c, store := newTestClient(t, mux)

	var expiredEvents atomic.Int32
	c.OnSessionExpired(func() { expiredEvents.Add(1) })

	err := c.Refresh(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNoRefreshToken)

	require.Equal(t, int32(0), mux.refreshCalls.Load(), "сеть не трогаем без refresh-токена")
	require.Equal(t, int32(0), expiredEvents.Load())

	tp, terr := store.Tokens(context.Background())
	require.NoError(t, terr)
	require.Nil(t, tp)
}

// TestRefresh_SecondUnauthorizedIsTerminal — повтор ограничен одним разом:
// если и после refresh приходит 401, он отдаётся вызывающему как ошибка,
// без бесконечного цикла.
func TestRefresh_SecondUnauthorizedIsTerminal(t *testing.T) {
	t.Parallel()

	// Сервер никогда не признаёт access-токен, а refresh «успешен».
	mux := newAuthedMux("fresh-access")
	mux.rejectData = true

	c, store := newTestClient(t, mux)
	seedTokens(t, store, "stale-access", "valid-refresh")

	var apiErr *APIError
	err := c.Get(context.Background(), "/data", nil)
	require.Error(t, err)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	require.Equal(t, int32(2), mux.dataCalls.Load(), "исходный запрос + ровно один повтор")
	require.Equal(t, int32(1), mux.refreshCalls.Load())
}

// TestRefresh_SequentialRefreshesAllowed — single-flight схлопывает только
// параллельные вызовы: последовательные refresh проходят каждый сам по себе.
func TestRefresh_SequentialRefreshesAllowed(t *testing.T) {
	t.Parallel()

	mux := newAuthedMux("fresh-access")

	c, store := newTestClient(t, mux)
	seedTokens(t, store, "stale", "r1")

	require.NoError(t, c.Refresh(context.Background()))
	require.NoError(t, c.Refresh(context.Background()))

	require.Equal(t, int32(2), mux.refreshCalls.Load())

	tp, err := store.Tokens(context.Background())
	require.NoError(t, err)
	require.Equal(t, "rotated-refresh", tp.RefreshToken)
}
