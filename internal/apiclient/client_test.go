package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/psikotes-app/go-client/internal/config"
	"github.com/psikotes-app/go-client/internal/models"
	"github.com/psikotes-app/go-client/internal/tokenstore"
)

// Хелперы: клиент поверх httptest-сервера и in-memory хранилища.

func testAPIConfig(baseURL string) config.APIConfig {
	return config.APIConfig{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
		RefreshTimeout: 2 * time.Second,
		UserAgent:      "unit-test",
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, tokenstore.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := tokenstore.NewMemory()
	return New(testAPIConfig(srv.URL), store), store
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":   success,
		"message":   message,
		"data":      raw,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func seedTokens(t *testing.T, store tokenstore.Store, access, refresh string) {
	t.Helper()

	require.NoError(t, store.SaveTokens(context.Background(), &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    3600,
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
}

func TestClient_Get_UnwrapsEnvelope(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "unit-test", r.Header.Get("User-Agent"))
		writeEnvelope(w, http.StatusOK, true, "ok", map[string]string{"value": "pong"})
	})

	c, _ := newTestClient(t, mux)

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, c.Get(context.Background(), "/ping", &out))
	require.Equal(t, "pong", out.Value)
}

// TestClient_BearerInjected — при наличии токенов каждый запрос уходит
// с заголовком Authorization.
func TestClient_BearerInjected(t *testing.T) {
	t.Parallel()

	var gotAuth atomic.Value

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, true, "ok", nil)
	})

	c, store := newTestClient(t, mux)
	seedTokens(t, store, "access-1", "refresh-1")

	require.NoError(t, c.Get(context.Background(), "/ping", nil))
	require.Equal(t, "Bearer access-1", gotAuth.Load())
}

// TestClient_SuccessFalse_IsApplicationError — success:false при транспортном
// 200 всё равно прикладная ошибка с текстом из message.
func TestClient_SuccessFalse_IsApplicationError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/thing", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, false, "quota exceeded", nil)
	})

	c, _ := newTestClient(t, mux)

	err := c.Get(context.Background(), "/thing", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "quota exceeded", apiErr.Message)
	require.Equal(t, http.StatusOK, apiErr.StatusCode)
}

func TestClient_NotFound_MapsToAPIError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/absent", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusNotFound, false, "not found", nil)
	})

	c, _ := newTestClient(t, mux)

	var apiErr *APIError
	err := c.Get(context.Background(), "/absent", nil)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

// TestClient_Unauthorized_WithoutSession — 401 на запросе без refresh-токена
// (отказ входа при пустом хранилище) не уходит в refresh: вызывающий получает
// *APIError с текстом сервера, /auth/refresh не вызывается.
func TestClient_Unauthorized_WithoutSession(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		writeEnvelope(w, http.StatusUnauthorized, false, "no session", nil)
	})
	mux.HandleFunc("/auth/admin/login", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, "invalid credentials", nil)
	})

	c, _ := newTestClient(t, mux)

	err := c.Post(context.Background(), "/auth/admin/login", map[string]string{"identifier": "a@b.com", "password": "x"}, nil)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoRefreshToken)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "invalid credentials", apiErr.Message)

	require.Equal(t, int32(0), refreshCalls.Load())
}

// TestClient_TransientRetry — 503 повторяется с backoff; после восстановления
// запрос завершается успешно.
func TestClient_TransientRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/flaky", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		writeEnvelope(w, http.StatusOK, true, "ok", nil)
	})

	c, _ := newTestClient(t, mux)

	require.NoError(t, c.Get(context.Background(), "/flaky", nil))
	require.Equal(t, int32(2), calls.Load())
}

func TestClient_Post_SendsJSONBody(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeEnvelope(w, http.StatusOK, true, "ok", in)
	})

	c, _ := newTestClient(t, mux)

	var out map[string]string
	require.NoError(t, c.Post(context.Background(), "/echo", map[string]string{"k": "v"}, &out))
	require.Equal(t, "v", out["k"])
}

// TestClient_MalformedBody — не-JSON тело на 2xx отражается как прикладная ошибка.
func TestClient_MalformedBody(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>nope</html>"))
	})

	c, _ := newTestClient(t, mux)

	var apiErr *APIError
	err := c.Get(context.Background(), "/garbage", nil)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "malformed response body", apiErr.Message)
}
