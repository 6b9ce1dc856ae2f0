package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/psikotes-app/go-client/internal/metrics"
	"github.com/psikotes-app/go-client/internal/models"
	"github.com/psikotes-app/go-client/internal/pkg/log"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh обновляет пару токенов через /auth/refresh.
//
// Инвариант single-flight: сколько бы запросов ни получили 401 параллельно,
// в полёте находится не более одного вызова /auth/refresh — остальные
// вызывающие ждут его результат и разделяют его. Так параллельные 401
// не порождают шторм обновлений.
func (c *Client) Refresh(ctx context.Context) error {
	_, err, _ := c.sf.Do("refresh", func() (any, error) {
		return nil, c.refresh(ctx)
	})

	return err
}

func (c *Client) refresh(ctx context.Context) error {
	const op = "apiclient.refresh.refresh"

	lg := log.From(ctx)

	tp, err := c.store.Tokens(ctx)
	if err != nil || tp == nil || tp.RefreshToken == "" {
		_ = c.store.Clear(ctx)
		metrics.RefreshTotal.WithLabelValues("no_token").Inc()
		lg.Warn("refresh_without_token", slog.String("op", op))

		return fmt.Errorf("%s: %w", op, ErrNoRefreshToken)
	}

	payload, err := json.Marshal(refreshRequest{RefreshToken: tp.RefreshToken})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Отдельный короткий таймаут: отказ refresh должен наступать быстро,
	// чтобы не держать все ожидающие запросы.
	status, raw, err := c.send(ctx, c.refreshHTTP, http.MethodPost, "/auth/refresh", payload, false)
	if err != nil {
		c.failRefresh(ctx, lg, op, err)
		return fmt.Errorf("%s: %w: %v", op, ErrRefreshFailed, err)
	}

	var fresh models.TokenPair
	if err := decode(status, raw, &fresh); err != nil {
		c.failRefresh(ctx, lg, op, err)
		return fmt.Errorf("%s: %w: %v", op, ErrRefreshFailed, err)
	}

	if fresh.AccessToken == "" || fresh.RefreshToken == "" {
		err := fmt.Errorf("incomplete token pair in response")
		c.failRefresh(ctx, lg, op, err)
		return fmt.Errorf("%s: %w: %v", op, ErrRefreshFailed, err)
	}

	if err := c.store.SaveTokens(ctx, &fresh); err != nil {
		c.failRefresh(ctx, lg, op, err)
		return fmt.Errorf("%s: %w: %v", op, ErrRefreshFailed, err)
	}

	metrics.RefreshTotal.WithLabelValues("ok").Inc()
	lg.Debug("token_refreshed",
		slog.String("op", op),
		slog.Time("expires_at", fresh.ExpiresAt),
	)

	return nil
}

// failRefresh — терминальный отказ: чистим хранилище и один раз уведомляем
// подписчиков. Благодаря single-flight сюда попадает только сам refresher,
// поэтому сигнал не дублируется.
func (c *Client) failRefresh(ctx context.Context, lg *slog.Logger, op string, cause error) {
	_ = c.store.Clear(ctx)
	metrics.RefreshTotal.WithLabelValues("failed").Inc()

	lg.Warn("refresh_failed",
		slog.String("op", op),
		slog.String("err", cause.Error()),
	)

	c.notifyExpired()
}
