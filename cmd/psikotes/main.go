// psikotes — консольный клиент платформы психометрического тестирования:
// вход администратора/участника, управление сессией, ресурсные операции.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/psikotes-app/go-client/internal/apiclient"
	"github.com/psikotes-app/go-client/internal/config"
	logctx "github.com/psikotes-app/go-client/internal/pkg/log"
	"github.com/psikotes-app/go-client/internal/service"
	"github.com/psikotes-app/go-client/internal/session"
	"github.com/psikotes-app/go-client/internal/tokenstore"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "psikotes",
		Short:         "Command-line client for the psikotes testing platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		refreshCmd(),
		tokenCmd(),
		sessionsCmd(),
		testsCmd(),
		usersCmd(),
		analyticsCmd(),
		dashboardCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app — собранные компоненты клиента c восстановленной сессией.
type app struct {
	cfg   *config.Config
	store tokenstore.Store
	ctrl  *session.Controller
	svc   *service.Service
}

// newApp загружает конфигурацию, собирает хранилище/клиент/контроллер
// и восстанавливает сессию из хранилища.
func newApp(ctx context.Context) (*app, context.Context, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, ctx, err
	}

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	ctx = logctx.Into(ctx, log)

	var store tokenstore.Store
	switch cfg.Store.Backend {
	case "redis":
		store, err = tokenstore.NewRedis(cfg.Store.RedisURL, "", cfg.Store.Retention)
	default:
		store, err = tokenstore.NewFile(cfg.Store.Path, cfg.Store.Retention)
	}
	if err != nil {
		return nil, ctx, err
	}

	api := apiclient.New(cfg.API, store)
	ctrl := session.New(api, store, cfg.Session)

	if err := ctrl.Restore(ctx); err != nil {
		log.Warn("session_restore_failed", slog.String("err", err.Error()))
	}

	return &app{
		cfg:   cfg,
		store: store,
		ctrl:  ctrl,
		svc:   service.New(api),
	}, ctx, nil
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// printJSON — единый вывод результата команды.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
