package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Вспомогательные хелперы.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

// Полный корректный YAML с заданными значениями (не зависящими от дефолтов).
const sampleYAML = `
env: "prod"
api:
  base_url: "https://api.psikotes.example"
  request_timeout: "20s"
  refresh_timeout: "5s"
session:
  refresh_interval: "5m"
store:
  backend: "file"
  path: "/tmp/psikotes-test"
  retention: "24h"
`

// Минимально валидный YAML (только обязательные поля).
const minimalYAML = `
api:
  base_url: "http://localhost:8080"
`

func TestLoad_ExplicitPath_FullYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "https://api.psikotes.example", cfg.API.BaseURL)
	require.Equal(t, 20*time.Second, cfg.API.RequestTimeout)
	require.Equal(t, 5*time.Second, cfg.API.RefreshTimeout)
	require.Equal(t, 5*time.Minute, cfg.Session.RefreshInterval)
	require.Equal(t, "file", cfg.Store.Backend)
	require.Equal(t, 24*time.Hour, cfg.Store.Retention)
}

func TestLoad_Defaults_FromMinimalYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", minimalYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "local", cfg.Env)
	require.Equal(t, 30*time.Second, cfg.API.RequestTimeout)
	require.Equal(t, 10*time.Second, cfg.API.RefreshTimeout)
	require.Equal(t, 10*time.Minute, cfg.Session.RefreshInterval)
	require.Equal(t, "file", cfg.Store.Backend)
	require.Equal(t, 168*time.Hour, cfg.Store.Retention)
}

// TestLoad_EnvOverlay — ENV накладывается поверх YAML.
func TestLoad_EnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", minimalYAML)

	t.Setenv("API_BASE_URL", "https://override.example")
	t.Setenv("SESSION_REFRESH_INTERVAL", "1m")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://override.example", cfg.API.BaseURL)
	require.Equal(t, time.Minute, cfg.Session.RefreshInterval)
}

// TestLoad_MissingBaseURL — без API_BASE_URL загрузка падает сразу.
func TestLoad_MissingBaseURL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", "env: local\n")

	_, err := Load(path)
	require.Error(t, err)
}

// TestLoad_InvalidBaseURL — значение есть, но это не абсолютный http(s)-URL.
func TestLoad_InvalidBaseURL(t *testing.T) {
	dir := t.TempDir()

	for _, bad := range []string{"not-a-url", "ftp://x.example", "/relative/path"} {
		path := writeFile(t, dir, "cfg.yaml", "api:\n  base_url: \""+bad+"\"\n")

		_, err := Load(path)
		require.Error(t, err, "ожидали ошибку для %q", bad)
		require.Contains(t, err.Error(), "API_BASE_URL")
	}
}

func TestLoad_RedisBackend_RequiresURL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", `
api:
  base_url: "http://localhost:8080"
store:
  backend: "redis"
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "AUTH_STORE_REDIS_URL")
}

func TestLoad_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", `
api:
  base_url: "http://localhost:8080"
store:
  backend: "cookie"
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	require.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
