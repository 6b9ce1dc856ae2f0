// metrics — счётчики Prometheus для исходящего HTTP-трафика клиента.
// Регистрация идёт в default-реестр; встраивающее приложение само решает,
// поднимать ли /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal — исходящие запросы по методу и классу результата.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "psikotes",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Outbound API requests by method and result code.",
	}, []string{"method", "code"})

	// RetriesTotal — повторы запросов после обновления токена.
	RetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "psikotes",
		Subsystem: "client",
		Name:      "auth_retries_total",
		Help:      "Requests replayed after a token refresh.",
	})

	// RefreshTotal — попытки обновления токена по результату.
	RefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "psikotes",
		Subsystem: "client",
		Name:      "token_refresh_total",
		Help:      "Token refresh attempts by result.",
	}, []string{"result"})
)
