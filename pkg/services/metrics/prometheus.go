package metrics

import (
	"net/http"

	"github.com/nspcc-dev/dagnotify/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewPrometheusService creates a new service exporting notifier and RPC
// server metrics registered in the default registry, they're served at
// /metrics (https://prometheus.io/docs/guides/go-application).
func NewPrometheusService(cfg config.BasicService, log *zap.Logger) *Service {
	if log == nil {
		return nil
	}

	handler := http.NewServeMux()
	handler.Handle("/metrics", promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			ErrorLog:      zap.NewStdLog(log),
			ErrorHandling: promhttp.ContinueOnError,
		}),
	))
	return NewService("Prometheus", newServers(cfg, handler), cfg, log)
}
