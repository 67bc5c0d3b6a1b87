package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iyhunko/product-list-sync/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer builds the metrics HTTP server serving the /metrics endpoint.
func NewServer(conf *config.Config) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              ":" + conf.MetricsServer.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// StartMetricsServer runs the metrics server in a goroutine and shuts it down when ctx is done.
func StartMetricsServer(ctx context.Context, conf *config.Config) {
	srv := NewServer(conf)
	go func() {
		slog.Info("Metrics server starting", slog.String("port", conf.MetricsServer.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", slog.Any("err", err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
