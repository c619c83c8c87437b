package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"minihttp/internal/metrics"
	"minihttp/internal/request"
	"minihttp/internal/router"
	"minihttp/internal/server"
)

const (
	ADDR         = ":8080"
	METRICS_ADDR = ":9100"
	MAX_REQUEST  = request.DefaultMaxRequestSize
	READ_TIMEOUT = 30 * time.Second
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cfg := server.DefaultConfig()
	cfg.Addr = ADDR
	cfg.MaxRequestSize = MAX_REQUEST
	cfg.ReadTimeout = READ_TIMEOUT
	cfg.Logger = logger
	rt := router.New()
	cfg.Router = rt
	cfg.Metrics = metrics.New(reg)
	logger.Printf("routes: %s", strings.Join(rt.Paths(), " "))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSrv := &http.Server{
		Addr:              METRICS_ADDR,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx, cfg)
	})
	g.Go(func() error {
		logger.Printf("metrics listening on http://%s/metrics", METRICS_ADDR)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("Error running server: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
