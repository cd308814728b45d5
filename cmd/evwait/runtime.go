package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/capatazlib/go-evassert/internal/config"
	"github.com/capatazlib/go-evassert/internal/ev"
)

// runtime holds the dependencies shared by every command
type runtime struct {
	cfg      config.Config
	logger   logrus.FieldLogger
	registry *prometheus.Registry
	acq      *ev.Acquirer
	server   *http.Server
}

// loadConfig reads the configuration file, the environment and the global
// flags, in that order of precedence (flags win)
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}
	if err := config.FromEnv(&cfg); err != nil {
		return config.Config{}, err
	}
	if c.IsSet("timeout") {
		cfg.Timeout = config.Duration(c.Duration("timeout"))
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if c.IsSet("metrics-addr") {
		cfg.MetricsAddr = c.String("metrics-addr")
	}
	return cfg, cfg.Validate()
}

func newRuntime(c *cli.Context) (*runtime, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, errorf("invalid configuration: %s", err)
	}
	log, err := cfg.NewLogger()
	if err != nil {
		return nil, errorf("invalid configuration: %s", err)
	}
	log.SetOutput(c.App.ErrWriter)

	registry := prometheus.NewRegistry()
	metrics, err := ev.NewMetrics(registry)
	if err != nil {
		return nil, errorf("failed to register metrics: %s", err)
	}

	rt := &runtime{
		cfg:      cfg,
		logger:   log,
		registry: registry,
		acq: ev.NewAcquirer(
			ev.WithTimeout(cfg.Timeout.Std()),
			ev.WithLogger(log),
			ev.WithMetrics(metrics),
		),
	}
	if cfg.MetricsAddr != "" {
		if err := rt.serveMetrics(cfg.MetricsAddr); err != nil {
			return nil, errorf("failed to serve metrics: %s", err)
		}
	}
	return rt, nil
}

// newHTTPHandler creates the `http.Handler` exposing the acquisition metrics
func newHTTPHandler(registry *prometheus.Registry) http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods("GET")
	return r
}

func (rt *runtime) serveMetrics(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	rt.server = &http.Server{
		Handler:           newHTTPHandler(rt.registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := rt.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.WithError(err).Error("metrics server failed")
		}
	}()
	rt.logger.WithField("metrics.addr", listener.Addr().String()).Info("serving metrics")
	return nil
}

func (rt *runtime) close() {
	if rt.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = rt.server.Shutdown(ctx)
}

// explain turns evassert errors into the exit error of a command
func explain(err error) error {
	if err == nil {
		return nil
	}
	return cli.Exit(ev.ExplainError(err), 1)
}
