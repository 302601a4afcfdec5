// Package app assembles the detection service and its optional
// infrastructure (result cache, event stream, oracle) from configuration.
// Both the apiserver binary and the CLI serve command build the same stack
// through here.
package app

import (
	"context"

	appdetection "github.com/veritype/veritype/internal/application/detection"
	"github.com/veritype/veritype/internal/config"
	redisadapter "github.com/veritype/veritype/internal/infrastructure/cache/redis"
	"github.com/veritype/veritype/internal/infrastructure/messaging/kafka"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/prometheus"
	"github.com/veritype/veritype/internal/infrastructure/oracle/gemini"
	httpserver "github.com/veritype/veritype/internal/interfaces/http"
	"github.com/veritype/veritype/internal/interfaces/http/handlers"
)

// App owns the fully-wired HTTP server and the connections behind it.
type App struct {
	cfg     *config.Config
	logger  logging.Logger
	service appdetection.Service
	server  *httpserver.Server
	closers []func() error
}

// New wires the detection service from cfg. Disabled optional components
// (redis, kafka, oracle) are simply not constructed; the service falls back
// to its no-op defaults for them.
func New(cfg *config.Config, version string, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "veritype",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, log)
	if err != nil {
		return nil, err
	}
	metrics := prometheus.NewAppMetrics(collector)

	a := &App{cfg: cfg, logger: log}

	svcOpts := []appdetection.ServiceOption{
		appdetection.WithLogger(log),
		appdetection.WithMetrics(metrics),
	}
	checks := map[string]handlers.CheckFunc{}

	if cfg.Redis.Enabled {
		client, err := redisadapter.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)

		var cacheOpts []redisadapter.CacheOption
		if cfg.Redis.KeyPrefix != "" {
			cacheOpts = append(cacheOpts, redisadapter.WithPrefix(cfg.Redis.KeyPrefix))
		}
		if cfg.Redis.DefaultTTL > 0 {
			cacheOpts = append(cacheOpts, redisadapter.WithDefaultTTL(cfg.Redis.DefaultTTL))
		}
		cache := redisadapter.NewCache(client, log, cacheOpts...)
		svcOpts = append(svcOpts, appdetection.WithCache(redisadapter.NewResultCache(cache)))
		checks["redis"] = client.Ping
	}

	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka, log)
		if err != nil {
			return nil, err
		}
		publisher := kafka.NewEventPublisher(producer, log)
		a.closers = append(a.closers, publisher.Close)
		svcOpts = append(svcOpts, appdetection.WithPublisher(publisher))
	}

	if cfg.Oracle.Enabled {
		oracle, err := gemini.New(cfg.Oracle, log, gemini.WithMetrics(metrics))
		if err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, appdetection.WithOracle(oracle))
	}

	a.service = appdetection.NewServiceFromConfig(cfg.Detector, svcOpts...)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		DetectHandler: handlers.NewDetectHandler(a.service, log),
		HealthHandler: handlers.NewHealthHandler(version, checks),
		Logger:        log,
		Metrics:       metrics,
		Collector:     collector,
		Mode:          cfg.Server.Mode,
	})
	a.server = httpserver.NewServer(cfg.Server, router, log)

	return a, nil
}

// Service exposes the wired detection service.
func (a *App) Service() appdetection.Service { return a.service }

// Run serves HTTP until ctx is canceled or the listener fails, then drains
// in-flight requests and releases connections.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
	}

	err := a.server.Stop(context.Background())
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	return err
}

func (a *App) close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
