// apiserver runs the VeriType HTTP API as a standalone service binary.
// Configuration comes from a YAML file plus VERITYPE_* environment
// overrides; optional infrastructure (redis, kafka, oracle) is wired only
// when enabled.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/veritype/veritype/internal/app"
	"github.com/veritype/veritype/internal/config"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("veritype-apiserver %s (commit: %s, built: %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var cfg *config.Config
	var err error
	if _, statErr := os.Stat(configPath); statErr == nil {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetDefault(logger)

	logger.Info("starting veritype apiserver",
		logging.String("version", Version),
		logging.String("commit", GitCommit),
		logging.Int("port", cfg.Server.Port),
		logging.Bool("redis", cfg.Redis.Enabled),
		logging.Bool("kafka", cfg.Kafka.Enabled),
		logging.Bool("oracle", cfg.Oracle.Enabled))

	a, err := app.New(cfg, Version, logger)
	if err != nil {
		return fmt.Errorf("failed to assemble application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	logger.Info("veritype apiserver stopped")
	return nil
}
