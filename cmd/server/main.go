// Package main is the entry point for the modalkit API server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/james-see/modalkit/pkg/api"
	"github.com/james-see/modalkit/pkg/audio"
	"github.com/james-see/modalkit/pkg/config"
	"github.com/james-see/modalkit/pkg/explorer"
	"github.com/james-see/modalkit/pkg/logging"
	"github.com/james-see/modalkit/pkg/throttle"
)

func main() {
	port := flag.Int("port", 0, "Server port (default from config, 8080)")
	configPath := flag.String("config", "", "Config file (default ~/.config/modalkit/config.json)")
	dev := flag.Bool("dev", false, "Human-readable development logs")
	flag.Parse()

	if err := run(*configPath, *port, *dev); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int, dev bool) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, dev)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	provider := audio.NewProvider(audio.WithSampleRate(cfg.Audio.SampleRate), audio.WithLogger(logger))
	defer func() { _ = provider.Close() }()

	x := explorer.New(provider,
		explorer.WithLogger(logger),
		explorer.WithOctaveBase(cfg.Audio.OctaveBase),
		explorer.WithLimiter(throttle.New(cfg.ThrottleWindow())),
		explorer.WithVoiceOptions(cfg.VoiceOptions()...),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting modalkit API server",
		zap.Int("port", cfg.Server.Port),
		zap.String("swagger", fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.Server.Port)),
	)
	return api.NewServer(x, api.WithLogger(logger), api.WithCORSOrigins(cfg.Server.CORSOrigins...)).Run(ctx, cfg.Server.Port)
}
