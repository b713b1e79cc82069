package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"gitlab.apk-group.net/siem/qa/discovery-harness/app"
	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/session"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/logger"
)

var configPath = flag.String("config", "", "harness configuration file")

func main() {
	flag.Parse()

	var cfg config.Config
	if *configPath == "" {
		cfg = config.MustLoad()
	} else {
		cfg = config.MustReadConfig(*configPath)
		if err := cfg.Validate(); err != nil {
			panic(&config.ConfigError{Path: *configPath, Err: err})
		}
	}

	if err := logger.InitGlobalLogger(cfg.Logger); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}

	logger.InfoWithFields("Starting discovery harness", map[string]interface{}{
		"server": cfg.Server.BaseURL(),
		"scans":  len(cfg.Scans),
	})

	appContainer := app.NewMustApp(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalChan
		logger.Info("Received %s, canceling scan pass", sig)
		cancel()
	}()

	sess, err := session.New(ctx, appContainer)
	if err != nil {
		logger.Fatal("Failed to start session: %v", err)
	}
	defer sess.Close()

	failures := sess.RunConfiguredScans(ctx)
	for name, err := range failures {
		logger.Error("Scan %q failed: %v", name, err)
	}

	if len(failures) > 0 {
		logger.Error("Initial scan pass finished with %d failures", len(failures))
		sess.Close()
		os.Exit(1)
	}
	logger.Info("Initial scan pass finished, all scans completed")
}
