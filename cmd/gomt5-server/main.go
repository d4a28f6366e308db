// gomt5-server connects the configured trade accounts through the terminal
// gateway and serves them over the REST API.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gomt5/internal/api"
	"gomt5/internal/config"
	"gomt5/internal/journal"
	"gomt5/internal/logging"
	"gomt5/internal/terminal/gateway"
	"gomt5/pkg/gomt5"
)

func main() {
	_ = godotenv.Load()

	cfgPath := "config/gomt5.yaml"
	if p := os.Getenv("GOMT5_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = config.Default()
	}

	logger := logging.New(cfg.Logging)

	j, err := journal.Open(cfg.Journal.SQLitePath)
	if err != nil {
		logger.WithError(err).Fatal("opening journal")
	}
	defer j.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := gomt5.NewManager()
	defer manager.ShutdownAll(context.Background())

	for _, acc := range cfg.Accounts {
		term := gateway.New(gateway.Options{
			BaseURL:           cfg.Gateway.BaseURL,
			Timeout:           cfg.Gateway.Timeout,
			RequestsPerSecond: cfg.Gateway.RequestsPerSecond,
			Burst:             cfg.Gateway.Burst,
			Logger:            logger,
		})
		_, err := manager.Add(ctx, gomt5.Options{
			Terminal: term,
			Name:     acc.Name,
			Path:     cfg.Terminal.Path,
			Login:    acc.Login,
			Password: acc.Password,
			Server:   acc.Server,
			Portable: cfg.Terminal.Portable,
			Magic:    acc.Magic,
			Retries:  cfg.Terminal.Retries,
			Journal:  j,
			Logger:   logger,
		})
		if err != nil {
			logger.WithError(err).WithField("account", acc.Name).Fatal("connecting account")
		}
		logger.WithField("account", acc.Name).Info("account connected")
	}
	if len(cfg.Accounts) == 0 {
		logger.Fatal("no accounts configured")
	}

	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
	srv := api.NewServer(manager, j, logger)
	if err := srv.Run(ctx, addr); err != nil {
		logger.WithError(err).Fatal("api server")
	}
}
