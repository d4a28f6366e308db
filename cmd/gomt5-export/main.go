// One-shot tool: fetch bar or tick history from the terminal and write it
// to Parquet files under the configured data directory.
//
// Usage:
//
//	gomt5-export -symbol EURUSD -timeframe H1 -days 30
//	gomt5-export -symbol EURUSD -ticks -days 2
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"gomt5/internal/config"
	"gomt5/internal/domain"
	"gomt5/internal/export"
	"gomt5/internal/logging"
	"gomt5/internal/terminal"
	"gomt5/internal/terminal/gateway"
	"gomt5/pkg/gomt5"
)

func main() {
	_ = godotenv.Load()

	symbol := flag.String("symbol", "", "symbol to export (required)")
	timeframe := flag.String("timeframe", "H1", "bar timeframe: M1, M5, M15, M30, H1, H4, D1, W1, MN1")
	days := flag.Int("days", 30, "how many days back to fetch")
	ticks := flag.Bool("ticks", false, "export raw ticks instead of bars")
	flag.Parse()

	if *symbol == "" {
		flag.Usage()
		os.Exit(1)
	}

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

	tf, ok := domain.ParseTimeframe(*timeframe)
	if !ok {
		log.Fatalf("unknown timeframe %q", *timeframe)
	}

	ctx := context.Background()
	term := gateway.New(gateway.Options{
		BaseURL:           cfg.Gateway.BaseURL,
		Timeout:           cfg.Gateway.Timeout,
		RequestsPerSecond: cfg.Gateway.RequestsPerSecond,
		Burst:             cfg.Gateway.Burst,
		Logger:            logger,
	})

	opts := gomt5.Options{Terminal: term, KeepAlive: true, Logger: logger}
	if len(cfg.Accounts) > 0 {
		opts.Login = cfg.Accounts[0].Login
		opts.Password = cfg.Accounts[0].Password
		opts.Server = cfg.Accounts[0].Server
	}
	client, err := gomt5.Connect(ctx, opts)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer client.Close(ctx)

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -*days)
	store := export.NewStore(cfg.Export.DataDir)

	if *ticks {
		fetched, err := client.History().Ticks(ctx, *symbol, terminal.TicksQuery{From: from, To: to})
		if err != nil {
			log.Fatalf("fetching ticks: %v", err)
		}
		if err := store.WriteTicks(*symbol, fetched); err != nil {
			log.Fatalf("writing ticks: %v", err)
		}
		logger.WithField("count", len(fetched)).Info("tick export complete")
		return
	}

	bars, err := client.History().Bars(ctx, *symbol, tf, terminal.BarsQuery{From: from, To: to})
	if err != nil {
		log.Fatalf("fetching bars: %v", err)
	}
	if err := store.WriteBars(*symbol, tf, bars); err != nil {
		log.Fatalf("writing bars: %v", err)
	}
	logger.WithField("count", len(bars)).Info("bar export complete")
}
