// gomt5-cli talks to the terminal gateway directly: account state, quotes,
// positions, and one-shot market orders from the command line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"gomt5/internal/config"
	"gomt5/internal/logging"
	"gomt5/internal/stream"
	"gomt5/internal/terminal"
	"gomt5/internal/terminal/gateway"
	"gomt5/pkg/gomt5"
)

const version = "0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: gomt5-cli <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  version              Print the CLI version\n")
	fmt.Fprintf(os.Stderr, "  account              Show the trade account\n")
	fmt.Fprintf(os.Stderr, "  symbols [-group G]   List symbols\n")
	fmt.Fprintf(os.Stderr, "  tick <symbol>        Show the latest quote\n")
	fmt.Fprintf(os.Stderr, "  positions            List open positions\n")
	fmt.Fprintf(os.Stderr, "  orders               List pending orders\n")
	fmt.Fprintf(os.Stderr, "  buy <symbol> <vol>   Market buy\n")
	fmt.Fprintf(os.Stderr, "  sell <symbol> <vol>  Market sell\n")
	fmt.Fprintf(os.Stderr, "  close <ticket>       Close a position\n")
	fmt.Fprintf(os.Stderr, "  watch <symbol>...    Stream live quotes until interrupted\n")
	fmt.Fprintf(os.Stderr, "\n")
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	if os.Args[1] == "version" {
		fmt.Printf("gomt5-cli %s\n", version)
		return
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

	ctx := context.Background()
	client, err := connect(ctx, cfg)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer client.Close(ctx)

	switch os.Args[1] {
	case "account":
		acc, err := client.Account().Info(ctx)
		exitOn(err)
		printJSON(acc)

	case "symbols":
		fs := flag.NewFlagSet("symbols", flag.ExitOnError)
		group := fs.String("group", "*", "symbol group filter, e.g. \"*USD*,!XAU*\"")
		fs.Parse(os.Args[2:])
		names, err := client.Symbols().Names(ctx, *group)
		exitOn(err)
		for _, name := range names {
			fmt.Println(name)
		}

	case "tick":
		requireArgs(3, "tick <symbol>")
		tick, err := client.Symbols().Tick(ctx, os.Args[2])
		exitOn(err)
		printJSON(tick)

	case "positions":
		positions, err := client.Positions().Positions(ctx, terminal.PositionFilter{})
		exitOn(err)
		printJSON(positions)

	case "orders":
		orders, err := client.Positions().Orders(ctx, terminal.PositionFilter{})
		exitOn(err)
		printJSON(orders)

	case "buy", "sell":
		requireArgs(4, os.Args[1]+" <symbol> <volume>")
		volume, err := strconv.ParseFloat(os.Args[3], 64)
		exitOn(err)
		builder := client.Order(os.Args[2])
		if os.Args[1] == "buy" {
			builder.MarketBuy(volume)
		} else {
			builder.MarketSell(volume)
		}
		res, err := builder.Send(ctx)
		if res != nil {
			printJSON(res)
		}
		exitOn(err)

	case "close":
		requireArgs(3, "close <ticket>")
		ticket, err := strconv.ParseInt(os.Args[2], 10, 64)
		exitOn(err)
		res, err := client.Executor().ClosePosition(ctx, ticket, 0, 0)
		if res != nil {
			printJSON(res)
		}
		exitOn(err)

	case "watch":
		requireArgs(3, "watch <symbol>...")
		exitOn(watch(cfg, os.Args[2:]))

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func connect(ctx context.Context, cfg *config.Config) (*gomt5.Client, error) {
	term := gateway.New(gateway.Options{
		BaseURL:           cfg.Gateway.BaseURL,
		Timeout:           cfg.Gateway.Timeout,
		RequestsPerSecond: cfg.Gateway.RequestsPerSecond,
		Burst:             cfg.Gateway.Burst,
	})

	opts := gomt5.Options{
		Terminal: term,
		Path:     cfg.Terminal.Path,
		Portable: cfg.Terminal.Portable,
		Retries:  cfg.Terminal.Retries,
		// The CLI is a visitor: leave the terminal session running.
		KeepAlive: true,
		Logger:    logging.Discard(),
	}
	if len(cfg.Accounts) > 0 {
		acc := cfg.Accounts[0]
		opts.Name = acc.Name
		opts.Login = acc.Login
		opts.Password = acc.Password
		opts.Server = acc.Server
		opts.Magic = acc.Magic
	}
	return gomt5.Connect(ctx, opts)
}

// watch subscribes to the gateway tick feed and prints quotes until the
// process is interrupted.
func watch(cfg *config.Config, symbols []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	feed := stream.New(stream.Options{URL: feedURL(cfg.Gateway.BaseURL)})
	if err := feed.Connect(ctx); err != nil {
		return err
	}
	if err := feed.Subscribe(symbols...); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-feed.Ticks():
			if !ok {
				return nil
			}
			fmt.Printf("%s  %s  bid=%.5f ask=%.5f\n",
				ev.Tick.TimeMscDT.Format("15:04:05.000"), ev.Symbol, ev.Tick.Bid, ev.Tick.Ask)
		}
	}
}

// feedURL turns the gateway base URL into its websocket feed endpoint.
func feedURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimRight(base, "/") + "/ws"
}

func requireArgs(n int, usageLine string) {
	if len(os.Args) < n {
		fmt.Fprintf(os.Stderr, "Usage: gomt5-cli %s\n", usageLine)
		os.Exit(1)
	}
}

func exitOn(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encoding output: %v", err)
	}
	fmt.Println(string(out))
}
