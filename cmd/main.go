package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mcorder/internal/config"
	"mcorder/internal/logger"
)

// options are the command line settings shared by every mode
type options struct {
	mode           string
	email          string
	password       string
	zip            string
	radius         int
	allDeals       bool
	lookupItems    bool
	lookupPromo    bool
	minProducts    int
	showPromotions bool
	itemsCache     string
	firstName      string
	lastName       string
	limit          int
}

func main() {
	var (
		opts       options
		configPath = flag.String("config", "config.yaml", "Path to the configuration file")
		apiKey     = flag.String("api-key", "", "API key, overrides the configuration file")
		insecure   = flag.Bool("insecure", false, "Skip TLS certificate verification")
		logLevel   = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	)
	flag.StringVar(&opts.mode, "mode", "order", "Mode (order, register, stores, offers, history, notify)")
	flag.StringVar(&opts.email, "email", os.Getenv("MCD_EMAIL"), "Account email")
	flag.StringVar(&opts.password, "password", os.Getenv("MCD_PASSWORD"), "Account password")
	flag.StringVar(&opts.zip, "zip", "", "Zip code to search around, defaults to the account zip code")
	flag.IntVar(&opts.radius, "radius", 8, "Store search radius in miles")
	flag.BoolVar(&opts.allDeals, "all-deals", false, "List every offer, not only the orderable deals")
	flag.BoolVar(&opts.lookupItems, "lookup-items", false, "Look up names of every unknown promotion candidate")
	flag.BoolVar(&opts.lookupPromo, "lookup-promotional", false, "Also name promotional candidates")
	flag.IntVar(&opts.minProducts, "min-products", 0, "Look up unknown names in promotion sets with at most this many candidates")
	flag.BoolVar(&opts.showPromotions, "show-promotions", false, "Show promotional menu items")
	flag.StringVar(&opts.itemsCache, "items-cache", "", "Directory to persist known item names in")
	flag.StringVar(&opts.firstName, "first-name", "", "First name for register mode")
	flag.StringVar(&opts.lastName, "last-name", "", "Last name for register mode")
	flag.IntVar(&opts.limit, "limit", 20, "Number of entries for history mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *apiKey != "" {
		cfg.API.Key = *apiKey
	}
	if *insecure {
		cfg.API.VerifyCertificates = false
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid --log-level %q\n", *logLevel)
		os.Exit(1)
	}
	log := logger.NewWithWriter(opts.mode, os.Stderr, level)
	requestID := logger.GenerateRequestID()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	var run func(context.Context, *config.Config, *logger.Logger, options) error
	switch opts.mode {
	case "order":
		run = runOrder
	case "register":
		run = runRegister
	case "stores":
		run = runStores
	case "offers":
		run = runOffers
	case "history":
		run = runHistory
	case "notify":
		run = runNotify
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", opts.mode)
		flag.Usage()
		os.Exit(1)
	}

	if err := run(ctx, cfg, log, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("Cancelled.")
			return
		}
		log.Error("mode_failed", fmt.Sprintf("%s failed", opts.mode), requestID, err, nil)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
