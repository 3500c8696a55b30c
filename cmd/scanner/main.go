package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"SignalScanner/internal/api"
	"SignalScanner/internal/collector"
	"SignalScanner/internal/config"
	"SignalScanner/internal/logger"
	"SignalScanner/internal/metrics"
	"SignalScanner/internal/notifier"
	"SignalScanner/internal/publisher"
	"SignalScanner/internal/report"
	"SignalScanner/internal/scanner"
	"SignalScanner/internal/scheduler"
	"SignalScanner/internal/store"
	"SignalScanner/internal/strategy"
	"SignalScanner/internal/tickers"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to the YAML config file")
	tickerArg := flag.String("tickers", "", "comma-separated tickers to scan")
	file := flag.String("file", "", "CSV or XLSX file whose first column lists tickers")
	only := flag.String("only", "", "comma-separated subset of the loaded tickers to scan")
	out := flag.String("out", "", "write CSV to this path (\"-\" for stdout); default prints a table")
	serve := flag.Bool("serve", false, "run the HTTP API, scheduler and Telegram bot")
	mock := flag.Bool("mock", false, "use generated in-memory bars instead of a live data source")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWithWriter(os.Stderr, cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	cache, err := newCache(cfg, log)
	if err != nil {
		log.Warn().Err(err).Str("backend", cfg.Cache.Backend).Msg("init bar cache failed, caching disabled")
		cache = store.NewNoopCache()
	}
	defer cache.Close()

	fetcher := newFetcher(cfg, *mock)
	log.Info().Str("source", fetcher.Name()).Str("cache", cfg.Cache.Backend).Msg("data source ready")

	provider := collector.NewProvider(fetcher, cache, collector.ProviderConfig{
		Suffixes: cfg.Scan.Suffixes,
		Lookback: cfg.Scan.Lookback,
		Timeout:  cfg.Scan.FetchTimeout,
		Retries:  cfg.Scan.Retries,
		Backoff:  cfg.Scan.RetryBackoff,
	}, m, log)
	engine := strategy.NewEngine(strategy.Params{
		FastSpan:     cfg.Strategy.FastSpan,
		SlowSpan:     cfg.Strategy.SlowSpan,
		VolumeSpan:   cfg.Strategy.VolumeSpan,
		MaxSignalAge: cfg.Strategy.MaxSignalAge,
	})
	sc := scanner.New(provider, engine, cfg.Scan.Workers, m, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serve {
		if err := runServer(ctx, cfg, sc, reg, log); err != nil {
			log.Fatal().Err(err).Msg("server")
		}
		return
	}

	list, err := inputTickers(cfg, *tickerArg, *file, *only)
	if err != nil {
		log.Fatal().Err(err).Msg("load tickers")
	}
	sc.OnProgress = func(done, total int) {
		log.Debug().Int("done", done).Int("total", total).Msg("scan progress")
	}
	rep, err := sc.Scan(ctx, list)
	if err != nil {
		log.Fatal().Err(err).Msg("scan")
	}
	if err := writeReport(rep, *out); err != nil {
		log.Fatal().Err(err).Msg("write report")
	}
}

func newCache(cfg *config.Config, log zerolog.Logger) (store.Cache, error) {
	switch cfg.Cache.Backend {
	case "sqlite":
		return store.NewSQLiteCache(cfg.Cache.SQLitePath, cfg.Cache.TTL, log)
	case "redis":
		return store.NewRedisCache(store.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		})
	default:
		return store.NewNoopCache(), nil
	}
}

func newFetcher(cfg *config.Config, mock bool) collector.Fetcher {
	switch {
	case mock:
		return collector.NewGeneratingMockFetcher()
	case cfg.DataSource.BaseURL != "":
		return collector.NewRestFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.Scan.FetchTimeout)
	default:
		return collector.NewYahooFetcher(cfg.Proxy, cfg.Scan.FetchTimeout)
	}
}

// inputTickers merges -tickers and -file, falling back to the configured
// watchlist, then narrows the result with -only.
func inputTickers(cfg *config.Config, arg, file, only string) ([]string, error) {
	list := tickers.Split(arg)
	if file != "" {
		fromFile, err := tickers.Load(file)
		if err != nil {
			return nil, err
		}
		list = append(list, fromFile...)
	}
	if len(list) == 0 {
		wl, err := watchlist(cfg)()
		if err != nil {
			return nil, err
		}
		list = wl
	}
	if only != "" {
		list = tickers.Select(list, tickers.Split(only))
	}
	return list, nil
}

func watchlist(cfg *config.Config) func() ([]string, error) {
	return func() ([]string, error) {
		if cfg.Scan.WatchlistFile != "" {
			return tickers.Load(cfg.Scan.WatchlistFile)
		}
		return tickers.Normalize(cfg.Scan.Watchlist), nil
	}
}

func writeReport(rep *report.Report, out string) error {
	switch out {
	case "":
		return rep.WriteTable(os.Stdout)
	case "-":
		return rep.WriteCSV(os.Stdout)
	default:
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := rep.WriteCSV(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}

func runServer(ctx context.Context, cfg *config.Config, sc *scanner.Scanner, reg *prometheus.Registry, log zerolog.Logger) error {
	latest := &report.Latest{}

	var (
		sender scheduler.Sender
		tn     *notifier.TelegramNotifier
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sender = tn
	}

	var pub scheduler.Publisher
	if cfg.KafkaEnabled() {
		producer := publisher.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		pub = producer
	}

	sched := scheduler.NewScheduler(ctx, sc, watchlist(cfg), latest, sender, pub, log)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, scanning watchlist now")
		go sched.RunScanNow()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.SetupRoutes(api.NewHandler(sc, latest, log), reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, stopping")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
