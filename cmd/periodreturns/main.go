package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"PeriodReturns/internal/collector"
	"PeriodReturns/internal/config"
	"PeriodReturns/internal/notifier"
	"PeriodReturns/internal/pipeline"
	"PeriodReturns/internal/recorder"
	"PeriodReturns/internal/runlog"
	"PeriodReturns/internal/scheduler"
	"PeriodReturns/internal/server"
)

func main() {
	once := flag.Bool("once", false, "run the pipeline once, write the outputs and exit")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PeriodReturns starting...")

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.RatePerSecond())
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.RatePerSecond())
	}
	log.Printf("[INFO] data source: %s, symbols: %v", fetcher.Name(), cfg.Symbols)

	// Init bar cache
	var cache recorder.BarCache
	if cfg.Database.SQLitePath != "" {
		sc, err := recorder.NewSQLiteCache(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite cache failed, using noop: %v", err)
			cache = recorder.NewNoopCache()
		} else {
			cache = sc
		}
	} else {
		cache = recorder.NewNoopCache()
	}
	defer cache.Close()

	col := collector.NewCollector(fetcher, cache, cfg.Symbols)
	runner, err := pipeline.NewRunner(cfg, col)
	if err != nil {
		log.Fatalf("[FATAL] init pipeline: %v", err)
	}
	journal, err := runlog.NewJournal(cfg.Database.RunLogPath, runlog.DefaultLimit)
	if err != nil {
		log.Fatalf("[FATAL] init run log: %v", err)
	}
	runner.Journal = journal

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		res, err := runner.Run(ctx)
		if errors.Is(err, pipeline.ErrNoData) {
			log.Printf("[WARN] %v", err)
			return
		}
		if err != nil {
			log.Printf("[ERROR] run: %v", err)
			cache.Close()
			os.Exit(1)
		}
		log.Printf("[INFO] run %s done: %v", res.Report.RunID, res.Files)
		return
	}

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Println("[WARN] Telegram not configured, results are only written to disk and served over HTTP")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, runner, sender)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing report task now")
		go sched.RunNow()
	}

	log.Println("[INFO] PeriodReturns is running. Press Ctrl+C to stop.")

	// Blocks until the shutdown signal
	if err := server.New(cfg.Server.Addr, runner, journal).ListenAndServe(ctx); err != nil {
		log.Printf("[ERROR] http server: %v", err)
	}

	log.Println("[INFO] shutdown signal received, stopping...")
	stop()
	log.Println("[INFO] PeriodReturns stopped")
}
