package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"sim-trader/src/config"
	"sim-trader/src/helpers"
	"sim-trader/src/interfaces"
	"sim-trader/src/logger"
	"sim-trader/src/server"
	"sim-trader/src/simclock"
	"sim-trader/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// 2. Setup Storage
	var store interfaces.IClockStore

	switch cfg.Storage.DBType {
	case "postgres":
		store, err = storage.NewPostgresClockStore(cfg.MConfig, appLogger)
	default:
		// Default to SQLite
		store, err = storage.NewSQLiteClockStore(cfg.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init store: %v", err)
	}
	if err := helpers.RetryWithBackoff("store initialization", 3, time.Second, store.Initialize); err != nil {
		appLogger.Critical("Failed to initialize store: %v", err)
	}
	defer store.Close()

	// 3. Market calendar
	cal, err := simclock.NewCalendar(cfg.Market)
	if err != nil {
		appLogger.Critical("Failed to build market calendar: %v", err)
	}

	// 4. Broadcaster + Tick Scheduler
	broadcaster := server.NewBroadcaster(appLogger)
	scheduler := simclock.NewScheduler(store, broadcaster, cal, cfg.TickInterval(), appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Run(ctx)
	}()

	// 5. HTTP + WebSocket server
	srv := server.NewServer(cfg.MConfig, store, broadcaster, cal, appLogger)
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	appLogger.Info("Simulation clock running for all users")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()  // Signal scheduler to stop
	wg.Wait() // Let the in-flight tick finish persisting
}
