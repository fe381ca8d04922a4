package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "water_tank/docs"
	"water_tank/internal/config"
	"water_tank/internal/driver"
	"water_tank/internal/engine"
	"water_tank/internal/handlers"
	"water_tank/internal/logger"
	"water_tank/internal/metrics"
	"water_tank/internal/models"
	"water_tank/internal/mqtt"
	"water_tank/internal/repository"
	"water_tank/internal/repository/db"
	"water_tank/internal/server"
	"water_tank/internal/service"
	"water_tank/internal/stream"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tank service (HTTP API, websocket, metrics, MQTT)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
}

func runServe(opts *rootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	log := logger.Get(cfg.LogLevel)

	sqlDB, err := openDB(cfg.DB.Path, log)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	eng, err := engine.New(cfg.EngineConfig())
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	reading := func(u driver.Update) models.TankReading {
		return service.ReadingFromUpdate(eng, u)
	}

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	collector := metrics.New(cfg.Node)
	hub := stream.NewHub(reading, stream.DefaultBuffer)
	recorder := service.NewRecorder(repos.EventRepo, log)

	driverOpts := []driver.Option{
		driver.WithPeriod(cfg.Simulation.Tick),
		driver.WithLocation(loc),
		driver.WithLogger(log),
		driver.WithObserver(collector),
		driver.WithObserver(hub),
		driver.WithObserver(recorder),
	}

	pub, mqttObs := connectMQTT(cfg, reading, log)
	if mqttObs != nil {
		driverOpts = append(driverOpts, driver.WithObserver(mqttObs))
	}

	drv, err := driver.New(eng, cfg.InitialState(), driverOpts...)
	if err != nil {
		return err
	}

	// context for background goroutines and the simulation run
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services := service.NewService(ctx, repos, drv, log)
	apiHandler := handlers.NewHandler(services, log,
		handlers.WithStream(hub),
		handlers.WithMetrics(collector.Handler()),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		recorder.Run(ctx)
	}()
	if mqttObs != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mqttObs.Run(ctx)
		}()
		publishSystem(pub, mqtt.EventStartup, "", log)
	}

	if cfg.Simulation.Autostart {
		if err := services.Simulation.Start(ctx); err != nil {
			return fmt.Errorf("start simulation: %w", err)
		}
	}
	log.Infow("tank_service_started",
		"port", cfg.Port, "node", cfg.Node, "tick", cfg.Simulation.Tick,
		"autostart", cfg.Simulation.Autostart, "mqtt", cfg.MQTT.Broker != "")

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	sig := waitForSignal()
	log.Infow("shutting down server...", "signal", sig.String())

	if err := services.Simulation.Stop(context.Background()); err != nil {
		log.Errorw("simulation_stop_failed", "err", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	// stop background goroutines; the recorder flushes queued events
	cancel()
	wg.Wait()

	if pub != nil {
		publishSystem(pub, mqtt.EventShutdown, sig.String(), log)
		_ = pub.Close()
	}
	return nil
}

// openDB initializes the SQLite database using configuration.
func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		path = "app.db"
	}
	return db.InitDB(path)
}

// connectMQTT returns nil values when no broker is configured or the
// broker is unreachable; telemetry is optional.
func connectMQTT(cfg *config.Config, reading func(driver.Update) models.TankReading, log *logger.Logger) (mqtt.Publisher, *mqtt.Observer) {
	if cfg.MQTT.Broker == "" {
		return nil, nil
	}
	pub, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.Node, cfg.MQTT.Topic)
	if err != nil {
		log.Errorw("mqtt_connect_failed", "err", err, "broker", cfg.MQTT.Broker)
		return nil, nil
	}
	return pub, mqtt.NewObserver(pub, reading, log)
}

func publishSystem(pub mqtt.Publisher, event, reason string, log *logger.Logger) {
	err := pub.PublishSystem(mqtt.SystemEvent{Timestamp: time.Now(), Event: event, Reason: reason})
	if err != nil {
		log.Errorw("mqtt_system_publish_failed", "err", err, "event", event)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForSignal blocks until SIGINT or SIGTERM.
func waitForSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	return <-quit
}
