package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"aeroponic_tower/internal/config"
	"aeroponic_tower/internal/handlers"
	"aeroponic_tower/internal/logger"
	"aeroponic_tower/internal/models"
	"aeroponic_tower/internal/mqttsub"
	"aeroponic_tower/internal/repository"
	"aeroponic_tower/internal/server"
	"aeroponic_tower/internal/service"
)

const shutdownTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "3000", "Port to listen on (also PORT)")
	serveCmd.Flags().String("host", "0.0.0.0", "Interface to bind")
	serveCmd.Flags().Int("capacity", repository.DefaultCapacity, "Number of history entries kept")
	serveCmd.Flags().Bool("simulate", false, "Feed the store with simulated readings")
	serveCmd.Flags().Duration("simulate-interval", service.DefaultSimTick, "Period of simulated readings")
	serveCmd.Flags().Bool("mqtt", false, "Also ingest readings from the MQTT topic")
	serveCmd.Flags().String("mqtt-broker", "tcp://localhost:1883", "MQTT broker URL")
	serveCmd.Flags().String("mqtt-topic", "tower/readings", "MQTT topic carrying readings")

	_ = v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = v.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	_ = v.BindPFlag("store.capacity", serveCmd.Flags().Lookup("capacity"))
	_ = v.BindPFlag("simulator.enabled", serveCmd.Flags().Lookup("simulate"))
	_ = v.BindPFlag("simulator.interval", serveCmd.Flags().Lookup("simulate-interval"))
	_ = v.BindPFlag("mqtt.enabled", serveCmd.Flags().Lookup("mqtt"))
	_ = v.BindPFlag("mqtt.broker", serveCmd.Flags().Lookup("mqtt-broker"))
	_ = v.BindPFlag("mqtt.topic", serveCmd.Flags().Lookup("mqtt-topic"))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the hub",
	Long: `Starts the HTTP hub: devices post readings to /update, dashboards read
/data, /historique and /status, and the landing page is served at /.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// init logger
	log := logger.Configure(cfg.Log.Level, cfg.Log.Format)

	// wire dependencies
	loc, _ := cfg.Location() // validated by Load
	clock := service.Clock{Layout: cfg.Store.TimeLayout, Location: loc}
	repos := repository.NewRepository(repository.Options{
		Capacity: cfg.Store.Capacity,
		Initial:  models.Reading{CapturedAt: clock.Stamp()},
	})
	services := service.NewService(repos, service.Options{
		Clock:     clock,
		StartedAt: time.Now(),
		Log:       log,
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startBackground(ctx, cfg, services, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
	return nil
}

// startBackground launches the optional ingestion sources.
func startBackground(ctx context.Context, cfg config.Config, services *service.Service, log *logger.Logger) {
	if cfg.Simulator.Enabled {
		log.Infow("simulator_enabled", "interval", cfg.Simulator.Interval)
		go services.Simulator.Run(ctx, cfg.Simulator.Interval)
	}

	if cfg.MQTT.Enabled {
		sub := mqttsub.New(mqttsub.Options{
			Broker:   cfg.MQTT.Broker,
			Topic:    cfg.MQTT.Topic,
			ClientID: cfg.MQTT.ClientID,
			QoS:      cfg.MQTT.QoS,
		}, services.Ingestion, log)
		log.Infow("mqtt_enabled", "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic)
		go func() {
			if err := sub.Run(ctx); err != nil {
				log.Errorw("mqtt_stopped", "err", err)
			}
		}()
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, cfg config.Config, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("server_listening", "addr", cfg.Addr())
		if err := srv.Run(cfg.Host, cfg.Port, handler.HTTPHandler()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
	_ = log.Sync()
}
