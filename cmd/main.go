package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"heater_bridge/internal/device"
	"heater_bridge/internal/handlers"
	"heater_bridge/internal/logger"
	"heater_bridge/internal/repository"
	"heater_bridge/internal/server"
	"heater_bridge/internal/service"

	"github.com/spf13/viper"
)

const defaultProbeTimeout = 15 * time.Second

func main() {
	// load config.yml before the logger so log_level applies
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log_level"))

	host := viper.GetString("heater.host")
	token := viper.GetString("heater.token")
	if host == "" || token == "" {
		log.Fatalw("heater.host and heater.token are required")
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	dev := device.NewClient(host, token, deviceTimeout())
	repos := repository.NewRepository(db)
	services := service.NewService(repos, dev, log, authConfig())
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup-time connectivity probe. A failure here is fatal: there is no
	// last-known snapshot to fall back to, so the supervisor should retry
	// the whole setup later.
	probeCtx, probeCancel := context.WithTimeout(ctx, defaultProbeTimeout)
	err = services.Poller.Probe(probeCtx)
	probeCancel()
	if err != nil {
		log.Fatalw("heater not ready", "host", host, "err", err)
	}
	log.Infow("heater probe succeeded", "host", host)

	// start the poll loop
	go services.Poller.Run(ctx, pollInterval())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetDefault("heater.poll_interval_seconds", 30)
	viper.SetEnvPrefix("HEATER_BRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // e.g. HEATER_BRIDGE_HEATER_TOKEN overrides heater.token
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "heater_bridge.db")
		dbPath = "heater_bridge.db"
	}
	return repository.InitDB(dbPath)
}

func pollInterval() time.Duration {
	secs := viper.GetInt("heater.poll_interval_seconds")
	if secs <= 0 {
		return service.DefaultPollInterval
	}
	return time.Duration(secs) * time.Second
}

func deviceTimeout() time.Duration {
	return time.Duration(viper.GetInt("heater.timeout_seconds")) * time.Second
}

func authConfig() service.AuthConfig {
	return service.AuthConfig{
		SigningKey: viper.GetString("auth.signing_key"),
		TokenTTL:   time.Duration(viper.GetInt("auth.token_ttl_minutes")) * time.Minute,
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	// stop the poll loop; no further ticks fire after this
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
