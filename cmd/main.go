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

	"switchbot_dashboard/internal/handlers"
	"switchbot_dashboard/internal/logger"
	"switchbot_dashboard/internal/metrics"
	"switchbot_dashboard/internal/models"
	"switchbot_dashboard/internal/mqtt"
	"switchbot_dashboard/internal/repository"
	"switchbot_dashboard/internal/server"
	"switchbot_dashboard/internal/service"
	"switchbot_dashboard/internal/switchbot"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// load config.yml (env overrides apply even without the file)
	cfgErr := loadConfig()

	log := logger.GetWithConfig(logger.Config{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
	})
	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}
	watchLogLevel(log)

	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector, collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := switchbot.NewClient(
		viper.GetString("switchbot.base_url"),
		viper.GetString("switchbot.relay_prefix"),
		viper.GetDuration("http.client_timeout"),
	).WithObserver(collector)

	sinks := []service.MeterSink{collector}
	bridge := startMQTT(log)
	if bridge != nil {
		sinks = append(sinks, bridge)
		defer bridge.Disconnect()
	}

	auth := authConfig()
	if err := auth.Validate(); err != nil {
		log.Fatalw("invalid auth config", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, service.Deps{
		API:           client,
		Auth:          auth,
		Defaults:      envSettings(),
		ActivityLimit: viper.GetInt("activity.limit"),
		MeterSinks:    sinks,
	})

	source, err := services.Settings.Init(ctx)
	if err != nil {
		log.Warnw("stored settings ignored", "err", err)
	}
	log.Infow("settings loaded", "source", source, "configured", services.Settings.Get().Configured())

	if bridge != nil {
		bridge.StartMeterPublisher(ctx)
		if err := bridge.SubscribeCommands(ctx, services.Control); err != nil {
			log.Errorw("mqtt subscribe failed", "err", err)
		}
	}

	// start meter poller (no-op when the interval is 0)
	go services.MeterPoller.Run(ctx, viper.GetDuration("meter.poll_interval"))

	apiHandler := handlers.NewHandler(services, log).WithMetrics(collector, registry)
	if bridge != nil {
		apiHandler.WithBroker(bridge)
	}

	srv := &server.Server{}
	runHTTPServer(srv, serverConfig(), apiHandler, log)

	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("log.format", logger.FormatConsole)
	viper.SetDefault("db.path", "switchbot.db")
	viper.SetDefault("switchbot.base_url", switchbot.DefaultBaseURL)
	viper.SetDefault("switchbot.relay_prefix", switchbot.DefaultRelayPrefix)
	viper.SetDefault("http.client_timeout", 15*time.Second)
	viper.SetDefault("auth.token_ttl", time.Hour)
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.prefix", mqtt.DefaultPrefix)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// watchLogLevel applies log.level edits in config.yml without a restart.
func watchLogLevel(log *logger.Logger) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		level := viper.GetString("log.level")
		log.SetLevel(level)
		log.Infow("config reloaded", "file", e.Name, "log_level", level)
	})
	viper.WatchConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	log.Infow("opening sqlite", "path", dbPath)
	return repository.InitDB(dbPath)
}

// envSettings are the credentials used when nothing was saved yet.
func envSettings() models.Settings {
	return models.Settings{
		Token:    viper.GetString("switchbot.token"),
		Secret:   viper.GetString("switchbot.secret"),
		UseProxy: viper.GetBool("switchbot.use_proxy"),
	}
}

func authConfig() service.AuthConfig {
	return service.AuthConfig{
		Username:     viper.GetString("auth.username"),
		PasswordHash: viper.GetString("auth.password_hash"),
		SigningKey:   viper.GetString("auth.signing_key"),
		TokenTTL:     viper.GetDuration("auth.token_ttl"),
	}
}

func serverConfig() server.Config {
	return server.Config{
		Port:              viper.GetString("port"),
		ReadHeaderTimeout: viper.GetDuration("http.read_header_timeout"),
		WriteTimeout:      viper.GetDuration("http.write_timeout"),
		IdleTimeout:       viper.GetDuration("http.idle_timeout"),
		UpstreamTimeout:   viper.GetDuration("http.client_timeout"),
	}
}

// startMQTT connects the bridge when enabled. A broker failure is logged and
// the dashboard runs without it.
func startMQTT(log *logger.Logger) *mqtt.Bridge {
	if !viper.GetBool("mqtt.enabled") {
		return nil
	}
	bridge := mqtt.NewBridge(mqtt.Config{
		Broker:   viper.GetString("mqtt.broker"),
		Port:     viper.GetInt("mqtt.port"),
		Username: viper.GetString("mqtt.username"),
		Password: viper.GetString("mqtt.password"),
		ClientID: viper.GetString("mqtt.client_id"),
		Prefix:   viper.GetString("mqtt.prefix"),
	}, log)
	if err := bridge.Connect(); err != nil {
		log.Errorw("mqtt disabled", "err", err)
		return nil
	}
	return bridge
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, cfg server.Config, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", cfg.Port)
		if err := srv.Run(cfg, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
