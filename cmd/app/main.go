package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	"dispatch/internal/adapters/out/persistence"
	"dispatch/internal/adapters/out/rabbitmq"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("starting", "config", config.String())

	gormDB, err := persistence.Open(config.DatabaseOptions())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	ext, closeExternals := connectExternals(config, logger)
	defer closeExternals()

	app, err := cmd.NewCompositionRoot(config, gormDB, ext, logger)
	if err != nil {
		log.Fatalf("Composition failed: %v", err)
	}
	app.Start()
	defer app.Close()

	jobManager := app.Jobs()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Jobs failed to start: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(app, config.HTTPPort, logger)
}

// connectExternals dials the optional brokers. A configured broker that cannot be
// reached is logged and left out rather than failing start-up.
func connectExternals(config cmd.Config, logger *slog.Logger) (cmd.Externals, func()) {
	var ext cmd.Externals
	closers := make([]func(), 0, 2)

	if config.AMQPURL != "" {
		client, err := dialPublisher(config.AMQPURL, config.AMQPExchange)
		if err != nil {
			logger.Warn("amqp_unavailable", "exchange", config.AMQPExchange, "error", err)
		} else {
			ext.Publisher = client
			closers = append(closers, client.Close)
		}
	}

	if config.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis_unavailable", "addr", config.RedisAddr, "error", err)
		}
		// Kept even when the ping failed: Sequence falls back per call.
		ext.Redis = client
		closers = append(closers, func() { _ = client.Close() })
	}

	return ext, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

func dialPublisher(url, exchange string) (*rabbitmq.Client, error) {
	client, err := rabbitmq.Dial(url)
	if err != nil {
		return nil, err
	}
	if err := client.DeclareTopicExchange(exchange); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func startWebServer(app *cmd.CompositionRoot, port string, logger *slog.Logger) {
	e := app.NewEcho()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()
	logger.Info("listening", "port", port)

	<-ctx.Done()
	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	}
}
