package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"walletpass/config"
	"walletpass/db"
	"walletpass/gateway"
	"walletpass/pubsub"
	"walletpass/service"
	"walletpass/tracing"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		cancel()
		log.FromContext(ctx).WithError(err).Fatal("Service stopped with error")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	tp, err := tracing.ConfigureTraceProvider(cfg.JaegerEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.FromContext(ctx).WithError(err).Error("Could not shut down tracer provider")
		}
	}()

	dbconn, err := db.Open(cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer dbconn.Close()

	redisClient := pubsub.NewRedisClient(cfg.RedisAddr)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("could not connect to redis: %w", err)
	}

	passSource := gateway.NewPassSourceClient(cfg.PassSource.BaseURL, cfg.PassSource.Timeout)

	return service.New(cfg, dbconn, redisClient, passSource).Run(ctx)
}
