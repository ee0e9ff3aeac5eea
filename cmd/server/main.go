package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/sparkpost-relay/internal/api"
	"github.com/ignite/sparkpost-relay/internal/config"
	"github.com/ignite/sparkpost-relay/internal/events"
	"github.com/ignite/sparkpost-relay/internal/mailer"
	"github.com/ignite/sparkpost-relay/internal/pkg/distlock"
	"github.com/ignite/sparkpost-relay/internal/pkg/httpretry"
	"github.com/ignite/sparkpost-relay/internal/pkg/logger"
	"github.com/ignite/sparkpost-relay/internal/sparkpost"
	"github.com/ignite/sparkpost-relay/internal/webhook"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logger.DEBUG)
	}

	client, err := sparkpost.NewClient(cfg.SparkPost)
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	// Account-level resources (domains, relay webhooks) need the master
	// key when running against a subaccount.
	var master *sparkpost.Client
	if cfg.SparkPost.MasterAPIKey != "" {
		master, err = sparkpost.NewClient(cfg.SparkPost.MasterConfig())
		if err != nil {
			log.Fatalf("Failed to create master API client: %v", err)
		}
	}

	// The event search path is read-only and safe to retry; sends are
	// never retried so a timeout cannot double-deliver.
	eventsClient, err := sparkpost.NewClient(cfg.SparkPost)
	if err != nil {
		log.Fatalf("Failed to create events API client: %v", err)
	}
	eventsClient.SetHTTPClient(httpretry.NewRetryClient(nil, 3))

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Printf("Redis unreachable, event cache disabled: %v", err)
			rdb = nil
		}
		cancel()
	}
	eventCache := events.NewCache(eventsClient, rdb, cfg.Events)

	// Webhook receiver: log every event; processing stays useful even
	// with no custom handlers registered.
	registry := webhook.NewRegistry()
	registry.SubscribeAll(func(_ context.Context, e webhook.Event) error {
		recipient, _ := e.Data["rcpt_to"].(string)
		logger.Info("event received",
			"category", string(e.Category),
			"type", e.Type(),
			"rcpt_to", logger.RedactEmail(recipient))
		return nil
	})
	processor := webhook.NewProcessor(registry, cfg.SparkPost.SubaccountID)
	receiver := webhook.NewReceiver(cfg.Webhook, processor)
	if rdb != nil {
		// The provider retries batches; with several instances behind a
		// load balancer only the lock winner processes a given batch.
		receiver.SetClaimFunc(func(ctx context.Context, batchID string) bool {
			lock := distlock.NewRedisLock(rdb, "webhook:batch:"+batchID, time.Hour)
			ok, err := lock.Acquire(ctx)
			if err != nil {
				// Fail open: double processing beats dropping events.
				return true
			}
			return ok
		})
	}

	h := &api.Handlers{
		Client: client,
		Master: master,
		Events: eventCache,
		Sender: mailer.NewSender(client, cfg.Mailer),
	}
	router := api.SetupRoutes(h, receiver)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if rdb != nil {
		rdb.Close()
	}
	log.Println("Server stopped")
}
