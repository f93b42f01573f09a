package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"example.com/campusfeed/cmd/server"
	"example.com/campusfeed/cmd/worker"
	appkafka "example.com/campusfeed/internal/broker"
	config "example.com/campusfeed/internal/init"
	"example.com/campusfeed/internal/logger"
	"example.com/campusfeed/internal/realtime"
	"example.com/campusfeed/internal/store"
)

func main() {
	// Initialize application configuration
	cfg := config.Init()
	logger.SetLevel(cfg.LogLevel)

	// Setup OS signal handling for graceful shutdown (SIGINT, SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Configure Kafka client parameters
	kafkaCfg := appkafka.KafkaConfig{
		Brokers:      []string{cfg.KafkaBroker},
		Topic:        cfg.KafkaTopic,
		Partition:    cfg.KafkaPartition,
		GroupID:      cfg.KafkaGroupID,
		WriteTimeout: cfg.KafkaWriteTO,
		ReadTimeout:  cfg.KafkaReadTO,
	}

	switch cfg.Mode {
	case "server":
		runServer(ctx, cfg, kafkaCfg)
	case "worker":
		// The worker only reads the activity topic; it needs no store.
		w := worker.New(appkafka.NewKafkaReader(kafkaCfg), cfg.WorkerCount, cfg.WorkerQueueSize)
		defer w.Close()
		w.Run(ctx)
	default:
		log.Fatalf("unknown mode: %s", cfg.Mode)
	}

	log.Println("Shutdown completed")
}

func runServer(ctx context.Context, cfg *config.Config, kafkaCfg appkafka.KafkaConfig) {
	st, err := store.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Store connection failed (%s): %v", cfg.StoreDriver, err)
	}
	defer st.Close()

	var events appkafka.Publisher = appkafka.NopPublisher{}
	if cfg.KafkaEnabled {
		w, err := appkafka.NewKafkaWriter(ctx, kafkaCfg)
		if err != nil {
			log.Fatalf("Kafka writer init failed: %v", err)
		}
		events = appkafka.NewEventPublisher(w)
	}
	defer events.Close()

	s := server.New(st, events, realtime.NewHub(), server.Options{
		Addr:           cfg.ServerAddr,
		ClientOrigin:   cfg.ClientOrigin,
		CORSOrigins:    cfg.CORSOrigins,
		UploadDir:      cfg.UploadDir,
		UploadMaxBytes: cfg.UploadMaxBytes,
		TLSCertFile:    cfg.TLSCertFile,
		TLSKeyFile:     cfg.TLSKeyFile,
	})
	if err := s.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
	}
}
