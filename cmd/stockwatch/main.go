package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-erp-fulfillment/internal/config"
	"github.com/ariefcatur/go-erp-fulfillment/internal/fulfillment"
	kafkax "github.com/ariefcatur/go-erp-fulfillment/internal/kafka"
	"github.com/ariefcatur/go-erp-fulfillment/internal/postgres"
	"github.com/ariefcatur/go-erp-fulfillment/internal/redisx"
	"github.com/ariefcatur/go-erp-fulfillment/internal/stock"
	"github.com/ariefcatur/go-erp-fulfillment/internal/stockwatch"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producer: low-stock alerts
	pLow := kafkax.NewProducer(cfg.KafkaBrokers, fulfillment.TopicStockLow, 1024)
	pLow.Start(ctx)

	// Service
	svc := &stockwatch.Service{
		Ledger:      &stock.Ledger{DB: db},
		Redis:       rdb,
		ProducerLow: pLow,
		ServiceName: cfg.ServiceName + "-stockwatch",
	}

	// Consumer
	group := getenv("STOCKWATCH_GROUP", "stockwatch-svc")
	workers := mustAtoi(os.Getenv("STOCKWATCH_WORKERS"), "8")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, fulfillment.TopicStockConfirmed, workers)

	go func() {
		log.Printf("stockwatch consumer started: group=%s topic=%s workers=%d", group, fulfillment.TopicStockConfirmed, workers)
		if err := cons.Start(ctx, svc.HandleStockConfirmed); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	pLow.Close()
	pLow.WaitClosed()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
