package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-erp-fulfillment/internal/cart"
	"github.com/ariefcatur/go-erp-fulfillment/internal/config"
	"github.com/ariefcatur/go-erp-fulfillment/internal/fulfillment"
	"github.com/ariefcatur/go-erp-fulfillment/internal/httpx"
	"github.com/ariefcatur/go-erp-fulfillment/internal/invoice"
	kafkax "github.com/ariefcatur/go-erp-fulfillment/internal/kafka"
	"github.com/ariefcatur/go-erp-fulfillment/internal/postgres"
	"github.com/ariefcatur/go-erp-fulfillment/internal/redisx"
	"github.com/ariefcatur/go-erp-fulfillment/internal/sequence"
	"github.com/ariefcatur/go-erp-fulfillment/internal/stock"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers (satu per topic)
	pInvoice := kafkax.NewProducer(cfg.KafkaBrokers, fulfillment.TopicInvoiceCreated, 1024)
	pInvoice.Start(ctx)
	pOrder := kafkax.NewProducer(cfg.KafkaBrokers, fulfillment.TopicOrderProcessed, 1024)
	pOrder.Start(ctx)
	pStock := kafkax.NewProducer(cfg.KafkaBrokers, fulfillment.TopicStockConfirmed, 1024)
	pStock.Start(ctx)

	// Repos & handlers
	seq := &sequence.Allocator{DB: db}
	ledger := &stock.Ledger{DB: db}
	invoices := &invoice.Repo{DB: db, TaxRateBP: cfg.TaxRateBP}
	carts := &cart.Repo{DB: db, TaxRateBP: cfg.TaxRateBP}
	ful := &fulfillment.Repo{DB: db, Seq: seq}

	router := httpx.NewRouter()
	ch := &httpx.CartHandler{
		Cart:     carts,
		Invoices: invoices,
		Ledger:   ledger,
		Producer: pInvoice,
		Service:  cfg.ServiceName,
	}
	ch.Register(router)
	fh := &httpx.FulfillmentHandler{
		Repo:          ful,
		ProducerOrder: pOrder,
		ProducerStock: pStock,
		Redis:         rdb,
		Service:       cfg.ServiceName,
	}
	fh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range []*kafkax.Producer{pInvoice, pOrder, pStock} {
		p.Close() // tutup inbox -> flush & close writer
	}
	cancel() // stop producer loops
	for _, p := range []*kafkax.Producer{pInvoice, pOrder, pStock} {
		p.WaitClosed() // drain
	}
}
