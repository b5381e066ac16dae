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

	"github.com/ariefcatur/go-resto-floor.git/internal/config"
	"github.com/ariefcatur/go-resto-floor.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-resto-floor.git/internal/kafka"
	"github.com/ariefcatur/go-resto-floor.git/internal/lifecycle"
	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
	"github.com/ariefcatur/go-resto-floor.git/internal/redisx"
	"github.com/ariefcatur/go-resto-floor.git/internal/remote"
	"github.com/ariefcatur/go-resto-floor.git/internal/state"
	"github.com/ariefcatur/go-resto-floor.git/internal/syncx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis (fallback cache)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := &redisx.Fallback{R: rdb}

	// Kafka producer (audit stream)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicAudit, 1024)
	prod.Start(ctx)

	// Remote system of record
	api := remote.NewClient(cfg.APIBaseURL, cfg.APIToken)

	store := state.NewStore()
	coord := &syncx.Coordinator{Remote: api, Store: store, Cache: cache}

	mgr := lifecycle.NewManager(api, store)
	mgr.Cache = cache
	mgr.Events = prod
	mgr.Service = cfg.ServiceName
	mgr.CanAdjustStock = api.HasSession()

	// initial sync; fall back to cached blobs when the remote is down
	initCtx, initCancel := context.WithTimeout(ctx, 15*time.Second)
	if _, err := coord.Refresh(initCtx); err != nil {
		log.Printf("initial refresh: %v, serving fallback cache", err)
		coord.RestoreFallback(initCtx)
	}
	initCancel()

	// periodic full refresh + reservation-expiry sweep
	go coord.Run(ctx, cfg.RefreshInterval)
	watcher := &syncx.StatusWatcher{Store: store, Remote: api, Events: prod, Service: cfg.ServiceName}
	go watcher.Run(ctx, cfg.StatusInterval)

	// HTTP facade
	router := httpx.NewRouter()
	fh := &httpx.FloorHandler{Store: store, Sync: coord, Orders: mgr}
	fh.Register(router)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

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
	prod.Close() // close inbox -> flush & close writer
	prod.WaitClosed()
}
