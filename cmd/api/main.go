package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samkrish13/AgriBulkMarket/internal/auth"
	"github.com/samkrish13/AgriBulkMarket/internal/config"
	"github.com/samkrish13/AgriBulkMarket/internal/googleapi"
	"github.com/samkrish13/AgriBulkMarket/internal/httpx"
	kafkax "github.com/samkrish13/AgriBulkMarket/internal/kafka"
	"github.com/samkrish13/AgriBulkMarket/internal/market"
	"github.com/samkrish13/AgriBulkMarket/internal/notify"
	"github.com/samkrish13/AgriBulkMarket/internal/payments"
	"github.com/samkrish13/AgriBulkMarket/internal/postgres"
	"github.com/samkrish13/AgriBulkMarket/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for lifecycle events. Shut down via Close/WaitClosed so
	// queued events are flushed before exit.
	prod := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderEvents, 1024, log)
	prod.Start(context.Background())

	// Meet invites are optional; without credentials approvals proceed
	// without a link.
	var meet market.MeetCreator
	if cfg.GoogleCredentialsFile != "" {
		ms, err := googleapi.NewMeetService(ctx, cfg.GoogleCredentialsFile)
		if err != nil {
			log.Warn("meet service unavailable", zap.Error(err))
		} else {
			meet = ms
		}
	}

	repo := &market.Repo{DB: db}
	svc := &market.Service{
		Store:       repo,
		Producer:    prod,
		Meet:        meet,
		Log:         log,
		ServiceName: cfg.ServiceName,
		AdminEmail:  cfg.AdminEmail,
	}
	notifyRepo := &notify.Repo{DB: db}
	notifySvc := &notify.Service{Store: notifyRepo, Redis: rdb, Log: log}

	router := httpx.NewRouter()
	authn := auth.Middleware(cfg.JWTSecret)

	(&httpx.OrdersHandler{Service: svc, Lister: repo, Redis: rdb, Log: log}).Register(router, authn)
	(&httpx.ListingsHandler{Store: repo, Log: log}).Register(router, authn)
	(&httpx.NotificationsHandler{Store: notifyRepo, Service: notifySvc, Log: log}).Register(router, authn)
	(&httpx.PaymentsHandler{
		KeyID:  cfg.RazorpayKeyID,
		Secret: cfg.RazorpayKeySecret,
		Store:  &payments.Repo{DB: db},
		Log:    log,
	}).Register(router, authn)
	(&httpx.DeliveryHandler{
		Distance: &googleapi.DistanceClient{APIKey: cfg.GoogleMapsAPIKey, RatePerKm: cfg.DeliveryRatePerKm},
		Log:      log,
	}).Register(router, authn)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	prod.WaitClosed()
}
