package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"maskchain/internal/audit"
	"maskchain/internal/directory"
	"maskchain/internal/ledger"
	"maskchain/internal/offers"
	"maskchain/internal/orders"
	"maskchain/internal/platform/config"
	"maskchain/internal/platform/httpserver"
	"maskchain/internal/platform/logger"
	"maskchain/internal/platform/metrics"
	"maskchain/internal/platform/middleware"
	platformpostgres "maskchain/internal/platform/postgres"
	platformredis "maskchain/internal/platform/redis"
	"maskchain/internal/settlement"
	"maskchain/internal/settlement/chain"
	"maskchain/internal/stock"
	httpapi "maskchain/internal/transport/http"
)

// main wires the stores, the ledger gateway and the services, then runs the
// HTTP server until a shutdown signal. Business logic lives in the internal
// packages; everything here is assembly.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if cfg.LedgerBaseURL == "" {
		log.Error("LEDGER_API_URL is required")
		os.Exit(1)
	}

	m := metrics.New()
	ledgerClient := ledger.New(cfg.LedgerBaseURL, cfg.LedgerTimeout, log, m)

	// Stores: Postgres when a DSN is configured, in-memory otherwise.
	var (
		orgStore      directory.OrganizationStore
		userStore     directory.UserStore
		ministryStore orders.MinistryOrderStore
		hospitalStore orders.HospitalOrderStore
		offerStore    offers.Store
		paymentStore  settlement.PaymentStore
		letterStore   settlement.LetterStore
		dealStore     settlement.DealStore
		deliveryStore settlement.DeliveryStore
		journalStore  chain.ProgressStore
	)
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("ping database", "error", err)
			os.Exit(1)
		}
		if err := platformpostgres.Migrate(context.Background(), db); err != nil {
			log.Error("migrate database", "error", err)
			os.Exit(1)
		}
		orgStore = directory.NewPostgresOrganizationStore(db)
		userStore = directory.NewPostgresUserStore(db)
		ministryStore = orders.NewPostgresMinistryOrderStore(db)
		hospitalStore = orders.NewPostgresHospitalOrderStore(db)
		offerStore = offers.NewPostgresStore(db)
		paymentStore = settlement.NewPostgresPaymentStore(db)
		letterStore = settlement.NewPostgresLetterStore(db)
		dealStore = settlement.NewPostgresDealStore(db)
		deliveryStore = settlement.NewPostgresDeliveryStore(db)
		journalStore = chain.NewPostgresProgressStore(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		orgStore = directory.NewInMemoryOrganizationStore()
		userStore = directory.NewInMemoryUserStore()
		ministryStore = orders.NewInMemoryMinistryOrderStore()
		hospitalStore = orders.NewInMemoryHospitalOrderStore()
		offerStore = offers.NewInMemoryStore()
		paymentStore = settlement.NewInMemoryPaymentStore()
		letterStore = settlement.NewInMemoryLetterStore()
		dealStore = settlement.NewInMemoryDealStore()
		deliveryStore = settlement.NewInMemoryDeliveryStore()
		journalStore = chain.NewInMemoryProgressStore()
	}

	// Per-order chain lock: Redis when configured, in-process otherwise.
	var locker chain.Locker = chain.NewKeyedMutex()
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		locker = chain.NewRedisLocker(redisClient.Client, 30*time.Second)
	} else {
		log.Warn("REDIS_URL not set, chain lock is process-local")
	}

	// Audit trail: Kafka when brokers are configured, in-memory otherwise.
	var sink audit.Sink = audit.NewMemorySink()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(context.Background(), cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		sink = kafkaSink
	} else {
		log.Warn("KAFKA_BROKERS not set, audit events stay in memory")
	}
	auditPub := audit.NewPublisher(sink, log)

	directorySvc := directory.NewService(orgStore, userStore, log)
	ordersSvc := orders.NewService(ministryStore, hospitalStore, paymentStore, ledgerClient, directorySvc, auditPub, log)
	stockSvc := stock.NewService(ledgerClient, directorySvc, log)
	offersSvc := offers.NewService(offerStore, ledgerClient, directorySvc, log)
	settlementSvc := settlement.NewService(paymentStore, letterStore, dealStore, deliveryStore, ledgerClient, directorySvc, log)
	orchestrator := chain.NewOrchestrator(journalStore, paymentStore, letterStore, dealStore, deliveryStore,
		ledgerClient, directorySvc, locker, m, auditPub, log)

	var validator middleware.Validator
	if cfg.JWTSigningKey != "" {
		validator = middleware.NewHMACValidator(cfg.JWTSigningKey)
	} else {
		log.Warn("JWT_SIGNING_KEY not set, mutating routes are open")
	}

	health := func() error {
		if db != nil {
			if err := db.Ping(); err != nil {
				return err
			}
		}
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		}
		return nil
	}

	router := httpapi.NewRouter(log, m, validator, health,
		httpapi.NewDirectoryHandler(directorySvc, log),
		httpapi.NewStockHandler(stockSvc, log),
		httpapi.NewOrdersHandler(ordersSvc, log),
		httpapi.NewOffersHandler(offersSvc, log),
		httpapi.NewSettlementHandler(settlementSvc, orchestrator, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	// Bootstrap the ledger admin session once at startup. Failure is logged
	// inside Ensure and does not stop the server.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), cfg.LedgerTimeout)
	ledgerClient.Session().Ensure(startupCtx)
	cancelStartup()
	sessionOutcome := "failed"
	if ledgerClient.Session().Bootstrapped() {
		sessionOutcome = "bootstrapped"
	}
	auditPub.Emit(audit.Event{Action: audit.ActionLedgerSession, Subject: "admin", Outcome: sessionOutcome})

	log.Info("starting maskchain", "addr", cfg.Addr, "ledger", cfg.LedgerBaseURL,
		"session_bootstrapped", ledgerClient.Session().Bootstrapped())

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := auditPub.Close(ctx); err != nil {
		log.Warn("audit publisher close", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
