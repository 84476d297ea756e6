package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"tax-agent/config"
	httpLayer "tax-agent/http"
	"tax-agent/repository"
	"tax-agent/service"
)

var (
	configPath = flag.String("config", "", "config file path (empty means defaults plus environment)")

	log = logrus.WithField("module", "main")
)

type dbPinger struct {
	db *sql.DB
}

func (p dbPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func main() {
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("config load err: %v", err)
	}
	if err := config.SetupLogging(cfg.Log); err != nil {
		log.Fatalf("logging setup err: %v", err)
	}

	years, err := service.NewTaxYearRegistry(cfg.TaxYears, cfg.DefaultTaxYear)
	if err != nil {
		log.Fatalf("tax years: %v", err)
	}

	checks := map[string]httpLayer.Pinger{}

	var calcRepo repository.CalculationRepository = repository.NewCalculationRepositoryMemoryWithCapacity(service.MaxHistoryLimit)
	var rateRepo repository.RateRepository = repository.NewRateRepositoryMemory()
	if cfg.Database.Enabled {
		db, err := openDatabase(cfg.Database)
		if err != nil {
			log.Fatalf("database connect err: %v", err)
		}
		defer db.Close()
		calcRepo = repository.NewPostgresCalculationRepository(db)
		rateRepo = repository.NewPostgresRateRepository(db)
		checks["postgres"] = dbPinger{db: db}
		log.Info("using PostgreSQL for calculation history and rate tables")
	}

	var cache repository.CacheRepository = repository.NewMemoryCacheWithSize(cfg.Cache.MemoryEntries)
	if cfg.Redis.Enabled {
		redisCache := repository.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL())
		defer redisCache.Close()
		cache = redisCache
		checks["redis"] = redisCache
		log.WithField("addr", cfg.Redis.Addr).Info("using Redis result cache")
	}

	taxService := service.NewTaxService(years, calcRepo, cache)
	investmentService := service.NewInvestmentService(years, rateRepo)
	explanationService := service.NewExplanationService(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout())
	if !explanationService.Enabled() {
		log.Info("no AI API key configured, explanations use templates")
	}

	var rateLimiter *httpLayer.RateLimiter
	if cfg.RateLimit.IsEnabled() {
		rateLimiter = httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Window())
		defer rateLimiter.Stop()
	} else {
		log.Warn("rate limiting disabled")
	}

	router := httpLayer.NewRouter(httpLayer.RouterConfig{
		Tax:            httpLayer.NewTaxHandler(taxService, explanationService),
		Investment:     httpLayer.NewInvestmentHandler(investmentService),
		Health:         httpLayer.NewHealthHandler(checks),
		RateLimiter:    rateLimiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  cfg.Server.IdleTimeout(),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":             server.Addr,
			"default_tax_year": years.DefaultYear(),
		}).Info("tax API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.WithError(err).Error("server failed")
		return
	case <-quit:
		log.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}

	log.Info("server exited")
}
