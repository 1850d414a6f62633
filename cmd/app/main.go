package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mitra-support/internal/config"
	"mitra-support/internal/domain/ports"
	domsignal "mitra-support/internal/domain/signal"
	aiAdapters "mitra-support/internal/infra/adapters/ai"
	pg "mitra-support/internal/infra/db/postgres"
	memlock "mitra-support/internal/infra/lock"
	"mitra-support/internal/infra/logging"
	"mitra-support/internal/infra/metrics"
	red "mitra-support/internal/infra/redis"
	"mitra-support/internal/infra/web"
	"mitra-support/internal/infra/worker"
	"mitra-support/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (memory locks, noop AI fallback)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis (optional in dev) ----
	var locker ports.KeyLocker
	var limiter usecase.RateLimiter
	var summaryCache *red.SummaryCache
	if cfg.Redis.Addr != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		locker = red.NewLocker(redisClient)
		limiter = red.NewMessageRateLimiter(redisClient, cfg.Chat.MessagesPerMinute)
		summaryCache = red.NewSummaryCache(redisClient, cfg.Redis.CacheTTL)
	} else if cfg.Runtime.Dev {
		logger.Warn().Msg("redis not configured; using in-process locks, no cache, no rate limit")
		locker = memlock.NewMemoryLocker()
	} else {
		logger.Fatal().Msg("redis.addr is required outside dev mode")
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	sessionRepo := pg.NewSessionRepo(pool)
	crisisRepo := pg.NewCrisisEventRepo(pool)
	summaryRepo := pg.NewUserSummaryRepo(pool, summaryCache)

	// ---- Text generator (Gemini -> OpenAI -> noop in dev) ----
	gen := aiAdapters.NewFailoverAdapter(logger)
	if cfg.AI.GeminiKey != "" {
		g, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.GeminiModel, cfg.AI.MaxOutTokens, cfg.AI.SummaryTokenBudget)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		gen.Add("gemini", g)
	}
	if cfg.AI.OpenAIKey != "" {
		o, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel, cfg.AI.MaxOutTokens, cfg.AI.SummaryTokenBudget)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		gen.Add("openai", o)
	}
	if cfg.Runtime.Dev {
		gen.Add("noop", aiAdapters.NewNoopGenerator())
	}

	// ---- Workers ----
	pool2 := worker.NewPool(cfg.Chat.Workers, logger)
	pool2.Start(ctx)
	defer pool2.Stop()

	// ---- Use cases ----
	lexicon := domsignal.DefaultLexicon()
	summaryUC := usecase.NewSummaryUseCase(summaryRepo, sessionRepo, cfg.Chat.RealtimeWindowSessions, logger)
	crisisUC := usecase.NewCrisisUseCase(crisisRepo, logger)
	userUC := usecase.NewUserUseCase(userRepo, sessionRepo, summaryRepo, logger)
	chatUC := usecase.NewChatUseCase(
		sessionRepo, userRepo, gen, crisisUC, summaryUC,
		lexicon, locker, cfg.Redis.LockTTL, limiter, pool2, cfg.Chat.MaxMessageLen, logger,
	)
	dashboardUC := usecase.NewDashboardUseCase(sessionRepo, summaryUC, logger)

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	server := web.NewServer(chatUC, dashboardUC, crisisUC, userUC, auth, logger)
	httpSrv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     server.Router(),
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:     metricsMux,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()
	go func() {
		logger.Info().Int("port", cfg.Server.MetricsPort).Msg("metrics server listening")
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("metrics server")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("metrics shutdown")
	}
}
