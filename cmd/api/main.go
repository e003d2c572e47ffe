package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ebrahimbeiati/inventory-management/internal/config"
	"github.com/ebrahimbeiati/inventory-management/internal/handler"
	"github.com/ebrahimbeiati/inventory-management/internal/infra/db"
	"github.com/ebrahimbeiati/inventory-management/internal/infra/events"
	"github.com/ebrahimbeiati/inventory-management/internal/infra/ratelimit"
	infraRepo "github.com/ebrahimbeiati/inventory-management/internal/infra/repository"
	"github.com/ebrahimbeiati/inventory-management/internal/infra/token"
	"github.com/ebrahimbeiati/inventory-management/internal/logging"
	"github.com/ebrahimbeiati/inventory-management/internal/middleware"
	"github.com/ebrahimbeiati/inventory-management/internal/server"
	"github.com/ebrahimbeiati/inventory-management/internal/usecase"
	auth "github.com/ebrahimbeiati/inventory-management/internal/usecase/auth_usecase"
	"github.com/ebrahimbeiati/inventory-management/internal/validator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envは無くてもよい（コンテナでは環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//ログイン制限（Redisが無ければ無効）
	var limiter middleware.Limiter
	if rdb := ratelimit.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword); rdb != nil {
		defer func() { _ = rdb.Close() }()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow)
		logger.Info("login rate limit enabled", zap.String("redis", cfg.RedisAddr))
	} else if cfg.RedisAddr != "" {
		logger.Warn("redis unavailable, login rate limit disabled", zap.String("redis", cfg.RedisAddr))
	}

	//ユーザーイベント（RabbitMQが無ければ送らない）
	var publisher usecase.UserEventPublisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.UserEventsQueue)
		if err != nil {
			logger.Warn("rabbitmq unavailable, user events disabled", zap.Error(err))
		} else {
			defer func() { _ = p.Close() }()
			publisher = p
		}
	}

	//usecaseに渡す部品
	idGen := &auth.UUIDGenerator{}
	clock := &auth.RealClock{}
	hasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()
	jwtService := token.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	userValidator := validator.NewUserValidator()

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, verifier, jwtService, userValidator, clock, publisher, logger)
	userUC := usecase.NewUserUsecase(userRepo, txManager, hasher, userValidator, idGen, clock, publisher, logger)

	//Handler生成
	e, err := server.New(server.Deps{
		Auth:     handler.NewAuthHandler(authUC),
		Users:    handler.NewUserHandler(userUC),
		Verifier: jwtService,
		Limiter:  limiter,
		Logger:   logger,
	}, []string{cfg.FEURL})
	if err != nil {
		logger.Fatal("build server", zap.Error(err))
	}

	//Server起動
	addr := ":" + cfg.Port
	logger.Info("server starting", zap.String("addr", addr))
	if err := server.Start(ctx, e, addr, cfg.ShutdownTimeout); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
