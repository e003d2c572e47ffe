package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ebrahimbeiati/inventory-management/internal/config"
	"github.com/ebrahimbeiati/inventory-management/internal/infra/db"
	"github.com/ebrahimbeiati/inventory-management/internal/infra/events"
	infraRepo "github.com/ebrahimbeiati/inventory-management/internal/infra/repository"
	"github.com/ebrahimbeiati/inventory-management/internal/logging"
	"github.com/ebrahimbeiati/inventory-management/internal/usecase"
	auth "github.com/ebrahimbeiati/inventory-management/internal/usecase/auth_usecase"
	"github.com/ebrahimbeiati/inventory-management/internal/validator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// 初期管理者を作る。ADMIN_EMAIL / ADMIN_PASSWORD は必須
func main() {
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

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Admin User"
	}
	if email == "" || password == "" {
		logger.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	userUC := usecase.NewUserUsecase(
		infraRepo.NewUserGormRepository(gormDB),
		infraRepo.NewTxManagerGorm(gormDB),
		auth.NewBcryptPasswordHasher(cfg.BcryptCost),
		validator.NewUserValidator(),
		&auth.UUIDGenerator{},
		&auth.RealClock{},
		events.NoopPublisher{},
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, created, err := userUC.EnsureAdmin(ctx, usecase.CreateUserInput{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		logger.Fatal("create admin", zap.Error(err))
	}

	if !created {
		fmt.Printf("Admin user already exists: %s\n", user.Email)
		return
	}
	fmt.Printf("Admin user created: %s <%s> role=%s\n", user.Name, user.Email, user.Role)
}
