package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/database"
	"github.com/purefire/storefront-api/internal/handler"
	"github.com/purefire/storefront-api/internal/queue"
	"github.com/purefire/storefront-api/internal/repository"
	"github.com/purefire/storefront-api/internal/router"
	"github.com/purefire/storefront-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db, cfg.AdminDefaultPwd, cfg.BcryptCost); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil when Redis is unreachable

	accounts := repository.NewAccountRepo(db)
	sessions := repository.NewSessionRepo(db)
	admins := repository.NewAdminUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	products := repository.NewProductRepo(db)
	orders := repository.NewOrderRepo(db)
	keys := repository.NewAPIKeyRepo(db)
	audit := repository.NewAuditRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Deps{
		Cfg:      cfg,
		Redis:    rdb,
		Sessions: sessions,
		Admins:   admins,
		Keys:     keys,
		Audit:    audit,

		Auth:      handler.NewAuthHandler(cfg, accounts, sessions),
		Orders:    handler.NewOrderHandler(cfg, orders, service.NewOrderPublisher()),
		AdminAuth: handler.NewAdminAuthHandler(cfg, admins, tokens, audit),
		Products:  handler.NewProductHandler(cfg, products),
		Users:     handler.NewUserHandler(cfg, admins, audit),
		Bulk:      handler.NewBulkHandler(cfg, products, audit),
		AuditLogs: handler.NewAuditHandler(cfg, audit),
		APIKeys:   handler.NewAPIKeyHandler(cfg, keys, audit),
		AI:        handler.NewAIHandler(cfg, products),
	})

	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
