package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iamkrish/shop-management/internal/auth"
	"github.com/iamkrish/shop-management/internal/config"
	"github.com/iamkrish/shop-management/internal/database"
	"github.com/iamkrish/shop-management/internal/handler"
	"github.com/iamkrish/shop-management/internal/middleware"
	"github.com/iamkrish/shop-management/internal/queue"
	"github.com/iamkrish/shop-management/internal/repository"
	"github.com/iamkrish/shop-management/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	customers := repository.NewCustomerRepo(db)
	shopkeepers := repository.NewShopkeeperRepo(db)
	superusers := repository.NewSuperuserRepo(db)
	sessions := repository.NewSessionRepo(db)
	products := repository.NewProductRepo(db)
	categories := repository.NewCategoryRepo(db)
	orders := repository.NewOrderRepo(db)
	notifications := repository.NewNotificationRepo(db)

	verifier := auth.NewVerifier(superusers, shopkeepers, customers)
	manager := auth.NewManager(sessions, time.Duration(cfg.SessionTTLHours)*time.Hour)
	resolver := auth.NewResolver(sessions, customers, shopkeepers, superusers)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.ResolveSessions(resolver))

	cacheCfg := config.LoadCacheConfig()
	cache := middleware.NewRedisCache(cacheCfg, config.NewRedisClient())

	authHandler := handler.NewAuthHandler(verifier, manager, sessions)
	registerHandler := handler.NewRegisterHandler(cfg, customers, shopkeepers)
	productHandler := handler.NewProductHandler(products, categories)
	categoryHandler := handler.NewCategoryHandler(categories)
	orderHandler := handler.NewOrderHandler(orders, products)
	batchHandler := handler.NewBatchHandler()

	router.RegisterRoutes(e, authHandler, registerHandler, batchHandler)
	router.RegisterCatalog(e, productHandler, categoryHandler, cache)
	router.RegisterOrders(e, orderHandler, cache)

	// Background consumer for order events: appends to logs/orders.log and
	// records a notification per order. Runs its own reconnect loop.
	go func() {
		if err := queue.StartOrderConsumer(notifications); err != nil {
			log.Printf("order-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
