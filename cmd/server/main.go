package main

import (
	"log"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/mbenitez/tienda/internal/config"
	"github.com/mbenitez/tienda/internal/events"
	"github.com/mbenitez/tienda/internal/httpserver"
	"github.com/mbenitez/tienda/internal/logging"
	"github.com/mbenitez/tienda/internal/mail"
	"github.com/mbenitez/tienda/internal/repo"
	"github.com/mbenitez/tienda/internal/search"
	"github.com/mbenitez/tienda/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}

	var publisher service.EventPublisher
	if cfg.Kafka.Enabled {
		producer := events.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		publisher = producer
	}

	var (
		indexer  service.ProductIndexer
		searcher httpserver.Searcher
	)
	if cfg.ES.Enabled {
		client, err := search.NewClient(cfg)
		if err != nil {
			logger.Error("elasticsearch init failed", "error", err)
			os.Exit(1)
		}
		indexer = client
		searcher = client
	}

	mailer := mail.New(cfg)
	r := repo.New(db)

	users := &service.UserService{
		Repo:          r,
		Mailer:        mailer,
		Events:        publisher,
		JWTSecret:     []byte(cfg.JWT.Secret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
	}
	carts := &service.CartService{Repo: r}
	purchase := &service.PurchaseService{Repo: r, Mailer: mailer, Events: publisher}
	catalog := &service.CatalogService{Repo: r, Events: publisher, Indexer: indexer}
	messages := &service.MessageService{Repo: r}

	e := echo.New()
	e.HideBanner = true
	httpserver.Register(e, httpserver.Deps{
		Logger:    logger,
		DB:        db,
		Users:     users,
		Carts:     carts,
		Purchase:  purchase,
		Catalog:   catalog,
		Messages:  messages,
		Search:    searcher,
		JWTSecret: []byte(cfg.JWT.Secret),
	})

	logger.Info("server starting", "port", cfg.Server.Port)
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
