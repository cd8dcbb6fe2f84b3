package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/jretamal/comanda-pos/internal/config"
	"github.com/jretamal/comanda-pos/internal/database"
	"github.com/jretamal/comanda-pos/internal/handler"
	"github.com/jretamal/comanda-pos/internal/notify"
	"github.com/jretamal/comanda-pos/internal/occupancy"
	"github.com/jretamal/comanda-pos/internal/printing"
	"github.com/jretamal/comanda-pos/internal/queue"
	"github.com/jretamal/comanda-pos/internal/repository"
	"github.com/jretamal/comanda-pos/internal/router"
)

func main() {
	// Load a .env file when present; real deployments set the
	// environment directly and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	roomRepo := repository.NewRoomRepo(db)
	tableRepo := repository.NewTableRepo(db)
	orderRepo := repository.NewOrderRepo(db)

	occ := occupancy.NewManager(tableRepo, orderRepo)

	// Redis is optional: a nil client means the notification bridge
	// degrades to polling and Publish becomes a no-op.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("notify: redis unavailable, table feed falls back to polling")
	}
	bridge := notify.NewBridge(rdb, cfg.PushEnabled, cfg.PollInterval, func(ctx context.Context) {
		// The refresh itself is a no-op server-side: the signal exists
		// for connected viewers, which re-read through the API.  It is
		// logged so feed health is visible in operation.
		log.Printf("notify: table state refresh signal")
	})

	agent := printing.NewAgentClient(cfg.PrintAgentURL)
	coordinator := printing.NewCoordinator(agent, orderRepo, cfg.PrintTimeout)

	orderHandler := handler.NewOrderHandler(orderRepo, tableRepo, occ, bridge, cfg.RestaurantID, cfg.TaxRatePercent)
	roomHandler := handler.NewRoomHandler(roomRepo, tableRepo, occ, bridge)
	tableHandler := handler.NewTableHandler(tableRepo, occ, bridge)
	printHandler := handler.NewPrintHandler(orderRepo, coordinator, agent, cfg.KitchenPrinters, cfg.CounterPrinters)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAPI(e, orderHandler, roomHandler, tableHandler, printHandler, cfg.JWTSecret)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx)
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order-consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
