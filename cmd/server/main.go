package main // Entry point package

import (
	"context"
	"log" // Logging library
	"time"

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/cinetick/cinema-booking/internal/config" // Internal config loader
	"github.com/cinetick/cinema-booking/internal/database"
	"github.com/cinetick/cinema-booking/internal/handler"
	"github.com/cinetick/cinema-booking/internal/hold"
	"github.com/cinetick/cinema-booking/internal/holdstore"
	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/payment"
	"github.com/cinetick/cinema-booking/internal/queue"
	"github.com/cinetick/cinema-booking/internal/repository"
	"github.com/cinetick/cinema-booking/internal/router" // Internal router setup
	"github.com/cinetick/cinema-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env vars
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs seat holds, rate limiting and the response cache.  A
	// nil client disables the middleware, but holds are load-bearing, so
	// startup fails without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: connection failed, seat holds need it")
	}

	publisher := queue.NewPublisher()
	go func() {
		if err := queue.StartConfirmationConsumer(); err != nil {
			log.Printf("confirmation consumer stopped: %v", err)
		}
	}()

	holds := holdstore.NewRedisStore(rdb)
	coordinator := hold.NewCoordinator(holds, publisher)

	users := repository.NewUserRepo(db)
	catalog := repository.NewCatalogRepo(db)
	seats := repository.NewScheduleSeatRepo(db)
	orders := repository.NewOrderRepo(db)
	transactions := repository.NewTransactionRepo(db)
	summaries := repository.NewSummaryRepo(db)

	gateways := payment.Registry{
		model.MethodCash:    payment.NewCashGateway(),
		model.MethodMomo:    payment.NewMomoGateway(payment.MomoConfig(cfg.Momo)),
		model.MethodPaypal:  payment.NewPayPalGateway(payment.PayPalConfig(cfg.PayPal)),
		model.MethodVisa:    payment.NewVisaGateway(payment.VisaConfig{SecretKey: cfg.Visa.SecretKey, SuccessURL: cfg.Visa.SuccessURL, CancelURL: cfg.Visa.CancelURL}),
		model.MethodVnpay:   payment.NewVnpayGateway(payment.VnpayConfig(cfg.Vnpay)),
		model.MethodZalopay: payment.NewZalopayGateway(payment.ZalopayConfig(cfg.Zalopay)),
	}
	vnpay := gateways[model.MethodVnpay].(*payment.VnpayGateway)

	finalizer := payment.NewFinalizer(db, transactions, orders, seats, users, catalog, gateways, publisher, cfg.QRSecret)
	orderService := service.NewOrderService(db, users, catalog, seats, orders, transactions, coordinator, gateways, publisher, cfg.QRSecret)
	reportService := service.NewReportService(orders, summaries, gateways)

	// Reconcile the previous day once every 24h; the admin route covers
	// reruns and backfills.
	go reportService.StartDailyTicker(context.Background(), 24*time.Hour)

	e := echo.New()
	router.RegisterRoutes(e)
	seatHandler := handler.NewScheduleSeatHandler(seats, holds, publisher, cfg.HoldTTL)
	router.RegisterPublic(e, seatHandler, rdb)
	router.RegisterHolds(e, seatHandler, cfg.JWTSecret)
	router.RegisterOrders(e, handler.NewOrderHandler(orderService), cfg.JWTSecret)
	router.RegisterPaymentReturns(e, handler.NewPaymentReturnHandler(finalizer, vnpay), rdb)
	router.RegisterAdmin(e, handler.NewReportHandler(reportService), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
