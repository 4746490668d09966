package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ccrew/flightinventory/config"
	"github.com/ccrew/flightinventory/internal/auth"
	"github.com/ccrew/flightinventory/internal/bootstrap"
	"github.com/ccrew/flightinventory/internal/cache"
	"github.com/ccrew/flightinventory/internal/kafka"
	"github.com/ccrew/flightinventory/internal/repository"
	"github.com/ccrew/flightinventory/internal/service/flights"
	"github.com/ccrew/flightinventory/internal/service/inventory"
	"github.com/ccrew/flightinventory/internal/service/pricing"
	"github.com/ccrew/flightinventory/internal/service/reservation"
	"github.com/ccrew/flightinventory/internal/tracing"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}

	if shutdown := tracing.Init("flightinventory"); shutdown != nil {
		defer shutdown()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	offerCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.OffersCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	fareRepo := repository.NewFareRepository(pool)
	passengerRepo := repository.NewPassengerRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)

	priceResolver := pricing.NewResolver(fareRepo)
	availability := inventory.NewCalculator(priceResolver, flightRepo, reservationRepo)
	flightService := flights.NewFlightService(flightRepo, availability, offerCache)
	reservationService := reservation.NewReservationService(
		reservationRepo,
		passengerRepo,
		flightRepo,
		availability,
		priceResolver,
		producer,
		log,
		cfg.Kafka.ReservationsTopic,
		cfg.Booking.CommitRetries,
		time.Duration(cfg.Booking.ReverseCutoffMinutes)*time.Minute,
		reservation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	authService := auth.NewService(cfg.Auth.JWTSecret)

	if err := bootstrap.Run(ctx, cfg, log, authService, flightService, reservationService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
