package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/railbooking/api"
	"github.com/Domenick1991/railbooking/config"
	reservationsapi "github.com/Domenick1991/railbooking/internal/api/reservations_service_api"
	"github.com/Domenick1991/railbooking/internal/auth"
	"github.com/Domenick1991/railbooking/internal/bootstrap"
	"github.com/Domenick1991/railbooking/internal/cache"
	"github.com/Domenick1991/railbooking/internal/fare"
	"github.com/Domenick1991/railbooking/internal/logger"
	"github.com/Domenick1991/railbooking/internal/service/booking"
	"github.com/Domenick1991/railbooking/internal/service/customers"
	"github.com/Domenick1991/railbooking/internal/service/trains"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Log)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open storage")
	}
	defer store.Close()

	publisher, err := bootstrap.NewPublisher(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("connect event broker")
	}
	defer publisher.Close()

	fares := fare.NewCalculator()
	bookingOpts := []booking.BookingServiceOption{booking.WithPublisher(publisher)}
	var trainsCache trains.Cache
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.CacheTTL())
		if err := redisCache.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unavailable, running without cache and distributed locks")
			_ = redisCache.Close()
		} else {
			defer redisCache.Close()
			trainsCache = redisCache
			bookingOpts = append(bookingOpts, booking.WithCache(redisCache))
		}
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("jwt_secret not set, issued tokens will not survive a restart")
	}
	tokens := auth.NewManager(secret, cfg.Auth.TokenTTL())

	trainService := trains.NewTrainService(store.Trains, trainsCache, fares, log)
	customerService := customers.NewCustomerService(store.Customers, tokens, cfg.Auth.BcryptCost, log)
	bookingService := booking.NewBookingService(store.Reservations, store.Trains, fares, cfg.Booking, log, bookingOpts...)

	router := api.NewRouter(cfg.HTTP, cfg.Auth, api.Services{
		Trains:    trainService,
		Customers: customerService,
		Booking:   bookingService,
		Tokens:    tokens,
	}, log)

	handlers := bootstrap.Handlers{
		GRPC: reservationsapi.NewServer(customerService, trainService, bookingService),
		REST: router,
		Interceptors: []grpc.UnaryServerInterceptor{
			reservationsapi.AuthInterceptor(tokens, cfg.Auth.RequireToken),
		},
	}
	if err := bootstrap.Run(ctx, cfg, handlers, log); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
