package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/roadshare/carpool-backend/internal/auth"
	"github.com/roadshare/carpool-backend/internal/config"
	"github.com/roadshare/carpool-backend/internal/database"
	"github.com/roadshare/carpool-backend/internal/geo"
	"github.com/roadshare/carpool-backend/internal/handler"
	"github.com/roadshare/carpool-backend/internal/queue"
	"github.com/roadshare/carpool-backend/internal/repository"
	"github.com/roadshare/carpool-backend/internal/router"
	"github.com/roadshare/carpool-backend/internal/service"
	"github.com/roadshare/carpool-backend/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()
	lg := logger.New("carpool")

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	rides := repository.NewRideRepo(db)
	requests := repository.NewJoinRequestRepo(db)
	ratings := repository.NewRatingRepo(db)
	codes := repository.NewVerificationCodeRepo(db)

	// Failed login attempts live in Redis when available so limits hold
	// across instances; otherwise the in-process store serves one instance.
	var attempts auth.AttemptStore = auth.NewMemoryStore()
	if rc := config.NewRedisClient(); rc != nil {
		attempts = auth.NewRedisStore(rc, cfg.LoginWindow)
		lg.Info("login governor backed by redis")
	} else {
		lg.Warn("redis unavailable, login governor is process-local")
	}
	tracker := auth.NewTracker(attempts,
		auth.WithLimit(cfg.LoginMaxAttempts), auth.WithWindow(cfg.LoginWindow))

	// Distances come from the route provider when a key is configured and
	// fall back to great-circle math otherwise. Either way results are
	// memoized per location pair.
	var calc geo.DistanceCalculator = geo.HaversineCalculator{}
	if cfg.GoogleMapsKey != "" {
		gc, err := geo.NewGoogleCalculator(cfg.GoogleMapsKey)
		if err != nil {
			log.Fatalf("init maps client: %v", err)
		}
		calc = gc
	}
	calc = geo.NewCachedCalculator(calc)

	events := queue.NewPublisher(cfg.RabbitURL, lg)
	go queue.StartNotificationConsumer(cfg.RabbitURL, lg)
	go queue.StartVerificationMailConsumer(cfg.RabbitURL, lg)

	verification := service.NewVerificationService(codes, users, events, cfg.BcryptCost, lg)
	authSvc := service.NewAuthService(users, tracker, verification,
		cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost, lg)
	rideSvc := service.NewRideService(rides, requests, ratings, events, calc, lg)
	requestSvc := service.NewRequestService(db, rides, requests, events, lg)
	ratingSvc := service.NewRatingService(ratings, lg)

	cleanup := service.NewCleanupService(rides, requests, codes, cfg.CleanupInterval, lg)
	go cleanup.Run(context.Background())

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, verification), cfg.JWTSecret)
	router.RegisterDriver(e, handler.NewDriverHandler(rideSvc, requestSvc), cfg.JWTSecret)
	router.RegisterPassenger(e, handler.NewPassengerHandler(rideSvc, requestSvc), cfg.JWTSecret)
	router.RegisterRatings(e, handler.NewRatingHandler(ratingSvc), cfg.JWTSecret)

	addr := ":" + cfg.Port
	lg.Info("server starting", logger.String("addr", addr), logger.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
