package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-auth/internal/config"
	"github.com/iliyamo/ecommerce-auth/internal/database"
	"github.com/iliyamo/ecommerce-auth/internal/handler"
	"github.com/iliyamo/ecommerce-auth/internal/mailer"
	"github.com/iliyamo/ecommerce-auth/internal/queue"
	"github.com/iliyamo/ecommerce-auth/internal/repository"
	"github.com/iliyamo/ecommerce-auth/internal/router"
	"github.com/iliyamo/ecommerce-auth/internal/service"
	"github.com/iliyamo/ecommerce-auth/internal/token"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	rolesRepo := repository.NewRoleRepo(db)
	devices := repository.NewDeviceRepo(db)
	tokens := repository.NewTokenRepo(db)
	codes := repository.NewCodeRepo(db)

	codec := token.NewCodec(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
	)

	publisher := queue.NewPublisher(cfg.RabbitURL)
	verification := service.NewVerificationService(codes, publisher, time.Duration(cfg.OTPTTLMin)*time.Minute)
	roles := service.NewRoleResolver(rolesRepo)
	auth := service.NewAuthService(users, devices, tokens, roles, verification, codec, cfg.BcryptCost)
	provider := service.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	google := service.NewGoogleService(provider, users, devices, roles, auth, cfg.BcryptCost)

	// Background delivery worker: drains otp.email and sends the codes
	// over SMTP, deduplicating broker redeliveries through Redis.
	sender := mailer.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; otp delivery dedup disabled")
	}
	go func() {
		if err := queue.StartOTPEmailConsumer(cfg.RabbitURL, sender, rdb); err != nil {
			log.Printf("otp consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	h := handler.NewAuthHandler(auth, google, cfg.GoogleClientRedirectURL)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, h, codec)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
