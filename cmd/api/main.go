package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/learnhub/user-service/internal/application/otp"
	"github.com/learnhub/user-service/internal/config"
	"github.com/learnhub/user-service/internal/infrastructure/dynamo"
	googleinfra "github.com/learnhub/user-service/internal/infrastructure/google"
	jwtinfra "github.com/learnhub/user-service/internal/infrastructure/jwt"
	"github.com/learnhub/user-service/internal/infrastructure/memory"
	"github.com/learnhub/user-service/internal/infrastructure/smtp"
	"github.com/learnhub/user-service/internal/infrastructure/sns"
	transporthttp "github.com/learnhub/user-service/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider not available: %v", err)
	}

	// Pending-OTP store: durable DynamoDB table or an in-process map.
	var otpStore otp.Store
	if cfg.OTPStore == "dynamo" {
		otpStore = dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.PendingOTPs)
	} else {
		otpStore = memory.NewOTPStore()
	}

	// OTP delivery channel: SMTP email or SNS text messages.
	var otpNotifier otp.Notifier
	if cfg.NotifyChannel == "sms" {
		smsSender, err := sns.NewSender(cfg)
		if err != nil {
			log.Fatalf("SNS sender not available: %v", err)
		}
		otpNotifier = sns.NewNotifier(smsSender)
	} else {
		otpNotifier = smtp.NewNotifier(smtp.NewMailer(cfg))
	}

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OTPStore:    otpStore,
		OTPNotifier: otpNotifier,
		JWTProvider: jwtProvider,
	}
	if cfg.GoogleClientID != "" {
		deps.GoogleVerifier = googleinfra.NewVerifier(cfg.GoogleClientID)
	} else {
		log.Println("WARN: GOOGLE_CLIENT_ID not set, Google sign-in profiles are trusted as-is")
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
