package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resqlink/config"
	"resqlink/database"
	"resqlink/interfaces"
	"resqlink/routes"
	"resqlink/utils"
	"resqlink/websocket"
	"resqlink/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const version = "1.0.0"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	setupLogger(cfg)

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	defer database.Disconnect()

	// Initialize Redis
	redisClient := config.InitRedis(cfg)
	defer redisClient.Close()

	// Push provider
	var fcmClient interfaces.MulticastSender
	if cfg.FirebaseCredentials != "" {
		client, err := utils.NewFCMClient(context.Background(), cfg.FirebaseCredentials)
		if err != nil {
			logrus.Warnf("Firebase initialization failed, push disabled: %v", err)
		} else {
			fcmClient = client
		}
	} else {
		logrus.Warn("Firebase credentials not configured, push disabled")
	}

	// SMS escalation provider
	var smsClient interfaces.SMSSender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		smsClient = utils.NewSMSClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	}

	// Live feed hub
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	deps := &routes.Dependencies{
		Config:      cfg,
		DB:          db,
		MongoClient: database.GetClient(),
		Redis:       redisClient,
		Hub:         hub,
		FCMClient:   fcmClient,
		SMSClient:   smsClient,
		Version:     version,
	}

	svcs := routes.BuildServices(deps)

	// The worker delivers through the notification service and feeds on
	// events from the emergency service, so the queue is attached after
	// both exist.
	worker := workers.NewDispatchWorker(svcs.Notification, cfg.DispatchQueueSize, cfg.DispatchWorkers)
	worker.Start()
	defer worker.Stop()
	svcs.Emergency.AttachQueue(worker)

	router := routes.SetupRoutes(deps, svcs)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logrus.Infof("ResQLink API starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("Server shutdown complete")
}

func setupLogger(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	if cfg.Environment == "development" {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	}
}
