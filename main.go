package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"urgentsales/server/internal/api"
	"urgentsales/server/internal/api/handlers"
	"urgentsales/server/internal/auth"
	"urgentsales/server/internal/cache"
	"urgentsales/server/internal/config"
	"urgentsales/server/internal/db"
	"urgentsales/server/internal/email"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/notify"
	"urgentsales/server/internal/services"
	"urgentsales/server/internal/storage"
	"urgentsales/server/internal/store/mongostore"
	"urgentsales/server/internal/store/pgstore"
	"urgentsales/server/internal/tasks"
)

func main() {
	runMode := flag.String("mode", "all", "run mode: api, bg or all")
	flag.Parse()
	if *runMode != "api" && *runMode != "bg" && *runMode != "all" {
		log.Fatalf("unknown run mode %q", *runMode)
	}

	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, mongoDB, err := db.ConnectMongo(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("connecting to mongo: %v", err)
	}
	defer db.DisconnectMongo(mongoClient)

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("connecting to postgres: %v", err)
	}
	defer pgPool.Close()

	rdb, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("connecting to redis: %v", err)
	}
	defer cache.DisconnectRedis(rdb)

	urlCache := cache.NewURLCache(rdb, cfg.SignedURLTTL/2)
	s3Client, err := storage.NewClient(ctx, cfg.AwsRegion, cfg.AwsAccessKeyID,
		cfg.AwsSecretAccessKey, cfg.AwsS3Bucket, urlCache, cfg.SignedURLTTL)
	if err != nil {
		log.Fatalf("setting up s3: %v", err)
	}

	// Both listing sources behind one merged read model.
	primary := mongostore.New(mongoDB)
	free := pgstore.New(pgPool)
	merger := listing.NewMerger(primary, free)

	taskClient := tasks.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer taskClient.Close()

	userService := services.NewUserService(mongoDB, cfg.JwtSecret, cfg.JwtTTL)
	subscriptionService := services.NewSubscriptionService(mongoDB, userService, primary,
		cfg.FreeTierListings, cfg.ListingRate, cfg.BasePeriodDays, cfg.InvoiceDueDays)
	notifier := notify.NewNotifier(cfg.AppName, userService, taskClient)
	listingService := services.NewListingService(merger, primary, free, subscriptionService, notifier)
	inquiryService := services.NewInquiryService(mongoDB, merger, taskClient)

	var sender email.Sender = &email.LoggingSender{}
	if cfg.SmtpHost != "" {
		sender = &email.SMTPSender{
			Host:     cfg.SmtpHost,
			Port:     strconv.Itoa(cfg.SmtpPort),
			Username: cfg.SmtpUsername,
			Password: cfg.SmtpPassword,
			From:     cfg.SmtpFromAddress,
		}
	}
	whatsapp := notify.NewWhatsAppClient(cfg.WhatsAppAPIURL, cfg.WhatsAppAPIToken, cfg.WhatsAppSender)

	var processor *tasks.Processor
	if *runMode == "bg" || *runMode == "all" {
		processor = tasks.NewProcessor(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			cfg.AppName, cfg.ImageMaxDimension, sender, whatsapp, s3Client,
			primary, mongoDB, merger, userService, subscriptionService)
		go func() {
			if err := processor.Start(); err != nil {
				log.Fatalf("task processor: %v", err)
			}
		}()
	}

	var server *http.Server
	if *runMode == "api" || *runMode == "all" {
		ownershipCodes := auth.NewOwnershipCodes(cfg.JwtSecret, cfg.OwnershipOTPTTL)
		router := api.NewRouter(cfg, api.Handlers{
			Listings:  handlers.NewListingHandler(listingService, s3Client),
			Admin:     handlers.NewAdminHandler(listingService),
			Users:     handlers.NewUserHandler(userService),
			Inquiries: handlers.NewInquiryHandler(inquiryService),
			Ownership: handlers.NewOwnershipHandler(listingService, ownershipCodes,
				taskClient, cfg.AppName, cfg.JwtSecret, cfg.OwnershipJwtTTL),
			Uploads: handlers.NewUploadHandler(listingService, s3Client, taskClient),
			Billing: handlers.NewBillingHandler(subscriptionService, cfg.PaymentWebhookSecret),
		})

		server = &http.Server{Addr: ":" + cfg.ApiPort, Handler: router}
		go func() {
			log.Printf("%s api listening on :%s", cfg.AppName, cfg.ApiPort)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("api server: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("WARN: api shutdown: %v", err)
		}
	}
	if processor != nil {
		processor.Shutdown()
	}
}
