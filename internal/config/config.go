package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB (primary listings, users, inquiries, invoices)
	MongoURI    string
	MongoDbName string

	// PostgreSQL (legacy free-listings table)
	PostgresURL string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT / ownership tokens
	JwtSecret       string
	JwtTTL          time.Duration
	OwnershipOTPTTL time.Duration
	OwnershipJwtTTL time.Duration

	// Server
	ApiPort string

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string

	// WhatsApp gateway
	WhatsAppAPIURL   string
	WhatsAppAPIToken string
	WhatsAppSender   string

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	SignedURLTTL       time.Duration
	ImageMaxDimension  int

	// Subscription / billing
	PaymentWebhookSecret string
	FreeTierListings     int
	ListingRate          float64
	BasePeriodDays       int
	InvoiceDueDays       int

	// App Defaults
	AppName string

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	getDurationSeconds := func(key, defaultValue string) (time.Duration, error) {
		secs, parseErr := strconv.ParseInt(getEnv(key, defaultValue), 10, 64)
		if parseErr != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, parseErr)
		}
		return time.Duration(secs) * time.Second, nil
	}

	// Load basic string values
	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "urgentsales")
	cfg.PostgresURL, err = getRequiredEnv("POSTGRES_URL")
	if err != nil {
		return nil, err
	}
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@urgentsales.example.com")
	cfg.WhatsAppAPIURL = getEnv("WHATSAPP_API_URL", "")
	cfg.WhatsAppAPIToken = getEnv("WHATSAPP_API_TOKEN", "")
	cfg.WhatsAppSender = getEnv("WHATSAPP_SENDER", "")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.AppName = getEnv("APP_NAME", "UrgentSales")
	cfg.PaymentWebhookSecret = getEnv("PAYMENT_WEBHOOK_SECRET", "")

	// Load numeric and time duration values with defaults and parsing
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	if cfg.JwtTTL, err = getDurationSeconds("JWT_TTL_SECONDS", "3600"); err != nil {
		return nil, err
	}
	if cfg.OwnershipOTPTTL, err = getDurationSeconds("OWNERSHIP_OTP_TTL_SECONDS", "300"); err != nil {
		return nil, err
	}
	if cfg.OwnershipJwtTTL, err = getDurationSeconds("OWNERSHIP_JWT_TTL_SECONDS", "86400"); err != nil {
		return nil, err
	}
	if cfg.SignedURLTTL, err = getDurationSeconds("SIGNED_URL_TTL_SECONDS", "900"); err != nil {
		return nil, err
	}

	cfg.ImageMaxDimension, err = strconv.Atoi(getEnv("IMAGE_MAX_DIMENSION", "2048"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_DIMENSION: %w", err)
	}

	cfg.FreeTierListings, err = strconv.Atoi(getEnv("FREE_TIER_LISTINGS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid FREE_TIER_LISTINGS: %w", err)
	}

	cfg.ListingRate, err = strconv.ParseFloat(getEnv("LISTING_RATE", "99.00"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LISTING_RATE: %w", err)
	}

	cfg.BasePeriodDays, err = strconv.Atoi(getEnv("BASE_PERIOD_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid BASE_PERIOD_DAYS: %w", err)
	}

	cfg.InvoiceDueDays, err = strconv.Atoi(getEnv("INVOICE_DUE_DAYS", "14"))
	if err != nil {
		return nil, fmt.Errorf("invalid INVOICE_DUE_DAYS: %w", err)
	}

	// Rate Limiting
	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
