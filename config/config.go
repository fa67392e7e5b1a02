package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dosada05/championship-draw/brackets"
	"github.com/Dosada05/championship-draw/draw"
	"github.com/Dosada05/championship-draw/storage"
)

// SnapshotBackend selects where live draw sessions are mirrored.
type SnapshotBackend string

const (
	SnapshotDB   SnapshotBackend = "db"
	SnapshotR2   SnapshotBackend = "r2"
	SnapshotNone SnapshotBackend = "none"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	AdminEmail        string
	AdminPasswordHash string

	// PublicBaseURL is where spectators load the live viewer page.
	PublicBaseURL      string
	CORSAllowedOrigins []string

	SnapshotBackend SnapshotBackend
	R2              storage.CloudflareR2Config

	DrawTiming    draw.Timing
	BulkByePolicy brackets.ByePolicy
}

// Load reads configuration from the environment, loading a .env file first
// when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := getEnv("SERVER_PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		AdminEmail:         strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPasswordHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", port)),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SnapshotBackend:    SnapshotBackend(getEnv("SNAPSHOT_BACKEND", string(SnapshotDB))),
	}

	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		return nil, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD_HASH must be set")
	}

	switch cfg.SnapshotBackend {
	case SnapshotDB, SnapshotNone:
	case SnapshotR2:
		cfg.R2 = storage.CloudflareR2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
			Endpoint:        os.Getenv("R2_ENDPOINT"),
		}
		if cfg.R2.AccountID == "" || cfg.R2.AccessKeyID == "" || cfg.R2.SecretAccessKey == "" || cfg.R2.BucketName == "" {
			return nil, errors.New("SNAPSHOT_BACKEND=r2 requires R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET_NAME")
		}
	default:
		return nil, fmt.Errorf("SNAPSHOT_BACKEND must be one of db, r2, none; got %q", cfg.SnapshotBackend)
	}

	cfg.DrawTiming, err = loadTiming()
	if err != nil {
		return nil, err
	}

	cfg.BulkByePolicy, err = brackets.ParseByePolicy(getEnv("BULK_BYE_POLICY", string(brackets.ByeByRegistration)))
	if err != nil {
		return nil, fmt.Errorf("invalid BULK_BYE_POLICY: %w", err)
	}

	return cfg, nil
}

func loadTiming() (draw.Timing, error) {
	t := draw.DefaultTiming
	var err error
	if t.SpinTick, err = durationMS("DRAW_SPIN_TICK_MS", t.SpinTick); err != nil {
		return t, err
	}
	if t.RevealTick, err = durationMS("DRAW_REVEAL_TICK_MS", t.RevealTick); err != nil {
		return t, err
	}
	if t.SettleDelay, err = durationMS("DRAW_SETTLE_MS", t.SettleDelay); err != nil {
		return t, err
	}
	if raw := os.Getenv("DRAW_SPIN_ITERATIONS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return t, fmt.Errorf("DRAW_SPIN_ITERATIONS must be a positive integer, got %q", raw)
		}
		t.SpinIterations = n
	}
	return t, nil
}

func durationMS(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("%s must be a positive number of milliseconds, got %q", key, raw)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
