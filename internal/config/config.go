package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"insightgen/internal/aiops"
	"insightgen/internal/inventory"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL      = "http://localhost:4047"
	defaultDeviceCount  = 50
	defaultFetchRetries = 3
	uiPath              = "/aiops/insights"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	AIOps   aiops.Config
	Devices inventory.Config

	// UIURL is opened by generate --open.
	UIURL string
	// Seed feeds every random source. Zero means time-based.
	Seed int64

	DataPath string
	LogDir   string
	CacheDir string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return FromEnv(exeDir)
}

// FromEnv builds the configuration from the process environment alone. exeDir is the
// default DATA_PATH; empty means the working directory.
func FromEnv(exeDir string) (*AppConfig, error) {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("Failed to create cache directory")
	}

	timeoutSecs, err := getEnvInt("AIOPS_REQUEST_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	if timeoutSecs <= 0 {
		return nil, fmt.Errorf("AIOPS_REQUEST_TIMEOUT_SECONDS must be positive, got %d", timeoutSecs)
	}
	count, err := getEnvInt("AIOPS_DEVICE_COUNT", defaultDeviceCount)
	if err != nil {
		return nil, err
	}
	retries, err := getEnvInt("AIOPS_DEVICE_FETCH_RETRIES", defaultFetchRetries)
	if err != nil {
		return nil, err
	}
	seed, err := getEnvInt64("AIOPS_SEED", 0)
	if err != nil {
		return nil, err
	}

	selection, err := inventory.ParsePolicy(getEnv("AIOPS_DEVICE_SELECTION", ""))
	if err != nil {
		return nil, fmt.Errorf("AIOPS_DEVICE_SELECTION: %w", err)
	}
	source, err := inventory.ParseSource(getEnv("AIOPS_DEVICE_SOURCE", ""))
	if err != nil {
		return nil, fmt.Errorf("AIOPS_DEVICE_SOURCE: %w", err)
	}
	fallback, err := inventory.ParseFallback(getEnv("AIOPS_DEVICE_FALLBACK", ""))
	if err != nil {
		return nil, fmt.Errorf("AIOPS_DEVICE_FALLBACK: %w", err)
	}

	baseURL := strings.TrimRight(getEnv("AIOPS_BASE_URL", defaultBaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cfg := &AppConfig{
		AIOps: aiops.Config{
			BaseURL:      baseURL,
			Token:        getEnv("AIOPS_TOKEN", ""),
			TargetDomain: getEnv("AIOPS_DOMAIN", ""),
			Timeout:      time.Duration(timeoutSecs) * time.Second,
			DryRun:       getEnvBool("AIOPS_DRY_RUN", false),
		},
		Devices: inventory.Config{
			Count:        count,
			Selection:    selection,
			Source:       source,
			Fallback:     fallback,
			FetchRetries: retries,
		},
		UIURL:    getEnv("AIOPS_UI_URL", baseURL+uiPath),
		Seed:     seed,
		DataPath: dataPath,
		LogDir:   logDir,
		CacheDir: cacheDir,
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}
