package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName             = "WalletVault"
	defaultAppEnv              = "development"
	defaultPort                = "8080"
	defaultLogLevel            = "info"
	defaultChainNetwork        = "mainnet"
	defaultShutdownDelay       = 10 * time.Second
	defaultCreationCooldown    = 5 * time.Minute
	defaultStoreAttemptTimeout = 3 * time.Second
	defaultProviderTimeout     = 15 * time.Second

	cooldownSecondsEnvVar        = "CREATION_COOLDOWN_SECONDS"
	cooldownDurEnvVar            = "CREATION_COOLDOWN"
	storeTimeoutSecondsEnvVar    = "STORE_ATTEMPT_TIMEOUT_SECONDS"
	storeTimeoutDurEnvVar        = "STORE_ATTEMPT_TIMEOUT"
	providerTimeoutSecondsEnvVar = "PROVIDER_TIMEOUT_SECONDS"
	providerTimeoutDurEnvVar     = "PROVIDER_TIMEOUT"
	shutdownSecondsEnvVar        = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar       = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName                 string
	AppEnv                  string
	Port                    string
	LogLevel                string
	DatabaseURL             string
	PrivilegedDatabaseURL   string
	RedisURL                string
	ChainNetwork            string
	ProviderURL             string
	EncryptionKey           []byte
	EncryptionFallbackInput []string
	ShutdownPeriod          time.Duration
	CreationCooldown        time.Duration
	StoreAttemptTimeout     time.Duration
	ProviderTimeout         time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:               getEnv("APP_NAME", defaultAppName),
		AppEnv:                getEnv("APP_ENV", defaultAppEnv),
		Port:                  getEnv("PORT", defaultPort),
		LogLevel:              strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		PrivilegedDatabaseURL: os.Getenv("PRIVILEGED_DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		ChainNetwork:          getEnv("CHAIN_NETWORK", defaultChainNetwork),
		ProviderURL:           os.Getenv("PROVIDER_URL"),
		ShutdownPeriod:        defaultShutdownDelay,
		CreationCooldown:      defaultCreationCooldown,
		StoreAttemptTimeout:   defaultStoreAttemptTimeout,
		ProviderTimeout:       defaultProviderTimeout,
	}

	if raw := os.Getenv("ENCRYPTION_KEY"); raw != "" {
		key, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ENCRYPTION_KEY: %w", err)
		}
		cfg.EncryptionKey = key
	}

	if raw := os.Getenv("ENCRYPTION_FALLBACK_SECRETS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cfg.EncryptionFallbackInput = append(cfg.EncryptionFallbackInput, part)
			}
		}
	}

	var err error
	if cfg.ShutdownPeriod, err = durationFromEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.CreationCooldown, err = durationFromEnv(cooldownSecondsEnvVar, cooldownDurEnvVar, cfg.CreationCooldown); err != nil {
		return Config{}, err
	}
	if cfg.StoreAttemptTimeout, err = durationFromEnv(storeTimeoutSecondsEnvVar, storeTimeoutDurEnvVar, cfg.StoreAttemptTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ProviderTimeout, err = durationFromEnv(providerTimeoutSecondsEnvVar, providerTimeoutDurEnvVar, cfg.ProviderTimeout); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}

	if len(cfg.EncryptionKey) == 0 && len(cfg.EncryptionFallbackInput) == 0 {
		return Config{}, fmt.Errorf("ENCRYPTION_KEY or ENCRYPTION_FALLBACK_SECRETS must be set")
	}

	return cfg, nil
}

// IsProduction reports whether the configuration targets a production deployment.
func (c Config) IsProduction() bool {
	switch strings.ToLower(c.AppEnv) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func durationFromEnv(secondsVar, durationVar string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsVar, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationVar, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
