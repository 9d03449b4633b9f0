package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Welcome email behaviour when a verification link was requested but could not be generated.
const (
	WelcomeWithoutLinkDegraded = "degraded"
	WelcomeWithoutLinkSkip     = "skip"
)

type Config struct {
	AppEnv         string `toml:"app_env"`
	AppPort        string `toml:"app_port"`
	AppURL         string `toml:"app_url"`
	AllowedOrigins string `toml:"allowed_origins"`
	TrustedProxies string `toml:"trusted_proxies"`
	LogLevel       string `toml:"log_level"`

	DBDriver           string `toml:"db_driver"`
	DatabaseURL        string `toml:"database_url"`
	DatabaseServiceURL string `toml:"database_service_url"`
	DBMaxIdleConns     int    `toml:"db_max_idle_conns"`
	DBMaxOpenConns     int    `toml:"db_max_open_conns"`

	JWTSecret       string `toml:"jwt_secret"`
	SessionTTLHours int    `toml:"session_ttl_hours"`
	AuthRateLimit   int    `toml:"auth_rate_limit"`

	TriggerSecretKey string `toml:"trigger_secret_key"`
	TriggerAPIKey    string `toml:"trigger_api_key"`
	TriggerAPIURL    string `toml:"trigger_api_url"`

	ResendAPIKey       string `toml:"resend_api_key"`
	EmailFrom          string `toml:"email_from"`
	WelcomeWithoutLink string `toml:"welcome_without_link"`

	NATSURL string `toml:"nats_url"`
}

// ServiceDatabaseURL is the DSN used for privileged maintenance work such as the retention job.
func (c Config) ServiceDatabaseURL() string {
	if c.DatabaseServiceURL != "" {
		return c.DatabaseServiceURL
	}
	return c.DatabaseURL
}

// TrustedProxyList splits TRUSTED_PROXIES. Nil means client addresses are taken from the
// connection and forwarding headers are ignored.
func (c Config) TrustedProxyList() []string {
	var proxies []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}

// originOf reduces a URL to its scheme://host origin.
func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func defaults() Config {
	return Config{
		AppEnv:             "development",
		AppPort:            "8080",
		AppURL:             "http://localhost:8080",
		LogLevel:           "info",
		DBDriver:           "postgres",
		DatabaseURL:        "host=localhost port=5432 user=notes password=notes dbname=notes sslmode=disable",
		DBMaxIdleConns:     10,
		DBMaxOpenConns:     100,
		JWTSecret:          "your-super-secret-key-change-this-in-production",
		SessionTTLHours:    24,
		AuthRateLimit:      5,
		TriggerAPIURL:      "https://api.trigger.dev",
		EmailFrom:          "Notes App <noreply@example.com>",
		WelcomeWithoutLink: WelcomeWithoutLinkDegraded,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if defaultValue != "" {
		log.Printf("%s not set, defaulting to %s", key, defaultValue)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Invalid integer value for %s, defaulting to %d", key, defaultValue)
	}
	return defaultValue
}

// LoadFile reads a TOML config file on top of the built-in defaults.
func LoadFile(path string) (Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Load builds the configuration from an optional CONFIG_FILE and the environment.
// Environment variables always win over file values.
func Load() Config {
	base := defaults()
	if path, ok := os.LookupEnv("CONFIG_FILE"); ok && path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			log.Printf("Ignoring config file %s: %v", path, err)
		} else {
			base = fileCfg
		}
	}

	cfg := Config{
		AppEnv:             getEnv("APP_ENV", base.AppEnv),
		AppPort:            getEnv("APP_PORT", base.AppPort),
		AppURL:             getEnv("APP_URL", base.AppURL),
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", base.AllowedOrigins),
		TrustedProxies:     getEnv("TRUSTED_PROXIES", base.TrustedProxies),
		LogLevel:           getEnv("LOG_LEVEL", base.LogLevel),
		DBDriver:           getEnv("DB_DRIVER", base.DBDriver),
		DatabaseURL:        getEnv("DATABASE_URL", base.DatabaseURL),
		DatabaseServiceURL: getEnv("DATABASE_SERVICE_URL", base.DatabaseServiceURL),
		DBMaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", base.DBMaxIdleConns),
		DBMaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", base.DBMaxOpenConns),
		JWTSecret:          getEnv("JWT_SECRET", base.JWTSecret),
		SessionTTLHours:    getEnvAsInt("SESSION_TTL_HOURS", base.SessionTTLHours),
		AuthRateLimit:      getEnvAsInt("AUTH_RATE_LIMIT", base.AuthRateLimit),
		TriggerSecretKey:   getEnv("TRIGGER_SECRET_KEY", base.TriggerSecretKey),
		TriggerAPIKey:      getEnv("TRIGGER_API_KEY", base.TriggerAPIKey),
		TriggerAPIURL:      getEnv("TRIGGER_API_URL", base.TriggerAPIURL),
		ResendAPIKey:       getEnv("RESEND_API_KEY", base.ResendAPIKey),
		EmailFrom:          getEnv("EMAIL_FROM", base.EmailFrom),
		WelcomeWithoutLink: getEnv("WELCOME_WITHOUT_LINK", base.WelcomeWithoutLink),
		NATSURL:            getEnv("NATS_URL", base.NATSURL),
	}

	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = originOf(cfg.AppURL)
	}

	if cfg.WelcomeWithoutLink != WelcomeWithoutLinkDegraded && cfg.WelcomeWithoutLink != WelcomeWithoutLinkSkip {
		log.Printf("Unknown WELCOME_WITHOUT_LINK %q, defaulting to %s", cfg.WelcomeWithoutLink, WelcomeWithoutLinkDegraded)
		cfg.WelcomeWithoutLink = WelcomeWithoutLinkDegraded
	}

	return cfg
}
