package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	App struct {
		// BaseURL is the public URL providers call back on.
		BaseURL        string   `yaml:"base_url"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"app"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret      string `yaml:"secret"`
		SessionDays int    `yaml:"session_days"`
	} `yaml:"jwt"`

	Store struct {
		Type          string `yaml:"type"` // memory, redis
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
	} `yaml:"store"`

	LiraPay struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"lirapay"`

	SyncPay struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		BaseURL      string `yaml:"base_url"`
		MockMode     bool   `yaml:"mock_mode"`
	} `yaml:"syncpay"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		Enabled      bool   `yaml:"enabled"`
	} `yaml:"email"`
}

var AppConfig *Config

// LoadConfig reads config/config.yaml, or falls back to environment
// variables when JWT_SECRET is set (test and container deployments).
// A .env file in the working directory is loaded first if present.
func LoadConfig() {
	_ = godotenv.Load()

	var cfg Config

	if os.Getenv("JWT_SECRET") == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	cfg.Server.Host = os.Getenv("SERVER_HOST")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.App.BaseURL = os.Getenv("APP_BASE_URL")
	cfg.Database.DSN = os.Getenv("DATABASE_URL")
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.Store.Type = os.Getenv("STORE_TYPE")
	cfg.Store.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.Store.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.LiraPay.APIKey = os.Getenv("LIRAPAY_API_KEY")
	cfg.SyncPay.ClientID = os.Getenv("SYNCPAY_CLIENT_ID")
	cfg.SyncPay.ClientSecret = os.Getenv("SYNCPAY_CLIENT_SECRET")
	cfg.SyncPay.MockMode = os.Getenv("SYNCPAY_MOCK") == "true"

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.JWT.SessionDays == 0 {
		cfg.JWT.SessionDays = 30
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
	if cfg.LiraPay.BaseURL == "" {
		cfg.LiraPay.BaseURL = "https://api.lirapaybr.com/v1"
	}
	if cfg.SyncPay.BaseURL == "" {
		cfg.SyncPay.BaseURL = "https://api.syncpay.com.br"
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

// IsProduction reports whether the server runs in production mode. The
// session cookie is only marked Secure in production.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
