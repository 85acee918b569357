package config

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		Env            string   `yaml:"env"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Postgres struct {
		URI         string `yaml:"uri"`
		AutoMigrate bool   `yaml:"auto_migrate"`
	} `yaml:"postgres"`

	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`

	Mongo struct {
		URI         string        `yaml:"uri"`
		DB          string        `yaml:"db"`
		EventTTL    time.Duration `yaml:"event_ttl"`
		ForceTLS    bool          `yaml:"force_tls"`
		InsecureTLS bool          `yaml:"insecure_tls"`
	} `yaml:"mongo"`

	Supabase struct {
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
		Audience  string `yaml:"audience"`
	} `yaml:"supabase"`

	Stripe struct {
		SecretKey     string `yaml:"secret_key"`
		WebhookSecret string `yaml:"webhook_secret"`
		PriceID       string `yaml:"price_id"`
	} `yaml:"stripe"`

	Zoho struct {
		ClientID     string        `yaml:"client_id"`
		ClientSecret string        `yaml:"client_secret"`
		AccountsURL  string        `yaml:"accounts_url"`
		APIURL       string        `yaml:"api_url"`
		Scopes       []string      `yaml:"scopes"`
		StateSecret  string        `yaml:"state_secret"`
		BatchSize    int           `yaml:"batch_size"`
		BatchDelay   time.Duration `yaml:"batch_delay"`
		SyncWorkers  int           `yaml:"sync_workers"`
	} `yaml:"zoho"`

	Storage struct {
		Bucket string `yaml:"bucket"`
	} `yaml:"storage"`

	LogLevel string `yaml:"log_level"`
}

// Load reads .env, then the optional YAML file at path, then lets environment
// variables override, then fills defaults and validates required secrets.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Env, "GO_ENV")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	setString(&cfg.Postgres.URI, "POSTGRES_URI")
	setBool(&cfg.Postgres.AutoMigrate, "POSTGRES_AUTO_MIGRATE")

	// REDIS_ADDR wins over REDIS_URI/REDIS_URL
	setString(&cfg.Redis.Addr, "REDIS_URL")
	setString(&cfg.Redis.Addr, "REDIS_URI")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")

	setString(&cfg.Mongo.URI, "MONGO_URI")
	setString(&cfg.Mongo.DB, "MONGO_DB")
	setBool(&cfg.Mongo.ForceTLS, "MONGO_FORCE_TLS_CONFIG")
	setBool(&cfg.Mongo.InsecureTLS, "MONGO_INSECURE_TLS")

	setString(&cfg.Supabase.JWTSecret, "SUPABASE_JWT_SECRET")
	setString(&cfg.Supabase.Issuer, "SUPABASE_JWT_ISSUER")
	setString(&cfg.Supabase.Audience, "SUPABASE_JWT_AUDIENCE")

	setString(&cfg.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	setString(&cfg.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET")
	setString(&cfg.Stripe.PriceID, "STRIPE_PRICE_ID")

	setString(&cfg.Zoho.ClientID, "ZOHO_CLIENT_ID")
	setString(&cfg.Zoho.ClientSecret, "ZOHO_CLIENT_SECRET")
	setString(&cfg.Zoho.AccountsURL, "ZOHO_ACCOUNTS_URL")
	setString(&cfg.Zoho.APIURL, "ZOHO_API_URL")
	setString(&cfg.Zoho.StateSecret, "ZOHO_STATE_SECRET")
	if v := os.Getenv("ZOHO_SCOPES"); v != "" {
		cfg.Zoho.Scopes = splitList(v)
	}
	if v := os.Getenv("ZOHO_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Zoho.BatchSize = n
		}
	}
	if v := os.Getenv("ZOHO_BATCH_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Zoho.BatchDelay = d
		}
	}
	if v := os.Getenv("ZOHO_SYNC_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Zoho.SyncWorkers = n
		}
	}

	setString(&cfg.Storage.Bucket, "GCS_BUCKET")
	setString(&cfg.LogLevel, "LOG_LEVEL")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "production"
	}
	if cfg.Mongo.DB == "" {
		cfg.Mongo.DB = "jobboard"
	}
	if cfg.Mongo.EventTTL <= 0 {
		cfg.Mongo.EventTTL = 30 * 24 * time.Hour
	}
	if cfg.Zoho.AccountsURL == "" {
		cfg.Zoho.AccountsURL = "https://accounts.zoho.com"
	}
	if cfg.Zoho.APIURL == "" {
		cfg.Zoho.APIURL = "https://www.zohoapis.com"
	}
	if len(cfg.Zoho.Scopes) == 0 {
		cfg.Zoho.Scopes = []string{"ZohoCRM.modules.leads.CREATE", "ZohoCRM.modules.leads.READ"}
	}
	if cfg.Supabase.Audience == "" {
		cfg.Supabase.Audience = "authenticated"
	}
	if cfg.Zoho.StateSecret == "" && cfg.Supabase.JWTSecret != "" {
		cfg.Zoho.StateSecret = deriveSecret(cfg.Supabase.JWTSecret, "zoho-oauth-state")
	}
	if cfg.Zoho.BatchSize <= 0 || cfg.Zoho.BatchSize > 100 {
		cfg.Zoho.BatchSize = 100
	}
	if cfg.Zoho.BatchDelay <= 0 {
		cfg.Zoho.BatchDelay = time.Second
	}
	if cfg.Zoho.SyncWorkers <= 0 {
		cfg.Zoho.SyncWorkers = 2
	}
}

func (c *Config) Validate() error {
	var missing []string
	if c.Postgres.URI == "" {
		missing = append(missing, "POSTGRES_URI")
	}
	if c.Redis.Addr == "" {
		missing = append(missing, "REDIS_ADDR (or REDIS_URI/REDIS_URL)")
	}
	if c.Supabase.JWTSecret == "" {
		missing = append(missing, "SUPABASE_JWT_SECRET")
	}
	if c.Stripe.SecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.Stripe.WebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.Server.Env == "development" }

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// deriveSecret keys a purpose-specific secret off base so tokens signed with it
// never verify against base.
func deriveSecret(base, label string) string {
	m := hmac.New(sha256.New, []byte(base))
	m.Write([]byte(label))
	return hex.EncodeToString(m.Sum(nil))
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
