package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Supabase
	SupabaseURL            string `mapstructure:"supabase_url"`
	SupabasePublishableKey string `mapstructure:"supabase_publishable_key"`
	SupabaseServiceRoleKey string `mapstructure:"supabase_service_role_key"`
	SupabaseJWTSecret      string `mapstructure:"supabase_jwt_secret"`
	ServiceIconsBucket     string `mapstructure:"service_icons_bucket"`
	AvatarsBucket          string `mapstructure:"avatars_bucket"`

	// Tables are served by PostgREST ("supabase") or a direct connection ("postgres").
	TableBackend string `mapstructure:"table_backend"`

	// Database
	DatabaseURL string `mapstructure:"database_url"`

	// Redis fan-out for invalidations and notices, disabled when empty
	RedisURL string `mapstructure:"redis_url"`

	// Query cache
	CacheStaleTime time.Duration `mapstructure:"cache_stale_time"`
	CacheGCTime    time.Duration `mapstructure:"cache_gc_time"`
	CacheRetry     int           `mapstructure:"cache_retry"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`

	// Server
	Port               string        `mapstructure:"port"`
	Environment        string        `mapstructure:"environment"`
	BaseURL            string        `mapstructure:"base_url"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
}

func Load() (*Config, error) {
	// A missing .env is fine, the process environment still applies.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORSAllowedOrigins = splitList(v.GetString("cors_allowed_origins"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("supabase_url", "")
	v.SetDefault("supabase_publishable_key", "")
	v.SetDefault("supabase_service_role_key", "")
	v.SetDefault("supabase_jwt_secret", "")
	v.SetDefault("service_icons_bucket", "services-icons")
	v.SetDefault("avatars_bucket", "avatars")

	v.SetDefault("table_backend", "supabase")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")

	v.SetDefault("cache_stale_time", "30s")
	v.SetDefault("cache_gc_time", "5m")
	v.SetDefault("cache_retry", 3)
	v.SetDefault("session_ttl", "1m")

	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("cors_allowed_origins", "http://localhost:5173")
	v.SetDefault("request_timeout", "15s")
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	switch c.TableBackend {
	case "supabase":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when TABLE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("TABLE_BACKEND must be supabase or postgres, got %q", c.TableBackend)
	}
	if c.CacheRetry < 0 {
		return fmt.Errorf("CACHE_RETRY must not be negative")
	}
	return nil
}

// HasAdminCredential reports whether identity admin operations can be performed.
func (c *Config) HasAdminCredential() bool {
	return c.SupabaseServiceRoleKey != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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
