package supabase

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/supabase-community/supabase-go"
	"groom-admin-backend/internal/config"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

// NewClient connects with the publishable key. Sessions and storage reads
// go through this client.
func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(baseURL(cfg.SupabaseURL), cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	withAuthTimeout(client, cfg)

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// NewAdminClient connects with the service-role key. It returns nil when the
// deployment has no service-role key.
func NewAdminClient(cfg *config.Config) (*Client, error) {
	if !cfg.HasAdminCredential() {
		return nil, nil
	}
	client, err := supabase.NewClient(baseURL(cfg.SupabaseURL), cfg.SupabaseServiceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase admin client: %w", err)
	}
	withAuthTimeout(client, cfg)
	client.Auth = client.Auth.WithToken(cfg.SupabaseServiceRoleKey)

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// TableKey is the key used for table access: the service-role key when
// configured, otherwise the publishable key.
func TableKey(cfg *config.Config) string {
	if cfg.HasAdminCredential() {
		return cfg.SupabaseServiceRoleKey
	}
	return cfg.SupabasePublishableKey
}

// withAuthTimeout bounds GoTrue calls by the request timeout. The GoTrue
// client takes no context.
func withAuthTimeout(client *supabase.Client, cfg *config.Config) {
	if cfg.RequestTimeout > 0 {
		client.Auth = client.Auth.WithClient(http.Client{Timeout: cfg.RequestTimeout})
	}
}

func baseURL(raw string) string {
	return strings.TrimRight(raw, "/")
}
