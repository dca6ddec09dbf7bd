package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Viper keys for the proxy settings.
const (
	keyBehavior     = "proxy.behavior"
	keyProxyBaseURL = "proxy.base_url"
	keyS3Endpoint   = "proxy.s3_endpoint"
)

// NewViper returns a viper instance preloaded with defaults and bound to
// PONDPILOT_* environment variables (e.g. PONDPILOT_PROXY_BEHAVIOR).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyBehavior, string(DefaultBehavior))
	v.SetDefault(keyProxyBaseURL, DefaultProxyBaseURL)
	v.SetDefault(keyS3Endpoint, "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("db.path", "")
	v.SetDefault("retry.max_attempts", 2)
	v.SetDefault("retry.base_delay", "500ms")
	v.SetDefault("retry.exponential", true)
	v.SetDefault("retry.timeout", "30s")
	v.SetEnvPrefix("PONDPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Store is a mutex-guarded settings store. The gateway snapshots the proxy
// configuration from it once per execution; updates take effect on the next
// execution, never a currently-in-flight one.
type Store struct {
	mu  sync.RWMutex
	cfg ProxyConfig
}

// NewStore creates a store holding the default configuration.
func NewStore() *Store {
	return &Store{cfg: DefaultProxyConfig()}
}

// NewStoreFromViper creates a store seeded from the given viper instance.
// An optional config file may already have been read into it.
func NewStoreFromViper(v *viper.Viper) (*Store, error) {
	cfg := ProxyConfig{
		Behavior:         Behavior(strings.ToLower(v.GetString(keyBehavior))),
		ProxyBaseURL:     v.GetString(keyProxyBaseURL),
		CustomS3Endpoint: v.GetString(keyS3Endpoint),
	}
	if !cfg.Behavior.Valid() {
		return nil, fmt.Errorf("invalid proxy behavior %q (want auto, always or never)", cfg.Behavior)
	}
	return &Store{cfg: cfg}, nil
}

// GetProxyConfig returns a snapshot of the current proxy configuration.
func (s *Store) GetProxyConfig() ProxyConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update replaces the stored configuration after validating it.
func (s *Store) Update(cfg ProxyConfig) error {
	if !cfg.Behavior.Valid() {
		return fmt.Errorf("invalid proxy behavior %q (want auto, always or never)", cfg.Behavior)
	}
	if cfg.ProxyBaseURL == "" {
		cfg.ProxyBaseURL = DefaultProxyBaseURL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	return nil
}
