// Package gateway is the single entry point for statement execution. It
// composes classification, proxy rewriting, failure classification and
// bounded retry into one sequential state machine per statement.
package gateway

import (
	"context"

	"github.com/pondpilot/pondpilot-sub007/pkg/config"
)

// SettingsProvider supplies the proxy configuration. It is read once per
// execution and never cached beyond it, so settings changes take effect on
// the next statement.
type SettingsProvider interface {
	GetProxyConfig() config.ProxyConfig
}

// Registry records successful attaches. It backs the duplicate-attach
// idempotence check; implementations are advisory and must tolerate
// best-effort writes.
type Registry interface {
	Record(ctx context.Context, alias, url string, proxied bool) error
	Exists(ctx context.Context, alias string) (bool, error)
	Remove(ctx context.Context, alias string) error
}

// staticSettings adapts a fixed ProxyConfig to SettingsProvider.
type staticSettings struct {
	cfg config.ProxyConfig
}

func (s staticSettings) GetProxyConfig() config.ProxyConfig { return s.cfg }

// StaticSettings wraps a fixed configuration, mainly for embedding and
// tests.
func StaticSettings(cfg config.ProxyConfig) SettingsProvider {
	return staticSettings{cfg: cfg}
}
