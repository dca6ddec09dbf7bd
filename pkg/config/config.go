// Package config provides proxy configuration for remote database attachment.
package config

// Behavior controls when the CORS proxy is engaged for remote attaches.
type Behavior string

// Proxy behaviors.
const (
	// BehaviorAuto tries the direct connection first and falls back to the
	// proxy when the failure looks like a cross-origin restriction.
	BehaviorAuto Behavior = "auto"
	// BehaviorAlways routes every remote attach through the proxy up front.
	BehaviorAlways Behavior = "always"
	// BehaviorNever disables automatic proxy fallback entirely.
	BehaviorNever Behavior = "never"
)

// Valid reports whether b is a recognized behavior.
func (b Behavior) Valid() bool {
	switch b {
	case BehaviorAuto, BehaviorAlways, BehaviorNever:
		return true
	}
	return false
}

// Default proxy settings.
const (
	DefaultBehavior     = BehaviorAuto
	DefaultProxyBaseURL = "https://proxy.pondpilot.io/fetch"
)

// ForceProxyPrefix is the reserved marker a user can place immediately
// before the scheme in an ATTACH URL literal to force proxy routing for
// that statement only. It is always stripped before execution.
const ForceProxyPrefix = "proxy:"

// ProxyParam is the query parameter on the proxy base URL that carries the
// percent-encoded target URL.
const ProxyParam = "url"

// ProxyConfig is the process-wide proxy configuration. It is read once per
// statement execution and never mutated mid-flight.
type ProxyConfig struct {
	Behavior         Behavior
	ProxyBaseURL     string
	CustomS3Endpoint string
}

// DefaultProxyConfig returns the configuration used when no settings store
// is wired in.
func DefaultProxyConfig() ProxyConfig {
	return ProxyConfig{
		Behavior:     DefaultBehavior,
		ProxyBaseURL: DefaultProxyBaseURL,
	}
}
