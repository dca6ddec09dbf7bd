package remote

import (
	"net/url"
	"strings"

	"github.com/pondpilot/pondpilot-sub007/pkg/config"
)

// RewriteResult is the outcome of a rewrite. The input string is never
// mutated; URL always holds a fresh value.
type RewriteResult struct {
	URL          string
	WasRewritten bool
}

// Rewrite converts a remote URL into its proxy-routed form.
//
// Wrapping is idempotent: a URL already carrying the proxy's query marker
// comes back unchanged with WasRewritten true. Cloud-object-storage URLs
// are first converted to an equivalent HTTPS URL, then wrapped. The managed
// protocol is never wrapped, force or not. Conversion failures never error:
// the original URL comes back unchanged with WasRewritten false so the
// caller can fall back to a native-protocol attempt.
func Rewrite(rawURL string, cfg config.ProxyConfig, forceWrap bool) RewriteResult {
	if !forceWrap {
		return RewriteResult{URL: rawURL}
	}

	proto := Classify(rawURL)
	if !proto.Proxyable() {
		return RewriteResult{URL: rawURL}
	}

	base := strings.TrimSpace(cfg.ProxyBaseURL)
	if base == "" {
		return RewriteResult{URL: rawURL}
	}

	if alreadyWrapped(rawURL, base) {
		return RewriteResult{URL: rawURL, WasRewritten: true}
	}

	target := rawURL
	if proto.ObjectStorage() {
		https, ok := toHTTPS(rawURL, proto, cfg)
		if !ok {
			return RewriteResult{URL: rawURL}
		}
		target = https
	}

	return RewriteResult{URL: wrap(target, base), WasRewritten: true}
}

// wrap encodes the target as the proxy's url query parameter. The target is
// percent-encoded whole, path included, so relative references inside the
// fetched resource (sibling metadata files and the like) resolve against
// the proxied path on the proxy side.
func wrap(target, base string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + config.ProxyParam + "=" + url.QueryEscape(target)
}

// alreadyWrapped detects a URL that is already proxy-routed: it starts with
// the configured base and carries the proxy's query marker.
func alreadyWrapped(rawURL, base string) bool {
	if !strings.HasPrefix(rawURL, base) {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Query().Get(config.ProxyParam) != ""
}

// toHTTPS converts a cloud-object-storage URL to the HTTPS endpoint the
// proxy can forward. Returns ok false when the URL cannot be resolved to a
// bucket/key pair.
func toHTTPS(rawURL string, proto Protocol, cfg config.ProxyConfig) (string, bool) {
	rest := rawURL[strings.Index(rawURL, "://")+len("://"):]
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", false
	}

	switch proto {
	case ProtocolS3:
		if ep := normalizeEndpoint(cfg.CustomS3Endpoint); ep != "" {
			// Non-default providers (MinIO, R2, ...) use path-style
			// addressing on the configured endpoint.
			return "https://" + ep + "/" + bucket + "/" + key, true
		}
		return "https://" + bucket + ".s3.amazonaws.com/" + key, true
	case ProtocolGCS:
		return "https://storage.googleapis.com/" + bucket + "/" + key, true
	case ProtocolAzure:
		// azure://account/container/blob
		container, blob, ok := strings.Cut(key, "/")
		if !ok || container == "" || blob == "" {
			return "", false
		}
		return "https://" + bucket + ".blob.core.windows.net/" + container + "/" + blob, true
	default:
		return "", false
	}
}

func normalizeEndpoint(endpoint string) string {
	ep := strings.TrimSpace(endpoint)
	ep = strings.TrimPrefix(ep, "https://")
	ep = strings.TrimPrefix(ep, "http://")
	return strings.TrimSuffix(ep, "/")
}

// Redact strips credentials from a URL for logs and notifications: userinfo
// and the query string (presigned parameters live there) are dropped.
func Redact(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "<unparsable url>"
	}
	parsed.User = nil
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String()
}
