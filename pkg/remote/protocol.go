// Package remote classifies remote database URLs and rewrites them into
// proxy-routed form when the sandbox's cross-origin policy blocks direct
// access. Everything in this package is pure string manipulation; no I/O.
package remote

import "strings"

// Protocol identifies the scheme family of an attach target.
type Protocol string

// Protocol families.
const (
	ProtocolHTTP    Protocol = "http"
	ProtocolHTTPS   Protocol = "https"
	ProtocolS3      Protocol = "s3"
	ProtocolGCS     Protocol = "gcs"
	ProtocolAzure   Protocol = "azure"
	ProtocolManaged Protocol = "managed"
	ProtocolLocal   Protocol = "local"
)

// schemePrefixes is the fixed allow-list of remote schemes, matched
// case-insensitively. Anything else, including bare filesystem paths, is
// local.
var schemePrefixes = []struct {
	prefix   string
	protocol Protocol
}{
	{"http://", ProtocolHTTP},
	{"https://", ProtocolHTTPS},
	{"s3://", ProtocolS3},
	{"gcs://", ProtocolGCS},
	{"gs://", ProtocolGCS},
	{"azure://", ProtocolAzure},
	{"az://", ProtocolAzure},
	{"md:", ProtocolManaged},
}

// Classify determines the protocol family of a URL.
func Classify(url string) Protocol {
	lower := strings.ToLower(strings.TrimSpace(url))
	for _, s := range schemePrefixes {
		if strings.HasPrefix(lower, s.prefix) {
			return s.protocol
		}
	}
	return ProtocolLocal
}

// Remote reports whether the protocol refers to a resource outside the
// local filesystem.
func (p Protocol) Remote() bool {
	return p != ProtocolLocal
}

// ObjectStorage reports whether the protocol is a cloud-object-storage
// scheme that must be converted to HTTPS before the proxy can forward it.
func (p Protocol) ObjectStorage() bool {
	return p == ProtocolS3 || p == ProtocolGCS || p == ProtocolAzure
}

// Proxyable reports whether the proxy can help this protocol at all. The
// managed protocol is reached through the engine's own tunnel rather than
// browser fetch, so cross-origin policy never applies to it.
func (p Protocol) Proxyable() bool {
	return p.Remote() && p != ProtocolManaged
}
