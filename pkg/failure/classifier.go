// Package failure classifies execution errors into the retry taxonomy.
//
// Cross-origin detection is inherently heuristic: the sandbox deliberately
// hides diagnostic detail for cross-origin failures, so recognition leans
// on documented message signatures plus the absence of an HTTP status. The
// signature list is data, not logic: new runtime wordings are added here
// without touching the retry path.
package failure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind is the failure class driving retry decisions.
type Kind int

// Failure kinds.
const (
	KindOther Kind = iota
	KindCrossOrigin
	KindTimeout
	KindDuplicateAttach
	KindCancelled
)

// String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case KindCrossOrigin:
		return "cross_origin"
	case KindTimeout:
		return "timeout"
	case KindDuplicateAttach:
		return "duplicate_attach"
	case KindCancelled:
		return "cancelled"
	default:
		return "other"
	}
}

// Classified pairs a failure kind with the original error. The original is
// preserved untouched so non-retryable failures surface verbatim.
type Classified struct {
	Kind Kind
	Err  error
}

// TimeoutError is raised by the execution timer when an attempt does not
// settle within its budget. Timeouts are recognized by this type, never by
// message inspection.
type TimeoutError struct {
	Limit time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("statement did not settle within %s", e.Limit)
}

// Timeout marks the error as a timeout for net.Error-style checks.
func (e *TimeoutError) Timeout() bool { return true }

// statusCarrier matches engine errors that carry an HTTP-like status.
type statusCarrier interface {
	HTTPStatus() int
}

// Classifier turns a raw execution error into a Classified failure.
type Classifier interface {
	Classify(err error) Classified
}

// DefaultCrossOriginSignatures is the documented wording list for
// browser-sandbox cross-origin failures, matched case-insensitively:
// Chromium, Firefox and WebKit fetch wordings plus explicit CORS policy
// messages.
var DefaultCrossOriginSignatures = []string{
	"failed to fetch",
	"fetch failed",
	"load failed",
	"networkerror when attempting to fetch resource",
	"net::err_failed",
	"cross-origin",
	"cors",
	"blocked by cors policy",
}

// DefaultDuplicateAttachSignatures recognizes the engine's wording for a
// database that is already attached. Substring matching is brittle across
// engine versions; it stays isolated here until the engine exposes a
// structured code.
var DefaultDuplicateAttachSignatures = []string{
	"already attached",
	"already exists",
}

// SignatureClassifier is the default Classifier implementation.
type SignatureClassifier struct {
	crossOrigin []string
	duplicate   []string
}

// NewSignatureClassifier creates a classifier with the default signature
// lists.
func NewSignatureClassifier() *SignatureClassifier {
	return &SignatureClassifier{
		crossOrigin: DefaultCrossOriginSignatures,
		duplicate:   DefaultDuplicateAttachSignatures,
	}
}

// WithCrossOriginSignatures replaces the cross-origin wording list.
func (c *SignatureClassifier) WithCrossOriginSignatures(sigs []string) *SignatureClassifier {
	c.crossOrigin = sigs
	return c
}

// Classify implements Classifier.
func (c *SignatureClassifier) Classify(err error) Classified {
	if err == nil {
		return Classified{Kind: KindOther}
	}

	if errors.Is(err, context.Canceled) {
		return Classified{Kind: KindCancelled, Err: err}
	}

	var timeout *TimeoutError
	if errors.As(err, &timeout) || errors.Is(err, context.DeadlineExceeded) {
		return Classified{Kind: KindTimeout, Err: err}
	}

	msg := strings.ToLower(err.Error())

	if matchesAny(msg, c.duplicate) {
		return Classified{Kind: KindDuplicateAttach, Err: err}
	}

	// A failure that produced a real HTTP response is not a sandbox
	// restriction: the request left the origin and came back.
	var sc statusCarrier
	if errors.As(err, &sc) && sc.HTTPStatus() != 0 {
		return Classified{Kind: KindOther, Err: err}
	}

	if matchesAny(msg, c.crossOrigin) {
		return Classified{Kind: KindCrossOrigin, Err: err}
	}

	return Classified{Kind: KindOther, Err: err}
}

func matchesAny(msg string, signatures []string) bool {
	for _, s := range signatures {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
