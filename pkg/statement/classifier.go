// Package statement classifies SQL statements ahead of execution.
//
// Classification is purely textual: nothing here evaluates SQL or touches
// the engine. The ATTACH grammar is narrow enough for a regex, which stays
// encapsulated behind Classifier so it can be replaced with a tokenizer
// without changing callers.
package statement

import (
	"regexp"
	"strings"

	"github.com/blastrain/vitess-sqlparser/sqlparser"
	"github.com/pondpilot/pondpilot-sub007/pkg/config"
)

// Kind represents the category of a SQL statement.
type Kind int

// Statement kinds.
const (
	KindOther       Kind = iota // unrecognized statements
	KindQuery                   // SELECT, SHOW, DESCRIBE, EXPLAIN
	KindAttach                  // ATTACH [DATABASE] '<url-or-path>' AS alias
	KindDetach                  // DETACH [DATABASE] alias
	KindDDL                     // CREATE, DROP, ALTER
	KindDML                     // INSERT, UPDATE, DELETE
	KindTransaction             // BEGIN, COMMIT, ROLLBACK
)

// String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindAttach:
		return "attach"
	case KindDetach:
		return "detach"
	case KindDDL:
		return "ddl"
	case KindDML:
		return "dml"
	case KindTransaction:
		return "transaction"
	default:
		return "other"
	}
}

// Attach is a parsed ATTACH statement. Immutable once created; it lives for
// a single execution attempt.
type Attach struct {
	RawSQL        string
	TargetURL     string
	Alias         string
	ExplicitProxy bool

	// quotedLiteral is the exact quoted URL literal as it appears in
	// RawSQL, including quotes and any force-proxy marker.
	quotedLiteral string
	quote         byte
}

// WithURL returns a copy of the raw statement whose quoted target literal
// is replaced by url. The rest of the statement, including the alias and
// any options clause, is untouched. The force-proxy marker never survives
// because the whole literal is replaced.
func (a *Attach) WithURL(url string) string {
	q := string(a.quote)
	return strings.Replace(a.RawSQL, a.quotedLiteral, q+url+q, 1)
}

// ClassifyResult contains the classification of a single SQL statement.
type ClassifyResult struct {
	Kind Kind
	// Attach is set only when Kind is KindAttach.
	Attach *Attach
	// DetachAlias is set only when Kind is KindDetach.
	DetachAlias string
}

// Classifier classifies SQL statements.
type Classifier struct{}

// NewClassifier creates a new statement classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// attachRe matches the narrow ATTACH grammar:
//
//	ATTACH [DATABASE] [IF NOT EXISTS] '<url-or-path>' [AS alias] [(options)]
//
// with either single- or double-quoted path literals.
var attachRe = regexp.MustCompile(`(?is)^\s*ATTACH\s+(?:DATABASE\s+)?(?:IF\s+NOT\s+EXISTS\s+)?('[^']*'|"[^"]*")(?:\s+AS\s+("[^"]+"|[A-Za-z_][A-Za-z0-9_$]*))?`)

// detachRe matches DETACH [DATABASE] [IF EXISTS] alias.
var detachRe = regexp.MustCompile(`(?is)^\s*DETACH\s+(?:DATABASE\s+)?(?:IF\s+EXISTS\s+)?("[^"]+"|[A-Za-z_][A-Za-z0-9_$]*)`)

// Classify analyzes a single SQL statement and returns its classification.
// Statements that merely resemble ATTACH but carry no parsable quoted
// argument fall through to the generic kinds rather than failing.
func (c *Classifier) Classify(sql string) ClassifyResult {
	upper := strings.ToUpper(strings.TrimSpace(sql))

	if strings.HasPrefix(upper, "ATTACH") {
		if att := parseAttach(sql); att != nil {
			return ClassifyResult{Kind: KindAttach, Attach: att}
		}
		return ClassifyResult{Kind: KindOther}
	}

	if strings.HasPrefix(upper, "DETACH") {
		if m := detachRe.FindStringSubmatch(sql); m != nil {
			return ClassifyResult{Kind: KindDetach, DetachAlias: unquoteIdent(m[1])}
		}
		return ClassifyResult{Kind: KindOther}
	}

	// Fast path: let the parser identify standard statements. DuckDB
	// extensions it rejects fall back to prefix matching below.
	if stmt, err := sqlparser.Parse(sql); err == nil {
		switch stmt.(type) {
		case *sqlparser.Select, *sqlparser.Union, *sqlparser.Show:
			return ClassifyResult{Kind: KindQuery}
		case *sqlparser.Insert, *sqlparser.Update, *sqlparser.Delete:
			return ClassifyResult{Kind: KindDML}
		case *sqlparser.DDL:
			return ClassifyResult{Kind: KindDDL}
		}
	}

	return ClassifyResult{Kind: classifyByPrefix(upper)}
}

func classifyByPrefix(upper string) Kind {
	switch {
	case hasAnyPrefix(upper, "SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "SUMMARIZE", "FROM", "PRAGMA"):
		return KindQuery
	case hasAnyPrefix(upper, "CREATE", "DROP", "ALTER"):
		return KindDDL
	case hasAnyPrefix(upper, "INSERT", "UPDATE", "DELETE", "COPY"):
		return KindDML
	case hasAnyPrefix(upper, "BEGIN", "START TRANSACTION", "COMMIT", "ROLLBACK"):
		return KindTransaction
	default:
		return KindOther
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// parseAttach extracts the quoted target and alias from an ATTACH
// statement. Returns nil when no quoted argument can be parsed.
func parseAttach(sql string) *Attach {
	m := attachRe.FindStringSubmatch(sql)
	if m == nil {
		return nil
	}

	literal := m[1]
	target := literal[1 : len(literal)-1]
	if target == "" {
		return nil
	}

	att := &Attach{
		RawSQL:        sql,
		TargetURL:     target,
		quotedLiteral: literal,
		quote:         literal[0],
	}
	if m[2] != "" {
		att.Alias = unquoteIdent(m[2])
	}

	// A force-proxy marker sits immediately before the scheme inside the
	// literal; it is never part of the extracted URL.
	if len(target) > len(config.ForceProxyPrefix) &&
		strings.EqualFold(target[:len(config.ForceProxyPrefix)], config.ForceProxyPrefix) {
		att.ExplicitProxy = true
		att.TargetURL = target[len(config.ForceProxyPrefix):]
	}

	return att
}

func unquoteIdent(ident string) string {
	if len(ident) >= 2 && ident[0] == '"' && ident[len(ident)-1] == '"' {
		return ident[1 : len(ident)-1]
	}
	return ident
}

// DefaultClassifier is the default statement classifier instance.
var DefaultClassifier = NewClassifier()

// IsAttach is a convenience function to check if SQL is an ATTACH statement.
func IsAttach(sql string) bool {
	return DefaultClassifier.Classify(sql).Kind == KindAttach
}

// IsQuery is a convenience function to check if SQL is a read-only query.
func IsQuery(sql string) bool {
	return DefaultClassifier.Classify(sql).Kind == KindQuery
}
