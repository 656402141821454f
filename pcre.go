// Package pcre is the entry point for the PCRE static-analysis core: it
// exposes the four operations the rest of the system (out-of-scope
// renderers, generators, CLIs) is built against — Parse, Profile, Score,
// and Accept — without those callers needing to know the internal
// package layout.
package pcre

import (
	"github.com/yoeunes/pcreanalyze/internal/ast"
	"github.com/yoeunes/pcreanalyze/internal/complexity"
	"github.com/yoeunes/pcreanalyze/internal/parser"
	"github.com/yoeunes/pcreanalyze/internal/redos"
)

// Re-exported so callers never need to import internal/ast directly for
// everyday use of this package's surface.
type (
	Regex      = ast.Regex
	Node       = ast.Node
	ParseError = ast.ParseError
)

// Visitor is the polymorphic-dispatch contract, re-exported for callers
// that want to write their own analysis over a parsed Regex. It embeds
// ast.Visitor[T], so it has exactly the same method set.
type Visitor[T any] interface {
	ast.Visitor[T]
}

// Severity, Confidence, Finding, and ProfileResult are re-exported from
// internal/redos so callers never need to import it directly.
type (
	Severity      = redos.Severity
	Confidence    = redos.Confidence
	Finding       = redos.Finding
	ProfileResult = redos.ProfileResult
)

const (
	Safe     = redos.SAFE
	Low      = redos.LOW
	Unknown  = redos.UNKNOWN
	Medium   = redos.MEDIUM
	High     = redos.HIGH
	Critical = redos.CRITICAL
)

// Parse parses source, either a bare pattern or a delimited pattern of
// shape `D...D flags`, into a Regex AST.
func Parse(source string) (*Regex, error) {
	return parser.New().Parse(source)
}

// Profile runs the ReDoS profiler over r.
func Profile(r *Regex) ProfileResult {
	return redos.Profile(r)
}

// Score returns r's integer complexity score.
func Score(r *Regex) int {
	return complexity.Score(r)
}

// Accept dispatches r to v, the single extension seam for code outside
// this module that wants to implement its own Visitor[T].
func Accept[T any](r *Regex, v Visitor[T]) T {
	return ast.Accept(r, v)
}
