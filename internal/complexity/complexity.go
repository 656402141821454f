// Package complexity assigns an integer complexity score to a pattern, a
// cheap proxy for how hard a subtree is to reason about (distinct from
// redos's severity judgment). It is implemented as an ast.Visitor[int]:
// each variant's rule is a pure function of its own fields and its
// children's scores, so the whole scorer is a single bottom-up fold.
package complexity

import "github.com/yoeunes/pcreanalyze/internal/ast"

const (
	base         = 1
	unbounded    = 10
	complexScore = 5
	nesting      = 2
)

// Score returns n's complexity score.
func Score(n ast.Node) int { return ast.Accept(n, visitor{depth: 0}) }

// visitor carries the unbounded-quantifier nesting depth used by the
// Quantifier rule. It is passed by value to each recursive Accept call
// (via a fresh visitor with an adjusted depth), not mutated in place.
type visitor struct {
	depth int
}

func (v visitor) at(d int) visitor { return visitor{depth: d} }

func (v visitor) VisitRegex(n *ast.Regex) int { return ast.Accept(n.Pattern, v.at(0)) }

func (v visitor) VisitAlternation(n *ast.Alternation) int {
	sum := base
	for _, a := range n.Alternatives {
		sum += ast.Accept(a, v)
	}
	return sum
}

func (v visitor) VisitSequence(n *ast.Sequence) int {
	sum := 0
	for _, c := range n.Children {
		sum += ast.Accept(c, v)
	}
	return sum
}

func (v visitor) VisitGroup(n *ast.Group) int {
	child := ast.Accept(n.Child, v)
	if n.Kind.IsLookaround() {
		return complexScore + child
	}
	return base + child
}

// unboundedQuantifier reports whether q has no finite upper bound, the
// notion ast.Quantifier.Unbounded() defines.
func unboundedQuantifier(q *ast.Quantifier) bool { return q.Unbounded() }

func (v visitor) VisitQuantifier(n *ast.Quantifier) int {
	if unboundedQuantifier(n) {
		depth := v.depth + 1
		score := unbounded
		if v.depth > 0 {
			score *= nesting * v.depth
		}
		return score + ast.Accept(n.Child, v.at(depth))
	}
	return base + ast.Accept(n.Child, v)
}

// VisitLiteral scores one point per character: a Literal is a coalesced
// run of what the grammar treats as individual atoms (see
// internal/parser's literal-coalescing), so a 3-character run must score
// the same as three single-character literals would.
func (v visitor) VisitLiteral(n *ast.Literal) int       { return base * len([]rune(n.Value)) }
func (v visitor) VisitCharLiteral(*ast.CharLiteral) int { return base }
func (v visitor) VisitCharType(*ast.CharType) int       { return base }
func (v visitor) VisitUnicode(*ast.Unicode) int         { return base }
func (v visitor) VisitUnicodeProp(*ast.UnicodeProp) int { return base }
func (v visitor) VisitPosixClass(*ast.PosixClass) int   { return base }
func (v visitor) VisitDot(*ast.Dot) int                 { return base }
func (v visitor) VisitAnchor(*ast.Anchor) int           { return base }
func (v visitor) VisitAssertion(*ast.Assertion) int     { return base }
func (v visitor) VisitKeep(*ast.Keep) int               { return base }
func (v visitor) VisitControlChar(*ast.ControlChar) int { return base }

func (v visitor) VisitCharClass(n *ast.CharClass) int {
	return base + ast.Accept(n.Expression, v)
}

func (v visitor) VisitRange(n *ast.Range) int {
	return base + ast.Accept(n.Start, v) + ast.Accept(n.End, v)
}

func (v visitor) VisitClassOperation(n *ast.ClassOperation) int {
	return base + ast.Accept(n.Left, v) + ast.Accept(n.Right, v)
}

func (v visitor) VisitBackref(*ast.Backref) int                   { return complexScore }
func (v visitor) VisitPcreVerb(*ast.PcreVerb) int                 { return complexScore }
func (v visitor) VisitLimitMatch(*ast.LimitMatch) int             { return complexScore }
func (v visitor) VisitCallout(*ast.Callout) int                   { return complexScore }
func (v visitor) VisitVersionCondition(*ast.VersionCondition) int { return complexScore }

func (v visitor) VisitScriptRun(n *ast.ScriptRun) int { return complexScore + ast.Accept(n.Content, v) }

func (v visitor) VisitConditional(n *ast.Conditional) int {
	return 2*complexScore + ast.Accept(n.Condition, v) + ast.Accept(n.Yes, v) + ast.Accept(n.No, v)
}

func (v visitor) VisitSubroutine(*ast.Subroutine) int { return 2 * complexScore }

func (v visitor) VisitDefine(n *ast.Define) int { return complexScore + ast.Accept(n.Content, v) }

func (v visitor) VisitComment(*ast.Comment) int { return 0 }
