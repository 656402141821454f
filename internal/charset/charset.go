// Package charset computes an overapproximation of the set of code points
// a subtree can start or end with, the building block the ReDoS profiler
// uses to decide whether two adjacent quantified atoms are separated by a
// disjoint boundary (spec §4.4/§4.5). Full Unicode property evaluation is
// out of scope (a Non-goal): any construct whose exact membership this
// package cannot enumerate collapses to Set.Unknown == true rather than
// guessing, since an unsound "no overlap" verdict would hide a real
// catastrophic-backtracking risk.
package charset

import "github.com/yoeunes/pcreanalyze/internal/ast"

// maxEnumerated caps how many code points a Set will name explicitly
// before giving up and marking itself Unknown; classes like `\w` or large
// ranges are common and meaningless to enumerate rune-by-rune.
const maxEnumerated = 128

// Set is an overapproximation of a code-point set: either a concrete,
// small enumeration, or Unknown (meaning "assume it can intersect with
// anything").
type Set struct {
	Unknown bool
	runes   map[rune]bool
}

func unknownSet() Set { return Set{Unknown: true} }

func newSet(rs ...rune) Set {
	s := Set{runes: make(map[rune]bool, len(rs))}
	for _, r := range rs {
		s.runes[r] = true
		if len(s.runes) > maxEnumerated {
			return unknownSet()
		}
	}
	return s
}

func (s Set) union(o Set) Set {
	if s.Unknown || o.Unknown {
		return unknownSet()
	}
	out := Set{runes: make(map[rune]bool, len(s.runes)+len(o.runes))}
	for r := range s.runes {
		out.runes[r] = true
	}
	for r := range o.runes {
		out.runes[r] = true
		if len(out.runes) > maxEnumerated {
			return unknownSet()
		}
	}
	return out
}

// IsEmpty reports whether the set names no code points (and is not
// Unknown) — the case for a zero-width construct.
func (s Set) IsEmpty() bool { return !s.Unknown && len(s.runes) == 0 }

// Intersects reports whether s and o could share a code point. An Unknown
// set always intersects, per the soundness requirement: "might overlap"
// must never be reported as "definitely disjoint".
func (s Set) Intersects(o Set) bool {
	if s.Unknown || o.Unknown {
		return true
	}
	if len(s.runes) == 0 || len(o.runes) == 0 {
		return false
	}
	small, big := s, o
	if len(big.runes) < len(small.runes) {
		small, big = big, small
	}
	for r := range small.runes {
		if big.runes[r] {
			return true
		}
	}
	return false
}

// IsZeroWidth reports whether n is one of the node variants that consume
// no input and so contribute nothing to a first/last character set.
func IsZeroWidth(n ast.Node) bool {
	switch n.(type) {
	case *ast.Anchor, *ast.Assertion, *ast.Keep, *ast.Comment, *ast.PcreVerb,
		*ast.Callout, *ast.LimitMatch, *ast.VersionCondition:
		return true
	}
	if g, ok := n.(*ast.Group); ok {
		return g.Kind.IsLookaround()
	}
	return false
}

// First returns an overapproximation of the code points n can start
// matching with.
func First(n ast.Node) Set { return ast.Accept(n, firstVisitor{}) }

// Last returns an overapproximation of the code points n can end
// matching with.
func Last(n ast.Node) Set { return ast.Accept(n, lastVisitor{}) }

type firstVisitor struct{ ast.DefaultVisitor[Set] }

func (firstVisitor) VisitRegex(n *ast.Regex) Set { return First(n.Pattern) }

func (firstVisitor) VisitAlternation(n *ast.Alternation) Set {
	out := newSet()
	for _, a := range n.Alternatives {
		out = out.union(First(a))
	}
	return out
}

func (firstVisitor) VisitSequence(n *ast.Sequence) Set {
	for _, c := range n.Children {
		if IsZeroWidth(c) {
			continue
		}
		return First(c)
	}
	return newSet() // entirely zero-width (or empty): matches nothing itself
}

func (firstVisitor) VisitGroup(n *ast.Group) Set {
	if n.Kind.IsLookaround() {
		return newSet()
	}
	return First(n.Child)
}

func (firstVisitor) VisitQuantifier(n *ast.Quantifier) Set {
	if n.Min == 0 {
		// May match zero repetitions; its first character set can't rule
		// out whatever follows it in the caller's sequence either, but at
		// this node's own level the best sound answer is the child's set
		// union with "nothing" is still just the child's set.
		return First(n.Child)
	}
	return First(n.Child)
}

func (firstVisitor) VisitLiteral(n *ast.Literal) Set {
	r := []rune(n.Value)
	if len(r) == 0 {
		return newSet()
	}
	return newSet(r[0])
}

func (firstVisitor) VisitCharLiteral(n *ast.CharLiteral) Set {
	if n.CodePoint < 0 {
		return unknownSet()
	}
	return newSet(n.CodePoint)
}

func (firstVisitor) VisitCharType(*ast.CharType) Set { return unknownSet() }
func (firstVisitor) VisitUnicode(*ast.Unicode) Set   { return unknownSet() }
func (firstVisitor) VisitUnicodeProp(*ast.UnicodeProp) Set { return unknownSet() }
func (firstVisitor) VisitPosixClass(*ast.PosixClass) Set   { return unknownSet() }
func (firstVisitor) VisitDot(*ast.Dot) Set                 { return unknownSet() }
func (firstVisitor) VisitControlChar(n *ast.ControlChar) Set {
	return newSet(rune(n.Char))
}

func (firstVisitor) VisitCharClass(n *ast.CharClass) Set {
	inner := classMemberSet(n.Expression)
	if n.IsNegated {
		if inner.Unknown {
			return unknownSet()
		}
		return unknownSet() // negation of a known set is unbounded; stay sound
	}
	return inner
}

func (firstVisitor) VisitBackref(*ast.Backref) Set         { return unknownSet() }
func (firstVisitor) VisitSubroutine(*ast.Subroutine) Set   { return unknownSet() }

func (firstVisitor) VisitConditional(n *ast.Conditional) Set {
	return First(n.Yes).union(First(n.No))
}

func (firstVisitor) VisitDefine(*ast.Define) Set { return newSet() }

func (firstVisitor) VisitScriptRun(n *ast.ScriptRun) Set { return First(n.Content) }

// classMemberSet computes the concrete set of code points a char-class
// expression (its Sequence/Alternation/Range/ClassOperation members, not
// the enclosing CharClass) denotes, when that is knowable without full
// Unicode evaluation.
func classMemberSet(n ast.Node) Set {
	switch v := n.(type) {
	case *ast.Sequence:
		out := newSet()
		for _, c := range v.Children {
			out = out.union(classMemberSet(c))
		}
		return out
	case *ast.Literal:
		r := []rune(v.Value)
		if len(r) == 0 {
			return newSet()
		}
		return newSet(r[0])
	case *ast.CharLiteral:
		if v.CodePoint < 0 {
			return unknownSet()
		}
		return newSet(v.CodePoint)
	case *ast.ControlChar:
		return newSet(rune(v.Char))
	case *ast.Range:
		lo, loOK := literalOrd(v.Start)
		hi, hiOK := literalOrd(v.End)
		if !loOK || !hiOK || hi-lo > maxEnumerated {
			return unknownSet()
		}
		rs := make([]rune, 0, hi-lo+1)
		for r := lo; r <= hi; r++ {
			rs = append(rs, r)
		}
		return newSet(rs...)
	case *ast.ClassOperation:
		left := classMemberSet(v.Left)
		right := classMemberSet(v.Right)
		if left.Unknown || right.Unknown {
			return unknownSet()
		}
		switch v.Kind {
		case ast.ClassOpIntersection:
			out := newSet()
			for r := range left.runes {
				if right.runes[r] {
					out.runes[r] = true
				}
			}
			return out
		case ast.ClassOpSubtraction:
			out := newSet()
			for r := range left.runes {
				if !right.runes[r] {
					out.runes[r] = true
				}
			}
			return out
		}
		return unknownSet()
	case *ast.PosixClass, *ast.CharType, *ast.UnicodeProp, *ast.Unicode:
		return unknownSet()
	default:
		return unknownSet()
	}
}

func literalOrd(n ast.Node) (rune, bool) {
	switch v := n.(type) {
	case *ast.Literal:
		r := []rune(v.Value)
		if len(r) == 1 {
			return r[0], true
		}
	case *ast.CharLiteral:
		if v.CodePoint >= 0 {
			return v.CodePoint, true
		}
	case *ast.ControlChar:
		return rune(v.Char), true
	}
	return 0, false
}

type lastVisitor struct{ ast.DefaultVisitor[Set] }

func (lastVisitor) VisitRegex(n *ast.Regex) Set { return Last(n.Pattern) }

func (lastVisitor) VisitAlternation(n *ast.Alternation) Set {
	out := newSet()
	for _, a := range n.Alternatives {
		out = out.union(Last(a))
	}
	return out
}

func (lastVisitor) VisitSequence(n *ast.Sequence) Set {
	for i := len(n.Children) - 1; i >= 0; i-- {
		if IsZeroWidth(n.Children[i]) {
			continue
		}
		return Last(n.Children[i])
	}
	return newSet()
}

func (lastVisitor) VisitGroup(n *ast.Group) Set {
	if n.Kind.IsLookaround() {
		return newSet()
	}
	return Last(n.Child)
}

func (lastVisitor) VisitQuantifier(n *ast.Quantifier) Set { return Last(n.Child) }

func (lastVisitor) VisitLiteral(n *ast.Literal) Set {
	r := []rune(n.Value)
	if len(r) == 0 {
		return newSet()
	}
	return newSet(r[len(r)-1])
}

func (lastVisitor) VisitCharLiteral(n *ast.CharLiteral) Set {
	if n.CodePoint < 0 {
		return unknownSet()
	}
	return newSet(n.CodePoint)
}

func (lastVisitor) VisitCharType(*ast.CharType) Set         { return unknownSet() }
func (lastVisitor) VisitUnicode(*ast.Unicode) Set           { return unknownSet() }
func (lastVisitor) VisitUnicodeProp(*ast.UnicodeProp) Set   { return unknownSet() }
func (lastVisitor) VisitPosixClass(*ast.PosixClass) Set     { return unknownSet() }
func (lastVisitor) VisitDot(*ast.Dot) Set                   { return unknownSet() }
func (lastVisitor) VisitControlChar(n *ast.ControlChar) Set { return newSet(rune(n.Char)) }

func (lastVisitor) VisitCharClass(n *ast.CharClass) Set {
	if n.IsNegated {
		return unknownSet()
	}
	return classMemberSet(n.Expression)
}

func (lastVisitor) VisitBackref(*ast.Backref) Set       { return unknownSet() }
func (lastVisitor) VisitSubroutine(*ast.Subroutine) Set { return unknownSet() }

func (lastVisitor) VisitConditional(n *ast.Conditional) Set {
	return Last(n.Yes).union(Last(n.No))
}

func (lastVisitor) VisitDefine(*ast.Define) Set { return newSet() }

func (lastVisitor) VisitScriptRun(n *ast.ScriptRun) Set { return Last(n.Content) }
