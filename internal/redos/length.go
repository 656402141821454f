package redos

import "github.com/yoeunes/pcreanalyze/internal/ast"

// LengthRange is the inclusive range of match lengths a subtree can
// produce. Max == -1 means unbounded.
type LengthRange struct {
	Min int
	Max int
}

// Unbounded reports whether the range has no finite upper bound.
func (r LengthRange) Unbounded() bool { return r.Max < 0 }

// Variable reports whether the subtree can match more than one length,
// the condition that makes a backreference into it dangerous under
// repetition (spec §4.5 step 6).
func (r LengthRange) Variable() bool { return r.Max < 0 || r.Min != r.Max }

func add(a, b LengthRange) LengthRange {
	out := LengthRange{Min: a.Min + b.Min}
	if a.Unbounded() || b.Unbounded() {
		out.Max = -1
	} else {
		out.Max = a.Max + b.Max
	}
	return out
}

func mul(r LengthRange, n int) LengthRange {
	if n == 0 {
		return LengthRange{0, 0}
	}
	out := LengthRange{Min: r.Min * n}
	if r.Unbounded() {
		out.Max = -1
	} else {
		out.Max = r.Max * n
	}
	return out
}

// lengthOf computes n's LengthRange via an ast.Visitor[LengthRange].
func lengthOf(n ast.Node) LengthRange { return ast.Accept(n, lengthVisitor{}) }

type lengthVisitor struct {
	ast.DefaultVisitor[LengthRange]
}

func fixed(k int) LengthRange { return LengthRange{Min: k, Max: k} }

func (lengthVisitor) VisitRegex(n *ast.Regex) LengthRange { return lengthOf(n.Pattern) }

func (lengthVisitor) VisitAlternation(n *ast.Alternation) LengthRange {
	out := lengthOf(n.Alternatives[0])
	for _, a := range n.Alternatives[1:] {
		r := lengthOf(a)
		if r.Min < out.Min {
			out.Min = r.Min
		}
		if out.Unbounded() || r.Unbounded() {
			out.Max = -1
		} else if r.Max > out.Max {
			out.Max = r.Max
		}
	}
	return out
}

func (lengthVisitor) VisitSequence(n *ast.Sequence) LengthRange {
	out := LengthRange{0, 0}
	for _, c := range n.Children {
		out = add(out, lengthOf(c))
	}
	return out
}

func (lengthVisitor) VisitGroup(n *ast.Group) LengthRange {
	if n.Kind.IsLookaround() {
		return fixed(0)
	}
	return lengthOf(n.Child)
}

func (lengthVisitor) VisitQuantifier(n *ast.Quantifier) LengthRange {
	child := lengthOf(n.Child)
	out := LengthRange{Min: child.Min * n.Min}
	if n.Unbounded() || child.Unbounded() {
		out.Max = -1
	} else {
		out.Max = child.Max * n.Max
	}
	return out
}

func (lengthVisitor) VisitLiteral(n *ast.Literal) LengthRange {
	return fixed(len([]rune(n.Value)))
}

func (lengthVisitor) VisitCharLiteral(*ast.CharLiteral) LengthRange { return fixed(1) }
func (lengthVisitor) VisitCharType(*ast.CharType) LengthRange       { return fixed(1) }
func (lengthVisitor) VisitUnicode(*ast.Unicode) LengthRange         { return fixed(1) }
func (lengthVisitor) VisitUnicodeProp(*ast.UnicodeProp) LengthRange { return fixed(1) }
func (lengthVisitor) VisitPosixClass(*ast.PosixClass) LengthRange   { return fixed(1) }
func (lengthVisitor) VisitDot(*ast.Dot) LengthRange                 { return fixed(1) }
func (lengthVisitor) VisitCharClass(*ast.CharClass) LengthRange     { return fixed(1) }
func (lengthVisitor) VisitControlChar(*ast.ControlChar) LengthRange { return fixed(1) }

func (lengthVisitor) VisitRange(n *ast.Range) LengthRange { return fixed(1) }

func (lengthVisitor) VisitClassOperation(*ast.ClassOperation) LengthRange { return fixed(1) }

func (lengthVisitor) VisitAnchor(*ast.Anchor) LengthRange             { return fixed(0) }
func (lengthVisitor) VisitAssertion(*ast.Assertion) LengthRange       { return fixed(0) }
func (lengthVisitor) VisitKeep(*ast.Keep) LengthRange                 { return fixed(0) }
func (lengthVisitor) VisitPcreVerb(*ast.PcreVerb) LengthRange         { return fixed(0) }
func (lengthVisitor) VisitComment(*ast.Comment) LengthRange           { return fixed(0) }
func (lengthVisitor) VisitCallout(*ast.Callout) LengthRange           { return fixed(0) }
func (lengthVisitor) VisitLimitMatch(*ast.LimitMatch) LengthRange     { return fixed(0) }
func (lengthVisitor) VisitVersionCondition(*ast.VersionCondition) LengthRange {
	return fixed(0)
}

func (lengthVisitor) VisitBackref(*ast.Backref) LengthRange       { return LengthRange{0, -1} }
func (lengthVisitor) VisitSubroutine(*ast.Subroutine) LengthRange { return LengthRange{0, -1} }

func (lengthVisitor) VisitConditional(n *ast.Conditional) LengthRange {
	yes := lengthOf(n.Yes)
	no := lengthOf(n.No)
	out := yes
	if no.Min < out.Min {
		out.Min = no.Min
	}
	if out.Unbounded() || no.Unbounded() {
		out.Max = -1
	} else if no.Max > out.Max {
		out.Max = no.Max
	}
	return out
}

func (lengthVisitor) VisitDefine(*ast.Define) LengthRange { return fixed(0) }

func (lengthVisitor) VisitScriptRun(n *ast.ScriptRun) LengthRange { return lengthOf(n.Content) }

// containsBackref reports whether n's subtree contains any Backref node.
func containsBackref(n ast.Node) bool {
	found := false
	walk(n, func(c ast.Node) {
		if _, ok := c.(*ast.Backref); ok {
			found = true
		}
	})
	return found
}

// containsVariableLengthCapture reports whether n's subtree contains a
// capturing group whose child has a variable-length range.
func containsVariableLengthCapture(n ast.Node) bool {
	found := false
	walk(n, func(c ast.Node) {
		g, ok := c.(*ast.Group)
		if !ok {
			return
		}
		if g.Kind != ast.GroupCapturing && g.Kind != ast.GroupNamed {
			return
		}
		if lengthOf(g.Child).Variable() {
			found = true
		}
	})
	return found
}

// hasBackrefLoop implements the "broader reading" of spec §4.5 step 6: a
// subtree is flagged as soon as it contains both a backreference and a
// variable-length capturing group anywhere within it, without requiring
// the backreference to target that specific group.
func hasBackrefLoop(n ast.Node) bool {
	return containsBackref(n) && containsVariableLengthCapture(n)
}

// walk visits n and every descendant reachable through the node's own
// fields, calling fn on each. It does not use the Visitor contract since
// it needs to reach every child field generically, not fold a value.
func walk(n ast.Node, fn func(ast.Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch v := n.(type) {
	case *ast.Regex:
		walk(v.Pattern, fn)
	case *ast.Alternation:
		for _, a := range v.Alternatives {
			walk(a, fn)
		}
	case *ast.Sequence:
		for _, c := range v.Children {
			walk(c, fn)
		}
	case *ast.Group:
		walk(v.Child, fn)
	case *ast.Quantifier:
		walk(v.Child, fn)
	case *ast.CharClass:
		walk(v.Expression, fn)
	case *ast.Range:
		walk(v.Start, fn)
		walk(v.End, fn)
	case *ast.ClassOperation:
		walk(v.Left, fn)
		walk(v.Right, fn)
	case *ast.Conditional:
		walk(v.Condition, fn)
		walk(v.Yes, fn)
		walk(v.No, fn)
	case *ast.Define:
		walk(v.Content, fn)
	case *ast.ScriptRun:
		walk(v.Content, fn)
	}
}
