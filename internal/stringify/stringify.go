// Package stringify re-emits an AST subtree as pattern source, for
// diagnostics ("here is the offending fragment") and for round-trip
// testing (parse -> stringify -> parse should be idempotent in meaning).
// It implements ast.Visitor[string] and is itself a plain fold: each case
// formats its own node and recurses into children via ast.Accept.
package stringify

import (
	"strconv"
	"strings"

	"github.com/yoeunes/pcreanalyze/internal/ast"
)

// Node renders n as pattern source, undelimited.
func Node(n ast.Node) string {
	v := &visitor{}
	return ast.Accept(n, v)
}

// Regex renders a full Regex including its delimiters and flags.
func Regex(r *ast.Regex) string {
	body := Node(r.Pattern)
	if r.Delimiter == 0 {
		return body
	}
	d := string(r.Delimiter)
	return d + body + d + r.Flags
}

type visitor struct{}

func (v *visitor) VisitRegex(n *ast.Regex) string { return Node(n.Pattern) }

func (v *visitor) VisitAlternation(n *ast.Alternation) string {
	parts := make([]string, len(n.Alternatives))
	for i, a := range n.Alternatives {
		parts[i] = ast.Accept(a, v)
	}
	return strings.Join(parts, "|")
}

func (v *visitor) VisitSequence(n *ast.Sequence) string {
	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(ast.Accept(c, v))
	}
	return sb.String()
}

func (v *visitor) VisitGroup(n *ast.Group) string {
	child := ast.Accept(n.Child, v)
	switch n.Kind {
	case ast.GroupCapturing:
		return "(" + child + ")"
	case ast.GroupNonCapturing:
		return "(?:" + child + ")"
	case ast.GroupNamed:
		return "(?<" + n.Name + ">" + child + ")"
	case ast.GroupLookaheadPositive:
		return "(?=" + child + ")"
	case ast.GroupLookaheadNegative:
		return "(?!" + child + ")"
	case ast.GroupLookbehindPositive:
		return "(?<=" + child + ")"
	case ast.GroupLookbehindNegative:
		return "(?<!" + child + ")"
	case ast.GroupAtomic:
		return "(?>" + child + ")"
	case ast.GroupBranchReset:
		return "(?|" + child + ")"
	case ast.GroupInlineFlags:
		if child == "" {
			return "(?" + n.Flags + ")"
		}
		return "(?" + n.Flags + ":" + child + ")"
	default:
		return "(" + child + ")"
	}
}

func (v *visitor) VisitQuantifier(n *ast.Quantifier) string {
	child := ast.Accept(n.Child, v)
	suffix := ""
	switch n.Kind {
	case ast.QuantLazy:
		suffix = "?"
	case ast.QuantPossessive:
		suffix = "+"
	}
	return child + n.Raw + suffix
}

func (v *visitor) VisitLiteral(n *ast.Literal) string {
	var sb strings.Builder
	for _, r := range n.Value {
		sb.WriteString(escapeLiteralRune(r))
	}
	return sb.String()
}

var literalMeta = map[rune]bool{
	'.': true, '+': true, '*': true, '?': true, '(': true, ')': true,
	'[': true, ']': true, '{': true, '}': true, '|': true, '^': true,
	'$': true, '\\': true, '/': true,
}

func escapeLiteralRune(r rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	}
	if literalMeta[r] {
		return `\` + string(r)
	}
	return string(r)
}

func (v *visitor) VisitCharLiteral(n *ast.CharLiteral) string { return n.Raw }

func (v *visitor) VisitCharType(n *ast.CharType) string { return `\` + string(n.Value) }

func (v *visitor) VisitUnicode(n *ast.Unicode) string { return n.Code }

func (v *visitor) VisitUnicodeProp(n *ast.UnicodeProp) string {
	letter := "p"
	prop := n.Prop
	if strings.HasPrefix(prop, "^") {
		letter = "P"
		prop = prop[1:]
	}
	if n.HasBraces {
		return `\` + letter + "{" + prop + "}"
	}
	return `\` + letter + prop
}

func (v *visitor) VisitPosixClass(n *ast.PosixClass) string {
	if n.Negated {
		return "[:^" + n.Class + ":]"
	}
	return "[:" + n.Class + ":]"
}

func (v *visitor) VisitDot(n *ast.Dot) string { return "." }

func (v *visitor) VisitAnchor(n *ast.Anchor) string { return n.Value }

func (v *visitor) VisitAssertion(n *ast.Assertion) string { return `\` + n.Value }

func (v *visitor) VisitKeep(n *ast.Keep) string { return `\K` }

func (v *visitor) VisitCharClass(n *ast.CharClass) string {
	body := ast.Accept(n.Expression, v)
	if n.IsNegated {
		return "[^" + body + "]"
	}
	return "[" + body + "]"
}

func (v *visitor) VisitRange(n *ast.Range) string {
	return ast.Accept(n.Start, v) + "-" + ast.Accept(n.End, v)
}

func (v *visitor) VisitClassOperation(n *ast.ClassOperation) string {
	op := "&&"
	if n.Kind == ast.ClassOpSubtraction {
		op = "--"
	}
	return ast.Accept(n.Left, v) + op + ast.Accept(n.Right, v)
}

func (v *visitor) VisitControlChar(n *ast.ControlChar) string {
	return `\c` + string(rune(n.Char))
}

func (v *visitor) VisitBackref(n *ast.Backref) string { return `\k<` + n.Ref + ">" }

func (v *visitor) VisitSubroutine(n *ast.Subroutine) string {
	switch n.Syntax {
	case "&":
		return "(?&" + n.Reference + ")"
	case "P>":
		return "(?P>" + n.Reference + ")"
	default:
		return "(?" + n.Reference + ")"
	}
}

func (v *visitor) VisitConditional(n *ast.Conditional) string {
	var cond string
	switch c := n.Condition.(type) {
	case *ast.Backref:
		if _, err := strconv.Atoi(c.Ref); err == nil {
			cond = "(" + c.Ref + ")"
		} else {
			cond = "(<" + c.Ref + ">)"
		}
	case *ast.Subroutine:
		cond = "(" + c.Reference + ")"
	case *ast.Group:
		cond = ast.Accept(n.Condition, v) // an assertion brings its own parens
	default:
		cond = "(" + ast.Accept(n.Condition, v) + ")"
	}
	yes := ast.Accept(n.Yes, v)
	no := ast.Accept(n.No, v)
	if no == "" {
		return "(?" + cond + yes + ")"
	}
	return "(?" + cond + yes + "|" + no + ")"
}

func (v *visitor) VisitDefine(n *ast.Define) string {
	return "(?(DEFINE)" + ast.Accept(n.Content, v) + ")"
}

func (v *visitor) VisitComment(n *ast.Comment) string { return "(?#" + n.Text + ")" }

func (v *visitor) VisitPcreVerb(n *ast.PcreVerb) string { return "(*" + n.Verb + ")" }

func (v *visitor) VisitLimitMatch(n *ast.LimitMatch) string {
	return "(*LIMIT_MATCH=" + strconv.Itoa(n.Limit) + ")"
}

func (v *visitor) VisitCallout(n *ast.Callout) string {
	if !n.HasIdentifier {
		return "(?C)"
	}
	if n.IsStringIdentifier {
		return `(?C"` + n.StringID + `")`
	}
	return "(?C" + strconv.Itoa(n.NumericID) + ")"
}

func (v *visitor) VisitScriptRun(n *ast.ScriptRun) string {
	name := "script_run"
	if n.Atomic {
		name = "atomic_script_run"
	}
	return "(*" + name + ":" + ast.Accept(n.Content, v) + ")"
}

func (v *visitor) VisitVersionCondition(n *ast.VersionCondition) string {
	return "VERSION" + n.Operator + n.Version
}
