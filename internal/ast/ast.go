package ast

// Node is the interface every AST variant implements. The set of concrete
// types implementing Node is closed (see the type list below); Visitor in
// visitor.go is the only supported way to add behavior over that closed
// set without a method-per-variant explosion on Node itself.
type Node interface {
	// Type returns the variant's name, e.g. "Literal", "Quantifier".
	Type() string
	// Pos returns the node's source span.
	Pos() Position
	node()
}

// base is embedded by every concrete node to provide Pos() and seal the
// Node interface to this package's variant set.
type base struct {
	Span Position
}

func (b base) Pos() Position { return b.Span }
func (base) node()           {}

// SetPos stamps a node's source span. Exported so internal/parser (which
// cannot name the unexported base type directly) can finish building a
// node after its children and extent are known.
func (b *base) SetPos(p Position) { b.Span = p }

// Regex is the parse tree root.
type Regex struct {
	base
	Delimiter byte
	Flags     string // source order; a repeated flag is a parse error, so no letter repeats
	Pattern   Node
}

func (*Regex) Type() string { return "Regex" }

// Alternation is `a|b|c`; len(Alternatives) >= 2.
type Alternation struct {
	base
	Alternatives []Node
}

func (*Alternation) Type() string { return "Alternation" }

// Sequence is a concatenation of atoms; may be empty.
type Sequence struct {
	base
	Children []Node
}

func (*Sequence) Type() string { return "Sequence" }

// Group is any of the `(...)` forms; GroupKind selects which.
type Group struct {
	base
	Kind  GroupKind
	Name  string // set iff Kind == GroupNamed
	Flags string // set iff Kind == GroupInlineFlags
	Child Node
}

func (*Group) Type() string { return "Group" }

// Quantifier wraps Node in a repetition; Raw is the literal quantifier
// token as written (`*`, `+`, `?`, `{n}`, `{n,}`, `{n,m}`), Min/Max are its
// parsed bounds (Max == -1 means unbounded).
type Quantifier struct {
	base
	Kind  QuantKind
	Raw   string
	Min   int
	Max   int
	Child Node
}

func (*Quantifier) Type() string { return "Quantifier" }

// Unbounded reports whether the quantifier has no finite upper bound.
func (q *Quantifier) Unbounded() bool { return q.Max < 0 }

// Literal is a run of characters matched verbatim; may be empty.
type Literal struct {
	base
	Value string
}

func (*Literal) Type() string { return "Literal" }

// CharLiteral is an escaped single code point: \xHH, \x{...}, \u{...},
// \N{name}, \o{...}, or a legacy \nnn octal escape.
type CharLiteral struct {
	base
	Kind       CharLiteralKind
	Raw        string // original representation, e.g. `\x{1F600}`
	CodePoint  rune   // decoded value; -1 if it could not be decoded
}

func (*CharLiteral) Type() string { return "CharLiteral" }

// CharType is a single-letter Perl character-type escape: d D s S w W h H v V R,
// or N for a bare `\N`.
type CharType struct {
	base
	Value byte
}

func (*CharType) Type() string { return "CharType" }

// Unicode is a bare Unicode code-point reference (used inside classes for
// `\x{...}`-free numeric forms some dialects expose); Code carries the
// textual code.
type Unicode struct {
	base
	Code string
}

func (*Unicode) Type() string { return "Unicode" }

// UnicodeProp is `\p{...}`/`\P{...}` or the one-letter `\pL` form.
// Prop may start with `^` to denote negation when HasBraces is true and
// the source used `\p{^Name}`; bare `\P...` negation is folded into Prop
// the same way so callers need not special-case the two spellings.
type UnicodeProp struct {
	base
	Prop      string
	HasBraces bool
}

func (*UnicodeProp) Type() string { return "UnicodeProp" }

// PosixClass is `[:alpha:]` and friends, valid only inside a CharClass.
type PosixClass struct {
	base
	Class    string
	Negated  bool
}

func (*PosixClass) Type() string { return "PosixClass" }

// Dot is `.`.
type Dot struct{ base }

func (*Dot) Type() string { return "Dot" }

// Anchor is `^` or `$`.
type Anchor struct {
	base
	Value string
}

func (*Anchor) Type() string { return "Anchor" }

// Assertion is one of the zero-width assertions: A z Z G b B.
type Assertion struct {
	base
	Value string
}

func (*Assertion) Type() string { return "Assertion" }

// Keep is `\K`.
type Keep struct{ base }

func (*Keep) Type() string { return "Keep" }

// CharClass is `[...]`/`[^...]`; Expression is a Sequence (concatenation)
// or Alternation of its members.
type CharClass struct {
	base
	IsNegated  bool
	Expression Node
}

func (*CharClass) Type() string { return "CharClass" }

// Range is `a-z` inside a character class.
type Range struct {
	base
	Start Node
	End   Node
}

func (*Range) Type() string { return "Range" }

// ClassOperation is PCRE2's `&&` (intersection) or `--` (subtraction)
// between two character-class members.
type ClassOperation struct {
	base
	Kind  ClassOpKind
	Left  Node
	Right Node
}

func (*ClassOperation) Type() string { return "ClassOperation" }

// ControlChar is `\cX`.
type ControlChar struct {
	base
	Char byte
}

func (*ControlChar) Type() string { return "ControlChar" }

// Backref is a back-reference by numeric index or name; Ref carries the
// raw reference text (e.g. "1", "name").
type Backref struct {
	base
	Ref string
}

func (*Backref) Type() string { return "Backref" }

// Subroutine is a call site re-using a previously defined subpattern:
// (?R) (?n) (?&name) (?P>name) etc. Syntax records which spelling was
// used ("?", "&", "P>", "g").
type Subroutine struct {
	base
	Reference string
	Syntax    string
}

func (*Subroutine) Type() string { return "Subroutine" }

// Conditional is `(?(cond)yes|no)`; No may be an empty Literal.
type Conditional struct {
	base
	Condition Node
	Yes       Node
	No        Node
}

func (*Conditional) Type() string { return "Conditional" }

// Define is `(?(DEFINE)...)`.
type Define struct {
	base
	Content Node
}

func (*Define) Type() string { return "Define" }

// Comment is `(?#...)`.
type Comment struct {
	base
	Text string
}

func (*Comment) Type() string { return "Comment" }

// PcreVerb is a backtracking-control verb: (*FAIL) (*COMMIT) (*SKIP)
// (*PRUNE) (*THEN) (*MARK:x) etc. Verb carries the full text between the
// parens, including any `:arg`.
type PcreVerb struct {
	base
	Verb string
}

func (*PcreVerb) Type() string { return "PcreVerb" }

// LimitMatch is `(*LIMIT_MATCH=n)`.
type LimitMatch struct {
	base
	Limit int
}

func (*LimitMatch) Type() string { return "LimitMatch" }

// Callout is `(?C)`, `(?Cn)`, or `(?C"string")`.
type Callout struct {
	base
	NumericID          int
	StringID           string
	HasIdentifier      bool
	IsStringIdentifier bool
}

func (*Callout) Type() string { return "Callout" }

// ScriptRun is `(*script_run:...)` / `(*atomic_script_run:...)`: its
// content must belong to a single Unicode script, but the content itself
// is an ordinary subpattern.
type ScriptRun struct {
	base
	Content Node
	Atomic  bool
}

func (*ScriptRun) Type() string { return "ScriptRun" }

// VersionCondition is the `VERSION>=n` / `VERSION=n` test inside a
// conditional group's condition slot.
type VersionCondition struct {
	base
	Operator string
	Version  string
}

func (*VersionCondition) Type() string { return "VersionCondition" }
