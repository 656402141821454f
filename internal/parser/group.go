package parser

import (
	"github.com/yoeunes/pcreanalyze/internal/ast"
	"github.com/yoeunes/pcreanalyze/internal/lexer"
)

// parseGroupOrVerb parses any construct starting with '(': a capturing or
// special group, a `(*VERB)`-shaped backtracking control, script run, or
// match-limit directive.
func (p *Parser) parseGroupOrVerb() (ast.Node, error) {
	begin := p.sc.Pos()
	p.sc.Advance() // '('
	if p.atEnd() {
		return nil, p.errf(ast.ErrUnbalancedGroup, begin, p.sc.Pos(), "unterminated group")
	}
	switch p.sc.Peek() {
	case '*':
		return p.parseStarConstruct(begin)
	case '?':
		return p.parseQuestionGroup(begin)
	default:
		child, err := p.parseAlternation()
		if err != nil {
			return nil, err
		}
		if err := p.expectRParen(begin); err != nil {
			return nil, err
		}
		g := &ast.Group{Kind: ast.GroupCapturing, Child: child}
		g.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		idx := p.state.NextGroupNumber()
		p.state.Register(idx, g)
		return g, nil
	}
}

func (p *Parser) expectRParen(groupBegin int) error {
	if p.atEnd() || p.sc.Peek() != ')' {
		return p.errf(ast.ErrUnbalancedGroup, groupBegin, p.sc.Pos(), "missing closing ')'")
	}
	p.sc.Advance()
	return nil
}

// parseQuestionGroup handles every `(?...)` form: non-capturing, named,
// lookaround, atomic, branch-reset, comment, callout, conditional,
// subroutine call, and inline flags.
func (p *Parser) parseQuestionGroup(begin int) (ast.Node, error) {
	p.sc.Advance() // '?'
	if p.atEnd() {
		return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "incomplete group prefix")
	}
	switch p.sc.Peek() {
	case ':':
		p.sc.Advance()
		return p.parseSimpleGroup(begin, ast.GroupNonCapturing, "")
	case '=':
		p.sc.Advance()
		return p.parseSimpleGroup(begin, ast.GroupLookaheadPositive, "")
	case '!':
		p.sc.Advance()
		return p.parseSimpleGroup(begin, ast.GroupLookaheadNegative, "")
	case '>':
		p.sc.Advance()
		return p.parseSimpleGroup(begin, ast.GroupAtomic, "")
	case '|':
		p.sc.Advance()
		return p.parseSimpleGroup(begin, ast.GroupBranchReset, "")
	case '#':
		p.sc.Advance()
		return p.parseComment(begin)
	case '(':
		return p.parseConditional(begin)
	case 'C':
		return p.parseCallout(begin)
	case 'R':
		if p.sc.PeekAt(1) == ')' {
			p.sc.Advance()
			p.sc.Advance()
			n := &ast.Subroutine{Reference: "R", Syntax: "?"}
			n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
			return n, nil
		}
		return p.parseInlineFlags(begin)
	case '&':
		p.sc.Advance()
		name, ok := p.scanUntilByte(')', true)
		if !ok {
			return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "unterminated subroutine call")
		}
		n := &ast.Subroutine{Reference: name, Syntax: "&"}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	case '<':
		if p.sc.PeekAt(1) == '=' {
			p.sc.AdvanceN(2)
			return p.parseSimpleGroup(begin, ast.GroupLookbehindPositive, "")
		}
		if p.sc.PeekAt(1) == '!' {
			p.sc.AdvanceN(2)
			return p.parseSimpleGroup(begin, ast.GroupLookbehindNegative, "")
		}
		return p.parseNamedGroup(begin, '>')
	case '\'':
		return p.parseNamedGroup(begin, '\'')
	case 'P':
		return p.parsePGroup(begin)
	case '-', '+':
		if lexer.IsDigit(p.sc.PeekAt(1)) {
			return p.parseRelativeSubroutine(begin)
		}
		return p.parseInlineFlags(begin)
	default:
		if lexer.IsDigit(p.sc.Peek()) {
			return p.parseRelativeSubroutine(begin)
		}
		return p.parseInlineFlags(begin)
	}
}

func (p *Parser) parseSimpleGroup(begin int, kind ast.GroupKind, flags string) (ast.Node, error) {
	child, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if err := p.expectRParen(begin); err != nil {
		return nil, err
	}
	g := &ast.Group{Kind: kind, Flags: flags, Child: child}
	g.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
	if kind == ast.GroupCapturing {
		idx := p.state.NextGroupNumber()
		p.state.Register(idx, g)
	}
	return g, nil
}

func (p *Parser) parseNamedGroup(begin int, closer byte) (ast.Node, error) {
	p.sc.Advance() // the opening '<' or '\''
	name, ok := p.scanUntilByte(closer, true)
	if !ok {
		return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "unterminated named group")
	}
	child, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if err := p.expectRParen(begin); err != nil {
		return nil, err
	}
	g := &ast.Group{Kind: ast.GroupNamed, Name: name, Child: child}
	g.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
	idx := p.state.NextGroupNumber()
	p.state.Register(idx, g)
	return g, nil
}

// parsePGroup handles the three `(?P...)` spellings: `(?P<name>...)`
// (named capture), `(?P=name)` (back-reference by name), and `(?P>name)`
// (subroutine call by name).
func (p *Parser) parsePGroup(begin int) (ast.Node, error) {
	p.sc.Advance() // 'P'
	if p.atEnd() {
		return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "incomplete (?P... form")
	}
	switch p.sc.Peek() {
	case '<':
		p.sc.Advance()
		name, ok := p.scanUntilByte('>', true)
		if !ok {
			return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "unterminated (?P<name>")
		}
		child, err := p.parseAlternation()
		if err != nil {
			return nil, err
		}
		if err := p.expectRParen(begin); err != nil {
			return nil, err
		}
		g := &ast.Group{Kind: ast.GroupNamed, Name: name, Child: child}
		g.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		idx := p.state.NextGroupNumber()
		p.state.Register(idx, g)
		return g, nil
	case '=':
		p.sc.Advance()
		name, ok := p.scanUntilByte(')', true)
		if !ok {
			return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "unterminated (?P=name)")
		}
		n := &ast.Backref{Ref: name}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	case '>':
		p.sc.Advance()
		name, ok := p.scanUntilByte(')', true)
		if !ok {
			return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "unterminated (?P>name)")
		}
		n := &ast.Subroutine{Reference: name, Syntax: "P>"}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	default:
		return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "unrecognized (?P... form")
	}
}

func (p *Parser) parseRelativeSubroutine(begin int) (ast.Node, error) {
	sign := ""
	if p.sc.Peek() == '-' || p.sc.Peek() == '+' {
		sign = string(p.sc.Advance())
	}
	digits := p.scanDigits()
	if digits == "" {
		return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "expected a numeric subroutine reference")
	}
	if err := p.expectRParen(begin); err != nil {
		return nil, err
	}
	n := &ast.Subroutine{Reference: sign + digits, Syntax: "?"}
	n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
	return n, nil
}

func (p *Parser) parseComment(begin int) (ast.Node, error) {
	text, ok := p.scanUntilByte(')', true)
	if !ok {
		return nil, p.errf(ast.ErrUnbalancedGroup, begin, p.sc.Pos(), "unterminated (?#comment)")
	}
	n := &ast.Comment{Text: text}
	n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
	return n, nil
}

// parseInlineFlags handles both `(?flags:pattern)` and the flag-only
// `(?flags)` form, the latter represented with an empty Sequence child.
func (p *Parser) parseInlineFlags(begin int) (ast.Node, error) {
	start := p.sc.Pos()
	for !p.atEnd() && p.sc.Peek() != ':' && p.sc.Peek() != ')' {
		p.sc.Advance()
	}
	if p.atEnd() {
		return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "unterminated inline-flags group")
	}
	flags := p.sc.Src[start:p.sc.Pos()]
	if p.sc.Peek() == ':' {
		p.sc.Advance()
		child, err := p.parseAlternation()
		if err != nil {
			return nil, err
		}
		if err := p.expectRParen(begin); err != nil {
			return nil, err
		}
		g := &ast.Group{Kind: ast.GroupInlineFlags, Flags: flags, Child: child}
		g.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return g, nil
	}
	p.sc.Advance() // ')'
	empty := &ast.Sequence{}
	empty.SetPos(ast.Position{Begin: p.sc.Pos(), End: p.sc.Pos()})
	g := &ast.Group{Kind: ast.GroupInlineFlags, Flags: flags, Child: empty}
	g.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
	return g, nil
}

func (p *Parser) parseCallout(begin int) (ast.Node, error) {
	p.sc.Advance() // 'C'
	if p.atEnd() {
		return nil, p.errf(ast.ErrInvalidCallout, begin, p.sc.Pos(), "unterminated callout")
	}
	switch {
	case p.sc.Peek() == ')':
		p.sc.Advance()
		n := &ast.Callout{}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	case lexer.IsDigit(p.sc.Peek()):
		digits := p.scanDigits()
		if err := p.expectRParen(begin); err != nil {
			return nil, err
		}
		n := &ast.Callout{HasIdentifier: true, NumericID: atoiSimple(digits)}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	case p.sc.Peek() == '"':
		p.sc.Advance()
		text, ok := p.scanUntilByte('"', true)
		if !ok {
			return nil, p.errf(ast.ErrInvalidCallout, begin, p.sc.Pos(), "unterminated callout string")
		}
		if err := p.expectRParen(begin); err != nil {
			return nil, err
		}
		n := &ast.Callout{HasIdentifier: true, IsStringIdentifier: true, StringID: text}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	default:
		return nil, p.errf(ast.ErrInvalidCallout, begin, p.sc.Pos(), "unrecognized callout form")
	}
}

// parseConditional handles `(?(cond)yes|no)`. The cursor is at the second
// '(' of "(?(" on entry.
func (p *Parser) parseConditional(begin int) (ast.Node, error) {
	p.sc.Advance() // the condition's opening '('
	if p.atEnd() {
		return nil, p.errf(ast.ErrInvalidConditional, begin, p.sc.Pos(), "unterminated conditional")
	}

	if p.sc.HasPrefix("DEFINE)") {
		p.sc.AdvanceN(len("DEFINE)"))
		content, err := p.parseAlternation()
		if err != nil {
			return nil, err
		}
		if err := p.expectRParen(begin); err != nil {
			return nil, err
		}
		d := &ast.Define{Content: content}
		d.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return d, nil
	}

	cond, err := p.parseConditionalTest(begin)
	if err != nil {
		return nil, err
	}

	yes, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	var no ast.Node
	if !p.atEnd() && p.sc.Peek() == '|' {
		p.sc.Advance()
		no, err = p.parseSequence()
		if err != nil {
			return nil, err
		}
	} else {
		empty := &ast.Literal{}
		empty.SetPos(ast.Position{Begin: p.sc.Pos(), End: p.sc.Pos()})
		no = empty
	}
	if err := p.expectRParen(begin); err != nil {
		return nil, err
	}
	c := &ast.Conditional{Condition: cond, Yes: yes, No: no}
	c.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
	return c, nil
}

// parseConditionalTest parses the condition slot of a conditional group
// and consumes its own closing ')'.
func (p *Parser) parseConditionalTest(groupBegin int) (ast.Node, error) {
	begin := p.sc.Pos()
	if p.sc.HasPrefix("R)") {
		p.sc.AdvanceN(2)
		n := &ast.Subroutine{Reference: "R", Syntax: "?"}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	}
	if p.sc.HasPrefix("VERSION") {
		p.sc.AdvanceN(len("VERSION"))
		op := ""
		if p.sc.HasPrefix(">=") {
			op = ">="
			p.sc.AdvanceN(2)
		} else if p.sc.Peek() == '=' {
			op = "="
			p.sc.Advance()
		}
		version, ok := p.scanUntilByte(')', true)
		if !ok {
			return nil, p.errf(ast.ErrInvalidConditional, groupBegin, p.sc.Pos(), "unterminated VERSION condition")
		}
		n := &ast.VersionCondition{Operator: op, Version: version}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	}
	switch {
	case p.sc.Peek() == '<':
		p.sc.Advance()
		name, ok := p.scanUntilByte('>', true)
		if !ok {
			return nil, p.errf(ast.ErrInvalidConditional, groupBegin, p.sc.Pos(), "unterminated condition name")
		}
		if err := p.expectRParen(groupBegin); err != nil {
			return nil, err
		}
		n := &ast.Backref{Ref: name}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	case p.sc.Peek() == '\'':
		p.sc.Advance()
		name, ok := p.scanUntilByte('\'', true)
		if !ok {
			return nil, p.errf(ast.ErrInvalidConditional, groupBegin, p.sc.Pos(), "unterminated condition name")
		}
		if err := p.expectRParen(groupBegin); err != nil {
			return nil, err
		}
		n := &ast.Backref{Ref: name}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	case lexer.IsDigit(p.sc.Peek()):
		digits := p.scanDigits()
		if err := p.expectRParen(groupBegin); err != nil {
			return nil, err
		}
		n := &ast.Backref{Ref: digits}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	case p.sc.Peek() == '?':
		p.sc.Advance()
		if p.atEnd() || (p.sc.Peek() != '=' && p.sc.Peek() != '!') {
			return nil, p.errf(ast.ErrInvalidConditional, groupBegin, p.sc.Pos(), "unrecognized condition form")
		}
		kind := ast.GroupLookaheadPositive
		if p.sc.Peek() == '!' {
			kind = ast.GroupLookaheadNegative
		}
		p.sc.Advance()
		inner, err := p.parseAlternation()
		if err != nil {
			return nil, err
		}
		if err := p.expectRParen(groupBegin); err != nil {
			return nil, err
		}
		g := &ast.Group{Kind: kind, Child: inner}
		g.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return g, nil
	default:
		return nil, p.errf(ast.ErrInvalidConditional, groupBegin, p.sc.Pos(), "unrecognized condition form")
	}
}

// parseStarConstruct handles `(*VERB)`, `(*VERB:arg)`, `(*script_run:...)`,
// `(*atomic_script_run:...)`, and `(*LIMIT_MATCH=n)`. The cursor is at '*'
// on entry.
func (p *Parser) parseStarConstruct(begin int) (ast.Node, error) {
	p.sc.Advance() // '*'
	start := p.sc.Pos()
	for !p.atEnd() {
		c := p.sc.Peek()
		if c == ':' || c == '=' || c == ')' {
			break
		}
		p.sc.Advance()
	}
	if p.atEnd() {
		return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "unterminated (*...) construct")
	}
	name := p.sc.Src[start:p.sc.Pos()]

	switch {
	case name == "script_run" || name == "atomic_script_run":
		if p.sc.Peek() != ':' {
			return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "%s requires ':pattern'", name)
		}
		p.sc.Advance()
		content, err := p.parseAlternation()
		if err != nil {
			return nil, err
		}
		if err := p.expectRParen(begin); err != nil {
			return nil, err
		}
		n := &ast.ScriptRun{Content: content, Atomic: name == "atomic_script_run"}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	case name == "LIMIT_MATCH":
		if p.sc.Peek() != '=' {
			return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "LIMIT_MATCH requires '=n'")
		}
		p.sc.Advance()
		digits := p.scanDigits()
		if digits == "" || p.sc.Peek() != ')' {
			return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "malformed LIMIT_MATCH value")
		}
		p.sc.Advance()
		n := &ast.LimitMatch{Limit: atoiSimple(digits)}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	case p.sc.Peek() == ':':
		p.sc.Advance()
		arg, ok := p.scanUntilByte(')', true)
		if !ok {
			return nil, p.errf(ast.ErrInvalidGroupPrefix, begin, p.sc.Pos(), "unterminated verb")
		}
		n := &ast.PcreVerb{Verb: name + ":" + arg}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	default:
		p.sc.Advance() // ')'
		n := &ast.PcreVerb{Verb: name}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	}
}
