// Package parser turns pattern source into an *ast.Regex. The grammar is
// hand-written recursive descent, with a quantifier read as a postfix on
// the atom before it, driven directly off a lexer.Scanner rather than a
// pre-tokenized stream:
// a handful of PCRE constructs (the assertion condition of a conditional
// group) require re-entering ordinary pattern grammar mid-construct, which
// a flat token array can't express cleanly. The shape otherwise follows
// the same recursive-descent-over-a-cursor architecture the rest of this
// corpus uses for hand-rolled parsers.
package parser

import (
	"github.com/yoeunes/pcreanalyze/internal/ast"
	"github.com/yoeunes/pcreanalyze/internal/lexer"
)

// Parser converts pattern source into an AST. A Parser is single-use: call
// New for each Parse.
type Parser struct {
	sc      *lexer.Scanner
	state   *ast.ParserState
	stopPos int // virtual end-of-input; lets a delimited pattern's body
	// share the source's absolute offsets instead of being re-scanned
	// from a substring.
}

// New returns a ready-to-use Parser.
func New() *Parser {
	return &Parser{}
}

// Parse parses source, auto-detecting whether it is a bare pattern or a
// delimited one (`/pattern/flags`, `#pattern#flags`, `{pattern}flags`...).
// A leading alphanumeric character is never a valid delimiter, so its
// presence selects bare mode. So does a leading backslash, and a leading
// character that already has a meaning at the start of a pattern (`(`,
// `[`, `^`, `.`, `*`, `+`, `?`): "(a)" is a group and "[a-z]" a class, not
// delimited sources. ParseDelimited reads those characters as delimiters.
func (p *Parser) Parse(source string) (*ast.Regex, error) {
	if len(source) == 0 || lexer.IsAlnum(source[0]) {
		return p.ParseBare(source)
	}
	switch source[0] {
	case '\\', '(', '[', '^', '.', '*', '+', '?':
		return p.ParseBare(source)
	}
	return p.ParseDelimited(source)
}

// ParseBare parses source as a pattern with no surrounding delimiters or
// trailing flags.
func (p *Parser) ParseBare(source string) (*ast.Regex, error) {
	p.state = ast.NewParserState()
	p.sc = lexer.New(source)
	p.stopPos = len(source)

	pattern, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if !p.sc.Eof() {
		return nil, p.errf(ast.ErrUnbalancedGroup, p.sc.Pos(), p.sc.Pos()+1, "unexpected %q", p.sc.Peek())
	}

	re := &ast.Regex{Pattern: pattern}
	re.SetPos(ast.Position{Begin: 0, End: len(source)})
	return re, nil
}

// ParseDelimited parses source as `D pattern D flags`, where D is any
// non-alphanumeric character; bracket-shaped delimiters ( [ { < match
// against their mirror image, everything else matches itself.
func (p *Parser) ParseDelimited(source string) (*ast.Regex, error) {
	if len(source) == 0 {
		return nil, ast.NewParseError(ast.ErrUnexpectedEnd, 0, 0, "empty pattern source")
	}
	delim := source[0]
	closing := closingDelimiter(delim)
	bodyStart := 1
	end := findClosingDelimiter(source, bodyStart, delim, closing)
	if end < 0 {
		return nil, ast.NewParseError(ast.ErrUnbalancedGroup, 0, len(source), "missing closing delimiter %q", closing)
	}
	flagsText := source[end+1:]
	flags, ferr := parseFlags(flagsText, end+1)
	if ferr != nil {
		return nil, ferr
	}

	p.state = ast.NewParserState()
	p.sc = lexer.New(source)
	p.sc.SetPos(bodyStart)
	p.stopPos = end

	pattern, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if p.sc.Pos() != end {
		return nil, p.errf(ast.ErrUnbalancedGroup, p.sc.Pos(), p.sc.Pos()+1, "unexpected %q", p.sc.Peek())
	}

	re := &ast.Regex{Delimiter: delim, Flags: flags, Pattern: pattern}
	re.SetPos(ast.Position{Begin: 0, End: len(source)})
	return re, nil
}

func closingDelimiter(d byte) byte {
	switch d {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	default:
		return d
	}
}

func findClosingDelimiter(source string, from int, open, close byte) int {
	bracketed := open != close
	depth := 1
	for i := from; i < len(source); i++ {
		switch source[i] {
		case '\\':
			i++ // skip escaped char, whatever it is
		case close:
			depth--
			if depth == 0 {
				return i
			}
		case open:
			if bracketed {
				depth++
			}
		}
	}
	return -1
}

func parseFlags(text string, baseOffset int) (string, *ast.ParseError) {
	seen := map[byte]bool{}
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !lexer.IsAlpha(c) {
			return "", ast.NewParseError(ast.ErrInvalidFlag, baseOffset+i, baseOffset+i+1, "invalid flag character %q", c)
		}
		if !ast.IsValidFlag(c) {
			return "", ast.NewParseError(ast.ErrInvalidFlag, baseOffset+i, baseOffset+i+1, "unrecognized flag %q", c)
		}
		if seen[c] {
			return "", ast.NewParseError(ast.ErrDuplicateFlag, baseOffset+i, baseOffset+i+1, "duplicate flag %q", c)
		}
		seen[c] = true
		out = append(out, c)
	}
	return string(out), nil
}

// atEnd reports whether the cursor has reached the pattern's virtual end
// (real EOF for a bare pattern, the closing delimiter for a delimited one).
func (p *Parser) atEnd() bool {
	return p.sc.Pos() >= p.stopPos
}

func (p *Parser) errf(kind ast.ErrorKind, begin, end int, format string, args ...any) *ast.ParseError {
	return ast.NewParseError(kind, begin, end, format, args...)
}

// parseAlternation implements `alternation := sequence ('|' sequence)*`,
// returning the lone sequence unwrapped when there is only one branch.
func (p *Parser) parseAlternation() (ast.Node, error) {
	first, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if p.atEnd() || p.sc.Peek() != '|' {
		return first, nil
	}
	alts := []ast.Node{first}
	for !p.atEnd() && p.sc.Peek() == '|' {
		p.sc.Advance()
		seq, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		alts = append(alts, seq)
	}
	begin, endPos := spanOf(alts[0]), spanOf(alts[len(alts)-1])
	n := &ast.Alternation{Alternatives: alts}
	n.SetPos(ast.Position{Begin: begin.Begin, End: endPos.End})
	return n, nil
}

// parseSequence implements `sequence := atom*`, stopping at `|`, `)`, or
// end of input. Adjacent un-quantified Literal atoms are coalesced.
func (p *Parser) parseSequence() (ast.Node, error) {
	start := p.sc.Pos()
	var children []ast.Node
	for !p.atEnd() {
		c := p.sc.Peek()
		if c == '|' || c == ')' {
			break
		}
		atom, err := p.parseQuantified()
		if err != nil {
			return nil, err
		}
		children = append(children, atom)
	}
	children = coalesceLiterals(children)
	end := p.sc.Pos()
	switch len(children) {
	case 0:
		n := &ast.Sequence{}
		n.SetPos(ast.Position{Begin: start, End: end})
		return n, nil
	case 1:
		return children[0], nil
	default:
		n := &ast.Sequence{Children: children}
		n.SetPos(ast.Position{Begin: start, End: end})
		return n, nil
	}
}

func coalesceLiterals(children []ast.Node) []ast.Node {
	if len(children) < 2 {
		return children
	}
	out := make([]ast.Node, 0, len(children))
	for _, c := range children {
		if lit, ok := c.(*ast.Literal); ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*ast.Literal); ok {
				merged := &ast.Literal{Value: prev.Value + lit.Value}
				merged.SetPos(ast.Position{Begin: prev.Pos().Begin, End: lit.Pos().End})
				out[len(out)-1] = merged
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func spanOf(n ast.Node) ast.Position { return n.Pos() }

// parseQuantified parses one atom and, if followed by a quantifier token,
// wraps it in an *ast.Quantifier (including any trailing `?`/`+`
// greediness suffix).
func (p *Parser) parseQuantified() (ast.Node, error) {
	begin := p.sc.Pos()
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	return p.maybeQuantify(atom, begin)
}

func (p *Parser) maybeQuantify(atom ast.Node, begin int) (ast.Node, error) {
	if p.atEnd() {
		return atom, nil
	}
	var kind ast.QuantKind
	var min, max int
	var raw string
	switch p.sc.Peek() {
	case '*':
		p.sc.Advance()
		min, max, raw = 0, -1, "*"
	case '+':
		p.sc.Advance()
		min, max, raw = 1, -1, "+"
	case '?':
		p.sc.Advance()
		min, max, raw = 0, 1, "?"
	case '{':
		savedPos := p.sc.Pos()
		n, m, text, ok := p.tryParseBraceQuantifier()
		if !ok {
			p.sc.SetPos(savedPos)
			return atom, nil
		}
		min, max, raw = n, m, text
	default:
		return atom, nil
	}
	if min > max && max >= 0 {
		return nil, p.errf(ast.ErrInvalidQuantifier, begin, p.sc.Pos(), "quantifier range %q is reversed (min > max)", raw)
	}
	kind = ast.QuantGreedy
	if !p.atEnd() {
		switch p.sc.Peek() {
		case '?':
			p.sc.Advance()
			kind = ast.QuantLazy
		case '+':
			p.sc.Advance()
			kind = ast.QuantPossessive
		}
	}
	q := &ast.Quantifier{Kind: kind, Raw: raw, Min: min, Max: max, Child: atom}
	q.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
	return q, nil
}

// tryParseBraceQuantifier attempts `{n}` `{n,}` `{n,m}` `{,m}` at the
// cursor (which must be at `{`). On any shape mismatch it returns
// ok == false and leaves the cursor advanced arbitrarily; callers restore
// the cursor themselves so malformed braces fall back to a literal `{`.
func (p *Parser) tryParseBraceQuantifier() (min, max int, raw string, ok bool) {
	start := p.sc.Pos()
	p.sc.Advance() // '{'
	hasMin := false
	minVal := 0
	for lexer.IsDigit(p.sc.Peek()) {
		hasMin = true
		minVal = minVal*10 + int(p.sc.Advance()-'0')
	}
	switch p.sc.Peek() {
	case '}':
		if !hasMin {
			return 0, 0, "", false
		}
		p.sc.Advance()
		return minVal, minVal, p.sc.Src[start:p.sc.Pos()], true
	case ',':
		p.sc.Advance()
		hasMax := false
		maxVal := 0
		for lexer.IsDigit(p.sc.Peek()) {
			hasMax = true
			maxVal = maxVal*10 + int(p.sc.Advance()-'0')
		}
		if p.sc.Peek() != '}' {
			return 0, 0, "", false
		}
		p.sc.Advance()
		if !hasMin && !hasMax {
			return 0, 0, "", false
		}
		if !hasMax {
			return minVal, -1, p.sc.Src[start:p.sc.Pos()], true
		}
		if !hasMin {
			minVal = 0
		}
		return minVal, maxVal, p.sc.Src[start:p.sc.Pos()], true
	default:
		return 0, 0, "", false
	}
}

// parseAtom parses a single atom: a group, class, dot, anchor, escape, or
// literal character.
func (p *Parser) parseAtom() (ast.Node, error) {
	begin := p.sc.Pos()
	c := p.sc.Peek()
	switch c {
	case '(':
		return p.parseGroupOrVerb()
	case '[':
		return p.parseCharClass()
	case '.':
		p.sc.Advance()
		n := &ast.Dot{}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	case '^', '$':
		p.sc.Advance()
		n := &ast.Anchor{Value: string(c)}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	case '\\':
		return p.parseEscape(false)
	case '*', '+', '?':
		return nil, p.errf(ast.ErrInvalidQuantifier, begin, begin+1, "nothing to repeat before %q", c)
	case '{':
		// A lone '{' that doesn't open a valid quantifier is a literal.
		savedPos := p.sc.Pos()
		if _, _, _, ok := p.tryParseBraceQuantifier(); ok {
			p.sc.SetPos(savedPos)
			return nil, p.errf(ast.ErrInvalidQuantifier, begin, begin+1, "nothing to repeat before '{'")
		}
		p.sc.SetPos(savedPos)
		fallthrough
	default:
		r, size := p.sc.AdvanceRune()
		if size == 0 {
			return nil, p.errf(ast.ErrUnexpectedEnd, begin, begin, "unexpected end of pattern")
		}
		n := &ast.Literal{Value: string(r)}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	}
}

// scanUntilByte consumes and returns the text up to (not including) the
// next occurrence of stop (a backslash does not escape it), consuming stop
// itself iff consumeStop.
// Returns ok == false if stop is never found before the virtual end.
func (p *Parser) scanUntilByte(stop byte, consumeStop bool) (string, bool) {
	start := p.sc.Pos()
	for !p.atEnd() {
		if p.sc.Peek() == stop {
			text := p.sc.Src[start:p.sc.Pos()]
			if consumeStop {
				p.sc.Advance()
			}
			return text, true
		}
		p.sc.Advance()
	}
	return "", false
}

// scanDigits consumes a run of ASCII decimal digits (possibly empty).
func (p *Parser) scanDigits() string {
	start := p.sc.Pos()
	for !p.atEnd() && lexer.IsDigit(p.sc.Peek()) {
		p.sc.Advance()
	}
	return p.sc.Src[start:p.sc.Pos()]
}

func atoiSimple(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
