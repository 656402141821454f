package parser

import (
	"github.com/yoeunes/pcreanalyze/internal/ast"
)

// parseCharClass parses `[...]` / `[^...]` starting at the cursor (which
// must be at '[').
func (p *Parser) parseCharClass() (ast.Node, error) {
	begin := p.sc.Pos()
	p.sc.Advance() // '['
	negated := false
	if !p.atEnd() && p.sc.Peek() == '^' {
		negated = true
		p.sc.Advance()
	}
	expr, err := p.parseClassExpression(true)
	if err != nil {
		return nil, err
	}
	if p.atEnd() || p.sc.Peek() != ']' {
		return nil, p.errf(ast.ErrUnbalancedCharClass, begin, p.sc.Pos(), "unterminated character class")
	}
	p.sc.Advance() // ']'
	n := &ast.CharClass{IsNegated: negated, Expression: expr}
	n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
	return n, nil
}

// parseClassExpression parses the body of a character class up to (not
// including) its closing ']', handling the `&&`/`--` class-operation
// extensions by splitting at the first operator it sees and recursing
// right-associatively for whatever follows.
func (p *Parser) parseClassExpression(first bool) (ast.Node, error) {
	start := p.sc.Pos()
	var members []ast.Node
	isFirst := first
	for {
		if p.atEnd() {
			return nil, p.errf(ast.ErrUnbalancedCharClass, start, p.sc.Pos(), "unterminated character class")
		}
		if p.sc.Peek() == ']' && !isFirst {
			break
		}
		if !isFirst && p.sc.HasPrefix("&&") {
			p.sc.AdvanceN(2)
			left := wrapClassMembers(members, start, p.sc.Pos())
			right, err := p.parseClassExpression(false)
			if err != nil {
				return nil, err
			}
			n := &ast.ClassOperation{Kind: ast.ClassOpIntersection, Left: left, Right: right}
			n.SetPos(ast.Position{Begin: start, End: p.sc.Pos()})
			return n, nil
		}
		if !isFirst && p.sc.HasPrefix("--") {
			p.sc.AdvanceN(2)
			left := wrapClassMembers(members, start, p.sc.Pos())
			right, err := p.parseClassExpression(false)
			if err != nil {
				return nil, err
			}
			n := &ast.ClassOperation{Kind: ast.ClassOpSubtraction, Left: left, Right: right}
			n.SetPos(ast.Position{Begin: start, End: p.sc.Pos()})
			return n, nil
		}
		member, err := p.parseClassMember(isFirst)
		if err != nil {
			return nil, err
		}
		member, err = p.maybeClassRange(member)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
		isFirst = false
	}
	return wrapClassMembers(members, start, p.sc.Pos()), nil
}

func wrapClassMembers(members []ast.Node, begin, end int) ast.Node {
	switch len(members) {
	case 0:
		n := &ast.Sequence{}
		n.SetPos(ast.Position{Begin: begin, End: end})
		return n
	case 1:
		return members[0]
	default:
		n := &ast.Sequence{Children: members}
		n.SetPos(ast.Position{Begin: begin, End: end})
		return n
	}
}

// parseClassMember parses one member of a character class: a POSIX class,
// an escape, or a literal character (including a literal ']' when it is
// the very first member after `[` or `[^`).
func (p *Parser) parseClassMember(isFirst bool) (ast.Node, error) {
	begin := p.sc.Pos()
	if p.sc.Peek() == ']' && isFirst {
		p.sc.Advance()
		n := &ast.Literal{Value: "]"}
		n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
		return n, nil
	}
	if p.sc.HasPrefix("[:") {
		return p.parsePosixClass()
	}
	if p.sc.Peek() == '\\' {
		return p.parseEscape(true)
	}
	r, size := p.sc.AdvanceRune()
	if size == 0 {
		return nil, p.errf(ast.ErrUnbalancedCharClass, begin, p.sc.Pos(), "unterminated character class")
	}
	n := &ast.Literal{Value: string(r)}
	n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
	return n, nil
}

func (p *Parser) parsePosixClass() (ast.Node, error) {
	begin := p.sc.Pos()
	p.sc.AdvanceN(2) // "[:"
	negated := false
	if !p.atEnd() && p.sc.Peek() == '^' {
		negated = true
		p.sc.Advance()
	}
	idx := p.sc.Index(":]")
	if idx < 0 {
		return nil, p.errf(ast.ErrInvalidPosixClass, begin, p.sc.Pos(), "unterminated POSIX class")
	}
	name := p.sc.Src[p.sc.Pos() : p.sc.Pos()+idx]
	p.sc.AdvanceN(idx + 2)
	n := &ast.PosixClass{Class: name, Negated: negated}
	n.SetPos(ast.Position{Begin: begin, End: p.sc.Pos()})
	return n, nil
}

// maybeClassRange checks for a trailing `-end` after a rangeable member
// and, if present and not actually the start of a `--` class operation,
// folds it into an ast.Range.
func (p *Parser) maybeClassRange(m ast.Node) (ast.Node, error) {
	if !isRangeable(m) {
		return m, nil
	}
	if p.atEnd() || p.sc.Peek() != '-' {
		return m, nil
	}
	if p.sc.HasPrefix("--") {
		return m, nil // leave for the `--` class-operation check
	}
	if p.sc.PeekAt(1) == ']' {
		return m, nil // trailing literal '-' before the closer
	}
	dashPos := p.sc.Pos()
	p.sc.Advance() // '-'
	end, err := p.parseClassMember(false)
	if err != nil {
		return nil, err
	}
	if !isRangeable(end) {
		return nil, p.errf(ast.ErrInvalidQuantifier, dashPos, p.sc.Pos(), "invalid character range end")
	}
	lo, loOK := rangeOrd(m)
	hi, hiOK := rangeOrd(end)
	if loOK && hiOK && lo > hi {
		return nil, p.errf(ast.ErrInvalidQuantifier, m.Pos().Begin, end.Pos().End, "character range is reversed (start > end)")
	}
	n := &ast.Range{Start: m, End: end}
	n.SetPos(ast.Position{Begin: m.Pos().Begin, End: end.Pos().End})
	return n, nil
}

func isRangeable(n ast.Node) bool {
	switch v := n.(type) {
	case *ast.Literal:
		return len([]rune(v.Value)) == 1
	case *ast.CharLiteral:
		return v.CodePoint >= 0
	case *ast.ControlChar:
		return true
	default:
		return false
	}
}

func rangeOrd(n ast.Node) (rune, bool) {
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
