// Package lexer provides the low-level, on-demand character scanning
// primitives the parser drives. It is deliberately not a classic
// pre-tokenizing lexer: full PCRE has constructs (the assertion condition
// of a conditional group, `(?(?=foo)yes|no)`) where the parser must
// recursively re-enter ordinary pattern grammar in the middle of what
// would otherwise be a single lexical token. A flat upfront token array
// (the shape a simpler grammar — see the quasilyte/regex/syntax lexer —
// can get away with) cannot express that recursion cleanly, so instead
// this package exposes a cursor (Scanner) that the parser pulls from one
// rune or one fixed-width scan at a time.
package lexer

import "unicode/utf8"

// Scanner is a cursor over a pattern's source bytes.
type Scanner struct {
	Src string
	pos int
}

// New returns a Scanner positioned at the start of src.
func New(src string) *Scanner {
	return &Scanner{Src: src}
}

// Pos returns the current byte offset.
func (s *Scanner) Pos() int { return s.pos }

// SetPos moves the cursor to an arbitrary offset (used to backtrack when a
// tentative scan, e.g. a `{n,m}` quantifier attempt, turns out invalid).
func (s *Scanner) SetPos(p int) { s.pos = p }

// Eof reports whether the cursor has reached the end of input.
func (s *Scanner) Eof() bool { return s.pos >= len(s.Src) }

// Peek returns the byte at the cursor, or 0 at end of input.
func (s *Scanner) Peek() byte { return s.PeekAt(0) }

// PeekAt returns the byte `offset` bytes ahead of the cursor, or 0 if that
// is past the end of input.
func (s *Scanner) PeekAt(offset int) byte {
	p := s.pos + offset
	if p < 0 || p >= len(s.Src) {
		return 0
	}
	return s.Src[p]
}

// HasPrefix reports whether the remaining input starts with s2.
func (s *Scanner) HasPrefix(s2 string) bool {
	rest := s.Src[s.pos:]
	if len(rest) < len(s2) {
		return false
	}
	return rest[:len(s2)] == s2
}

// Advance consumes and returns one byte.
func (s *Scanner) Advance() byte {
	b := s.Peek()
	if !s.Eof() {
		s.pos++
	}
	return b
}

// AdvanceN consumes n bytes.
func (s *Scanner) AdvanceN(n int) {
	s.pos += n
	if s.pos > len(s.Src) {
		s.pos = len(s.Src)
	}
}

// AdvanceRune decodes and consumes one UTF-8 rune, returning it and its
// byte width.
func (s *Scanner) AdvanceRune() (rune, int) {
	if s.Eof() {
		return 0, 0
	}
	r, size := utf8.DecodeRuneInString(s.Src[s.pos:])
	s.pos += size
	return r, size
}

// IndexByte returns the offset (relative to the cursor) of the next
// occurrence of b, or -1 if not found before the end of input.
func (s *Scanner) IndexByte(b byte) int {
	for i := s.pos; i < len(s.Src); i++ {
		if s.Src[i] == b {
			return i - s.pos
		}
	}
	return -1
}

// Index returns the offset (relative to the cursor) of the next
// occurrence of sub, or -1 if not found.
func (s *Scanner) Index(sub string) int {
	rest := s.Src[s.pos:]
	for i := 0; i+len(sub) <= len(rest); i++ {
		if rest[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func IsDigit(ch byte) bool      { return ch >= '0' && ch <= '9' }
func IsOctalDigit(ch byte) bool { return ch >= '0' && ch <= '7' }
func IsHexDigit(ch byte) bool {
	return IsDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
func IsAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
func IsAlnum(ch byte) bool { return IsAlpha(ch) || IsDigit(ch) }
func IsSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}

// HexValue returns the numeric value of a single hex digit.
func HexValue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	default:
		return -1
	}
}
