package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScannerCursor(t *testing.T) {
	sc := New("abéc")
	assert.False(t, sc.Eof())
	assert.Equal(t, byte('a'), sc.Peek())
	assert.Equal(t, byte('b'), sc.PeekAt(1))

	assert.Equal(t, byte('a'), sc.Advance())
	assert.Equal(t, 1, sc.Pos())
	assert.Equal(t, byte('b'), sc.Advance())

	r, size := sc.AdvanceRune()
	assert.Equal(t, 'é', r)
	assert.Equal(t, 2, size)

	assert.Equal(t, byte('c'), sc.Advance())
	assert.True(t, sc.Eof())
	assert.Equal(t, byte(0), sc.Peek())
}

func TestScannerSetPosBacktracks(t *testing.T) {
	sc := New("abc")
	sc.AdvanceN(2)
	assert.Equal(t, byte('c'), sc.Peek())
	sc.SetPos(0)
	assert.Equal(t, byte('a'), sc.Peek())
}

func TestScannerHasPrefix(t *testing.T) {
	sc := New("VERSION>=10")
	assert.True(t, sc.HasPrefix("VERSION"))
	assert.False(t, sc.HasPrefix("version"))
	sc.AdvanceN(len("VERSION"))
	assert.True(t, sc.HasPrefix(">="))
}

func TestScannerIndex(t *testing.T) {
	sc := New(`abc\Edef`)
	assert.Equal(t, 3, sc.Index(`\E`))
	assert.Equal(t, -1, sc.Index("zzz"))
	assert.Equal(t, 2, sc.IndexByte('c'))
}

func TestScannerAdvanceRuneAtEof(t *testing.T) {
	sc := New("")
	r, size := sc.AdvanceRune()
	assert.Equal(t, rune(0), r)
	assert.Equal(t, 0, size)
}

func TestCharacterClassifiers(t *testing.T) {
	assert.True(t, IsDigit('5'))
	assert.False(t, IsDigit('a'))
	assert.True(t, IsOctalDigit('7'))
	assert.False(t, IsOctalDigit('8'))
	assert.True(t, IsHexDigit('f'))
	assert.True(t, IsHexDigit('F'))
	assert.False(t, IsHexDigit('g'))
	assert.True(t, IsAlpha('Z'))
	assert.False(t, IsAlpha('9'))
	assert.True(t, IsAlnum('9'))
	assert.True(t, IsSpace('\t'))
	assert.False(t, IsSpace('x'))
}

func TestHexValue(t *testing.T) {
	assert.Equal(t, 10, HexValue('a'))
	assert.Equal(t, 10, HexValue('A'))
	assert.Equal(t, 9, HexValue('9'))
	assert.Equal(t, -1, HexValue('g'))
}
