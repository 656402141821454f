package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoeunes/pcreanalyze/internal/parser"
)

func TestFirstLiteral(t *testing.T) {
	re, err := parser.New().Parse("abc")
	require.NoError(t, err)
	s := First(re.Pattern)
	assert.False(t, s.Unknown)
	assert.True(t, s.Intersects(newSet('a')))
	assert.False(t, s.Intersects(newSet('b')))
}

func TestLastLiteral(t *testing.T) {
	re, err := parser.New().Parse("abc")
	require.NoError(t, err)
	s := Last(re.Pattern)
	assert.True(t, s.Intersects(newSet('c')))
	assert.False(t, s.Intersects(newSet('a')))
}

func TestFirstAlternationUnion(t *testing.T) {
	re, err := parser.New().Parse("a|b")
	require.NoError(t, err)
	s := First(re.Pattern)
	assert.True(t, s.Intersects(newSet('a')))
	assert.True(t, s.Intersects(newSet('b')))
	assert.False(t, s.Intersects(newSet('c')))
}

func TestFirstSkipsZeroWidth(t *testing.T) {
	re, err := parser.New().Parse(`^a`)
	require.NoError(t, err)
	s := First(re.Pattern)
	assert.True(t, s.Intersects(newSet('a')))
}

func TestFirstDotIsUnknown(t *testing.T) {
	re, err := parser.New().Parse(".")
	require.NoError(t, err)
	s := First(re.Pattern)
	assert.True(t, s.Unknown)
}

func TestFirstNegatedClassIsUnknown(t *testing.T) {
	re, err := parser.New().Parse("[^a]")
	require.NoError(t, err)
	s := First(re.Pattern)
	assert.True(t, s.Unknown)
}

func TestFirstCharClassRange(t *testing.T) {
	re, err := parser.New().Parse("[a-c]")
	require.NoError(t, err)
	s := First(re.Pattern)
	assert.False(t, s.Unknown)
	assert.True(t, s.Intersects(newSet('b')))
	assert.False(t, s.Intersects(newSet('d')))
}

func TestIntersectsUnknownAlwaysTrue(t *testing.T) {
	assert.True(t, unknownSet().Intersects(newSet('a')))
	assert.True(t, newSet('a').Intersects(unknownSet()))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, newSet().IsEmpty())
	assert.False(t, newSet('a').IsEmpty())
	assert.False(t, unknownSet().IsEmpty())
}

func TestIsZeroWidth(t *testing.T) {
	anchorRe, err := parser.New().Parse("^")
	require.NoError(t, err)
	assert.True(t, IsZeroWidth(anchorRe.Pattern))

	litRe, err := parser.New().Parse("a")
	require.NoError(t, err)
	assert.False(t, IsZeroWidth(litRe.Pattern))

	lookRe, err := parser.New().Parse("(?=a)")
	require.NoError(t, err)
	assert.True(t, IsZeroWidth(lookRe.Pattern))
}

func TestEnumerationCapFallsBackToUnknown(t *testing.T) {
	re, err := parser.New().Parse(`[\x00-\xff]`)
	require.NoError(t, err)
	s := First(re.Pattern)
	assert.True(t, s.Unknown)
}
