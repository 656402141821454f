package pcre

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoeunes/pcreanalyze/internal/ast"
)

func TestParse(t *testing.T) {
	re, err := Parse("/a+b/i")
	require.NoError(t, err)
	assert.Equal(t, "i", re.Flags)
}

func TestParseInvalidReturnsParseError(t *testing.T) {
	_, err := Parse("(a")
	require.Error(t, err)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestProfile(t *testing.T) {
	re, err := Parse("(a+)+")
	require.NoError(t, err)
	res := Profile(re)
	assert.Equal(t, Critical, res.Severity)
}

func TestScore(t *testing.T) {
	re, err := Parse("abc")
	require.NoError(t, err)
	assert.Equal(t, 3, Score(re))
}

// countingVisitor counts how many Literal nodes Accept dispatches to,
// demonstrating the Accept extension seam; it embeds ast.DefaultVisitor,
// which this package does not re-export.
type countingVisitor struct {
	ast.DefaultVisitor[int]
	literals int
}

func (c *countingVisitor) VisitRegex(n *ast.Regex) int {
	return ast.Accept(n.Pattern, c)
}

func (c *countingVisitor) VisitLiteral(n *ast.Literal) int {
	c.literals++
	return c.literals
}

func (c *countingVisitor) VisitSequence(n *ast.Sequence) int {
	total := 0
	for _, child := range n.Children {
		total += ast.Accept(child, c)
	}
	return total
}

func TestAcceptDispatchesToCustomVisitor(t *testing.T) {
	re, err := Parse("a.b")
	require.NoError(t, err)
	v := &countingVisitor{}
	Accept[int](re, v)
	assert.Equal(t, 2, v.literals)
}
