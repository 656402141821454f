package stringify

import (
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoeunes/pcreanalyze/internal/parser"
)

func TestNodeLiteral(t *testing.T) {
	re, err := parser.New().Parse("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", Node(re.Pattern))
}

func TestNodeEscapesMetacharacters(t *testing.T) {
	re, err := parser.New().Parse(`a\.b`)
	require.NoError(t, err)
	assert.Equal(t, `a\.b`, Node(re.Pattern))
}

func TestNodeAlternation(t *testing.T) {
	re, err := parser.New().Parse("a|b|c")
	require.NoError(t, err)
	assert.Equal(t, "a|b|c", Node(re.Pattern))
}

func TestNodeGroupKinds(t *testing.T) {
	cases := []string{
		"(a)", "(?:a)", "(?<w>a)", "(?=a)", "(?!a)", "(?<=a)", "(?<!a)", "(?>a)",
	}
	for _, src := range cases {
		re, err := parser.New().Parse(src)
		require.NoError(t, err, src)
		assert.Equal(t, src, Node(re.Pattern), src)
	}
}

func TestNodeQuantifierSuffixes(t *testing.T) {
	cases := []string{"a*", "a+", "a?", "a*?", "a+?", "a*+", "a++", "a{2,5}"}
	for _, src := range cases {
		re, err := parser.New().Parse(src)
		require.NoError(t, err, src)
		assert.Equal(t, src, Node(re.Pattern), src)
	}
}

func TestNodeCharClass(t *testing.T) {
	re, err := parser.New().Parse("[a-z]")
	require.NoError(t, err)
	assert.Equal(t, "[a-z]", Node(re.Pattern))

	neg, err := parser.New().Parse("[^a-z]")
	require.NoError(t, err)
	assert.Equal(t, "[^a-z]", Node(neg.Pattern))
}

func TestNodeConditionalWithAndWithoutAlternative(t *testing.T) {
	withBoth, err := parser.New().Parse("(?(1)a|b)")
	require.NoError(t, err)
	assert.Equal(t, "(?(1)a|b)", Node(withBoth.Pattern))

	withoutNo, err := parser.New().Parse("(?(1)a)")
	require.NoError(t, err)
	assert.Equal(t, "(?(1)a)", Node(withoutNo.Pattern))
}

func TestNodeVersionConditionHasNoDoubleParen(t *testing.T) {
	re, err := parser.New().Parse("(?(VERSION>=10.40)a|b)")
	require.NoError(t, err)
	got := Node(re.Pattern)
	assert.Equal(t, "(?(VERSION>=10.40)a|b)", got)
	assert.NotContains(t, got, "))a")
}

func TestNodeDefine(t *testing.T) {
	re, err := parser.New().Parse("(?(DEFINE)(?<x>a))")
	require.NoError(t, err)
	assert.Equal(t, "(?(DEFINE)(?<x>a))", Node(re.Pattern))
}

func TestNodeVerbsAndScriptRun(t *testing.T) {
	cases := []string{"(*FAIL)", "(*MARK:here)", "(*script_run:a)", "(*atomic_script_run:a)"}
	for _, src := range cases {
		re, err := parser.New().Parse(src)
		require.NoError(t, err, src)
		assert.Equal(t, src, Node(re.Pattern), src)
	}
}

func TestNodeCallout(t *testing.T) {
	cases := []string{"(?C)", "(?C1)", `(?C"tag")`}
	for _, src := range cases {
		re, err := parser.New().Parse(src)
		require.NoError(t, err, src)
		assert.Equal(t, src, Node(re.Pattern), src)
	}
}

func TestNodeLimitMatch(t *testing.T) {
	re, err := parser.New().Parse("(*LIMIT_MATCH=500)")
	require.NoError(t, err)
	assert.Equal(t, "(*LIMIT_MATCH=500)", Node(re.Pattern))
}

func TestRegexIncludesDelimitersAndFlags(t *testing.T) {
	re, err := parser.New().Parse("/abc/i")
	require.NoError(t, err)
	assert.Equal(t, "/abc/i", Regex(re))
}

// regexp2CompilesRendered is the external validity oracle: rendered output
// is fed to a second, independent engine to catch malformed round trips
// that happen to satisfy this package's own parser.
func regexp2CompilesRendered(t *testing.T, source string) {
	t.Helper()
	re, err := parser.New().Parse(source)
	require.NoError(t, err)
	rendered := Node(re.Pattern)
	_, err = regexp2.Compile(rendered, regexp2.None)
	assert.NoError(t, err, "rendered pattern %q (from %q) should compile", rendered, source)
}

func TestRenderedOutputCompilesUnderAnIndependentEngine(t *testing.T) {
	sources := []string{
		"abc",
		"a|b|c",
		"(a)(b)(?:c)",
		"(?=a)b",
		"(?<!a)b",
		"a*",
		"a+?",
		"a{2,5}",
		"[a-z]",
		"[^a-z0-9]",
		`\d+\s*\w`,
		"(?<word>\\w+)",
		"(?(1)a|b)",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			regexp2CompilesRendered(t, src)
		})
	}
}
