package redos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoeunes/pcreanalyze/internal/parser"
)

func profile(t *testing.T, source string) ProfileResult {
	t.Helper()
	re, err := parser.New().Parse(source)
	require.NoError(t, err)
	return Profile(re)
}

func TestSeedScenarios(t *testing.T) {
	t.Run("plain literal is safe", func(t *testing.T) {
		res := profile(t, "abc")
		assert.Equal(t, SAFE, res.Severity)
	})

	t.Run("single unbounded quantifier is medium", func(t *testing.T) {
		res := profile(t, "a*")
		assert.Equal(t, MEDIUM, res.Severity)
	})

	t.Run("nested unbounded quantifiers are critical", func(t *testing.T) {
		res := profile(t, "(a+)+$")
		assert.Equal(t, CRITICAL, res.Severity)
	})

	t.Run("atomic group around unbounded repetition stays low", func(t *testing.T) {
		res := profile(t, "(?>a+)+")
		assert.LessOrEqual(t, res.Severity, LOW)
	})

	t.Run("overlapping alternation branches under a quantifier are critical", func(t *testing.T) {
		res := profile(t, "(a|a)*")
		assert.Equal(t, CRITICAL, res.Severity)
	})

	t.Run("boundary separated repetition is low", func(t *testing.T) {
		res := profile(t, "a*b")
		assert.Equal(t, LOW, res.Severity)
	})

	t.Run("backreference to a variable length capture is critical", func(t *testing.T) {
		res := profile(t, `^(\w+)\s+\1$`)
		assert.GreaterOrEqual(t, res.Severity, CRITICAL)
		assert.True(t, res.BackrefLoopDetected)
	})

	t.Run("large bounded quantifier is low", func(t *testing.T) {
		res := profile(t, "a{1,10000}")
		assert.Equal(t, LOW, res.Severity)
	})
}

func TestBackrefLoopIsGlobalNotJustUnderQuantifier(t *testing.T) {
	// The backref and the variable-length capture are siblings in a plain
	// Sequence, not both under a shared unbounded quantifier; only the
	// global (whole-pattern) check can catch this one.
	res := profile(t, `(\w+)-\1`)
	assert.True(t, res.BackrefLoopDetected)
	assert.Equal(t, CRITICAL, res.Severity)
}

func TestNoBackrefLoopWhenCaptureIsFixedLength(t *testing.T) {
	res := profile(t, `(ab)\1`)
	assert.False(t, res.BackrefLoopDetected)
}

func TestBackrefLoopWithFiniteRangeQuantifiedCapture(t *testing.T) {
	// The capturing group's child is a{2,5}, a variable-length (non-fixed)
	// range; the max length must come out as 5, not 2, or the capture
	// looks fixed-length and the loop is missed.
	res := profile(t, `(a{2,5})\1`)
	assert.True(t, res.BackrefLoopDetected)
	assert.Equal(t, CRITICAL, res.Severity)
}

func TestNoRegressionFromNestedUnboundedInsideBoundedQuantifier(t *testing.T) {
	// The inner a* is unbounded but not itself nested inside another
	// unbounded quantifier; it stays MEDIUM, same as a top-level a*.
	res := profile(t, "(?:a*){2}")
	assert.Equal(t, MEDIUM, res.Severity)
}

func TestAtomicGroupCapsSeverityEvenDeeplyNested(t *testing.T) {
	res := profile(t, "(?>(a+)+)")
	assert.LessOrEqual(t, res.Severity, LOW)
}

func TestSubroutineIsMediumFinding(t *testing.T) {
	res := profile(t, "(?<x>a)(?&x)")
	assert.GreaterOrEqual(t, res.Severity, MEDIUM)
	found := false
	for _, f := range res.Findings {
		if f.Trigger == "subroutine" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, SAFE < LOW)
	assert.True(t, LOW < UNKNOWN)
	assert.True(t, UNKNOWN < MEDIUM)
	assert.True(t, MEDIUM < HIGH)
	assert.True(t, HIGH < CRITICAL)
}

func TestFindingsCarryStringifiedPattern(t *testing.T) {
	res := profile(t, "a*")
	require.NotEmpty(t, res.Findings)
	assert.NotEmpty(t, res.Findings[0].Pattern)
}

func TestRecommendationsAreDeduplicated(t *testing.T) {
	res := profile(t, "(a+)+(b+)+")
	seen := map[string]int{}
	for _, r := range res.Recommendations {
		seen[r]++
	}
	for msg, n := range seen {
		assert.Equal(t, 1, n, "recommendation %q should appear once", msg)
	}
}
