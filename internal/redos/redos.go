// Package redos walks a parsed pattern looking for constructs that make a
// backtracking engine vulnerable to catastrophic backtracking (ReDoS):
// nested unbounded quantifiers, overlapping alternation branches repeated
// under a quantifier, and backreferences into variable-length captures.
//
// The traversal threads an explicit context record through recursion
// (unboundedDepth, totalDepth, inAtomic, prev/next siblings) rather than
// keeping that state on a visitor object, so a single profiler value is
// re-entrant and the scope resets around quantified children and
// alternation branches stay easy to see at each call site.
package redos

import (
	"github.com/yoeunes/pcreanalyze/internal/ast"
	"github.com/yoeunes/pcreanalyze/internal/charset"
	"github.com/yoeunes/pcreanalyze/internal/stringify"
)

// Severity is the profiler's strict ordering: SAFE < LOW < UNKNOWN <
// MEDIUM < HIGH < CRITICAL.
type Severity int

const (
	SAFE Severity = iota
	LOW
	UNKNOWN
	MEDIUM
	HIGH
	CRITICAL
)

func (s Severity) String() string {
	switch s {
	case SAFE:
		return "SAFE"
	case LOW:
		return "LOW"
	case UNKNOWN:
		return "UNKNOWN"
	case MEDIUM:
		return "MEDIUM"
	case HIGH:
		return "HIGH"
	case CRITICAL:
		return "CRITICAL"
	default:
		return "SAFE"
	}
}

// Confidence qualifies how sure a Finding is, independent of Severity.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "Low"
	case ConfidenceMedium:
		return "Medium"
	case ConfidenceHigh:
		return "High"
	default:
		return "Low"
	}
}

// Finding is one thing the profiler noticed about a subtree.
type Finding struct {
	Severity          Severity
	Message           string
	Pattern           string // stringified trigger subtree
	Trigger           string // short trigger descriptor, e.g. "quantifier *"
	SuggestedRewrite  string
	Confidence        Confidence
	FalsePositiveRisk string
}

// ProfileResult is the aggregated outcome of profiling a pattern.
type ProfileResult struct {
	Severity            Severity
	Findings            []Finding
	Recommendations     []string
	VulnerablePattern   string
	Trigger             string
	Confidence          Confidence
	FalsePositiveRisk   string
	BackrefLoopDetected bool
}

// ctx is the per-call traversal context. It is copied, never mutated in
// place, so each recursive call owns its own view of the ancestor state.
type ctx struct {
	unboundedDepth int
	totalDepth     int
	inAtomic       bool
	prev, next     ast.Node
}

// state is the append-only accumulator threaded alongside ctx. Unlike
// ctx, it is shared by pointer across the whole traversal: findings are
// output, not control-flow state that dispatch rules branch on.
type state struct {
	findings            []Finding
	backrefLoopDetected bool
}

func (st *state) add(sev Severity, msg, trigger string, n ast.Node, conf Confidence, rewrite string) {
	st.findings = append(st.findings, Finding{
		Severity:         sev,
		Message:          msg,
		Pattern:          stringify.Node(n),
		Trigger:          trigger,
		Confidence:       conf,
		SuggestedRewrite: rewrite,
	})
}

// Profile runs the ReDoS profiler over r and returns the aggregated
// result (spec's "getResult").
func Profile(r *ast.Regex) ProfileResult {
	st := &state{}
	visit(r.Pattern, ctx{}, st)

	// Broader reading of the backref-loop open question: a pattern that
	// contains any backreference and any variable-length capturing group is
	// flagged, without checking that the reference targets that group or
	// that the capture sits inside the same unbounded quantifier as the
	// reference (see DESIGN.md).
	if hasBackrefLoop(r.Pattern) {
		st.backrefLoopDetected = true
		st.add(CRITICAL,
			"backreference targets a variable-length capturing group; repeated matching can backtrack catastrophically",
			"backref-loop", r.Pattern, ConfidenceHigh,
			"anchor or bound the captured group so its length cannot vary across backtracking attempts")
	}

	return aggregate(st)
}

func aggregate(st *state) ProfileResult {
	res := ProfileResult{Severity: SAFE, Findings: st.findings, BackrefLoopDetected: st.backrefLoopDetected}
	seen := make(map[string]bool, len(st.findings))
	var best *Finding
	for i := range st.findings {
		f := &st.findings[i]
		if f.Severity > res.Severity {
			res.Severity = f.Severity
		}
		if best == nil || f.Severity > best.Severity {
			best = f
		}
		key := f.Message + "\x00" + f.SuggestedRewrite
		if !seen[key] {
			seen[key] = true
			res.Recommendations = append(res.Recommendations, f.Message)
		}
	}
	if st.backrefLoopDetected && res.Severity < CRITICAL {
		res.Severity = CRITICAL
	}
	if best != nil {
		res.VulnerablePattern = best.Pattern
		res.Trigger = best.Trigger
		res.Confidence = best.Confidence
		res.FalsePositiveRisk = best.FalsePositiveRisk
	}
	return res
}

func maxSeverity(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}

// capAt caps sev at most to the given ceiling; a severity already below
// the ceiling is left unchanged.
func capAt(sev, ceiling Severity) Severity {
	if sev > ceiling {
		return ceiling
	}
	return sev
}

// visit dispatches n by its concrete type. It is a plain type switch
// rather than an ast.Visitor[Severity] implementation because every
// dispatch rule here needs the threaded ctx and the shared state pointer
// alongside the node, which the single-argument Visitor contract has no
// room for.
func visit(n ast.Node, c ctx, st *state) Severity {
	switch v := n.(type) {
	case *ast.Literal, *ast.CharType, *ast.CharClass, *ast.Dot, *ast.Anchor,
		*ast.Assertion, *ast.Keep, *ast.Range, *ast.Unicode, *ast.UnicodeProp,
		*ast.CharLiteral, *ast.PosixClass, *ast.Comment, *ast.PcreVerb,
		*ast.LimitMatch, *ast.Callout, *ast.Backref, *ast.VersionCondition,
		*ast.ControlChar, *ast.ClassOperation:
		return SAFE
	case *ast.Subroutine:
		st.add(MEDIUM, "recursion/subroutine; review for bounded use", "subroutine", n, ConfidenceMedium, "")
		return MEDIUM
	case *ast.Define:
		return visit(v.Content, c, st)
	case *ast.Group:
		return visitGroup(v, c, st)
	case *ast.Sequence:
		return visitSequence(v, c, st)
	case *ast.Alternation:
		return visitAlternation(v, c, st)
	case *ast.Quantifier:
		return visitQuantifier(v, c, st)
	case *ast.Regex:
		return visit(v.Pattern, c, st)
	case *ast.ScriptRun:
		return visit(v.Content, c, st)
	case *ast.Conditional:
		sev := visit(v.Condition, c, st)
		sev = maxSeverity(sev, visit(v.Yes, c, st))
		sev = maxSeverity(sev, visit(v.No, c, st))
		return sev
	default:
		return SAFE
	}
}

func visitGroup(g *ast.Group, c ctx, st *state) Severity {
	if g.Kind == ast.GroupAtomic {
		inner := c
		inner.inAtomic = true
		return capAt(visit(g.Child, inner, st), LOW)
	}
	return visit(g.Child, c, st)
}

func visitSequence(s *ast.Sequence, c ctx, st *state) Severity {
	sev := SAFE
	for i, child := range s.Children {
		cc := c
		if i > 0 {
			cc.prev = s.Children[i-1]
		} else {
			cc.prev = nil
		}
		if i+1 < len(s.Children) {
			cc.next = s.Children[i+1]
		} else {
			cc.next = nil
		}
		sev = maxSeverity(sev, visit(child, cc, st))
	}
	return sev
}

func visitAlternation(a *ast.Alternation, c ctx, st *state) Severity {
	if c.unboundedDepth > 0 && branchesOverlap(a.Alternatives) {
		st.add(CRITICAL, "overlapping alternation branches inside a quantifier", "alternation", a,
			ConfidenceHigh, "make the alternatives mutually exclusive, or wrap the repeated group atomically")
		return CRITICAL
	}
	sev := SAFE
	for _, alt := range a.Alternatives {
		sev = maxSeverity(sev, visit(alt, c, st))
	}
	return sev
}

// branchesOverlap implements the alternation-overlap rule: any two
// branches whose first-character sets intersect (including an Unknown
// set, which always intersects) count as overlapping. An empty
// alternative is substituted with Unknown per the boundary-behavior rule
// that it "participates in overlap detection as Unknown" rather than as
// an empty, never-intersecting set.
func branchesOverlap(alts []ast.Node) bool {
	sets := make([]charset.Set, len(alts))
	for i, a := range alts {
		s := charset.First(a)
		if s.IsEmpty() {
			s = charset.Set{Unknown: true}
		}
		sets[i] = s
	}
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			if sets[i].Intersects(sets[j]) {
				return true
			}
		}
	}
	return false
}

// trailingVerb unwraps Sequence/non-lookaround-Group wrappers to find the
// node's trailing leaf, returning its verb text if that leaf is a
// backtracking-control PcreVerb.
func trailingVerb(n ast.Node) (string, bool) {
	for {
		switch v := n.(type) {
		case *ast.Sequence:
			if len(v.Children) == 0 {
				return "", false
			}
			n = v.Children[len(v.Children)-1]
		case *ast.Group:
			if v.Kind.IsLookaround() {
				return "", false
			}
			n = v.Child
		case *ast.PcreVerb:
			return v.Verb, true
		default:
			return "", false
		}
	}
}

func isControlVerbShield(n ast.Node) bool {
	verb, ok := trailingVerb(n)
	if !ok {
		return false
	}
	for _, prefix := range [...]string{"COMMIT", "PRUNE", "SKIP"} {
		if len(verb) >= len(prefix) && verb[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// visitQuantifier implements the ten-step core rule (spec §4.5).
func visitQuantifier(q *ast.Quantifier, c ctx, st *state) Severity {
	// Step 1.
	isPossessive := q.Kind == ast.QuantPossessive
	controlVerbShield := isControlVerbShield(q.Child)
	boundarySeparated := isBoundarySeparated(c, q)

	// Step 2.
	next := c
	if isPossessive || controlVerbShield {
		next.inAtomic = true
	}

	// Step 3.
	if c.inAtomic {
		return capAt(visit(q.Child, next, st), LOW)
	}

	// Step 4.
	isTargetAtomic := false
	if g, ok := q.Child.(*ast.Group); ok && g.Kind == ast.GroupAtomic {
		isTargetAtomic = true
	}
	isUnbounded := q.Unbounded()
	entersUnbounded := isUnbounded && !isTargetAtomic

	// Step 5.
	next.totalDepth = c.totalDepth + 1

	var local Severity
	trigger := "quantifier " + q.Raw

	if entersUnbounded {
		// Step 6.
		next.unboundedDepth = c.unboundedDepth + 1
		switch {
		case hasBackrefLoop(q.Child):
			st.backrefLoopDetected = true
			st.add(CRITICAL, "backreference to a variable-length capturing group under unbounded repetition",
				trigger, q, ConfidenceHigh,
				"anchor the captured group's length, or move the reference outside the repeated construct")
			local = CRITICAL
		case c.unboundedDepth > 0:
			if boundarySeparated {
				st.add(LOW, "unbounded quantifier separated from its neighbor by a disjoint boundary", trigger, q,
					ConfidenceMedium, "")
				local = LOW
			} else {
				st.add(CRITICAL, "nested unbounded quantifiers", trigger, q, ConfidenceHigh,
					"wrap the inner repetition atomically: (?>...) or make it possessive")
				local = CRITICAL
			}
		case boundarySeparated:
			st.add(LOW, "unbounded quantifier separated from its neighbor by a disjoint boundary", trigger, q,
				ConfidenceMedium, "")
			local = LOW
		default:
			st.add(MEDIUM, "unbounded quantifier; may backtrack on mismatch", trigger, q, ConfidenceMedium, "")
			local = MEDIUM
		}
	} else {
		// Step 7.
		next.unboundedDepth = c.unboundedDepth
		switch {
		case q.Max > 1000:
			st.add(LOW, "large bounded quantifier", trigger, q, ConfidenceLow, "")
			local = LOW
		case c.totalDepth > 0 && c.unboundedDepth == 0:
			st.add(LOW, "nested bounded quantifiers", trigger, q, ConfidenceLow, "")
			local = LOW
		default:
			local = SAFE
		}
	}

	// Step 8.
	inner := next
	inner.prev, inner.next = nil, nil
	childSev := visit(q.Child, inner, st)

	// Step 9.
	if entersUnbounded && !boundarySeparated && childSev == HIGH {
		st.add(CRITICAL, "star height > 1", trigger, q, ConfidenceHigh,
			"flatten or atomically wrap one of the nested repetitions")
		local = CRITICAL
	}

	// Step 10.
	return maxSeverity(local, childSev)
}

func isBoundarySeparated(c ctx, q *ast.Quantifier) bool {
	if c.prev != nil && !charset.IsZeroWidth(c.prev) {
		prevLast := charset.Last(c.prev)
		childFirst := charset.First(q.Child)
		if !prevLast.Unknown && !childFirst.Unknown && !prevLast.IsEmpty() && !childFirst.IsEmpty() &&
			!prevLast.Intersects(childFirst) {
			return true
		}
	}
	if c.next != nil && !charset.IsZeroWidth(c.next) {
		childLast := charset.Last(q.Child)
		nextFirst := charset.First(c.next)
		if !childLast.Unknown && !nextFirst.Unknown && !childLast.IsEmpty() && !nextFirst.IsEmpty() &&
			!childLast.Intersects(nextFirst) {
			return true
		}
	}
	return false
}
