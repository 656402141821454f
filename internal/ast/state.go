package ast

// ParserState is threaded through a single parse, adapted from the
// teacher's ast.ParserState/NextGroupNumber (internal/ast/ast.go): it
// numbers capturing groups as they're opened and records named-group
// indices, so Resolve can map a Backref.Ref back to the Group that defines
// it. The parser fills it in but does not validate references against it,
// and the ReDoS profiler does not consult it.
type ParserState struct {
	GroupCount int
	GroupsByIndex map[int]*Group
	GroupsByName  map[string]*Group
}

// NewParserState returns a ready-to-use, empty ParserState.
func NewParserState() *ParserState {
	return &ParserState{
		GroupsByIndex: make(map[int]*Group),
		GroupsByName:  make(map[string]*Group),
	}
}

// NextGroupNumber allocates and returns the next 1-based capture index.
func (s *ParserState) NextGroupNumber() int {
	s.GroupCount++
	return s.GroupCount
}

// Register records g under its capture index and, if named, its name.
func (s *ParserState) Register(index int, g *Group) {
	s.GroupsByIndex[index] = g
	if g.Kind == GroupNamed && g.Name != "" {
		s.GroupsByName[g.Name] = g
	}
}

// Resolve looks up the Group a Backref.Ref or Subroutine.Reference names,
// trying a named lookup first and falling back to a numeric index.
func (s *ParserState) Resolve(ref string) (*Group, bool) {
	if g, ok := s.GroupsByName[ref]; ok {
		return g, true
	}
	if n, ok := parseDecimal(ref); ok {
		if g, ok := s.GroupsByIndex[n]; ok {
			return g, true
		}
	}
	return nil, false
}

func parseDecimal(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
