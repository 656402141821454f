package ast

// FlagInfo describes a single PCRE pattern flag, adapted from the
// teacher's flavor.FlagInfo (internal/flavor/flavor.go) which served the
// same purpose across several regex dialects; here there is exactly one
// dialect, so the table is a flat constant rather than a per-flavor method.
type FlagInfo struct {
	Char        byte
	Name        string
	Description string
}

// SupportedFlags lists every flag letter Regex.Flags may contain, in the
// order a caller would naturally present them (not parse order).
func SupportedFlags() []FlagInfo {
	return []FlagInfo{
		{'i', "caseless", "case-insensitive matching"},
		{'m', "multiline", "^ and $ match at internal newlines"},
		{'s', "dotall", ". matches newline"},
		{'x', "extended", "ignore unescaped whitespace and # comments"},
		{'u', "utf", "treat pattern and subject as UTF-8"},
		{'U', "ungreedy", "invert the default greediness of quantifiers"},
		{'J', "dupnames", "allow duplicate named groups"},
		{'D', "dollar_endonly", "$ matches only at the very end of the subject"},
		{'A', "anchored", "pattern is implicitly anchored at the start"},
		{'S', "study", "engine hint: invest in studying the pattern"},
		{'X', "extra", "enable PCRE's stricter \"extra\" syntax checks"},
		{'n', "no_auto_capture", "plain (...) groups are treated as non-capturing"},
	}
}

// IsValidFlag reports whether ch is a recognized flag character.
func IsValidFlag(ch byte) bool {
	for _, f := range SupportedFlags() {
		if f.Char == ch {
			return true
		}
	}
	return false
}
