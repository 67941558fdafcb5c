// Package matcher finds interpolation placeholders in translatable strings.
//
// A Matcher is a pure function from text to an ordered list of
// non-overlapping placeholder occurrences with byte offsets. Several
// placeholder families are supported and selected by name:
//
//	icu      {name}, {count, plural, one {# item} other {# items}}
//	i18next  {{name}}, $t(key), ${expr}
//	sprintf  %s, %d, %1$s, %.2f, %@
//	none     matches nothing
//
// No family matches the sentinel markup produced by package placeholder.
package matcher

import (
	"fmt"
	"regexp"
	"sort"
)

// Match is one placeholder occurrence. Start and End are byte offsets
// into the input, End exclusive.
type Match struct {
	Text  string
	Start int
	End   int
}

// Matcher finds placeholder occurrences.
type Matcher interface {
	// Name returns the family name used on the command line.
	Name() string
	// Match returns non-overlapping occurrences in ascending offset order.
	// It never fails; text without placeholders yields nil.
	Match(text string) []Match
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

const (
	ICU     = "icu"
	I18Next = "i18next"
	Sprintf = "sprintf"
	None    = "none"
)

var registry = map[string]Matcher{
	ICU:     icuMatcher{},
	I18Next: regexpMatcher{name: I18Next, re: i18nextPattern},
	Sprintf: regexpMatcher{name: Sprintf, re: sprintfPattern},
	None:    noneMatcher{},
}

var descriptions = map[string]string{
	ICU:     "ICU message syntax: {name}, {n, plural, ...}",
	I18Next: "i18next: {{name}}, $t(key), ${expr}",
	Sprintf: "printf verbs: %s, %d, %1$s, %.2f",
	None:    "no interpolation protection",
}

// Lookup returns the matcher registered under name.
func Lookup(name string) (Matcher, error) {
	m, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown matcher %q (valid: %v)", name, Names())
	}
	return m, nil
}

// Names returns the registered matcher names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe returns a one-line description of a matcher family.
func Describe(name string) string {
	return descriptions[name]
}

// ---------------------------------------------------------------------------
// ICU
// ---------------------------------------------------------------------------

// icuMatcher matches balanced top-level brace groups, so a whole plural or
// select expression is a single occurrence. An opening brace without a
// matching close is not a placeholder.
type icuMatcher struct{}

func (icuMatcher) Name() string { return ICU }

func (icuMatcher) Match(text string) []Match {
	var out []Match
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		end := closingBrace(text, i)
		if end < 0 {
			continue
		}
		out = append(out, Match{Text: text[i : end+1], Start: i, End: end + 1})
		i = end
	}
	return out
}

// closingBrace returns the index of the brace closing the one at start,
// or -1 when the group is unbalanced.
func closingBrace(text string, start int) int {
	depth := 0
	for j := start; j < len(text); j++ {
		switch text[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// ---------------------------------------------------------------------------
// Regexp-based families
// ---------------------------------------------------------------------------

var (
	i18nextPattern = regexp.MustCompile(`\{\{.+?\}\}|\$t\(.+?\)|\$\{.+?\}`)
	sprintfPattern = regexp.MustCompile(`%(?:\d+\$)?[-+ #0]*(?:\d+|\*)?(?:\.(?:\d+|\*))?[bcdeEfFgGoqsuvxX%@]`)
)

type regexpMatcher struct {
	name string
	re   *regexp.Regexp
}

func (m regexpMatcher) Name() string { return m.name }

func (m regexpMatcher) Match(text string) []Match {
	locs := m.re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]Match, len(locs))
	for i, loc := range locs {
		out[i] = Match{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]}
	}
	return out
}

// ---------------------------------------------------------------------------
// None
// ---------------------------------------------------------------------------

type noneMatcher struct{}

func (noneMatcher) Name() string { return None }

func (noneMatcher) Match(string) []Match { return nil }
