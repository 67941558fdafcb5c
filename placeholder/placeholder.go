// Package placeholder shields interpolation placeholders from translation
// providers.
//
// Protect replaces every placeholder found by a matcher with an inert
// sentinel that encodes its position index:
//
//	Hello {name}, you have {count} messages
//	Hello <span translate="no">0</span>, you have <span translate="no">1</span> messages
//
// Restore scans the translated text for the sentinel grammar (not for the
// original placeholder family) and substitutes each sentinel by the
// placeholder with the embedded index, so providers may freely reorder
// them.
//
// Sentinel grammar, version 1:
//
//	sentinel = "<span translate=" quote "no" quote ">" index "</span>"
//	index    = 1*DIGIT
//
// Protect always emits the canonical form with double quotes and no
// whitespace. Restore also accepts single quotes, any letter case in the
// markup, and whitespace around the attribute and the index, since
// HTML-aware providers may reformat markup.
package placeholder

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/minios-linux/locsync/matcher"
)

// GrammarVersion identifies the sentinel syntax.
const GrammarVersion = 1

const (
	sentinelPrefix = `<span translate="no">`
	sentinelSuffix = `</span>`
)

var sentinelPattern = regexp.MustCompile(`(?i)<span\s+translate\s*=\s*["']no["']\s*>\s*(\d+)\s*</span\s*>`)

// Sentinel returns the canonical sentinel for index i.
func Sentinel(i int) string {
	return sentinelPrefix + strconv.Itoa(i) + sentinelSuffix
}

// Occurrence links an original placeholder to its sentinel.
type Occurrence struct {
	From string
	To   string
}

// Protected is the result of Protect.
type Protected struct {
	Clean        string
	Replacements []Occurrence
}

// Protect substitutes each placeholder found by m with a numbered sentinel,
// left to right starting at 0.
func Protect(text string, m matcher.Matcher) Protected {
	matches := m.Match(text)
	if len(matches) == 0 {
		return Protected{Clean: text, Replacements: []Occurrence{}}
	}

	var b strings.Builder
	reps := make([]Occurrence, 0, len(matches))
	last := 0
	for i, mt := range matches {
		to := Sentinel(i)
		b.WriteString(text[last:mt.Start])
		b.WriteString(to)
		last = mt.End
		reps = append(reps, Occurrence{From: mt.Text, To: to})
	}
	b.WriteString(text[last:])

	return Protected{Clean: b.String(), Replacements: reps}
}

// ---------------------------------------------------------------------------
// Restore
// ---------------------------------------------------------------------------

// Report describes anomalies found while restoring. A zero Report means
// every placeholder came back exactly once.
type Report struct {
	// Unknown lists sentinel indices with no replacement. Their literal
	// text is left in place.
	Unknown []int
	// Duplicated lists indices that appeared more than once. Every copy
	// is restored.
	Duplicated []int
	// Missing lists indices whose sentinel is absent and whose original
	// placeholder text does not appear in the translation either.
	Missing []int
}

// OK reports whether the restore was clean.
func (r Report) OK() bool {
	return len(r.Unknown) == 0 && len(r.Duplicated) == 0 && len(r.Missing) == 0
}

// String summarises the anomalies for logging.
func (r Report) String() string {
	if r.OK() {
		return "ok"
	}
	var parts []string
	if len(r.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %v", r.Missing))
	}
	if len(r.Duplicated) > 0 {
		parts = append(parts, fmt.Sprintf("duplicated %v", r.Duplicated))
	}
	if len(r.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unknown %v", r.Unknown))
	}
	return strings.Join(parts, ", ")
}

// Restore reverses Protect on a translated string. It never fails: damaged
// sentinels are left as literal text and described in the Report.
func Restore(translated string, reps []Occurrence) (string, Report) {
	var report Report
	if len(reps) == 0 {
		return translated, report
	}

	seen := make(map[int]int, len(reps))
	unknown := make(map[int]bool)

	out := sentinelPattern.ReplaceAllStringFunc(translated, func(tok string) string {
		sub := sentinelPattern.FindStringSubmatch(tok)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx < 0 || idx >= len(reps) {
			if err == nil {
				unknown[idx] = true
			}
			return tok
		}
		seen[idx]++
		return reps[idx].From
	})

	for i, rep := range reps {
		switch n := seen[i]; {
		case n > 1:
			report.Duplicated = append(report.Duplicated, i)
		case n == 0 && !strings.Contains(translated, rep.From):
			report.Missing = append(report.Missing, i)
		}
	}
	for idx := range unknown {
		report.Unknown = append(report.Unknown, idx)
	}
	sort.Ints(report.Unknown)

	return out, report
}
