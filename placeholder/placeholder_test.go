package placeholder

import (
	"reflect"
	"strings"
	"testing"

	"github.com/minios-linux/locsync/matcher"
)

func icu(t *testing.T) matcher.Matcher {
	t.Helper()
	m, err := matcher.Lookup(matcher.ICU)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	return m
}

func TestProtectNoPlaceholders(t *testing.T) {
	p := Protect("this is a test sentence", icu(t))
	if p.Clean != "this is a test sentence" {
		t.Fatalf("Clean = %q", p.Clean)
	}
	if len(p.Replacements) != 0 {
		t.Fatalf("Replacements = %v, want empty", p.Replacements)
	}
}

func TestProtectReplacesLeftToRight(t *testing.T) {
	p := Protect("this is a {test} sentence with {multiple} placeholders", icu(t))

	wantClean := `this is a <span translate="no">0</span> sentence with <span translate="no">1</span> placeholders`
	if p.Clean != wantClean {
		t.Fatalf("Clean = %q, want %q", p.Clean, wantClean)
	}
	wantReps := []Occurrence{
		{From: "{test}", To: `<span translate="no">0</span>`},
		{From: "{multiple}", To: `<span translate="no">1</span>`},
	}
	if !reflect.DeepEqual(p.Replacements, wantReps) {
		t.Fatalf("Replacements = %#v, want %#v", p.Replacements, wantReps)
	}
}

func TestProtectAtEnd(t *testing.T) {
	p := Protect("this is a {test} sentence with {placeholders}", icu(t))
	want := `this is a <span translate="no">0</span> sentence with <span translate="no">1</span>`
	if p.Clean != want {
		t.Fatalf("Clean = %q, want %q", p.Clean, want)
	}
}

func TestRoundTripEcho(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"{a}",
		"{a}{b}{c}",
		"Hello {name}, you have {count, plural, one {# message} other {# messages}}",
		"{x} in the middle {y} and end",
	}
	for _, in := range inputs {
		p := Protect(in, icu(t))
		got, report := Restore(p.Clean, p.Replacements)
		if got != in {
			t.Errorf("round trip %q -> %q", in, got)
		}
		if !report.OK() {
			t.Errorf("round trip %q reported %s", in, report)
		}
	}
}

func TestRestoreHonorsEmbeddedIndex(t *testing.T) {
	p := Protect("{first} then {second}", icu(t))
	translated := `<span translate="no">1</span> puis <span translate="no">0</span>`

	got, report := Restore(translated, p.Replacements)
	if got != "{second} puis {first}" {
		t.Fatalf("Restore = %q", got)
	}
	if !report.OK() {
		t.Fatalf("unexpected report: %s", report)
	}
}

func TestRestoreToleratesReformattedMarkup(t *testing.T) {
	reps := []Occurrence{{From: "{n}", To: Sentinel(0)}}
	got, report := Restore(`Total: <SPAN translate='no'> 0 </span>`, reps)
	if got != "Total: {n}" {
		t.Fatalf("Restore = %q", got)
	}
	if !report.OK() {
		t.Fatalf("report = %s", report)
	}
}

func TestRestoreUnknownIndexLeftLiteral(t *testing.T) {
	reps := []Occurrence{{From: "{a}", To: Sentinel(0)}}
	translated := `<span translate="no">0</span> <span translate="no">7</span>`

	got, report := Restore(translated, reps)
	if got != `{a} <span translate="no">7</span>` {
		t.Fatalf("Restore = %q", got)
	}
	if !reflect.DeepEqual(report.Unknown, []int{7}) {
		t.Fatalf("Unknown = %v, want [7]", report.Unknown)
	}
}

func TestRestoreDuplicatedAndMissing(t *testing.T) {
	reps := []Occurrence{
		{From: "{a}", To: Sentinel(0)},
		{From: "{b}", To: Sentinel(1)},
	}
	translated := Sentinel(0) + " " + Sentinel(0)

	got, report := Restore(translated, reps)
	if got != "{a} {a}" {
		t.Fatalf("Restore = %q", got)
	}
	if !reflect.DeepEqual(report.Duplicated, []int{0}) {
		t.Fatalf("Duplicated = %v", report.Duplicated)
	}
	if !reflect.DeepEqual(report.Missing, []int{1}) {
		t.Fatalf("Missing = %v", report.Missing)
	}
	if !strings.Contains(report.String(), "missing [1]") {
		t.Fatalf("String = %q", report.String())
	}
}

func TestRestoreZeroSentinels(t *testing.T) {
	reps := []Occurrence{{From: "{a}", To: Sentinel(0)}}

	got, report := Restore("nothing left", reps)
	if got != "nothing left" {
		t.Fatalf("Restore = %q", got)
	}
	if !reflect.DeepEqual(report.Missing, []int{0}) {
		t.Fatalf("Missing = %v, want [0]", report.Missing)
	}
}

func TestRestoreLiteralPlaceholderCountsAsPreserved(t *testing.T) {
	reps := []Occurrence{{From: "{name}", To: Sentinel(0)}}
	got, report := Restore("Salut {name}", reps)
	if got != "Salut {name}" {
		t.Fatalf("Restore = %q", got)
	}
	if !report.OK() {
		t.Fatalf("report = %s", report)
	}
}

func TestRestoreEmptyReplacementsIsIdentity(t *testing.T) {
	in := `keep <span translate="no">0</span> as is`
	got, report := Restore(in, nil)
	if got != in || !report.OK() {
		t.Fatalf("Restore = %q, %s", got, report)
	}
}

func TestProtectOtherFamilies(t *testing.T) {
	m, _ := matcher.Lookup(matcher.Sprintf)
	p := Protect("%s of %d", m)
	if p.Clean != Sentinel(0)+" of "+Sentinel(1) {
		t.Fatalf("Clean = %q", p.Clean)
	}
	// The clean text must not contain anything the matcher would match again.
	if again := m.Match(p.Clean); len(again) != 0 {
		t.Fatalf("sentinels re-matched: %v", again)
	}
}
