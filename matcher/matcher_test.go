package matcher

import (
	"reflect"
	"testing"
)

func texts(ms []Match) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.Text)
	}
	return out
}

func TestICU(t *testing.T) {
	m, err := Lookup(ICU)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"no placeholders", "this is a test sentence", nil},
		{"two tokens", "this is a {test} sentence with {multiple} placeholders", []string{"{test}", "{multiple}"}},
		{"token at end", "sentence with {placeholders}", []string{"{placeholders}"}},
		{"plural is one occurrence", "You have {count, plural, one {# item} other {# items}}.", []string{"{count, plural, one {# item} other {# items}}"}},
		{"unbalanced open skipped", "a { b {c}", []string{"{c}"}},
		{"stray close ignored", "a } {b}", []string{"{b}"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := texts(m.Match(tc.in))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Match(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestICUOffsets(t *testing.T) {
	in := "hi {a} and {b}"
	got := icuMatcher{}.Match(in)
	want := []Match{
		{Text: "{a}", Start: 3, End: 6},
		{Text: "{b}", Start: 11, End: 14},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Match = %#v, want %#v", got, want)
	}
	for _, m := range got {
		if in[m.Start:m.End] != m.Text {
			t.Fatalf("offsets %d:%d do not slice to %q", m.Start, m.End, m.Text)
		}
	}
}

func TestI18Next(t *testing.T) {
	m, _ := Lookup(I18Next)
	got := texts(m.Match("Hello {{name}}, see $t(common.more) or ${value}"))
	want := []string{"{{name}}", "$t(common.more)", "${value}"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Match = %q, want %q", got, want)
	}
}

func TestSprintf(t *testing.T) {
	m, _ := Lookup(Sprintf)
	got := texts(m.Match("%s has %d items (%1$s, %.2f%%)"))
	want := []string{"%s", "%d", "%1$s", "%.2f", "%%"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Match = %q, want %q", got, want)
	}
}

func TestNone(t *testing.T) {
	m, _ := Lookup(None)
	if got := m.Match("{a} {{b}} %s"); got != nil {
		t.Fatalf("none matched %v", got)
	}
}

func TestSentinelIsNeverMatched(t *testing.T) {
	sentinel := `<span translate="no">0</span> and <span translate="no">12</span>`
	for _, name := range Names() {
		m, _ := Lookup(name)
		if got := m.Match(sentinel); len(got) != 0 {
			t.Errorf("%s matched sentinel markup: %v", name, got)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("mustache"); err == nil {
		t.Fatal("expected error for unknown matcher")
	}
}

func TestNamesSorted(t *testing.T) {
	want := []string{"i18next", "icu", "none", "sprintf"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
	for _, n := range want {
		if Describe(n) == "" {
			t.Errorf("Describe(%q) is empty", n)
		}
	}
}
