package csvfile

import (
	"reflect"
	"strings"
	"testing"

	"github.com/minios-linux/locsync/catalog"
)

func pairs(doc *catalog.Document) [][2]string {
	var out [][2]string
	for _, e := range doc.Entries {
		out = append(out, [2]string{e.Key(), e.Value})
	}
	return out
}

func TestDecodeSelectsLanguageColumn(t *testing.T) {
	data := []byte("keys,en,fr\ngreeting,Hello,Bonjour\nbye,Bye,\"Au revoir, ami\"\n")

	tests := []struct {
		lang string
		want [][2]string
	}{
		{"en", [][2]string{{"greeting", "Hello"}, {"bye", "Bye"}}},
		{"fr", [][2]string{{"greeting", "Bonjour"}, {"bye", "Au revoir, ami"}}},
		{"FR", [][2]string{{"greeting", "Bonjour"}, {"bye", "Au revoir, ami"}}},
	}
	for _, tc := range tests {
		t.Run(tc.lang, func(t *testing.T) {
			doc, err := Decode(data, tc.lang)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got := pairs(doc); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("entries = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeSingleColumnFallback(t *testing.T) {
	doc, err := Decode([]byte("keys,value\na,1\n"), "de")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := pairs(doc); !reflect.DeepEqual(got, [][2]string{{"a", "1"}}) {
		t.Fatalf("entries = %q", got)
	}
}

func TestDecodeShortRowsAndBlankLines(t *testing.T) {
	doc, err := Decode([]byte("keys,en,fr\na,A\n\nb,B,BB\n"), "fr")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := [][2]string{{"a", ""}, {"b", "BB"}}
	if got := pairs(doc); !reflect.DeepEqual(got, want) {
		t.Fatalf("entries = %q, want %q", got, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		lang string
		want string
	}{
		{"no language column", "keys\na\n", "en", "no language column"},
		{"missing language", "keys,en,fr\na,1,2\n", "de", `no column for language "de"`},
		{"duplicate key", "keys,en\na,1\na,2\n", "en", "duplicate key"},
		{"bad quoting", "keys,en\n\"a,1\n", "en", "parsing CSV"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.in), tc.lang)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Decode error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	doc := &catalog.Document{Entries: []catalog.Entry{
		{Path: []string{"greeting"}, Value: "Bonjour"},
		{Path: []string{"bye"}, Value: "Au revoir, ami"},
	}}
	out, err := Encode(doc, "fr")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "keys,fr\ngreeting,Bonjour\nbye,\"Au revoir, ami\"\n"
	if string(out) != want {
		t.Fatalf("Encode = %q, want %q", out, want)
	}

	back, err := Decode(out, "fr")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(pairs(back), pairs(doc)) {
		t.Fatalf("round trip = %q", pairs(back))
	}
}
