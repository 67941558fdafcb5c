package tomlfile

import (
	"reflect"
	"testing"

	"github.com/minios-linux/locsync/catalog"
)

func flat(doc *catalog.Document) map[string]string {
	out := make(map[string]string, len(doc.Entries))
	for _, e := range doc.Entries {
		out[e.Key()] = e.Value
	}
	return out
}

func TestDecode(t *testing.T) {
	data := []byte(`title = "Hello"
count = 3
enabled = true
tags = ["a", "b"]

[nav]
home = "Home"
about = "About"

[nav.footer]
legal = "Legal"
`)
	doc, err := Decode(data, "en")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := map[string]string{
		"title":            "Hello",
		"nav.home":         "Home",
		"nav.about":        "About",
		"nav.footer.legal": "Legal",
	}
	if got := flat(doc); !reflect.DeepEqual(got, want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}

	var order []string
	for _, e := range doc.Entries {
		order = append(order, e.Key())
	}
	wantOrder := []string{"nav.about", "nav.footer.legal", "nav.home", "title"}
	if !reflect.DeepEqual(order, wantOrder) {
		t.Fatalf("order = %v, want %v", order, wantOrder)
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode([]byte("title = \n"), "en"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	doc := &catalog.Document{Nested: true, Entries: []catalog.Entry{
		{Path: []string{"title"}, Value: "Bonjour {name}"},
		{Path: []string{"nav", "home"}, Value: "Accueil"},
		{Path: []string{"nav", "quote"}, Value: `Il a dit "oui"`},
	}}
	out, err := Encode(doc, "fr")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(out, "fr")
	if err != nil {
		t.Fatalf("Decode: %v\n%s", err, out)
	}
	if !reflect.DeepEqual(flat(back), flat(doc)) {
		t.Fatalf("round trip = %v, want %v", flat(back), flat(doc))
	}
}

func TestEncodeConflict(t *testing.T) {
	doc := &catalog.Document{Entries: []catalog.Entry{
		{Path: []string{"nav"}, Value: "x"},
		{Path: []string{"nav", "home"}, Value: "y"},
	}}
	if _, err := Encode(doc, "fr"); err == nil {
		t.Fatal("expected conflict error")
	}
}
