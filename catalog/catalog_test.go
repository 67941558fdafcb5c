package catalog

import (
	"reflect"
	"testing"
)

func TestParseShape(t *testing.T) {
	cases := []struct {
		in      string
		want    Shape
		wantErr bool
	}{
		{in: "key-based", want: ShapeKeyBased},
		{in: "Natural", want: ShapeNatural},
		{in: "", want: ShapeAuto},
		{in: "auto", want: ShapeAuto},
		{in: "nested", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseShape(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseShape(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseShape(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseShape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDetectShape(t *testing.T) {
	t.Run("nested is key-based", func(t *testing.T) {
		doc := &Document{Nested: true, Entries: []Entry{
			{Path: []string{"nav", "home"}, Value: "Home"},
		}}
		if got := DetectShape(doc); got != ShapeKeyBased {
			t.Fatalf("DetectShape = %q, want key-based", got)
		}
	})

	t.Run("flat with matching keys is natural", func(t *testing.T) {
		doc := &Document{Entries: []Entry{
			{Path: []string{"Hello"}, Value: "Hello"},
			{Path: []string{"Bye"}, Value: "Bye"},
			{Path: []string{"Typo"}, Value: "Typo fixed"},
		}}
		if got := DetectShape(doc); got != ShapeNatural {
			t.Fatalf("DetectShape = %q, want natural", got)
		}
	})

	t.Run("flat with ids is key-based", func(t *testing.T) {
		doc := &Document{Entries: []Entry{
			{Path: []string{"greeting"}, Value: "Hello"},
		}}
		if got := DetectShape(doc); got != ShapeKeyBased {
			t.Fatalf("DetectShape = %q, want key-based", got)
		}
	})
}

func TestFromDocumentFlattensAndFlagsInvalidKeys(t *testing.T) {
	doc := &Document{Nested: true, Entries: []Entry{
		{Path: []string{"nav", "home"}, Value: "Home"},
		{Path: []string{"app.title"}, Value: "App"},
		{Path: []string{"greeting"}, Value: "Hi"},
	}}
	f := FromDocument("app.json", doc, ShapeAuto)

	if f.Shape != ShapeKeyBased {
		t.Fatalf("Shape = %q, want key-based", f.Shape)
	}
	want := Catalog{"nav.home": "Home", "app.title": "App", "greeting": "Hi"}
	if !reflect.DeepEqual(f.Content, want) {
		t.Fatalf("Content = %#v, want %#v", f.Content, want)
	}
	if !reflect.DeepEqual(f.Order, []string{"nav.home", "app.title", "greeting"}) {
		t.Fatalf("Order = %v", f.Order)
	}
	if !reflect.DeepEqual(f.InvalidKeys, []string{"app.title"}) {
		t.Fatalf("InvalidKeys = %v, want [app.title]", f.InvalidKeys)
	}
}

func TestFromDocumentNaturalIgnoresDots(t *testing.T) {
	doc := &Document{Nested: true, Entries: []Entry{
		{Path: []string{"Hello. World"}, Value: "Hello. World"},
	}}
	f := FromDocument("app.json", doc, ShapeNatural)
	if len(f.InvalidKeys) != 0 {
		t.Fatalf("natural file reported invalid keys: %v", f.InvalidKeys)
	}
}

func TestToDocumentOrderAndSplitting(t *testing.T) {
	template := &File{
		Shape:  ShapeKeyBased,
		Nested: true,
		Order:  []string{"b.x", "a"},
	}
	content := Catalog{"a": "A", "b.x": "BX", "z": "Z", "c": "C"}

	doc := ToDocument(template, content)
	var keys []string
	for _, e := range doc.Entries {
		keys = append(keys, e.Key())
	}
	if !reflect.DeepEqual(keys, []string{"b.x", "a", "c", "z"}) {
		t.Fatalf("keys = %v", keys)
	}
	if !reflect.DeepEqual(doc.Entries[0].Path, []string{"b", "x"}) {
		t.Fatalf("first path = %v, want [b x]", doc.Entries[0].Path)
	}
	if !doc.Nested {
		t.Fatal("Nested not carried over")
	}
}

func TestToDocumentNaturalKeepsKeysWhole(t *testing.T) {
	template := &File{Shape: ShapeNatural, Nested: true}
	doc := ToDocument(template, Catalog{"Hi. There": "Salut. Toi"})
	if len(doc.Entries) != 1 || len(doc.Entries[0].Path) != 1 {
		t.Fatalf("natural key split: %#v", doc.Entries)
	}
}

func TestInconsistenciesAndFix(t *testing.T) {
	f := &File{Shape: ShapeNatural, Content: Catalog{
		"Hello": "Hello",
		"Bye":   "Goodbye",
		"Yes":   "yes",
	}}
	got := Inconsistencies(f)
	if !reflect.DeepEqual(got, []string{"Bye", "Yes"}) {
		t.Fatalf("Inconsistencies = %v", got)
	}
	if n := FixInconsistencies(f); n != 2 {
		t.Fatalf("FixInconsistencies = %d, want 2", n)
	}
	if f.Content["Bye"] != "Bye" || f.Content["Yes"] != "Yes" {
		t.Fatalf("content not fixed: %v", f.Content)
	}

	kb := &File{Shape: ShapeKeyBased, Content: Catalog{"a": "b"}}
	if got := Inconsistencies(kb); got != nil {
		t.Fatalf("key-based Inconsistencies = %v, want nil", got)
	}
}

func TestCatalogCloneAndKeys(t *testing.T) {
	var nilCat Catalog
	if c := nilCat.Clone(); c == nil || len(c) != 0 {
		t.Fatalf("Clone(nil) = %#v", c)
	}
	c := Catalog{"b": "2", "a": "1"}
	cp := c.Clone()
	cp["a"] = "changed"
	if c["a"] != "1" {
		t.Fatal("Clone shares storage")
	}
	if !reflect.DeepEqual(c.Keys(), []string{"a", "b"}) {
		t.Fatalf("Keys = %v", c.Keys())
	}
}
