// Package catalog defines the in-memory model of a translation catalog:
// a flat mapping from key to string for one file in one language.
//
// File-format packages (jsonfile, yamlfile, tomlfile, csvfile, propfile)
// decode into a Document of path-segmented entries; this package turns a
// Document into a flattened Catalog and back.
//
// Two catalog shapes exist:
//
//   - key-based: keys are dot-delimited paths into a nested structure
//     ("nav.home" -> "Home").
//   - natural: the key is the source-language text itself
//     ("Home" -> "Home"), always flat.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// Catalog maps flattened keys to strings.
type Catalog map[string]string

// Keys returns the catalog keys in sorted order.
func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy. Cloning a nil catalog yields an empty one.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Has reports whether key is present.
func (c Catalog) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// ---------------------------------------------------------------------------
// Shape
// ---------------------------------------------------------------------------

// Shape describes how keys relate to values.
type Shape string

const (
	ShapeKeyBased Shape = "key-based"
	ShapeNatural  Shape = "natural"
	ShapeAuto     Shape = "auto"
)

// Shapes lists the accepted shape names.
var Shapes = []Shape{ShapeKeyBased, ShapeNatural, ShapeAuto}

// ParseShape validates a shape name. The empty string means auto.
func ParseShape(s string) (Shape, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case ShapeKeyBased:
		return ShapeKeyBased, nil
	case ShapeNatural:
		return ShapeNatural, nil
	case ShapeAuto, "":
		return ShapeAuto, nil
	}
	return "", fmt.Errorf("unknown file type %q (valid: key-based, natural, auto)", s)
}

// ---------------------------------------------------------------------------
// Document (format-level representation)
// ---------------------------------------------------------------------------

// Entry is a single string leaf as it appears in a file.
type Entry struct {
	// Path holds the key segments from the root of the document.
	// Flat formats always produce a single segment.
	Path  []string
	Value string
}

// Key returns the dot-joined key of the entry.
func (e Entry) Key() string {
	return strings.Join(e.Path, ".")
}

// Document is the decoded content of one catalog file.
type Document struct {
	// Entries in document order.
	Entries []Entry
	// Nested is true when the format supports nested keys.
	Nested bool
	// Wrapped is true when the entries live under a top-level language
	// key (Rails-style YAML). Encoders re-wrap with the target language.
	Wrapped bool
}

// DetectShape guesses the shape of a document. Any nesting means
// key-based; a flat document where most keys equal their values is natural.
func DetectShape(doc *Document) Shape {
	if doc == nil || len(doc.Entries) == 0 {
		return ShapeKeyBased
	}
	same := 0
	for _, e := range doc.Entries {
		if len(e.Path) > 1 {
			return ShapeKeyBased
		}
		if e.Path[0] == e.Value {
			same++
		}
	}
	if same*2 > len(doc.Entries) {
		return ShapeNatural
	}
	return ShapeKeyBased
}

// ---------------------------------------------------------------------------
// File
// ---------------------------------------------------------------------------

// File is a loaded catalog file with its flattened content.
type File struct {
	// Name is the base file name (e.g. "app.json"). It is the file identity
	// used by the snapshot cache.
	Name string
	// Shape is the resolved shape (never auto).
	Shape Shape
	// Content is the flattened catalog.
	Content Catalog
	// Order keeps document key order for stable output.
	Order []string
	// Nested and Wrapped mirror the source Document.
	Nested  bool
	Wrapped bool
	// InvalidKeys lists top-level keys that contain "." in a key-based
	// nested file. Such keys cannot round-trip through flattening.
	InvalidKeys []string
}

// FromDocument flattens a document into a File. A shape of auto is
// resolved with DetectShape. When two entries flatten to the same key
// the later one wins.
func FromDocument(name string, doc *Document, shape Shape) *File {
	if shape == ShapeAuto || shape == "" {
		shape = DetectShape(doc)
	}
	f := &File{
		Name:    name,
		Shape:   shape,
		Content: make(Catalog, len(doc.Entries)),
		Nested:  doc.Nested,
		Wrapped: doc.Wrapped,
	}
	for _, e := range doc.Entries {
		key := e.Key()
		if shape == ShapeKeyBased && doc.Nested && len(e.Path) == 1 && strings.Contains(e.Path[0], ".") {
			f.InvalidKeys = append(f.InvalidKeys, e.Path[0])
		}
		if !f.Content.Has(key) {
			f.Order = append(f.Order, key)
		}
		f.Content[key] = e.Value
	}
	return f
}

// ToDocument builds a Document for writing content with the structure of
// template. Keys follow the template order; keys unknown to the template
// (kept unused strings) are appended in sorted order.
func ToDocument(template *File, content Catalog) *Document {
	doc := &Document{Nested: template.Nested, Wrapped: template.Wrapped}
	seen := make(map[string]bool, len(content))

	add := func(key string) {
		if seen[key] {
			return
		}
		value, ok := content[key]
		if !ok {
			return
		}
		seen[key] = true
		doc.Entries = append(doc.Entries, Entry{Path: splitKey(template, key), Value: value})
	}

	for _, key := range template.Order {
		add(key)
	}
	for _, key := range content.Keys() {
		add(key)
	}
	return doc
}

func splitKey(template *File, key string) []string {
	if template.Nested && template.Shape == ShapeKeyBased {
		return strings.Split(key, ".")
	}
	return []string{key}
}

// ---------------------------------------------------------------------------
// Source checks
// ---------------------------------------------------------------------------

// Inconsistencies returns keys of a natural file whose value differs
// from the key, sorted. Key-based files never report inconsistencies.
func Inconsistencies(f *File) []string {
	if f.Shape != ShapeNatural {
		return nil
	}
	var keys []string
	for k, v := range f.Content {
		if k != v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// FixInconsistencies sets value := key for every inconsistent entry of a
// natural file and returns the number of fixed entries.
func FixInconsistencies(f *File) int {
	keys := Inconsistencies(f)
	for _, k := range keys {
		f.Content[k] = k
	}
	return len(keys)
}
