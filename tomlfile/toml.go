// Package tomlfile reads and writes TOML translation catalogs.
//
//	title = "Hello"
//
//	[nav]
//	home = "Home"
//
// Tables become path segments (nav.home). Non-string values and arrays are
// not translatable and are skipped. TOML tables are unordered: entries are
// decoded and written with keys sorted at every level.
package tomlfile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/minios-linux/locsync/catalog"
)

// Decode parses TOML catalog content. lang is unused.
func Decode(data []byte, lang string) (*catalog.Document, error) {
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	doc := &catalog.Document{Nested: true}
	walk(tree, nil, doc)
	return doc, nil
}

func walk(m map[string]any, prefix []string, doc *catalog.Document) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := append(append([]string(nil), prefix...), k)
		switch v := m[k].(type) {
		case string:
			doc.Entries = append(doc.Entries, catalog.Entry{Path: path, Value: v})
		case map[string]any:
			walk(v, path, doc)
		}
	}
}

// Encode serialises doc as TOML. lang is unused.
func Encode(doc *catalog.Document, lang string) ([]byte, error) {
	tree := make(map[string]any)
	for _, e := range doc.Entries {
		if err := insert(tree, e.Path, e.Value); err != nil {
			return nil, fmt.Errorf("encoding TOML: %w", err)
		}
	}
	data, err := toml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encoding TOML: %w", err)
	}
	return data, nil
}

func insert(tree map[string]any, path []string, value string) error {
	cur := tree
	for i, seg := range path {
		if i == len(path)-1 {
			if _, ok := cur[seg].(map[string]any); ok {
				return fmt.Errorf("key %q is both a string and a table", strings.Join(path, "."))
			}
			cur[seg] = value
			return nil
		}
		switch next := cur[seg].(type) {
		case nil:
			child := make(map[string]any)
			cur[seg] = child
			cur = child
		case map[string]any:
			cur = next
		default:
			return fmt.Errorf("key %q is both a string and a table", strings.Join(path[:i+1], "."))
		}
	}
	return nil
}
