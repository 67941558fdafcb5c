// Package yamlfile implements reading and writing of YAML translation files.
//
// The expected file format is a nested YAML map with string leaf values:
//
//	greeting: Hello
//	nav:
//	  home: Home
//	  about: About
//
// Rails i18n style (locale as the top-level key) is also supported:
//
//	en:
//	  greeting: Hello
//	  nav:
//	    home: Home
//
// Such files are re-wrapped with the target language on write.
// Non-string leaves (numbers, booleans, null, sequences) are not translatable
// and are skipped.
package yamlfile

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/locsync/catalog"
)

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Decode parses YAML catalog content. lang is the language of the file; a
// single top-level key naming that language marks a Rails-style file. With
// an empty lang any single top-level mapping is taken as the locale root.
func Decode(data []byte, lang string) (*catalog.Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	doc := &catalog.Document{Nested: true}

	// yaml.Unmarshal wraps the document in a DocumentNode.
	if node.Kind == 0 || len(node.Content) == 0 {
		return doc, nil
	}

	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("YAML root must be a mapping, got kind %d", root.Kind)
	}

	if len(root.Content) == 2 {
		keyNode := root.Content[0]
		valNode := root.Content[1]
		if keyNode.Kind == yaml.ScalarNode && valNode.Kind == yaml.MappingNode && isLocaleRoot(keyNode.Value, lang) {
			doc.Wrapped = true
			collectEntries(valNode, nil, doc)
			return doc, nil
		}
	}

	collectEntries(root, nil, doc)
	return doc, nil
}

func isLocaleRoot(key, lang string) bool {
	if lang == "" {
		return true
	}
	norm := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "-"))
	}
	return norm(key) == norm(lang)
}

// collectEntries recursively walks a mapping node and appends leaf entries.
func collectEntries(node *yaml.Node, prefix []string, doc *catalog.Document) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		path := append(append([]string(nil), prefix...), keyNode.Value)

		switch valNode.Kind {
		case yaml.MappingNode:
			collectEntries(valNode, path, doc)
		case yaml.ScalarNode:
			// Only translate string scalars; skip null, bool, int, float.
			switch valNode.Tag {
			case "!!bool", "!!int", "!!float", "!!null":
				continue
			}
			doc.Entries = append(doc.Entries, catalog.Entry{Path: path, Value: valNode.Value})
		}
	}
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encode serialises doc as YAML with 2-space indentation. A wrapped
// document is written under a single top-level key lang.
func Encode(doc *catalog.Document, lang string) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range doc.Entries {
		if err := insert(root, e.Path, e.Value); err != nil {
			return nil, fmt.Errorf("encoding YAML: %w", err)
		}
	}

	top := root
	if doc.Wrapped {
		top = &yaml.Node{Kind: yaml.MappingNode}
		top.Content = append(top.Content, scalar(lang), root)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(top); err != nil {
		return nil, fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshaling YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// insert adds value at path, creating intermediate mappings in order.
func insert(node *yaml.Node, path []string, value string) error {
	for i, seg := range path {
		last := i == len(path)-1

		var found *yaml.Node
		for j := 0; j+1 < len(node.Content); j += 2 {
			if node.Content[j].Value == seg {
				found = node.Content[j+1]
				break
			}
		}

		if last {
			if found != nil {
				if found.Kind == yaml.MappingNode {
					return fmt.Errorf("key %q is both a string and a mapping", strings.Join(path, "."))
				}
				found.Value = value
				return nil
			}
			node.Content = append(node.Content, scalar(seg), scalar(value))
			return nil
		}

		if found == nil {
			found = &yaml.Node{Kind: yaml.MappingNode}
			node.Content = append(node.Content, scalar(seg), found)
		} else if found.Kind != yaml.MappingNode {
			return fmt.Errorf("key %q is both a string and a mapping", strings.Join(path[:i+1], "."))
		}
		node = found
	}
	return nil
}
