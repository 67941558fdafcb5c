// Package jsonfile reads and writes JSON translation catalogs.
//
// A catalog is a JSON object whose string leaves are translatable. Nested
// objects become path segments:
//
//	{"nav": {"home": "Home"}, "title": "Hello"}
//
// decodes to the entries nav.home and title. Numbers, booleans, null and
// arrays are not translatable and are skipped.
//
// Round-trip fidelity: key order from the file is preserved, output uses
// 2-space indentation and ends with a newline.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/minios-linux/locsync/catalog"
)

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Decode parses JSON catalog content. lang is unused; it is accepted so
// every format package has the same signature.
func Decode(data []byte, lang string) (*catalog.Document, error) {
	doc := &catalog.Document{Nested: true}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parsing JSON: expected '{', got %v", tok)
	}
	if err := decodeObject(dec, nil, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// decodeObject reads the members of an object whose '{' was consumed,
// including the closing '}'.
func decodeObject(dec *json.Decoder, prefix []string, doc *catalog.Document) error {
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("parsing JSON key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("parsing JSON: expected string key, got %T", keyTok)
		}
		path := append(append([]string(nil), prefix...), key)

		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("parsing JSON value for %q: %w", strings.Join(path, "."), err)
		}
		switch v := tok.(type) {
		case string:
			doc.Entries = append(doc.Entries, catalog.Entry{Path: path, Value: v})
		case json.Delim:
			switch v {
			case '{':
				if err := decodeObject(dec, path, doc); err != nil {
					return err
				}
			case '[':
				if err := skipArray(dec); err != nil {
					return fmt.Errorf("parsing JSON array %q: %w", strings.Join(path, "."), err)
				}
			}
		}
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}

// skipArray consumes tokens up to the ']' matching an already consumed '['.
func skipArray(dec *json.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '[', '{':
				depth++
			case ']', '}':
				depth--
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// node is an ordered JSON object under construction.
type node struct {
	keys     []string
	values   map[string]string
	children map[string]*node
}

func newNode() *node {
	return &node{values: make(map[string]string), children: make(map[string]*node)}
}

func (n *node) insert(path []string, value string) error {
	cur := n
	for i, seg := range path {
		last := i == len(path)-1
		_, isValue := cur.values[seg]
		child, isObject := cur.children[seg]

		if last {
			if isObject {
				return fmt.Errorf("key %q is both a string and an object", strings.Join(path, "."))
			}
			if !isValue {
				cur.keys = append(cur.keys, seg)
			}
			cur.values[seg] = value
			return nil
		}

		if isValue {
			return fmt.Errorf("key %q is both a string and an object", strings.Join(path[:i+1], "."))
		}
		if !isObject {
			child = newNode()
			cur.children[seg] = child
			cur.keys = append(cur.keys, seg)
		}
		cur = child
	}
	return nil
}

func (n *node) write(buf *bytes.Buffer, indent string) {
	if len(n.keys) == 0 {
		buf.WriteString("{}")
		return
	}
	inner := indent + "  "
	buf.WriteString("{\n")
	for i, k := range n.keys {
		if i > 0 {
			buf.WriteString(",\n")
		}
		buf.WriteString(inner)
		buf.Write(marshalString(k))
		buf.WriteString(": ")
		if child, ok := n.children[k]; ok {
			child.write(buf, inner)
		} else {
			buf.Write(marshalString(n.values[k]))
		}
	}
	buf.WriteString("\n" + indent + "}")
}

// marshalString encodes s as a JSON string without escaping HTML
// characters, which are common in translations.
func marshalString(s string) []byte {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimRight(b.Bytes(), "\n")
}

// Encode serialises doc as an indented JSON object. lang is unused.
func Encode(doc *catalog.Document, lang string) ([]byte, error) {
	root := newNode()
	for _, e := range doc.Entries {
		if err := root.insert(e.Path, e.Value); err != nil {
			return nil, fmt.Errorf("encoding JSON: %w", err)
		}
	}
	var buf bytes.Buffer
	root.write(&buf, "")
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
