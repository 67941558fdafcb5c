// Package arbfile reads and writes Flutter ARB (Application Resource
// Bundle) catalogs.
//
// ARB files are flat JSON objects:
//
//   - "@@locale" holds the language code of the file.
//   - Keys starting with "@" are metadata ("@greeting": {...}) and are
//     never translated.
//   - Every other string value is a translatable message.
//
// Messages with an empty value count as untranslated and are left out of
// the decoded document. Encode writes "@@locale" first, then the messages
// in document order. Metadata belongs to the template file only and is not
// written to translated files.
package arbfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/minios-linux/locsync/catalog"
)

// LocaleKey is the reserved key holding the file language.
const LocaleKey = "@@locale"

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Decode parses ARB content. Metadata keys, "@@locale", non-string values
// and empty messages are skipped. lang is unused: the language of an ARB
// file is whatever "@@locale" says, and Encode rewrites it.
func Decode(data []byte, lang string) (*catalog.Document, error) {
	doc := &catalog.Document{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	// Stream tokens to keep key order.
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing ARB: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parsing ARB: expected '{', got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing ARB key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parsing ARB: expected string key, got %T", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing ARB value for %q: %w", key, err)
		}
		if strings.HasPrefix(key, "@") {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			continue
		}
		doc.Entries = append(doc.Entries, catalog.Entry{Path: []string{key}, Value: s})
	}
	return doc, nil
}

// Locale returns the "@@locale" value of ARB content, or "" when absent.
func Locale(data []byte) string {
	var head struct {
		Locale string `json:"@@locale"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return ""
	}
	return head.Locale
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encode serialises doc as an ARB file for lang with 2-space indentation.
func Encode(doc *catalog.Document, lang string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")

	first := true
	write := func(key, value string) {
		if !first {
			buf.WriteString(",\n")
		}
		first = false
		buf.WriteString("  ")
		buf.Write(marshalString(key))
		buf.WriteString(": ")
		buf.Write(marshalString(value))
	}

	if lang != "" {
		write(LocaleKey, strings.ReplaceAll(lang, "-", "_"))
	}
	for _, e := range doc.Entries {
		key := e.Key()
		if strings.HasPrefix(key, "@") {
			return nil, fmt.Errorf("ARB message key %q must not start with '@'", key)
		}
		write(key, e.Value)
	}

	if first {
		return []byte("{}\n"), nil
	}
	buf.WriteString("\n}\n")
	return buf.Bytes(), nil
}

// marshalString encodes s as a JSON string without HTML escaping, so
// placeholders and markup stay readable.
func marshalString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimRight(buf.Bytes(), "\n")
}
