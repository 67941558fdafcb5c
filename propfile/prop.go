// Package propfile implements reading and writing of Java .properties files.
//
// Format: key=value pairs, one per line. The separator may be '=' or ':'.
// Lines starting with '#' or '!' are comments and blank lines are ignored.
// A line ending in an odd number of backslashes continues on the next line.
//
// Keys are flat: a dot in a key is part of the key, never a path.
//
// Escapes understood on read: \n \t \r \\ \= \: \# \! \<space> and \uXXXX.
// On write non-ASCII text is kept as UTF-8.
package propfile

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/minios-linux/locsync/catalog"
)

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Decode parses .properties content. lang is unused.
func Decode(data []byte, lang string) (*catalog.Document, error) {
	doc := &catalog.Document{}

	text := string(data)
	// Normalise Windows line endings.
	text = strings.ReplaceAll(text, "\r\n", "\n")
	rawLines := strings.Split(text, "\n")

	for i := 0; i < len(rawLines); i++ {
		lineNo := i + 1
		trimmed := strings.TrimLeft(rawLines[i], " \t\f")

		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!") {
			continue
		}

		logical := trimmed
		for continues(logical) && i+1 < len(rawLines) {
			i++
			logical = logical[:len(logical)-1] + strings.TrimLeft(rawLines[i], " \t\f")
		}

		k, v := splitKeyValue(logical)
		key, err := unescape(k)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if key == "" {
			return nil, fmt.Errorf("line %d: missing key", lineNo)
		}
		value, err := unescape(v)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		doc.Entries = append(doc.Entries, catalog.Entry{Path: []string{key}, Value: value})
	}

	return doc, nil
}

// continues reports whether a line ends with an unescaped backslash.
func continues(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// splitKeyValue splits "key = value" or "key=value" into raw key and value.
// The separator is the first unescaped '=' or ':'. Surrounding whitespace
// is stripped.
func splitKeyValue(s string) (key, value string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '=', ':':
			return strings.TrimSpace(s[:i]), strings.TrimLeft(s[i+1:], " \t\f")
		}
	}
	// No separator: the whole line is a key with empty value.
	return strings.TrimSpace(s), ""
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			if i+4 >= len(s) {
				return "", fmt.Errorf("truncated \\u escape in %q", s)
			}
			r, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid \\u escape in %q", s)
			}
			b.WriteRune(rune(r))
			i += 4
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encode serialises doc as key=value lines in entry order. lang is unused.
func Encode(doc *catalog.Document, lang string) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range doc.Entries {
		buf.WriteString(escape(e.Key(), true))
		buf.WriteByte('=')
		buf.WriteString(escape(e.Value, false))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func escape(s string, isKey bool) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '=', ':':
			if isKey {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case '#', '!':
			if isKey && i == 0 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case ' ':
			if isKey || i == 0 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
