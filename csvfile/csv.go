// Package csvfile reads and writes CSV translation catalogs.
//
// The first row is a header. Its first cell names the key column
// (conventionally "keys"), the remaining cells are language codes:
//
//	keys,en,fr
//	greeting,Hello,Bonjour
//
// Decode selects the column of the requested language. A file with a single
// language column is read from that column whatever its header says.
// Encode always writes a two-column file: keys,<lang>.
package csvfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/minios-linux/locsync/catalog"
)

// KeyColumn is the header of the key column written by Encode.
const KeyColumn = "keys"

// Decode parses CSV catalog content and returns the entries of the lang
// column.
func Decode(data []byte, lang string) (*catalog.Document, error) {
	doc := &catalog.Document{}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(records) == 0 {
		return doc, nil
	}

	header := records[0]
	col, err := languageColumn(header, lang)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(records))
	for i, rec := range records[1:] {
		row := i + 2
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		key := rec[0]
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("row %d: duplicate key %q (first on row %d)", row, key, prev)
		}
		seen[key] = row

		value := ""
		if col < len(rec) {
			value = rec[col]
		}
		doc.Entries = append(doc.Entries, catalog.Entry{Path: []string{key}, Value: value})
	}
	return doc, nil
}

func languageColumn(header []string, lang string) (int, error) {
	if len(header) < 2 {
		return 0, fmt.Errorf("CSV header %v has no language column", header)
	}
	norm := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
	}
	for i, h := range header[1:] {
		if norm(h) == norm(lang) {
			return i + 1, nil
		}
	}
	if len(header) == 2 {
		return 1, nil
	}
	return 0, fmt.Errorf("CSV header %v has no column for language %q", header, lang)
}

// Encode writes doc as a keys,<lang> CSV file.
func Encode(doc *catalog.Document, lang string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{KeyColumn, lang}); err != nil {
		return nil, fmt.Errorf("writing CSV: %w", err)
	}
	for _, e := range doc.Entries {
		if err := w.Write([]string{e.Key(), e.Value}); err != nil {
			return nil, fmt.Errorf("writing CSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("writing CSV: %w", err)
	}
	return buf.Bytes(), nil
}
