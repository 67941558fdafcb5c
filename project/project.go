// Package project locates catalog files on disk and reads and writes them
// through the format packages.
//
// Two directory structures are supported:
//
//	default        <input>/<lang>/<file>.<ext>   (any number of files per language)
//	ngx-translate  <input>/<lang>.<ext>          (one file per language)
//
// The file format is chosen by extension: .json, .arb, .yaml/.yml, .toml,
// .csv and .properties.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/locsync/arbfile"
	"github.com/minios-linux/locsync/catalog"
	"github.com/minios-linux/locsync/config"
	"github.com/minios-linux/locsync/csvfile"
	"github.com/minios-linux/locsync/jsonfile"
	"github.com/minios-linux/locsync/propfile"
	"github.com/minios-linux/locsync/tomlfile"
	"github.com/minios-linux/locsync/yamlfile"
)

// ---------------------------------------------------------------------------
// Formats
// ---------------------------------------------------------------------------

// Format is a catalog serialisation.
type Format struct {
	Name   string
	Decode func(data []byte, lang string) (*catalog.Document, error)
	Encode func(doc *catalog.Document, lang string) ([]byte, error)
}

var formats = map[string]Format{
	".json":       {Name: "json", Decode: jsonfile.Decode, Encode: jsonfile.Encode},
	".arb":        {Name: "arb", Decode: arbfile.Decode, Encode: arbfile.Encode},
	".yaml":       {Name: "yaml", Decode: yamlfile.Decode, Encode: yamlfile.Encode},
	".yml":        {Name: "yaml", Decode: yamlfile.Decode, Encode: yamlfile.Encode},
	".toml":       {Name: "toml", Decode: tomlfile.Decode, Encode: tomlfile.Encode},
	".csv":        {Name: "csv", Decode: csvfile.Decode, Encode: csvfile.Encode},
	".properties": {Name: "properties", Decode: propfile.Decode, Encode: propfile.Encode},
}

// FormatFor returns the format for a file name, by extension.
func FormatFor(name string) (Format, bool) {
	f, ok := formats[strings.ToLower(filepath.Ext(name))]
	return f, ok
}

// Extensions returns the supported file extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(formats))
	for ext := range formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

// Layout describes where catalogs live under an input directory.
type Layout struct {
	Root      string
	Structure string
}

// New returns a layout for root. structure is validated with
// config.ParseStructure.
func New(root, structure string) (*Layout, error) {
	s, err := config.ParseStructure(structure)
	if err != nil {
		return nil, err
	}
	return &Layout{Root: root, Structure: s}, nil
}

// Languages returns the language codes present under the input directory,
// sorted. For the default structure these are directories named like a
// language code; for ngx-translate, catalog files named like one.
// Hidden entries (such as the cache directory) are ignored.
func (l *Layout) Languages() ([]string, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.Root, err)
	}

	seen := make(map[string]bool)
	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		var lang string
		switch l.Structure {
		case config.StructureNgx:
			if entry.IsDir() {
				continue
			}
			if _, ok := FormatFor(name); !ok {
				continue
			}
			lang = strings.TrimSuffix(name, filepath.Ext(name))
		default:
			if !entry.IsDir() {
				continue
			}
			lang = name
		}

		if IsLangCode(lang) && !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs, nil
}

// LangDir returns the directory holding the catalogs of lang.
func (l *Layout) LangDir(lang string) string {
	if l.Structure == config.StructureNgx {
		return l.Root
	}
	return filepath.Join(l.Root, lang)
}

// SourceFiles returns the catalog file names of lang, sorted. For the
// default structure these are the supported files in the language
// directory; for ngx-translate the single <lang>.<ext> file.
func (l *Layout) SourceFiles(lang string) ([]string, error) {
	if l.Structure == config.StructureNgx {
		var names []string
		for _, ext := range Extensions() {
			name := lang + ext
			if _, err := os.Stat(filepath.Join(l.Root, name)); err == nil {
				names = append(names, name)
			}
		}
		return names, nil
	}
	return catalogFiles(l.LangDir(lang))
}

// TargetPath returns the path of the catalog of lang that mirrors the
// source file name.
func (l *Layout) TargetPath(lang, name string) string {
	if l.Structure == config.StructureNgx {
		return filepath.Join(l.Root, lang+filepath.Ext(name))
	}
	return filepath.Join(l.Root, lang, name)
}

// SourcePath returns the path of a source file name.
func (l *Layout) SourcePath(lang, name string) string {
	return filepath.Join(l.LangDir(lang), name)
}

// OrphanFiles returns paths of catalog files of lang without a source
// counterpart in sourceNames. Only the default structure can have orphans.
func (l *Layout) OrphanFiles(lang string, sourceNames []string) ([]string, error) {
	if l.Structure == config.StructureNgx {
		return nil, nil
	}
	known := make(map[string]bool, len(sourceNames))
	for _, n := range sourceNames {
		known[n] = true
	}

	names, err := catalogFiles(l.LangDir(lang))
	if err != nil {
		return nil, err
	}
	var orphans []string
	for _, n := range names {
		if !known[n] {
			orphans = append(orphans, filepath.Join(l.LangDir(lang), n))
		}
	}
	return orphans, nil
}

func catalogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if _, ok := FormatFor(name); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// IsLangCode checks if a string looks like a language code.
// Supports: en, fil, pt-BR, pt_BR, zh-Hant, sr-Latn-RS.
func IsLangCode(s string) bool {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	if len(parts) == 0 || len(parts) > 3 {
		return false
	}
	if n := len(parts[0]); n < 2 || n > 3 || !isLower(parts[0]) {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) < 2 || len(p) > 4 || !isAlnum(p) {
			return false
		}
	}
	return len(strings.Join(parts, "-")) == len(s)
}

func isLower(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

func isAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Reading and writing
// ---------------------------------------------------------------------------

// LoadFile reads and flattens the catalog at path. shape may be auto.
func LoadFile(path string, shape catalog.Shape, lang string) (*catalog.File, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported file extension", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := format.Decode(data, lang)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog.FromDocument(filepath.Base(path), doc, shape), nil
}

// LoadTarget reads the destination catalog at path, flattened the same
// way as template. It returns (nil, nil) when the file does not exist.
func LoadTarget(path string, template *catalog.File, lang string) (catalog.Catalog, error) {
	f, err := LoadFile(path, template.Shape, lang)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return f.Content, nil
}

// WriteFile writes content to path with the structure of template,
// creating parent directories as needed. The file is replaced through a
// temp file in the same directory, so readers never see partial content.
func WriteFile(path string, template *catalog.File, content catalog.Catalog, lang string) error {
	format, ok := FormatFor(path)
	if !ok {
		return fmt.Errorf("%s: unsupported file extension", path)
	}
	data, err := format.Encode(catalog.ToDocument(template, content), lang)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("setting mode of %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
