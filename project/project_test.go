package project

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/minios-linux/locsync/catalog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestIsLangCode(t *testing.T) {
	tests := map[string]bool{
		"en":           true,
		"fil":          true,
		"pt-BR":        true,
		"pt_BR":        true,
		"zh-Hant":      true,
		"sr-Latn-RS":   true,
		"EN":           false,
		"english":      false,
		"en-":          false,
		"e":            false,
		"node_modules": false,
	}
	for in, want := range tests {
		if got := IsLangCode(in); got != want {
			t.Errorf("IsLangCode(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDefaultLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "en", "app.json"), `{"a": "A"}`)
	writeFile(t, filepath.Join(root, "en", "menu.yaml"), "a: A\n")
	writeFile(t, filepath.Join(root, "en", "README.md"), "ignored")
	writeFile(t, filepath.Join(root, "fr", "app.json"), `{"a": "A-fr"}`)
	writeFile(t, filepath.Join(root, "fr", "old.json"), `{}`)
	writeFile(t, filepath.Join(root, ".locsync", "config.yaml"), "")
	writeFile(t, filepath.Join(root, "notes.txt"), "")

	l, err := New(root, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	langs, err := l.Languages()
	if err != nil {
		t.Fatalf("Languages: %v", err)
	}
	if !reflect.DeepEqual(langs, []string{"en", "fr"}) {
		t.Fatalf("Languages = %v", langs)
	}

	files, err := l.SourceFiles("en")
	if err != nil {
		t.Fatalf("SourceFiles: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"app.json", "menu.yaml"}) {
		t.Fatalf("SourceFiles = %v", files)
	}

	if got, want := l.TargetPath("de", "app.json"), filepath.Join(root, "de", "app.json"); got != want {
		t.Fatalf("TargetPath = %q, want %q", got, want)
	}

	orphans, err := l.OrphanFiles("fr", files)
	if err != nil {
		t.Fatalf("OrphanFiles: %v", err)
	}
	if !reflect.DeepEqual(orphans, []string{filepath.Join(root, "fr", "old.json")}) {
		t.Fatalf("OrphanFiles = %v", orphans)
	}

	if none, err := l.OrphanFiles("de", files); err != nil || none != nil {
		t.Fatalf("OrphanFiles(missing dir) = %v, %v", none, err)
	}
}

func TestNgxLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "en.json"), `{"a": "A"}`)
	writeFile(t, filepath.Join(root, "pt-BR.json"), `{}`)
	writeFile(t, filepath.Join(root, "package.json"), `{}`)
	writeFile(t, filepath.Join(root, "assets", "x.json"), `{}`)

	l, err := New(root, "ngx-translate")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	langs, err := l.Languages()
	if err != nil {
		t.Fatalf("Languages: %v", err)
	}
	if !reflect.DeepEqual(langs, []string{"en", "pt-BR"}) {
		t.Fatalf("Languages = %v", langs)
	}

	files, _ := l.SourceFiles("en")
	if !reflect.DeepEqual(files, []string{"en.json"}) {
		t.Fatalf("SourceFiles = %v", files)
	}
	if got, want := l.TargetPath("fr", "en.json"), filepath.Join(root, "fr.json"); got != want {
		t.Fatalf("TargetPath = %q, want %q", got, want)
	}
	if orphans, _ := l.OrphanFiles("pt-BR", files); orphans != nil {
		t.Fatalf("ngx layout reported orphans: %v", orphans)
	}
}

func TestNewRejectsUnknownStructure(t *testing.T) {
	if _, err := New(t.TempDir(), "flat"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadAndWriteRoundTrip(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "en", "app.json")
	writeFile(t, src, `{"title": "Hello {name}", "nav": {"home": "Home"}}`)

	template, err := LoadFile(src, catalog.ShapeAuto, "en")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if template.Shape != catalog.ShapeKeyBased || template.Name != "app.json" {
		t.Fatalf("template = %+v", template)
	}

	dst := filepath.Join(root, "fr", "app.json")
	missing, err := LoadTarget(dst, template, "fr")
	if err != nil || missing != nil {
		t.Fatalf("LoadTarget(missing) = %v, %v", missing, err)
	}

	content := catalog.Catalog{"title": "Bonjour {name}", "nav.home": "Accueil"}
	if err := WriteFile(dst, template, content, "fr"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, _ := os.ReadFile(dst)
	want := "{\n  \"title\": \"Bonjour {name}\",\n  \"nav\": {\n    \"home\": \"Accueil\"\n  }\n}\n"
	if string(data) != want {
		t.Fatalf("written =\n%s\nwant\n%s", data, want)
	}

	got, err := LoadTarget(dst, template, "fr")
	if err != nil {
		t.Fatalf("LoadTarget: %v", err)
	}
	if !reflect.DeepEqual(got, content) {
		t.Fatalf("LoadTarget = %v, want %v", got, content)
	}
}

func TestLoadFileErrors(t *testing.T) {
	root := t.TempDir()
	bad := filepath.Join(root, "en", "app.json")
	writeFile(t, bad, `{"a": `)
	if _, err := LoadFile(bad, catalog.ShapeAuto, "en"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := LoadFile(filepath.Join(root, "x.txt"), catalog.ShapeAuto, "en"); err == nil {
		t.Fatal("expected unsupported extension error")
	}
	if _, err := LoadTarget(bad, &catalog.File{Shape: catalog.ShapeKeyBased}, "en"); err == nil {
		t.Fatal("LoadTarget hid a parse error")
	}
}

func TestARBTargetRewritesLocale(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "en", "app.arb")
	writeFile(t, src, `{"@@locale": "en", "title": "Inbox", "@title": {"description": "Screen title"}}`)

	file, err := LoadFile(src, catalog.ShapeAuto, "en")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !reflect.DeepEqual(file.Content, catalog.Catalog{"title": "Inbox"}) {
		t.Fatalf("content = %v", file.Content)
	}

	dst := filepath.Join(root, "de", "app.arb")
	if err := WriteFile(dst, file, catalog.Catalog{"title": "Posteingang"}, "de"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"@@locale\": \"de\",\n  \"title\": \"Posteingang\"\n}\n"
	if string(data) != want {
		t.Fatalf("written =\n%s\nwant\n%s", data, want)
	}
}

func TestWriteFileReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fr", "app.json")
	template := &catalog.File{Name: "app.json", Shape: catalog.ShapeKeyBased, Order: []string{"a"}}

	for _, v := range []string{"un", "deux"} {
		if err := WriteFile(path, template, catalog.Catalog{"a": v}, "fr"); err != nil {
			t.Fatalf("WriteFile(%s): %v", v, err)
		}
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "{\n  \"a\": \"deux\"\n}\n" {
		t.Fatalf("content = %q", got)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "app.json" {
		t.Fatalf("directory holds %v, want only app.json", entries)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Fatalf("mode = %v, want 0644", info.Mode().Perm())
	}
}
