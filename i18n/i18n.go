// Package i18n translates locsync's own user-facing messages.
//
// Catalogs are gettext .po files embedded in the binary under
// locales/{lang}/LC_MESSAGES/locsync.po. Init picks the embedded catalog
// closest to the requested (or environment) language; when none is close
// enough, T and N return their English input.
//
// Usage:
//
//	i18n.Init("")  // LANGUAGE, LC_ALL, LC_MESSAGES, LANG
//	logInfo(i18n.T("Created %s"), path)
//	logInfo(i18n.N("%d string translated", "%d strings translated", n), n)
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

const (
	localesDir = "locales"
	domain     = "locsync"
)

// po is nil until Init finds a catalog. msgs holds its singular
// translations by msgid.
var (
	po      *gotext.Locale
	msgs    map[string]string
	current string
)

// Init loads the catalog for lang. An empty lang is read from the
// environment the way GNU gettext does.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	po, msgs, current = nil, nil, ""

	best := match(lang)
	if best == "" {
		return
	}
	po = gotext.NewLocaleFSWithPath(best, locales, localesDir)
	po.AddDomain(domain)
	po.SetDomain(domain)
	msgs = make(map[string]string)
	for id, tr := range po.GetTranslations() {
		if tr.IsTranslated() {
			msgs[id] = tr.Get()
		}
	}
	current = best
}

// Current returns the language of the loaded catalog, or "" when
// messages are not translated.
func Current() string {
	return current
}

// Available returns the languages with an embedded catalog, sorted.
func Available() []string {
	entries, err := fs.ReadDir(locales, localesDir)
	if err != nil {
		return nil
	}
	var langs []string
	for _, e := range entries {
		if e.IsDir() {
			langs = append(langs, e.Name())
		}
	}
	sort.Strings(langs)
	return langs
}

// match returns the embedded catalog closest to lang, or "" when the best
// candidate is only a weak match (e.g. "uk" for "ru").
func match(lang string) string {
	avail := Available()
	if len(avail) == 0 {
		return ""
	}
	want, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return ""
	}
	tags := make([]language.Tag, len(avail))
	for i, a := range avail {
		tags[i] = language.Make(strings.ReplaceAll(a, "_", "-"))
	}
	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf < language.High {
		return ""
	}
	return avail[idx]
}

// T translates msgid, returning it unchanged when there is no catalog
// or no translation. The result is not formatted: msgid is usually a
// format string for the caller.
func T(msgid string) string {
	if s, ok := msgs[msgid]; ok && po != nil {
		return s
	}
	return msgid
}

// N translates a message with plural forms, selected by n with the plural
// formula of the catalog.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage follows the GNU gettext priority:
// LANGUAGE > LC_ALL > LC_MESSAGES > LANG.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// ru_RU.UTF-8 -> ru_RU
		val, _, _ = strings.Cut(val, ".")
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return "en"
}
