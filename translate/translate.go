// Package translate drives a translation service over planned keys.
//
// Sync runs one file/language pass: it protects the placeholders of every
// planned string, sends the strings in batches, restores the placeholders
// and merges the results into the destination catalog. A pass is
// all-or-nothing: when any batch fails nothing is merged.
//
// Runner runs passes for every file and target language and writes the
// source snapshot once per file after all of its passes succeeded.
package translate

import (
	"context"
	"html"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/locsync/catalog"
	"github.com/minios-linux/locsync/matcher"
	"github.com/minios-linux/locsync/placeholder"
	"github.com/minios-linux/locsync/plan"
	"github.com/minios-linux/locsync/service"
)

// Defaults used when Options leaves a value at zero.
const (
	DefaultBatchSize     = 50
	DefaultMaxConcurrent = 4
)

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options controls a translation run.
type Options struct {
	// Matcher finds the placeholders to protect. Nil means icu.
	Matcher matcher.Matcher
	// BatchSize is the number of strings per service call. A service
	// implementing service.BatchLimiter may lower it.
	BatchSize int
	// MaxConcurrent bounds concurrent batches of one pass and concurrent
	// languages of one file.
	MaxConcurrent int
	// DeleteUnused removes destination keys missing from the source.
	DeleteUnused bool
	// DecodeEscapes decodes HTML entities (&#39;) in translated strings.
	DecodeEscapes bool
	// DryRun disables every write.
	DryRun bool

	// OnLog emits informational messages.
	OnLog func(format string, args ...any)
	// OnWarn emits recoverable problems.
	OnWarn func(format string, args ...any)
	// OnError emits failed passes.
	OnError func(format string, args ...any)
	// OnFileStart is called before the batches of a pass are sent.
	OnFileStart func(file, lang string, total int)
	// OnProgress is called after each batch.
	OnProgress func(file, lang string, done, total int)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) warn(format string, args ...any) {
	if o.OnWarn != nil {
		o.OnWarn(format, args...)
	} else {
		o.log(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else {
		o.log(format, args...)
	}
}

func (o *Options) effectiveBatchSize(prov service.Provider) int {
	size := o.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	if bl, ok := prov.(service.BatchLimiter); ok {
		if limit := bl.BatchSize(); limit > 0 && limit < size {
			size = limit
		}
	}
	return size
}

func (o *Options) effectiveMaxConcurrent() int {
	if o.MaxConcurrent > 0 {
		return o.MaxConcurrent
	}
	return DefaultMaxConcurrent
}

func (o *Options) matcher() matcher.Matcher {
	if o.Matcher != nil {
		return o.Matcher
	}
	m, _ := matcher.Lookup(matcher.ICU)
	return m
}

// ---------------------------------------------------------------------------
// Pass
// ---------------------------------------------------------------------------

// Pass is the input of one file/language pass.
type Pass struct {
	// File is the file identity, used in messages and errors.
	File  string
	Shape catalog.Shape
	// Source is the current source catalog.
	Source catalog.Catalog
	// Dest is the existing destination catalog, nil when there is none.
	Dest catalog.Catalog
	Plan *plan.Plan
	From string
	To   string
}

// Result is the outcome of a successful pass.
type Result struct {
	// Added is the number of translated keys merged.
	Added int
	// Removed is the number of unused keys deleted.
	Removed int
	// Merged is the new destination content.
	Merged catalog.Catalog
	// Missing lists planned keys the service returned no translation
	// for. They keep their previous destination value.
	Missing []string
	// Warnings lists placeholder mismatches.
	Warnings []*PlaceholderWarning
}

// Complete reports whether every planned key was translated.
func (r *Result) Complete() bool {
	return len(r.Missing) == 0
}

// protectedString is a planned key ready to be sent.
type protectedString struct {
	str  service.String
	reps []placeholder.Occurrence
}

// Sync runs one pass. It returns a *ProviderError when a batch fails; in
// that case nothing is merged.
func Sync(ctx context.Context, pass Pass, prov service.Provider, opts Options) (*Result, error) {
	keys := pass.Plan.ToTranslate
	m := opts.matcher()

	items := make([]protectedString, len(keys))
	for i, key := range keys {
		text := plan.SourceText(pass.Shape, key, pass.Source)
		p := placeholder.Protect(text, m)
		items[i] = protectedString{
			str:  service.String{Key: key, Text: p.Clean, Original: text},
			reps: p.Replacements,
		}
	}

	batches := splitBatches(items, opts.effectiveBatchSize(prov))
	replies := make([][]service.Result, len(batches))

	if len(batches) > 0 && opts.OnFileStart != nil {
		opts.OnFileStart(pass.File, pass.To, len(items))
	}

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.effectiveMaxConcurrent())
	for i, batch := range batches {
		g.Go(func() error {
			strs := make([]service.String, len(batch))
			for j, it := range batch {
				strs[j] = it.str
			}
			res, err := prov.TranslateBatch(gctx, strs, pass.From, pass.To)
			if err != nil {
				return &ProviderError{File: pass.File, Language: pass.To, Batch: i, Err: err}
			}
			replies[i] = res

			mu.Lock()
			done += len(batch)
			d := done
			mu.Unlock()
			if opts.OnProgress != nil {
				opts.OnProgress(pass.File, pass.To, d, len(items))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	translated := make(catalog.Catalog, len(items))
	for i, batch := range batches {
		byKey := make(map[string]protectedString, len(batch))
		for _, it := range batch {
			byKey[it.str.Key] = it
		}
		for _, r := range replies[i] {
			it, ok := byKey[r.Key]
			if !ok {
				opts.warn("%s [%s]: service returned unknown key %q", pass.File, pass.To, r.Key)
				continue
			}
			text, report := placeholder.Restore(r.Translated, it.reps)
			if !report.OK() {
				w := &PlaceholderWarning{File: pass.File, Language: pass.To, Key: r.Key, Report: report}
				result.Warnings = append(result.Warnings, w)
				opts.warn("%s", w)
			}
			if opts.DecodeEscapes {
				text = html.UnescapeString(text)
			}
			translated[r.Key] = text
		}
	}

	for _, key := range keys {
		if _, ok := translated[key]; !ok {
			result.Missing = append(result.Missing, key)
		}
	}
	if len(result.Missing) > 0 {
		opts.warn("%s [%s]: no translation returned for %d key(s), keeping previous values: %v",
			pass.File, pass.To, len(result.Missing), result.Missing)
	}

	result.Merged, result.Removed = plan.Merge(pass.Dest, pass.Plan, translated, opts.DeleteUnused)
	result.Added = len(translated)
	return result, nil
}

// splitBatches divides items into batches of the given size.
func splitBatches(items []protectedString, size int) [][]protectedString {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]protectedString{items}
	}
	var batches [][]protectedString
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		batches = append(batches, items[i:end])
	}
	return batches
}
