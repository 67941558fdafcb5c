package translate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/locsync/catalog"
	"github.com/minios-linux/locsync/plan"
	"github.com/minios-linux/locsync/service"
	"github.com/minios-linux/locsync/snapshot"
)

// ---------------------------------------------------------------------------
// Jobs
// ---------------------------------------------------------------------------

// Target is one destination of a source file.
type Target struct {
	Language string
	// Path is where the destination file is written.
	Path string
	// Dest is the existing destination content, nil when the file does
	// not exist yet.
	Dest catalog.Catalog
}

// FileJob is one source file and its destinations.
type FileJob struct {
	Source  *catalog.File
	Targets []Target
}

// WriteFunc writes merged content for one target.
type WriteFunc func(source *catalog.File, target Target, content catalog.Catalog) error

// Runner runs passes over files and languages.
type Runner struct {
	Provider   service.Provider
	Snapshots  *snapshot.Store
	SourceLang string
	Write      WriteFunc
	Options    Options
	// KeepSnapshots leaves every snapshot as it is. Set it when the run
	// covers only some of the target languages: the others still need
	// the changes recorded since the last snapshot.
	KeepSnapshots bool
}

// ---------------------------------------------------------------------------
// Planning
// ---------------------------------------------------------------------------

// TargetPlan is the plan for one target of a job.
type TargetPlan struct {
	Target Target
	Plan   *plan.Plan
	// Skipped is set when the service does not support the language.
	Skipped bool
}

// Plan computes the plan of every target of job against the source
// snapshot. A corrupt snapshot is reported and treated as missing.
func (r *Runner) Plan(job FileJob) ([]TargetPlan, error) {
	diff, err := r.diff(job.Source)
	if err != nil {
		return nil, err
	}
	plans := make([]TargetPlan, 0, len(job.Targets))
	for _, t := range job.Targets {
		tp := TargetPlan{Target: t}
		if r.Provider != nil && !r.Provider.SupportsLanguage(t.Language) {
			tp.Skipped = true
		} else {
			tp.Plan = plan.Build(job.Source.Content, t.Dest, diff)
		}
		plans = append(plans, tp)
	}
	return plans, nil
}

// diff returns the source keys changed since the last snapshot. Natural
// files are translated from their keys, so only keys are compared.
func (r *Runner) diff(src *catalog.File) ([]string, error) {
	if r.Snapshots == nil {
		return nil, nil
	}
	prev, err := r.Snapshots.Load(r.SourceLang, src.Name)
	if err != nil {
		if !errors.Is(err, snapshot.ErrCorrupt) {
			return nil, err
		}
		r.Options.warn("%v (ignoring snapshot, treating every missing key as new)", err)
		prev = nil
	}
	current := src.Content
	if src.Shape == catalog.ShapeNatural {
		prev, current = keysOnly(prev), keysOnly(current)
	}
	return snapshot.Diff(prev, current), nil
}

func keysOnly(c catalog.Catalog) catalog.Catalog {
	if c == nil {
		return nil
	}
	out := make(catalog.Catalog, len(c))
	for k := range c {
		out[k] = k
	}
	return out
}

// ---------------------------------------------------------------------------
// Running
// ---------------------------------------------------------------------------

// PassReport describes the outcome of one file/language pass.
type PassReport struct {
	File     string
	Language string
	Added    int
	Removed  int
	Missing  int
	Warnings int
	Skipped  bool
	Written  bool
	Err      error
}

// Summary aggregates a run.
type Summary struct {
	Passes []PassReport
	// SnapshotsWritten counts files whose snapshot was replaced.
	SnapshotsWritten int
}

// Failed returns the passes that failed.
func (s *Summary) Failed() []PassReport {
	var out []PassReport
	for _, p := range s.Passes {
		if p.Err != nil {
			out = append(out, p)
		}
	}
	return out
}

// Totals returns the added and removed key counts over every pass.
func (s *Summary) Totals() (added, removed int) {
	for _, p := range s.Passes {
		added += p.Added
		removed += p.Removed
	}
	return added, removed
}

// Run runs every job. Files are processed in order; the languages of one
// file run concurrently. A failed pass is recorded in the summary and does
// not stop the others. Run only returns an error when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, jobs []FileJob) (*Summary, error) {
	summary := &Summary{}
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		reports, snapshotWritten, err := r.runFile(ctx, job)
		summary.Passes = append(summary.Passes, reports...)
		if snapshotWritten {
			summary.SnapshotsWritten++
		}
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (r *Runner) runFile(ctx context.Context, job FileJob) ([]PassReport, bool, error) {
	name := job.Source.Name
	plans, err := r.Plan(job)
	if err != nil {
		report := PassReport{File: name, Err: err}
		r.Options.logError("%s: %v", name, err)
		return []PassReport{report}, false, nil
	}

	reports := make([]PassReport, len(plans))
	var mu sync.Mutex
	complete := true

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Options.effectiveMaxConcurrent())
	for i, tp := range plans {
		g.Go(func() error {
			rep, ok := r.runTarget(gctx, job.Source, tp)
			reports[i] = rep
			if !ok {
				mu.Lock()
				complete = false
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return reports, false, err
	}

	if !complete || r.Options.DryRun || r.Snapshots == nil || r.KeepSnapshots {
		if !complete {
			r.Options.warn("%s: snapshot not updated, unfinished keys will be retried on the next run", name)
		}
		return reports, false, nil
	}
	if err := r.Snapshots.Write(r.SourceLang, name, job.Source.Content); err != nil {
		r.Options.logError("%s: writing snapshot: %v", name, err)
		reports = append(reports, PassReport{File: name, Err: err})
		return reports, false, nil
	}
	return reports, true, nil
}

// runTarget runs one pass and writes its result. The boolean reports
// whether the pass left nothing behind (success, or explicitly skipped).
func (r *Runner) runTarget(ctx context.Context, src *catalog.File, tp TargetPlan) (PassReport, bool) {
	rep := PassReport{File: src.Name, Language: tp.Target.Language}
	if tp.Skipped {
		rep.Skipped = true
		r.Options.warn("%s: language %q is not supported by %s, skipping", src.Name, tp.Target.Language, r.Provider.Name())
		return rep, true
	}

	res, err := Sync(ctx, Pass{
		File:   src.Name,
		Shape:  src.Shape,
		Source: src.Content,
		Dest:   tp.Target.Dest,
		Plan:   tp.Plan,
		From:   r.SourceLang,
		To:     tp.Target.Language,
	}, r.Provider, r.Options)
	if err != nil {
		rep.Err = err
		r.Options.logError("%v", err)
		return rep, false
	}
	rep.Added, rep.Removed = res.Added, res.Removed
	rep.Missing, rep.Warnings = len(res.Missing), len(res.Warnings)

	changed := res.Added > 0 || res.Removed > 0 || tp.Target.Dest == nil
	if changed && !r.Options.DryRun && r.Write != nil {
		if err := r.Write(src, tp.Target, res.Merged); err != nil {
			rep.Err = fmt.Errorf("writing %s: %w", tp.Target.Path, err)
			r.Options.logError("%v", rep.Err)
			return rep, false
		}
		rep.Written = true
	}
	return rep, res.Complete()
}
