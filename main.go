// locsync: incremental translation sync for JSON, YAML, TOML, CSV and
// properties catalogs.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/locsync/catalog"
	"github.com/minios-linux/locsync/config"
	"github.com/minios-linux/locsync/i18n"
	"github.com/minios-linux/locsync/langmeta"
	"github.com/minios-linux/locsync/matcher"
	"github.com/minios-linux/locsync/project"
	"github.com/minios-linux/locsync/service"
	"github.com/minios-linux/locsync/settings"
	"github.com/minios-linux/locsync/snapshot"
	"github.com/minios-linux/locsync/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(color.Error, "%s %s\n", blue("[INFO]"), fmt.Sprintf(format, args...))
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(color.Error, "%s %s\n", green("[OK]"), fmt.Sprintf(format, args...))
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(color.Error, "%s %s\n", yellow("[WARN]"), fmt.Sprintf(format, args...))
}

func logError(format string, args ...any) {
	fmt.Fprintf(color.Error, "%s %s\n", red("[ERROR]"), fmt.Sprintf(format, args...))
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	inputDir string
	cacheDir string
)

// ---------------------------------------------------------------------------
// Enum flag values
// ---------------------------------------------------------------------------

// fileTypeValue is the --type flag: key-based, natural or auto.
type fileTypeValue string

func (v *fileTypeValue) String() string { return string(*v) }

func (v *fileTypeValue) Set(s string) error {
	shape, err := catalog.ParseShape(s)
	if err != nil {
		return err
	}
	*v = fileTypeValue(shape)
	return nil
}

func (v *fileTypeValue) Type() string { return "type" }

// structureValue is the --directory-structure flag.
type structureValue string

func (v *structureValue) String() string { return string(*v) }

func (v *structureValue) Set(s string) error {
	st, err := config.ParseStructure(s)
	if err != nil {
		return err
	}
	*v = structureValue(st)
	return nil
}

func (v *structureValue) Type() string { return "structure" }

var (
	_ pflag.Value = (*fileTypeValue)(nil)
	_ pflag.Value = (*structureValue)(nil)
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "locsync",
		Short: "Incremental translation sync for localization catalogs",
		Long: `locsync keeps translated catalogs in step with a source language.

Only strings that are new or whose source text changed since the last
successful run are sent to the translation service. Interpolation
placeholders such as {name} are shielded from the service and restored
afterwards.

Layout (default structure):
  <input>/en/app.json      source catalog
  <input>/fr/app.json      target catalogs, one directory per language

Commands:
  translate      Translate new and changed strings (alias: sync)
  status         Show what a translate run would do
  init           Create the cache directory and config.yaml
  list-services  Show the available translation services
  list-matchers  Show the available placeholder matchers
  auth           Manage stored service credentials`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVarP(&inputDir, "input", "i", "", "Directory holding the language catalogs (default from config.yaml, \".\")")
	root.PersistentFlags().StringVar(&cacheDir, "cache", config.DefaultCacheDir, "Cache directory (snapshots and config.yaml)")

	root.AddCommand(
		newTranslateCmd(),
		newStatusCmd(),
		newInitCmd(),
		newListServicesCmd(),
		newListMatchersCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logWarning(i18n.T("Could not load .env: %v"), err)
	}
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		var cfgErr *translate.ConfigurationError
		if errors.As(err, &cfgErr) {
			logError(i18n.T("Configuration error: %v"), cfgErr)
		} else {
			logError("%v", err)
		}
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("locsync version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	sourceLang    string
	fileType      fileTypeValue
	structure     structureValue
	service       string
	serviceConfig string
	apiKey        string
	model         string
	baseURL       string
	matcher       string
	langs         string

	fix, deleteUnused, decodeEscapes bool
	dryRun, verbose                  bool

	batchSize     int
	maxConcurrent int
	maxRetries    int
	timeout       time.Duration
	proxy         string
}

func bindTranslateFlags(f *pflag.FlagSet, a *translateArgs) {
	// Source and layout
	f.StringVarP(&a.sourceLang, "source-language", "l", "", "Source language code (default from config.yaml, \"en\")")
	f.VarP(&a.fileType, "type", "t", "Catalog type: key-based, natural or auto")
	f.Var(&a.structure, "directory-structure", "Directory structure: default or ngx-translate")
	f.StringVar(&a.langs, "lang", "", "Target languages (comma-separated, default: every language directory)")

	// Service selection
	f.StringVarP(&a.service, "service", "s", "", "Translation service: "+strings.Join(service.Names(), ", "))
	f.StringVarP(&a.serviceConfig, "config", "c", "", "Service configuration string (azure: key[,region])")
	f.StringVar(&a.apiKey, "api-key", "", "API key (or "+settings.EnvAPIKey+" env var)")
	f.StringVar(&a.model, "model", "", "Model name (openai, gemini)")
	f.StringVar(&a.baseURL, "base-url", "", "Custom API base URL")
	f.StringVarP(&a.matcher, "matcher", "m", "", "Placeholder matcher: "+strings.Join(matcher.Names(), ", "))

	// Behavior
	f.BoolVarP(&a.fix, "fix-inconsistencies", "f", false, "Rewrite natural source entries so that value equals key")
	f.BoolVarP(&a.deleteUnused, "delete-unused-strings", "d", false, "Delete target keys and files with no source counterpart")
	f.BoolVar(&a.decodeEscapes, "decode-escapes", false, "Decode HTML entities in translated strings")
	f.BoolVar(&a.dryRun, "dry-run", false, "Show what would be translated without calling a service or writing files")
	f.BoolVar(&a.verbose, "verbose", false, "Enable detailed logging")

	// Throughput and network
	f.IntVar(&a.batchSize, "batch-size", 0, "Strings per service call (default 50)")
	f.IntVar(&a.maxConcurrent, "max-concurrent", 0, "Maximum concurrent service calls (default 4)")
	f.DurationVar(&a.timeout, "timeout", 0, "Request timeout (0 = service default)")
	f.StringVar(&a.proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	f.IntVar(&a.maxRetries, "max-retries", 3, "Maximum retries on network errors, 5xx and 429")
}

// applyOverrides copies the flags that were set on the command line over
// the values loaded from config.yaml.
func applyOverrides(cfg *config.Config, f *pflag.FlagSet, a *translateArgs) {
	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	if f.Changed("source-language") {
		cfg.SourceLang = a.sourceLang
	}
	if f.Changed("type") {
		cfg.FileType = string(a.fileType)
	}
	if f.Changed("directory-structure") {
		cfg.DirStructure = string(a.structure)
	}
	if f.Changed("lang") {
		cfg.Languages = splitList(a.langs)
	}
	if f.Changed("service") {
		cfg.Service = a.service
	}
	if f.Changed("config") {
		cfg.ServiceConfig = a.serviceConfig
	}
	if f.Changed("model") {
		cfg.Model = a.model
	}
	if f.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if f.Changed("matcher") {
		cfg.Matcher = a.matcher
	}
	if f.Changed("delete-unused-strings") {
		cfg.DeleteUnused = a.deleteUnused
	}
	if f.Changed("decode-escapes") {
		cfg.DecodeEscapes = a.decodeEscapes
	}
	if f.Changed("batch-size") {
		cfg.BatchSize = a.batchSize
	}
	if f.Changed("max-concurrent") {
		cfg.MaxConcurrent = a.maxConcurrent
	}
}

func newTranslateCmd() *cobra.Command {
	a := &translateArgs{}

	cmd := &cobra.Command{
		Use:     "translate",
		Aliases: []string{"sync"},
		Short:   "Translate new and changed strings",
		Long: `Translate every string that is missing from a target catalog or whose
source text changed since the last successful run.

Settings come from <cache>/config.yaml, created with defaults on first
run; flags override them. Credentials are looked up in the --config and
--api-key flags, then the ` + settings.EnvServiceConfig + ` and ` + settings.EnvAPIKey + `
environment variables, then the store managed by 'locsync auth'.

Examples:
  # Translate with the free Google Translate endpoint
  locsync translate

  # Azure Translator
  locsync translate -s azure -c "$AZURE_KEY,westeurope"

  # An OpenAI-compatible server, two languages only
  locsync translate -s openai --base-url http://localhost:11434/v1 --model llama3.2 --lang de,fr

  # Natural-language catalogs (key == English text)
  locsync translate -t natural --fix-inconsistencies

  # Show what would be sent without calling a service
  locsync translate --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, created, err := config.Init(cacheDir)
			if err != nil {
				return translate.ConfigErr(i18n.T("loading configuration"), err)
			}
			if created {
				logInfo(i18n.T("Created %s with default settings"), config.Path(cacheDir))
			}
			applyOverrides(cfg, cmd.Flags(), a)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					logWarning("%s", i18n.T("Interrupted, finishing without writing snapshots..."))
					cancel()
				case <-ctx.Done():
				}
			}()

			return runTranslate(ctx, cfg, a)
		},
	}

	bindTranslateFlags(cmd.Flags(), a)

	_ = cmd.RegisterFlagCompletionFunc("service", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, id := range service.Names() {
			out = append(out, id+"\t"+service.Describe(id))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("matcher", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, name := range matcher.Names() {
			out = append(out, name+"\t"+matcher.Describe(name))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, 0, len(catalog.Shapes))
		for _, s := range catalog.Shapes {
			out = append(out, string(s))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("directory-structure", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{config.StructureDefault, config.StructureNgx}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runTranslate(ctx context.Context, cfg *config.Config, a *translateArgs) error {
	dryRun := a.dryRun || cfg.Service == service.DryRun
	if a.dryRun {
		cfg.Service = service.DryRun
	}

	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}

	prov, err := initService(ctx, cfg, a)
	if err != nil {
		return err
	}
	if !prov.SupportsLanguage(cfg.SourceLang) {
		return translate.Configf(i18n.T("service %s does not support the source language %q"), prov.Name(), cfg.SourceLang)
	}
	if len(cfg.Languages) > 0 {
		for _, lang := range ws.targets {
			if !prov.SupportsLanguage(lang) {
				return translate.Configf(i18n.T("service %s does not support the target language %q"), prov.Name(), lang)
			}
		}
	}

	jobs, err := ws.loadJobs(a.fix, dryRun)
	if err != nil {
		return err
	}
	if len(ws.targets) == 0 {
		logWarning(i18n.T("No target languages found in %s"), cfg.InputDir)
		return nil
	}

	m, _ := matcher.Lookup(cfg.Matcher)
	snapshots, err := snapshot.Open(cacheDir)
	if err != nil {
		return err
	}

	runner := &translate.Runner{
		Provider:      prov,
		Snapshots:     snapshots,
		SourceLang:    cfg.SourceLang,
		KeepSnapshots: ws.partial,
		Write: func(src *catalog.File, t translate.Target, content catalog.Catalog) error {
			return project.WriteFile(t.Path, src, content, t.Language)
		},
		Options: translate.Options{
			Matcher:       m,
			BatchSize:     cfg.EffectiveBatchSize(),
			MaxConcurrent: cfg.EffectiveMaxConcurrent(),
			DeleteUnused:  cfg.DeleteUnused,
			DecodeEscapes: cfg.DecodeEscapes,
			DryRun:        dryRun,
			OnWarn:        logWarning,
			OnError:       logError,
		},
	}
	if a.verbose {
		runner.Options.OnLog = logInfo
	}
	showBars := !a.verbose && cfg.Service != service.Manual

	logInfo(i18n.T("Translating %s -> %s with %s"), cfg.SourceLang, strings.Join(ws.targets, ", "), prov.Name())
	if dryRun {
		logInfo("%s", i18n.T("Dry run: no files will be written"))
	} else if ws.partial {
		logInfo("%s", i18n.T("Not all target languages are selected, snapshots are left unchanged"))
	}

	summary := &translate.Summary{}
	for _, job := range jobs {
		var prog *fileProgress
		if showBars {
			prog = &fileProgress{name: job.Source.Name}
			runner.Options.OnFileStart = prog.start
			runner.Options.OnProgress = prog.progress
		}
		s, err := runner.Run(ctx, []translate.FileJob{job})
		if prog != nil {
			prog.finish()
		}
		summary.Passes = append(summary.Passes, s.Passes...)
		summary.SnapshotsWritten += s.SnapshotsWritten
		if err != nil {
			return fmt.Errorf(i18n.T("translation interrupted: %w"), err)
		}
		reportPasses(s.Passes, dryRun)
	}

	if cfg.DeleteUnused && !dryRun {
		ws.deleteOrphans(jobs)
	}
	if !dryRun {
		ws.pruneSnapshots(snapshots, jobs)
	}

	added, removed := summary.Totals()
	failed := summary.Failed()
	fmt.Fprintln(os.Stderr)
	logInfo(i18n.N("%d string translated", "%d strings translated", added), added)
	if removed > 0 {
		logInfo(i18n.N("%d unused string removed", "%d unused strings removed", removed), removed)
	}
	if len(failed) > 0 {
		return fmt.Errorf(i18n.N("%d translation pass failed", "%d translation passes failed", len(failed)), len(failed))
	}
	logSuccess("%s", i18n.T("Done"))
	return nil
}

// initService creates the configured service and initializes it with the
// resolved credentials.
func initService(ctx context.Context, cfg *config.Config, a *translateArgs) (service.Provider, error) {
	prov, err := service.New(cfg.Service)
	if err != nil {
		return nil, translate.ConfigErr("", err)
	}

	creds := settings.Resolve(cfg.Service, settings.Info{
		Config:  cfg.ServiceConfig,
		Key:     a.apiKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})

	scfg := service.Config{
		Raw:        creds.Config,
		APIKey:     creds.Key,
		Model:      creds.Model,
		BaseURL:    creds.BaseURL,
		Proxy:      a.proxy,
		Timeout:    a.timeout,
		MaxRetries: a.maxRetries,
		Verbose:    a.verbose,
		OnLog:      logInfo,
	}
	if err := prov.Initialize(ctx, scfg); err != nil {
		return nil, translate.ConfigErr(fmt.Sprintf(i18n.T("initializing %s"), cfg.Service), err)
	}
	return prov, nil
}

// reportPasses prints one line per finished pass.
func reportPasses(passes []translate.PassReport, dryRun bool) {
	for _, p := range passes {
		if p.Err != nil || p.Skipped || p.Language == "" {
			continue
		}
		if p.Added == 0 && p.Removed == 0 {
			continue
		}
		msg := fmt.Sprintf(i18n.T("%s [%s]: %d translated, %d removed"), p.File, p.Language, p.Added, p.Removed)
		if p.Missing > 0 {
			msg += fmt.Sprintf(i18n.T(", %d missing"), p.Missing)
		}
		if dryRun {
			logInfo("%s %s", msg, i18n.T("(dry run)"))
		} else {
			logSuccess("%s", msg)
		}
	}
}

// fileProgress drives one progress bar over every language pass of a
// file. Passes of one file run concurrently.
type fileProgress struct {
	mu   sync.Mutex
	name string
	bar  *progressbar.ProgressBar
	done map[string]int
}

func (p *fileProgress) start(file, lang string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.ChangeMax(p.bar.GetMax() + total)
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", p.name)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func (p *fileProgress) progress(file, lang string, done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		p.done = make(map[string]int)
	}
	delta := done - p.done[lang]
	p.done[lang] = done
	if p.bar != nil && delta > 0 {
		_ = p.bar.Add(delta)
	}
}

func (p *fileProgress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}

// ---------------------------------------------------------------------------
// Workspace: languages, source files and targets
// ---------------------------------------------------------------------------

type workspace struct {
	cfg     *config.Config
	layout  *project.Layout
	targets []string
	// partial is set when a discovered target language is left out of
	// the run by --lang.
	partial bool
}

// openWorkspace validates cfg and resolves the target languages. Every
// problem found here is a ConfigurationError: nothing has been written
// yet.
func openWorkspace(cfg *config.Config) (*workspace, error) {
	if err := cfg.Validate(); err != nil {
		return nil, translate.ConfigErr(config.Path(cacheDir), err)
	}
	layout, err := project.New(cfg.InputDir, cfg.DirStructure)
	if err != nil {
		return nil, translate.ConfigErr("", err)
	}
	available, err := layout.Languages()
	if err != nil {
		return nil, translate.ConfigErr("", err)
	}
	if !containsLang(available, cfg.SourceLang) {
		return nil, translate.Configf(i18n.T("source language %q not found in %s (found: %s)"),
			cfg.SourceLang, cfg.InputDir, strings.Join(available, ", "))
	}
	targets, err := selectTargets(available, cfg.Languages, cfg.SourceLang)
	if err != nil {
		return nil, translate.ConfigErr("", err)
	}
	ws := &workspace{cfg: cfg, layout: layout, targets: targets}
	for _, lang := range filterOutLang(available, cfg.SourceLang) {
		if !containsLang(targets, lang) {
			ws.partial = true
			break
		}
	}
	return ws, nil
}

// loadJobs reads every source catalog and the matching target catalogs.
func (ws *workspace) loadJobs(fix, dryRun bool) ([]translate.FileJob, error) {
	source := ws.cfg.SourceLang
	names, err := ws.layout.SourceFiles(source)
	if err != nil {
		return nil, translate.ConfigErr("", err)
	}
	if len(names) == 0 {
		return nil, translate.Configf(i18n.T("no catalog files for %q in %s (supported: %s)"),
			source, ws.layout.LangDir(source), strings.Join(project.Extensions(), ", "))
	}
	shape, _ := catalog.ParseShape(ws.cfg.FileType)

	// Every source is read and checked before the first fix is written.
	files := make([]*catalog.File, len(names))
	for i, name := range names {
		path := ws.layout.SourcePath(source, name)
		file, err := project.LoadFile(path, shape, source)
		if err != nil {
			return nil, translate.ConfigErr(i18n.T("reading source catalog"), err)
		}
		if len(file.InvalidKeys) > 0 {
			return nil, translate.Configf(i18n.T("%s: keys containing \".\" cannot be used in key-based files: %s"),
				path, strings.Join(file.InvalidKeys, ", "))
		}
		files[i] = file
	}

	var jobs []translate.FileJob
	for i, name := range names {
		file := files[i]
		if err := checkInconsistencies(ws.layout.SourcePath(source, name), file, source, fix, dryRun); err != nil {
			return nil, err
		}

		job := translate.FileJob{Source: file}
		for _, lang := range ws.targets {
			tpath := ws.layout.TargetPath(lang, name)
			dest, err := project.LoadTarget(tpath, file, lang)
			if err != nil {
				return nil, translate.ConfigErr(i18n.T("reading target catalog"), err)
			}
			job.Targets = append(job.Targets, translate.Target{Language: lang, Path: tpath, Dest: dest})
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// checkInconsistencies reports natural entries whose value differs from
// the key, and rewrites them when fix is set.
func checkInconsistencies(path string, file *catalog.File, lang string, fix, dryRun bool) error {
	bad := catalog.Inconsistencies(file)
	if len(bad) == 0 {
		return nil
	}
	if !fix {
		logWarning(i18n.N("%s: %d entry has a value different from its key: %s",
			"%s: %d entries have a value different from their key: %s", len(bad)),
			path, len(bad), strings.Join(bad, ", "))
		logInfo("%s", i18n.T("Run with --fix-inconsistencies to rewrite them"))
		return nil
	}
	n := catalog.FixInconsistencies(file)
	if dryRun {
		logInfo(i18n.T("%s: would fix %d entries (dry run)"), path, n)
		return nil
	}
	if err := project.WriteFile(path, file, file.Content, lang); err != nil {
		return fmt.Errorf(i18n.T("fixing %s: %w"), path, err)
	}
	logSuccess(i18n.T("%s: fixed %d entries"), path, n)
	return nil
}

// deleteOrphans removes target files that no longer have a source file.
func (ws *workspace) deleteOrphans(jobs []translate.FileJob) {
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Source.Name
	}
	for _, lang := range ws.targets {
		orphans, err := ws.layout.OrphanFiles(lang, names)
		if err != nil {
			logWarning("%v", err)
			continue
		}
		for _, path := range orphans {
			if err := os.Remove(path); err != nil {
				logError(i18n.T("removing %s: %v"), path, err)
				continue
			}
			logSuccess(i18n.T("Removed %s (no source file)"), path)
		}
	}
}

// pruneSnapshots drops snapshots of source files that no longer exist.
func (ws *workspace) pruneSnapshots(store *snapshot.Store, jobs []translate.FileJob) {
	current := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		current[j.Source.Name] = true
	}
	files, err := store.Files(ws.cfg.SourceLang)
	if err != nil {
		logWarning("%v", err)
		return
	}
	for _, f := range files {
		if current[f] {
			continue
		}
		if err := store.Remove(ws.cfg.SourceLang, f); err != nil {
			logWarning("%v", err)
		}
	}
}

// ---------------------------------------------------------------------------
// status (read-only: what a translate run would do)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	a := &translateArgs{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what a translate run would do",
		Long: `Show the detected languages and, per file and target language, how many
strings a translate run would send and how many target keys are unused.

Does not call any service and does not modify any file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cacheDir)
			if err != nil {
				return translate.ConfigErr(i18n.T("loading configuration"), err)
			}
			if cfg == nil {
				cfg = config.Default()
			}
			applyOverrides(cfg, cmd.Flags(), a)
			return runStatus(cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&a.sourceLang, "source-language", "l", "", "Source language code")
	f.VarP(&a.fileType, "type", "t", "Catalog type: key-based, natural or auto")
	f.Var(&a.structure, "directory-structure", "Directory structure: default or ngx-translate")
	f.StringVar(&a.langs, "lang", "", "Target languages (comma-separated)")

	return cmd
}

func runStatus(cfg *config.Config) error {
	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	jobs, err := ws.loadJobs(false, true)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", blue(i18n.T("Project")))
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	absRoot, _ := filepath.Abs(cfg.InputDir)
	fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Input:"), absRoot)
	fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Structure:"), cfg.DirStructure)
	fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Source:"), langLabel(cfg.SourceLang))
	fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Service:"), cfg.Service)
	fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Matcher:"), cfg.Matcher)
	fmt.Fprintln(os.Stderr)

	if len(ws.targets) == 0 {
		logInfo("%s", i18n.T("No target languages found"))
		return nil
	}

	snapshots, err := snapshot.Open(cacheDir)
	if err != nil {
		return err
	}
	runner := &translate.Runner{
		Snapshots:  snapshots,
		SourceLang: cfg.SourceLang,
		Options:    translate.Options{OnWarn: logWarning},
	}

	width := langColumnWidth(ws.targets)
	for _, job := range jobs {
		plans, err := runner.Plan(job)
		if err != nil {
			return err
		}
		total := len(job.Source.Content)
		fmt.Fprintf(os.Stderr, "%s  %s\n", blue(job.Source.Name), i18n.N("(%d string)", "(%d strings)", total))
		fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
		fmt.Fprintf(os.Stderr, "%-*s %-10s %-8s %s\n", width, i18n.T("Lang"), i18n.T("Pending"), i18n.T("Unused"), i18n.T("Coverage"))
		for _, tp := range plans {
			pending := len(tp.Plan.ToTranslate)
			percent := 100
			if total > 0 {
				percent = (total - pending) * 100 / total
			}
			fmt.Fprintf(os.Stderr, "%-*s %-10d %-8d %s %3d%%\n", width, langLabel(tp.Target.Language),
				pending, len(tp.Plan.Unused), coverageBar(percent, 20), percent)
		}
		fmt.Fprintln(os.Stderr)
	}
	return nil
}

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the cache directory and config.yaml",
		Long: `Create the cache directory with a config.yaml holding the default
settings. An existing config.yaml is left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, created, err := config.Init(cacheDir)
			if err != nil {
				return translate.ConfigErr(i18n.T("loading configuration"), err)
			}
			if _, err := snapshot.Open(cacheDir); err != nil {
				return err
			}
			if created {
				logSuccess(i18n.T("Created %s"), config.Path(cacheDir))
			} else {
				logInfo(i18n.T("%s already exists"), config.Path(cacheDir))
			}
			fmt.Fprintf(os.Stderr, "  source_lang:   %s\n", cfg.SourceLang)
			fmt.Fprintf(os.Stderr, "  service:       %s\n", cfg.Service)
			fmt.Fprintf(os.Stderr, "  matcher:       %s\n", cfg.Matcher)
			fmt.Fprintf(os.Stderr, "  file_type:     %s\n", cfg.FileType)
			fmt.Fprintf(os.Stderr, "  dir_structure: %s\n", cfg.DirStructure)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// list-services / list-matchers
// ---------------------------------------------------------------------------

func newListServicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-services",
		Short: "Show the available translation services",
		Run: func(cmd *cobra.Command, args []string) {
			for _, id := range service.Names() {
				key := ""
				if service.NeedsKey(id) {
					key = yellow(i18n.T("(credentials required)"))
				}
				fmt.Printf("  %-18s %s %s\n", id, service.Describe(id), key)
			}
		},
	}
}

func newListMatchersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-matchers",
		Short: "Show the available placeholder matchers",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range matcher.Names() {
				fmt.Printf("  %-10s %s\n", name, matcher.Describe(name))
			}
		},
	}
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored service credentials",
		Long: `Manage the credentials used by the translation services.

Credentials are stored in ` + "$XDG_DATA_HOME/locsync/auth.json" + ` with 0600 permissions.
Flags and environment variables take precedence over stored values.

Examples:
  locsync auth set --service azure --config "KEY,westeurope"
  locsync auth set --service openai --base-url http://localhost:11434/v1 --model llama3.2
  locsync auth set --service gemini            Prompt for the API key
  locsync auth remove --service gemini
  locsync auth list`,
	}

	cmd.AddCommand(
		newAuthSetCmd(),
		newAuthRemoveCmd(),
		newAuthListCmd(),
	)

	return cmd
}

func newAuthSetCmd() *cobra.Command {
	var (
		id      string
		info    settings.Info
		noInput bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store credentials for a service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := service.New(id); err != nil {
				return err
			}
			if info.Config == "" && info.Key == "" && service.NeedsKey(id) && !noInput {
				key, err := promptSecret(fmt.Sprintf(i18n.T("Enter API key for %s: "), id))
				if err != nil {
					return err
				}
				if id == service.Azure {
					info.Config = key
				} else {
					info.Key = key
				}
			}
			if info == (settings.Info{}) {
				return errors.New(i18n.T("nothing to store: pass --config, --key, --base-url or --model"))
			}
			if err := settings.Set(id, &info); err != nil {
				return fmt.Errorf(i18n.T("saving credentials: %w"), err)
			}
			logSuccess(i18n.T("Credentials for %s saved to %s"), id, settings.FilePath())
			return nil
		},
	}

	cmd.Flags().StringVarP(&id, "service", "s", "", "Service id")
	cmd.Flags().StringVarP(&info.Config, "config", "c", "", "Service configuration string (azure: key[,region])")
	cmd.Flags().StringVar(&info.Key, "key", "", "API key")
	cmd.Flags().StringVar(&info.BaseURL, "base-url", "", "Custom API base URL")
	cmd.Flags().StringVar(&info.Model, "model", "", "Default model")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "Never prompt for a key")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.RegisterFlagCompletionFunc("service", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return service.Names(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// promptSecret reads one line from stdin.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, "  "+prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return "", errors.New(i18n.T("no input received"))
	}
	key := strings.TrimSpace(scanner.Text())
	if key == "" {
		return "", errors.New(i18n.T("no API key provided"))
	}
	return key, nil
}

func newAuthRemoveCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:     "remove",
		Aliases: []string{"rm"},
		Short:   "Remove stored credentials",
		Long: `Remove stored credentials for one or all services.

If --service is not specified, credentials for ALL services are removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				logSuccess("%s", i18n.T("All stored credentials removed"))
				return nil
			}
			if err := settings.Remove(id); err != nil {
				return fmt.Errorf(i18n.T("removing %s credentials: %w"), id, err)
			}
			logSuccess(i18n.T("%s credentials removed"), id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&id, "service", "s", "", "Service id (default: all)")
	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored credentials",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stderr, "\n%s\n", blue(i18n.T("Stored Credentials")))
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

			for _, id := range service.Names() {
				if !service.NeedsKey(id) && id != service.OpenAI {
					continue
				}
				fmt.Fprintf(os.Stderr, "  %-18s %s\n", id, credentialStatus(settings.Get(id)))
			}

			fmt.Fprintf(os.Stderr, "\n  %s\n", yellow(i18n.T("Environment Variables")))
			for _, env := range []string{settings.EnvServiceConfig, settings.EnvAPIKey} {
				if v := os.Getenv(env); v != "" {
					fmt.Fprintf(os.Stderr, "  %s: %s %s\n", env, green(settings.MaskKey(v)), i18n.T("(overrides stored values)"))
				} else {
					fmt.Fprintf(os.Stderr, "  %s: %s\n", env, red(i18n.T("not set")))
				}
			}
			fmt.Fprintln(os.Stderr)
		},
	}
}

// credentialStatus describes a stored entry for auth list.
func credentialStatus(info *settings.Info) string {
	if info == nil {
		return red(i18n.T("not configured"))
	}
	var parts []string
	if info.Config != "" {
		key, region, _ := strings.Cut(info.Config, ",")
		p := "key: " + settings.MaskKey(key)
		if region != "" {
			p += ", region: " + region
		}
		parts = append(parts, p)
	}
	if info.Key != "" {
		parts = append(parts, "key: "+settings.MaskKey(info.Key))
	}
	if info.BaseURL != "" {
		parts = append(parts, "endpoint: "+info.BaseURL)
	}
	if info.Model != "" {
		parts = append(parts, "model: "+info.Model)
	}
	return green(i18n.T("configured")) + " (" + strings.Join(parts, ", ") + ")"
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// fileExists returns true if the file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsLang(langs []string, lang string) bool {
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}

// filterOutLang returns langs without any occurrence of lang.
func filterOutLang(langs []string, lang string) []string {
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		if l != lang {
			out = append(out, l)
		}
	}
	return out
}

// selectTargets returns the target languages of a run. Without requested
// languages every available language except the source is a target.
// Requested languages keep their order and may name languages that have
// no catalogs yet; duplicates and the source language are dropped.
func selectTargets(available, requested []string, source string) ([]string, error) {
	if len(requested) == 0 {
		return filterOutLang(available, source), nil
	}
	seen := make(map[string]bool, len(requested))
	var out []string
	for _, lang := range requested {
		lang = strings.TrimSpace(lang)
		if lang == "" || lang == source || seen[lang] {
			continue
		}
		if !project.IsLangCode(lang) {
			return nil, fmt.Errorf(i18n.T("invalid language code %q"), lang)
		}
		seen[lang] = true
		out = append(out, lang)
	}
	return out, nil
}

// langLabel returns "code Name" for display.
func langLabel(code string) string {
	meta := langmeta.Resolve(code)
	if meta.Name == "" || meta.Name == code {
		return code
	}
	return code + " " + meta.Name
}

// langColumnWidth returns the width of the language column of the status
// table.
func langColumnWidth(langs []string) int {
	width := len("Lang")
	for _, l := range langs {
		if n := len([]rune(langLabel(l))); n > width {
			width = n
		}
	}
	return width + 1
}

// coverageBar renders percent (clamped to 0..100) as a bar of width
// cells, colored by how complete it is.
func coverageBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case percent >= 100:
		return green(bar)
	case percent >= 50:
		return yellow(bar)
	default:
		return red(bar)
	}
}
