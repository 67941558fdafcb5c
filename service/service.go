// Package service implements the translation services locsync can drive:
// Azure Translator, the free Google Translate endpoint, OpenAI-compatible
// chat completions, Google Gemini, an interactive manual prompt and a
// dry-run echo.
//
// Every service sits behind the Provider interface and is selected by id
// through New. Callers never inspect the concrete type.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// ---------------------------------------------------------------------------
// Service IDs
// ---------------------------------------------------------------------------

const (
	Azure           = "azure"
	GoogleTranslate = "google-translate"
	OpenAI          = "openai"
	Gemini          = "gemini"
	Manual          = "manual"
	DryRun          = "dry-run"
)

// ErrUnknownService is wrapped by New for ids that are not registered.
var ErrUnknownService = errors.New("unknown service")

// ---------------------------------------------------------------------------
// Provider interface
// ---------------------------------------------------------------------------

// String is one string sent to a service. Text is the protected text
// (placeholders replaced by sentinels); Original is the unprotected
// source text, shown to human translators.
type String struct {
	Key      string
	Text     string
	Original string
}

// Result is the translation of one String, matched by Key.
type Result struct {
	Key        string
	Translated string
}

// Provider is a translation service.
type Provider interface {
	// Name returns the service id.
	Name() string
	// Initialize prepares the service. It is called once per run before
	// any other method.
	Initialize(ctx context.Context, cfg Config) error
	// SupportsLanguage reports whether code can be used as a source or
	// target language.
	SupportsLanguage(code string) bool
	// TranslateBatch translates strings from one language to another.
	// Results are matched by key; a service may return fewer results
	// than requested.
	TranslateBatch(ctx context.Context, strings []String, from, to string) ([]Result, error)
}

// BatchLimiter is implemented by services that accept a bounded number of
// strings per call.
type BatchLimiter interface {
	BatchSize() int
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config carries everything a service may need. Unused fields are ignored.
type Config struct {
	// Raw is the service-specific configuration string, e.g.
	// "key,region" for azure.
	Raw string
	// APIKey is the API key for services that need one.
	APIKey string
	// Model and BaseURL configure the LLM services. BaseURL also
	// overrides the azure endpoint.
	Model   string
	BaseURL string
	// Proxy is an HTTP proxy URL. Empty means HTTP_PROXY/HTTPS_PROXY.
	Proxy string
	// Timeout is the per-request timeout (default 120s).
	Timeout time.Duration
	// MaxRetries is the number of retries on network errors, 5xx and
	// 429 responses (default 3).
	MaxRetries int
	// Verbose enables request logging through OnLog.
	Verbose bool
	// In and Out are used by the manual service.
	In  io.Reader
	Out io.Writer
	// OnLog receives debug messages.
	OnLog func(format string, args ...any)
}

func (c *Config) debug(format string, args ...any) {
	if c.Verbose && c.OnLog != nil {
		c.OnLog(format, args...)
	}
}

func (c *Config) effectiveTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 120 * time.Second
}

func (c *Config) effectiveMaxRetries() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return 3
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

type entry struct {
	description string
	needsKey    bool
	factory     func() Provider
}

var registry = map[string]entry{
	Azure: {
		description: "Azure Translator v3 (config: key[,region])",
		needsKey:    true,
		factory:     func() Provider { return &azureService{} },
	},
	GoogleTranslate: {
		description: "Google Translate public endpoint (no key)",
		factory:     func() Provider { return &googleService{} },
	},
	OpenAI: {
		description: "OpenAI-compatible chat completions (OpenAI, Groq, Ollama, custom --base-url)",
		needsKey:    true,
		factory:     func() Provider { return newLLMService(OpenAI) },
	},
	Gemini: {
		description: "Google AI Gemini generateContent",
		needsKey:    true,
		factory:     func() Provider { return newLLMService(Gemini) },
	},
	Manual: {
		description: "interactive translation on the terminal",
		factory:     func() Provider { return &manualService{} },
	},
	DryRun: {
		description: "echo source strings, write nothing",
		factory:     func() Provider { return dryRunService{} },
	},
}

// New returns an uninitialized service by id.
func New(id string) (Provider, error) {
	e, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w %q (valid: %s)", ErrUnknownService, id, strings.Join(Names(), ", "))
	}
	return e.factory(), nil
}

// Names returns the registered service ids, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe returns a one-line description of a service.
func Describe(id string) string {
	return registry[id].description
}

// NeedsKey reports whether a service requires an API key.
func NeedsKey(id string) bool {
	return registry[id].needsKey
}

// ---------------------------------------------------------------------------
// Language codes
// ---------------------------------------------------------------------------

// parseLang validates a language code (pt_BR, pt-BR, zh-Hant...) and
// returns its BCP 47 form.
func parseLang(code string) (string, bool) {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if code == "" {
		return "", false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	return tag.String(), true
}

// baseLang returns the primary language subtag of code ("pt" for "pt-BR").
func baseLang(code string) string {
	code = strings.ToLower(strings.ReplaceAll(code, "_", "-"))
	if i := strings.Index(code, "-"); i > 0 {
		return code[:i]
	}
	return code
}
