package translate

import (
	"fmt"

	"github.com/minios-linux/locsync/placeholder"
)

// ConfigurationError reports a problem that must stop the run before any
// file is written: unknown service or matcher, unsupported source
// language, invalid source keys.
type ConfigurationError struct {
	Msg string
	Err error
}

// Configf returns a ConfigurationError with a formatted message.
func Configf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigErr wraps err as a ConfigurationError with a context message.
func ConfigErr(msg string, err error) error {
	return &ConfigurationError{Msg: msg, Err: err}
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProviderError reports a failed service call. It aborts the pass of one
// file and one language; other passes continue.
type ProviderError struct {
	File     string
	Language string
	// Batch is the 0-based index of the failed batch.
	Batch int
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s [%s] batch %d: %v", e.File, e.Language, e.Batch+1, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// PlaceholderWarning reports placeholders that did not survive a
// translation intact. It is logged and never aborts a pass.
type PlaceholderWarning struct {
	File     string
	Language string
	Key      string
	Report   placeholder.Report
}

func (w *PlaceholderWarning) Error() string {
	return fmt.Sprintf("%s [%s] %q: placeholder mismatch: %s", w.File, w.Language, w.Key, w.Report)
}
