package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// manualService asks the user for each translation on the terminal.
// Prompts are serialized so parallel batches do not interleave.
type manualService struct {
	mu     sync.Mutex
	reader *bufio.Reader
	out    io.Writer
}

func (m *manualService) Name() string { return Manual }

func (m *manualService) Initialize(_ context.Context, cfg Config) error {
	in := cfg.In
	if in == nil {
		in = os.Stdin
	}
	m.out = cfg.Out
	if m.out == nil {
		m.out = os.Stdout
	}
	m.reader = bufio.NewReader(in)
	return nil
}

// SupportsLanguage accepts any code: the user is the translator.
func (m *manualService) SupportsLanguage(string) bool { return true }

func (m *manualService) TranslateBatch(ctx context.Context, batch []String, from, to string) ([]Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]Result, 0, len(batch))
	for _, s := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.Key != s.Original {
			fmt.Fprintf(m.out, "[%s -> %s] (%s) %q: ", from, to, s.Key, s.Original)
		} else {
			fmt.Fprintf(m.out, "[%s -> %s] %q: ", from, to, s.Original)
		}

		line, err := m.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, fmt.Errorf("reading translation for %q: %w", s.Key, err)
		}
		// Placeholders are typed as-is; Restore treats them as preserved.
		results = append(results, Result{Key: s.Key, Translated: strings.TrimRight(line, "\r\n")})
	}
	return results, nil
}
