package service

import (
	"context"
	"fmt"

	"github.com/bregydoc/gtranslate"
)

// googleService uses the public Google Translate endpoint, one request
// per string.
type googleService struct {
	translate func(text, from, to string) (string, error)
}

func (g *googleService) Name() string { return GoogleTranslate }

func (g *googleService) Initialize(_ context.Context, _ Config) error {
	if g.translate == nil {
		g.translate = func(text, from, to string) (string, error) {
			return gtranslate.TranslateWithParams(text, gtranslate.TranslationParams{
				From: from,
				To:   to,
			})
		}
	}
	return nil
}

func (g *googleService) SupportsLanguage(code string) bool {
	_, ok := parseLang(code)
	return ok
}

func (g *googleService) TranslateBatch(ctx context.Context, batch []String, from, to string) ([]Result, error) {
	results := make([]Result, 0, len(batch))
	for _, s := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		translated, err := g.translate(s.Text, from, to)
		if err != nil {
			return nil, fmt.Errorf("google-translate %q: %w", s.Key, err)
		}
		results = append(results, Result{Key: s.Key, Translated: translated})
	}
	return results, nil
}
