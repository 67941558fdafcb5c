package service

import "context"

// dryRunService returns every string unchanged. The orchestrator never
// writes files or snapshots when it is selected.
type dryRunService struct{}

func (dryRunService) Name() string { return DryRun }

func (dryRunService) Initialize(context.Context, Config) error { return nil }

func (dryRunService) SupportsLanguage(string) bool { return true }

func (dryRunService) TranslateBatch(_ context.Context, batch []String, _, _ string) ([]Result, error) {
	results := make([]Result, len(batch))
	for i, s := range batch {
		results[i] = Result{Key: s.Key, Translated: s.Text}
	}
	return results, nil
}
