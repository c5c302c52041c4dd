package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/minios-linux/xlfsync/translate"
)

// Load runs Discover, Ingest, ApplyOverrides and DetectGaps without writing
// anything.
func Load(opts Options) (*Session, error) {
	s, err := Discover(opts)
	if err != nil {
		return nil, err
	}
	Ingest(s)
	ApplyOverrides(s)
	DetectGaps(s)
	return s, nil
}

// Run executes the full pipeline. An authentication failure during
// translation does not prevent persistence; it is returned afterwards.
// Cancellation stops the run before the next language is written.
func Run(ctx context.Context, opts Options, tr Translator) (*Session, Result, error) {
	s, err := Load(opts)
	if err != nil {
		return nil, Result{}, err
	}
	if opts.DryRun {
		return s, Result{}, nil
	}

	trErr := Translate(ctx, s, tr)
	if trErr != nil && !errors.Is(trErr, translate.ErrAuth) {
		return s, Result{}, trErr
	}
	if opts.Report {
		if _, err := ExportReport(s); err != nil {
			s.opts.logError("writing report: %v", err)
		}
	}

	res, err := Persist(ctx, s)
	if err != nil {
		return s, res, err
	}
	if trErr != nil {
		return s, res, fmt.Errorf("translation aborted: %w", trErr)
	}
	return s, res, nil
}
