package pkg

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Generator turns service authorization pages into an index of generated builders
type Generator struct {
	Fetcher  Fetcher
	Fixes    FixRegistry
	Logger   *zap.Logger
	Version  string
	Options  EmitOptions
	Progress ProgressCallback
}

// Run fetches and assembles the pages of the given slugs one after the other.
//
// A fetch failure aborts the run and is returned as is. Any other problem with a
// page is logged, recorded in the diagnostics and the page is skipped. The
// diagnostics are returned in every case.
func (g *Generator) Run(ctx context.Context, slugs []string) (*ServiceIndex, *Diagnostics, error) {
	logger := g.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	diagnostics := NewDiagnostics()
	reporter := NewReporter(logger, diagnostics)

	if g.Fetcher == nil {
		return nil, diagnostics, errors.New("no fetcher configured")
	}
	fixes := g.Fixes
	if fixes == nil {
		var err error
		if fixes, err = DefaultFixRegistry(); err != nil {
			return nil, diagnostics, fmt.Errorf("failed to load default fixes: %w", err)
		}
	}

	slugs = uniqueSlugs(slugs)
	progressTracker := NewProgressTracker("fetching", len(slugs), g.Progress)

	var modules []*Module
	skipped := 0
	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			return nil, diagnostics, err
		}

		module, err := g.processPage(ctx, slug, fixes, reporter)
		if err != nil {
			var fetchErr *FetchError
			if errors.As(err, &fetchErr) {
				logger.Error("failed to fetch page, aborting", zap.String("slug", slug), zap.Error(err))
				return nil, diagnostics, err
			}
			if !errors.Is(err, ErrEmptyServicePrefix) {
				reporter.ForPage(slug).Error(DiagnosticParseError, slug, "failed to process page, skipping", zap.Error(err))
			}
			skipped++
		} else {
			modules = append(modules, module)
		}
		progressTracker.UpdateProgress(slug)
	}
	progressTracker.Complete()

	index := NewServiceIndex(g.Version, modules, g.Options, reporter)
	index.AttachDiagnostics(diagnostics, skipped)

	logger.Info("generation finished",
		zap.Int("pages", len(slugs)),
		zap.Int("services", index.Statistics.ServiceCount),
		zap.Int("actions", index.Statistics.TotalActions),
		zap.Int("skipped", skipped),
		zap.Int("diagnostics", diagnostics.Len()))
	return index, diagnostics, nil
}

func (g *Generator) processPage(ctx context.Context, slug string, fixes FixRegistry, reporter *Reporter) (*Module, error) {
	document := PageDocument(slug)
	url := g.Fetcher.URL(document)

	body, err := g.Fetcher.Fetch(ctx, document)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, asFetchError(err, document, url)
	}
	return AssemblePage(slug, url, data, fixes, reporter)
}

// uniqueSlugs normalizes slugs and drops empty and repeated ones, keeping their order
func uniqueSlugs(slugs []string) []string {
	seen := make(map[string]bool, len(slugs))
	unique := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		slug = NormalizeSlug(slug)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		unique = append(unique, slug)
	}
	return unique
}
