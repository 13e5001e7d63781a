package pkg

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Assemble classifies the tables of a page and applies the fix registry.
//
// The fix entry is looked up by the slug the page was fetched with, never by the
// scraped prefix. A page without service prefix yields ErrEmptyServicePrefix and
// must be skipped: every action string of the module would be malformed.
func Assemble(slug string, page *Page, fixes FixRegistry, reporter *Reporter) (*Module, error) {
	slug = NormalizeSlug(slug)
	reporter = reporter.ForPage(slug)

	if page.ServicePrefix == "" {
		reporter.Error(DiagnosticEmptyPrefix, page.URL, "page has no service prefix, skipping", zap.String("url", page.URL))
		return nil, &PageError{Slug: slug, Err: ErrEmptyServicePrefix}
	}
	reporter = reporter.ForService(page.ServicePrefix)

	module := newModule(slug, page)
	if entry, ok := fixes.Lookup(slug); ok {
		fix := entry
		module.Fix = &fix
	}

	module.Actions = ClassifyActionRows(page.ActionRows, reporter)
	for name, resourceType := range ClassifyResourceTypeRows(page.ResourceTypeRows, reporter) {
		resourceType.ARN = CheckARN(module.Name, name, resourceType.ARN, reporter)
		module.ResourceTypes[name] = resourceType
	}
	module.ConditionKeys = ClassifyConditionKeyRows(page.ConditionKeyRows, reporter)

	if len(module.Actions) == 0 {
		reporter.Warn(DiagnosticParseError, page.URL, "page defines no actions")
	}

	if reporter != nil && reporter.Logger != nil {
		reporter.Logger.Debug("assembled module",
			zap.String("slug", slug),
			zap.String("service_prefix", module.Name),
			zap.String("id", module.ID()),
			zap.Int("actions", len(module.Actions)),
			zap.Int("resource_types", len(module.ResourceTypes)),
			zap.Int("condition_keys", len(module.ConditionKeys)))
	}
	return module, nil
}

// AssemblePage parses and assembles a page in one step
func AssemblePage(slug, url string, page []byte, fixes FixRegistry, reporter *Reporter) (*Module, error) {
	parsed, err := ParsePage(bytes.NewReader(page), url)
	if err != nil {
		return nil, &PageError{Slug: NormalizeSlug(slug), Err: fmt.Errorf("parsing: %w", err)}
	}
	return Assemble(slug, parsed, fixes, reporter)
}

// AssembleFile parses and assembles a saved page of the input filesystem. The
// slug is taken from the file name.
func AssembleFile(filePath string, fixes FixRegistry, reporter *Reporter) (*Module, error) {
	data, err := afero.ReadFile(inputFs, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s: %w", filePath, err)
	}
	return AssemblePage(NormalizeSlug(filePath), filePath, data, fixes, reporter)
}
