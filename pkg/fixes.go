package pkg

import (
	_ "embed"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed fixes.yaml
var defaultFixes []byte

// FixEntry overrides metadata of a scraped page
type FixEntry struct {
	ID string `yaml:"id,omitempty" json:"id,omitempty"` // output identifier replacing the scraped prefix
}

// FixRegistry maps normalized page slugs to their fix entries.
// It is keyed by slug because some service prefixes appear on several pages.
type FixRegistry map[string]FixEntry

// DefaultFixRegistry returns the fixes shipped with the generator
func DefaultFixRegistry() (FixRegistry, error) {
	return parseFixRegistry(defaultFixes)
}

// LoadFixRegistry returns the default fixes with the entries of the given YAML file
// laid over them. An empty path returns the defaults.
func LoadFixRegistry(filePath string) (FixRegistry, error) {
	registry, err := DefaultFixRegistry()
	if err != nil {
		return nil, err
	}
	if filePath == "" {
		return registry, nil
	}

	data, err := afero.ReadFile(inputFs, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixes file %s: %w", filePath, err)
	}
	extra, err := parseFixRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixes file %s: %w", filePath, err)
	}
	for slug, entry := range extra {
		registry[slug] = entry
	}
	return registry, nil
}

// Lookup returns the fix entry of a page slug, normalizing the slug first
func (r FixRegistry) Lookup(slug string) (FixEntry, bool) {
	entry, ok := r[NormalizeSlug(slug)]
	return entry, ok
}

func parseFixRegistry(data []byte) (FixRegistry, error) {
	raw := make(map[string]FixEntry)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	registry := make(FixRegistry, len(raw))
	for slug, entry := range raw {
		registry[NormalizeSlug(slug)] = entry
	}
	return registry, nil
}

// NormalizeSlug reduces a page reference to its slug:
// "./list_amazonec2.html" -> "amazonec2", "Amazon-EC2" -> "amazonec2"
func NormalizeSlug(ref string) string {
	slug := path.Base(strings.TrimSpace(ref))
	if i := strings.IndexAny(slug, "#?"); i >= 0 {
		slug = slug[:i]
	}
	slug = strings.TrimSuffix(slug, ".html")
	slug = strings.TrimPrefix(slug, "list_")
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, slug)
}
