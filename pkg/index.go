package pkg

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

var outputFs = afero.NewOsFs()
var inputFs = afero.NewOsFs() // saved pages, fix files and config files are read through it

// MainIndexFileName is the JSON summary written next to the generated package
const MainIndexFileName = "iam-index.json"

// ServiceIndex represents the complete output of a generation run
type ServiceIndex struct {
	Version     string          `json:"version"`     // generator version
	Services    []ServiceEntry  `json:"services"`    // sorted by ID
	Statistics  IndexStatistics `json:"statistics"`  // summary statistics
	Diagnostics []Diagnostic    `json:"diagnostics"` // non-fatal findings of the run
	Options     EmitOptions     `json:"-"`
	modules     map[string]*Module
	diagnostics *Diagnostics
}

// ServiceEntry summarizes one generated service
type ServiceEntry struct {
	ID            string `json:"id"`             // "ses-v2"
	ServicePrefix string `json:"service_prefix"` // "ses"
	TypeName      string `json:"type_name"`      // "SesV2"
	FileName      string `json:"file_name"`      // "ses-v2.go"
	Slug          string `json:"slug"`           // "amazonsimpleemailservicev2"
	Title         string `json:"title"`
	URL           string `json:"url"`
	Actions       int    `json:"actions"`
	ResourceTypes int    `json:"resource_types"`
	ConditionKeys int    `json:"condition_keys"`
}

// IndexStatistics summarizes a run
type IndexStatistics struct {
	ServiceCount       int                    `json:"service_count"`
	TotalActions       int                    `json:"total_actions"`
	TotalResourceTypes int                    `json:"total_resource_types"`
	TotalConditionKeys int                    `json:"total_condition_keys"`
	SkippedPages       int                    `json:"skipped_pages"`
	DiagnosticCounts   map[DiagnosticKind]int `json:"diagnostic_counts,omitempty"`
}

// IndexEntry is one line of the generated aggregate index
type IndexEntry struct {
	ID     string
	Prefix string
	Name   string
}

// NewServiceIndex builds the index of a run from the assembled modules.
// Entries are sorted by ID; a module whose ID, file name or generated
// declarations are already taken is reported and left out, so the generated
// package keeps compiling.
func NewServiceIndex(version string, modules []*Module, options EmitOptions, reporter *Reporter) *ServiceIndex {
	sorted := make([]*Module, len(modules))
	copy(sorted, modules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ID() != sorted[j].ID() {
			return sorted[i].ID() < sorted[j].ID()
		}
		return sorted[i].Slug < sorted[j].Slug
	})

	index := &ServiceIndex{
		Version:  version,
		Services: []ServiceEntry{},
		Options:  options.withDefaults(),
		modules:  make(map[string]*Module),
	}
	declared := make(map[string]string)
	for _, reserved := range reservedIdentifiers {
		declared[reserved] = IndexFileName
	}
	files := make(map[string]string)
	for _, module := range sorted {
		id := module.ID()
		name := module.TypeName()
		file := fileName(id)
		if previous, ok := index.modules[id]; ok {
			reporter.ForPage(module.Slug).Error(DiagnosticParseError, id,
				fmt.Sprintf("identifier %s already used by page %s, skipping", id, previous.Slug))
			continue
		}
		if clash, previous := declaredClash(declared, name); clash != "" {
			reporter.ForPage(module.Slug).Error(DiagnosticParseError, clash,
				fmt.Sprintf("declaration %s already generated for %s, skipping", clash, previous))
			continue
		}
		if previous, ok := files[file]; ok || file == IndexFileName {
			reporter.ForPage(module.Slug).Error(DiagnosticParseError, file,
				fmt.Sprintf("file name %s already used by %q, skipping", file, previous))
			continue
		}
		index.modules[id] = module
		for _, identifier := range generatedIdentifiers(name) {
			declared[identifier] = id
		}
		files[file] = id

		index.Services = append(index.Services, ServiceEntry{
			ID:            id,
			ServicePrefix: module.Name,
			TypeName:      name,
			FileName:      file,
			Slug:          module.Slug,
			Title:         module.Title,
			URL:           module.URL,
			Actions:       len(module.Actions),
			ResourceTypes: len(module.ResourceTypes),
			ConditionKeys: len(module.ConditionKeys),
		})
		index.Statistics.ServiceCount++
		index.Statistics.TotalActions += len(module.Actions)
		index.Statistics.TotalResourceTypes += len(module.ResourceTypes)
		index.Statistics.TotalConditionKeys += len(module.ConditionKeys)
	}
	return index
}

// reservedIdentifiers are declared by the generated index file
var reservedIdentifiers = []string{"Index", "IndexEntry", "LookupIndex"}

// generatedIdentifiers returns the package level names a service file declares.
// The unexported actions constant follows the type name and needs no check.
func generatedIdentifiers(typeName string) []string {
	return []string{typeName, "New" + typeName}
}

// declaredClash returns the first generated name of typeName that is already
// declared, and who declared it
func declaredClash(declared map[string]string, typeName string) (string, string) {
	for _, identifier := range generatedIdentifiers(typeName) {
		if previous, ok := declared[identifier]; ok {
			return identifier, previous
		}
	}
	return "", ""
}

// Module returns the assembled module behind an index entry
func (index *ServiceIndex) Module(id string) (*Module, bool) {
	module, ok := index.modules[id]
	return module, ok
}

// IndexEntries returns the entries of the generated aggregate index
func (index *ServiceIndex) IndexEntries() []IndexEntry {
	entries := make([]IndexEntry, 0, len(index.Services))
	for _, service := range index.Services {
		entries = append(entries, IndexEntry{ID: service.ID, Prefix: service.ServicePrefix, Name: service.TypeName})
	}
	return entries
}

// AttachDiagnostics links the run diagnostics to the index summary. Findings
// added later, while writing files, are included when the summary is written.
func (index *ServiceIndex) AttachDiagnostics(diagnostics *Diagnostics, skippedPages int) {
	index.diagnostics = diagnostics
	index.Statistics.SkippedPages = skippedPages
	index.refreshDiagnostics()
}

func (index *ServiceIndex) refreshDiagnostics() {
	index.Diagnostics = index.diagnostics.GetAll()
	if index.Diagnostics == nil {
		index.Diagnostics = []Diagnostic{}
	}
	index.Statistics.DiagnosticCounts = make(map[DiagnosticKind]int)
	for _, d := range index.Diagnostics {
		index.Statistics.DiagnosticCounts[d.Kind]++
	}
}

// WriteIndexFiles writes all generated files to the specified output directory:
// one Go file per service, the aggregate Go index and the JSON summary
func (index *ServiceIndex) WriteIndexFiles(outputDir string, reporter *Reporter, progressCallback ProgressCallback) error {
	if reporter == nil && index.diagnostics != nil {
		reporter = NewReporter(nil, index.diagnostics)
	}
	totalFiles := len(index.Services) + 2
	progressTracker := NewProgressTracker("writing", totalFiles, progressCallback)

	if err := index.CreateDirectoryStructure(outputDir); err != nil {
		return fmt.Errorf("failed to create directory structure: %w", err)
	}

	if err := index.WriteServiceFiles(outputDir, reporter, progressTracker); err != nil {
		return fmt.Errorf("failed to write service files: %w", err)
	}

	if err := index.WriteGoIndexFile(outputDir); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	progressTracker.UpdateProgress("index")

	if err := index.WriteMainIndexFile(outputDir); err != nil {
		return fmt.Errorf("failed to write main index file: %w", err)
	}
	progressTracker.UpdateProgress("main index file")

	progressTracker.Complete()
	return nil
}

// WriteServiceFiles writes one generated Go file per service
func (index *ServiceIndex) WriteServiceFiles(outputDir string, reporter *Reporter, progressTracker *ProgressTracker) error {
	var tasks []func() error

	for _, service := range index.Services {
		svc := service
		module := index.modules[svc.ID]

		tasks = append(tasks, func() error {
			source, err := EmitModule(module, index.Options, reporter)
			if err != nil {
				return fmt.Errorf("failed to generate %s: %w", svc.FileName, err)
			}
			if err := index.WriteFile(filepath.Join(outputDir, svc.FileName), source); err != nil {
				return err
			}
			if progressTracker != nil {
				progressTracker.UpdateProgress(svc.ID)
			}
			return nil
		})
	}

	return processCallbacks(tasks)
}

// WriteGoIndexFile writes the aggregate index of every generated builder
func (index *ServiceIndex) WriteGoIndexFile(outputDir string) error {
	source, err := EmitIndex(index.IndexEntries(), index.Options)
	if err != nil {
		return err
	}
	return index.WriteFile(filepath.Join(outputDir, IndexFileName), source)
}

// WriteMainIndexFile writes the iam-index.json summary
func (index *ServiceIndex) WriteMainIndexFile(outputDir string) error {
	index.refreshDiagnostics()
	return index.WriteJSONFile(filepath.Join(outputDir, MainIndexFileName), index)
}

// CreateDirectoryStructure creates the output directory
func (index *ServiceIndex) CreateDirectoryStructure(outputDir string) error {
	if err := outputFs.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", outputDir, err)
	}
	return nil
}

// WriteJSONFile writes data as JSON to the specified file path
func (index *ServiceIndex) WriteJSONFile(filePath string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data to JSON: %w", err)
	}
	return index.WriteFile(filePath, append(jsonData, '\n'))
}

// WriteFile writes content to the specified file path, creating parent directories
func (index *ServiceIndex) WriteFile(filePath string, content []byte) error {
	parentDir := filepath.Dir(filePath)
	if err := outputFs.MkdirAll(parentDir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory %s: %w", parentDir, err)
	}
	if err := afero.WriteFile(outputFs, filePath, content, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	return nil
}

// processCallbacks runs tasks one after the other and stops at the first error
func processCallbacks(tasks []func() error) error {
	for _, task := range tasks {
		if err := task(); err != nil {
			return err
		}
	}
	return nil
}
