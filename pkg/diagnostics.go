package pkg

// DiagnosticKind represents the type of anomaly found while scraping
type DiagnosticKind string

const (
	DiagnosticEmptyPrefix   DiagnosticKind = "empty_prefix"
	DiagnosticUnexpectedRow DiagnosticKind = "unexpected_row"
	DiagnosticOrphanRow     DiagnosticKind = "orphan_row"
	DiagnosticInvalidARN    DiagnosticKind = "invalid_arn"
	DiagnosticParseError    DiagnosticKind = "parse_error"
)

// Diagnostic is a single non-fatal finding, kept for the run summary
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Slug    string         `json:"slug,omitempty"`    // page slug, "amazonec2"
	Service string         `json:"service,omitempty"` // scraped prefix, "ec2"
	Subject string         `json:"subject,omitempty"` // resource type, row text, ...
	Message string         `json:"message"`
}

// Diagnostics collects findings in the order they were reported.
// A nil *Diagnostics discards everything.
type Diagnostics struct {
	items  []Diagnostic
	counts map[DiagnosticKind]int
}

// NewDiagnostics creates an empty collection
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		items:  make([]Diagnostic, 0),
		counts: make(map[DiagnosticKind]int),
	}
}

// Add records a diagnostic
func (d *Diagnostics) Add(diagnostic Diagnostic) {
	if d == nil {
		return
	}
	if d.counts == nil {
		d.counts = make(map[DiagnosticKind]int)
	}
	d.items = append(d.items, diagnostic)
	d.counts[diagnostic.Kind]++
}

// GetAll returns every recorded diagnostic
func (d *Diagnostics) GetAll() []Diagnostic {
	if d == nil {
		return nil
	}
	all := make([]Diagnostic, len(d.items))
	copy(all, d.items)
	return all
}

// Count returns how many diagnostics of the given kind were recorded
func (d *Diagnostics) Count(kind DiagnosticKind) int {
	if d == nil {
		return 0
	}
	return d.counts[kind]
}

// Len returns the total number of diagnostics
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.items)
}
