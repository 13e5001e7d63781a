package pkg

import (
	"go.uber.org/zap"
)

// Reporter routes non-fatal findings to the logger and the run diagnostics.
// A nil *Reporter discards everything.
type Reporter struct {
	Logger      *zap.Logger
	Diagnostics *Diagnostics
	Slug        string // page slug the findings belong to
	Service     string // scraped service prefix, once known
}

// NewReporter creates a reporter for a run
func NewReporter(logger *zap.Logger, diagnostics *Diagnostics) *Reporter {
	return &Reporter{Logger: logger, Diagnostics: diagnostics}
}

// ForPage returns a copy of the reporter scoped to a page slug
func (r *Reporter) ForPage(slug string) *Reporter {
	if r == nil {
		return nil
	}
	scoped := *r
	scoped.Slug = slug
	scoped.Service = ""
	return &scoped
}

// ForService returns a copy of the reporter scoped to a scraped service prefix
func (r *Reporter) ForService(service string) *Reporter {
	if r == nil {
		return nil
	}
	scoped := *r
	scoped.Service = service
	return &scoped
}

// Warn logs a recoverable finding and records it
func (r *Reporter) Warn(kind DiagnosticKind, subject, message string, fields ...zap.Field) {
	if r == nil {
		return
	}
	r.logger().Warn(message, append(r.fields(kind, subject), fields...)...)
	r.Diagnostics.Add(r.diagnostic(kind, subject, message))
}

// Error logs a finding that makes the page unusable and records it
func (r *Reporter) Error(kind DiagnosticKind, subject, message string, fields ...zap.Field) {
	if r == nil {
		return
	}
	r.logger().Error(message, append(r.fields(kind, subject), fields...)...)
	r.Diagnostics.Add(r.diagnostic(kind, subject, message))
}

func (r *Reporter) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Reporter) fields(kind DiagnosticKind, subject string) []zap.Field {
	fields := []zap.Field{zap.String("kind", string(kind))}
	if r.Slug != "" {
		fields = append(fields, zap.String("slug", r.Slug))
	}
	if r.Service != "" {
		fields = append(fields, zap.String("service", r.Service))
	}
	if subject != "" {
		fields = append(fields, zap.String("subject", subject))
	}
	return fields
}

func (r *Reporter) diagnostic(kind DiagnosticKind, subject, message string) Diagnostic {
	return Diagnostic{
		Kind:    kind,
		Slug:    r.Slug,
		Service: r.Service,
		Subject: subject,
		Message: message,
	}
}
