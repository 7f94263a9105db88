// Package diag defines the build-time diagnostic taxonomy and a collector
// used throughout the classification pipeline. One bad member never blocks
// generation for the rest of its type: the offending descriptor is dropped,
// a diagnostic is recorded, and synthesis continues.
package diag

import "fmt"

// Severity ranks a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Code identifies the diagnostic category.
type Code string

const (
	// CodeStructuralViolation: wrong return shape for the operation kind,
	// Execute outside a static container, Event missing its cancellation
	// parameter, or more than one target-role parameter.
	CodeStructuralViolation Code = "structural_violation"
	// CodeAmbiguousConfiguration: duplicate save-group member of one kind or
	// duplicate default Save. First-declared wins; the diagnostic names the
	// discarded member.
	CodeAmbiguousConfiguration Code = "ambiguous_configuration"
	// CodeUnrecognizedMemberIgnored: no operation marker present. Silent by
	// default, surfaced only in verbose mode.
	CodeUnrecognizedMemberIgnored Code = "unrecognized_member_ignored"
	// CodeSchemaOptOut: the type cannot be round-tripped by the positional
	// decoder (construction requires service dependencies), so converter
	// generation was skipped.
	CodeSchemaOptOut Code = "schema_opt_out"
)

// Diagnostic is one reported condition, bound to a type and optionally a member.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	TypeName string   `json:"type_name"`
	Member   string   `json:"member,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	where := d.TypeName
	if d.Member != "" {
		where += "." + d.Member
	}
	return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Code, where, d.Message)
}

// Collector accumulates diagnostics for one type build. It is not safe for
// concurrent use; the pipeline is single-threaded per type.
type Collector struct {
	diags []Diagnostic
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records a diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// Errorf records a SeverityError diagnostic.
func (c *Collector) Errorf(code Code, typeName, member, format string, args ...any) {
	c.Add(Diagnostic{
		Severity: SeverityError,
		Code:     code,
		TypeName: typeName,
		Member:   member,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf records a SeverityWarning diagnostic.
func (c *Collector) Warnf(code Code, typeName, member, format string, args ...any) {
	c.Add(Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		TypeName: typeName,
		Member:   member,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Infof records a SeverityInfo diagnostic.
func (c *Collector) Infof(code Code, typeName, member, format string, args ...any) {
	c.Add(Diagnostic{
		Severity: SeverityInfo,
		Code:     code,
		TypeName: typeName,
		Member:   member,
		Message:  fmt.Sprintf(format, args...),
	})
}

// All returns every collected diagnostic in report order.
func (c *Collector) All() []Diagnostic {
	return c.diags
}

// Count returns the number of diagnostics at the given severity.
func (c *Collector) Count(sev Severity) int {
	n := 0
	for _, d := range c.diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}
