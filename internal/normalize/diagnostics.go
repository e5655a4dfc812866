package normalize

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is returned only for structurally impossible input, such as
// an executionMethods field that is not a list. Everything else is recoverable.
var ErrMalformedRecord = errors.New("malformed record")

type DiagnosticKind string

const (
	// DiagShapeAnomaly: a field arrived in an unexpected but recoverable shape.
	DiagShapeAnomaly DiagnosticKind = "shape_anomaly"
	// DiagUnknownEnum: an enumerated value was not recognized and dropped.
	DiagUnknownEnum DiagnosticKind = "unknown_enum"
	// DiagMissingIdentifier: a grouping identifier is missing.
	DiagMissingIdentifier DiagnosticKind = "missing_identifier"
	// DiagWorkflowOrder: a later workflow flag is set while an earlier one is not.
	DiagWorkflowOrder DiagnosticKind = "workflow_order"
)

// Diagnostic records one data-quality issue found while normalizing.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Field   string         `json:"field"`
	Value   interface{}    `json:"value,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Kind, d.Field, d.Message)
}

// collector accumulates diagnostics under a field path prefix.
type collector struct {
	prefix string
	diags  *[]Diagnostic
}

func newCollector() collector {
	return collector{diags: &[]Diagnostic{}}
}

func (c collector) at(field string) collector {
	if c.prefix == "" {
		return collector{prefix: field, diags: c.diags}
	}
	return collector{prefix: c.prefix + "." + field, diags: c.diags}
}

func (c collector) index(i int) collector {
	return collector{prefix: fmt.Sprintf("%s[%d]", c.prefix, i), diags: c.diags}
}

func (c collector) add(kind DiagnosticKind, field string, value interface{}, format string, args ...interface{}) {
	path := field
	switch {
	case c.prefix == "":
	case field == "":
		path = c.prefix
	default:
		path = c.prefix + "." + field
	}
	*c.diags = append(*c.diags, Diagnostic{
		Kind:    kind,
		Field:   path,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	})
}
