package fhircodes

import (
	"errors"
	"strconv"
	"strings"
)

// ErrDocument marks a failure that aborts a single document. It is always
// wrapped with the underlying cause.
var ErrDocument = errors.New("document failed")

// IssueSeverity represents how far a problem reaches.
type IssueSeverity string

const (
	// SeverityFatal aborts the document.
	SeverityFatal IssueSeverity = "fatal"
	// SeverityWarning skips one entry or reference.
	SeverityWarning IssueSeverity = "warning"
	// SeverityInformation is recorded but changes nothing.
	SeverityInformation IssueSeverity = "information"
)

// IssueKind classifies a processing problem.
type IssueKind string

const (
	// IssueStructuralAbsence: an expected field or section is missing on one entry.
	IssueStructuralAbsence IssueKind = "structural-absence"
	// IssueUnrecognizedResourceKind: the resourceType has no dispatch row.
	IssueUnrecognizedResourceKind IssueKind = "unrecognized-resource-kind"
	// IssueMalformedCode: a coding or its system is absent; the code degrades to the sentinel.
	IssueMalformedCode IssueKind = "malformed-code"
	// IssueWholeDocumentFailure: the bundle could not be read as a tree.
	IssueWholeDocumentFailure IssueKind = "whole-document-failure"
)

// Severity returns the default severity for the kind.
func (k IssueKind) Severity() IssueSeverity {
	switch k {
	case IssueWholeDocumentFailure:
		return SeverityFatal
	case IssueMalformedCode:
		return SeverityInformation
	default:
		return SeverityWarning
	}
}

// Issue describes one recoverable (or document-fatal) problem with enough
// context to trace the source record.
type Issue struct {
	Kind     IssueKind     `json:"kind"`
	Severity IssueSeverity `json:"severity"`

	// Document is the identifier of the bundle being processed
	Document string `json:"document,omitempty"`

	// EntryIndex is the position in Bundle.entry, -1 for bundle-level issues
	EntryIndex int `json:"entryIndex"`

	EntryID      string `json:"entryId,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`

	// Diagnostics contains human-readable details about the issue
	Diagnostics string `json:"diagnostics,omitempty"`
}

// String returns a human-readable representation of the issue.
func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(string(i.Kind))
	b.WriteString(": ")
	b.WriteString(i.Diagnostics)
	if i.Document != "" {
		b.WriteString(" [document=")
		b.WriteString(i.Document)
		if i.EntryIndex >= 0 {
			b.WriteString(" entry=")
			b.WriteString(strconv.Itoa(i.EntryIndex))
		}
		b.WriteString("]")
	}
	return b.String()
}

// IssueBuilder provides a fluent API for building issues.
type IssueBuilder struct {
	issue Issue
}

// NewIssue creates a new IssueBuilder with the kind's default severity.
func NewIssue(kind IssueKind) *IssueBuilder {
	return &IssueBuilder{
		issue: Issue{
			Kind:       kind,
			Severity:   kind.Severity(),
			EntryIndex: -1,
		},
	}
}

// Diagnostics sets the diagnostic message.
func (b *IssueBuilder) Diagnostics(msg string) *IssueBuilder {
	b.issue.Diagnostics = msg
	return b
}

// Document sets the document identifier.
func (b *IssueBuilder) Document(id string) *IssueBuilder {
	b.issue.Document = id
	return b
}

// Entry sets the entry position, resource id and resource type.
func (b *IssueBuilder) Entry(index int, id, resourceType string) *IssueBuilder {
	b.issue.EntryIndex = index
	b.issue.EntryID = id
	b.issue.ResourceType = resourceType
	return b
}

// Build returns the constructed issue.
func (b *IssueBuilder) Build() Issue {
	return b.issue
}
