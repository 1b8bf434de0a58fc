package terminology

import (
	"strings"

	"github.com/gofhir/fhircodes/tree"
)

// Code system URIs recognised by the extractor.
const (
	SNOMEDURI = "http://snomed.info/sct"
	RxNormURI = "http://www.nlm.nih.gov/research/umls/rxnorm"
)

// UnknownCode is the sentinel for a concept without a usable coding.
const UnknownCode = "0"

// System identifies the terminology a code belongs to.
type System int

const (
	SystemOther System = iota
	SystemSNOMED
	SystemRxNorm
)

// SystemFromURI maps a coding.system URI to a System.
func SystemFromURI(uri string) System {
	switch uri {
	case SNOMEDURI:
		return SystemSNOMED
	case RxNormURI:
		return SystemRxNorm
	default:
		return SystemOther
	}
}

// String returns the system name.
func (s System) String() string {
	switch s {
	case SystemSNOMED:
		return "SNOMED"
	case SystemRxNorm:
		return "RXNORM"
	default:
		return "OTHER"
	}
}

// URI returns the canonical system URI, or "" for SystemOther.
func (s System) URI() string {
	switch s {
	case SystemSNOMED:
		return SNOMEDURI
	case SystemRxNorm:
		return RxNormURI
	default:
		return ""
	}
}

// Tag returns the composite key prefix for the system ("sct_" or "rxn_"),
// or "" for SystemOther.
func (s System) Tag() string {
	switch s {
	case SystemSNOMED:
		return "sct_"
	case SystemRxNorm:
		return "rxn_"
	default:
		return ""
	}
}

// Code is one coded concept.
type Code struct {
	Code   string
	Text   string
	System System
}

// Unknown returns the sentinel code carrying text.
func Unknown(text string) Code {
	return Code{Code: UnknownCode, Text: text, System: SystemOther}
}

// IsUnknown reports whether c is the sentinel.
func (c Code) IsUnknown() bool {
	return c.Code == UnknownCode
}

// Known reports whether c can be counted: a real code in SNOMED or RxNorm.
func (c Code) Known() bool {
	return !c.IsUnknown() && c.System != SystemOther
}

// String returns a compact representation for logs.
func (c Code) String() string {
	return "(" + c.Code + ", \"" + c.Text + "\", " + c.System.String() + ")"
}

// Normalize converts a {coding: [{code, system}], text} object into a Code.
// The first coding is used. A missing or malformed coding, code or system
// yields the sentinel; Normalize never fails.
func Normalize(concept *tree.Node) Code {
	text := normalizeText(concept)

	coding, ok := concept.Get("coding")
	if !ok {
		return Unknown(text)
	}
	first, ok := coding.Index(0)
	if !ok {
		return Unknown(text)
	}
	code, ok := first.Get("code")
	if !ok || code.Kind() != tree.KindScalar {
		return Unknown(text)
	}
	system, ok := first.GetString("system")
	if !ok {
		return Unknown(text)
	}

	return Code{
		Code:   code.Text(),
		Text:   text,
		System: SystemFromURI(system),
	}
}

// normalizeText returns concept.text, joining multi-line text onto one line.
func normalizeText(concept *tree.Node) string {
	text, ok := concept.GetString("text")
	if !ok {
		return ""
	}
	if strings.ContainsAny(text, "\n\r") {
		return strings.Join(strings.Fields(text), " ")
	}
	return text
}
