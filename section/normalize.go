package section

import (
	"fmt"
	"regexp"
)

// Normalizer maps raw section codes onto the accepted code space.
type Normalizer struct {
	pattern  *regexp.Regexp
	fallback string
}

// NewNormalizer compiles pattern, which a code must match in full to be kept.
func NewNormalizer(pattern, fallback string) (*Normalizer, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("section pattern %q: %w", pattern, err)
	}
	return &Normalizer{pattern: re, fallback: fallback}, nil
}

// Normalize returns raw when it matches the pattern, the fallback otherwise.
func (n *Normalizer) Normalize(raw string) string {
	if raw != "" && n.pattern.MatchString(raw) {
		return raw
	}
	return n.fallback
}

// Fallback returns the fallback section code.
func (n *Normalizer) Fallback() string {
	return n.fallback
}
