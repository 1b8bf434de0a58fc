package aggregate

import (
	"strings"

	"github.com/gofhir/fhircodes/terminology"
)

// familyPrefix marks keys of codes taken from family history entries.
const familyPrefix = "F-"

// Key builds the composite key for a code found in section.
//
//	<section>_[F-]<sct_|rxn_><code>
//
// Key returns "" for codes that are never counted: the sentinel and codes
// outside SNOMED and RxNorm.
func Key(section string, family bool, code terminology.Code) string {
	if !code.Known() {
		return ""
	}
	var b strings.Builder
	b.Grow(len(section) + 1 + len(familyPrefix) + 4 + len(code.Code))
	b.WriteString(section)
	b.WriteByte('_')
	if family {
		b.WriteString(familyPrefix)
	}
	b.WriteString(code.System.Tag())
	b.WriteString(code.Code)
	return b.String()
}
