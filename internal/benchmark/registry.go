package benchmark

import (
	"fmt"
	"strings"
)

// DefaultTests is the SunSpider 0.9.1 suite in run order.
var DefaultTests = []string{
	"3d-cube", "3d-morph", "3d-raytrace",
	"access-binary-trees", "access-fannkuch", "access-nbody", "access-nsieve",
	"bitops-3bit-bits-in-byte", "bitops-bits-in-byte", "bitops-bitwise-and", "bitops-nsieve-bits",
	"controlflow-recursive", "crypto-aes", "crypto-md5", "crypto-sha1",
	"date-format-tofte", "date-format-xparb",
	"math-cordic", "math-partial-sums", "math-spectral-norm",
	"regexp-dna",
	"string-base64", "string-fasta", "string-tagcloud", "string-unpack-code", "string-validate-input",
}

// DefaultRepeatCount is the number of measured passes. One extra warm-up pass
// always runs first.
const DefaultRepeatCount = 10

const idSeparator = "-"

// ID names a workload as "<category>-<name>".
type ID struct {
	Category string
	Name     string
}

// ParseID splits s at its first separator. It reports false when s has no
// separator.
func ParseID(s string) (ID, bool) {
	category, name, ok := strings.Cut(s, idSeparator)
	if !ok {
		return ID{}, false
	}
	return ID{Category: category, Name: name}, true
}

// ParseIDs parses a test list, keeping its order.
func ParseIDs(list []string) ([]ID, error) {
	ids := make([]ID, 0, len(list))
	for _, s := range list {
		id, ok := ParseID(s)
		if !ok {
			return nil, fmt.Errorf("invalid test id %q: expected <category>%s<name>", s, idSeparator)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// String returns the identifier in "<category>-<name>" form.
func (id ID) String() string {
	return id.Category + idSeparator + id.Name
}

// Script returns the workload's script file name for the given extension.
func (id ID) Script(ext string) string {
	return id.String() + ext
}
