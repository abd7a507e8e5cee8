// Package license validates device serial numbers and mints license key
// strings. Each GenerateKey call produces a fresh key even for the same
// serial; uniqueness is only as good as the birthday bound of the
// 8-character random component. The randomness source is injected so
// tests can pin it.
package license

import (
	"math/rand"
	"strings"

	"rslportal/pkg/contracts/domain"
)

// SerialPrefix is the required prefix of every device serial number.
const SerialPrefix = "SN-"

const (
	base36Alphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomKeyLength = 8
)

// ValidateSerial reports whether a device serial number is acceptable:
// the "SN-" prefix plus at least two more characters.
func ValidateSerial(serial string) bool {
	return strings.HasPrefix(serial, SerialPrefix) && len(serial) >= 5
}

// Issuer mints license keys from an injected randomness source.
type Issuer struct {
	rng *rand.Rand
}

// NewIssuer creates an issuer over the given source. Pass a seeded source
// in tests for deterministic keys.
func NewIssuer(src rand.Source) *Issuer {
	return &Issuer{rng: rand.New(src)}
}

// GenerateKey mints a key of the form
// "SW-XXXXXXXX-12345" or "WR-XXXXXXXX-12345": a type prefix, an 8-char
// uppercase base36 random block, then the serial with its "SN-" prefix
// stripped.
func (i *Issuer) GenerateKey(kind domain.LicenseType, serial string) string {
	var prefix string
	switch kind {
	case domain.LicenseTypeWarranty:
		prefix = "WR-"
	default:
		prefix = "SW-"
	}

	var b strings.Builder
	b.WriteString(prefix)
	for n := 0; n < randomKeyLength; n++ {
		b.WriteByte(base36Alphabet[i.rng.Intn(len(base36Alphabet))])
	}
	b.WriteByte('-')
	if len(serial) > 3 {
		b.WriteString(serial[3:])
	}
	return b.String()
}

// NeedsSoftwareLicense reports whether a catalog item id calls for a
// software license on each station. Item ids follow a prefix convention:
// "sw*" and "b*" carry software, "wr*" and "b*" carry warranty.
func NeedsSoftwareLicense(itemID string) bool {
	return strings.HasPrefix(itemID, "sw") || strings.HasPrefix(itemID, "b")
}

// NeedsWarrantyLicense reports whether a catalog item id calls for a
// warranty license on each station.
func NeedsWarrantyLicense(itemID string) bool {
	return strings.HasPrefix(itemID, "wr") || strings.HasPrefix(itemID, "b")
}
