package diag

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Fingerprint is the deduplication key of a diagnostic.
type Fingerprint string

// NormalizeMessage applies NFC normalisation and collapses whitespace runs,
// so that messages differing only in formatting share a fingerprint.
func NormalizeMessage(msg string) string {
	return strings.Join(strings.Fields(norm.NFC.String(msg)), " ")
}

// Fingerprint is derived from the check ID, the normalised message and the
// primary location. Configuration names do not participate.
func (d *Diagnostic) Fingerprint() Fingerprint {
	primary := d.Primary()
	h := sha256.New()
	write := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	write(d.ID)
	write(NormalizeMessage(d.Message))
	write(primary.File)
	write(strconv.FormatUint(uint64(primary.Line), 10))
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// Short returns an abbreviated form for display.
func (f Fingerprint) Short() string {
	if len(f) > 12 {
		return string(f[:12])
	}
	return string(f)
}
