package learning

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

// certificateCodeBytes gives 24 base32 characters. Of the 120 bits, the
// uuid version/variant fix 6, leaving 114 random bits.
const certificateCodeBytes = 15

var certificateEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewCertificateCode returns a code like "K3QH-7ZTA-M2XP-RC4N-W6YB-JD5E".
func NewCertificateCode() string {
	id := uuid.New()
	raw := certificateEncoding.EncodeToString(id[:certificateCodeBytes])
	var b strings.Builder
	for i := 0; i < len(raw); i += 4 {
		if i > 0 {
			b.WriteByte('-')
		}
		end := i + 4
		if end > len(raw) {
			end = len(raw)
		}
		b.WriteString(raw[i:end])
	}
	return b.String()
}

// NormalizeCertificateCode accepts user-typed codes: case, surrounding space
// and missing dashes are forgiven.
func NormalizeCertificateCode(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	c = strings.ReplaceAll(c, " ", "")
	if !strings.Contains(c, "-") && len(c) > 4 {
		var b strings.Builder
		for i := 0; i < len(c); i += 4 {
			if i > 0 {
				b.WriteByte('-')
			}
			end := i + 4
			if end > len(c) {
				end = len(c)
			}
			b.WriteString(c[i:end])
		}
		c = b.String()
	}
	return c
}
