package normalizer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"fjacquet/gl-posting/internal/dateutils"
	"fjacquet/gl-posting/internal/textutils"

	"github.com/shopspring/decimal"
)

// Fingerprint is the duplicate-detection key: a SHA-256 digest over the ISO date,
// the signed amount at two decimals, the normalized description and the check number.
// It depends only on those fields, never on batch position.
func Fingerprint(date time.Time, amount decimal.Decimal, description, checkNumber string) string {
	parts := []string{
		dateutils.ToISODate(date),
		amount.StringFixed(2),
		textutils.NormalizeDescription(description),
		strings.TrimSpace(checkNumber),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
