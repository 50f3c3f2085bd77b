// Package textutils holds the description helpers shared by the parser, normalizer and matchers.
package textutils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	spaces       = regexp.MustCompile(`\s+`)
	longDigitRun = regexp.MustCompile(`\d{6,}`)
	checkNumber  = regexp.MustCompile(`(?i)\b(?:check|chk|ck)\s*(?:#|no\.?|number)?\s*(\d{3,})\b`)
)

// RefundTerms mark a transaction as money coming back from a vendor.
var RefundTerms = []string{"refund", "credit memo", "return", "reversal", "credited"}

// CollapseSpaces trims s and replaces whitespace runs with a single space.
func CollapseSpaces(s string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeDescription is the canonical description form used in fingerprints:
// upper case with collapsed whitespace.
func NormalizeDescription(s string) string {
	return strings.ToUpper(CollapseSpaces(s))
}

// NormalizeForMatch lower-cases s and turns punctuation other than '&' and '#' into spaces.
func NormalizeForMatch(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '&', r == '#':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return CollapseSpaces(b.String())
}

// HistoryKey strips reference numbers of six or more digits so recurring payments
// with changing references share one key.
func HistoryKey(s string) string {
	return CollapseSpaces(longDigitRun.ReplaceAllString(NormalizeForMatch(s), " "))
}

// Tokens splits a matched-form description into words.
func Tokens(s string) []string {
	return strings.Fields(NormalizeForMatch(s))
}

// ContainsPhrase reports whether phrase occurs in text on word boundaries, ignoring case.
// Boundaries are the ends of text or any character that is not a letter or digit, so
// "CHECK #" matches "CHECK #1042" while "FEE" does not match "COFFEE".
func ContainsPhrase(text, phrase string) bool {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return false
	}
	hay := strings.ToLower(text)
	for start := 0; start <= len(hay)-len(phrase); {
		idx := strings.Index(hay[start:], phrase)
		if idx < 0 {
			return false
		}
		pos := start + idx
		end := pos + len(phrase)
		if boundaryBefore(hay, pos, phrase) && boundaryAfter(hay, end, phrase) {
			return true
		}
		start = pos + 1
	}
	return false
}

func boundaryBefore(hay string, pos int, phrase string) bool {
	if pos == 0 || !isWordByte(phrase[0]) {
		return true
	}
	return !isWordByte(hay[pos-1])
}

func boundaryAfter(hay string, end int, phrase string) bool {
	if end == len(hay) || !isWordByte(phrase[len(phrase)-1]) {
		return true
	}
	return !isWordByte(hay[end])
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}

// ContainsAny returns the first phrase found in text, or "".
func ContainsAny(text string, phrases []string) string {
	for _, p := range phrases {
		if ContainsPhrase(text, p) {
			return p
		}
	}
	return ""
}

// IsRefund reports whether the description carries a refund-indicating term.
func IsRefund(description string) bool {
	return ContainsAny(description, RefundTerms) != ""
}

// ExtractCheckNumber returns the number after CHECK, CHK or CK markers.
func ExtractCheckNumber(description string) string {
	if m := checkNumber.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	return ""
}
