package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var fallbackRegions = []string{
	"US",
	"GB",
	"AU",
}

// NormalizePhone converts a phone number to E.164. Numbers already carrying a
// country prefix parse region-free; bare national numbers are tried against
// the fallback regions in order. Returns "" when nothing parses.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	if strings.HasPrefix(phone, "+") {
		if parsed, err := phonenumbers.Parse(phone, ""); err == nil {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
		return ""
	}

	for _, region := range fallbackRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return ""
}

// DigitCount reports how many decimal digits the raw input carries, used by
// the ten-digit phone rule without forcing E.164 normalization first.
func DigitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
