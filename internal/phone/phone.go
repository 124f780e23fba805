// Package phone validates and formats Ukrainian phone numbers supplied
// either as shared Telegram contacts or as free text.
package phone

import (
	"fmt"
	"strings"
)

// mobilePrefixes lists operator codes accepted for bare 10-digit input.
var mobilePrefixes = []string{
	"050", "066", "095", "099",
	"063", "073", "093",
	"067", "068", "096", "097", "098",
}

// Validate normalizes raw input to the canonical +380XXXXXXXXX form.
// It returns the canonical number and whether the input was acceptable.
//
// Accepted shapes:
//
//	+380XXXXXXXXX            full international form
//	380XXXXXXXXX             international without the plus
//	0XXXXXXXXX               national form with leading zero
//	XXXXXXXXXX               bare 10 digits starting with a known operator code
func Validate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	cleaned := digits(trimmed)

	switch {
	case strings.HasPrefix(cleaned, "380") && len(cleaned) == 12:
		// Covers "+380..." and bare "380..." input, punctuated or not;
		// the canonical form is the digit string behind a leading plus.
		return "+" + cleaned, true
	case strings.HasPrefix(cleaned, "0") && len(cleaned) == 10:
		return "+38" + cleaned, true
	case len(cleaned) == 10 && hasMobilePrefix(cleaned):
		return "+38" + cleaned, true
	}
	return "", false
}

// Format renders a canonical +380XXXXXXXXX number for display as
// "+38 (0XX) XXX-XX-XX". Input that does not validate is returned as-is.
func Format(number string) string {
	canonical, ok := Validate(number)
	if !ok {
		return number
	}
	d := digits(canonical)
	if len(d) != 12 {
		return number
	}
	// d = 38 0XX XXXXXXX
	return fmt.Sprintf("+38 (%s) %s-%s-%s", d[2:5], d[5:8], d[8:10], d[10:12])
}

func hasMobilePrefix(d string) bool {
	for _, p := range mobilePrefixes {
		if strings.HasPrefix(d, p) {
			return true
		}
	}
	return false
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
