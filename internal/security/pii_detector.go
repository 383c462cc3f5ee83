package security

import (
	"regexp"
	"strings"
)

// cardNumberRe matches 13-19 digit card numbers, optionally grouped.
var cardNumberRe = regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`)

// PIIDetector flags payment secrets and credentials in guest messages. Names,
// e-mail addresses and phone numbers are expected in booking chats and are
// not flagged.
type PIIDetector struct {
	keywords []*regexp.Regexp
	names    []string
}

func NewPIIDetector(keywords []string) *PIIDetector {
	d := &PIIDetector{}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		d.keywords = append(d.keywords, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(k)+`\b`))
		d.names = append(d.names, k)
	}
	return d
}

// Detect returns true and the matched keyword if PII is found in text
func (d *PIIDetector) Detect(text string) (bool, string) {
	for i, re := range d.keywords {
		if re.MatchString(text) {
			return true, d.names[i]
		}
	}
	for _, m := range cardNumberRe.FindAllString(text, -1) {
		if luhnValid(m) {
			return true, "card number"
		}
	}
	return false, ""
}

func luhnValid(s string) bool {
	var digits []int
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits = append(digits, int(c-'0'))
		}
	}
	if len(digits) < 13 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
