package security

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRe      = regexp.MustCompile(`(?i)email`)
	phoneRe      = regexp.MustCompile(`(?i)phone`)
	nameRe       = regexp.MustCompile(`(?i)fullname|full_name|guestname`)
	addressRe    = regexp.MustCompile(`(?i)address`)
	creditCardRe = regexp.MustCompile(`(?i)credit_card|card_number|cardnumber`)
	fullMaskRe   = regexp.MustCompile(`(?i)password|secret|token|api_key|cvv|bvn`)
)

// DataMasker masks guest details before they are logged or audited.
type DataMasker struct {
	enabled bool
}

func NewDataMasker(enabled bool) *DataMasker {
	return &DataMasker{enabled: enabled}
}

// MaskFields returns a copy of fields with sensitive keys masked, descending
// into nested objects (tool arguments such as guestDetails).
func (m *DataMasker) MaskFields(fields map[string]any) map[string]any {
	if m == nil || !m.enabled || fields == nil {
		return fields
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case map[string]any:
			out[k] = m.MaskFields(val)
		case nil:
			out[k] = nil
		default:
			if isSensitive(k) {
				out[k] = maskValue(k, fmt.Sprintf("%v", val))
			} else {
				out[k] = val
			}
		}
	}
	return out
}

// Email masks an address unless masking is disabled. A nil masker masks nothing.
func (m *DataMasker) Email(email string) string {
	if m == nil || !m.enabled {
		return email
	}
	return maskEmail(email)
}

func (m *DataMasker) Phone(phone string) string {
	if m == nil || !m.enabled {
		return phone
	}
	return maskPhone(phone)
}

func isSensitive(key string) bool {
	return emailRe.MatchString(key) || phoneRe.MatchString(key) || nameRe.MatchString(key) ||
		addressRe.MatchString(key) || creditCardRe.MatchString(key) || fullMaskRe.MatchString(key)
}

func maskValue(key, val string) string {
	switch {
	case emailRe.MatchString(key):
		return maskEmail(val)
	case phoneRe.MatchString(key):
		return maskPhone(val)
	case nameRe.MatchString(key):
		return maskName(val)
	case creditCardRe.MatchString(key):
		return maskCreditCard(val)
	default:
		return "***"
	}
}

// maskEmail: "ada.obi@example.com" → "ad***@***.com"
func maskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***"
	}
	local, domain := parts[0], parts[1]

	visible := 2
	if len(local) < visible {
		visible = len(local)
	}
	domainParts := strings.Split(domain, ".")
	ext := domainParts[len(domainParts)-1]
	return fmt.Sprintf("%s***@***.%s", local[:visible], ext)
}

// maskPhone: any phone → "***-***-6789" (show last 4)
func maskPhone(phone string) string {
	digits := digitsOf(phone)
	if len(digits) < 4 {
		return "***-***-****"
	}
	return fmt.Sprintf("***-***-%s", digits[len(digits)-4:])
}

// maskName: "Ada Obi" → "A*** O***"
func maskName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "***"
	}
	for i, f := range fields {
		fields[i] = string([]rune(f)[0]) + "***"
	}
	return strings.Join(fields, " ")
}

// maskCreditCard: "4111111111111111" → "****-****-****-1111"
func maskCreditCard(cc string) string {
	digits := digitsOf(cc)
	if len(digits) < 4 {
		return "****-****-****-****"
	}
	return fmt.Sprintf("****-****-****-%s", digits[len(digits)-4:])
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
