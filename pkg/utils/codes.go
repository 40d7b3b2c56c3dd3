package utils

import (
	"strings"

	"github.com/google/uuid"
)

// Slugify lowercases s and keeps ASCII letters and digits, joining the runs
// between them with single hyphens. Other characters are dropped.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingHyphen = true
		}
	}
	return b.String()
}

// shortCode is eight upper case hex digits from a random uuid
func shortCode() string {
	return strings.ToUpper(GenerateToken()[:8])
}

// GenerateInvoiceNo returns prefix followed by a short random code. The
// store's invoice prefix setting is passed in; empty means "INV-".
func GenerateInvoiceNo(prefix string) string {
	if prefix == "" {
		prefix = "INV-"
	}
	return prefix + shortCode()
}

// GenerateProductCode is used when an imported or created product has no code
func GenerateProductCode() string {
	return "PROD-" + shortCode()
}

// GenerateToken returns 32 random hex characters
func GenerateToken() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")
}
