package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxInputLength caps sanitised visitor input, in characters.
const MaxInputLength = 1000

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneStrip   = regexp.MustCompile(`[\s\-\(\)]`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\+?91[6789]\d{9}$`),
		regexp.MustCompile(`^\+?1[2-9]\d{9}$`),
		regexp.MustCompile(`^\+?[1-9]\d{10,14}$`),
		regexp.MustCompile(`^[6789]\d{9}$`),
	}
)

// personalDomains are free mail providers; addresses there are not business contacts.
var personalDomains = map[string]struct{}{
	"gmail.com":      {},
	"yahoo.com":      {},
	"outlook.com":    {},
	"hotmail.com":    {},
	"icloud.com":     {},
	"aol.com":        {},
	"protonmail.com": {},
	"live.com":       {},
	"msn.com":        {},
	"ymail.com":      {},
	"rediffmail.com": {},
	"mail.com":       {},
}

// ValidateEmail reports whether the address is well formed.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// IsBusinessEmail reports whether a valid address is outside the free mail providers.
func IsBusinessEmail(email string) bool {
	email = strings.TrimSpace(email)
	if !ValidateEmail(email) {
		return false
	}
	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	_, personal := personalDomains[domain]
	return !personal
}

// ValidatePhone reports whether the number looks like an Indian, North American
// or international number. Blank numbers are accepted since phone is optional.
func ValidatePhone(phone string) bool {
	if strings.TrimSpace(phone) == "" {
		return true
	}
	cleaned := phoneStrip.ReplaceAllString(phone, "")
	for _, p := range phonePatterns {
		if p.MatchString(cleaned) {
			return true
		}
	}
	return false
}

// SanitizeInput strips markup, collapses whitespace and caps the length.
func SanitizeInput(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > MaxInputLength {
		text = string([]rune(text)[:MaxInputLength])
	}
	return text
}
