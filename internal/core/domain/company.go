package domain

import "strings"

// Contacts lists the ways a visitor can reach the company.
type Contacts struct {
	SalesEmail   string `toml:"sales_email" validate:"required,email"`
	SupportEmail string `toml:"support_email" validate:"omitempty,email"`
	CareersEmail string `toml:"careers_email" validate:"omitempty,email"`
	Website      string `toml:"website" validate:"omitempty,url"`
	Phone        string `toml:"phone"`
}

// Offering is one service family the company sells.
type Offering struct {
	Name        string   `toml:"name" validate:"required"`
	Description string   `toml:"description"`
	Keywords    []string `toml:"keywords"`
	Benefits    []string `toml:"benefits"`
}

// Company holds the branding and contact facts the assistant speaks for.
type Company struct {
	Name        string     `toml:"name" validate:"required"`
	Tagline     string     `toml:"tagline"`
	BotName     string     `toml:"bot_name" validate:"required"`
	Description string     `toml:"description"`
	Services    []string   `toml:"services"`
	Credibility string     `toml:"credibility"`
	Contacts    Contacts   `toml:"contacts"`
	Offerings   []Offering `toml:"offerings" validate:"dive"`
	Industries  []string   `toml:"industries"`
}

// CareersEmail returns the careers address, falling back to sales.
func (c Company) CareersEmail() string {
	if c.Contacts.CareersEmail != "" {
		return c.Contacts.CareersEmail
	}
	return c.Contacts.SalesEmail
}

// MatchOfferings returns offerings whose keywords occur in text, in configured order.
func (c Company) MatchOfferings(text string) []Offering {
	lower := strings.ToLower(text)
	var matched []Offering
	for _, o := range c.Offerings {
		for _, kw := range o.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				matched = append(matched, o)
				break
			}
		}
	}
	return matched
}
