package domain

import (
	"fmt"
	"strings"
)

// FallbackCategory is the category returned when nothing else can be detected.
const FallbackCategory = "general information about the company"

// Category names a slice of the corpus relevant to a class of user need.
// Each category maps to exactly one corpus partition and a set of trigger keywords.
type Category struct {
	// Name is the human-readable label, also used as the classifier label.
	Name string

	// Partition is the corpus directory holding this category's documents.
	// Relative paths are resolved against the corpus root.
	Partition string

	// Keywords trigger this category on a case-insensitive substring match.
	// Order matters: the first matching keyword is reported.
	Keywords []string
}

// Family returns the coarse topic family used for calls-to-action and follow-ups.
// Matching is substring-based on the lowercase category name.
func (c Category) Family() Family {
	return FamilyOf(c.Name)
}

// Family groups categories that share calls-to-action and follow-up questions.
type Family string

// Known category families.
const (
	FamilyService Family = "service"
	FamilyCareer  Family = "career"
	FamilyCase    Family = "case"
	FamilyCompany Family = "company"
	FamilyNone    Family = ""
)

// FamilyOf classifies a category name into its family.
// Service takes precedence over career, career over case/success,
// case/success over company/about.
func FamilyOf(name string) Family {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "service"):
		return FamilyService
	case strings.Contains(lower, "career"):
		return FamilyCareer
	case strings.Contains(lower, "case"), strings.Contains(lower, "success"):
		return FamilyCase
	case strings.Contains(lower, "company"), strings.Contains(lower, "about"):
		return FamilyCompany
	default:
		return FamilyNone
	}
}

// Catalogue is the ordered, immutable set of configured categories.
// Detection precedence follows the order categories were supplied in.
type Catalogue struct {
	categories []Category
	index      map[string]int
}

// NewCatalogue builds a catalogue from an ordered category list.
// Names must be unique and non-empty and every category needs a partition.
func NewCatalogue(categories []Category) (*Catalogue, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: catalogue has no categories", ErrInvalidInput)
	}

	c := &Catalogue{
		categories: make([]Category, len(categories)),
		index:      make(map[string]int, len(categories)),
	}
	for i, cat := range categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("%w: category %d has no name", ErrInvalidInput, i)
		}
		if cat.Partition == "" {
			return nil, fmt.Errorf("%w: category %q has no partition", ErrInvalidInput, cat.Name)
		}
		if _, dup := c.index[cat.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidInput, cat.Name)
		}
		keywords := make([]string, len(cat.Keywords))
		copy(keywords, cat.Keywords)
		cat.Keywords = keywords
		c.categories[i] = cat
		c.index[cat.Name] = i
	}

	return c, nil
}

// Categories returns a copy of the categories in configured order.
func (c *Catalogue) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Names returns category names in configured order.
func (c *Catalogue) Names() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// Len returns the number of categories.
func (c *Catalogue) Len() int {
	return len(c.categories)
}

// Get returns the category with the given name.
func (c *Catalogue) Get(name string) (Category, bool) {
	i, ok := c.index[name]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

// Partitions maps category names to their partitions, preserving order
// and skipping unknown names and repeated partitions.
func (c *Catalogue) Partitions(names []string) []string {
	seen := make(map[string]bool, len(names))
	partitions := make([]string, 0, len(names))
	for _, name := range names {
		cat, ok := c.Get(name)
		if !ok || seen[cat.Partition] {
			continue
		}
		seen[cat.Partition] = true
		partitions = append(partitions, cat.Partition)
	}
	return partitions
}
