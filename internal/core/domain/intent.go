package domain

import "math"

// DetectionMethod records how an intent was detected.
type DetectionMethod string

// Detection methods.
const (
	// MethodKeyword means a configured trigger keyword occurred in the utterance.
	MethodKeyword DetectionMethod = "keyword"

	// MethodML means the zero-shot classifier selected the categories.
	MethodML DetectionMethod = "ml"

	// MethodFallback means nothing was detected and the default category was used.
	MethodFallback DetectionMethod = "fallback"
)

// IsValid returns true if the method is recognised.
func (m DetectionMethod) IsValid() bool {
	switch m {
	case MethodKeyword, MethodML, MethodFallback:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m DetectionMethod) String() string {
	return string(m)
}

// IntentDetail explains why a single category was selected.
type IntentDetail struct {
	// Category is the selected category name.
	Category string `json:"category"`

	// Keyword is the trigger keyword that matched (keyword method only).
	Keyword string `json:"keyword,omitempty"`

	// Score is the classifier score (ml method only).
	Score float64 `json:"score,omitempty"`
}

// IntentResult is the outcome of intent detection for one utterance.
// Categories are in detection order with duplicates removed.
type IntentResult struct {
	Method     DetectionMethod `json:"method"`
	Categories []string        `json:"categories"`
	Confidence float64         `json:"confidence"`
	Details    []IntentDetail  `json:"details,omitempty"`
}

// FallbackIntent returns the intent used when detection yields nothing.
func FallbackIntent() IntentResult {
	return IntentResult{
		Method:     MethodFallback,
		Categories: []string{FallbackCategory},
		Confidence: 1.0,
		Details:    []IntentDetail{{Category: FallbackCategory}},
	}
}

// Primary returns the first detected category, or empty if none.
func (r IntentResult) Primary() string {
	if len(r.Categories) == 0 {
		return ""
	}
	return r.Categories[0]
}

// Top returns up to n categories in detection order.
func (r IntentResult) Top(n int) []string {
	if n > len(r.Categories) {
		n = len(r.Categories)
	}
	if n < 0 {
		n = 0
	}
	return r.Categories[:n]
}

// HasFamily returns true if any detected category belongs to the family.
func (r IntentResult) HasFamily(f Family) bool {
	for _, c := range r.Categories {
		if FamilyOf(c) == f {
			return true
		}
	}
	return false
}

// RoundedConfidence returns the confidence rounded to two decimals.
func (r IntentResult) RoundedConfidence() float64 {
	return math.Round(r.Confidence*100) / 100
}
