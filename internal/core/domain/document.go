package domain

// ComparisonPrefixLength is the number of leading content characters
// embedded alongside the filename when ranking a document.
const ComparisonPrefixLength = 1000

// Document is a read-only snapshot of one corpus file taken at ranking time.
type Document struct {
	// ID is the filename, unique within its partition.
	ID string `json:"id"`

	// Partition is the corpus directory the document was read from.
	Partition string `json:"partition"`

	// Path is the full filesystem path.
	Path string `json:"path,omitempty"`

	// Content is the trimmed file text.
	Content string `json:"content"`
}

// ComparisonText returns the text embedded when ranking the document:
// the filename, a space, and at most ComparisonPrefixLength characters of content.
func (d Document) ComparisonText() string {
	return d.ID + " " + Prefix(d.Content, ComparisonPrefixLength)
}

// RankedDocument is a document with its similarity to an utterance.
type RankedDocument struct {
	Document
	Score float64 `json:"score"`
}

// Issue records a non-fatal problem encountered while reading the corpus.
type Issue struct {
	// Path is the offending file or directory.
	Path string `json:"path"`

	// Err describes what went wrong.
	Err error `json:"-"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	if i.Err == nil {
		return i.Path
	}
	return i.Path + ": " + i.Err.Error()
}

// Unwrap exposes the underlying error for errors.Is.
func (i Issue) Unwrap() error {
	return i.Err
}

// Prefix returns at most n characters (runes) of s.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
