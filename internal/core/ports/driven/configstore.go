package driven

// ConfigStore holds flat dot-keyed settings such as "retrieval.top_k".
// Typed getters return the zero value for missing or mistyped keys.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string

	// GetInt accepts integers and truncates floats.
	GetInt(key string) int

	// GetFloat accepts floats and integers.
	GetFloat(key string) float64

	GetBool(key string) bool

	// GetStringSlice keeps the string items of a TOML array.
	GetStringSlice(key string) []string

	// Set stores the value and writes the file.
	Set(key string, value any) error

	Save() error

	// Load replaces the in-memory values with the file contents.
	Load() error

	// Path is the backing file, for messages.
	Path() string
}
