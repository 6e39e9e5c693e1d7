package driven

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetFloat retrieves a float configuration value. The boolean
	// distinguishes an absent key from a configured zero, which matters
	// for ranking weights.
	GetFloat(key string) (float64, bool)

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice configuration value.
	// Returns nil if key doesn't exist or isn't a slice.
	GetStringSlice(key string) []string

	// GetFloatMap retrieves a table of float values under key, e.g. a
	// TOML table of per-section weights. Returns nil if no entry under
	// the key holds a numeric value.
	GetFloatMap(key string) map[string]float64

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Watch invokes fn after the backing storage changes on disk and has
	// been reloaded. Returns a stop function. Implementations without
	// change notification return a no-op stop.
	Watch(fn func()) (stop func(), err error)

	// Path returns the configuration file path.
	Path() string
}
