// Package cleaner defines the interface shared by markup cleaners.
// A cleaner takes one markup fragment, such as a keyword definition, and
// returns a normalized version of it.
package cleaner

// Cleaner normalizes a single markup fragment.
type Cleaner interface {
	// Clean returns the normalized fragment. Parse failures are returned
	// as errors; implementations never fall back to the input.
	Clean(markup string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
