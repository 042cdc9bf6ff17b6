package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of claims to keep in memory.
// If maxSize > 0 the oldest claim is forgotten first once full.
// If maxSize <= 0 claims are never forgotten.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
