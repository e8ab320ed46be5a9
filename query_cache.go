package pstack

// ProgramCache stores compiled expression programs keyed by expression
// strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache on the Query wrapper.
func WithProgramCache(cache ProgramCache) QueryOption {
	return func(cfg *queryConfig) {
		cfg.programCache = cache
	}
}
