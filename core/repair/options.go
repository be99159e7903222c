package repair

const (
	// DefaultMaxInsertions caps the comma insertions of a single Recover call.
	DefaultMaxInsertions = 50

	// DefaultMaxPassRuns runs the text pass sequence once per call.
	DefaultMaxPassRuns = 1

	snippetRadius = 2
)

// Option configures Recover.
type Option func(*config)

type config struct {
	disabled      map[string]bool
	maxInsertions int
	maxPassRuns   int
	unwrap        bool
	fallback      bool
}

func defaultConfig() *config {
	return &config{
		disabled:      map[string]bool{PassGenericRepair: true},
		maxInsertions: DefaultMaxInsertions,
		maxPassRuns:   DefaultMaxPassRuns,
		unwrap:        true,
	}
}

func applyOptions(opts ...Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *config) enabled(name string) bool {
	switch name {
	case PassUnwrapDoubleEncode:
		return c.unwrap && !c.disabled[name]
	case PassGenericRepair:
		return c.fallback && !c.disabled[name]
	}
	return !c.disabled[name]
}

// WithPasses enables only the named passes. Unknown names are ignored.
// The generic-repair pass additionally needs WithFallback(true).
func WithPasses(names ...string) Option {
	return func(c *config) {
		keep := make(map[string]bool, len(names))
		for _, n := range names {
			keep[n] = true
		}
		for _, n := range PassNames() {
			c.disabled[n] = !keep[n]
		}
	}
}

// WithoutPasses disables the named passes.
func WithoutPasses(names ...string) Option {
	return func(c *config) {
		for _, n := range names {
			c.disabled[n] = true
		}
	}
}

// WithMaxInsertions sets the comma insertion cap. Values below 1 keep the default.
func WithMaxInsertions(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxInsertions = n
		}
	}
}

// WithMaxPassRuns sets how many times the text pass sequence may run while
// it keeps changing the document. Values below 1 keep the default.
func WithMaxPassRuns(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxPassRuns = n
		}
	}
}

// WithUnwrap toggles unwrapping of notebooks serialized inside a single cell.
func WithUnwrap(enabled bool) Option {
	return func(c *config) {
		c.unwrap = enabled
	}
}

// WithFallback enables the generic-repair pass, which hands text the named
// passes could not fix to github.com/kaptinlin/jsonrepair.
func WithFallback(enabled bool) Option {
	return func(c *config) {
		c.fallback = enabled
		if enabled {
			delete(c.disabled, PassGenericRepair)
		}
	}
}

// PassNames lists every pass in pipeline order.
func PassNames() []string {
	return []string{PassEscapeControlChars, PassInsertDelimiters, PassUnwrapDoubleEncode, PassGenericRepair}
}
