package optimizer

// Config is the process-wide mutable configuration of the orchestrator.
// It is initialized with defaults at construction and updated in place
// by UpdateConfig; updates never invalidate already-cached assets.
type Config struct {
	// Quality is the default encoding quality (1-100) applied when a
	// request does not specify one.
	Quality int `json:"quality" mapstructure:"quality"`

	// MaxWidth caps requested widths; wider requests are clamped.
	MaxWidth int `json:"max_width" mapstructure:"max_width"`

	// EnableLazyLoading is consumed by rendering collaborators; the
	// pipeline itself only stores and reports it.
	EnableLazyLoading bool `json:"enable_lazy_loading" mapstructure:"enable_lazy_loading"`

	// DefaultConcurrency bounds batch optimization when a request
	// does not carry its own concurrency.
	DefaultConcurrency int `json:"default_concurrency" mapstructure:"default_concurrency"`

	// Breakpoints are the candidate widths for responsive source sets.
	Breakpoints []int `json:"breakpoints" mapstructure:"breakpoints"`

	// PlaceholderSize is the pixel width of generated blur previews.
	PlaceholderSize int `json:"placeholder_size" mapstructure:"placeholder_size"`
}

// DefaultConfig returns the construction-time defaults.
func DefaultConfig() Config {
	return Config{
		Quality:            80,
		MaxWidth:           1920,
		EnableLazyLoading:  true,
		DefaultConcurrency: 4,
		Breakpoints:        []int{320, 640, 960, 1280},
		PlaceholderSize:    16,
	}
}

// ConfigPatch is a partial configuration; nil fields keep their current
// value. Breakpoints replace wholesale when non-nil.
type ConfigPatch struct {
	Quality            *int
	MaxWidth           *int
	EnableLazyLoading  *bool
	DefaultConcurrency *int
	Breakpoints        []int
	PlaceholderSize    *int
}

// overlay applies patch field by field.
func (c *Config) overlay(p ConfigPatch) {
	if p.Quality != nil {
		c.Quality = *p.Quality
	}
	if p.MaxWidth != nil {
		c.MaxWidth = *p.MaxWidth
	}
	if p.EnableLazyLoading != nil {
		c.EnableLazyLoading = *p.EnableLazyLoading
	}
	if p.DefaultConcurrency != nil {
		c.DefaultConcurrency = *p.DefaultConcurrency
	}
	if p.Breakpoints != nil {
		c.Breakpoints = append([]int(nil), p.Breakpoints...)
	}
	if p.PlaceholderSize != nil {
		c.PlaceholderSize = *p.PlaceholderSize
	}
}

// clone returns a copy safe to hand out while the original keeps mutating.
func (c Config) clone() Config {
	out := c
	out.Breakpoints = append([]int(nil), c.Breakpoints...)
	return out
}
