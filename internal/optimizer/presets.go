package optimizer

// Built-in configuration presets for common asset classes.
var presets = map[string]Config{
	"dashboard": {
		Quality:            80,
		MaxWidth:           1920,
		EnableLazyLoading:  true,
		DefaultConcurrency: 4,
		Breakpoints:        []int{320, 640, 960, 1280},
		PlaceholderSize:    16,
	},
	"thumbnail": {
		Quality:            70,
		MaxWidth:           640,
		EnableLazyLoading:  true,
		DefaultConcurrency: 8,
		Breakpoints:        []int{160, 320, 640},
		PlaceholderSize:    8,
	},
	"hero": {
		Quality:            85,
		MaxWidth:           2560,
		EnableLazyLoading:  false,
		DefaultConcurrency: 2,
		Breakpoints:        []int{640, 1280, 1920, 2560},
		PlaceholderSize:    24,
	},
}

// Preset returns a named configuration. Unknown names fall back to the
// dashboard preset, which matches DefaultConfig.
func Preset(name string) Config {
	if c, ok := presets[name]; ok {
		return c.clone()
	}
	return presets["dashboard"].clone()
}
