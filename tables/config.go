package tables

// Config holds slicing configuration
type Config struct {
	// Whether to derive the row threshold from the token gap distribution
	Adaptive bool

	// Multiplier applied to the median y-gap (1.2 = 20% buffer)
	BufferFactor float64

	// Clamp range for the adaptive threshold (pixels)
	MinThreshold float64
	MaxThreshold float64

	// Threshold used when adaptation is off or yields no usable value (pixels)
	DefaultThreshold float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Adaptive:         true,
		BufferFactor:     1.2,
		MinThreshold:     5.0,
		MaxThreshold:     50.0,
		DefaultThreshold: 20.0,
	}
}

// normalized fills zero or inverted values with defaults so a partially
// populated Config still bins sensibly.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.BufferFactor <= 0 {
		c.BufferFactor = def.BufferFactor
	}
	if c.DefaultThreshold <= 0 {
		c.DefaultThreshold = def.DefaultThreshold
	}
	if c.MinThreshold <= 0 {
		c.MinThreshold = def.MinThreshold
	}
	if c.MaxThreshold < c.MinThreshold {
		c.MaxThreshold = def.MaxThreshold
		if c.MaxThreshold < c.MinThreshold {
			c.MaxThreshold = c.MinThreshold
		}
	}
	return c
}
