package quality

// Weights are the relative contributions of each sub-score to the overall
// score. They need not sum to one; the scorer normalizes them.
type Weights struct {
	Fill            float64
	Confidence      float64
	RowConsistency  float64
	ColumnAlignment float64
	Coverage        float64
	Types           float64
}

// DefaultWeights returns the standard weighting.
func DefaultWeights() Weights {
	return Weights{
		Fill:            0.20,
		Confidence:      0.20,
		RowConsistency:  0.15,
		ColumnAlignment: 0.15,
		Coverage:        0.15,
		Types:           0.15,
	}
}

func (w Weights) sum() float64 {
	return w.Fill + w.Confidence + w.RowConsistency + w.ColumnAlignment + w.Coverage + w.Types
}

func (w Weights) valid() bool {
	for _, v := range []float64{w.Fill, w.Confidence, w.RowConsistency, w.ColumnAlignment, w.Coverage, w.Types} {
		if v < 0 {
			return false
		}
	}
	return w.sum() > 0
}

// Config holds scoring configuration
type Config struct {
	Weights Weights

	// MinScore is the overall score an acceptable report must reach
	MinScore float64

	// MaxEmptyRatio is the empty-cell fraction above which a warning is added
	MaxEmptyRatio float64

	// MinConfidence is the mean OCR confidence below which a warning is added
	MinConfidence float64

	// RowDeviation is how far a row's filled-cell count may stray from the
	// mode before the row counts as an outlier
	RowDeviation int

	// Fill ratios at or beyond these bounds mark a column as extreme
	ExtremeLow  float64
	ExtremeHigh float64

	// ExtremeTolerance is the number of extreme columns allowed without penalty
	ExtremeTolerance int

	// ExpectedCharDensity is the number of characters expected per
	// 10,000 square pixels of table box
	ExpectedCharDensity float64

	// MinCoverage is the coverage below which a warning is added
	MinCoverage float64

	// TypeMajority is the share of non-empty cells a class needs to type a column
	TypeMajority float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Weights:             DefaultWeights(),
		MinScore:            50,
		MaxEmptyRatio:       0.3,
		MinConfidence:       70,
		RowDeviation:        1,
		ExtremeLow:          0,
		ExtremeHigh:         1,
		ExtremeTolerance:    1,
		ExpectedCharDensity: 5,
		MinCoverage:         0.5,
		TypeMajority:        0.7,
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if !c.Weights.valid() {
		c.Weights = def.Weights
	}
	if c.MaxEmptyRatio <= 0 {
		c.MaxEmptyRatio = def.MaxEmptyRatio
	}
	if c.RowDeviation < 0 {
		c.RowDeviation = def.RowDeviation
	}
	if c.ExtremeHigh <= c.ExtremeLow {
		c.ExtremeLow, c.ExtremeHigh = def.ExtremeLow, def.ExtremeHigh
	}
	if c.ExtremeTolerance < 0 {
		c.ExtremeTolerance = def.ExtremeTolerance
	}
	if c.ExpectedCharDensity <= 0 {
		c.ExpectedCharDensity = def.ExpectedCharDensity
	}
	if c.MinCoverage <= 0 {
		c.MinCoverage = def.MinCoverage
	}
	if c.TypeMajority <= 0 || c.TypeMajority > 1 {
		c.TypeMajority = def.TypeMajority
	}
	return c
}
