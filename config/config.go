// Package config loads drawsnap's YAML configuration. Environment variables
// (including those from a .env file) are expanded in the file before it is
// parsed, and every section converts into the Config type of the package
// that owns it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/drawsnap/export"
	"github.com/tsawler/drawsnap/matching"
	"github.com/tsawler/drawsnap/ocr"
	"github.com/tsawler/drawsnap/quality"
	"github.com/tsawler/drawsnap/tables"
	"github.com/tsawler/drawsnap/tokens"
)

type Config struct {
	Slicer    Slicer              `yaml:"slicer"`
	Quality   Quality             `yaml:"quality"`
	Matching  Matching            `yaml:"matching"`
	Templates Templates           `yaml:"templates"`
	Vendors   map[string][]string `yaml:"vendors"`
	Headers   map[string][]string `yaml:"headers"`
	OCR       OCR                 `yaml:"ocr"`
	Export    Export              `yaml:"export"`
	RunLog    RunLog              `yaml:"runlog"`
	Batch     Batch               `yaml:"batch"`
	Server    Server              `yaml:"server"`
	Log       Log                 `yaml:"log"`
}

type Slicer struct {
	Adaptive         bool    `yaml:"adaptive"`
	BufferFactor     float64 `yaml:"buffer_factor"`
	MinThreshold     float64 `yaml:"min_threshold"`
	MaxThreshold     float64 `yaml:"max_threshold"`
	DefaultThreshold float64 `yaml:"default_threshold"`
}

type Weights struct {
	Fill            float64 `yaml:"fill"`
	Confidence      float64 `yaml:"confidence"`
	RowConsistency  float64 `yaml:"row_consistency"`
	ColumnAlignment float64 `yaml:"column_alignment"`
	Coverage        float64 `yaml:"coverage"`
	Types           float64 `yaml:"types"`
}

type Quality struct {
	Weights             Weights `yaml:"weights"`
	MinScore            float64 `yaml:"min_score"`
	MaxEmptyRatio       float64 `yaml:"max_empty_ratio"`
	MinConfidence       float64 `yaml:"min_confidence"`
	RowDeviation        int     `yaml:"row_deviation"`
	ExtremeLow          float64 `yaml:"extreme_low"`
	ExtremeHigh         float64 `yaml:"extreme_high"`
	ExtremeTolerance    int     `yaml:"extreme_tolerance"`
	ExpectedCharDensity float64 `yaml:"expected_char_density"`
	MinCoverage         float64 `yaml:"min_coverage"`
	TypeMajority        float64 `yaml:"type_majority"`
}

type Matching struct {
	Threshold    float64 `yaml:"threshold"`
	FuzzyCutoff  float64 `yaml:"fuzzy_cutoff"`
	FuzzyWeight  float64 `yaml:"fuzzy_weight"`
	SampleTokens int     `yaml:"sample_tokens"`
}

type Templates struct {
	Path   string `yaml:"path"`
	Backup bool   `yaml:"backup"`
}

type OCR struct {
	Language      string  `yaml:"language"`
	MinConfidence float64 `yaml:"min_confidence"`
	PageSegMode   int     `yaml:"page_seg_mode"`
}

type Export struct {
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

type RunLog struct {
	// Empty disables the run log
	Path string `yaml:"path"`
}

type Batch struct {
	Workers int `yaml:"workers"`
}

type Server struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	sc := tables.DefaultConfig()
	qc := quality.DefaultConfig()
	mc := matching.DefaultConfig()
	oc := ocr.DefaultOptions()

	return &Config{
		Slicer: Slicer{
			Adaptive:         sc.Adaptive,
			BufferFactor:     sc.BufferFactor,
			MinThreshold:     sc.MinThreshold,
			MaxThreshold:     sc.MaxThreshold,
			DefaultThreshold: sc.DefaultThreshold,
		},
		Quality: Quality{
			Weights: Weights{
				Fill:            qc.Weights.Fill,
				Confidence:      qc.Weights.Confidence,
				RowConsistency:  qc.Weights.RowConsistency,
				ColumnAlignment: qc.Weights.ColumnAlignment,
				Coverage:        qc.Weights.Coverage,
				Types:           qc.Weights.Types,
			},
			MinScore:            qc.MinScore,
			MaxEmptyRatio:       qc.MaxEmptyRatio,
			MinConfidence:       qc.MinConfidence,
			RowDeviation:        qc.RowDeviation,
			ExtremeLow:          qc.ExtremeLow,
			ExtremeHigh:         qc.ExtremeHigh,
			ExtremeTolerance:    qc.ExtremeTolerance,
			ExpectedCharDensity: qc.ExpectedCharDensity,
			MinCoverage:         qc.MinCoverage,
			TypeMajority:        qc.TypeMajority,
		},
		Matching: Matching{
			Threshold:    mc.Threshold,
			FuzzyCutoff:  mc.FuzzyCutoff,
			FuzzyWeight:  mc.FuzzyWeight,
			SampleTokens: tokens.DefaultSampleSize,
		},
		Templates: Templates{
			Path:   "vendor_templates.json",
			Backup: true,
		},
		OCR: OCR{
			Language:      oc.Language,
			MinConfidence: oc.MinConfidence,
			PageSegMode:   int(oc.PageSegMode),
		},
		Export: Export{
			Format: string(export.CSV),
			Dir:    ".",
		},
		Server: Server{
			Address: ":8080",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads the configuration at path on top of the defaults. A .env file
// in the working directory is loaded into the environment first. An empty
// or missing path yields the defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := c.parse(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML configuration on top of the defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := c.parse(data); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) parse(data []byte) error {
	data = []byte(os.ExpandEnv(string(data)))

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return c.Validate()
}

// Validate checks values that would otherwise fail later or silently fall
// back to defaults.
func (c *Config) Validate() error {
	var errs []error

	w := c.Quality.Weights
	for name, v := range map[string]float64{
		"fill":             w.Fill,
		"confidence":       w.Confidence,
		"row_consistency":  w.RowConsistency,
		"column_alignment": w.ColumnAlignment,
		"coverage":         w.Coverage,
		"types":            w.Types,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("quality.weights.%s must not be negative", name))
		}
	}
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 1 {
		errs = append(errs, fmt.Errorf("matching.threshold must be within [0, 1], got %v", c.Matching.Threshold))
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		errs = append(errs, fmt.Errorf("export.format: %w", err))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("batch.workers must not be negative"))
	}
	if c.Templates.Path == "" {
		errs = append(errs, fmt.Errorf("templates.path is required"))
	}

	return errors.Join(errs...)
}

func (c *Config) TablesConfig() tables.Config {
	return tables.Config{
		Adaptive:         c.Slicer.Adaptive,
		BufferFactor:     c.Slicer.BufferFactor,
		MinThreshold:     c.Slicer.MinThreshold,
		MaxThreshold:     c.Slicer.MaxThreshold,
		DefaultThreshold: c.Slicer.DefaultThreshold,
	}
}

func (c *Config) QualityConfig() quality.Config {
	q := c.Quality
	return quality.Config{
		Weights: quality.Weights{
			Fill:            q.Weights.Fill,
			Confidence:      q.Weights.Confidence,
			RowConsistency:  q.Weights.RowConsistency,
			ColumnAlignment: q.Weights.ColumnAlignment,
			Coverage:        q.Weights.Coverage,
			Types:           q.Weights.Types,
		},
		MinScore:            q.MinScore,
		MaxEmptyRatio:       q.MaxEmptyRatio,
		MinConfidence:       q.MinConfidence,
		RowDeviation:        q.RowDeviation,
		ExtremeLow:          q.ExtremeLow,
		ExtremeHigh:         q.ExtremeHigh,
		ExtremeTolerance:    q.ExtremeTolerance,
		ExpectedCharDensity: q.ExpectedCharDensity,
		MinCoverage:         q.MinCoverage,
		TypeMajority:        q.TypeMajority,
	}
}

func (c *Config) MatchingConfig() matching.Config {
	return matching.Config{
		Threshold:   c.Matching.Threshold,
		FuzzyCutoff: c.Matching.FuzzyCutoff,
		FuzzyWeight: c.Matching.FuzzyWeight,
	}
}

func (c *Config) OCROptions() ocr.Options {
	return ocr.Options{
		Language:      c.OCR.Language,
		PageSegMode:   ocr.PageSegMode(c.OCR.PageSegMode),
		MinConfidence: c.OCR.MinConfidence,
	}
}

func (c *Config) HeaderMap() export.HeaderMap {
	return export.HeaderMap(c.Headers)
}

// ExportFormat returns the configured output format. Validate has already
// rejected unknown formats, so CSV is only a fallback for hand-built configs.
func (c *Config) ExportFormat() export.Format {
	f, err := export.ParseFormat(c.Export.Format)
	if err != nil {
		return export.CSV
	}
	return f
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
}
