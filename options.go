package drawsnap

import (
	"github.com/tsawler/drawsnap/matching"
	"github.com/tsawler/drawsnap/model"
	"github.com/tsawler/drawsnap/quality"
	"github.com/tsawler/drawsnap/tables"
	"github.com/tsawler/drawsnap/tokens"
)

// ExtractOptions holds configuration for table extraction.
type ExtractOptions struct {
	// Page selection (1-indexed)
	pages []int

	// Template resolution: an explicit template wins, then a vendor
	// lookup, then detection from page text
	vendor   string
	template *model.TableTemplate
	keywords map[string][]string

	// Token filtering; applied only when set
	minConfidence    float64
	filterConfidence bool

	sampleTokens int

	slicer   tables.Config
	quality  quality.Config
	matching matching.Config
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		pages:        nil, // nil means the first page
		sampleTokens: tokens.DefaultSampleSize,
		slicer:       tables.DefaultConfig(),
		quality:      quality.DefaultConfig(),
		matching:     matching.DefaultConfig(),
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := o

	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	newOpts.template = o.template.Clone()
	if o.keywords != nil {
		newOpts.keywords = make(map[string][]string, len(o.keywords))
		for k, v := range o.keywords {
			newOpts.keywords[k] = append([]string(nil), v...)
		}
	}

	return newOpts
}
