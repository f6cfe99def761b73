package drawsnap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tsawler/drawsnap/format"
	"github.com/tsawler/drawsnap/matching"
	"github.com/tsawler/drawsnap/model"
	"github.com/tsawler/drawsnap/ocr"
	"github.com/tsawler/drawsnap/quality"
	"github.com/tsawler/drawsnap/tables"
	"github.com/tsawler/drawsnap/templates"
	"github.com/tsawler/drawsnap/tokens"
)

// Recognizer turns a page image into tokens. *ocr.Client implements it.
type Recognizer interface {
	Tokens(imageData []byte, page int) ([]model.PositionedToken, error)
}

// Result is the outcome of extracting one page. It is never nil and always
// carries a grid and a report.
type Result struct {
	Source string
	Page   int // 0 when all tokens were used

	// Vendor and Template are empty when no template could be resolved
	Vendor   string
	Template *model.TableTemplate

	// Match is set when the vendor was detected from page text
	Match *matching.Match

	Grid   *model.Grid
	Report *quality.Report

	// Row grouping used by the slicer
	Threshold float64
	Adaptive  bool

	Duration time.Duration
}

// Extractor provides a fluent interface for extracting a table from one
// document. Each configuration method returns a new Extractor instance,
// making it safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	image    []byte
	source   string

	// Loaded tokens
	tokens       []model.PositionedToken
	tokensLoaded bool

	recognizer Recognizer
	snapshot   *templates.Snapshot

	// Configuration
	options ExtractOptions
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:     e.filename,
		image:        e.image,
		source:       e.source,
		tokens:       e.tokens,
		tokensLoaded: e.tokensLoaded,
		recognizer:   e.recognizer,
		snapshot:     e.snapshot,
		options:      e.options.clone(),
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Pages specifies which pages to extract (1-indexed). Multiple calls are
// cumulative. Extract uses the first selected page; ExtractPages uses all.
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange specifies a range of pages to extract (1-indexed, inclusive).
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	for i := start; i <= end; i++ {
		newExt.options.pages = append(newExt.options.pages, i)
	}
	return newExt
}

// Vendor selects the template stored for vendor. Close names match too.
func (e *Extractor) Vendor(vendor string) *Extractor {
	newExt := e.clone()
	newExt.options.vendor = vendor
	return newExt
}

// Template uses tmpl directly, bypassing the template store.
func (e *Extractor) Template(tmpl *model.TableTemplate) *Extractor {
	newExt := e.clone()
	newExt.options.template = tmpl.Clone()
	return newExt
}

// Templates sets the template snapshot used for vendor lookup and detection.
func (e *Extractor) Templates(snapshot *templates.Snapshot) *Extractor {
	newExt := e.clone()
	newExt.snapshot = snapshot
	return newExt
}

// Keywords adds vendor keywords used during detection, merged with each
// template's own keywords.
func (e *Extractor) Keywords(keywords map[string][]string) *Extractor {
	newExt := e.clone()
	if newExt.options.keywords == nil {
		newExt.options.keywords = make(map[string][]string)
	}
	for vendor, kws := range keywords {
		newExt.options.keywords[vendor] = append(newExt.options.keywords[vendor], kws...)
	}
	return newExt
}

// MinConfidence drops tokens at or below confidence before slicing.
func (e *Extractor) MinConfidence(confidence float64) *Extractor {
	newExt := e.clone()
	newExt.options.minConfidence = confidence
	newExt.options.filterConfidence = true
	return newExt
}

// SampleTokens sets how many leading tokens form the page text used for
// vendor detection.
func (e *Extractor) SampleTokens(n int) *Extractor {
	newExt := e.clone()
	newExt.options.sampleTokens = n
	return newExt
}

// SlicerConfig sets the row/column binning configuration.
func (e *Extractor) SlicerConfig(config tables.Config) *Extractor {
	newExt := e.clone()
	newExt.options.slicer = config
	return newExt
}

// QualityConfig sets the scoring configuration.
func (e *Extractor) QualityConfig(config quality.Config) *Extractor {
	newExt := e.clone()
	newExt.options.quality = config
	return newExt
}

// MatchingConfig sets the vendor detection configuration.
func (e *Extractor) MatchingConfig(config matching.Config) *Extractor {
	newExt := e.clone()
	newExt.options.matching = config
	return newExt
}

// Recognizer sets the OCR engine used for page images. Without one a
// default Tesseract client is created when needed.
func (e *Extractor) Recognizer(r Recognizer) *Extractor {
	newExt := e.clone()
	newExt.recognizer = r
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Tokens returns the document's tokens after confidence filtering.
func (e *Extractor) Tokens() ([]model.PositionedToken, error) {
	all, err := e.loadTokens()
	if err != nil {
		return nil, err
	}
	if e.options.filterConfidence {
		all = tokens.Filter(all, e.options.minConfidence)
	}
	return all, nil
}

// DetectVendor scores the page text against every known vendor. The
// boolean reports whether the best vendor reached the threshold.
func (e *Extractor) DetectVendor() (matching.Match, bool, error) {
	all, err := e.Tokens()
	if err != nil {
		return matching.Match{}, false, err
	}
	match, ok := e.detect(e.pageTokens(all, e.firstPage(all)))
	return match, ok, nil
}

// Extract slices and scores a single page: the first selected page, or page
// 1 of a multi-page document. The returned Result is never nil. The error
// is non-nil only when tokens could not be read (ErrTokenSource) or no
// template could be resolved (ErrNoTemplate, ErrNoMatch); the Result then
// carries a placeholder grid and the reason as a report error.
func (e *Extractor) Extract() (*Result, error) {
	started := time.Now()

	all, err := e.Tokens()
	if err != nil {
		res := e.failed(0, fmt.Sprintf("Token source failed: %v", err))
		res.Duration = time.Since(started)
		return res, err
	}

	page := e.firstPage(all)
	var notes []string
	if len(e.options.pages) == 0 {
		if pages := tokens.Pages(all); len(pages) > 1 {
			notes = append(notes, fmt.Sprintf("Multi-page input (%d pages); using page %d only", len(pages), page))
		}
	}

	tmpl, match, err := e.resolveTemplate(e.pageTokens(all, page))
	if err != nil {
		res := e.failed(page, err.Error())
		res.Match = match
		res.Duration = time.Since(started)
		return res, err
	}

	res := e.extractPage(all, page, tmpl)
	res.Match = match
	for _, n := range notes {
		res.Report.AddWarning(n)
	}
	res.Duration = time.Since(started)
	return res, nil
}

// ExtractPages slices and scores every selected page (all pages when none
// are selected) with one template, resolved from the first page. Results
// are in page order.
func (e *Extractor) ExtractPages() ([]*Result, error) {
	all, err := e.Tokens()
	if err != nil {
		return []*Result{e.failed(0, fmt.Sprintf("Token source failed: %v", err))}, err
	}

	pages := e.selectedPages(all)
	tmpl, match, err := e.resolveTemplate(e.pageTokens(all, pages[0]))
	if err != nil {
		res := e.failed(pages[0], err.Error())
		res.Match = match
		return []*Result{res}, err
	}

	results := make([]*Result, 0, len(pages))
	for _, page := range pages {
		started := time.Now()
		res := e.extractPage(all, page, tmpl)
		res.Match = match
		res.Duration = time.Since(started)
		results = append(results, res)
	}
	return results, nil
}

// ============================================================================
// Internal helpers
// ============================================================================

func (e *Extractor) extractPage(all []model.PositionedToken, page int, tmpl *model.TableTemplate) *Result {
	slicer := tables.NewSlicerWithConfig(e.options.slicer)
	sliced := slicer.SlicePage(all, tmpl, page)

	scorer := quality.NewScorerWithConfig(e.options.quality)
	report := scorer.Score(sliced.Grid, e.pageTokens(all, page), tmpl)
	for _, w := range sliced.Warnings {
		report.AddWarning(w)
	}
	for _, msg := range sliced.Errors {
		report.AddError(msg)
	}

	return &Result{
		Source:    e.source,
		Page:      page,
		Vendor:    tmpl.Vendor,
		Template:  tmpl,
		Grid:      sliced.Grid,
		Report:    report,
		Threshold: sliced.Threshold,
		Adaptive:  sliced.Adaptive,
	}
}

// failed builds the degraded result for a run that never reached slicing.
func (e *Extractor) failed(page int, reason string) *Result {
	report := quality.NewReport(e.options.quality.MinScore)
	report.AddError(reason)
	report.EmptyRatio = 1

	return &Result{
		Source: e.source,
		Page:   page,
		Grid:   model.NewPlaceholderGrid(model.PlaceholderNoText),
		Report: report,
	}
}

// resolveTemplate picks the template: explicit, then by vendor name, then
// by detection over the page's tokens.
func (e *Extractor) resolveTemplate(pageTokens []model.PositionedToken) (*model.TableTemplate, *matching.Match, error) {
	if e.options.template != nil {
		return e.options.template.Clone(), nil, nil
	}

	if e.options.vendor != "" {
		if e.snapshot == nil {
			return nil, nil, fmt.Errorf("%w %q: no template store", ErrNoTemplate, e.options.vendor)
		}
		tmpl, err := e.snapshot.Get(e.options.vendor)
		if err != nil {
			return nil, nil, fmt.Errorf("%w %q", ErrNoTemplate, e.options.vendor)
		}
		return tmpl, nil, nil
	}

	if e.snapshot == nil || e.snapshot.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: no templates available", ErrNoMatch)
	}

	match, ok := e.detect(pageTokens)
	if !ok {
		return nil, &match, fmt.Errorf("%w (best %q at %.2f); specify the vendor explicitly",
			ErrNoMatch, match.Vendor, match.Confidence)
	}

	tmpl, err := e.snapshot.Get(match.Vendor)
	if err != nil {
		return nil, &match, fmt.Errorf("%w %q", ErrNoTemplate, match.Vendor)
	}
	return tmpl, &match, nil
}

func (e *Extractor) detect(pageTokens []model.PositionedToken) (matching.Match, bool) {
	if e.snapshot == nil {
		return matching.Match{}, false
	}
	text := tokens.PageText(pageTokens, e.options.sampleTokens)
	matcher := matching.NewMatcher(e.options.matching)
	return matcher.Match(text, e.snapshot.Candidates(e.options.keywords))
}

// selectedPages returns the deduplicated, sorted page selection, or every
// page present when none was selected.
func (e *Extractor) selectedPages(all []model.PositionedToken) []int {
	if len(e.options.pages) == 0 {
		pages := tokens.Pages(all)
		if len(pages) == 0 {
			return []int{1}
		}
		return pages
	}

	seen := make(map[int]bool)
	var pages []int
	for _, p := range e.options.pages {
		if p < 1 || seen[p] {
			continue
		}
		seen[p] = true
		pages = append(pages, p)
	}
	if len(pages) == 0 {
		return []int{1}
	}
	sort.Ints(pages)
	return pages
}

func (e *Extractor) firstPage(all []model.PositionedToken) int {
	if len(e.options.pages) > 0 {
		return e.selectedPages(all)[0]
	}
	return 1
}

func (e *Extractor) pageTokens(all []model.PositionedToken, page int) []model.PositionedToken {
	return tokens.OnPage(all, page)
}

// loadTokens reads tokens from the configured source.
func (e *Extractor) loadTokens() ([]model.PositionedToken, error) {
	if e.tokensLoaded {
		return e.tokens, nil
	}

	switch {
	case e.image != nil:
		return e.recognize(e.image)
	case e.filename == "":
		return nil, fmt.Errorf("%w: no source specified", ErrTokenSource)
	}

	kind, err := format.DetectFile(e.filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenSource, err)
	}

	switch {
	case kind.IsTokens():
		toks, err := tokens.ReadFile(e.filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTokenSource, err)
		}
		return toks, nil

	case kind.IsImage():
		data, err := os.ReadFile(e.filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTokenSource, err)
		}
		return e.recognize(data)

	default:
		return nil, fmt.Errorf("%w: unsupported input %q", ErrTokenSource, filepath.Base(e.filename))
	}
}

func (e *Extractor) recognize(data []byte) ([]model.PositionedToken, error) {
	r := e.recognizer
	if r == nil {
		client, err := ocr.New(ocr.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTokenSource, err)
		}
		defer client.Close()
		r = client
	}

	toks, err := r.Tokens(data, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenSource, err)
	}
	return toks, nil
}
