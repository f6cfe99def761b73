package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tsawler/drawsnap"
	"github.com/tsawler/drawsnap/batch"
	"github.com/tsawler/drawsnap/export"
	"github.com/tsawler/drawsnap/templates"
)

// sliceFlags are shared by extract and batch.
type sliceFlags struct {
	vendor   string
	template string
	pages    string
	format   string
	outDir   string
}

func (f *sliceFlags) register(fs *flag.FlagSet, a *app) {
	fs.StringVar(&f.vendor, "vendor", "", "vendor template to use (default: detect from page text)")
	fs.StringVar(&f.template, "template", "", "standalone template file to use instead of the store")
	fs.StringVar(&f.pages, "pages", "", "pages to extract, e.g. 1,3-4 (default: first page)")
	fs.StringVar(&f.format, "format", a.cfg.Export.Format, "output format: csv, tsv, md or xlsx")
	fs.StringVar(&f.outDir, "out", a.cfg.Export.Dir, "output directory")
}

// extractor configures the pipeline for one input file.
func (f *sliceFlags) extractor(a *app, path string) (*drawsnap.Extractor, error) {
	repo, err := a.repository()
	if err != nil {
		return nil, err
	}

	ext := drawsnap.Open(path).
		Templates(repo.Snapshot()).
		Keywords(a.cfg.Vendors).
		SampleTokens(a.cfg.Matching.SampleTokens).
		MinConfidence(a.cfg.OCR.MinConfidence).
		SlicerConfig(a.cfg.TablesConfig()).
		QualityConfig(a.cfg.QualityConfig()).
		MatchingConfig(a.cfg.MatchingConfig())

	if client := a.recognizer(); client != nil {
		ext = ext.Recognizer(client)
	}

	if f.pages != "" {
		pages, err := parsePages(f.pages)
		if err != nil {
			return nil, err
		}
		ext = ext.Pages(pages...)
	}

	switch {
	case f.template != "":
		data, err := os.ReadFile(f.template)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		tmpl, err := templates.Decode(data, f.vendor)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", f.template, err)
		}
		ext = ext.Template(tmpl)
	case f.vendor != "":
		ext = ext.Vendor(f.vendor)
	}
	return ext, nil
}

func runExtract(a *app, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	var sf sliceFlags
	sf.register(fs, a)
	toStdout := fs.Bool("stdout", false, "write the table to stdout instead of a file")
	allPages := fs.Bool("all-pages", false, "extract every page, one output file per page")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: drawsnap extract [flags] <tokens.json|page.hocr|page.png>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return flag.ErrHelp
	}

	format, err := export.ParseFormat(sf.format)
	if err != nil {
		return err
	}

	input := fs.Arg(0)
	ext, err := sf.extractor(a, input)
	if err != nil {
		return err
	}

	var results []*drawsnap.Result
	var extractErr error
	if *allPages {
		results, extractErr = ext.ExtractPages()
	} else {
		var res *drawsnap.Result
		res, extractErr = ext.Extract()
		results = []*drawsnap.Result{res}
	}

	runs, err := a.runLog()
	if err != nil {
		a.logger.Warn("run log unavailable", "error", err)
	}

	acceptable := extractErr == nil
	for _, res := range results {
		header, warning := a.cfg.HeaderMap().Lookup(res.Vendor, res.Grid.Columns)
		if warning != "" {
			res.Report.AddWarning(warning)
		}

		output := ""
		switch {
		case *toStdout:
			if err := export.Write(os.Stdout, res.Grid, format, header); err != nil {
				return err
			}
		case extractErr == nil:
			output = filepath.Join(sf.outDir, export.FileName(res.Vendor, pageSource(input, res.Page, len(results)), time.Now(), format))
			if err := export.WriteFile(output, res.Grid, format, header); err != nil {
				return err
			}
			a.logger.Info("wrote table", "path", output, "rows", res.Grid.DataRowCount())
		}

		fmt.Fprintln(os.Stderr, res.Report.Summary())

		if runs != nil {
			if _, err := runs.Add(batch.RunRecord(res, output)); err != nil {
				a.logger.Warn("recording run failed", "error", err)
			}
		}
		if !res.Report.IsAcceptable() {
			acceptable = false
		}
	}

	if extractErr != nil {
		return extractErr
	}
	if !acceptable {
		return errUnacceptable
	}
	return nil
}

// pageSource names per-page outputs when several pages are written.
func pageSource(input string, page, count int) string {
	if count <= 1 || page == 0 {
		return input
	}
	ext := filepath.Ext(input)
	return fmt.Sprintf("%s_p%d%s", strings.TrimSuffix(input, ext), page, ext)
}

// maxPage bounds page numbers and the length of a page list.
const maxPage = 10000

// parsePages parses "1,3-5" into page numbers.
func parsePages(s string) ([]int, error) {
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || start < 1 || start > maxPage {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil || end < start || end > maxPage {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		if len(pages)+end-start+1 > maxPage {
			return nil, fmt.Errorf("too many pages in %q (limit %d)", s, maxPage)
		}
		for p := start; p <= end; p++ {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages in %q", s)
	}
	return pages, nil
}
