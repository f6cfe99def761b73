// Package batch runs the extraction pipeline over many documents with a
// bounded pool of workers. Each document is processed independently; a
// failing document is reported in its Outcome and never stops the batch.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/drawsnap"
	"github.com/tsawler/drawsnap/export"
	"github.com/tsawler/drawsnap/model"
	"github.com/tsawler/drawsnap/runlog"
)

// Job is one document to extract.
type Job struct {
	Source    string
	Extractor *drawsnap.Extractor
}

// Outcome is the result of one Job. Results holds one entry per extracted
// page; Err is set when the document failed before slicing, in which case
// Results still carries the degraded placeholder result.
type Outcome struct {
	Source  string
	Results []*drawsnap.Result
	RunIDs  []string
	Err     error
}

// Acceptable reports whether every page of the outcome passed.
func (o Outcome) Acceptable() bool {
	if o.Err != nil || len(o.Results) == 0 {
		return false
	}
	for _, res := range o.Results {
		if !res.Report.IsAcceptable() {
			return false
		}
	}
	return true
}

// Options configures a Runner.
type Options struct {
	// Workers bounds concurrent documents (default: GOMAXPROCS)
	Workers int

	// RunLog, when set, receives one record per extracted page
	RunLog *runlog.Store

	Logger *slog.Logger
}

// Runner executes jobs concurrently.
type Runner struct {
	workers int
	runlog  *runlog.Store
	logger  *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{workers: workers, runlog: opts.RunLog, logger: logger}
}

// Workers returns the concurrency limit.
func (r *Runner) Workers() int {
	return r.workers
}

// Run processes every job and returns the outcomes in job order. The
// returned error is non-nil only when ctx was cancelled; jobs that had not
// started by then carry ctx's error.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, job := range jobs {
		i, job := i, job
		outcomes[i].Source = job.Source

		if err := gctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			outcomes[i] = r.runJob(job)
			return nil
		})
	}

	_ = g.Wait()
	return outcomes, ctx.Err()
}

func (r *Runner) runJob(job Job) Outcome {
	out := Outcome{Source: job.Source}
	if job.Extractor == nil {
		out.Err = fmt.Errorf("%s: no extractor", job.Source)
		return out
	}

	started := time.Now()
	results, err := job.Extractor.ExtractPages()
	out.Results = results
	out.Err = err

	for _, res := range results {
		r.logResult(job.Source, res, err)
		if r.runlog == nil {
			continue
		}
		rec := RunRecord(res, "")
		rec.Started = started
		id, lerr := r.runlog.Add(rec)
		if lerr != nil {
			r.logger.Warn("recording run failed", "source", job.Source, "error", lerr)
			continue
		}
		out.RunIDs = append(out.RunIDs, id)
	}
	return out
}

func (r *Runner) logResult(source string, res *drawsnap.Result, err error) {
	attrs := []any{
		"source", source,
		"page", res.Page,
		"vendor", res.Vendor,
		"score", res.Report.Score,
		"rows", res.Report.Shape.Rows,
		"columns", res.Report.Shape.Columns,
	}
	switch {
	case err != nil:
		r.logger.Error("extraction failed", append(attrs, "error", err)...)
	case !res.Report.IsAcceptable():
		r.logger.Warn("extraction below quality bar", append(attrs, "errors", res.Report.Errors)...)
	default:
		r.logger.Info("extracted", attrs...)
	}
}

// Merge concatenates the grids of every acceptable page in job and page
// order. Rejected pages are skipped and listed in skipped as
// "source (page N)".
func Merge(outcomes []Outcome) (grid *model.Grid, skipped []string) {
	var grids []*model.Grid
	for _, o := range outcomes {
		if o.Err != nil {
			skipped = append(skipped, o.Source)
			continue
		}
		for _, res := range o.Results {
			if !res.Report.IsAcceptable() {
				skipped = append(skipped, fmt.Sprintf("%s (page %d)", o.Source, res.Page))
				continue
			}
			grids = append(grids, res.Grid)
		}
	}
	return export.MergeGrids(grids), skipped
}

// RunRecord converts a page result into a run log record.
func RunRecord(res *drawsnap.Result, output string) runlog.Record {
	return runlog.Record{
		Source:     res.Source,
		Vendor:     res.Vendor,
		Page:       res.Page,
		Score:      res.Report.Score,
		Acceptable: res.Report.IsAcceptable(),
		Rows:       res.Report.Shape.Rows,
		Columns:    res.Report.Shape.Columns,
		Output:     output,
		Warnings:   res.Report.Warnings,
		Errors:     res.Report.Errors,
		Started:    time.Now().Add(-res.Duration),
		Duration:   res.Duration,
	}
}
