package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/tsawler/drawsnap/batch"
	"github.com/tsawler/drawsnap/export"
)

func runBatch(a *app, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	var sf sliceFlags
	sf.register(fs, a)
	workers := fs.Int("workers", a.cfg.Batch.Workers, "documents processed in parallel (0: one per CPU)")
	merge := fs.Bool("merge", false, "also write every acceptable table into one merged file")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: drawsnap batch [flags] <file>...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	inputs, err := expandInputs(fs.Args())
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		fs.Usage()
		return flag.ErrHelp
	}

	format, err := export.ParseFormat(sf.format)
	if err != nil {
		return err
	}

	jobs := make([]batch.Job, 0, len(inputs))
	for _, input := range inputs {
		ext, err := sf.extractor(a, input)
		if err != nil {
			return err
		}
		jobs = append(jobs, batch.Job{Source: input, Extractor: ext})
	}

	runs, err := a.runLog()
	if err != nil {
		a.logger.Warn("run log unavailable", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := batch.NewRunner(batch.Options{Workers: *workers, RunLog: runs, Logger: a.logger})
	started := time.Now()
	outcomes, runErr := runner.Run(ctx, jobs)

	failed := 0
	for _, o := range outcomes {
		if !o.Acceptable() {
			failed++
		}
		for _, res := range o.Results {
			status := "SUCCESS"
			if o.Err != nil || !res.Report.IsAcceptable() {
				status = "FAIL"
			}
			fmt.Printf("%-7s %s (page %d) vendor=%q score=%.1f\n", status, o.Source, res.Page, res.Vendor, res.Report.Score)

			if o.Err != nil {
				continue
			}
			header, warning := a.cfg.HeaderMap().Lookup(res.Vendor, res.Grid.Columns)
			if warning != "" {
				a.logger.Warn(warning, "source", o.Source)
			}
			out := filepath.Join(sf.outDir, export.FileName(res.Vendor, pageSource(o.Source, res.Page, len(o.Results)), started, format))
			if err := export.WriteFile(out, res.Grid, format, header); err != nil {
				return err
			}
		}
		if o.Err != nil {
			fmt.Printf("        %s: %v\n", o.Source, o.Err)
		}
	}

	if *merge {
		grid, skipped := batch.Merge(outcomes)
		for _, s := range skipped {
			a.logger.Warn("not merged", "source", s)
		}
		out := filepath.Join(sf.outDir, export.MergedFileName(sf.vendor, started, format))
		if err := export.WriteFile(out, grid, format, nil); err != nil {
			return err
		}
		a.logger.Info("wrote merged table", "path", out, "rows", grid.DataRowCount())
	}

	fmt.Printf("%d documents, %d failed, %s\n", len(outcomes), failed, time.Since(started).Round(time.Millisecond))

	if runErr != nil {
		return runErr
	}
	if failed > 0 {
		return errUnacceptable
	}
	return nil
}

// expandInputs resolves glob patterns; arguments without meta characters
// are passed through unchanged.
func expandInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			out = append(out, arg)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}
