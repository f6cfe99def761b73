package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

func runRuns(a *app, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	n := fs.Int("n", 20, "number of runs to show (0: all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := a.runLog()
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("run log is disabled; set runlog.path in the configuration")
	}

	runs, err := store.Recent(*n)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tSCORE\tSHAPE\tVENDOR\tSOURCE\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%dx%d\t%s\t%s\t%s\n",
			r.Started.Local().Format(time.DateTime), r.Status(), r.Score, r.Rows, r.Columns,
			r.Vendor, r.Source, r.Output)
	}
	return tw.Flush()
}
