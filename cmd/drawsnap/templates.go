package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tsawler/drawsnap/model"
	"github.com/tsawler/drawsnap/templates"
)

func runTemplates(a *app, args []string) error {
	if len(args) == 0 {
		templatesUsage()
		return flag.ErrHelp
	}

	repo, err := a.repository()
	if err != nil {
		return err
	}

	sub, args := args[0], args[1:]
	switch sub {
	case "list":
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VENDOR\tCOLUMNS\tTABLE BOX\tUPDATED")
		for _, t := range repo.Snapshot().Templates() {
			c := t.TableBox.Corners()
			fmt.Fprintf(tw, "%s\t%d\t%g,%g,%g,%g\t%s\n",
				t.Vendor, t.ColumnCount(), c[0], c[1], c[2], c[3], formatTime(t.UpdatedAt))
		}
		return tw.Flush()

	case "stats":
		stats := repo.Stats()
		fmt.Printf("Templates:  %d\n", stats.Count)
		if stats.Count == 0 {
			return nil
		}
		fmt.Printf("Columns:    avg %.1f, min %d, max %d\n", stats.AvgColumns, stats.MinColumns, stats.MaxColumns)
		fmt.Printf("Oldest:     %s\n", formatTime(stats.Oldest))
		fmt.Printf("Newest:     %s\n", formatTime(stats.Newest))
		fmt.Printf("Vendors:    %s\n", strings.Join(stats.Vendors, ", "))
		return nil

	case "show":
		if len(args) != 1 {
			return fmt.Errorf("usage: drawsnap templates show <vendor>")
		}
		tmpl, err := repo.Get(args[0])
		if err != nil {
			return err
		}
		data, err := templates.Encode(tmpl)
		if err != nil {
			return err
		}
		_, err = fmt.Printf("%s\n", data)
		return err

	case "add":
		fs := flag.NewFlagSet("templates add", flag.ContinueOnError)
		vendor := fs.String("vendor", "", "vendor name")
		box := fs.String("box", "", "table box as x0,y0,x1,y1")
		columns := fs.String("columns", "", "ascending column boundaries, e.g. 50,300,420,550")
		keywords := fs.String("keywords", "", "comma-separated keywords identifying the vendor")
		if err := fs.Parse(args); err != nil {
			return err
		}

		corners, err := parseFloats(*box)
		if err != nil || len(corners) != 4 {
			return fmt.Errorf("-box needs 4 numbers")
		}
		bounds, err := parseFloats(*columns)
		if err != nil {
			return fmt.Errorf("-columns: %w", err)
		}

		tmpl := &model.TableTemplate{
			Vendor:   *vendor,
			TableBox: model.NewBBoxFromCorners(corners[0], corners[1], corners[2], corners[3]),
			Columns:  bounds,
			Keywords: splitList(*keywords),
		}
		for _, w := range tmpl.BoundaryWarnings() {
			a.logger.Warn(w, "vendor", *vendor)
		}
		stored, err := repo.Put(tmpl)
		if err != nil {
			return err
		}
		fmt.Printf("Saved template for %s (%d columns)\n", stored.Vendor, stored.ColumnCount())
		return nil

	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("usage: drawsnap templates remove <vendor>")
		}
		return repo.Remove(args[0])

	case "import":
		fs := flag.NewFlagSet("templates import", flag.ContinueOnError)
		vendor := fs.String("vendor", "", "store under this vendor instead of the one in the file")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: drawsnap templates import [-vendor name] <file>")
		}
		stored, err := repo.Import(fs.Arg(0), *vendor)
		if err != nil {
			return err
		}
		fmt.Printf("Imported template for %s\n", stored.Vendor)
		return nil

	case "export":
		if len(args) != 2 {
			return fmt.Errorf("usage: drawsnap templates export <vendor> <file>")
		}
		return repo.Export(args[0], args[1])

	default:
		templatesUsage()
		return fmt.Errorf("unknown templates command %q", sub)
	}
}

func templatesUsage() {
	fmt.Fprintln(os.Stderr, `Usage: drawsnap templates <command>

Commands:
  list                               list stored templates
  stats                              summarize the store
  show <vendor>                      print one template
  add -vendor V -box B -columns C    add or update a template
  remove <vendor>                    delete a template
  import [-vendor V] <file>          store a template file
  export <vendor> <file>             write a template file`)
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, part := range splitList(s) {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
