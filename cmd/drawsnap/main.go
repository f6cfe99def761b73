// Command drawsnap extracts tables from OCR token files and page images
// using per-vendor templates.
//
// Usage:
//
//	drawsnap [-config drawsnap.yaml] <command> [flags] [args]
//
// Commands:
//
//	extract    slice one document and write the table
//	batch      slice many documents in parallel
//	serve      run the HTTP API
//	templates  manage the template store
//	runs       list recent runs
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tsawler/drawsnap/config"
	"github.com/tsawler/drawsnap/ocr"
	"github.com/tsawler/drawsnap/runlog"
	"github.com/tsawler/drawsnap/templates"
)

// errUnacceptable is returned when output was written but failed the
// quality bar.
var errUnacceptable = errors.New("result below quality bar")

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	repo   *templates.Repository
	runs   *runlog.Store
	ocr    *ocr.Client
}

type command struct {
	name    string
	summary string
	run     func(a *app, args []string) error
}

var commands = []command{
	{"extract", "slice one document and write the table", runExtract},
	{"batch", "slice many documents in parallel", runBatch},
	{"serve", "run the HTTP API", runServe},
	{"templates", "manage the template store", runTemplates},
	{"runs", "list recent runs", runRuns},
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("drawsnap", flag.ContinueOnError)
	configPath := global.String("config", envOr("DRAWSNAP_CONFIG", "drawsnap.yaml"), "configuration file")
	global.Usage = func() { usage(global) }

	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		usage(global)
		return 2
	}

	name, rest := global.Arg(0), global.Args()[1:]
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage(global)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "drawsnap: %v\n", err)
		return 1
	}

	a := &app{cfg: cfg, logger: cfg.Logger(os.Stderr)}
	slog.SetDefault(a.logger)
	defer a.close()

	if err := cmd.run(a, rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		if !errors.Is(err, errUnacceptable) {
			a.logger.Error(name+" failed", "error", err)
		}
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "Usage: drawsnap [-config file] <command> [flags] [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Global flags:")
	fs.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// repository opens the template store on first use.
func (a *app) repository() (*templates.Repository, error) {
	if a.repo != nil {
		return a.repo, nil
	}
	repo, err := templates.Open(a.cfg.Templates.Path, templates.Options{
		Backup: a.cfg.Templates.Backup,
		Logger: a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.repo = repo
	return repo, nil
}

// runLog opens the run log on first use. It returns nil when disabled.
func (a *app) runLog() (*runlog.Store, error) {
	if a.runs != nil || a.cfg.RunLog.Path == "" {
		return a.runs, nil
	}
	store, err := runlog.Open(a.cfg.RunLog.Path)
	if err != nil {
		return nil, err
	}
	a.runs = store
	return store, nil
}

// recognizer starts the OCR engine on first use. It returns nil when OCR
// support is not compiled in, leaving image inputs to fail with a clear
// error from the extractor.
func (a *app) recognizer() *ocr.Client {
	if a.ocr != nil || !ocr.Enabled() {
		return a.ocr
	}
	client, err := ocr.New(a.cfg.OCROptions())
	if err != nil {
		a.logger.Warn("OCR unavailable", "error", err)
		return nil
	}
	a.ocr = client
	return client
}

func (a *app) close() {
	if a.ocr != nil {
		a.ocr.Close()
	}
	if a.runs != nil {
		if err := a.runs.Close(); err != nil {
			a.logger.Warn("closing run log", "error", err)
		}
	}
}
