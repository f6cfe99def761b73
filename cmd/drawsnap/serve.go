package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/tsawler/drawsnap/server"
)

func runServe(a *app, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", a.cfg.Server.Address, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	repo, err := a.repository()
	if err != nil {
		return err
	}
	runs, err := a.runLog()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Address:        *addr,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Repository:     repo,
		RunLog:         runs,
		Keywords:       a.cfg.Vendors,
		Headers:        a.cfg.HeaderMap(),
		Slicer:         a.cfg.TablesConfig(),
		Quality:        a.cfg.QualityConfig(),
		Matching:       a.cfg.MatchingConfig(),
		SampleTokens:   a.cfg.Matching.SampleTokens,
		MinConfidence:  a.cfg.OCR.MinConfidence,
		Logger:         a.logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
