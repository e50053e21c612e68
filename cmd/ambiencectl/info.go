// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/ik5/ambience/internal/config"
)

func info(ctx context.Context, cfg config.Config, log *slog.Logger, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}

	e, err := newEngine(ctx, cfg, log, fs.Arg(0), false)
	if err != nil {
		return err
	}
	e.m.Tick(0, e.scene.Listener.At(0))

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQUENCE\tCLIPS\tPASS\tOUTPUT\tACTIVATION")
	for _, s := range e.scene.Sequences {
		pass, activation := "-", "-"
		if p := s.Params(); p != nil {
			pass = fmt.Sprintf("%.2fs", p.Duration)
			activation = fmt.Sprintf("%.2f", p.Activation)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", s.Name, len(s.Clips), pass, s.Output, activation)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	tracks := e.m.Tracks()
	fmt.Fprintf(stdout, "\nplaying at start (%d):\n", len(tracks))
	for _, t := range tracks {
		fmt.Fprintf(stdout, "  %s\n", t)
	}

	blocked := e.m.Blocked()
	fmt.Fprintf(stdout, "\nblocked at start (%d):\n", len(blocked))
	for _, b := range blocked {
		fmt.Fprintf(stdout, "  %s\n", b)
	}

	for _, s := range e.scene.Sequences {
		for _, err := range s.Validate() {
			fmt.Fprintf(stdout, "warning: %s: %v\n", s.Name, err)
		}
	}
	return nil
}
