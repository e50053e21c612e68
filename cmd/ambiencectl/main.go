// SPDX-License-Identifier: EPL-2.0

// Command ambiencectl plays, renders and inspects ambience scenes.
//
//	ambiencectl play [-duration d] scene.yaml
//	ambiencectl render [-duration d] [-rate hz] scene.yaml out.wav
//	ambiencectl info scene.yaml
//
// Runtime settings come from AMBIENCE_* environment variables; clip ids in
// the scene are paths under AMBIENCE_ASSET_DIR.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ik5/ambience/internal/config"
)

const usage = `usage:
  ambiencectl play [-duration d] scene.yaml
  ambiencectl render [-duration d] [-rate hz] scene.yaml out.wav
  ambiencectl info scene.yaml
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "ambiencectl:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	cfg := config.Load()
	log := cfg.Logger(stderr)

	switch args[0] {
	case "play":
		return play(ctx, cfg, log, args[1:], stderr)
	case "render":
		return render(ctx, cfg, log, args[1:], stdout, stderr)
	case "info":
		return info(ctx, cfg, log, args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w: %q", errUnknownCommand, args[0])
	}
}
