package run

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/chojs23/mergepane/internal/cli"
	"github.com/chojs23/mergepane/internal/config"
	"github.com/chojs23/mergepane/internal/engine"
	"github.com/chojs23/mergepane/internal/markers"
	"github.com/chojs23/mergepane/internal/tui"
)

// env is what one invocation needs once config and logging are set up.
type env struct {
	cfg   config.Config
	theme config.Theme
	log   zerolog.Logger
	reg   *engine.Registry
}

func Run(ctx context.Context, opts cli.Options) int {
	if opts.Check {
		resolved, err := engine.CheckResolvedFile(opts.OutputPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if resolved {
			return 0
		}
		return 1
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	theme, err := cfg.ResolveTheme()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	log, closer, err := config.NewLogger(cfg, opts.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer closer.Close()

	e := env{
		cfg:   cfg,
		theme: theme,
		log:   log,
		reg: engine.NewRegistry(engine.Options{
			UndoDepth: cfg.UndoDepth,
			Backup:    opts.Backup || cfg.Backup,
			Stage:     opts.Stage || cfg.StageOnWrite,
			Logger:    log,
		}),
	}

	if opts.ApplyAll != "" {
		return e.applyAll(ctx, opts)
	}

	// Interactive TUI
	if !opts.HasPaths() {
		for {
			in, err := prepareInteractiveFromRepo(ctx, e)
			if err != nil {
				if errors.Is(err, errNoConflicts) {
					fmt.Fprintln(os.Stdout, "No conflicted files found in the current directory.")
					return 0
				}
				if errors.Is(err, tui.ErrSelectorQuit) {
					return 0
				}
				fmt.Fprintln(os.Stderr, err)
				return 2
			}

			err = e.interactive(ctx, in)
			if err != nil {
				if errors.Is(err, tui.ErrBackToSelector) {
					continue
				}
				fmt.Fprintln(os.Stderr, err)
				return 2
			}
			return 0
		}
	}

	in, err := engine.LoadInput(opts.BasePath, opts.LeftPath, opts.RightPath, opts.OutputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := e.interactive(ctx, in); err != nil && !errors.Is(err, tui.ErrBackToSelector) {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return 0
}

func (e env) applyAll(ctx context.Context, opts cli.Options) int {
	side, err := engine.Side(opts.ApplyAll)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	in, err := engine.LoadInput(opts.BasePath, opts.LeftPath, opts.RightPath, opts.OutputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	n, err := engine.ApplyAllAndWrite(ctx, e.reg, in, side)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if n == 0 {
		fmt.Fprintf(os.Stderr, "Nothing to apply from %s.\n", side)
	}
	return 0
}

// interactive runs the TUI over one session. Without an output path the
// merged result goes to stdout once the UI exits.
func (e env) interactive(ctx context.Context, in engine.Input) error {
	s, err := e.reg.Open(in)
	if err != nil {
		return err
	}
	defer e.reg.Close(s.ID)

	err = tui.Run(ctx, e.reg, s.ID, tui.Options{Theme: e.theme, Scroll: e.cfg.Scroll, Logger: e.log})
	if in.OutputPath == "" && (err == nil || errors.Is(err, tui.ErrBackToSelector)) {
		if _, werr := os.Stdout.Write(markers.Render(s.Document())); werr != nil {
			return werr
		}
	}
	return err
}
