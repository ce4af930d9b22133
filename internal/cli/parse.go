package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var ErrHelp = errors.New("help requested")
var ErrVersion = errors.New("version requested")

// newCommand builds the root command. run is called with validated options
// once cobra has parsed the flags.
func newCommand(run func(opts Options) error) *cobra.Command {
	var (
		opts        Options
		showVersion bool
	)

	cmd := &cobra.Command{
		Use:           "mergepane [BASE LEFT RIGHT [OUTPUT]]",
		Short:         "Three-pane merge conflict resolver",
		Long:          Usage(),
		Args:          cobra.MaximumNArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return ErrVersion
			}
			resolved, err := validate(opts, args)
			if err != nil {
				return err
			}
			return run(resolved)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.BasePath, "base", "", "Path to BASE (ancestor) file")
	flags.StringVar(&opts.LeftPath, "left", "", "Path to LEFT (ours) file")
	flags.StringVar(&opts.RightPath, "right", "", "Path to RIGHT (theirs) file")
	flags.StringVarP(&opts.OutputPath, "output", "o", "", "Path to OUTPUT file (write target)")
	flags.StringVar(&opts.ApplyAll, "apply-all", "", "Non-interactive resolution: left|right")
	flags.BoolVar(&opts.Check, "check", false, "Exit 0 if resolved (no conflict markers), else 1")
	flags.BoolVar(&opts.Backup, "backup", false, "Create $OUTPUT.mergepane.bak on write")
	flags.BoolVar(&opts.Stage, "stage", false, "git add the output after a clean write")
	flags.StringVar(&opts.ConfigPath, "config", "", "Path to config file")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose logging to the log file")
	flags.BoolVar(&showVersion, "version", false, "Show version")

	return cmd
}

// Parse validates args without running anything. It returns ErrHelp or
// ErrVersion when those flags were given.
func Parse(args []string) (Options, error) {
	var parsed Options
	ran := false

	cmd := newCommand(func(opts Options) error {
		parsed = opts
		ran = true
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, ErrVersion) {
			return Options{}, ErrVersion
		}
		return Options{}, fmt.Errorf("%w\n\n%s", err, Usage())
	}
	// cobra answers --help itself without calling RunE.
	if !ran {
		return Options{}, ErrHelp
	}
	return parsed, nil
}

func validate(opts Options, args []string) (Options, error) {
	if len(args) > 0 && opts.HasPaths() {
		return Options{}, fmt.Errorf("positional paths cannot be combined with --base/--left/--right/--output")
	}

	opts.ApplyAll = strings.ToLower(strings.TrimSpace(opts.ApplyAll))
	if opts.ApplyAll != "" && opts.ApplyAll != "left" && opts.ApplyAll != "right" {
		return Options{}, fmt.Errorf("invalid --apply-all: %q (expected left|right)", opts.ApplyAll)
	}

	if opts.Check {
		// Only needs the output file.
		if len(args) == 1 {
			opts.OutputPath = args[0]
		} else if len(args) == 4 {
			opts.OutputPath = args[3]
		} else if len(args) != 0 {
			return Options{}, fmt.Errorf("--check takes a single OUTPUT path")
		}
		if opts.OutputPath == "" {
			return Options{}, fmt.Errorf("--check requires --output (or a positional path)")
		}
		return opts, nil
	}

	switch len(args) {
	case 0:
	case 3, 4:
		opts.BasePath = args[0]
		opts.LeftPath = args[1]
		opts.RightPath = args[2]
		if len(args) == 4 {
			opts.OutputPath = args[3]
		}
	default:
		return Options{}, fmt.Errorf("expected BASE LEFT RIGHT [OUTPUT], got %d paths", len(args))
	}

	if opts.ApplyAll != "" {
		if opts.BasePath == "" || opts.LeftPath == "" || opts.RightPath == "" || opts.OutputPath == "" {
			return Options{}, fmt.Errorf("--apply-all requires base/left/right/output")
		}
		return opts, nil
	}

	// No-arg mode: detect conflicts in current repo and select a file.
	if !opts.HasPaths() {
		return opts, nil
	}

	// Interactive mode needs all three inputs. OUTPUT is optional.
	if opts.BasePath == "" || opts.LeftPath == "" || opts.RightPath == "" {
		return Options{}, fmt.Errorf("missing required paths")
	}

	return opts, nil
}

func Usage() string {
	return strings.TrimSpace(`Usage:
	  mergepane
	  mergepane <BASE> <LEFT> <RIGHT> [OUTPUT]
	  mergepane --base <path> --left <path> --right <path> [--output <path>]

Modes:
	  --check                     Exit 0 if $OUTPUT has no conflict blocks, else 1
	  --apply-all left|right      Resolve all chunks non-interactively and write $OUTPUT

No-args mode:
	  If invoked with no paths and no mode flags, mergepane lists
	  conflicted files in the current repository and prompts to select one.
	  The result is written to the working tree file.

Without OUTPUT:
	  The merged result is printed to stdout when the UI exits.

Options:
	  --backup                    Create $OUTPUT.mergepane.bak
	  --stage                     git add $OUTPUT after a write with no conflicts left
	  --config <path>             Config file (default: user config dir)
	  --version                   Show version
	  -v                          Verbose logging
`)
}
