package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/chojs23/mergepane/internal/engine"
	"github.com/chojs23/mergepane/internal/gitutil"
	"github.com/chojs23/mergepane/internal/markers"
	"github.com/chojs23/mergepane/internal/merge"
	"github.com/chojs23/mergepane/internal/tui"
)

var errNoConflicts = errors.New("no conflicted files found")

func prepareInteractiveFromRepo(ctx context.Context, e env) (engine.Input, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return engine.Input{}, fmt.Errorf("get working directory: %w", err)
	}

	repoRoot, err := gitutil.RepoRoot(ctx, cwd)
	if err != nil {
		return engine.Input{}, err
	}

	scope, err := filepath.Rel(repoRoot, cwd)
	if err != nil {
		scope = "."
	}
	scope = filepath.ToSlash(scope)

	paths, err := gitutil.ListUnmergedFiles(ctx, repoRoot, scope)
	if err != nil {
		return engine.Input{}, err
	}
	if len(paths) == 0 {
		return engine.Input{}, errNoConflicts
	}

	selected, err := selectPathInteractive(ctx, e, repoRoot, paths)
	if err != nil {
		return engine.Input{}, err
	}

	outputPath := selected
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(repoRoot, selected)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return engine.Input{}, fmt.Errorf("cannot access merged file %s: %w", selected, err)
	}

	in, err := loadStages(ctx, e, repoRoot, selected)
	if err != nil {
		return engine.Input{}, err
	}
	in.OutputPath = outputPath
	in.RepoRoot = repoRoot
	return in, nil
}

// loadStages reads the base, left and right index stages of path
// concurrently. A path without a base stage (add/add) merges against an
// empty base.
func loadStages(ctx context.Context, e env, repoRoot, path string) (engine.Input, error) {
	stages, err := gitutil.UnmergedStages(ctx, repoRoot, path)
	if err != nil {
		return engine.Input{}, err
	}

	var texts [3]string
	g, gctx := errgroup.WithContext(ctx)
	for i, stage := range []gitutil.Stage{gitutil.StageBase, gitutil.StageLeft, gitutil.StageRight} {
		if stage == gitutil.StageBase && !stages[stage] {
			e.log.Warn().Str("path", path).Msg("base stage missing, merging against an empty base")
			continue
		}
		i, stage := i, stage
		g.Go(func() error {
			data, err := gitutil.ShowStage(gctx, repoRoot, stage, path)
			if err != nil {
				return fmt.Errorf("missing %s stage for %s: %w", stage, path, err)
			}
			texts[i] = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return engine.Input{}, err
	}

	return engine.Input{
		Base:           merge.SplitLines(texts[0]),
		Left:           merge.SplitLines(texts[1]),
		Right:          merge.SplitLines(texts[2]),
		NoFinalNewline: engine.NoFinalNewline(texts[:]...),
		Labels:         markers.Labels{Left: "ours", Base: "base", Right: "theirs"},
	}, nil
}

func selectPath(paths []string) (string, error) {
	if len(paths) == 1 {
		return paths[0], nil
	}

	fmt.Fprintln(os.Stdout, "Conflicted files:")
	for i, p := range paths {
		fmt.Fprintf(os.Stdout, "  %d) %s\n", i+1, p)
	}

	reader := bufio.NewReader(os.Stdin)
	for attempt := 0; attempt < 3; attempt++ {
		fmt.Fprintf(os.Stdout, "Select a file to resolve [1-%d]: ", len(paths))
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read selection: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx, err := strconv.Atoi(line)
		if err != nil || idx < 1 || idx > len(paths) {
			fmt.Fprintln(os.Stdout, "Invalid selection.")
			continue
		}
		return paths[idx-1], nil
	}

	return "", fmt.Errorf("invalid selection")
}

func selectPathInteractive(ctx context.Context, e env, repoRoot string, paths []string) (string, error) {
	if isInteractiveTTY() {
		candidates, err := buildFileCandidates(repoRoot, paths)
		if err != nil {
			return "", err
		}
		return tui.SelectFile(ctx, candidates, e.theme)
	}
	return selectPath(paths)
}

func isInteractiveTTY() bool {
	return isTTY(os.Stdin) && isTTY(os.Stdout)
}

func isTTY(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}

func buildFileCandidates(repoRoot string, paths []string) ([]tui.FileCandidate, error) {
	candidates := make([]tui.FileCandidate, 0, len(paths))
	for _, path := range paths {
		outputPath := path
		if !filepath.IsAbs(outputPath) {
			outputPath = filepath.Join(repoRoot, path)
		}
		n, err := engine.CountConflicts(outputPath)
		if err != nil {
			return nil, fmt.Errorf("count conflicts in %s: %w", path, err)
		}
		candidates = append(candidates, tui.FileCandidate{Path: path, Conflicts: n})
	}
	return candidates, nil
}
