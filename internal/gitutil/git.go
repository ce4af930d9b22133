package gitutil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Stage is an index stage of a conflicted path.
type Stage int

const (
	StageBase  Stage = 1
	StageLeft  Stage = 2
	StageRight Stage = 3
)

func (s Stage) String() string {
	switch s {
	case StageBase:
		return "base"
	case StageLeft:
		return "left"
	case StageRight:
		return "right"
	default:
		return "stage" + strconv.Itoa(int(s))
	}
}

// git runs a git subcommand in dir and returns stdout. Failures carry
// git's stderr when it printed any.
func git(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("git %s failed: %w", args[0], err)
		}
		return nil, fmt.Errorf("git %s failed: %s: %w", args[0], msg, err)
	}
	return stdout.Bytes(), nil
}

// RepoRoot returns the repository root directory for the given working directory.
func RepoRoot(ctx context.Context, cwd string) (string, error) {
	output, err := git(ctx, cwd, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	root := strings.TrimSpace(string(output))
	if root == "" {
		return "", fmt.Errorf("git rev-parse returned empty repo root")
	}
	return root, nil
}

// ListUnmergedFiles returns repo-relative paths of conflicted files under scopePathspec.
func ListUnmergedFiles(ctx context.Context, repoRoot string, scopePathspec string) ([]string, error) {
	pathspec := scopePathspec
	if pathspec == "" {
		pathspec = "."
	}

	output, err := git(ctx, repoRoot, "diff", "--name-only", "--diff-filter=U", "--", pathspec)
	if err != nil {
		return nil, err
	}
	return splitPaths(output), nil
}

func splitPaths(output []byte) []string {
	var paths []string
	for _, line := range bytes.Split(bytes.TrimSpace(output), []byte{'\n'}) {
		p := strings.TrimSpace(string(line))
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// UnmergedStages reports which index stages exist for path. Add/add
// conflicts have no base stage.
func UnmergedStages(ctx context.Context, repoRoot, path string) (map[Stage]bool, error) {
	output, err := git(ctx, repoRoot, "ls-files", "-u", "--", path)
	if err != nil {
		return nil, err
	}

	stages := map[Stage]bool{}
	for _, line := range splitPaths(output) {
		// <mode> SP <object> SP <stage> TAB <path>
		meta, _, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		fields := strings.Fields(meta)
		if len(fields) != 3 {
			continue
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		stages[Stage(n)] = true
	}
	return stages, nil
}

// ShowStage reads a conflicted file content from the given index stage.
func ShowStage(ctx context.Context, repoRoot string, stage Stage, path string) ([]byte, error) {
	return git(ctx, repoRoot, "show", fmt.Sprintf(":%d:%s", stage, path))
}

// Add stages path, marking its conflict resolved.
func Add(ctx context.Context, repoRoot, path string) error {
	_, err := git(ctx, repoRoot, "add", "--", path)
	return err
}
