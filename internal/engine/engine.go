package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chojs23/mergepane/internal/markers"
	"github.com/chojs23/mergepane/internal/merge"
)

// CheckResolvedFile reports whether the file at path is free of conflict
// marker blocks.
func CheckResolvedFile(path string) (bool, error) {
	n, err := CountConflicts(path)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// CountConflicts returns the number of conflict marker blocks in the file at
// path. Malformed markers are an error rather than a count.
func CountConflicts(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read output: %w", err)
	}

	doc, err := markers.Parse(data)
	if err != nil {
		return 0, err
	}
	return len(doc.Conflicts), nil
}

// LoadInput reads the three versions from disk. Labels are taken from the
// file names.
func LoadInput(basePath, leftPath, rightPath, outputPath string) (Input, error) {
	base, err := os.ReadFile(basePath)
	if err != nil {
		return Input{}, fmt.Errorf("read base: %w", err)
	}
	left, err := os.ReadFile(leftPath)
	if err != nil {
		return Input{}, fmt.Errorf("read left: %w", err)
	}
	right, err := os.ReadFile(rightPath)
	if err != nil {
		return Input{}, fmt.Errorf("read right: %w", err)
	}
	return Input{
		Base:           merge.SplitLines(string(base)),
		Left:           merge.SplitLines(string(left)),
		Right:          merge.SplitLines(string(right)),
		NoFinalNewline: NoFinalNewline(string(base), string(left), string(right)),
		OutputPath:     outputPath,
		Labels: markers.Labels{
			Left:  filepath.Base(leftPath),
			Base:  filepath.Base(basePath),
			Right: filepath.Base(rightPath),
		},
	}, nil
}

// NoFinalNewline reports whether the merge result should end without a
// newline: every non-empty version lacks one, and at least one exists.
func NoFinalNewline(texts ...string) bool {
	missing := false
	for _, text := range texts {
		if text == "" {
			continue
		}
		if !merge.MissingFinalNewline(text) {
			return false
		}
		missing = true
	}
	return missing
}

// ApplyAllAndWrite takes side for every chunk that has it and writes the
// result. It returns the number of chunks applied; with nothing to apply the
// output is left untouched.
func ApplyAllAndWrite(ctx context.Context, reg *Registry, in Input, side merge.Side) (int, error) {
	if in.OutputPath == "" {
		return 0, errors.New("internal: ApplyAllAndWrite called without output path")
	}

	s, err := reg.Open(in)
	if err != nil {
		return 0, err
	}
	defer reg.Close(s.ID)

	n, err := s.Store().ApplyAll(side)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	res, err := s.Write(ctx)
	if err != nil {
		return n, err
	}
	if res.Conflicts != 0 {
		return n, errors.New("resolution output still contains conflict markers")
	}
	return n, nil
}
