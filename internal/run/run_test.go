package run

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chojs23/mergepane/internal/cli"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestRunCheckResolvedExitCodes(t *testing.T) {
	tmpDir := t.TempDir()

	resolvedPath := filepath.Join(tmpDir, "resolved.txt")
	if err := os.WriteFile(resolvedPath, []byte("ok\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code := Run(context.Background(), cli.Options{Check: true, OutputPath: resolvedPath})
	if code != 0 {
		t.Fatalf("resolved check exit code = %d, want 0", code)
	}

	unresolvedPath := filepath.Join(tmpDir, "unresolved.txt")
	if err := os.WriteFile(unresolvedPath, []byte("<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> branch\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code = Run(context.Background(), cli.Options{Check: true, OutputPath: unresolvedPath})
	if code != 1 {
		t.Fatalf("unresolved check exit code = %d, want 1", code)
	}

	malformedPath := filepath.Join(tmpDir, "malformed.txt")
	if err := os.WriteFile(malformedPath, []byte("<<<<<<< HEAD\nours\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code = Run(context.Background(), cli.Options{Check: true, OutputPath: malformedPath})
	if code != 2 {
		t.Fatalf("malformed check exit code = %d, want 2", code)
	}
}

func TestRunApplyAllExitCodes(t *testing.T) {
	isolateConfig(t)
	ctx := context.Background()
	tmpDir := t.TempDir()

	basePath := filepath.Join(tmpDir, "base.txt")
	leftPath := filepath.Join(tmpDir, "left.txt")
	rightPath := filepath.Join(tmpDir, "right.txt")
	outputPath := filepath.Join(tmpDir, "merged.txt")

	files := map[string]string{
		basePath:   "line1\nbase content\nline3\n",
		leftPath:   "line1\nleft change\nline3\n",
		rightPath:  "line1\nright change\nline3\n",
		outputPath: "conflicted\n",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	code := Run(ctx, cli.Options{
		BasePath:   basePath,
		LeftPath:   leftPath,
		RightPath:  rightPath,
		OutputPath: outputPath,
		ApplyAll:   "left",
		Backup:     true,
	})
	if code != 0 {
		t.Fatalf("apply-all exit code = %d, want 0", code)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "line1\nleft change\nline3\n" {
		t.Fatalf("resolved content mismatch: %q", string(data))
	}
	bak, err := os.ReadFile(outputPath + ".mergepane.bak")
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(bak) != "conflicted\n" {
		t.Fatalf("backup content mismatch: %q", string(bak))
	}

	code = Run(ctx, cli.Options{
		BasePath:   filepath.Join(tmpDir, "missing.txt"),
		LeftPath:   leftPath,
		RightPath:  rightPath,
		OutputPath: outputPath,
		ApplyAll:   "left",
	})
	if code != 2 {
		t.Fatalf("apply-all error exit code = %d, want 2", code)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("theme = \"nope\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code := Run(context.Background(), cli.Options{ConfigPath: path, BasePath: "b", LeftPath: "l", RightPath: "r"})
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}
