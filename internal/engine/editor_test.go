package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEditorCommandRoundTrip(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fake-editor")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho edited >> \"$1\"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EDITOR", script)

	cmd, finish, err := EditorCommand("dir/file.go", []string{"a", "b"})
	if err != nil {
		t.Fatalf("EditorCommand failed: %v", err)
	}
	path := cmd.Args[len(cmd.Args)-1]
	if filepath.Base(path) != "file.go" {
		t.Fatalf("temp file should keep the base name, got %q", path)
	}

	if err := cmd.Run(); err != nil {
		t.Fatalf("editor failed: %v", err)
	}
	lines, err := finish()
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if len(lines) != 3 || lines[2] != "edited" {
		t.Fatalf("unexpected edited lines: %q", lines)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("temp file should be removed, stat err = %v", err)
	}
}

func TestEditorCommandSplitsFlags(t *testing.T) {
	t.Setenv("EDITOR", "code --wait")

	cmd, finish, err := EditorCommand("x.txt", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer finish()

	if len(cmd.Args) != 3 || cmd.Args[0] != "code" || cmd.Args[1] != "--wait" {
		t.Fatalf("unexpected argv: %q", cmd.Args)
	}
}
