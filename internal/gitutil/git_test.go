package gitutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRepoRootSuccess(t *testing.T) {
	withFakeGit(t, `#!/bin/sh
if [ "$1" = "rev-parse" ] && [ "$2" = "--show-toplevel" ]; then
  echo "/tmp/repo"
  exit 0
fi
echo "unexpected args" 1>&2
exit 1
`)

	rootDir := t.TempDir()
	root, err := RepoRoot(context.Background(), rootDir)
	if err != nil {
		t.Fatalf("RepoRoot error: %v", err)
	}
	if root != "/tmp/repo" {
		t.Fatalf("RepoRoot = %q, want /tmp/repo", root)
	}
}

func TestRepoRootFailure(t *testing.T) {
	withFakeGit(t, "#!/bin/sh\nexit 1\n")

	rootDir := t.TempDir()
	if _, err := RepoRoot(context.Background(), rootDir); err == nil {
		t.Fatalf("expected error")
	}
}

func TestListUnmergedFiles(t *testing.T) {
	withFakeGit(t, `#!/bin/sh
if [ "$1" = "diff" ] && [ "$2" = "--name-only" ] && [ "$3" = "--diff-filter=U" ]; then
  echo "a.txt"
  echo "dir/b.txt"
  exit 0
fi
exit 1
`)

	repoRoot := t.TempDir()
	paths, err := ListUnmergedFiles(context.Background(), repoRoot, ".")
	if err != nil {
		t.Fatalf("ListUnmergedFiles error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if paths[0] != "a.txt" || paths[1] != "dir/b.txt" {
		t.Fatalf("unexpected paths: %v", paths)
	}
}

func TestListUnmergedFilesEmpty(t *testing.T) {
	withFakeGit(t, "#!/bin/sh\nexit 0\n")

	repoRoot := t.TempDir()
	paths, err := ListUnmergedFiles(context.Background(), repoRoot, ".")
	if err != nil {
		t.Fatalf("ListUnmergedFiles error: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected no paths, got %v", paths)
	}
}

func TestShowStage(t *testing.T) {
	withFakeGit(t, `#!/bin/sh
if [ "$1" = "show" ] && [ "$2" = ":2:file.txt" ]; then
  printf "content\n"
  exit 0
fi
exit 1
`)

	repoRoot := t.TempDir()
	data, err := ShowStage(context.Background(), repoRoot, StageLeft, "file.txt")
	if err != nil {
		t.Fatalf("ShowStage error: %v", err)
	}
	if string(data) != "content\n" {
		t.Fatalf("ShowStage data = %q", string(data))
	}
}

func TestShowStageFailureIncludesStderr(t *testing.T) {
	withFakeGit(t, "#!/bin/sh\necho \"fatal: path 'x' is in the index, but not at stage 1\" 1>&2\nexit 128\n")

	_, err := ShowStage(context.Background(), t.TempDir(), StageBase, "x")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "not at stage 1") {
		t.Fatalf("error should carry git stderr, got %v", err)
	}
}

func TestUnmergedStages(t *testing.T) {
	withFakeGit(t, `#!/bin/sh
if [ "$1" = "ls-files" ] && [ "$2" = "-u" ]; then
  printf "100644 aaaa 2\tnew.txt\n"
  printf "100644 bbbb 3\tnew.txt\n"
  exit 0
fi
exit 1
`)

	stages, err := UnmergedStages(context.Background(), t.TempDir(), "new.txt")
	if err != nil {
		t.Fatalf("UnmergedStages error: %v", err)
	}
	if stages[StageBase] {
		t.Fatalf("base stage should be missing for add/add conflict")
	}
	if !stages[StageLeft] || !stages[StageRight] {
		t.Fatalf("expected left and right stages, got %v", stages)
	}
}

func TestAdd(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "args")
	withFakeGit(t, "#!/bin/sh\necho \"$@\" > "+marker+"\n")

	if err := Add(context.Background(), dir, "dir/file.txt"); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	got, err := os.ReadFile(marker)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(got)) != "add -- dir/file.txt" {
		t.Fatalf("unexpected git args: %q", got)
	}
}

func TestStageString(t *testing.T) {
	if StageBase.String() != "base" || Stage(7).String() != "stage7" {
		t.Fatalf("unexpected stage names")
	}
}

func withFakeGit(t *testing.T, script string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "git")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake git: %v", err)
	}

	original := os.Getenv("PATH")
	pathEnv := strings.Join([]string{dir, original}, string(os.PathListSeparator))
	t.Setenv("PATH", pathEnv)
}
