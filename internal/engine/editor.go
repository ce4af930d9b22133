package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/chojs23/mergepane/internal/merge"
)

// EditorCommand writes lines to a temp file named after name and prepares
// $EDITOR (vi when unset) on it. The command is not started; callers run it
// with the terminal attached and then call finish to read the edited lines
// back. finish always removes the temp file.
func EditorCommand(name string, lines []string) (*exec.Cmd, func() ([]string, error), error) {
	dir, err := os.MkdirTemp("", "mergepane-")
	if err != nil {
		return nil, nil, fmt.Errorf("create temp dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, []byte(merge.JoinLines(lines)), 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, nil, fmt.Errorf("write temp file: %w", err)
	}

	editor := os.Getenv("EDITOR")
	if strings.TrimSpace(editor) == "" {
		editor = "vi"
	}
	// Allow editors with flags, e.g. "code --wait".
	argv := strings.Fields(editor)
	cmd := exec.Command(argv[0], append(argv[1:], path)...)

	finish := func() ([]string, error) {
		defer os.RemoveAll(dir)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read edited file: %w", err)
		}
		return merge.SplitLines(string(data)), nil
	}
	return cmd, finish, nil
}
