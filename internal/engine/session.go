package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chojs23/mergepane/internal/gitutil"
	"github.com/chojs23/mergepane/internal/markers"
	"github.com/chojs23/mergepane/internal/merge"
	"github.com/chojs23/mergepane/internal/resolve"
)

const backupSuffix = ".mergepane.bak"

// ErrNoOutput is returned by Write for sessions opened without an output
// path.
var ErrNoOutput = errors.New("no output path")

var ErrUnknownSession = errors.New("unknown session")

// Input is everything needed to open a merge session.
type Input struct {
	Base  []string
	Left  []string
	Right []string

	OutputPath string
	// RepoRoot is set when OutputPath belongs to a git repository and may be
	// staged after a clean write.
	RepoRoot string
	Labels   markers.Labels
	// NoFinalNewline drops the newline after the last line when writing.
	NoFinalNewline bool
}

type Options struct {
	UndoDepth int
	Backup    bool
	Stage     bool
	Logger    zerolog.Logger
}

// Session is one file being merged.
type Session struct {
	ID    uuid.UUID
	Input Input

	store *resolve.Store
	opts  Options
	log   zerolog.Logger
}

func (s *Session) Store() *resolve.Store { return s.store }

// Document lays out the current base with unresolved conflicts as marker
// blocks.
func (s *Session) Document() markers.Document {
	doc := markers.FromChunks(s.store.Base(), s.store.Left(), s.store.Right(), s.store.Chunks(), s.Input.Labels)
	doc.NoFinalNewline = s.Input.NoFinalNewline
	return doc
}

// WriteResult describes what Write did.
type WriteResult struct {
	Path      string
	Backup    string
	Conflicts int
	Staged    bool
}

// Write renders the current base to the output path. Conflicts still present
// are written as diff3 marker blocks, and only a conflict-free result is
// staged.
func (s *Session) Write(ctx context.Context) (WriteResult, error) {
	path := s.Input.OutputPath
	if path == "" {
		return WriteResult{}, ErrNoOutput
	}

	doc := s.Document()
	res := WriteResult{Path: path, Conflicts: len(doc.Conflicts)}

	if s.opts.Backup {
		bak, err := backup(path)
		if err != nil {
			return WriteResult{}, err
		}
		res.Backup = bak
	}

	if err := os.WriteFile(path, markers.Render(doc), 0o644); err != nil {
		return WriteResult{}, fmt.Errorf("write output: %w", err)
	}

	if res.Conflicts == 0 && s.opts.Stage && s.Input.RepoRoot != "" {
		if err := gitutil.Add(ctx, s.Input.RepoRoot, path); err != nil {
			return res, fmt.Errorf("stage output: %w", err)
		}
		res.Staged = true
	}

	s.log.Info().
		Str("path", path).
		Int("conflicts", res.Conflicts).
		Bool("staged", res.Staged).
		Msg("wrote merge result")
	return res, nil
}

// backup copies an existing file aside. A missing file needs no backup.
func backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read output for backup: %w", err)
	}
	bak := path + backupSuffix
	if err := os.WriteFile(bak, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup %s: %w", filepath.Base(bak), err)
	}
	return bak, nil
}

// Registry owns the open sessions. It is created by the caller and passed
// to whatever needs to look sessions up by id. Sessions are opened, used and
// closed from one goroutine, so it does no locking.
type Registry struct {
	sessions map[uuid.UUID]*Session
	opts     Options
}

func NewRegistry(opts Options) *Registry {
	return &Registry{sessions: map[uuid.UUID]*Session{}, opts: opts}
}

// Open builds the initial chunk set for in and registers a session for it.
func (r *Registry) Open(in Input) (*Session, error) {
	id := uuid.New()
	log := r.opts.Logger.With().
		Str("session", id.String()).
		Str("path", in.OutputPath).
		Logger()

	var opts []resolve.Option
	opts = append(opts, resolve.WithLogger(log))
	if r.opts.UndoDepth != 0 {
		opts = append(opts, resolve.WithUndoDepth(r.opts.UndoDepth))
	}
	store, err := resolve.New(in.Base, in.Left, in.Right, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", in.OutputPath, err)
	}

	if in.Labels == (markers.Labels{}) {
		in.Labels = markers.DefaultLabels
	}
	s := &Session{ID: id, Input: in, store: store, opts: r.opts, log: log}

	r.sessions[id] = s

	log.Debug().
		Int("chunks", len(store.Chunks())).
		Int("conflicts", store.Unresolved()).
		Msg("session opened")
	return s, nil
}

func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Close(id uuid.UUID) { delete(r.sessions, id) }

func (r *Registry) Len() int { return len(r.sessions) }

// Side parses a side name as used on the command line.
func Side(name string) (merge.Side, error) {
	switch name {
	case "left":
		return merge.SideLeft, nil
	case "right":
		return merge.SideRight, nil
	}
	return 0, fmt.Errorf("invalid side %q (want left or right)", name)
}
