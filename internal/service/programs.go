package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mbuchner/millwright/internal/model"
	"github.com/mbuchner/millwright/internal/post"
	"github.com/mbuchner/millwright/internal/store"
	"github.com/mbuchner/millwright/internal/toolpath"
)

// ProgramStore is the database surface the program service needs.
type ProgramStore interface {
	GetProgram(ctx context.Context, id string) (*store.ProgramRecord, error)
	GetProgramBySlug(ctx context.Context, slug string) (*store.ProgramRecord, error)
	ListPrograms(ctx context.Context, limit int) ([]store.ProgramRecord, error)
	SearchPrograms(ctx context.Context, query string, limit int) ([]store.ProgramRecord, error)
	DeleteProgram(ctx context.Context, ids ...string) (int, error)
	ProgramStats(ctx context.Context) (*store.Stats, error)
}

// ProgramService reads and manages saved programs.
type ProgramService struct {
	store ProgramStore
}

func NewProgramService(st ProgramStore) *ProgramService {
	return &ProgramService{store: st}
}

// Resolve finds a program by ID first, then by slug. Users mostly pass
// slugs, but IDs win on the off chance a slug shadows one.
func (s *ProgramService) Resolve(ctx context.Context, ref string) (*store.ProgramRecord, error) {
	if ref == "" {
		return nil, fmt.Errorf("program reference required")
	}
	rec, err := s.store.GetProgram(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("get program %q: %w", ref, err)
	}
	if rec != nil {
		return rec, nil
	}
	rec, err = s.store.GetProgramBySlug(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("get program %q: %w", ref, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("program %q: %w", ref, store.ErrNotFound)
	}
	return rec, nil
}

func (s *ProgramService) List(ctx context.Context, limit int) ([]store.ProgramRecord, error) {
	return s.store.ListPrograms(ctx, limit)
}

func (s *ProgramService) Search(ctx context.Context, query string, limit int) ([]store.ProgramRecord, error) {
	if query == "" {
		return s.store.ListPrograms(ctx, limit)
	}
	return s.store.SearchPrograms(ctx, query, limit)
}

// Delete removes programs by ID or slug and reports how many went away.
func (s *ProgramService) Delete(ctx context.Context, refs ...string) (int, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		rec, err := s.Resolve(ctx, ref)
		if err != nil {
			return 0, err
		}
		ids = append(ids, store.MustRecordIDString(rec.ID))
	}
	return s.store.DeleteProgram(ctx, ids...)
}

func (s *ProgramService) Stats(ctx context.Context) (*store.Stats, error) {
	return s.store.ProgramStats(ctx)
}

// Export writes a program's NC text to path. An empty path means the
// controller default file name in the working directory; a directory
// path gets the default name appended.
func (s *ProgramService) Export(ctx context.Context, ref, path string) (string, error) {
	rec, err := s.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = post.DefaultFileName
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, post.DefaultFileName)
	}
	if err := os.WriteFile(path, []byte(rec.Text), 0o644); err != nil {
		return "", fmt.Errorf("write program: %w", err)
	}
	return path, nil
}

// Setup decodes a program's stored setup.
func (s *ProgramService) Setup(ctx context.Context, ref string) (*model.Setup, *store.ProgramRecord, error) {
	rec, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	setup, err := rec.DecodeSetup()
	if err != nil {
		return nil, nil, fmt.Errorf("program %q: %w", ref, err)
	}
	return setup, rec, nil
}

// Toolpath rebuilds the toolpath curves for a stored program.
func (s *ProgramService) Toolpath(ctx context.Context, ref string, opts toolpath.Options) (*model.Setup, toolpath.ProgramPath, error) {
	setup, _, err := s.Setup(ctx, ref)
	if err != nil {
		return nil, toolpath.ProgramPath{}, err
	}
	return setup, toolpath.BuildProgram(setup.Operations, opts), nil
}
