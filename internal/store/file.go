package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"stardom/internal/game"
)

// Dir keeps one snapshot file per game in a directory.
type Dir struct {
	path string
}

func OpenDir(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, ".stardom", "saves")
	}
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) file(id string) string {
	return filepath.Join(d.path, id+".json")
}

func (d *Dir) Load(ctx context.Context, id string) (*game.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.file(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, game.ErrGameNotFound
		}
		return nil, fmt.Errorf("read save: %w", err)
	}
	return decodeSnapshot(id, data)
}

func (d *Dir) Save(ctx context.Context, id string, st *game.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	data, err := encodeSnapshot(id, st)
	if err != nil {
		return err
	}
	tmp := d.file(id) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	if err := os.Rename(tmp, d.file(id)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace save: %w", err)
	}
	return nil
}

func (d *Dir) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if validateID(id) == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (d *Dir) Close() error { return nil }
