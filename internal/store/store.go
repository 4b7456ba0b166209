package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"stardom/internal/game"

	"golang.org/x/crypto/blake2b"
)

const snapshotVersion = 1

var ErrCorrupt = errors.New("save snapshot is corrupt")

var gameIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Backend is a game.Store that holds a connection or handle.
type Backend interface {
	game.Store
	Close() error
}

// snapshot wraps the verbatim state JSON with a checksum so a truncated or hand-edited save
// is rejected on load instead of replayed.
type snapshot struct {
	Version  int             `json:"version"`
	GameID   string          `json:"game_id"`
	SavedAt  time.Time       `json:"saved_at"`
	Checksum string          `json:"checksum"`
	State    json.RawMessage `json:"state"`
}

func checksum(state []byte) string {
	sum := blake2b.Sum256(state)
	return hex.EncodeToString(sum[:])
}

func encodeSnapshot(id string, st *game.State) ([]byte, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: nil state", game.ErrInvalidInput)
	}
	state, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return json.Marshal(snapshot{
		Version:  snapshotVersion,
		GameID:   id,
		SavedAt:  time.Now().UTC(),
		Checksum: checksum(state),
		State:    state,
	})
}

func decodeSnapshot(id string, data []byte) (*game.State, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, snap.Version)
	}
	if snap.GameID != id {
		return nil, fmt.Errorf("%w: snapshot belongs to %q", ErrCorrupt, snap.GameID)
	}
	var st game.State
	if err := json.Unmarshal(snap.State, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	// jsonb reorders keys, so the checksum covers the re-encoded state.
	canonical, err := json.Marshal(&st)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if checksum(canonical) != snap.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return &st, nil
}

func validateID(id string) error {
	if !gameIDRE.MatchString(id) {
		return fmt.Errorf("%w: game id %q", game.ErrInvalidInput, id)
	}
	return nil
}

// Open picks a backend by driver name: "file" (dsn is a directory), "sqlite" (dsn is a
// database path) or "postgres" (dsn is a connection url).
func Open(ctx context.Context, driver, dsn string) (Backend, error) {
	dsn = strings.TrimSpace(dsn)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "file":
		return OpenDir(dsn)
	case "sqlite":
		return OpenSQLite(dsn)
	case "postgres", "postgresql":
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
