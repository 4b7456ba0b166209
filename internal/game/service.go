package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists whole game snapshots by save-slot id. Load returns ErrGameNotFound for an
// unknown id.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, s *State) error
	List(ctx context.Context) ([]string, error)
}

// Publisher receives every week report after it has been saved.
type Publisher interface {
	Publish(ctx context.Context, gameID, player string, report WeekReport) error
}

type StockMerchInput struct {
	Name       string
	PriceCents int64
	CostCents  int64
	Quantity   int64
}

type Service struct {
	store  Store
	engine *Engine
	pub    Publisher
	log    *slog.Logger
	mu     sync.Mutex
	rand   *mathrand.Rand
}

func NewService(store Store, engine *Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = NewEngine(DefaultTuning(), logger)
	}
	return &Service{
		store:  store,
		engine: engine,
		log:    logger,
		rand:   mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

// SetPublisher attaches a sink for week reports. nil disables publishing.
func (s *Service) SetPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pub = p
}

// Seed makes every later random draw reproducible.
func (s *Service) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rand = NewRand(seed)
}

func (s *Service) NewGame(ctx context.Context, in NewGameInput) (string, *State, error) {
	if err := ValidateTitle(in.PlayerName); err != nil {
		return "", nil, fmt.Errorf("player name: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var r Rand = s.rand
	if in.Seed != 0 {
		r = NewRand(in.Seed)
	}
	st := NewState(in, r)
	id := uuid.NewString()
	if err := s.store.Save(ctx, id, st); err != nil {
		return "", nil, fmt.Errorf("save game: %w", err)
	}
	s.log.Info("game created", "game_id", id, "player", st.PlayerName, "subscription", st.Subscription.SubscriptionType)
	return id, st, nil
}

func (s *Service) Game(ctx context.Context, id string) (*State, error) {
	return s.store.Load(ctx, id)
}

func (s *Service) ListGames(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// update loads the game, applies fn to a copy and saves the copy only if fn succeeds, so a
// rejected action never changes the save.
func (s *Service) update(ctx context.Context, id string, fn func(st *State) error) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	next := cur.Clone()
	normalize(next)
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, id, next); err != nil {
		return nil, fmt.Errorf("save game: %w", err)
	}
	return next, nil
}

func (s *Service) AdvanceWeek(ctx context.Context, id string) (WeekReport, error) {
	s.mu.Lock()
	cur, err := s.store.Load(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return WeekReport{}, err
	}
	next, report := s.engine.AdvanceWeek(cur, s.rand)
	if err := s.store.Save(ctx, id, next); err != nil {
		s.mu.Unlock()
		return WeekReport{}, fmt.Errorf("save game: %w", err)
	}
	pub := s.pub
	s.mu.Unlock()

	s.log.Info("week advanced",
		"game_id", id,
		"week", report.Week,
		"streams", report.Stats.TotalStreams,
		"wealth_cents", report.Stats.WealthCents,
		"events", len(report.Events),
	)
	if pub != nil {
		if err := pub.Publish(ctx, id, next.PlayerName, report); err != nil {
			s.log.Warn("publish week report failed", "game_id", id, "err", err)
		}
	}
	return report, nil
}

// AdvanceAll advances every stored game by one week. A game that fails is logged and
// skipped. It returns the reports of the games that advanced, keyed by id.
func (s *Service) AdvanceAll(ctx context.Context) (map[string]WeekReport, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	out := make(map[string]WeekReport, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		report, err := s.AdvanceWeek(ctx, id)
		if err != nil {
			s.log.Error("advance week failed", "game_id", id, "err", err)
			continue
		}
		out[id] = report
	}
	return out, nil
}

func (s *Service) CreateSong(ctx context.Context, id string, in CreateSongInput) (Song, error) {
	var out Song
	_, err := s.update(ctx, id, func(st *State) error {
		song, err := CreateSong(st, in)
		out = song
		return err
	})
	return out, err
}

func (s *Service) ReleaseSong(ctx context.Context, id string, in ReleaseSongInput) (float64, error) {
	var mult float64
	_, err := s.update(ctx, id, func(st *State) error {
		m, err := ReleaseSong(st, in)
		mult = m
		return err
	})
	return mult, err
}

func (s *Service) CreateAlbum(ctx context.Context, id string, in CreateAlbumInput) (string, error) {
	var albumID string
	_, err := s.update(ctx, id, func(st *State) error {
		a, err := CreateAlbum(st, in)
		albumID = a
		return err
	})
	return albumID, err
}

func (s *Service) CreateDeluxeAlbum(ctx context.Context, id string, in CreateDeluxeInput) (string, error) {
	var albumID string
	_, err := s.update(ctx, id, func(st *State) error {
		a, err := CreateDeluxeAlbum(st, in)
		albumID = a
		return err
	})
	return albumID, err
}

func (s *Service) CreateRemixAlbum(ctx context.Context, id string, in CreateRemixInput) (string, error) {
	var albumID string
	_, err := s.update(ctx, id, func(st *State) error {
		a, err := CreateRemixAlbum(st, in)
		albumID = a
		return err
	})
	return albumID, err
}

func (s *Service) ReleaseAlbum(ctx context.Context, id, albumID string) (float64, error) {
	var mult float64
	_, err := s.update(ctx, id, func(st *State) error {
		m, err := ReleaseAlbum(st, albumID, s.rand)
		mult = m
		return err
	})
	return mult, err
}

func (s *Service) RequestFeature(ctx context.Context, id, rapperID string, tier int, title string) (FeatureOutcome, error) {
	var out FeatureOutcome
	_, err := s.update(ctx, id, func(st *State) error {
		res, err := RequestFeature(st, rapperID, tier, title, s.rand)
		out = res
		return err
	})
	return out, err
}

func (s *Service) RespondToFeatureRequest(ctx context.Context, id, rapperID string, accept bool) (Event, error) {
	var out Event
	_, err := s.update(ctx, id, func(st *State) error {
		ev, err := RespondToFeatureRequest(st, rapperID, accept)
		out = ev
		return err
	})
	return out, err
}

func (s *Service) ResolveRandomEvent(ctx context.Context, id, eventID string, optionIndex int) (Event, error) {
	var out Event
	_, err := s.update(ctx, id, func(st *State) error {
		ev, err := ResolveRandomEvent(st, eventID, optionIndex)
		out = ev
		return err
	})
	return out, err
}

func (s *Service) RespondToControversy(ctx context.Context, id, controversyID string, responseIndex int) (Event, error) {
	var out Event
	_, err := s.update(ctx, id, func(st *State) error {
		ev, err := RespondToControversy(st, controversyID, responseIndex)
		out = ev
		return err
	})
	return out, err
}

func (s *Service) AnnounceRelease(ctx context.Context, id string, in AnnounceInput) (HypeEvent, error) {
	var out HypeEvent
	_, err := s.update(ctx, id, func(st *State) error {
		ev, err := AnnounceRelease(st, in)
		out = ev
		return err
	})
	return out, err
}

func (s *Service) PromoteHype(ctx context.Context, id, hypeID string, spendCents int64) (HypeEvent, error) {
	var out HypeEvent
	_, err := s.update(ctx, id, func(st *State) error {
		ev, err := PromoteHype(st, hypeID, spendCents)
		out = ev
		return err
	})
	return out, err
}

func (s *Service) ScheduleConcert(ctx context.Context, id string, in ScheduleConcertInput) (Concert, error) {
	var out Concert
	_, err := s.update(ctx, id, func(st *State) error {
		c, err := ScheduleConcert(st, in)
		out = c
		return err
	})
	return out, err
}

func (s *Service) StartTour(ctx context.Context, id string, in StartTourInput) (Tour, error) {
	var out Tour
	_, err := s.update(ctx, id, func(st *State) error {
		t, err := StartTour(st, in)
		out = t
		return err
	})
	return out, err
}

func (s *Service) PostSocial(ctx context.Context, id, platform string) (SocialPlatform, error) {
	var out SocialPlatform
	_, err := s.update(ctx, id, func(st *State) error {
		p, err := PostSocial(st, platform, s.rand)
		out = p
		return err
	})
	return out, err
}

func (s *Service) StockMerch(ctx context.Context, id string, in StockMerchInput) (MerchItem, error) {
	var out MerchItem
	_, err := s.update(ctx, id, func(st *State) error {
		m, err := StockMerch(st, in.Name, in.PriceCents, in.CostCents, in.Quantity)
		out = m
		return err
	})
	return out, err
}

// SaveGame exports the save verbatim as JSON.
func (s *Service) SaveGame(ctx context.Context, id string) ([]byte, error) {
	st, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(st, "", "  ")
}

// LoadGame imports a JSON save into slot id, or into a new slot when id is empty.
func (s *Service) LoadGame(ctx context.Context, id string, data []byte) (string, *State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return "", nil, fmt.Errorf("%w: save is not valid JSON: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(st.PlayerName) == "" {
		return "", nil, fmt.Errorf("%w: save has no player name", ErrInvalidInput)
	}
	normalize(&st)
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, id, &st); err != nil {
		return "", nil, fmt.Errorf("save game: %w", err)
	}
	s.log.Info("game imported", "game_id", id, "player", st.PlayerName, "week", st.Week)
	return id, &st, nil
}
