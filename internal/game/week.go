package game

import (
	"fmt"
	"log/slog"
)

// careerThresholds[i] is the lifetime stream count needed for career level i+1.
var careerThresholds = [MaxCareerLevel]int64{
	0,
	25_000,
	100_000,
	500_000,
	2_000_000,
	5_000_000,
	15_000_000,
	50_000_000,
	150_000_000,
	500_000_000,
}

func careerLevelFor(streams int64) int {
	level := 1
	for i, need := range careerThresholds {
		if streams >= need {
			level = i + 1
		}
	}
	return level
}

// Engine runs the weekly transition. It holds no per-game state and is safe to share.
type Engine struct {
	tuning Tuning
	log    *slog.Logger
}

func NewEngine(tuning Tuning, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{tuning: tuning, log: logger}
}

func (e *Engine) Tuning() Tuning {
	return e.tuning
}

// AdvanceWeek computes the state one week after state. The input is never modified; every
// random draw comes from r, so the same state and seed always give the same numbers.
func (e *Engine) AdvanceWeek(state *State, r Rand) (*State, WeekReport) {
	t := e.tuning
	prev := state.Clone()
	if prev == nil {
		prev = &State{}
	}
	normalize(prev)
	next := prev.Clone()
	week := prev.Week + 1
	next.Week = week
	var events []Event

	active, past, evs := t.advanceTrends(prev, week, r)
	next.ActiveTrends, next.PastTrends = active, past
	events = append(events, evs...)

	songs, growth, evs := t.advanceSongs(prev.Songs, week, prev.Stats, r)
	events = append(events, evs...)

	added := make(map[string]int64)
	for i, s := range songs {
		g := growth[s.ID]
		if g <= 0 {
			continue
		}
		alloc := AllocateStreams(AllocationInput{
			Artist:      prev.PlayerName,
			Growth:      g,
			Platforms:   s.ReleasePlatforms,
			Performance: s.PerformanceType,
			Trends:      next.ActiveTrends,
			Week:        week,
		}, r)
		if songs[i].PlatformStreams == nil {
			songs[i].PlatformStreams = make(map[string]int64, len(alloc))
		}
		addCounts(songs[i].PlatformStreams, alloc)
		addCounts(added, alloc)
	}

	rivals := t.advanceRappers(prev, songs, growth, next.ActiveTrends, week, r)
	next.Rappers = rivals.rappers
	next.Songs = rivals.songs
	addCounts(added, rivals.playerStreams)

	for i, res := range t.advanceAlbums(prev, next.ActiveTrends, week, r) {
		next.Albums[i] = res.Album
		if res.Err != nil {
			e.log.Warn("album update failed", "album_id", res.Album.ID, "week", week, "err", res.Err)
			events = append(events, Event{Kind: EventAlbumFailed, Week: week, Subject: res.Album.ID, Message: res.Album.Title + " could not be updated this week"})
			continue
		}
		addCounts(added, res.Added)
	}

	var revenueBefore, revenueAfter int64
	for _, p := range prev.Platforms {
		revenueBefore += nonNegative(p.RevenueCents)
	}
	next.Platforms = mergePlatformStreams(prev.Platforms, added, next.ActiveTrends, week, r)
	for _, p := range next.Platforms {
		revenueAfter += p.RevenueCents
	}
	next.Stats.WealthCents += revenueAfter - revenueBefore

	released := 0
	for _, s := range prev.Songs {
		if s.IsPlayerSong() && s.Released && s.ReleaseDate == prev.Week {
			released++
		}
	}
	next.Social = advanceSocial(prev.Social, released, week)

	requests, evs := t.rollFeatureRequests(prev, next.Rappers, next.totalListeners(), week, r)
	next.FeatureRequests = requests
	events = append(events, evs...)

	ledger := WeeklyStats{
		Week:          week,
		TotalStreams:  next.totalStreams(),
		Followers:     next.totalFollowers(),
		Listeners:     next.totalListeners(),
		WealthCents:   next.Stats.WealthCents,
		Reputation:    next.Stats.Reputation,
		SongsReleased: released,
	}
	next.WeeklyStats = append(next.WeeklyStats, ledger)

	hype, evs := DecayHype(prev.HypeEvents, week)
	next.HypeEvents = hype
	events = append(events, evs...)

	merch, income, evs := advanceMerch(prev.Merch, next.totalFollowers(), prev.Stats, week, r)
	next.Merch = merch
	next.Stats.WealthCents += income
	events = append(events, evs...)

	events = append(events, t.advanceControversies(prev, next, week, r)...)
	events = append(events, t.advanceRandomEvents(next, week, r)...)

	concerts, income, evs := resolveConcerts(prev.Concerts, next.Songs, prev.Stats, week, r)
	next.Concerts = concerts
	next.Stats.WealthCents += income
	for _, c := range concerts {
		if c.Week != week || !c.Completed {
			continue
		}
		next.Stats.StagePower = clampFloat(next.Stats.StagePower+1, 0, 100)
		if c.Quality >= 70 {
			next.Stats.Reputation = clampFloat(next.Stats.Reputation+1, 0, 100)
		}
	}
	events = append(events, evs...)

	tours, income, reputation, evs := advanceTours(prev.Tours, prev.Stats, week, r)
	next.Tours = tours
	next.Stats.WealthCents += income
	next.Stats.Reputation = clampFloat(next.Stats.Reputation+reputation, 0, 100)
	events = append(events, evs...)

	events = append(events, advanceCareer(next, week)...)
	next.Stats.Energy = next.Stats.MaxEnergy

	e.log.Debug("week advanced", "player", next.PlayerName, "week", week, "events", len(events))
	return next, WeekReport{Week: week, Stats: ledger, Events: events}
}

// advanceCareer raises the career level from lifetime streams and unlocks the platforms
// the new level allows. Levels never go down.
func advanceCareer(s *State, week int) []Event {
	var events []Event
	level := careerLevelFor(s.totalStreams())
	if level > s.Stats.CareerLevel {
		s.Stats.CareerLevel = level
		s.Stats.MaxEnergy += 5
		events = append(events, Event{Kind: EventCareerLevelUp, Week: week, Message: fmt.Sprintf("Career level %d reached", level)})
	}
	for i, p := range s.Platforms {
		if p.IsUnlocked || p.UnlockLevel > s.Stats.CareerLevel {
			continue
		}
		s.Platforms[i].IsUnlocked = true
		events = append(events, Event{Kind: EventPlatformUnlocked, Week: week, Subject: p.Name, Message: p.Name + " is now available"})
	}
	return events
}
