package game

import "math"

// ClassifyPerformance decides a released song's performance state for week. It draws from
// r only, so the same song, week, stats and seed always give the same answer.
func ClassifyPerformance(song Song, week int, stats PlayerStats, r Rand) PerformanceType {
	current := song.PerformanceType
	if current == "" {
		current = PerformanceNormal
	}
	age := week - song.ReleaseDate
	elapsed := week - song.PerformanceStatusWeek

	if current == PerformanceViral || current == PerformanceComeback {
		if elapsed > ViralDurationWeeks {
			return PerformanceNormal
		}
		return current
	}

	if current == PerformanceFlop {
		if chance(r, comebackProbability(stats)) {
			return PerformanceComeback
		}
		return PerformanceFlop
	}

	firstWeek := age <= 1
	if firstWeek || current == PerformanceNormal {
		if chance(r, flopProbability(stats)) {
			return PerformanceFlop
		}
	}

	if age <= ViralWindowWeeks {
		if chance(r, viralProbability(song, stats)) {
			return PerformanceViral
		}
	}
	return current
}

func flopProbability(stats PlayerStats) float64 {
	return math.Max(0.01, 0.05-(stat(stats.Reputation, 0)+stat(stats.Creativity, 0))/500)
}

func comebackProbability(stats PlayerStats) float64 {
	return 0.01 + stat(stats.Marketing, 0)/400
}

func viralProbability(song Song, stats PlayerStats) float64 {
	tierBonus := float64(clampTier(song.Tier)-1) * 0.02
	reputationBonus := stat(stats.Reputation, 0) / 1000
	marketingBonus := stat(stats.Marketing, 0) / 1000
	featureBonus := math.Min(0.1, 0.02*float64(len(song.Featuring)))
	return 0.02 + tierBonus + reputationBonus + marketingBonus + featureBonus
}

// popularityWindow is how many weeks a song keeps earning before it expires.
func (t Tuning) popularityWindow(song Song) float64 {
	p := t.tier(song.Tier)
	window := p.WindowWeeks * p.WindowMultiplier
	if song.PerformanceType == PerformanceFlop && song.Tier <= 2 {
		window *= 0.5
	}
	return window
}

// Expired reports whether song has run out its window at week. Tier-5 songs never expire
// and enough hype keeps any released song alive.
func (t Tuning) Expired(song Song, week int) bool {
	if !song.Released || song.ReleaseDate == 0 {
		return true
	}
	if clampTier(song.Tier) == MaxTier {
		return false
	}
	if finite(song.Hype, 0) >= t.HypeReactivation {
		return false
	}
	age := float64(week - song.ReleaseDate)
	return age > t.popularityWindow(song)
}

// GrowthFor returns the streams song gains at week. The result is never negative, never
// above the tier's weekly cap and never pushes the song past its lifetime ceiling.
func (t Tuning) GrowthFor(song Song, week int, stats PlayerStats, r Rand) int64 {
	if t.Expired(song, week) {
		return 0
	}
	p := t.tier(song.Tier)
	streams := float64(nonNegative(song.Streams))
	maxStreams := float64(p.MaxStreams)
	if streams >= maxStreams {
		return 0
	}
	age := week - song.ReleaseDate
	if age < 0 {
		age = 0
	}
	window := t.popularityWindow(song)

	var raw float64
	switch {
	case age <= 2:
		raw = p.DiscoveryBase + p.DiscoverySlope*float64(age)
	case float64(age) <= 0.6*window && streams < 0.7*maxStreams:
		raw = math.Max(p.DiscoveryBase, streams*p.ViralPhaseRate) * uniform(r, 0.8, 1.2)
	default:
		remaining := clampFloat(1-streams/maxStreams, 0, 1)
		raw = math.Max(streams*p.ViralPhaseRate*remaining, p.DiscoveryBase*0.1)
	}

	raw *= 0.7 + 1.5*stat(stats.Marketing, 0)/100
	raw *= 0.8 + 0.9*stat(stats.FanLoyalty, 0)/100
	if clampTier(song.Tier) != MaxTier {
		decay := 0.92
		if song.PerformanceType == PerformanceComeback {
			decay = 0.96
		}
		raw *= math.Pow(decay, float64(age))
	}
	raw *= 1 + 0.15*float64(len(song.Featuring))
	raw *= 1 + clampFloat(song.Hype, 0, 1000)/100
	raw *= performanceMultiplier(song, r)

	growth := int64(math.Floor(finite(raw, 0)))
	growth = clampInt64(growth, 0, p.WeeklyCap)
	if room := p.MaxStreams - int64(streams); growth > room {
		growth = room
	}
	return growth
}

func performanceMultiplier(song Song, r Rand) float64 {
	switch song.PerformanceType {
	case PerformanceViral:
		return uniform(r, 3, 8)
	case PerformanceFlop:
		if song.Tier <= 2 {
			return 0.1
		}
		return 0.2
	case PerformanceComeback:
		return uniform(r, 2, 4)
	default:
		return 1
	}
}

type songOutcome struct {
	song   Song
	growth int64
}

// advanceSongs reclassifies and grows every released player song, returning the new song
// list (order preserved) and each song's growth keyed by id.
func (t Tuning) advanceSongs(prev []Song, week int, stats PlayerStats, r Rand) ([]Song, map[string]int64, []Event) {
	out := make([]Song, len(prev))
	growth := make(map[string]int64)
	var events []Event
	for i, s := range prev {
		res, evs := t.advanceSong(s, week, stats, r)
		out[i] = res.song
		if res.growth > 0 {
			growth[res.song.ID] = res.growth
		}
		events = append(events, evs...)
	}
	return out, growth, events
}

func (t Tuning) advanceSong(s Song, week int, stats PlayerStats, r Rand) (songOutcome, []Event) {
	s = cloneSong(s)
	s.Streams = nonNegative(s.Streams)
	s.Hype = clampFloat(s.Hype, 0, 1000)
	if !s.IsPlayerSong() {
		return songOutcome{song: s}, nil
	}
	if !s.Released || s.ReleaseDate == 0 {
		s.IsActive = false
		s.LastWeekStreams = 0
		return songOutcome{song: s}, nil
	}

	var events []Event
	if t.Expired(s, week) {
		if s.IsActive {
			events = append(events, Event{Kind: EventSongExpired, Week: week, Subject: s.ID, Message: s.Title + " has dropped out of rotation"})
		}
		s.IsActive = false
		s.LastWeekStreams = 0
		s.Hype /= 2
		return songOutcome{song: s}, events
	}
	s.IsActive = true

	next := ClassifyPerformance(s, week, stats, r)
	if next != s.PerformanceType {
		s.PerformanceType = next
		s.PerformanceStatusWeek = week
		if ev, ok := performanceEvent(s, week); ok {
			events = append(events, ev)
		}
	}

	g := t.GrowthFor(s, week, stats, r)
	s.Streams += g
	s.LastWeekStreams = g
	s.Hype /= 2
	return songOutcome{song: s, growth: g}, events
}

func performanceEvent(s Song, week int) (Event, bool) {
	switch s.PerformanceType {
	case PerformanceViral:
		return Event{Kind: EventSongViral, Week: week, Subject: s.ID, Message: s.Title + " is going viral"}, true
	case PerformanceFlop:
		return Event{Kind: EventSongFlop, Week: week, Subject: s.ID, Message: s.Title + " flopped"}, true
	case PerformanceComeback:
		return Event{Kind: EventSongComeback, Week: week, Subject: s.ID, Message: s.Title + " is making a comeback"}, true
	default:
		return Event{}, false
	}
}
