package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// CreateSong records a new unreleased song, charging the tier's production cost, each
// featured rapper's fee and the session's energy.
func CreateSong(s *State, in CreateSongInput) (Song, error) {
	if err := ValidateTitle(in.Title); err != nil {
		return Song{}, err
	}
	if err := ValidateTier(in.Tier); err != nil {
		return Song{}, err
	}
	if feature := tierFeature(in.Tier); feature != "" && !CheckFeatureAccess(feature, s.Subscription.SubscriptionType) {
		return Song{}, ErrFeatureLocked
	}

	cost := songCostCents(in.Tier)
	featuring := make([]string, 0, len(in.Featuring))
	seen := make(map[string]bool, len(in.Featuring))
	for _, id := range in.Featuring {
		if seen[id] {
			continue
		}
		seen[id] = true
		rapper, ok := s.rapperByID(id)
		if !ok {
			return Song{}, fmt.Errorf("%w: %s", ErrRapperNotFound, id)
		}
		if rapper.Relationship == RelationshipEnemy {
			return Song{}, fmt.Errorf("%w: %s refuses to work with you", ErrInvalidInput, rapper.Name)
		}
		cost += FeatureCost(rapper, in.Tier)
		featuring = append(featuring, id)
	}
	if s.Stats.Energy < songEnergyCost {
		return Song{}, ErrInsufficientEnergy
	}
	if s.Stats.WealthCents < cost {
		return Song{}, ErrInsufficientFunds
	}

	song := Song{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(in.Title),
		Tier:            in.Tier,
		PerformanceType: PerformanceNormal,
		CreatedWeek:     s.Week,
	}
	if len(featuring) > 0 {
		song.Featuring = featuring
	}
	s.Songs = append(s.Songs, song)
	s.Stats.WealthCents -= cost
	s.Stats.Energy -= songEnergyCost
	return song, nil
}

func markReleased(song *Song, week int, platforms []string) {
	if week < 1 {
		week = 1
	}
	song.Released = true
	song.ReleaseDate = week
	song.IsActive = true
	song.PerformanceType = PerformanceNormal
	song.PerformanceStatusWeek = week
	song.Streams = 0
	song.LastWeekStreams = 0
	song.ReleasePlatforms = cloneStrings(platforms)
	counts := make(map[string]int64, len(platforms))
	for _, p := range platforms {
		counts[p] = 0
	}
	song.PlatformStreams = counts
}

// releasePlatforms keeps the requested platforms that are unlocked. No request means every
// unlocked platform.
func releasePlatforms(s *State, requested []string) ([]string, error) {
	unlocked := s.unlockedPlatforms()
	if len(requested) == 0 {
		if len(unlocked) == 0 {
			return nil, fmt.Errorf("%w: no streaming platform unlocked", ErrInvalidInput)
		}
		return unlocked, nil
	}
	open := make(map[string]bool, len(unlocked))
	for _, p := range unlocked {
		open[p] = true
	}
	var out []string
	for _, p := range knownPlatforms(requested) {
		if !open[p] {
			return nil, fmt.Errorf("%w: %s is still locked", ErrFeatureLocked, p)
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: unknown platforms %v", ErrInvalidInput, requested)
	}
	return out, nil
}

// ReleaseSong puts a song out on the chosen platforms. A pending announcement for the song
// is completed and its hype carried onto the song; the returned multiplier is informational.
func ReleaseSong(s *State, in ReleaseSongInput) (float64, error) {
	si := s.songIndex(in.SongID)
	if si < 0 {
		return 0, ErrSongNotFound
	}
	song := s.Songs[si]
	if !song.IsPlayerSong() {
		return 0, ErrSongNotFound
	}
	if song.Released {
		return 0, ErrAlreadyReleased
	}
	if title := strings.TrimSpace(in.Title); title != "" {
		if err := ValidateTitle(title); err != nil {
			return 0, err
		}
		song.Title = title
	}
	platforms, err := releasePlatforms(s, in.Platforms)
	if err != nil {
		return 0, err
	}
	if s.Stats.Energy < releaseEnergyCost {
		return 0, ErrInsufficientEnergy
	}
	if icon := strings.TrimSpace(in.Icon); icon != "" {
		song.Icon = icon
	}
	markReleased(&song, s.Week, platforms)

	var multiplier float64
	if ev, ok := hypeForRelated(s.HypeEvents, song.ID); ok {
		s.HypeEvents, s.PastHypeEvents, multiplier, _ = CompleteRelease(s.HypeEvents, s.PastHypeEvents, ev.ID)
		song.Hype = math.Max(song.Hype, ev.HypeLevel)
	}
	s.Songs[si] = song
	s.Stats.Energy -= releaseEnergyCost
	return multiplier, nil
}
