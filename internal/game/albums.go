package game

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

const (
	maxAlbumSongs = 30
	maxEPSongs    = 6

	albumRecencyWeeks = 26
	albumSaleStreams  = 1_500
)

var errAlbumCorrupt = errors.New("album data corrupt")

func knownAlbumType(t AlbumType) bool {
	switch t {
	case AlbumStandard, AlbumDeluxe, AlbumRemix, AlbumEP, AlbumCompilation:
		return true
	}
	return false
}

// playerSongIDs checks every id refers to a player-authored song and returns them
// deduplicated in the given order.
func playerSongIDs(s *State, ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		song, ok := s.songByID(id)
		if !ok || !song.IsPlayerSong() {
			return nil, fmt.Errorf("%w: %s", ErrSongNotFound, id)
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// CreateAlbum adds an unreleased standard, EP or compilation album.
func CreateAlbum(s *State, in CreateAlbumInput) (string, error) {
	if in.Type == "" {
		in.Type = AlbumStandard
	}
	switch in.Type {
	case AlbumStandard, AlbumEP, AlbumCompilation:
	default:
		return "", fmt.Errorf("%w: album type %q", ErrInvalidInput, in.Type)
	}
	if err := ValidateTitle(in.Title); err != nil {
		return "", err
	}
	ids, err := playerSongIDs(s, in.SongIDs)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: an album needs at least one song", ErrInvalidInput)
	}
	if in.Type == AlbumEP && len(ids) > maxEPSongs {
		return "", fmt.Errorf("%w: an EP holds at most %d songs", ErrInvalidInput, maxEPSongs)
	}
	if len(ids) > maxAlbumSongs {
		return "", fmt.Errorf("%w: an album holds at most %d songs", ErrInvalidInput, maxAlbumSongs)
	}
	return addAlbum(s, strings.TrimSpace(in.Title), in.Type, ids, ""), nil
}

// CreateDeluxeAlbum repackages a released standard album with extra songs.
func CreateDeluxeAlbum(s *State, in CreateDeluxeInput) (string, error) {
	pi := s.albumIndex(in.ParentAlbumID)
	if pi < 0 {
		return "", ErrAlbumNotFound
	}
	parent := s.Albums[pi]
	if parent.Type != AlbumStandard || !parent.Released {
		return "", fmt.Errorf("%w: deluxe editions need a released standard album", ErrInvalidInput)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = parent.Title + " (Deluxe)"
	}
	if err := ValidateTitle(title); err != nil {
		return "", err
	}
	extras, err := playerSongIDs(s, in.ExtraSongIDs)
	if err != nil {
		return "", err
	}
	inParent := make(map[string]bool, len(parent.SongIDs))
	for _, id := range parent.SongIDs {
		inParent[id] = true
	}
	ids := cloneStrings(parent.SongIDs)
	added := 0
	for _, id := range extras {
		if !inParent[id] {
			ids = append(ids, id)
			added++
		}
	}
	if added == 0 {
		return "", fmt.Errorf("%w: a deluxe edition needs at least one new song", ErrInvalidInput)
	}
	if len(ids) > maxAlbumSongs {
		return "", fmt.Errorf("%w: an album holds at most %d songs", ErrInvalidInput, maxAlbumSongs)
	}
	return addAlbum(s, title, AlbumDeluxe, ids, parent.ID), nil
}

// CreateRemixAlbum adds a remix edition of a released album with the same track list.
func CreateRemixAlbum(s *State, in CreateRemixInput) (string, error) {
	pi := s.albumIndex(in.ParentAlbumID)
	if pi < 0 {
		return "", ErrAlbumNotFound
	}
	parent := s.Albums[pi]
	if !parent.Released {
		return "", fmt.Errorf("%w: remix the album after it is out", ErrInvalidInput)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = parent.Title + " (Remixes)"
	}
	if err := ValidateTitle(title); err != nil {
		return "", err
	}
	return addAlbum(s, title, AlbumRemix, cloneStrings(parent.SongIDs), parent.ID), nil
}

func addAlbum(s *State, title string, typ AlbumType, songIDs []string, parentID string) string {
	a := Album{
		ID:              uuid.NewString(),
		Title:           title,
		Type:            typ,
		SongIDs:         songIDs,
		ParentAlbumID:   parentID,
		PlatformStreams: emptyPlatformCounts(),
		CreatedWeek:     s.Week,
	}
	s.Albums = append(s.Albums, a)
	return a.ID
}

// ReleaseAlbum puts an album out, rating it and releasing any of its songs that were not out
// yet. It returns the informational hype multiplier of a matching announcement (0 if none).
func ReleaseAlbum(s *State, albumID string, r Rand) (float64, error) {
	ai := s.albumIndex(albumID)
	if ai < 0 {
		return 0, ErrAlbumNotFound
	}
	a := s.Albums[ai]
	if a.Released {
		return 0, ErrAlreadyReleased
	}
	if len(a.SongIDs) == 0 {
		return 0, fmt.Errorf("%w: an album needs at least one song", ErrInvalidInput)
	}
	if s.Stats.Energy < releaseEnergyCost {
		return 0, ErrInsufficientEnergy
	}

	var tierSum float64
	var found int
	for _, id := range a.SongIDs {
		si := s.songIndex(id)
		if si < 0 {
			continue
		}
		found++
		tierSum += float64(clampTier(s.Songs[si].Tier))
	}
	if found == 0 {
		return 0, fmt.Errorf("%w: none of the album's songs exist", ErrInvalidInput)
	}
	avgTier := tierSum / float64(found)
	a.CriticalRating = clampFloat(avgTier*1.6+stat(s.Stats.Creativity, 0)/50+uniform(r, -1, 1), 0, 10)
	a.FanRating = clampFloat(avgTier*1.4+stat(s.Stats.FanLoyalty, 0)/40+stat(s.Stats.Reputation, 0)/100+uniform(r, -1, 1), 0, 10)
	a.Released = true
	a.ReleaseWeek = s.Week
	counts := emptyPlatformCounts()
	addCounts(counts, a.PlatformStreams)
	a.PlatformStreams = counts

	var multiplier float64
	if ev, ok := hypeForRelated(s.HypeEvents, a.ID); ok {
		s.HypeEvents, s.PastHypeEvents, multiplier, _ = CompleteRelease(s.HypeEvents, s.PastHypeEvents, ev.ID)
		for _, id := range a.SongIDs {
			if si := s.songIndex(id); si >= 0 {
				s.Songs[si].Hype = math.Max(s.Songs[si].Hype, ev.HypeLevel)
			}
		}
	}

	platforms := s.unlockedPlatforms()
	for _, id := range a.SongIDs {
		si := s.songIndex(id)
		if si < 0 || s.Songs[si].Released {
			continue
		}
		markReleased(&s.Songs[si], s.Week, platforms)
	}
	s.Albums[ai] = a
	s.Stats.Energy -= releaseEnergyCost
	return multiplier, nil
}

func albumQuality(a Album) float64 {
	return clampFloat((a.CriticalRating+a.FanRating)/2/10, 0, 1)
}

// AlbumStreamCap is the soft lifetime ceiling of a, scaled by quality and track count.
func (t Tuning) AlbumStreamCap(a Album) float64 {
	q := albumQuality(a)
	qualityFactor := 0.5 + q
	songCountFactor := math.Min(2, 0.5+float64(len(a.SongIDs))/10)
	return t.AlbumBaseCap * qualityFactor * songCountFactor
}

// AlbumGrowth is the streams a released album gains at week before platform allocation.
func (t Tuning) AlbumGrowth(a Album, week int, r Rand) int64 {
	if !a.Released {
		return 0
	}
	base := float64(a.Streams)
	ceiling := t.AlbumStreamCap(a)
	if ceiling <= 0 {
		return 0
	}
	if base >= 0.95*ceiling {
		return int64(math.Min(500, math.Floor(base*0.0005)))
	}

	n := float64(len(a.SongIDs))
	q := albumQuality(a)
	c := math.Min(1, n/10)
	weeks := float64(week - a.ReleaseWeek)
	rec := math.Max(0, 1-weeks/albumRecencyWeeks)
	rate := 0.005 + 0.02*q*c*rec

	g := math.Max(base*rate, 500*n*(0.5+q)*rec)
	g *= uniform(r, 0.9, 1.1)
	if frac := base / ceiling; frac >= 0.8 {
		g *= clampFloat(1-(frac-0.8)/0.15, 0, 1)
	}
	growth := int64(math.Floor(finite(g, 0)))
	if room := int64(ceiling - base); growth > room {
		growth = room
	}
	return nonNegative(growth)
}

func chartPosition(weekly int64) int {
	if weekly <= 0 {
		return 0
	}
	pos := 200 - int(35*math.Log10(float64(weekly)))
	if pos < 1 {
		return 1
	}
	if pos > 200 {
		return 0
	}
	return pos
}

func checkAlbum(a Album) error {
	if !knownAlbumType(a.Type) {
		return fmt.Errorf("%w: unknown type %q", errAlbumCorrupt, a.Type)
	}
	if a.Streams < 0 || a.Sales < 0 || a.RevenueCents < 0 {
		return fmt.Errorf("%w: negative counters", errAlbumCorrupt)
	}
	if math.IsNaN(a.CriticalRating) || math.IsInf(a.CriticalRating, 0) || math.IsNaN(a.FanRating) || math.IsInf(a.FanRating, 0) {
		return fmt.Errorf("%w: non-finite rating", errAlbumCorrupt)
	}
	return nil
}

// AlbumResult is the outcome of one album's weekly update. On Err, Album is the album as it
// was before the update.
type AlbumResult struct {
	Album Album
	Added map[string]int64
	Err   error
}

// AdvanceAlbum runs one album's weekly growth. A bad album never panics out; it comes back
// unchanged with Err set.
func (t Tuning) AdvanceAlbum(a Album, artist string, platforms []string, trends []MarketTrend, week int, r Rand) (res AlbumResult) {
	orig := a
	defer func() {
		if p := recover(); p != nil {
			res = AlbumResult{Album: orig, Err: fmt.Errorf("album %s: %v", orig.ID, p)}
		}
	}()
	if err := checkAlbum(a); err != nil {
		return AlbumResult{Album: orig, Err: fmt.Errorf("album %s: %w", a.ID, err)}
	}
	a = cloneAlbum(a)
	if !a.Released {
		return AlbumResult{Album: a}
	}
	growth := t.AlbumGrowth(a, week, r)
	alloc := AllocateStreams(AllocationInput{
		Artist:      artist,
		Growth:      growth,
		Platforms:   platforms,
		Performance: PerformanceNormal,
		Trends:      trends,
		Week:        week,
	}, r)

	counts := emptyPlatformCounts()
	addCounts(counts, a.PlatformStreams)
	addCounts(counts, alloc)
	a.PlatformStreams = counts

	a.Streams += growth
	a.LastWeekStreams = growth
	a.Sales = a.Streams / albumSaleStreams
	for name, v := range alloc {
		a.RevenueCents += revenueFor(name, v)
	}
	a.ChartPosition = chartPosition(growth)
	return AlbumResult{Album: a, Added: alloc}
}

// advanceAlbums updates every album independently. Album growth is credited to the album
// and the platform totals, not to the album's songs.
func (t Tuning) advanceAlbums(prev *State, trends []MarketTrend, week int, r Rand) []AlbumResult {
	platforms := prev.unlockedPlatforms()
	out := make([]AlbumResult, len(prev.Albums))
	for i, a := range prev.Albums {
		out[i] = t.AdvanceAlbum(a, prev.PlayerName, platforms, trends, week, r)
	}
	return out
}
