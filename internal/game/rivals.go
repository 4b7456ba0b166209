package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

const featureRequestTTLWeeks = 3

// featureShare is the slice of a song's weekly growth that spills over to the other credited
// artist: 20% at tier 1 up to 45% at tier 5.
func featureShare(tier int) float64 {
	return 0.2 + float64(clampTier(tier))/20
}

type rivalsOutcome struct {
	rappers []AIRapper
	songs   []Song
	// playerStreams is spillover credited to the player's platforms from AI-owned songs.
	playerStreams map[string]int64
	events        []Event
}

// advanceRappers grows every AI rapper for week. songs is this week's song list after the
// player's own growth pass; growth is that pass's per-song growth.
func (t Tuning) advanceRappers(prev *State, songs []Song, growth map[string]int64, trends []MarketTrend, week int, r Rand) rivalsOutcome {
	out := rivalsOutcome{
		rappers:       make([]AIRapper, len(prev.Rappers)),
		songs:         make([]Song, len(songs)),
		playerStreams: make(map[string]int64),
	}
	copy(out.songs, songs)
	unlocked := prev.unlockedPlatforms()

	for i, rapper := range prev.Rappers {
		rapper.Popularity = int(clampInt64(int64(rapper.Popularity), 1, 100))
		rapper.TotalStreams = nonNegative(rapper.TotalStreams)
		prevListeners := nonNegative(rapper.MonthlyListeners)
		var benefit float64

		for j, s := range out.songs {
			switch {
			case s.IsPlayerSong():
				if s.IsActive && features(s, rapper.ID) {
					benefit += float64(growth[s.ID]) * featureShare(s.Tier)
				}
			case s.AIRapperOwner == rapper.ID && s.Released:
				s = cloneSong(s)
				next := ClassifyPerformance(s, week, prev.Stats, r)
				if next != s.PerformanceType {
					s.PerformanceType = next
					s.PerformanceStatusWeek = week
				}
				g := t.aiSongGrowth(s, rapper, week, r)
				s.Streams += g
				s.LastWeekStreams = g
				s.IsActive = g > 0 || week-s.ReleaseDate < 1
				rapper.TotalStreams += g
				if s.AIRapperFeaturesPlayer && g > 0 {
					share := int64(float64(g) * featureShare(s.Tier))
					platforms := s.ReleasePlatforms
					if len(platforms) == 0 {
						platforms = unlocked
					}
					alloc := AllocateStreams(AllocationInput{
						Artist:      prev.PlayerName,
						Growth:      share,
						Platforms:   platforms,
						Performance: s.PerformanceType,
						Trends:      trends,
						Week:        week,
					}, r)
					if s.PlatformStreams == nil {
						s.PlatformStreams = make(map[string]int64)
					}
					addCounts(s.PlatformStreams, alloc)
					addCounts(out.playerStreams, alloc)
				}
				out.songs[j] = s
			}
		}

		organic := int64(float64(prevListeners) * 0.3 * uniform(r, 0.8, 1.2))
		rapper.TotalStreams += organic

		listeners := math.Max(float64(prevListeners)+benefit-0.02*float64(prevListeners), float64(rapper.TotalStreams)/25)
		if prevListeners > 0 {
			listeners = clampFloat(listeners, float64(prevListeners)*0.85, float64(prevListeners)*1.15)
		}
		rapper.MonthlyListeners = int64(math.Round(listeners))
		out.rappers[i] = rapper
	}
	return out
}

func features(s Song, rapperID string) bool {
	for _, id := range s.Featuring {
		if id == rapperID {
			return true
		}
	}
	return false
}

// aiSongGrowth is the self-contained growth curve of a song an AI rapper owns. A song at
// zero streams seeds from the tier's discovery base; streams accrue from the week after
// release.
func (t Tuning) aiSongGrowth(s Song, rapper AIRapper, week int, r Rand) int64 {
	p := t.tier(s.Tier)
	weeks := week - s.ReleaseDate
	if weeks < 1 {
		return 0
	}
	streams := float64(nonNegative(s.Streams))
	popularity := 0.5 + float64(rapper.Popularity)/100
	var g float64
	if streams == 0 {
		g = p.DiscoveryBase * popularity
	} else {
		decay := math.Max(0.1, 1-float64(weeks)*0.05)
		tierFactor := 0.6 + float64(clampTier(s.Tier))*0.2
		g = streams * 0.15 * decay * popularity * tierFactor
	}
	switch s.PerformanceType {
	case PerformanceViral:
		g *= 2.5
	case PerformanceFlop:
		g *= 0.4
	}
	growth := clampInt64(int64(finite(g, 0)), 0, p.WeeklyCap)
	if room := p.MaxStreams - int64(streams); growth > room {
		growth = nonNegative(room)
	}
	return growth
}

func relationshipMultiplier(rel Relationship) float64 {
	switch rel {
	case RelationshipFriend:
		return 3
	case RelationshipRival:
		return 0.2
	case RelationshipEnemy:
		return 0
	default:
		return 1
	}
}

func popularityBaseRate(popularity int) float64 {
	switch {
	case popularity >= 90:
		return 0.001
	case popularity >= 70:
		return 0.005
	case popularity >= 50:
		return 0.01
	case popularity >= 30:
		return 0.02
	default:
		return 0.03
	}
}

// FeatureRequestProbability is the weekly chance rapper reaches out to the player.
func (t Tuning) FeatureRequestProbability(stats PlayerStats, rapper AIRapper, playerListeners int64) float64 {
	p := popularityBaseRate(rapper.Popularity)
	p *= stat(stats.Reputation, 0) / 25
	p *= relationshipMultiplier(rapper.Relationship)
	ratio := 5.0
	if rapper.MonthlyListeners > 0 {
		ratio = math.Min(5, float64(nonNegative(playerListeners))/float64(rapper.MonthlyListeners))
	}
	p *= ratio
	p *= math.Min(5, float64(stats.CareerLevel)*0.5)
	return clampFloat(p, 0, t.FeatureRequestCap)
}

func requestTier(popularity int) int {
	return clampTier(1 + popularity/25)
}

// rollFeatureRequests drops expired requests and rolls a new one per rapper without an
// open request.
func (t Tuning) rollFeatureRequests(prev *State, rappers []AIRapper, playerListeners int64, week int, r Rand) ([]FeatureRequest, []Event) {
	var out []FeatureRequest
	var events []Event
	pending := make(map[string]bool)
	for _, req := range prev.FeatureRequests {
		if req.ExpiresWeek <= week {
			events = append(events, Event{Kind: EventFeatureExpired, Week: week, Subject: req.RapperID, Message: "A feature offer expired"})
			continue
		}
		pending[req.RapperID] = true
		out = append(out, req)
	}
	for _, rapper := range rappers {
		if pending[rapper.ID] {
			continue
		}
		if !chance(r, t.FeatureRequestProbability(prev.Stats, rapper, playerListeners)) {
			continue
		}
		req := FeatureRequest{
			RapperID:    rapper.ID,
			Tier:        requestTier(rapper.Popularity),
			OfferCents:  nonNegative(rapper.FeatureCostCents) / 2,
			Week:        week,
			ExpiresWeek: week + featureRequestTTLWeeks,
		}
		out = append(out, req)
		events = append(events, Event{
			Kind:    EventFeatureRequest,
			Week:    week,
			Subject: rapper.ID,
			Message: fmt.Sprintf("%s wants you on a tier %d track", rapper.Name, req.Tier),
		})
	}
	return out, events
}

// RespondToFeatureRequest accepts or declines the open request from rapperID. Accepting
// creates the rapper's released collaboration song; it starts earning next week.
func RespondToFeatureRequest(s *State, rapperID string, accept bool) (Event, error) {
	reqIdx := -1
	for i, req := range s.FeatureRequests {
		if req.RapperID == rapperID {
			reqIdx = i
			break
		}
	}
	if reqIdx < 0 {
		return Event{}, ErrRequestNotFound
	}
	ri := s.rapperIndex(rapperID)
	if ri < 0 {
		return Event{}, ErrRapperNotFound
	}
	req := s.FeatureRequests[reqIdx]
	s.FeatureRequests = append(s.FeatureRequests[:reqIdx:reqIdx], s.FeatureRequests[reqIdx+1:]...)
	rapper := &s.Rappers[ri]

	if !accept {
		switch rapper.Relationship {
		case RelationshipFriend:
			rapper.Relationship = RelationshipNeutral
		case RelationshipNeutral, "":
			rapper.DeclinedRequests++
			if rapper.DeclinedRequests >= 2 {
				rapper.Relationship = RelationshipRival
			}
		}
		return Event{Kind: EventFeatureRequest, Week: s.Week, Subject: rapperID, Message: "You turned down " + rapper.Name}, nil
	}

	platforms := s.unlockedPlatforms()
	counts := make(map[string]int64, len(platforms))
	for _, p := range platforms {
		counts[p] = 0
	}
	song := Song{
		ID:                     uuid.NewString(),
		Title:                  fmt.Sprintf("%s (feat. %s)", collabTitle(rapper.Name), s.PlayerName),
		Tier:                   clampTier(req.Tier),
		Released:               true,
		ReleaseDate:            s.Week,
		IsActive:               true,
		PerformanceType:        PerformanceNormal,
		PerformanceStatusWeek:  s.Week,
		ReleasePlatforms:       platforms,
		PlatformStreams:        counts,
		AIRapperOwner:          rapper.ID,
		AIRapperFeaturesPlayer: true,
		CreatedWeek:            s.Week,
	}
	s.Songs = append(s.Songs, song)
	s.Stats.WealthCents += nonNegative(req.OfferCents)
	if rapper.Relationship == RelationshipNeutral || rapper.Relationship == "" {
		rapper.Relationship = RelationshipFriend
	}
	return Event{Kind: EventFeatureRequest, Week: s.Week, Subject: song.ID, Message: "Collab with " + rapper.Name + " is out"}, nil
}

func collabTitle(rapperName string) string {
	words := strings.Fields(rapperName)
	if len(words) == 0 {
		return "Untitled"
	}
	return words[len(words)-1] + " Season"
}

func requestAcceptance(stats PlayerStats, rapper AIRapper) float64 {
	rel := 1.0
	switch rapper.Relationship {
	case RelationshipFriend:
		rel = 1.5
	case RelationshipRival:
		rel = 0.4
	case RelationshipEnemy:
		rel = 0.05
	}
	pop := math.Max(1, float64(rapper.Popularity))
	p := 0.5 * rel * math.Min(1.5, (stat(stats.Reputation, 0)+10)/pop)
	return clampFloat(p, 0, 0.95)
}

// FeatureCost is what the player pays rapper for a verse on a tier song.
func FeatureCost(rapper AIRapper, tier int) int64 {
	return int64(float64(nonNegative(rapper.FeatureCostCents)) * (0.5 + float64(clampTier(tier))/4))
}

// RequestFeature asks rapperID for a verse. On acceptance the fee is charged and an
// unreleased song featuring the rapper is added.
func RequestFeature(s *State, rapperID string, tier int, title string, r Rand) (FeatureOutcome, error) {
	if err := ValidateTier(tier); err != nil {
		return FeatureOutcome{}, err
	}
	ri := s.rapperIndex(rapperID)
	if ri < 0 {
		return FeatureOutcome{}, ErrRapperNotFound
	}
	rapper := s.Rappers[ri]
	if feature := tierFeature(tier); feature != "" && !CheckFeatureAccess(feature, s.Subscription.SubscriptionType) {
		return FeatureOutcome{}, ErrFeatureLocked
	}
	cost := FeatureCost(rapper, tier)
	if s.Stats.WealthCents < cost {
		return FeatureOutcome{}, ErrInsufficientFunds
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	title = fmt.Sprintf("%s (feat. %s)", title, rapper.Name)
	if err := ValidateTitle(title); err != nil {
		return FeatureOutcome{}, err
	}

	if !chance(r, requestAcceptance(s.Stats, rapper)) {
		return FeatureOutcome{Accepted: false, Message: rapper.Name + " passed on the track"}, nil
	}
	song := Song{
		ID:              uuid.NewString(),
		Title:           title,
		Tier:            tier,
		Featuring:       []string{rapper.ID},
		PerformanceType: PerformanceNormal,
		CreatedWeek:     s.Week,
	}
	s.Songs = append(s.Songs, song)
	s.Stats.WealthCents -= cost
	return FeatureOutcome{
		Accepted:  true,
		CostCents: cost,
		SongID:    song.ID,
		Message:   rapper.Name + " is on the track",
	}, nil
}
