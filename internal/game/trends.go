package game

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

var trendTypes = []TrendType{TrendRising, TrendFalling, TrendHot, TrendStable}

type trendBlurb struct {
	Name        string
	Description string
}

var trendPool = map[TrendType][]trendBlurb{
	TrendRising: {
		{"Drill Wave", "Drill beats are climbing the charts"},
		{"Lo-fi Revival", "Chill rap playlists are picking up"},
		{"Afro Fusion", "Cross-over rhythms are everywhere"},
	},
	TrendFalling: {
		{"Playlist Fatigue", "Listeners are skipping more than usual"},
		{"Algorithm Shake-up", "Recommendation changes are burying new drops"},
		{"Streaming Price Hike", "Subscriptions got pricier and people are tuning out"},
	},
	TrendHot: {
		{"Summer Anthems", "Everyone wants something to blast outside"},
		{"Viral Dance Challenge", "A dance trend is sending rap clips through the roof"},
		{"Award Season", "Award buzz has fans digging into catalogs"},
	},
	TrendStable: {
		{"Steady Rotation", "Nothing wild, the usual listeners keep listening"},
		{"Catalog Week", "Fans are revisiting older tracks"},
	},
}

// GenerateTrend spawns a new market trend with the configured weekly odds.
func (t Tuning) GenerateTrend(week int, r Rand) (MarketTrend, bool) {
	if !chance(r, t.TrendSpawnProb) {
		return MarketTrend{}, false
	}
	typ := pick(r, trendTypes)
	blurb := pick(r, trendPool[typ])

	names := PlatformNames()
	count := intBetween(r, 1, 3)
	affected := make([]string, 0, count)
	for _, idx := range luckyPlatforms(len(names), count, r) {
		affected = append(affected, names[idx])
	}

	return MarketTrend{
		ID:                uuid.NewString(),
		Type:              typ,
		Name:              blurb.Name,
		Description:       blurb.Description,
		AffectedPlatforms: affected,
		ImpactFactor:      intBetween(r, 1, 10),
		StartWeek:         week,
		Duration:          intBetween(r, 2, 8),
	}, true
}

// TrendEffect is the product of every active trend touching platform. Expired trends and
// trends on other platforms contribute 1.
func TrendEffect(platform string, trends []MarketTrend, week int) float64 {
	effect := 1.0
	for _, tr := range trends {
		if !tr.ActiveAt(week) || !touches(tr, platform) {
			continue
		}
		impact := float64(tr.ImpactFactor)
		switch tr.Type {
		case TrendRising:
			effect *= 1 + impact*0.03
		case TrendFalling:
			effect *= math.Max(0.7, 1-impact*0.03)
		case TrendHot:
			effect *= 1 + impact*0.05
		case TrendStable:
			effect *= 1 + impact*0.01
		}
	}
	return effect
}

func touches(tr MarketTrend, platform string) bool {
	for _, p := range tr.AffectedPlatforms {
		if p == platform {
			return true
		}
	}
	return false
}

// ProcessTrends splits trends into those still running at week and those that expired.
func ProcessTrends(active []MarketTrend, week int) (still, expired []MarketTrend) {
	for _, tr := range active {
		if tr.StartWeek+tr.Duration <= week {
			expired = append(expired, cloneTrend(tr))
			continue
		}
		still = append(still, cloneTrend(tr))
	}
	return still, expired
}

func (t Tuning) advanceTrends(prev *State, week int, r Rand) (active, past []MarketTrend, events []Event) {
	active, expired := ProcessTrends(prev.ActiveTrends, week)
	past = append(cloneSlice(prev.PastTrends, cloneTrend), expired...)
	for _, tr := range expired {
		events = append(events, Event{Kind: EventTrendEnded, Week: week, Subject: tr.ID, Message: tr.Name + " has cooled off"})
	}
	if tr, ok := t.GenerateTrend(week, r); ok {
		active = append(active, tr)
		events = append(events, Event{
			Kind:    EventTrendStarted,
			Week:    week,
			Subject: tr.ID,
			Message: fmt.Sprintf("%s (%s, impact %d) for %d weeks", tr.Name, tr.Type, tr.ImpactFactor, tr.Duration),
		})
	}
	return active, past, events
}
