package game

import (
	"math"
	"strings"
)

type rosterEntry struct {
	Name       string
	Popularity int
}

var defaultRoster = []rosterEntry{
	{"Kid Echo", 25},
	{"Lil Static", 35},
	{"Big Tempo", 45},
	{"MC Drift", 55},
	{"Saint Verse", 65},
	{"Young Ledger", 72},
	{"Queen Cipher", 82},
	{"Nova Kane", 90},
}

func rapperID(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

func defaultRappers(r Rand) []AIRapper {
	out := make([]AIRapper, 0, len(defaultRoster))
	for _, e := range defaultRoster {
		pop := float64(e.Popularity)
		listeners := int64(math.Round(pop * pop * 1_000 * uniform(r, 0.8, 1.2)))
		out = append(out, AIRapper{
			ID:               rapperID(e.Name),
			Name:             e.Name,
			Popularity:       e.Popularity,
			MonthlyListeners: listeners,
			TotalStreams:     listeners * 25,
			Relationship:     RelationshipNeutral,
			FeatureCostCents: int64(e.Popularity*e.Popularity*2) * CentsPerDollar,
		})
	}
	return out
}

func normalizeSubscription(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if _, ok := subscriptionRank[t]; !ok {
		return "free"
	}
	return t
}

// NewState is a fresh career at week 1. Only the rapper roster draws from r.
func NewState(in NewGameInput, r Rand) *State {
	return &State{
		Week:       1,
		PlayerName: strings.TrimSpace(in.PlayerName),
		Stats: PlayerStats{
			CareerLevel: 1,
			Reputation:  10,
			Creativity:  20,
			Marketing:   10,
			FanLoyalty:  10,
			StagePower:  10,
			WealthCents: StarterWealthCents,
			Energy:      StarterMaxEnergy,
			MaxEnergy:   StarterMaxEnergy,
		},
		Subscription: SubscriptionInfo{SubscriptionType: normalizeSubscription(in.SubscriptionType)},
		Platforms:    defaultPlatforms(),
		Social:       defaultSocial(),
		Rappers:      defaultRappers(r),
	}
}

// normalize patches the holes legacy or hand-edited saves can have so the weekly pass can
// read every field without special cases.
func normalize(s *State) {
	if s.Week < 1 {
		s.Week = 1
	}
	have := make(map[string]bool, len(s.Platforms))
	for _, p := range s.Platforms {
		have[p.Name] = true
	}
	for _, p := range defaultPlatforms() {
		if !have[p.Name] {
			s.Platforms = append(s.Platforms, p)
		}
	}
	if len(s.Social) == 0 {
		s.Social = defaultSocial()
	}
	st := &s.Stats
	st.CareerLevel = int(clampInt64(int64(st.CareerLevel), 1, MaxCareerLevel))
	st.Reputation = stat(st.Reputation, 0)
	st.Creativity = stat(st.Creativity, 0)
	st.Marketing = stat(st.Marketing, 0)
	st.FanLoyalty = stat(st.FanLoyalty, 0)
	st.StagePower = stat(st.StagePower, 0)
	if st.MaxEnergy <= 0 {
		st.MaxEnergy = StarterMaxEnergy
	}
	s.Subscription.SubscriptionType = normalizeSubscription(s.Subscription.SubscriptionType)
}
