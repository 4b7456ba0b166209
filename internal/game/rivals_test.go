package game

import (
	"errors"
	"testing"
)

func TestFeatureRequestProbabilityCapped(t *testing.T) {
	tuning := DefaultTuning()
	rapper := AIRapper{Popularity: 10, MonthlyListeners: 1, Relationship: RelationshipFriend}
	stats := PlayerStats{CareerLevel: 10, Reputation: 100}
	if got := tuning.FeatureRequestProbability(stats, rapper, 1_000_000); got != tuning.FeatureRequestCap {
		t.Fatalf("probability %v want cap %v", got, tuning.FeatureRequestCap)
	}
	rapper.Relationship = RelationshipEnemy
	if got := tuning.FeatureRequestProbability(stats, rapper, 1_000_000); got != 0 {
		t.Fatalf("enemy probability %v want 0", got)
	}
}

func TestRespondToFeatureRequestDecline(t *testing.T) {
	st := testState()
	id := st.Rappers[2].ID
	for i := 0; i < 2; i++ {
		st.FeatureRequests = []FeatureRequest{{RapperID: id, Tier: 2, Week: st.Week, ExpiresWeek: st.Week + 3}}
		if _, err := RespondToFeatureRequest(st, id, false); err != nil {
			t.Fatalf("decline %d: %v", i, err)
		}
	}
	if st.Rappers[2].Relationship != RelationshipRival {
		t.Fatalf("two declines should make a rival, got %s", st.Rappers[2].Relationship)
	}
	if len(st.FeatureRequests) != 0 {
		t.Fatalf("request not removed")
	}
	if _, err := RespondToFeatureRequest(st, id, true); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("responding without a request: %v", err)
	}
}

func TestRespondToFeatureRequestAccept(t *testing.T) {
	st := testState()
	rapper := st.Rappers[1]
	wealth := st.Stats.WealthCents
	st.FeatureRequests = []FeatureRequest{{RapperID: rapper.ID, Tier: 3, OfferCents: 12_000, Week: 1, ExpiresWeek: 4}}
	if _, err := RespondToFeatureRequest(st, rapper.ID, true); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if st.Stats.WealthCents != wealth+12_000 {
		t.Fatalf("wealth %d want %d", st.Stats.WealthCents, wealth+12_000)
	}
	if len(st.Songs) != 1 {
		t.Fatalf("want one collaboration song, got %d", len(st.Songs))
	}
	song := st.Songs[0]
	if song.AIRapperOwner != rapper.ID || !song.AIRapperFeaturesPlayer || !song.Released || song.Tier != 3 {
		t.Fatalf("bad collaboration song %+v", song)
	}
	if st.Rappers[1].Relationship != RelationshipFriend {
		t.Fatalf("relationship %s want friend", st.Rappers[1].Relationship)
	}
}

func TestRequestFeature(t *testing.T) {
	st := testState()
	rapper := st.Rappers[0]
	wealth := st.Stats.WealthCents

	out, err := RequestFeature(st, rapper.ID, 2, "Night Drive", fixedRand{0.99})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if out.Accepted || st.Stats.WealthCents != wealth || len(st.Songs) != 0 {
		t.Fatalf("declined request changed state: %+v", out)
	}

	out, err = RequestFeature(st, rapper.ID, 2, "Night Drive", fixedRand{0})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	cost := FeatureCost(rapper, 2)
	if !out.Accepted || out.CostCents != cost || st.Stats.WealthCents != wealth-cost {
		t.Fatalf("accepted request: %+v wealth %d", out, st.Stats.WealthCents)
	}
	if len(st.Songs) != 1 || st.Songs[0].Released || st.Songs[0].Featuring[0] != rapper.ID {
		t.Fatalf("bad song %+v", st.Songs)
	}

	if _, err := RequestFeature(st, rapper.ID, 5, "", fixedRand{0}); !errors.Is(err, ErrFeatureLocked) {
		t.Fatalf("tier 5 on free plan: %v", err)
	}
	if _, err := RequestFeature(st, "nobody", 1, "", fixedRand{0}); !errors.Is(err, ErrRapperNotFound) {
		t.Fatalf("unknown rapper: %v", err)
	}
}

func TestAdvanceRappersSpillover(t *testing.T) {
	tuning := DefaultTuning()
	st := testState()
	rapper := st.Rappers[3]
	collab := Song{
		ID:                     "collab",
		Title:                  "Collab",
		Tier:                   2,
		Released:               true,
		ReleaseDate:            1,
		IsActive:               true,
		PerformanceType:        PerformanceNormal,
		PerformanceStatusWeek:  1,
		ReleasePlatforms:       []string{PlatformSpotify},
		PlatformStreams:        map[string]int64{PlatformSpotify: 0},
		AIRapperOwner:          rapper.ID,
		AIRapperFeaturesPlayer: true,
	}
	st.Songs = []Song{collab}

	out := tuning.advanceRappers(st, st.Songs, nil, nil, 2, fixedRand{0.5})
	got := out.songs[0]
	if got.Streams <= 0 {
		t.Fatalf("collaboration song did not grow")
	}
	if got.Streams > tuning.WeeklyCap(2) {
		t.Fatalf("collaboration growth %d over cap", got.Streams)
	}
	if out.playerStreams[PlatformSpotify] <= 0 {
		t.Fatalf("no spillover to the player")
	}
	if out.rappers[3].TotalStreams <= rapper.TotalStreams {
		t.Fatalf("rapper streams did not grow")
	}
	for i, r := range out.rappers {
		before := float64(st.Rappers[i].MonthlyListeners)
		if before > 0 && (float64(r.MonthlyListeners) < before*0.85-1 || float64(r.MonthlyListeners) > before*1.15+1) {
			t.Fatalf("%s listeners moved more than 15%%: %v -> %d", r.Name, before, r.MonthlyListeners)
		}
	}
	if st.Songs[0].Streams != 0 {
		t.Fatalf("input song was modified")
	}
}

func TestRollFeatureRequestsExpiry(t *testing.T) {
	tuning := DefaultTuning()
	st := testState()
	st.FeatureRequests = []FeatureRequest{{RapperID: st.Rappers[0].ID, Week: 1, ExpiresWeek: 4}}
	reqs, events := tuning.rollFeatureRequests(st, st.Rappers, 0, 4, fixedRand{0.99})
	if len(reqs) != 0 {
		t.Fatalf("expired request kept: %+v", reqs)
	}
	if len(events) != 1 || events[0].Kind != EventFeatureExpired {
		t.Fatalf("events = %+v", events)
	}
}
