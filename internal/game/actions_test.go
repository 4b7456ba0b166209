package game

import (
	"errors"
	"math"
	"testing"
)

func freshState() *State {
	return NewState(NewGameInput{PlayerName: "Test Artist"}, NewRand(5))
}

func TestResolveRandomEvent(t *testing.T) {
	st := freshState()
	st.RandomEvents = []RandomEvent{{
		ID:    "ev1",
		Title: "Studio flood",
		Options: []EventOption{
			{Label: "Pay for repairs", WealthCents: -1_000 * CentsPerDollar},
			{Label: "Rent a booth", WealthCents: -300 * CentsPerDollar, Energy: -20},
			{Label: "Take a break", Energy: 50},
		},
		ChosenOption: -1,
	}}

	if _, err := ResolveRandomEvent(st, "nope", 0); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("unknown event: %v", err)
	}
	if _, err := ResolveRandomEvent(st, "ev1", 3); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad option: %v", err)
	}

	st.Stats.Energy = 10
	if _, err := ResolveRandomEvent(st, "ev1", 1); !errors.Is(err, ErrInsufficientEnergy) {
		t.Fatalf("low energy: %v", err)
	}
	if st.RandomEvents[0].Resolved {
		t.Fatalf("rejected choice resolved the event")
	}

	st.Stats.Energy = 80
	ev, err := ResolveRandomEvent(st, "ev1", 2)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ev.Kind != EventRandom || st.Stats.Energy != st.Stats.MaxEnergy {
		t.Fatalf("event %+v energy %d", ev, st.Stats.Energy)
	}
	if !st.RandomEvents[0].Resolved || st.RandomEvents[0].ChosenOption != 2 {
		t.Fatalf("event not marked resolved: %+v", st.RandomEvents[0])
	}
	if _, err := ResolveRandomEvent(st, "ev1", 0); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("second resolve: %v", err)
	}
}

func TestReleaseClearsStrayStreams(t *testing.T) {
	st := freshState()
	song, err := CreateSong(st, CreateSongInput{Title: "Imported Demo", Tier: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	st.Songs[0].Streams = 9_999
	st.Songs[0].LastWeekStreams = 123
	if _, err := ReleaseSong(st, ReleaseSongInput{SongID: song.ID}); err != nil {
		t.Fatalf("release: %v", err)
	}
	if st.Songs[0].Streams != 0 || st.Songs[0].LastWeekStreams != 0 {
		t.Fatalf("release kept streams %d / %d", st.Songs[0].Streams, st.Songs[0].LastWeekStreams)
	}
}

func TestPostSocial(t *testing.T) {
	st := freshState()
	st.Week = 4
	before := st.Social[1]

	p, err := PostSocial(st, " tiktok ", NewRand(1))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if p.Name != "TikTok" || p.Posts != 1 || p.LastPostWeek != 4 {
		t.Fatalf("post = %+v", p)
	}
	if p.Engagement <= before.Engagement || p.Followers < before.Followers {
		t.Fatalf("post did not help: before %+v after %+v", before, p)
	}
	if st.Stats.Energy != StarterMaxEnergy-postEnergyCost {
		t.Fatalf("energy %d", st.Stats.Energy)
	}

	if _, err := PostSocial(st, "MySpace", NewRand(1)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown platform: %v", err)
	}
	st.Stats.Energy = 0
	if _, err := PostSocial(st, "X", NewRand(1)); !errors.Is(err, ErrInsufficientEnergy) {
		t.Fatalf("no energy: %v", err)
	}
}

func TestSocialGrowthRecency(t *testing.T) {
	p := SocialPlatform{Name: "X", Followers: 10_000, Engagement: baselineEngagement}
	stale := SocialGrowth(p, 0, 10)
	p.LastPostWeek = 9
	fresh := SocialGrowth(p, 0, 10)
	if fresh <= stale {
		t.Fatalf("recent post should grow faster: fresh %.1f stale %.1f", fresh, stale)
	}
	p.Followers = -5
	p.Engagement = math.NaN()
	if g := SocialGrowth(p, 0, 10); g != 0 {
		t.Fatalf("corrupt account grew %.1f", g)
	}
}

func TestStockAndSellMerch(t *testing.T) {
	st := freshState()
	item, err := StockMerch(st, "Tour Tee", 2_500, 1_000, 50)
	if err != nil {
		t.Fatalf("stock: %v", err)
	}
	if st.Stats.WealthCents != StarterWealthCents-50_000 {
		t.Fatalf("wealth %d after stocking", st.Stats.WealthCents)
	}
	again, err := StockMerch(st, "tour tee", 3_000, 1_000, 10)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if again.ID != item.ID || again.Stock != 60 || again.PriceCents != 3_000 || len(st.Merch) != 1 {
		t.Fatalf("restock = %+v lines %d", again, len(st.Merch))
	}

	tests := []struct {
		name       string
		price, qty int64
		want       error
	}{
		{"zero price", 0, 1, ErrInvalidInput},
		{"zero qty", 100, 0, ErrInvalidInput},
		{"too expensive", 100, 1_000_000, ErrInsufficientFunds},
	}
	for _, tc := range tests {
		if _, err := StockMerch(st, "Hoodie", tc.price, 100, tc.qty); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err %v want %v", tc.name, err, tc.want)
		}
	}

	out, income, events := advanceMerch(st.Merch, 1_000_000, st.Stats, 2, NewRand(3))
	if out[0].Stock != 0 || out[0].Sold != 60 {
		t.Fatalf("big fan base should clear stock: %+v", out[0])
	}
	if income != 60*3_000 || len(events) != 1 || events[0].Kind != EventMerchSold {
		t.Fatalf("income %d events %+v", income, events)
	}
	if st.Merch[0].Stock != 60 {
		t.Fatalf("sales mutated the input")
	}
}

func TestAnnounceAndPromoteHype(t *testing.T) {
	st := freshState()
	song, err := CreateSong(st, CreateSongInput{Title: "Next Single", Tier: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := AnnounceRelease(st, AnnounceInput{Type: HypeSingle, RelatedID: song.ID, TargetWeek: 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("target in the past: %v", err)
	}
	ev, err := AnnounceRelease(st, AnnounceInput{Type: HypeSingle, RelatedID: song.ID, TargetWeek: 3})
	if err != nil {
		t.Fatalf("announce: %v", err)
	}
	if ev.Title != "Next Single" || ev.MaxHype != 60 || ev.HypeLevel != 6 {
		t.Fatalf("announce = %+v", ev)
	}
	if _, err := AnnounceRelease(st, AnnounceInput{Type: HypeSingle, RelatedID: song.ID, TargetWeek: 4}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("duplicate announce: %v", err)
	}

	wealth := st.Stats.WealthCents
	ev, err = PromoteHype(st, ev.ID, 100*CentsPerDollar)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if math.Abs(ev.HypeLevel-11.5) > 1e-9 || st.Stats.WealthCents != wealth-100*CentsPerDollar {
		t.Fatalf("hype %.2f wealth %d", ev.HypeLevel, st.Stats.WealthCents)
	}
	ev, err = PromoteHype(st, ev.ID, 4_000*CentsPerDollar)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if ev.HypeLevel != ev.MaxHype {
		t.Fatalf("hype %.2f not clamped to %.0f", ev.HypeLevel, ev.MaxHype)
	}
	if _, err := PromoteHype(st, "missing", 100); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("missing campaign: %v", err)
	}
	if _, err := PromoteHype(st, ev.ID, st.Stats.WealthCents+1); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("overspend: %v", err)
	}
}
