package game

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"testing"
)

func quietEngine() *Engine {
	return NewEngine(DefaultTuning(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// careerState has one released song of every tier plus an album.
func careerState(t *testing.T) *State {
	t.Helper()
	st := NewState(NewGameInput{PlayerName: "Test Artist", SubscriptionType: "ultimate"}, NewRand(1))
	st.Stats.WealthCents = 1_000_000 * CentsPerDollar
	st.Stats.Marketing = 60
	st.Stats.FanLoyalty = 50
	var ids []string
	for tier := MinTier; tier <= MaxTier; tier++ {
		st.Stats.Energy = st.Stats.MaxEnergy
		song, err := CreateSong(st, CreateSongInput{Title: "Tier Song " + string(rune('0'+tier)), Tier: tier})
		if err != nil {
			t.Fatalf("create song: %v", err)
		}
		if _, err := ReleaseSong(st, ReleaseSongInput{SongID: song.ID}); err != nil {
			t.Fatalf("release song: %v", err)
		}
		ids = append(ids, song.ID)
	}
	st.Stats.Energy = st.Stats.MaxEnergy
	albumID, err := CreateAlbum(st, CreateAlbumInput{Title: "Debut", SongIDs: ids})
	if err != nil {
		t.Fatalf("create album: %v", err)
	}
	if _, err := ReleaseAlbum(st, albumID, NewRand(2)); err != nil {
		t.Fatalf("release album: %v", err)
	}
	st.Stats.Energy = st.Stats.MaxEnergy
	return st
}

func TestAdvanceWeekDoesNotModifyInput(t *testing.T) {
	st := careerState(t)
	before, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	next, report := quietEngine().AdvanceWeek(st, NewRand(5))
	after, _ := json.Marshal(st)
	if string(before) != string(after) {
		t.Fatalf("AdvanceWeek modified its input")
	}
	if next.Week != st.Week+1 || report.Week != next.Week {
		t.Fatalf("week %d report %d want %d", next.Week, report.Week, st.Week+1)
	}
	if len(next.WeeklyStats) != 1 || next.WeeklyStats[0].Week != next.Week {
		t.Fatalf("weekly stats %+v", next.WeeklyStats)
	}
	if next.WeeklyStats[0].SongsReleased != MaxTier {
		t.Fatalf("songs released = %d", next.WeeklyStats[0].SongsReleased)
	}
}

func TestAdvanceWeekIsReproducible(t *testing.T) {
	st := careerState(t)
	engine := quietEngine()
	a, b := st, st
	ra, rb := NewRand(42), NewRand(42)
	for i := 0; i < 12; i++ {
		a, _ = engine.AdvanceWeek(a, ra)
		b, _ = engine.AdvanceWeek(b, rb)
	}
	if len(a.WeeklyStats) != len(b.WeeklyStats) {
		t.Fatalf("ledger lengths differ")
	}
	for i := range a.WeeklyStats {
		if a.WeeklyStats[i] != b.WeeklyStats[i] {
			t.Fatalf("week %d differs: %+v vs %+v", i, a.WeeklyStats[i], b.WeeklyStats[i])
		}
	}
	for i := range a.Songs {
		if a.Songs[i].Streams != b.Songs[i].Streams {
			t.Fatalf("song %d streams differ", i)
		}
	}
}

func TestAdvanceWeekInvariants(t *testing.T) {
	tuning := DefaultTuning()
	engine := quietEngine()
	st := careerState(t)
	r := NewRand(9)
	for i := 0; i < 40; i++ {
		next, _ := engine.AdvanceWeek(st, r)

		for _, s := range next.Songs {
			if s.Streams > tuning.MaxStreams(s.Tier) {
				t.Fatalf("week %d: %s over lifetime max", next.Week, s.Title)
			}
			if s.LastWeekStreams > tuning.WeeklyCap(s.Tier) {
				t.Fatalf("week %d: %s grew %d over weekly cap", next.Week, s.Title, s.LastWeekStreams)
			}
			if prev, ok := st.songByID(s.ID); ok && s.Streams < prev.Streams {
				t.Fatalf("week %d: %s streams fell %d -> %d", next.Week, s.Title, prev.Streams, s.Streams)
			}
		}
		for _, p := range next.Platforms {
			pi := st.platformIndex(p.Name)
			if pi < 0 {
				continue
			}
			before := st.Platforms[pi].Listeners
			if float64(p.Listeners) < math.Floor(float64(before)*0.95) {
				t.Fatalf("week %d: %s listeners %d -> %d", next.Week, p.Name, before, p.Listeners)
			}
		}
		if next.Stats.Energy != next.Stats.MaxEnergy {
			t.Fatalf("week %d: energy not reset", next.Week)
		}
		if next.Stats.CareerLevel < st.Stats.CareerLevel {
			t.Fatalf("week %d: career level went down", next.Week)
		}
		active := 0
		for _, c := range next.Controversies {
			if c.IsActive {
				active++
			}
		}
		if active > 1 {
			t.Fatalf("week %d: %d active controversies", next.Week, active)
		}
		st = next
	}
	if st.totalStreams() == 0 {
		t.Fatalf("no streams after 40 weeks")
	}
}

func TestAdvanceWeekPlaysConcertsAndTours(t *testing.T) {
	engine := quietEngine()
	st := careerState(t)
	setlist := []string{st.Songs[0].ID, st.Songs[4].ID}

	concert, err := ScheduleConcert(st, ScheduleConcertInput{VenueName: "The Roxy", Capacity: 500, TicketPriceCents: 2_500, Week: 2, Setlist: setlist})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	st.Stats.Energy = st.Stats.MaxEnergy
	tour, err := StartTour(st, StartTourInput{
		Name:    "First Run",
		Stops:   []TourStop{{City: "Austin", Capacity: 800, TicketPriceCents: 3_000}, {City: "Denver", Capacity: 600, TicketPriceCents: 3_000}},
		Setlist: setlist,
	})
	if err != nil {
		t.Fatalf("tour: %v", err)
	}

	next, report := engine.AdvanceWeek(st, NewRand(3))
	var played *Concert
	for i := range next.Concerts {
		if next.Concerts[i].ID == concert.ID {
			played = &next.Concerts[i]
		}
	}
	if played == nil || !played.Completed || played.Attendance <= 0 || played.Attendance > 500 {
		t.Fatalf("concert not played: %+v", played)
	}
	if played.RevenueCents != played.Attendance*2_500 {
		t.Fatalf("concert revenue %d", played.RevenueCents)
	}
	if next.Tours[0].CurrentIndex != 1 || !next.Tours[0].Active {
		t.Fatalf("tour after one week: %+v", next.Tours[0])
	}

	next, report = engine.AdvanceWeek(next, NewRand(4))
	done := next.Tours[0]
	if done.ID != tour.ID || !done.Completed || done.Active {
		t.Fatalf("tour should be complete: %+v", done)
	}
	if done.BonusCents != done.RevenueCents/10 {
		t.Fatalf("bonus %d on revenue %d", done.BonusCents, done.RevenueCents)
	}
	found := false
	for _, ev := range report.Events {
		if ev.Kind == EventTourCompleted {
			found = true
		}
	}
	if !found {
		t.Fatalf("no tour completed event")
	}
}

func TestAdvanceWeekKeepsBadAlbum(t *testing.T) {
	st := careerState(t)
	st.Albums = append(st.Albums, Album{ID: "broken", Title: "Broken", Type: "mixtape", Released: true, ReleaseWeek: 1, Streams: 10})
	next, report := quietEngine().AdvanceWeek(st, NewRand(8))
	if next.Albums[1].Streams != 10 {
		t.Fatalf("broken album changed")
	}
	if next.Albums[0].Streams <= st.Albums[0].Streams {
		t.Fatalf("healthy album did not grow")
	}
	found := false
	for _, ev := range report.Events {
		if ev.Kind == EventAlbumFailed && ev.Subject == "broken" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no failure event for the broken album")
	}
}

func TestCareerLevelUnlocksPlatforms(t *testing.T) {
	st := NewState(NewGameInput{PlayerName: "Test"}, NewRand(1))
	st.Platforms[0].TotalStreams = 600_000
	events := advanceCareer(st, 2)
	if st.Stats.CareerLevel != 4 {
		t.Fatalf("career level %d want 4", st.Stats.CareerLevel)
	}
	for _, p := range st.Platforms {
		if p.UnlockLevel <= 4 && !p.IsUnlocked {
			t.Fatalf("%s still locked", p.Name)
		}
	}
	if len(events) < 2 {
		t.Fatalf("events = %+v", events)
	}
}
