package game

import "testing"

func releasedSong(tier, week int) Song {
	return Song{
		ID:                    "s1",
		Title:                 "Test",
		Tier:                  tier,
		Released:              true,
		ReleaseDate:           week,
		IsActive:              true,
		PerformanceType:       PerformanceNormal,
		PerformanceStatusWeek: week,
	}
}

func TestClassifyPerformanceIsDeterministic(t *testing.T) {
	stats := PlayerStats{Reputation: 40, Creativity: 30, Marketing: 60}
	for seed := int64(1); seed <= 50; seed++ {
		song := releasedSong(3, 1)
		a := ClassifyPerformance(song, 2, stats, NewRand(seed))
		b := ClassifyPerformance(song, 2, stats, NewRand(seed))
		if a != b {
			t.Fatalf("seed %d: got %s then %s", seed, a, b)
		}
	}
}

func TestClassifyPerformanceTransitions(t *testing.T) {
	stats := PlayerStats{Reputation: 20, Creativity: 20, Marketing: 10}

	viral := releasedSong(2, 1)
	viral.PerformanceType = PerformanceViral
	viral.PerformanceStatusWeek = 2
	if got := ClassifyPerformance(viral, 4, stats, fixedRand{0.99}); got != PerformanceViral {
		t.Fatalf("viral within duration: got %s", got)
	}
	if got := ClassifyPerformance(viral, 5, stats, fixedRand{0.99}); got != PerformanceNormal {
		t.Fatalf("viral after duration: got %s", got)
	}

	flop := releasedSong(2, 1)
	flop.PerformanceType = PerformanceFlop
	flop.PerformanceStatusWeek = 2
	if got := ClassifyPerformance(flop, 3, stats, fixedRand{0}); got != PerformanceComeback {
		t.Fatalf("flop with lucky roll the next week: got %s", got)
	}
	if got := ClassifyPerformance(flop, 3, stats, fixedRand{0.99}); got != PerformanceFlop {
		t.Fatalf("flop with unlucky roll: got %s", got)
	}

	fresh := releasedSong(1, 1)
	if got := ClassifyPerformance(fresh, 2, stats, fixedRand{0.005}); got != PerformanceFlop {
		t.Fatalf("first week low roll: got %s", got)
	}
	if got := ClassifyPerformance(fresh, 2, stats, fixedRand{0.5}); got != PerformanceNormal {
		t.Fatalf("first week mid roll: got %s", got)
	}
}

func TestTierThreeScenario(t *testing.T) {
	tuning := DefaultTuning()
	stats := PlayerStats{Reputation: 20, Creativity: 20, Marketing: 10}
	rands := []Rand{fixedRand{0}, fixedRand{0.005}, fixedRand{0.5}, fixedRand{0.999}, NewRand(1), NewRand(99)}
	for i, r := range rands {
		song := releasedSong(3, 1)
		for week := 2; week <= 3; week++ {
			res, _ := tuning.advanceSong(song, week, stats, r)
			song = res.song
		}
		switch song.PerformanceType {
		case PerformanceNormal, PerformanceViral, PerformanceFlop:
		default:
			t.Fatalf("rand %d: performance %s", i, song.PerformanceType)
		}
		if song.Streams < 0 || song.Streams > 1_000_000 {
			t.Fatalf("rand %d: streams %d out of range", i, song.Streams)
		}
	}
}

func TestGrowthRespectsCaps(t *testing.T) {
	tuning := DefaultTuning()
	stats := PlayerStats{Reputation: 100, Creativity: 100, Marketing: 100, FanLoyalty: 100}
	perf := []PerformanceType{PerformanceNormal, PerformanceViral, PerformanceComeback, PerformanceFlop}
	for tier := MinTier; tier <= MaxTier; tier++ {
		for _, p := range perf {
			song := releasedSong(tier, 1)
			song.PerformanceType = p
			song.Hype = 1000
			song.Featuring = []string{"a", "b", "c"}
			r := NewRand(int64(tier))
			for week := 2; week <= 40; week++ {
				g := tuning.GrowthFor(song, week, stats, r)
				if g < 0 {
					t.Fatalf("tier %d %s week %d: negative growth %d", tier, p, week, g)
				}
				if g > tuning.WeeklyCap(tier) {
					t.Fatalf("tier %d %s week %d: growth %d over cap %d", tier, p, week, g, tuning.WeeklyCap(tier))
				}
				song.Streams += g
				if song.Streams > tuning.MaxStreams(tier) {
					t.Fatalf("tier %d %s week %d: streams %d over max", tier, p, week, song.Streams)
				}
			}
		}
	}
}

func TestSongExpiry(t *testing.T) {
	tuning := DefaultTuning()
	song := releasedSong(1, 1)
	if tuning.Expired(song, 5) {
		t.Fatalf("tier 1 song should still be in its window at week 5")
	}
	if !tuning.Expired(song, 6) {
		t.Fatalf("tier 1 song should expire after its window")
	}
	song.Hype = 30
	if tuning.Expired(song, 20) {
		t.Fatalf("hype above the threshold should keep the song alive")
	}

	legend := releasedSong(5, 1)
	if tuning.Expired(legend, 500) {
		t.Fatalf("tier 5 songs never expire")
	}

	unreleased := Song{Tier: 3}
	if got := tuning.GrowthFor(unreleased, 3, PlayerStats{}, fixedRand{0.5}); got != 0 {
		t.Fatalf("unreleased song grew by %d", got)
	}
}

func TestAdvanceSongHalvesHypeAndSkipsAISongs(t *testing.T) {
	tuning := DefaultTuning()
	song := releasedSong(2, 1)
	song.Hype = 40
	res, _ := tuning.advanceSong(song, 2, PlayerStats{}, fixedRand{0.5})
	if res.song.Hype != 20 {
		t.Fatalf("hype = %v want 20", res.song.Hype)
	}
	if res.growth <= 0 || res.song.Streams != res.growth {
		t.Fatalf("growth %d streams %d", res.growth, res.song.Streams)
	}

	ai := releasedSong(2, 1)
	ai.AIRapperOwner = "nova-kane"
	res, _ = tuning.advanceSong(ai, 2, PlayerStats{}, fixedRand{0.5})
	if res.growth != 0 || res.song.Streams != 0 {
		t.Fatalf("AI-owned song grew in the player pass")
	}
}
