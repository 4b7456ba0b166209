package game

import (
	"errors"
	"testing"
)

func testState() *State {
	st := NewState(NewGameInput{PlayerName: "Test Artist"}, NewRand(1))
	for i := range st.Social {
		st.Social[i].Followers = 1_000
	}
	for i := range st.Platforms {
		if st.Platforms[i].IsUnlocked {
			st.Platforms[i].TotalStreams = 100_000
		}
	}
	st.Stats.Reputation = 50
	return st
}

func TestSevereDenyAppliesOnlyResponse(t *testing.T) {
	st := testState()
	c := Controversy{
		ID:              "c1",
		Title:           "Old posts resurfaced",
		Severity:        SeveritySevere,
		Impact:          severityImpact[SeveritySevere],
		ResponseOptions: responseOptions,
		IsActive:        true,
		Week:            1,
	}
	st.Controversies = []Controversy{c}

	if _, err := RespondToControversy(st, "c1", 1); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if st.Stats.Reputation != 48 {
		t.Fatalf("reputation = %v want 48", st.Stats.Reputation)
	}
	for _, p := range st.Platforms {
		if p.IsUnlocked && p.TotalStreams != 100_000 {
			t.Fatalf("%s streams = %d want unchanged", p.Name, p.TotalStreams)
		}
	}
	var followers int64
	for _, p := range st.Social {
		followers += p.Followers
	}
	if followers != int64(len(st.Social))*1_000-500 {
		t.Fatalf("followers = %d want %d", followers, int64(len(st.Social))*1_000-500)
	}
	if len(st.Controversies) != 0 || len(st.PastControversies) != 1 {
		t.Fatalf("controversy not archived")
	}
	if st.PastControversies[0].ChosenResponse != ResponseDeny {
		t.Fatalf("chosen response = %q", st.PastControversies[0].ChosenResponse)
	}
}

func TestRespondToControversyRejectsBadInput(t *testing.T) {
	st := testState()
	st.Controversies = []Controversy{{ID: "c1", IsActive: true, Severity: SeverityMinor, ResponseOptions: responseOptions}}
	if _, err := RespondToControversy(st, "c1", 4); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("out of range index: %v", err)
	}
	if _, err := RespondToControversy(st, "nope", 0); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("missing controversy: %v", err)
	}
	if st.Stats.Reputation != 50 || len(st.Controversies) != 1 {
		t.Fatalf("rejected response changed state")
	}
}

func TestStreamImpactFloorsAtZero(t *testing.T) {
	st := testState()
	applyImpact(st, -500, -100_000_000, -100_000_000)
	if st.Stats.Reputation != 0 {
		t.Fatalf("reputation = %v", st.Stats.Reputation)
	}
	for _, p := range st.Platforms {
		if p.TotalStreams < 0 {
			t.Fatalf("%s went negative", p.Name)
		}
	}
	for _, p := range st.Social {
		if p.Followers != 0 {
			t.Fatalf("%s followers = %d", p.Name, p.Followers)
		}
	}
}

func TestImpactAppliesInFull(t *testing.T) {
	st := testState()
	var streams, followers int64
	unlocked := 0
	for _, p := range st.Platforms {
		if p.IsUnlocked {
			streams += p.TotalStreams
			unlocked++
		}
	}
	for _, p := range st.Social {
		followers += p.Followers
	}
	if unlocked < 2 || 5_000%unlocked == 0 {
		t.Fatalf("%d unlocked platforms do not leave a remainder for -5,000", unlocked)
	}
	applyImpact(st, 0, -5_000, -501)

	var gotStreams, gotFollowers int64
	for _, p := range st.Platforms {
		if p.IsUnlocked {
			gotStreams += p.TotalStreams
		}
	}
	for _, p := range st.Social {
		gotFollowers += p.Followers
	}
	if gotStreams != streams-5_000 {
		t.Fatalf("streams moved by %d want -5000", gotStreams-streams)
	}
	if gotFollowers != followers-501 {
		t.Fatalf("followers moved by %d want -501", gotFollowers-followers)
	}
}

func TestBeefResponseChangesRelationship(t *testing.T) {
	st := testState()
	rapper := st.Rappers[0].ID
	st.Controversies = []Controversy{
		{ID: "a", IsActive: true, Severity: SeverityMinor, ResponseOptions: responseOptions, RapperID: rapper},
	}
	if _, err := RespondToControversy(st, "a", 3); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if st.Rappers[0].Relationship != RelationshipEnemy {
		t.Fatalf("publicity stunt should make an enemy, got %s", st.Rappers[0].Relationship)
	}

	st.Rappers[0].Relationship = RelationshipRival
	st.Controversies = []Controversy{
		{ID: "b", IsActive: true, Severity: SeverityMinor, ResponseOptions: responseOptions, RapperID: rapper},
	}
	if _, err := RespondToControversy(st, "b", 0); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if st.Rappers[0].Relationship != RelationshipNeutral {
		t.Fatalf("apology should make peace, got %s", st.Rappers[0].Relationship)
	}
}

func TestGenerateControversySuppressedWhileActive(t *testing.T) {
	tuning := DefaultTuning()
	stats := PlayerStats{CareerLevel: 10, Reputation: 100}
	open := []Controversy{{ID: "x", IsActive: true}}
	if _, ok := tuning.GenerateControversy(stats, open, nil, 3, fixedRand{0}); ok {
		t.Fatalf("generated a second active controversy")
	}
	c, ok := tuning.GenerateControversy(stats, nil, nil, 3, fixedRand{0})
	if !ok {
		t.Fatalf("expected a controversy with a zero roll")
	}
	if len(c.ResponseOptions) != 4 || !c.IsActive || c.Week != 3 {
		t.Fatalf("bad controversy %+v", c)
	}
	if got := tuning.controversyChancePct(stats); got != 5 {
		t.Fatalf("chance capped at %v want 5", got)
	}
}

func TestIgnoredControversyAutoResolves(t *testing.T) {
	tuning := DefaultTuning()
	prev := testState()
	prev.Controversies = []Controversy{{
		ID:              "old",
		Title:           "Skipped a festival slot",
		Severity:        SeverityMinor,
		Impact:          severityImpact[SeverityMinor],
		ResponseOptions: responseOptions,
		IsActive:        true,
		Week:            1,
	}}
	next := prev.Clone()
	tuning.advanceControversies(prev, next, 5, fixedRand{0.99})
	if len(next.Controversies) != 0 || len(next.PastControversies) != 1 {
		t.Fatalf("controversy still open after 4 weeks")
	}
	if next.Stats.Reputation != 48 {
		t.Fatalf("base impact not applied: reputation %v", next.Stats.Reputation)
	}
}
