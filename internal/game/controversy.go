package game

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

const (
	ResponseApologize = "apologize"
	ResponseDeny      = "deny"
	ResponseSilent    = "stay_silent"
	ResponseStunt     = "publicity_stunt"

	controversyBeef = "beef"
)

// responseOptions are the same four choices for every controversy. Their modifiers replace
// the controversy's base impact when the player answers.
var responseOptions = []ResponseOption{
	{Key: ResponseApologize, Label: "Issue a public apology", ReputationModifier: 1, StreamModifier: -5_000, FollowerModifier: -200},
	{Key: ResponseDeny, Label: "Deny everything", ReputationModifier: -2, StreamModifier: 0, FollowerModifier: -500},
	{Key: ResponseSilent, Label: "Stay silent", ReputationModifier: -1, StreamModifier: -1_000, FollowerModifier: -1_000},
	{Key: ResponseStunt, Label: "Turn it into a publicity stunt", ReputationModifier: -5, StreamModifier: 20_000, FollowerModifier: 1_500},
}

var severityImpact = map[Severity]Impact{
	SeverityMinor:    {Reputation: -2, Streams: 10_000, Followers: -1_000},
	SeverityModerate: {Reputation: -5, Streams: 5_000, Followers: -3_000},
	SeverityMajor:    {Reputation: -10, Streams: -10_000, Followers: -8_000},
	SeveritySevere:   {Reputation: -20, Streams: -50_000, Followers: -20_000},
}

type controversyKind struct {
	Type  string
	Title string
}

var controversyPool = []controversyKind{
	{"leaked_dm", "Private messages leaked online"},
	{"lyric_backlash", "Lyrics spark backlash"},
	{"no_show", "Skipped a festival slot"},
	{"old_posts", "Old posts resurfaced"},
	{"ghostwriter", "Ghostwriter rumours"},
	{controversyBeef, "Diss track fallout"},
}

var severityOrder = []Severity{SeverityMinor, SeverityModerate, SeverityMajor, SeveritySevere}

// severityWeights is the cumulative-probability table keyed by career stage.
func severityWeights(careerLevel int) []float64 {
	switch {
	case careerLevel <= 3:
		return []float64{0.70, 0.25, 0.05, 0}
	case careerLevel <= 7:
		return []float64{0.45, 0.35, 0.15, 0.05}
	default:
		return []float64{0.25, 0.35, 0.25, 0.15}
	}
}

func pickSeverity(careerLevel int, r Rand) Severity {
	roll := r.Float64()
	var acc float64
	weights := severityWeights(careerLevel)
	for i, w := range weights {
		acc += w
		if roll < acc {
			return severityOrder[i]
		}
	}
	return SeverityMinor
}

// controversyChancePct is the weekly percentage chance of a new controversy.
func (t Tuning) controversyChancePct(stats PlayerStats) float64 {
	return math.Min(t.ControversyCapPct, float64(stats.CareerLevel)*0.2+stat(stats.Reputation, 0)*0.05)
}

func hasActiveControversy(cs []Controversy) bool {
	for _, c := range cs {
		if c.IsActive {
			return true
		}
	}
	return false
}

// GenerateControversy rolls for a new controversy. It never fires while another is open.
func (t Tuning) GenerateControversy(stats PlayerStats, open []Controversy, rappers []AIRapper, week int, r Rand) (Controversy, bool) {
	if hasActiveControversy(open) {
		return Controversy{}, false
	}
	if !chance(r, t.controversyChancePct(stats)/100) {
		return Controversy{}, false
	}
	severity := pickSeverity(stats.CareerLevel, r)
	kind := pick(r, controversyPool)
	c := Controversy{
		ID:              uuid.NewString(),
		Type:            kind.Type,
		Title:           kind.Title,
		Severity:        severity,
		Impact:          severityImpact[severity],
		ResponseOptions: append([]ResponseOption(nil), responseOptions...),
		IsActive:        true,
		Week:            week,
	}
	if c.Type == controversyBeef {
		if len(rappers) == 0 {
			c.Type, c.Title = "old_posts", "Old posts resurfaced"
		} else {
			c.RapperID = pick(r, rappers).ID
		}
	}
	return c, true
}

// applyImpact adds reputation, splits streams evenly over unlocked streaming platforms and
// followers evenly over social platforms. Totals never go below zero.
func applyImpact(s *State, reputation float64, streams, followers int64) {
	s.Stats.Reputation = clampFloat(stat(s.Stats.Reputation, 0)+reputation, 0, 100)

	unlocked := s.unlockedPlatforms()
	if len(unlocked) > 0 && streams != 0 {
		share := streams / int64(len(unlocked))
		rem := streams % int64(len(unlocked))
		for j, name := range unlocked {
			i := s.platformIndex(name)
			d := share
			if j == 0 {
				d += rem
			}
			s.Platforms[i].TotalStreams = nonNegative(s.Platforms[i].TotalStreams + d)
		}
	}
	if len(s.Social) > 0 && followers != 0 {
		share := followers / int64(len(s.Social))
		rem := followers % int64(len(s.Social))
		for i := range s.Social {
			d := share
			if i == 0 {
				d += rem
			}
			s.Social[i].Followers = nonNegative(s.Social[i].Followers + d)
		}
	}
}

// RespondToControversy resolves an active controversy with one of the four fixed responses.
// Only the response's modifiers apply.
func RespondToControversy(s *State, controversyID string, responseIndex int) (Event, error) {
	idx := -1
	for i, c := range s.Controversies {
		if c.ID == controversyID && c.IsActive {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Event{}, ErrEventNotFound
	}
	c := s.Controversies[idx]
	options := c.ResponseOptions
	if len(options) == 0 {
		options = responseOptions
	}
	if responseIndex < 0 || responseIndex >= len(options) {
		return Event{}, fmt.Errorf("%w: response index out of range", ErrInvalidInput)
	}
	opt := options[responseIndex]
	applyImpact(s, opt.ReputationModifier, opt.StreamModifier, opt.FollowerModifier)
	if c.RapperID != "" {
		if ri := s.rapperIndex(c.RapperID); ri >= 0 {
			switch opt.Key {
			case ResponseApologize:
				s.Rappers[ri].Relationship = RelationshipNeutral
			case ResponseStunt:
				s.Rappers[ri].Relationship = RelationshipEnemy
			}
		}
	}
	c.ChosenResponse = opt.Key
	archiveControversy(s, idx, c, s.Week)
	return Event{
		Kind:    EventControversyResolved,
		Week:    s.Week,
		Subject: c.ID,
		Message: fmt.Sprintf("%s resolved: %s", c.Title, opt.Label),
	}, nil
}

func archiveControversy(s *State, idx int, c Controversy, week int) {
	c.IsActive = false
	c.ResolvedWeek = week
	s.Controversies = append(s.Controversies[:idx:idx], s.Controversies[idx+1:]...)
	s.PastControversies = append(s.PastControversies, c)
}

// advanceControversies lets ignored controversies run their course, then rolls for a new
// one using last week's stats. Impacts land on next's platforms and social accounts.
func (t Tuning) advanceControversies(prev, next *State, week int, r Rand) []Event {
	var events []Event
	for i := 0; i < len(next.Controversies); i++ {
		c := next.Controversies[i]
		if !c.IsActive || week-c.Week < t.ControversyAutoWeeks {
			continue
		}
		applyImpact(next, c.Impact.Reputation, c.Impact.Streams, c.Impact.Followers)
		c.ChosenResponse = "ignored"
		archiveControversy(next, i, c, week)
		i--
		events = append(events, Event{
			Kind:    EventControversyResolved,
			Week:    week,
			Subject: c.ID,
			Message: c.Title + " blew over on its own",
		})
	}

	c, ok := t.GenerateControversy(prev.Stats, next.Controversies, prev.Rappers, week, r)
	if !ok {
		return events
	}
	if c.RapperID != "" {
		if ri := next.rapperIndex(c.RapperID); ri >= 0 {
			next.Rappers[ri].Relationship = RelationshipRival
			c.Title = fmt.Sprintf("%s with %s", c.Title, next.Rappers[ri].Name)
		}
	}
	next.Controversies = append(next.Controversies, c)
	events = append(events, Event{
		Kind:    EventControversy,
		Week:    week,
		Subject: c.ID,
		Message: fmt.Sprintf("%s (%s)", c.Title, c.Severity),
	})
	return events
}
