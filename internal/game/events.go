package game

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	maxPendingRandomEvents = 2
	randomEventTTLWeeks    = 4
)

type eventTemplate struct {
	Title       string
	Description string
	Options     []EventOption
}

var eventPool = []eventTemplate{
	{
		Title:       "Radio interview",
		Description: "A morning show wants you live in the studio.",
		Options: []EventOption{
			{Label: "Go on air", Reputation: 2, Followers: 800, Energy: -15},
			{Label: "Send a voice note", Reputation: 0, Followers: 150},
			{Label: "Pass", Reputation: -1},
		},
	},
	{
		Title:       "Brand deal",
		Description: "An energy drink wants you in their next ad.",
		Options: []EventOption{
			{Label: "Sign it", Reputation: -2, WealthCents: 2_500 * CentsPerDollar, Energy: -10},
			{Label: "Turn it down", Reputation: 1},
		},
	},
	{
		Title:       "Studio flood",
		Description: "A burst pipe wrecked your home studio.",
		Options: []EventOption{
			{Label: "Pay for repairs", WealthCents: -1_000 * CentsPerDollar},
			{Label: "Rent a booth for a while", WealthCents: -300 * CentsPerDollar, Energy: -20},
		},
	},
	{
		Title:       "Fan meetup",
		Description: "Fans organised a meetup in your city.",
		Options: []EventOption{
			{Label: "Show up", Reputation: 3, Followers: 1_200, Energy: -20},
			{Label: "Post a thank-you", Followers: 300},
		},
	},
	{
		Title:       "Charity show",
		Description: "A local charity asks you to headline for free.",
		Options: []EventOption{
			{Label: "Headline", Reputation: 5, Followers: 500, Energy: -25},
			{Label: "Donate instead", Reputation: 2, WealthCents: -500 * CentsPerDollar},
			{Label: "Ignore it", Reputation: -2},
		},
	},
	{
		Title:       "Producer pitch",
		Description: "A hot producer sent over a beat pack.",
		Options: []EventOption{
			{Label: "Buy the pack", Reputation: 1, WealthCents: -750 * CentsPerDollar},
			{Label: "Stick with your sound"},
		},
	},
}

func pendingRandomEvents(events []RandomEvent) int {
	n := 0
	for _, e := range events {
		if !e.Resolved {
			n++
		}
	}
	return n
}

// advanceRandomEvents lapses stale events and rolls for a new one.
func (t Tuning) advanceRandomEvents(next *State, week int, r Rand) []Event {
	for i, e := range next.RandomEvents {
		if !e.Resolved && week-e.Week >= randomEventTTLWeeks {
			e.Resolved = true
			e.ChosenOption = -1
			next.RandomEvents[i] = e
		}
	}
	if pendingRandomEvents(next.RandomEvents) >= maxPendingRandomEvents {
		return nil
	}
	if !chance(r, t.RandomEventProb) {
		return nil
	}
	tpl := pick(r, eventPool)
	e := RandomEvent{
		ID:           uuid.NewString(),
		Title:        tpl.Title,
		Description:  tpl.Description,
		Options:      append([]EventOption(nil), tpl.Options...),
		Week:         week,
		ChosenOption: -1,
	}
	next.RandomEvents = append(next.RandomEvents, e)
	return []Event{{Kind: EventRandom, Week: week, Subject: e.ID, Message: e.Title + ": " + e.Description}}
}

// ResolveRandomEvent applies the chosen option of a pending event.
func ResolveRandomEvent(s *State, eventID string, optionIndex int) (Event, error) {
	idx := -1
	for i, e := range s.RandomEvents {
		if e.ID == eventID && !e.Resolved {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Event{}, ErrEventNotFound
	}
	e := s.RandomEvents[idx]
	if optionIndex < 0 || optionIndex >= len(e.Options) {
		return Event{}, fmt.Errorf("%w: option index out of range", ErrInvalidInput)
	}
	opt := e.Options[optionIndex]
	if opt.WealthCents < 0 && s.Stats.WealthCents < -opt.WealthCents {
		return Event{}, ErrInsufficientFunds
	}
	if opt.Energy < 0 && s.Stats.Energy < -opt.Energy {
		return Event{}, ErrInsufficientEnergy
	}

	applyImpact(s, opt.Reputation, 0, opt.Followers)
	s.Stats.WealthCents += opt.WealthCents
	s.Stats.Energy += opt.Energy
	if s.Stats.Energy > s.Stats.MaxEnergy {
		s.Stats.Energy = s.Stats.MaxEnergy
	}
	e.Resolved = true
	e.ChosenOption = optionIndex
	s.RandomEvents[idx] = e
	return Event{Kind: EventRandom, Week: s.Week, Subject: e.ID, Message: fmt.Sprintf("%s: %s", e.Title, opt.Label)}, nil
}
