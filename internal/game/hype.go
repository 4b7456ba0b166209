package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultHypeDecay   = 5.0
	overdueHypePenalty = 10.0
)

func maxHypeFor(t HypeType) float64 {
	switch t {
	case HypeSingle:
		return 60
	case HypeEP:
		return 80
	case HypeAlbum:
		return 100
	case HypeDeluxe:
		return 90
	case HypeTour:
		return 85
	default:
		return 70
	}
}

func CreateHypeEvent(typ HypeType, title, relatedID string, targetWeek, week int) HypeEvent {
	return HypeEvent{
		ID:          uuid.NewString(),
		Type:        typ,
		Title:       strings.TrimSpace(title),
		RelatedID:   relatedID,
		MaxHype:     maxHypeFor(typ),
		DecayRate:   defaultHypeDecay,
		TargetWeek:  targetWeek,
		Announced:   true,
		CreatedWeek: week,
	}
}

// UpdateHypeLevel adds delta (which may be negative) and clamps to [0, MaxHype].
func UpdateHypeLevel(ev HypeEvent, delta float64) HypeEvent {
	ceiling := finite(ev.MaxHype, 0)
	if ceiling <= 0 {
		ceiling = maxHypeFor(ev.Type)
	}
	ev.MaxHype = ceiling
	ev.HypeLevel = clampFloat(finite(ev.HypeLevel, 0)+finite(delta, 0), 0, ceiling)
	return ev
}

// DecayHype applies the weekly decay to every unreleased event. The week after the target
// passes without a release costs an extra one-off penalty.
func DecayHype(events []HypeEvent, week int) ([]HypeEvent, []Event) {
	out := make([]HypeEvent, 0, len(events))
	var notes []Event
	for _, ev := range events {
		if ev.Released {
			out = append(out, ev)
			continue
		}
		rate := finite(ev.DecayRate, defaultHypeDecay)
		if rate < 0 {
			rate = defaultHypeDecay
		}
		delta := -rate
		if ev.TargetWeek > 0 && week > ev.TargetWeek && !ev.OverduePenalized {
			delta -= overdueHypePenalty
			ev.OverduePenalized = true
			notes = append(notes, Event{
				Kind:    EventHypeOverdue,
				Week:    week,
				Subject: ev.ID,
				Message: fmt.Sprintf("Fans are restless: %s missed its release week", ev.Title),
			})
		}
		out = append(out, UpdateHypeLevel(ev, delta))
	}
	return out, notes
}

// CompleteRelease archives the event and reports the informational multiplier the UI shows:
// hype/10 for music drops, 1+hype/100 ticket sales for tours.
func CompleteRelease(active, past []HypeEvent, id string) (nextActive, nextPast []HypeEvent, multiplier float64, ok bool) {
	for i, ev := range active {
		if ev.ID != id {
			continue
		}
		ev.Released = true
		if ev.Type == HypeTour {
			multiplier = 1 + ev.HypeLevel/100
		} else {
			multiplier = ev.HypeLevel / 10
		}
		nextActive = append(append([]HypeEvent(nil), active[:i]...), active[i+1:]...)
		nextPast = append(append([]HypeEvent(nil), past...), ev)
		return nextActive, nextPast, multiplier, true
	}
	return active, past, 0, false
}

func hypeForRelated(events []HypeEvent, relatedID string) (HypeEvent, bool) {
	if relatedID == "" {
		return HypeEvent{}, false
	}
	for _, ev := range events {
		if ev.RelatedID == relatedID && !ev.Released {
			return ev, true
		}
	}
	return HypeEvent{}, false
}

func knownHypeType(t HypeType) bool {
	switch t {
	case HypeSingle, HypeEP, HypeAlbum, HypeDeluxe, HypeTour:
		return true
	}
	return false
}

// AnnounceRelease starts a hype campaign for an upcoming drop or tour. Related songs and
// albums must exist and still be unreleased.
func AnnounceRelease(s *State, in AnnounceInput) (HypeEvent, error) {
	if !knownHypeType(in.Type) {
		return HypeEvent{}, fmt.Errorf("%w: hype type %q", ErrInvalidInput, in.Type)
	}
	if in.TargetWeek <= s.Week {
		return HypeEvent{}, fmt.Errorf("%w: target week must be after week %d", ErrInvalidInput, s.Week)
	}
	title := strings.TrimSpace(in.Title)
	if in.RelatedID != "" {
		switch {
		case s.songIndex(in.RelatedID) >= 0:
			song, _ := s.songByID(in.RelatedID)
			if song.Released {
				return HypeEvent{}, ErrAlreadyReleased
			}
			if title == "" {
				title = song.Title
			}
		case s.albumIndex(in.RelatedID) >= 0:
			album := s.Albums[s.albumIndex(in.RelatedID)]
			if album.Released {
				return HypeEvent{}, ErrAlreadyReleased
			}
			if title == "" {
				title = album.Title
			}
		default:
			return HypeEvent{}, fmt.Errorf("%w: nothing to announce with id %s", ErrInvalidInput, in.RelatedID)
		}
		if _, dup := hypeForRelated(s.HypeEvents, in.RelatedID); dup {
			return HypeEvent{}, fmt.Errorf("%w: already announced", ErrInvalidInput)
		}
	}
	if err := ValidateTitle(title); err != nil {
		return HypeEvent{}, err
	}
	if s.Stats.Energy < postEnergyCost {
		return HypeEvent{}, ErrInsufficientEnergy
	}
	ev := CreateHypeEvent(in.Type, title, in.RelatedID, in.TargetWeek, s.Week)
	ev = UpdateHypeLevel(ev, 5+stat(s.Stats.Marketing, 0)/10)
	s.HypeEvents = append(s.HypeEvents, ev)
	s.Stats.Energy -= postEnergyCost
	return ev, nil
}

// PromoteHype spends money on a campaign. Every $100 buys 5 hype, scaled up by marketing
// and by the promotion boost on paid plans.
func PromoteHype(s *State, hypeID string, spendCents int64) (HypeEvent, error) {
	if spendCents <= 0 {
		return HypeEvent{}, fmt.Errorf("%w: spend must be > 0", ErrInvalidInput)
	}
	idx := -1
	for i, ev := range s.HypeEvents {
		if ev.ID == hypeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return HypeEvent{}, ErrEventNotFound
	}
	if s.Stats.WealthCents < spendCents {
		return HypeEvent{}, ErrInsufficientFunds
	}
	delta := float64(spendCents) / float64(100*CentsPerDollar) * 5
	delta *= 1 + stat(s.Stats.Marketing, 0)/100
	if CheckFeatureAccess(FeaturePromotionBoost, s.Subscription.SubscriptionType) {
		delta *= 1.5
	}
	ev := UpdateHypeLevel(s.HypeEvents[idx], delta)
	s.HypeEvents[idx] = ev
	s.Stats.WealthCents -= spendCents
	return ev, nil
}
