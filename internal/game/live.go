package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

const (
	tourStopBookingCents = int64(500) * CentsPerDollar
	maxFreeTourStops     = 5
	maxMerchItems        = 10
)

// setlistTier checks every id is a released song and returns the average tier.
func setlistTier(s *State, setlist []string) (float64, error) {
	if len(setlist) == 0 {
		return 0, fmt.Errorf("%w: setlist is empty", ErrInvalidInput)
	}
	var sum float64
	for _, id := range setlist {
		song, ok := s.songByID(id)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrSongNotFound, id)
		}
		if !song.Released {
			return 0, fmt.Errorf("%w: %s is not out yet", ErrInvalidInput, song.Title)
		}
		sum += float64(clampTier(song.Tier))
	}
	return sum / float64(len(setlist)), nil
}

func avgSetlistTier(songs []Song, setlist []string) float64 {
	var sum float64
	var n int
	for _, id := range setlist {
		for _, s := range songs {
			if s.ID == id {
				sum += float64(clampTier(s.Tier))
				n++
				break
			}
		}
	}
	if n == 0 {
		return MinTier
	}
	return sum / float64(n)
}

// showQuality is 0-100: stage power, reputation and setlist strength plus a bad or good night.
func showQuality(stats PlayerStats, avgTier float64, r Rand) float64 {
	q := 0.4*stat(stats.StagePower, 0) + 0.3*stat(stats.Reputation, 0) + 0.3*avgTier*20
	return clampFloat(q+uniform(r, -10, 10), 0, 100)
}

// showAttendance fills capacity by a fan loyalty and reputation blend, with noise.
func showAttendance(stats PlayerStats, capacity int64, r Rand) int64 {
	fill := 0.5*stat(stats.FanLoyalty, 0)/100 + 0.5*stat(stats.Reputation, 0)/100
	fill = clampFloat(fill+uniform(r, -0.1, 0.1), 0.05, 1)
	return int64(math.Round(float64(nonNegative(capacity)) * fill))
}

func ScheduleConcert(s *State, in ScheduleConcertInput) (Concert, error) {
	venue := strings.TrimSpace(in.VenueName)
	if err := ValidateTitle(venue); err != nil {
		return Concert{}, err
	}
	if in.Capacity <= 0 || in.TicketPriceCents <= 0 {
		return Concert{}, fmt.Errorf("%w: capacity and ticket price must be > 0", ErrInvalidInput)
	}
	if in.Week <= s.Week {
		return Concert{}, fmt.Errorf("%w: concerts are booked for a future week", ErrInvalidInput)
	}
	if _, err := setlistTier(s, in.Setlist); err != nil {
		return Concert{}, err
	}
	if s.Stats.Energy < concertEnergyCost {
		return Concert{}, ErrInsufficientEnergy
	}
	c := Concert{
		ID:               uuid.NewString(),
		VenueName:        venue,
		Capacity:         in.Capacity,
		TicketPriceCents: in.TicketPriceCents,
		Week:             in.Week,
		Setlist:          cloneStrings(in.Setlist),
	}
	s.Concerts = append(s.Concerts, c)
	s.Stats.Energy -= concertEnergyCost
	return c, nil
}

// resolveConcerts plays every concert booked for week. It returns the updated concerts and
// the ticket income.
func resolveConcerts(prev []Concert, songs []Song, stats PlayerStats, week int, r Rand) ([]Concert, int64, []Event) {
	out := make([]Concert, len(prev))
	var income int64
	var events []Event
	for i, c := range prev {
		if c.Completed || c.Week != week {
			out[i] = c
			continue
		}
		c.Setlist = cloneStrings(c.Setlist)
		c.Quality = showQuality(stats, avgSetlistTier(songs, c.Setlist), r)
		c.Attendance = showAttendance(stats, c.Capacity, r)
		c.RevenueCents = c.Attendance * nonNegative(c.TicketPriceCents)
		c.Completed = true
		income += c.RevenueCents
		out[i] = c
		events = append(events, Event{
			Kind:    EventConcertPlayed,
			Week:    week,
			Subject: c.ID,
			Message: fmt.Sprintf("%s: %d fans, quality %.0f", c.VenueName, c.Attendance, c.Quality),
		})
	}
	return out, income, events
}

func hasActiveTour(tours []Tour) bool {
	for _, t := range tours {
		if t.Active {
			return true
		}
	}
	return false
}

// StartTour books a tour. Stops play one per week from next week. Long tours need the world
// tour feature.
func StartTour(s *State, in StartTourInput) (Tour, error) {
	name := strings.TrimSpace(in.Name)
	if err := ValidateTitle(name); err != nil {
		return Tour{}, err
	}
	if len(in.Stops) < 2 {
		return Tour{}, fmt.Errorf("%w: a tour needs at least two stops", ErrInvalidInput)
	}
	if len(in.Stops) > maxFreeTourStops && !CheckFeatureAccess(FeatureWorldTour, s.Subscription.SubscriptionType) {
		return Tour{}, ErrFeatureLocked
	}
	for _, stop := range in.Stops {
		if strings.TrimSpace(stop.City) == "" || stop.Capacity <= 0 || stop.TicketPriceCents <= 0 {
			return Tour{}, fmt.Errorf("%w: every stop needs a city, capacity and ticket price", ErrInvalidInput)
		}
	}
	if _, err := setlistTier(s, in.Setlist); err != nil {
		return Tour{}, err
	}
	if hasActiveTour(s.Tours) {
		return Tour{}, fmt.Errorf("%w: already on tour", ErrInvalidInput)
	}
	cost := tourStopBookingCents * int64(len(in.Stops))
	if s.Stats.WealthCents < cost {
		return Tour{}, ErrInsufficientFunds
	}
	if s.Stats.Energy < concertEnergyCost {
		return Tour{}, ErrInsufficientEnergy
	}
	stops := make([]TourStop, len(in.Stops))
	for i, stop := range in.Stops {
		stops[i] = TourStop{City: strings.TrimSpace(stop.City), Capacity: stop.Capacity, TicketPriceCents: stop.TicketPriceCents}
	}
	t := Tour{
		ID:        uuid.NewString(),
		Name:      name,
		Stops:     stops,
		Setlist:   cloneStrings(in.Setlist),
		StartWeek: s.Week + 1,
		Active:    true,
	}
	if ev, ok := tourHype(s.HypeEvents, in.HypeEventID); ok {
		var mult float64
		s.HypeEvents, s.PastHypeEvents, mult, _ = CompleteRelease(s.HypeEvents, s.PastHypeEvents, ev.ID)
		t.TicketMultiplier = mult
	}
	s.Tours = append(s.Tours, t)
	s.Stats.WealthCents -= cost
	s.Stats.Energy -= concertEnergyCost
	return t, nil
}

// tourHype finds the tour announcement to complete: id if given, else the oldest one.
func tourHype(events []HypeEvent, id string) (HypeEvent, bool) {
	for _, ev := range events {
		if ev.Type == HypeTour && (id == "" || ev.ID == id) {
			return ev, true
		}
	}
	return HypeEvent{}, false
}

// advanceTours plays the next stop of every active tour. A tour that plays its last stop
// completes and pays a 10% bonus on its takings plus 2 reputation.
func advanceTours(prev []Tour, stats PlayerStats, week int, r Rand) ([]Tour, int64, float64, []Event) {
	out := make([]Tour, len(prev))
	var income int64
	var reputation float64
	var events []Event
	for i, t := range prev {
		t = cloneTour(t)
		if !t.Active || week < t.StartWeek || t.CurrentIndex >= len(t.Stops) {
			if t.Active && t.CurrentIndex >= len(t.Stops) {
				t.Active = false
				t.Completed = true
			}
			out[i] = t
			continue
		}
		stop := t.Stops[t.CurrentIndex]
		attendance := showAttendance(stats, stop.Capacity, r)
		if mult := finite(t.TicketMultiplier, 0); mult > 1 {
			attendance = int64(math.Min(float64(stop.Capacity), float64(attendance)*mult))
		}
		stop.Attendance = attendance
		stop.RevenueCents = attendance * nonNegative(stop.TicketPriceCents)
		t.Stops[t.CurrentIndex] = stop
		t.RevenueCents += stop.RevenueCents
		income += stop.RevenueCents
		t.CurrentIndex++
		events = append(events, Event{
			Kind:    EventTourStop,
			Week:    week,
			Subject: t.ID,
			Message: fmt.Sprintf("%s played %s to %d fans", t.Name, stop.City, attendance),
		})
		if t.CurrentIndex >= len(t.Stops) {
			t.Active = false
			t.Completed = true
			t.BonusCents = t.RevenueCents / 10
			income += t.BonusCents
			reputation += 2
			events = append(events, Event{
				Kind:    EventTourCompleted,
				Week:    week,
				Subject: t.ID,
				Message: fmt.Sprintf("%s wrapped after %d shows", t.Name, len(t.Stops)),
			})
		}
		out[i] = t
	}
	return out, income, reputation, events
}

// StockMerch orders qty units of a merch line, creating it if needed. Units are paid up
// front at cost.
func StockMerch(s *State, name string, priceCents, costCents, qty int64) (MerchItem, error) {
	name = strings.TrimSpace(name)
	if err := ValidateTitle(name); err != nil {
		return MerchItem{}, err
	}
	if priceCents <= 0 || costCents < 0 || qty <= 0 {
		return MerchItem{}, fmt.Errorf("%w: price and quantity must be > 0", ErrInvalidInput)
	}
	total := costCents * qty
	if total/qty != costCents {
		return MerchItem{}, fmt.Errorf("%w: order too large", ErrInvalidInput)
	}
	if s.Stats.WealthCents < total {
		return MerchItem{}, ErrInsufficientFunds
	}
	for i, m := range s.Merch {
		if strings.EqualFold(m.Name, name) {
			m.Stock += qty
			m.PriceCents = priceCents
			m.CostCents = costCents
			s.Merch[i] = m
			s.Stats.WealthCents -= total
			return m, nil
		}
	}
	if len(s.Merch) >= maxMerchItems {
		return MerchItem{}, fmt.Errorf("%w: at most %d merch lines", ErrInvalidInput, maxMerchItems)
	}
	m := MerchItem{ID: uuid.NewString(), Name: name, PriceCents: priceCents, CostCents: costCents, Stock: qty}
	s.Merch = append(s.Merch, m)
	s.Stats.WealthCents -= total
	return m, nil
}

// advanceMerch sells stock to the fan base. Demand scales with followers and fan loyalty and
// is shared evenly across lines.
func advanceMerch(prev []MerchItem, followers int64, stats PlayerStats, week int, r Rand) ([]MerchItem, int64, []Event) {
	out := make([]MerchItem, len(prev))
	copy(out, prev)
	if len(prev) == 0 {
		return out, 0, nil
	}
	demand := float64(nonNegative(followers)) * 0.001 * (0.5 + stat(stats.FanLoyalty, 0)/100) * uniform(r, 0.7, 1.3)
	perLine := int64(demand / float64(len(prev)))
	var income, sold int64
	for i, m := range out {
		n := clampInt64(perLine, 0, nonNegative(m.Stock))
		if n == 0 {
			continue
		}
		m.Stock -= n
		m.Sold += n
		out[i] = m
		income += n * nonNegative(m.PriceCents)
		sold += n
	}
	if sold == 0 {
		return out, 0, nil
	}
	return out, income, []Event{{
		Kind:    EventMerchSold,
		Week:    week,
		Message: fmt.Sprintf("Sold %d merch items", sold),
	}}
}
