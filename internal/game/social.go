package game

import (
	"fmt"
	"math"
	"strings"
)

const baselineEngagement = 20.0

var socialNames = []string{"Instagram", "TikTok", "X", "YouTube"}

func defaultSocial() []SocialPlatform {
	out := make([]SocialPlatform, 0, len(socialNames))
	for _, name := range socialNames {
		out = append(out, SocialPlatform{Name: name, Followers: 100, Engagement: baselineEngagement})
	}
	return out
}

func recencyMultiplier(lastPostWeek, week int) float64 {
	if lastPostWeek <= 0 {
		return 0.5
	}
	switch since := week - lastPostWeek; {
	case since <= 1:
		return 1.5
	case since <= 4:
		return 1.0
	default:
		return 0.5
	}
}

// SocialGrowth is the followers p gains at week, before rounding.
func SocialGrowth(p SocialPlatform, songsReleased, week int) float64 {
	followers := float64(nonNegative(p.Followers))
	engagement := clampFloat(finite(p.Engagement, baselineEngagement), 0, 100)
	g := followers * 0.01 * (0.5 + engagement/50) * recencyMultiplier(p.LastPostWeek, week)
	return g + 250*float64(songsReleased)
}

// advanceSocial grows every account and lets engagement drift back toward the baseline.
func advanceSocial(prev []SocialPlatform, songsReleased, week int) []SocialPlatform {
	out := make([]SocialPlatform, len(prev))
	for i, p := range prev {
		g := SocialGrowth(p, songsReleased, week)
		p.Followers = nonNegative(p.Followers) + int64(math.Round(g))
		engagement := clampFloat(finite(p.Engagement, baselineEngagement), 0, 100)
		p.Engagement = engagement + (baselineEngagement-engagement)*0.02
		out[i] = p
	}
	return out
}

// PostSocial posts on one account. Posting lifts engagement and pulls in a few followers
// straight away, and keeps the recency bonus alive for next week's growth.
func PostSocial(s *State, platform string, r Rand) (SocialPlatform, error) {
	idx := -1
	for i, p := range s.Social {
		if strings.EqualFold(p.Name, strings.TrimSpace(platform)) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return SocialPlatform{}, fmt.Errorf("%w: unknown social platform %q", ErrInvalidInput, platform)
	}
	if s.Stats.Energy < postEnergyCost {
		return SocialPlatform{}, ErrInsufficientEnergy
	}
	p := s.Social[idx]
	p.Posts++
	p.LastPostWeek = s.Week
	p.Engagement = clampFloat(finite(p.Engagement, baselineEngagement)+uniform(r, 1, 4), 0, 100)
	p.Followers = nonNegative(p.Followers) + int64(stat(s.Stats.Marketing, 0)*2*uniform(r, 0.5, 1.5))
	s.Social[idx] = p
	s.Stats.Energy -= postEnergyCost
	return p, nil
}
