package game

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

const (
	CentsPerDollar = int64(100)

	StarterWealthCents = int64(5_000) * CentsPerDollar
	StarterMaxEnergy   = 100

	MinTier = 1
	MaxTier = 5

	MaxCareerLevel = 10

	// ViralDurationWeeks is how long a viral or comeback run lasts before it settles.
	ViralDurationWeeks = 2
	// ViralWindowWeeks bounds the early window in which a song can still go viral.
	ViralWindowWeeks = 4

	songEnergyCost    = 20
	releaseEnergyCost = 10
	postEnergyCost    = 5
	concertEnergyCost = 25
)

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrSongNotFound       = errors.New("song not found")
	ErrAlbumNotFound      = errors.New("album not found")
	ErrRapperNotFound     = errors.New("rapper not found")
	ErrRequestNotFound    = errors.New("feature request not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidTier        = errors.New("tier must be between 1 and 5")
	ErrAlreadyReleased    = errors.New("already released")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientEnergy = errors.New("insufficient energy")
	ErrFeatureLocked      = errors.New("feature locked for current subscription")
)

var titleRE = regexp.MustCompile(`^[\p{L}\p{N} '&().,!?:\-]{1,80}$`)

var blockedTitleFragments = []string{
	"admin",
	"nazi",
	"fuck",
}

func ValidateTitle(title string) error {
	clean := strings.TrimSpace(title)
	if clean == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !titleRE.MatchString(clean) {
		return fmt.Errorf("%w: title contains unsupported characters or is too long", ErrInvalidInput)
	}
	lower := strings.ToLower(clean)
	for _, fragment := range blockedTitleFragments {
		if strings.Contains(lower, fragment) {
			return fmt.Errorf("%w: title contains blocked content", ErrInvalidInput)
		}
	}
	return nil
}

func ValidateTier(tier int) error {
	if tier < MinTier || tier > MaxTier {
		return ErrInvalidTier
	}
	return nil
}

func DollarsToCents(v float64) int64 {
	return int64(math.Round(v * float64(CentsPerDollar)))
}

func CentsToDollars(v int64) float64 {
	return float64(v) / float64(CentsPerDollar)
}

// Subscription feature keys understood by CheckFeatureAccess.
const (
	FeatureTier4Songs     = "tier4_songs"
	FeatureTier5Songs     = "tier5_songs"
	FeaturePromotionBoost = "promotion_boost"
	FeatureWorldTour      = "world_tour"
	FeatureExtraSaveSlots = "extra_save_slots"
)

var subscriptionRank = map[string]int{
	"free":     0,
	"basic":    1,
	"premium":  2,
	"ultimate": 3,
}

var featureMinRank = map[string]int{
	FeaturePromotionBoost: 1,
	FeatureExtraSaveSlots: 1,
	FeatureTier4Songs:     2,
	FeatureWorldTour:      2,
	FeatureTier5Songs:     3,
}

// CheckFeatureAccess reports whether subscriptionType unlocks feature.
// Unknown features are open to everyone; unknown subscription types are treated as free.
func CheckFeatureAccess(feature, subscriptionType string) bool {
	need, ok := featureMinRank[strings.ToLower(strings.TrimSpace(feature))]
	if !ok {
		return true
	}
	have := subscriptionRank[strings.ToLower(strings.TrimSpace(subscriptionType))]
	return have >= need
}

func tierFeature(tier int) string {
	switch tier {
	case 4:
		return FeatureTier4Songs
	case 5:
		return FeatureTier5Songs
	default:
		return ""
	}
}

// finite replaces NaN/Inf with fallback. Saves written by older builds can carry garbage.
func finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	v = finite(v, lo)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// stat reads a 0-100 player stat, defaulting corrupted values to def.
func stat(v, def float64) float64 {
	return clampFloat(finite(v, def), 0, 100)
}

func clampTier(tier int) int {
	if tier < MinTier {
		return MinTier
	}
	if tier > MaxTier {
		return MaxTier
	}
	return tier
}

func songCostCents(tier int) int64 {
	costs := [...]int64{50, 200, 800, 2_500, 10_000}
	return costs[clampTier(tier)-1] * CentsPerDollar
}
