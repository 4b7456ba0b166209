package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TierParams holds the per-tier balance knobs of the song model.
type TierParams struct {
	WeeklyCap        int64   `yaml:"weekly_cap"`
	MaxStreams       int64   `yaml:"max_streams"`
	WindowWeeks      float64 `yaml:"window_weeks"`
	WindowMultiplier float64 `yaml:"window_multiplier"`
	DiscoveryBase    float64 `yaml:"discovery_base"`
	DiscoverySlope   float64 `yaml:"discovery_slope"`
	ViralPhaseRate   float64 `yaml:"viral_phase_rate"`
}

type Tuning struct {
	Tiers []TierParams `yaml:"tiers"`

	TrendSpawnProb       float64 `yaml:"trend_spawn_prob"`
	RandomEventProb      float64 `yaml:"random_event_prob"`
	ControversyCapPct    float64 `yaml:"controversy_cap_pct"`
	FeatureRequestCap    float64 `yaml:"feature_request_cap"`
	ControversyAutoWeeks int     `yaml:"controversy_auto_weeks"`
	AlbumBaseCap         float64 `yaml:"album_base_cap"`
	HypeReactivation     float64 `yaml:"hype_reactivation"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Tiers: []TierParams{
			{WeeklyCap: 5_000, MaxStreams: 100_000, WindowWeeks: 4, WindowMultiplier: 1.0, DiscoveryBase: 200, DiscoverySlope: 100, ViralPhaseRate: 0.15},
			{WeeklyCap: 25_000, MaxStreams: 400_000, WindowWeeks: 6, WindowMultiplier: 1.1, DiscoveryBase: 800, DiscoverySlope: 400, ViralPhaseRate: 0.20},
			{WeeklyCap: 100_000, MaxStreams: 1_000_000, WindowWeeks: 8, WindowMultiplier: 1.25, DiscoveryBase: 3_000, DiscoverySlope: 1_500, ViralPhaseRate: 0.25},
			{WeeklyCap: 500_000, MaxStreams: 5_000_000, WindowWeeks: 12, WindowMultiplier: 1.5, DiscoveryBase: 12_000, DiscoverySlope: 6_000, ViralPhaseRate: 0.30},
			{WeeklyCap: 2_000_000, MaxStreams: 25_000_000, WindowWeeks: 20, WindowMultiplier: 2.0, DiscoveryBase: 50_000, DiscoverySlope: 25_000, ViralPhaseRate: 0.35},
		},
		TrendSpawnProb:       0.15,
		RandomEventProb:      0.08,
		ControversyCapPct:    5,
		FeatureRequestCap:    0.20,
		ControversyAutoWeeks: 4,
		AlbumBaseCap:         5_000_000,
		HypeReactivation:     25,
	}
}

func (t Tuning) tier(tier int) TierParams {
	return t.Tiers[clampTier(tier)-1]
}

// WeeklyCap returns the most streams a song of tier can gain in one week.
func (t Tuning) WeeklyCap(tier int) int64 {
	return t.tier(tier).WeeklyCap
}

// MaxStreams returns the lifetime stream ceiling of tier.
func (t Tuning) MaxStreams(tier int) int64 {
	return t.tier(tier).MaxStreams
}

func (t Tuning) Validate() error {
	if len(t.Tiers) != MaxTier {
		return fmt.Errorf("tuning: want %d tiers, got %d", MaxTier, len(t.Tiers))
	}
	for i, p := range t.Tiers {
		if p.WeeklyCap <= 0 || p.MaxStreams <= 0 {
			return fmt.Errorf("tuning: tier %d caps must be > 0", i+1)
		}
		if p.WindowWeeks <= 0 || p.WindowMultiplier <= 0 {
			return fmt.Errorf("tuning: tier %d window must be > 0", i+1)
		}
	}
	if t.TrendSpawnProb < 0 || t.TrendSpawnProb > 1 {
		return fmt.Errorf("tuning: trend_spawn_prob out of range")
	}
	if t.RandomEventProb < 0 || t.RandomEventProb > 1 {
		return fmt.Errorf("tuning: random_event_prob out of range")
	}
	return nil
}

// LoadTuning reads a YAML balance file on top of the defaults. An empty path returns
// the defaults unchanged.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parse tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}
