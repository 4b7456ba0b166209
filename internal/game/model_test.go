package game

import (
	"errors"
	"math"
	"testing"
)

// fixedRand returns the same draw every time.
type fixedRand struct{ f float64 }

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(int) int     { return 0 }

func TestValidateTitle(t *testing.T) {
	valid := []string{"Midnight Run", "Free (Remix)", "Big Tempo & Friends", "Track 7!"}
	for _, s := range valid {
		if err := ValidateTitle(s); err != nil {
			t.Fatalf("expected title %q to be valid: %v", s, err)
		}
	}

	invalid := []string{"", "   ", "admin tapes", "tab\there", string(make([]byte, 81))}
	for _, s := range invalid {
		if err := ValidateTitle(s); err == nil {
			t.Fatalf("expected title %q to fail", s)
		}
	}
}

func TestValidateTier(t *testing.T) {
	for tier := MinTier; tier <= MaxTier; tier++ {
		if err := ValidateTier(tier); err != nil {
			t.Fatalf("tier %d: %v", tier, err)
		}
	}
	for _, tier := range []int{0, 6, -1} {
		if err := ValidateTier(tier); !errors.Is(err, ErrInvalidTier) {
			t.Fatalf("tier %d: got %v want ErrInvalidTier", tier, err)
		}
	}
}

func TestCheckFeatureAccess(t *testing.T) {
	tests := []struct {
		feature string
		sub     string
		want    bool
	}{
		{FeatureTier4Songs, "free", false},
		{FeatureTier4Songs, "premium", true},
		{FeatureTier5Songs, "premium", false},
		{FeatureTier5Songs, "ultimate", true},
		{FeaturePromotionBoost, "basic", true},
		{FeaturePromotionBoost, "free", false},
		{FeatureWorldTour, "Premium", true},
		{FeatureTier4Songs, "gold", false},
		{"unknown_feature", "free", true},
	}
	for _, tc := range tests {
		if got := CheckFeatureAccess(tc.feature, tc.sub); got != tc.want {
			t.Fatalf("CheckFeatureAccess(%q, %q) = %v want %v", tc.feature, tc.sub, got, tc.want)
		}
	}
}

func TestDollarsToCents(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{1.5, 150},
		{19.999, 2000},
		{-2.25, -225},
	}
	for _, tc := range tests {
		if got := DollarsToCents(tc.in); got != tc.want {
			t.Fatalf("DollarsToCents(%v) = %d want %d", tc.in, got, tc.want)
		}
	}
	if got := CentsToDollars(12_345); got != 123.45 {
		t.Fatalf("CentsToDollars = %v", got)
	}
}

func TestNumericGuards(t *testing.T) {
	if got := finite(math.NaN(), 7); got != 7 {
		t.Fatalf("finite(NaN) = %v", got)
	}
	if got := finite(math.Inf(1), 3); got != 3 {
		t.Fatalf("finite(Inf) = %v", got)
	}
	if got := stat(math.NaN(), 50); got != 50 {
		t.Fatalf("stat(NaN) = %v", got)
	}
	if got := stat(250, 0); got != 100 {
		t.Fatalf("stat(250) = %v", got)
	}
	if got := clampTier(9); got != MaxTier {
		t.Fatalf("clampTier(9) = %d", got)
	}
	if got := songCostCents(3); got != 800*CentsPerDollar {
		t.Fatalf("songCostCents(3) = %d", got)
	}
}

func TestStableHashIsOrderSensitive(t *testing.T) {
	if stableHash32("ab", "c") == stableHash32("a", "bc") {
		t.Fatalf("expected separator to keep keys apart")
	}
	if stableHash32("Nova", PlatformSpotify) != stableHash32("Nova", PlatformSpotify) {
		t.Fatalf("hash not stable")
	}
}

func TestPlatformBiasRange(t *testing.T) {
	for _, artist := range []string{"", "Kid Echo", "Nova Kane", "x"} {
		for _, p := range PlatformNames() {
			b := platformBias(artist, p)
			if b < 0.75 || b >= 1.25 {
				t.Fatalf("bias(%q,%q) = %v out of range", artist, p, b)
			}
			if b != platformBias(artist, p) {
				t.Fatalf("bias(%q,%q) not stable", artist, p)
			}
		}
	}
}
