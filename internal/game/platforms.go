package game

import (
	"math"
	"sort"
)

const (
	PlatformSpotify      = "Spotify"
	PlatformYouTubeMusic = "YouTube Music"
	PlatformITunes       = "iTunes"
	PlatformSoundCloud   = "SoundCloud"
	PlatformAppleMusic   = "Apple Music"
	PlatformAmazonMusic  = "Amazon Music"
	PlatformTidal        = "Tidal"
	PlatformDeezer       = "Deezer"
)

type platformInfo struct {
	Name        string
	MarketShare float64
	// CentsPerKStreams is payout per thousand streams.
	CentsPerKStreams int64
	UnlockLevel      int
}

// platformTable is the one market-share table used everywhere. Shares are weights; they
// are normalised over whatever subset a release picks.
var platformTable = []platformInfo{
	{PlatformSpotify, 0.55, 400, 1},
	{PlatformYouTubeMusic, 0.28, 200, 1},
	{PlatformITunes, 0.12, 1_000, 2},
	{PlatformSoundCloud, 0.05, 250, 1},
	{PlatformAppleMusic, 0.10, 700, 2},
	{PlatformAmazonMusic, 0.04, 400, 3},
	{PlatformTidal, 0.02, 1_250, 4},
	{PlatformDeezer, 0.02, 640, 3},
}

func platformInfoFor(name string) (platformInfo, bool) {
	for _, p := range platformTable {
		if p.Name == name {
			return p, true
		}
	}
	return platformInfo{}, false
}

// PlatformNames lists every known streaming platform in table order.
func PlatformNames() []string {
	out := make([]string, 0, len(platformTable))
	for _, p := range platformTable {
		out = append(out, p.Name)
	}
	return out
}

func defaultPlatforms() []StreamingPlatform {
	out := make([]StreamingPlatform, 0, len(platformTable))
	for _, p := range platformTable {
		out = append(out, StreamingPlatform{
			Name:        p.Name,
			IsUnlocked:  p.UnlockLevel <= 1,
			UnlockLevel: p.UnlockLevel,
		})
	}
	return out
}

// emptyPlatformCounts has a zero entry for every known platform.
func emptyPlatformCounts() map[string]int64 {
	out := make(map[string]int64, len(platformTable))
	for _, p := range platformTable {
		out[p.Name] = 0
	}
	return out
}

type AllocationInput struct {
	Artist      string
	Growth      int64
	Platforms   []string
	Performance PerformanceType
	Trends      []MarketTrend
	Week        int
}

// AllocateStreams splits growth across the release platforms. The allocation sums exactly
// to growth. When growth leaves room for it, no two platforms get the same number.
func AllocateStreams(in AllocationInput, r Rand) map[string]int64 {
	names := knownPlatforms(in.Platforms)
	if len(names) == 0 {
		names = []string{PlatformSpotify, PlatformYouTubeMusic}
	}
	out := make(map[string]int64, len(names))
	if in.Growth <= 0 {
		for _, n := range names {
			out[n] = 0
		}
		return out
	}

	weights := make([]float64, len(names))
	for i, n := range names {
		info, _ := platformInfoFor(n)
		w := info.MarketShare * platformBias(in.Artist, n)
		w *= uniform(r, 0.65, 1.35)
		w *= TrendEffect(n, in.Trends, in.Week)
		weights[i] = w
	}
	switch in.Performance {
	case PerformanceViral:
		lucky := 1 + r.Intn(2)
		if lucky > len(names) {
			lucky = len(names)
		}
		for _, idx := range luckyPlatforms(len(names), lucky, r) {
			weights[idx] *= 3
		}
	case PerformanceFlop:
		for i := range weights {
			weights[i] *= uniform(r, 0.5, 1.5)
		}
	}

	shares := largestRemainder(in.Growth, weights)
	for i, n := range names {
		out[n] = shares[i]
	}
	distinctAllocations(names, out, r)
	return out
}

// knownPlatforms keeps the recognised names, deduplicated, in table order.
func knownPlatforms(in []string) []string {
	want := make(map[string]bool, len(in))
	for _, n := range in {
		want[n] = true
	}
	var out []string
	for _, p := range platformTable {
		if want[p.Name] {
			out = append(out, p.Name)
		}
	}
	return out
}

func largestRemainder(total int64, weights []float64) []int64 {
	out := make([]int64, len(weights))
	var sum float64
	for _, w := range weights {
		sum += finite(w, 0)
	}
	if sum <= 0 {
		out[0] = total
		return out
	}
	type frac struct {
		idx int
		rem float64
	}
	fracs := make([]frac, len(weights))
	var assigned int64
	for i, w := range weights {
		exact := float64(total) * finite(w, 0) / sum
		whole := math.Floor(exact)
		out[i] = int64(whole)
		assigned += out[i]
		fracs[i] = frac{idx: i, rem: exact - whole}
	}
	sort.SliceStable(fracs, func(a, b int) bool { return fracs[a].rem > fracs[b].rem })
	for i := 0; assigned < total; i++ {
		out[fracs[i%len(fracs)].idx]++
		assigned++
	}
	return out
}

// distinctAllocations nudges colliding values apart, moving a few streams from the
// biggest other platform so the total is unchanged. Purely cosmetic: identical numbers on
// two platforms look fake in the UI.
func distinctAllocations(names []string, alloc map[string]int64, r Rand) {
	n := int64(len(names))
	var total int64
	for _, name := range names {
		total += alloc[name]
	}
	if n < 2 || total < n*(n+1)/2 {
		return
	}
	for iter := 0; iter < 256; iter++ {
		b, ok := firstCollision(names, alloc)
		if !ok {
			return
		}
		d := int64(1 + r.Intn(3))
		donor := ""
		for _, name := range names {
			if name == b || alloc[name] < d {
				continue
			}
			if donor == "" || alloc[name] > alloc[donor] {
				donor = name
			}
		}
		if donor == "" {
			return
		}
		alloc[b] += d
		alloc[donor] -= d
	}
}

// firstCollision returns the later of the first two platforms sharing a value.
func firstCollision(names []string, alloc map[string]int64) (string, bool) {
	seen := make(map[int64]bool, len(names))
	for _, name := range names {
		if seen[alloc[name]] {
			return name, true
		}
		seen[alloc[name]] = true
	}
	return "", false
}

// luckyPlatforms picks k distinct indices out of n with a partial shuffle.
func luckyPlatforms(n, k int, r Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + r.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// listenerRatio is streams per listener for a platform's lifetime stream count.
func listenerRatio(totalStreams int64, r Rand) float64 {
	switch {
	case totalStreams < 100_000:
		return 3
	case totalStreams < 10_000_000:
		return 5
	default:
		return uniform(r, 8, 15)
	}
}

// listenerFloorRatio is the share of last week's listeners a platform always keeps.
func listenerFloorRatio(totalStreams int64) float64 {
	switch {
	case totalStreams < 100_000:
		return 0.95
	case totalStreams < 10_000_000:
		return 0.97
	default:
		return 0.98
	}
}

// applyPlatformStreams credits added streams to a platform and recomputes listeners and
// revenue. effect is the trend multiplier for the platform this week.
func applyPlatformStreams(p StreamingPlatform, added int64, effect float64, r Rand) StreamingPlatform {
	added = nonNegative(added)
	prevListeners := nonNegative(p.Listeners)
	p.TotalStreams = nonNegative(p.TotalStreams) + added

	ratio := listenerRatio(p.TotalStreams, r)
	target := float64(p.TotalStreams) / ratio
	carried := float64(prevListeners)*0.98 + float64(added)/ratio*finite(effect, 1)
	next := int64(math.Round(0.5*target + 0.5*carried))

	floor := int64(math.Ceil(float64(prevListeners) * listenerFloorRatio(p.TotalStreams)))
	if next < floor {
		next = floor
	}
	p.Listeners = nonNegative(next)

	p.RevenueCents = nonNegative(p.RevenueCents) + revenueFor(p.Name, added)
	return p
}

// revenueFor is the payout in cents for streams on platform.
func revenueFor(platform string, streams int64) int64 {
	info, ok := platformInfoFor(platform)
	if !ok {
		return 0
	}
	return nonNegative(streams) * info.CentsPerKStreams / 1000
}

// mergePlatformStreams folds the week's per-platform additions into the platform list.
// Every platform is recomputed, so listener decay applies even without new streams.
func mergePlatformStreams(prev []StreamingPlatform, added map[string]int64, trends []MarketTrend, week int, r Rand) []StreamingPlatform {
	out := make([]StreamingPlatform, len(prev))
	for i, p := range prev {
		out[i] = applyPlatformStreams(p, added[p.Name], TrendEffect(p.Name, trends, week), r)
	}
	return out
}

func addCounts(dst, src map[string]int64) {
	for k, v := range src {
		dst[k] += v
	}
}
