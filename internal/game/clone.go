package game

import "maps"

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneCounts(in map[string]int64) map[string]int64 {
	if in == nil {
		return nil
	}
	return maps.Clone(in)
}

func cloneSong(s Song) Song {
	s.Featuring = cloneStrings(s.Featuring)
	s.ReleasePlatforms = cloneStrings(s.ReleasePlatforms)
	s.PlatformStreams = cloneCounts(s.PlatformStreams)
	return s
}

func cloneAlbum(a Album) Album {
	a.SongIDs = cloneStrings(a.SongIDs)
	a.PlatformStreams = cloneCounts(a.PlatformStreams)
	return a
}

func cloneTrend(t MarketTrend) MarketTrend {
	t.AffectedPlatforms = cloneStrings(t.AffectedPlatforms)
	return t
}

func cloneControversy(c Controversy) Controversy {
	if c.ResponseOptions != nil {
		c.ResponseOptions = append([]ResponseOption(nil), c.ResponseOptions...)
	}
	return c
}

func cloneTour(t Tour) Tour {
	if t.Stops != nil {
		t.Stops = append([]TourStop(nil), t.Stops...)
	}
	t.Setlist = cloneStrings(t.Setlist)
	return t
}

func cloneEvent(e RandomEvent) RandomEvent {
	if e.Options != nil {
		e.Options = append([]EventOption(nil), e.Options...)
	}
	return e
}

func cloneSlice[T any](in []T, fn func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		if fn != nil {
			v = fn(v)
		}
		out[i] = v
	}
	return out
}

// Clone deep-copies the state so a weekly pass can read the previous week without
// the next week's writes leaking into it.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Songs = cloneSlice(s.Songs, cloneSong)
	out.Albums = cloneSlice(s.Albums, cloneAlbum)
	out.Platforms = cloneSlice[StreamingPlatform](s.Platforms, nil)
	out.Social = cloneSlice[SocialPlatform](s.Social, nil)
	out.Rappers = cloneSlice[AIRapper](s.Rappers, nil)
	out.FeatureRequests = cloneSlice[FeatureRequest](s.FeatureRequests, nil)
	out.ActiveTrends = cloneSlice(s.ActiveTrends, cloneTrend)
	out.PastTrends = cloneSlice(s.PastTrends, cloneTrend)
	out.HypeEvents = cloneSlice[HypeEvent](s.HypeEvents, nil)
	out.PastHypeEvents = cloneSlice[HypeEvent](s.PastHypeEvents, nil)
	out.Controversies = cloneSlice(s.Controversies, cloneControversy)
	out.PastControversies = cloneSlice(s.PastControversies, cloneControversy)
	out.RandomEvents = cloneSlice(s.RandomEvents, cloneEvent)
	out.Concerts = cloneSlice(s.Concerts, func(c Concert) Concert {
		c.Setlist = cloneStrings(c.Setlist)
		return c
	})
	out.Tours = cloneSlice(s.Tours, cloneTour)
	out.Merch = cloneSlice[MerchItem](s.Merch, nil)
	out.WeeklyStats = cloneSlice[WeeklyStats](s.WeeklyStats, nil)
	return &out
}

func (s *State) songIndex(id string) int {
	for i := range s.Songs {
		if s.Songs[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) albumIndex(id string) int {
	for i := range s.Albums {
		if s.Albums[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) rapperIndex(id string) int {
	for i := range s.Rappers {
		if s.Rappers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) platformIndex(name string) int {
	for i := range s.Platforms {
		if s.Platforms[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *State) rapperByID(id string) (AIRapper, bool) {
	if i := s.rapperIndex(id); i >= 0 {
		return s.Rappers[i], true
	}
	return AIRapper{}, false
}

func (s *State) songByID(id string) (Song, bool) {
	if i := s.songIndex(id); i >= 0 {
		return s.Songs[i], true
	}
	return Song{}, false
}

// unlockedPlatforms lists the names of unlocked streaming platforms in state order.
func (s *State) unlockedPlatforms() []string {
	var out []string
	for _, p := range s.Platforms {
		if p.IsUnlocked {
			out = append(out, p.Name)
		}
	}
	return out
}

func (s *State) totalFollowers() int64 {
	var total int64
	for _, p := range s.Social {
		total += nonNegative(p.Followers)
	}
	return total
}

func (s *State) totalListeners() int64 {
	var total int64
	for _, p := range s.Platforms {
		total += nonNegative(p.Listeners)
	}
	return total
}

func (s *State) totalStreams() int64 {
	var total int64
	for _, p := range s.Platforms {
		total += nonNegative(p.TotalStreams)
	}
	return total
}
