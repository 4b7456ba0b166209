package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"stardom/internal/game"
	"stardom/internal/notify"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func renderDashboard(st game.State) error {
	accent.Printf("\n== %s | WEEK %d | LEVEL %d ==\n", st.PlayerName, st.Week, st.Stats.CareerLevel)
	var streams, listeners, followers int64
	for _, p := range st.Platforms {
		streams += p.TotalStreams
		listeners += p.Listeners
	}
	for _, p := range st.Social {
		followers += p.Followers
	}
	fmt.Printf("Cash:        %s\n", formatCents(st.Stats.WealthCents))
	fmt.Printf("Energy:      %d/%d\n", st.Stats.Energy, st.Stats.MaxEnergy)
	fmt.Printf("Streams:     %s\n", comma(streams))
	fmt.Printf("Listeners:   %s\n", comma(listeners))
	fmt.Printf("Followers:   %s\n", comma(followers))
	fmt.Printf("Reputation:  %.1f   Creativity %.1f   Marketing %.1f   Loyalty %.1f   Stage %.1f\n",
		st.Stats.Reputation, st.Stats.Creativity, st.Stats.Marketing, st.Stats.FanLoyalty, st.Stats.StagePower)
	fmt.Printf("Plan:        %s\n", st.Subscription.SubscriptionType)

	fmt.Println()
	accent.Println("Platforms")
	fmt.Printf("%-14s %14s %12s %12s\n", "PLATFORM", "STREAMS", "LISTENERS", "REVENUE")
	for _, p := range st.Platforms {
		if !p.IsUnlocked {
			fmt.Printf("%-14s %s\n", p.Name, neutral.Sprintf("locked until level %d", p.UnlockLevel))
			continue
		}
		fmt.Printf("%-14s %14s %12s %12s\n", p.Name, comma(p.TotalStreams), comma(p.Listeners), formatCents(p.RevenueCents))
	}

	if len(st.ActiveTrends) > 0 {
		fmt.Println()
		accent.Println("Market trends")
		for _, tr := range st.ActiveTrends {
			fmt.Printf("%-28s %-8s impact %2d  %s\n", truncate(tr.Name, 28), tr.Type, tr.ImpactFactor, strings.Join(tr.AffectedPlatforms, ", "))
		}
	}

	pending := false
	for _, c := range st.Controversies {
		if !c.IsActive {
			continue
		}
		if !pending {
			fmt.Println()
			danger.Println("Needs your attention")
			pending = true
		}
		fmt.Printf("controversy %s: %s (%s)\n", c.ID, c.Title, c.Severity)
		for i, opt := range c.ResponseOptions {
			fmt.Printf("   [%d] %s\n", i, opt.Label)
		}
	}
	for _, ev := range st.RandomEvents {
		if ev.Resolved {
			continue
		}
		if !pending {
			fmt.Println()
			danger.Println("Needs your attention")
			pending = true
		}
		fmt.Printf("event %s: %s\n", ev.ID, ev.Title)
		for i, opt := range ev.Options {
			fmt.Printf("   [%d] %s\n", i, opt.Label)
		}
	}
	for _, fr := range st.FeatureRequests {
		if !pending {
			fmt.Println()
			danger.Println("Needs your attention")
			pending = true
		}
		fmt.Printf("feature request from %s: tier %d for %s (expires week %d)\n", fr.RapperID, fr.Tier, formatCents(fr.OfferCents), fr.ExpiresWeek)
	}
	fmt.Println()
	return nil
}

func renderWeekReport(r game.WeekReport) {
	accent.Printf("\n== WEEK %d ==\n", r.Week)
	fmt.Printf("Streams %s   Listeners %s   Followers %s   Cash %s\n",
		comma(r.Stats.TotalStreams), comma(r.Stats.Listeners), comma(r.Stats.Followers), formatCents(r.Stats.WealthCents))
	for _, ev := range r.Events {
		fmt.Printf("  %s %s\n", eventBadge(ev.Kind), ev.Message)
	}
}

func eventBadge(kind game.EventKind) string {
	switch kind {
	case game.EventSongViral, game.EventSongComeback, game.EventCareerLevelUp, game.EventPlatformUnlocked, game.EventTourCompleted:
		return success.Sprint("+")
	case game.EventSongFlop, game.EventControversy, game.EventAlbumFailed, game.EventHypeOverdue:
		return danger.Sprint("!")
	default:
		return neutral.Sprint("-")
	}
}

func renderSongs(st game.State) {
	accent.Println("\n== SONGS ==")
	if len(st.Songs) == 0 {
		printInfo("No songs yet. Try `star song create`.")
		return
	}
	fmt.Printf("%-36s %-24s %4s %-9s %12s %10s\n", "ID", "TITLE", "TIER", "STATUS", "STREAMS", "LAST WEEK")
	for _, s := range st.Songs {
		status := "demo"
		switch {
		case s.Released && !s.IsActive:
			status = "expired"
		case s.Released:
			status = string(s.PerformanceType)
		}
		title := s.Title
		if !s.IsPlayerSong() {
			title += " *"
		}
		fmt.Printf("%-36s %-24s %4d %-9s %12s %10s\n", s.ID, truncate(title, 24), s.Tier, status, comma(s.Streams), comma(s.LastWeekStreams))
	}
	fmt.Println()
}

func renderAlbums(st game.State) {
	accent.Println("\n== ALBUMS ==")
	if len(st.Albums) == 0 {
		printInfo("No albums yet.")
		return
	}
	fmt.Printf("%-36s %-24s %-11s %5s %12s %8s %6s\n", "ID", "TITLE", "TYPE", "SONGS", "STREAMS", "RATING", "CHART")
	for _, a := range st.Albums {
		chart := "-"
		if a.Released && a.ChartPosition > 0 {
			chart = "#" + strconv.Itoa(a.ChartPosition)
		}
		rating := "-"
		if a.Released {
			rating = fmt.Sprintf("%.1f", (a.CriticalRating+a.FanRating)/2)
		}
		fmt.Printf("%-36s %-24s %-11s %5d %12s %8s %6s\n", a.ID, truncate(a.Title, 24), a.Type, len(a.SongIDs), comma(a.Streams), rating, chart)
	}
	fmt.Println()
}

func renderRappers(st game.State) {
	accent.Println("\n== RAPPERS ==")
	fmt.Printf("%-14s %-16s %4s %12s %-9s %12s\n", "ID", "NAME", "POP", "LISTENERS", "STATUS", "FEATURE")
	for _, r := range st.Rappers {
		status := string(r.Relationship)
		switch r.Relationship {
		case game.RelationshipFriend:
			status = success.Sprint(status)
		case game.RelationshipRival, game.RelationshipEnemy:
			status = danger.Sprint(status)
		}
		fmt.Printf("%-14s %-16s %4d %12s %-9s %12s\n", r.ID, truncate(r.Name, 16), r.Popularity, comma(r.MonthlyListeners), status, formatCents(r.FeatureCostCents))
	}
	fmt.Println()
}

func formatCents(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%s.%02d", sign, comma(v/game.CentsPerDollar), v%game.CentsPerDollar)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		b.WriteByte(',')
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// reportText is the plain summary the TUI shows after a week.
func reportText(player string, r game.WeekReport) string {
	return notify.FormatReport(player, r)
}
