package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"stardom/internal/game"
)

var headline = map[game.EventKind]bool{
	game.EventSongViral:        true,
	game.EventSongComeback:     true,
	game.EventControversy:      true,
	game.EventFeatureRequest:   true,
	game.EventTourCompleted:    true,
	game.EventCareerLevelUp:    true,
	game.EventPlatformUnlocked: true,
	game.EventAlbumFailed:      true,
}

// FormatReport renders a week report as a short plain-text message. Only headline events
// are listed; the rest are counted.
func FormatReport(player string, r game.WeekReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | week %d\n", player, r.Week)
	fmt.Fprintf(&b, "streams %d  listeners %d  followers %d  cash %s\n",
		r.Stats.TotalStreams, r.Stats.Listeners, r.Stats.Followers, FormatCents(r.Stats.WealthCents))
	other := 0
	for _, ev := range r.Events {
		if !headline[ev.Kind] {
			other++
			continue
		}
		fmt.Fprintf(&b, "- %s\n", ev.Message)
	}
	if other > 0 {
		fmt.Fprintf(&b, "+%d more events\n", other)
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// Log writes week reports to a structured logger.
type Log struct {
	log *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{log: logger}
}

func (l *Log) Publish(_ context.Context, gameID, player string, r game.WeekReport) error {
	kinds := make([]string, 0, len(r.Events))
	for _, ev := range r.Events {
		kinds = append(kinds, string(ev.Kind))
	}
	l.log.Info("week report",
		"game_id", gameID,
		"player", player,
		"week", r.Week,
		"streams", r.Stats.TotalStreams,
		"wealth_cents", r.Stats.WealthCents,
		"events", kinds,
	)
	return nil
}

// Fanout publishes to every sink and joins their errors.
type Fanout []game.Publisher

func (f Fanout) Publish(ctx context.Context, gameID, player string, r game.WeekReport) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, gameID, player, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
