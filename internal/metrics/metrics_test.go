package metrics

import (
	"testing"

	"stardom/internal/game"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveWeek(t *testing.T) {
	before := testutil.ToFloat64(weeksAdvanced)
	viral := testutil.ToFloat64(weekEvents.WithLabelValues(string(game.EventSongViral)))

	ObserveWeek(game.WeekReport{
		Week:  3,
		Stats: game.WeeklyStats{TotalStreams: 50_000},
		Events: []game.Event{
			{Kind: game.EventSongViral},
			{Kind: game.EventSongViral},
			{Kind: game.EventMerchSold},
		},
	})

	if got := testutil.ToFloat64(weeksAdvanced); got != before+1 {
		t.Fatalf("weeks advanced %v want %v", got, before+1)
	}
	if got := testutil.ToFloat64(weekEvents.WithLabelValues(string(game.EventSongViral))); got != viral+2 {
		t.Fatalf("viral events %v want %v", got, viral+2)
	}
}

func TestObserveRequest(t *testing.T) {
	ObserveRequest("GET", "/healthz", 200)
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/healthz", "200")); got != 1 {
		t.Fatalf("requests %v want 1", got)
	}
}
