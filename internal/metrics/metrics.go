package metrics

import (
	"net/http"
	"strconv"
	"time"

	"stardom/internal/game"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	weeksAdvanced = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "stardom_weeks_advanced_total", Help: "Weeks simulated"},
	)
	weekEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stardom_week_events_total", Help: "Events produced by the weekly pass"},
		[]string{"kind"},
	)
	weekStreams = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stardom_week_streams",
			Help:    "Total player streams at the end of a week",
			Buckets: prometheus.ExponentialBuckets(1_000, 10, 8),
		},
	)
	advanceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stardom_advance_duration_seconds",
			Help:    "Time to advance every stored game",
			Buckets: prometheus.DefBuckets,
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stardom_http_requests_total", Help: "API requests"},
		[]string{"method", "route", "code"},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(weeksAdvanced, weekEvents, weekStreams, advanceDuration, httpRequests)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveWeek(r game.WeekReport) {
	weeksAdvanced.Inc()
	weekStreams.Observe(float64(r.Stats.TotalStreams))
	for _, ev := range r.Events {
		weekEvents.WithLabelValues(string(ev.Kind)).Inc()
	}
}

func ObserveAdvance(started time.Time) {
	advanceDuration.Observe(time.Since(started).Seconds())
}

func ObserveRequest(method, route string, status int) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
