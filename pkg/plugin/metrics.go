package plugin

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes plugin counters and gauges on a private Prometheus
// registry so the host process can mount as many plugin instances as it
// likes without collector collisions.
type Metrics struct {
	registry *prometheus.Registry
	started  time.Time

	// refreshed on scrape by the owning Plugin
	update func(*Metrics)

	blocksTracked  prometheus.Gauge
	timersArmed    *prometheus.GaugeVec
	decayExpired   *prometheus.CounterVec
	sessionsOpen   prometheus.Gauge
	pagesRendered  prometheus.Counter
	skinsApplied   prometheus.Counter
	authOutcomes   *prometheus.CounterVec
	usersConnected prometheus.Gauge
	uptimeSeconds  prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
		blocksTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irsplugin_blocks_tracked",
			Help: "Building blocks with a persisted creation record.",
		}),
		timersArmed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "irsplugin_timers_armed",
			Help: "Armed decay timers by kind.",
		}, []string{"kind"}),
		decayExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irsplugin_decay_expired_total",
			Help: "Decay windows that reached their deadline, by kind.",
		}, []string{"kind"}),
		sessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irsplugin_skin_sessions_open",
			Help: "Skin browser panels currently open.",
		}),
		pagesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irsplugin_skin_pages_rendered_total",
			Help: "Skin browser pages rendered.",
		}),
		skinsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irsplugin_skins_applied_total",
			Help: "Skins applied to items or placed objects.",
		}),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irsplugin_auth_attempts_total",
			Help: "Password gate attempts by outcome.",
		}, []string{"outcome"}),
		usersConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irsplugin_users_connected",
			Help: "Users currently connected.",
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irsplugin_uptime_seconds",
			Help: "Seconds since the plugin started.",
		}),
	}
	m.registry.MustRegister(
		m.blocksTracked, m.timersArmed, m.decayExpired,
		m.sessionsOpen, m.pagesRendered, m.skinsApplied,
		m.authOutcomes, m.usersConnected, m.uptimeSeconds,
	)
	return m
}

// Handler refreshes the gauges and serves the registry.
func (m *Metrics) Handler() http.Handler {
	inner := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.uptimeSeconds.Set(time.Since(m.started).Seconds())
		if m.update != nil {
			m.update(m)
		}
		inner.ServeHTTP(w, r)
	})
}
