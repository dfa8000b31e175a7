package radar

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the radar gauges and counters. A nil *Metrics records nothing.
type Metrics struct {
	up          prometheus.Gauge
	peers       prometheus.Gauge
	peersActive prometheus.Gauge
	pollErrors  *prometheus.CounterVec
}

// NewMetrics creates the radar collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "radar_up",
			Help: "Whether the radar node answered its last status check (1) or not (0).",
		}),
		peers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "radar_peers",
			Help: "Peers known to the radar node in the last report.",
		}),
		peersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "radar_peers_active",
			Help: "Active peers in the last report.",
		}),
		pollErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radar_poll_errors_total",
				Help: "Failed peer polls by kind.",
			},
			[]string{"kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.up, m.peers, m.peersActive, m.pollErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SetUp records the node's reachability.
func (m *Metrics) SetUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.up.Set(1)
	} else {
		m.up.Set(0)
	}
}

// ObservePeers records the counts from a report.
func (m *Metrics) ObservePeers(count, active int) {
	if m == nil {
		return
	}
	m.peers.Set(float64(count))
	m.peersActive.Set(float64(active))
}

// PollError counts a failed poll of the given kind.
func (m *Metrics) PollError(kind string) {
	if m == nil {
		return
	}
	m.pollErrors.WithLabelValues(kind).Inc()
}
