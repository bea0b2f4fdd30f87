// Package metrics exposes the tactic's reactor turn counters, order
// lifecycle gauges, and blended-fair gauge to Prometheus. Scope follows
// SPEC_FULL.md §3: ambient observability only, no dashboard UI.
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every series the tactic publishes, registered against a
// private registry so tests can construct isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	ReactorTurns      *prometheus.CounterVec
	Resets            *prometheus.CounterVec
	ConsecutiveBadRes prometheus.Gauge

	OrdersPlaced   *prometheus.CounterVec
	OrdersCanceled *prometheus.CounterVec
	OrdersRejected *prometheus.CounterVec
	OpenOrders     prometheus.Gauge

	BlendedFair  prometheus.Gauge
	LocalFair    prometheus.Gauge
	NetPosition  prometheus.Gauge
	RealizedPnL  prometheus.Gauge

	server *http.Server
}

// New constructs and registers the tactic's metrics against a fresh
// registry. Labels on the *Vec series follow the bbgo xmaker strategy's
// prometheus.Labels pattern (by kind, bad or side rather than one series per
// value).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ReactorTurns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tactic",
			Name:      "reactor_turns_total",
			Help:      "Reactor turns processed, by event kind.",
		}, []string{"kind"}),

		Resets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tactic",
			Name:      "resets_total",
			Help:      "Reactor epoch resets, by whether the reset was forced (bad).",
		}, []string{"bad"}),

		ConsecutiveBadRes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tactic",
			Name:      "consecutive_bad_resets",
			Help:      "Current run of back-to-back bad resets, before the abort threshold.",
		}),

		OrdersPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tactic",
			Name:      "orders_placed_total",
			Help:      "Orders placed, by side.",
		}, []string{"side"}),

		OrdersCanceled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tactic",
			Name:      "orders_canceled_total",
			Help:      "Orders canceled, by side.",
		}, []string{"side"}),

		OrdersRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tactic",
			Name:      "orders_rejected_total",
			Help:      "Order placements rejected by the home venue, by side.",
		}, []string{"side"}),

		OpenOrders: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tactic",
			Name:      "open_orders",
			Help:      "Live orders currently tracked by the order manager.",
		}),

		BlendedFair: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tactic",
			Name:      "blended_fair_price",
			Help:      "Consensus fair value blended across remote venues.",
		}),

		LocalFair: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tactic",
			Name:      "local_fair_price",
			Help:      "Fair value computed from the home venue's own book alone.",
		}),

		NetPosition: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tactic",
			Name:      "net_position",
			Help:      "Signed net position held in the instrument.",
		}),

		RealizedPnL: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tactic",
			Name:      "realized_pnl",
			Help:      "Realized PnL from the FIFO position ledger.",
		}),
	}
}

// Serve starts a minimal HTTP server exposing /metrics on addr. It returns
// immediately; call Shutdown to stop it.
func (m *Metrics) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()
}

// Shutdown stops the metrics HTTP server, if Serve was called.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

// resetLabel renders bad as the label value Resets expects.
func resetLabel(bad bool) string {
	if bad {
		return "true"
	}
	return "false"
}

// RecordReset increments the reset counter and clears or advances the
// consecutive-bad-reset gauge to track the reactor's own bookkeeping.
func (m *Metrics) RecordReset(bad bool, consecutiveBad int) {
	m.Resets.WithLabelValues(resetLabel(bad)).Inc()
	m.ConsecutiveBadRes.Set(float64(consecutiveBad))
}
