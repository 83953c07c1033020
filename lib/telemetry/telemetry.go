// Package telemetry collects process-wide counters and per-operation
// latency histograms for an embedded LSET engine. Counters are exported
// in Prometheus text format via Handler; timers are kept on a separate
// go-metrics registry for in-process inspection (e.g. from Dump).
package telemetry

import (
	"net/http"
	"time"

	vmetrics "github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
)

var (
	itemsTotal         = vmetrics.NewCounter("lset_items_total")
	rehashTotal        = vmetrics.NewCounter("lset_rehash_total")
	subRecCreatedTotal = vmetrics.NewCounter("lset_subrec_created_total")

	// Registry holds the per-call latency timers. Exposed so a dump report
	// or diagnostic command can read a timer's percentiles directly.
	Registry = gometrics.NewRegistry()

	addTimer    = gometrics.NewRegisteredTimer("lset.add", Registry)
	scanTimer   = gometrics.NewRegisteredTimer("lset.scan", Registry)
	rehashTimer = gometrics.NewRegisteredTimer("lset.rehash", Registry)
)

// IncItems adds delta to the process-wide count of inserted members.
// Negative deltas are ignored: the counter only ever increases.
func IncItems(delta int64) {
	if delta >= 0 {
		itemsTotal.Add(int(delta))
	}
}

// IncRehash records a TopRecord or SubRecord cell rehash event.
func IncRehash() {
	rehashTotal.Inc()
}

// IncSubRecCreated records a new sub-record allocation.
func IncSubRecCreated() {
	subRecCreatedTotal.Inc()
}

// TimeAdd times an add/add_all call and records it on the go-metrics add
// timer regardless of outcome.
func TimeAdd(f func() error) error {
	start := time.Now()
	err := f()
	addTimer.UpdateSince(start)
	return err
}

// TimeScan times a scan call and records it on the go-metrics scan timer.
func TimeScan(f func() error) error {
	start := time.Now()
	err := f()
	scanTimer.UpdateSince(start)
	return err
}

// TimeRehash times a rehash operation and records it on both the
// go-metrics rehash timer and the VictoriaMetrics rehash counter.
func TimeRehash(f func() error) error {
	start := time.Now()
	err := f()
	rehashTimer.UpdateSince(start)
	IncRehash()
	return err
}

// Handler returns an http.Handler exposing the VictoriaMetrics counters in
// Prometheus text format, analogous to rpc/server's net/http/pprof wiring.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vmetrics.WritePrometheus(w, true)
	})
}
