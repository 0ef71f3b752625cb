package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	TickLatency       = metric.NewHistogram("1m1s")
	Delivered         = metric.NewCounter("10s1s")
	DeliveryFailures  = metric.NewCounter("10s1s")
	LsaGenerated      = metric.NewCounter("10s1s")
	LsaAccepted       = metric.NewCounter("10s1s")
	LsaRejected       = metric.NewCounter("10s1s")
	LsaPurged         = metric.NewCounter("10s1s")
	PortsDown         = metric.NewCounter("10s1s")
	RouteComputations = metric.NewCounter("10s1s")
	TopologyMutations = metric.NewCounter("1m1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("linkstate:TickLatency (µs)", TickLatency)
	expvar.Publish("linkstate:Delivered/s", Delivered)
	expvar.Publish("linkstate:DeliveryFailures/s", DeliveryFailures)
	expvar.Publish("linkstate:LsaGenerated/s", LsaGenerated)
	expvar.Publish("linkstate:LsaAccepted/s", LsaAccepted)
	expvar.Publish("linkstate:LsaRejected/s", LsaRejected)
	expvar.Publish("linkstate:LsaPurged/s", LsaPurged)
	expvar.Publish("linkstate:PortsDown/s", PortsDown)
	expvar.Publish("linkstate:RouteComputations/s", RouteComputations)
	expvar.Publish("linkstate:TopologyMutations/m", TopologyMutations)
}

// Serve exposes expvar and the metric dashboard on addr until the listener fails.
func Serve(addr string) error {
	return http.ListenAndServe(addr, nil)
}
