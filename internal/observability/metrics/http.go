package metrics

import (
	"strconv"
	"time"

	"github.com/target/storyweb/internal/observability/statsd"
)

// HTTPRequestMetric describes one served request.
type HTTPRequestMetric struct {
	Method  string
	Route   string
	Status  int
	Elapsed time.Duration
}

// EmitHTTPRequest records request latency tagged by method, route pattern and status class.
func EmitHTTPRequest(sink statsd.Sink, in HTTPRequestMetric) {
	if sink == nil {
		return
	}
	route := in.Route
	if route == "" {
		route = "unmatched"
	}
	sink.Timing("http.request", in.Elapsed, map[string]string{
		"method": in.Method,
		"route":  route,
		"status": statusClass(in.Status),
	})
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
