package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// promHandler serves the Prometheus text exposition format for whatever
// has been registered with the default registry — the OTel Prometheus
// exporter bridge ([observe.InitProvider]) registers there.
func promHandler() http.Handler {
	return promhttp.Handler()
}
