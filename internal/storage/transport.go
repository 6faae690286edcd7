package storage

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// tracedTransport wraps the default transport so object storage calls show up as client spans
// under the request that triggered them.
func tracedTransport() http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport.(*http.Transport).Clone(),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "storage " + r.Method
		}),
	)
}
