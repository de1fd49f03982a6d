package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "turva_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "path", "status"},
)

// Metrics records request latency labelled by the route template, not the raw
// URL, so path parameters do not explode label cardinality.
func Metrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		status := c.Response().Status
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
		} else if err != nil {
			status = http.StatusInternalServerError
		}
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		requestDuration.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}
