// Package middleware provides Echo and Huma middleware for the apidex mock
// server.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/apidex/internal/metrics"
)

// Directory operation outcomes. OutcomeSuccess is an isSuccess=true
// envelope; the others name the failure a client sees.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// unmatchedRoute labels requests that matched no route, so random paths do
// not create series.
const unmatchedRoute = "unmatched"

// probeGauges maps probe routes to their up/down gauge. Probes and /metrics
// are kept out of the request series.
var probeGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Metrics returns Echo middleware that records every request by method,
// route template and status. /api/v1/apis/:id/pricing is one series no
// matter the id.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if gauge, ok := probeGauges[route]; ok {
				err := next(c)
				gauge.Set(boolGauge(c.Response().Status < http.StatusBadRequest))
				return err
			}
			if route == "/metrics" {
				return next(c)
			}
			if route == "" {
				route = unmatchedRoute
			}

			start := time.Now()
			err := next(c)
			labels := []string{c.Request().Method, route, strconv.Itoa(c.Response().Status)}
			metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
			return err
		}
	}
}

// OperationMetrics returns Huma middleware that counts directory operations
// by operation ID and outcome. It must be registered with UseMiddleware
// before the operations are.
func OperationMetrics() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		next(ctx)

		op := ctx.Operation().OperationID
		metrics.APIOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		metrics.APIOperationsTotal.WithLabelValues(op, Outcome(ctx.Status())).Inc()
	}
}

// Outcome classifies a response status the way the directory envelope does:
// anything below 400 carries isSuccess=true.
func Outcome(status int) string {
	switch {
	case status == 0 || status < http.StatusBadRequest:
		return OutcomeSuccess
	case status == http.StatusNotFound:
		return OutcomeNotFound
	case status < http.StatusInternalServerError:
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

func boolGauge(up bool) float64 {
	if up {
		return 1
	}
	return 0
}
