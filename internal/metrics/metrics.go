// Package metrics holds the Prometheus collectors for the service. Collectors
// are registered with the default registry on package init and exposed on
// /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sweetshop"

// HTTPRequestsTotal counts completed requests.
// Labels:
//   - method: HTTP method
//   - route: chi route pattern, e.g. "/api/sweets/{id}/purchase"
//   - status: numeric status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures handler latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// AuthLoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var AuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// InventoryAdjustmentsTotal counts purchase and restock attempts.
// Labels:
//   - operation: "purchase" or "restock"
//   - result: "success", "insufficient_stock", "not_found", "invalid" or "error"
var InventoryAdjustmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_adjustments_total",
		Help:      "Total number of stock adjustments, by operation and result.",
	},
	[]string{"operation", "result"},
)

// InventoryUnitsTotal sums units moved by successful adjustments.
var InventoryUnitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_units_total",
		Help:      "Total number of units purchased or restocked.",
	},
	[]string{"operation"},
)

// CatalogCacheTotal counts catalog cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var CatalogCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_total",
		Help:      "Total number of catalog cache lookups, by result.",
	},
	[]string{"result"},
)
