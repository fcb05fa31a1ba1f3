package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/opencatalog"
)

var (
	catalogRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opencatalog_requests_total",
			Help: "Outbound OpenCatalog requests by result",
		},
		[]string{"result"},
	)
	catalogLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "opencatalog_request_duration_seconds",
			Help:    "Latency of outbound OpenCatalog requests",
			Buckets: prometheus.DefBuckets,
		},
	)
	lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_lookups_total",
			Help: "Product lookups by identifier kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	cacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_results_total",
			Help: "Product cache hits, misses and errors",
		},
		[]string{"result"},
	)
	urlHitCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "url_hit_count",
			Help: "Number of times the given url was hit",
		},
		[]string{"method", "url", "status"},
	)
	urlLatency = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "url_latency",
			Help:       "The latency quantiles for the given URL",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"method", "url"},
	)
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{catalogRequests, catalogLatency, lookups, cacheResults, urlHitCount, urlLatency} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveLookup counts one service lookup.
func ObserveLookup(kind opencatalog.Kind, outcome string) {
	lookups.WithLabelValues(string(kind), outcome).Inc()
}

// ObserveCache counts a cache hit, miss or error.
func ObserveCache(result string) {
	cacheResults.WithLabelValues(result).Inc()
}

type instrumentedGetter struct {
	next opencatalog.Getter
}

// InstrumentGetter records latency and outcome of every outbound GET.
func InstrumentGetter(next opencatalog.Getter) opencatalog.Getter {
	return &instrumentedGetter{next: next}
}

func (g *instrumentedGetter) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	start := time.Now()
	body, err := g.next.Get(ctx, rawURL, header)
	catalogLatency.Observe(time.Since(start).Seconds())

	result := "ok"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result = "canceled"
	case err != nil:
		result = "error"
	}
	catalogRequests.WithLabelValues(result).Inc()
	return body, err
}

// Gin observes every routed request by its route pattern.
func Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			return
		}
		urlLatency.WithLabelValues(c.Request.Method, route).Observe(float64(time.Since(start).Milliseconds()))
		urlHitCount.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
