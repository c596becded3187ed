// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics provides Prometheus metrics for observability, grouped
// by concern: HTTP requests, uploads, the content-fetch cache and the
// database pool.
package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsbombs"

var (
	// HTTP metrics - track request volume and latency
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// Upload metrics
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "total",
			Help:      "Uploaded files by form field, storage backend and result",
		},
		[]string{"field", "backend", "result"},
	)

	UploadBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "bytes_total",
			Help:      "Bytes stored by storage backend",
		},
		[]string{"backend"},
	)

	// Content-fetch cache metrics
	FetchCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch_cache",
			Name:      "lookups_total",
			Help:      "Content-fetch cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	// Database metrics
	DBConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "pool_connections",
			Help:      "Database connection pool stats",
		},
		[]string{"state"},
	)
)

// ObserveUpload records the outcome of one uploaded file.
func ObserveUpload(field, backend, result string, size int64) {
	UploadsTotal.WithLabelValues(field, backend, result).Inc()
	if result == "ok" && size > 0 {
		UploadBytes.WithLabelValues(backend).Add(float64(size))
	}
}

// ObserveFetchCache records a content-fetch cache lookup.
func ObserveFetchCache(result string) {
	FetchCacheTotal.WithLabelValues(result).Inc()
}

// PoolStatsProvider is satisfied by *sql.DB.
type PoolStatsProvider interface {
	Stats() sql.DBStats
}

// PoolStatsCollector samples database pool statistics periodically.
type PoolStatsCollector struct {
	provider PoolStatsProvider
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPoolStatsCollector creates a collector for the given pool.
func NewPoolStatsCollector(provider PoolStatsProvider) *PoolStatsCollector {
	return &PoolStatsCollector{
		provider: provider,
		stopChan: make(chan struct{}),
	}
}

// Start begins collecting pool stats every interval.
func (c *PoolStatsCollector) Start(interval time.Duration) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopChan:
				return
			}
		}
	}()
}

func (c *PoolStatsCollector) collect() {
	stats := c.provider.Stats()
	DBConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	DBConnections.WithLabelValues("idle").Set(float64(stats.Idle))
	DBConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
}

// Stop stops the collector and waits for it to exit. Safe to call twice.
func (c *PoolStatsCollector) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
}
