// Package redis opens the go-redis client backing the Redis deletion queue.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Client wraps the go-redis client with health checking.
type Client struct {
	*redis.Client
}

// New parses url, connects and pings.
func New(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

// Check pings Redis for the readiness probe.
func (c *Client) Check(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// PoolCollector exposes go-redis pool statistics as Prometheus metrics.
type PoolCollector struct {
	client *redis.Client
	hits   *prometheus.Desc
	misses *prometheus.Desc
	total  *prometheus.Desc
	idle   *prometheus.Desc
}

// NewPoolCollector builds a collector; register it once at startup.
func NewPoolCollector(c *Client) *PoolCollector {
	return &PoolCollector{
		client: c.Client,
		hits:   prometheus.NewDesc("confessional_redis_pool_hits_total", "Connections found in the pool", nil, nil),
		misses: prometheus.NewDesc("confessional_redis_pool_misses_total", "Connections not found in the pool", nil, nil),
		total:  prometheus.NewDesc("confessional_redis_pool_total_conns", "Connections in the pool", nil, nil),
		idle:   prometheus.NewDesc("confessional_redis_pool_idle_conns", "Idle connections in the pool", nil, nil),
	}
}

func (p *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.hits
	ch <- p.misses
	ch <- p.total
	ch <- p.idle
}

func (p *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := p.client.PoolStats()
	ch <- prometheus.MustNewConstMetric(p.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(p.misses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(p.total, prometheus.GaugeValue, float64(stats.TotalConns))
	ch <- prometheus.MustNewConstMetric(p.idle, prometheus.GaugeValue, float64(stats.IdleConns))
}
