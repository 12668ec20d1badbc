package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// StatSource is satisfied by *pgxpool.Pool.
type StatSource interface {
	Stat() *pgxpool.Stat
}

// PoolCollector exports connection pool statistics at scrape time.
type PoolCollector struct {
	src StatSource

	acquired      *prometheus.Desc
	idle          *prometheus.Desc
	total         *prometheus.Desc
	max           *prometheus.Desc
	acquireCount  *prometheus.Desc
	emptyAcquires *prometheus.Desc
	waitSeconds   *prometheus.Desc
	canceled      *prometheus.Desc
}

func NewPoolCollector(src StatSource) *PoolCollector {
	d := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("items", "db_pool", name), help, nil, nil)
	}
	return &PoolCollector{
		src:           src,
		acquired:      d("acquired_conns", "Connections currently checked out."),
		idle:          d("idle_conns", "Idle connections in the pool."),
		total:         d("total_conns", "Total connections in the pool."),
		max:           d("max_conns", "Configured pool capacity."),
		acquireCount:  d("acquires_total", "Successful connection acquisitions."),
		emptyAcquires: d("empty_acquires_total", "Acquisitions that had to wait because the pool was empty."),
		waitSeconds:   d("acquire_wait_seconds_total", "Total time spent waiting for a connection."),
		canceled:      d("canceled_acquires_total", "Acquisitions abandoned because their context ended."),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
	ch <- c.max
	ch <- c.acquireCount
	ch <- c.emptyAcquires
	ch <- c.waitSeconds
	ch <- c.canceled
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(s.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(s.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.emptyAcquires, prometheus.CounterValue, float64(s.EmptyAcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.waitSeconds, prometheus.CounterValue, s.AcquireDuration().Seconds())
	ch <- prometheus.MustNewConstMetric(c.canceled, prometheus.CounterValue, float64(s.CanceledAcquireCount()))
}
