// Package metrics exposes the state of the ledger as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Source represents the ledger queries the collector reads on every scrape.
type Source interface {
	QueryChainLength() int
	QueryDifficulty() uint
	QueryMempoolLength() int
	IsValid() bool
}

// collector reads the ledger at scrape time, nothing is cached between
// scrapes.
type collector struct {
	src Source

	chainLength   *prometheus.Desc
	difficulty    *prometheus.Desc
	mempoolLength *prometheus.Desc
	chainValid    *prometheus.Desc
}

// NewCollector constructs a collector for the ledger. The namespace prefixes
// every metric name.
func NewCollector(namespace string, src Source) prometheus.Collector {
	return &collector{
		src: src,
		chainLength: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "blocks"),
			"Number of blocks in the chain, genesis included.",
			nil, nil,
		),
		difficulty: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "difficulty"),
			"Number of leading zeros required of the next block hash.",
			nil, nil,
		),
		mempoolLength: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mempool", "transactions"),
			"Number of transactions waiting to be mined.",
			nil, nil,
		),
		chainValid: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "valid"),
			"1 if every block links to its parent and its hash recomputes, otherwise 0.",
			nil, nil,
		),
	}
}

// Describe implements the prometheus.Collector interface.
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.chainLength
	ch <- c.difficulty
	ch <- c.mempoolLength
	ch <- c.chainValid
}

// Collect implements the prometheus.Collector interface.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.chainLength, prometheus.GaugeValue, float64(c.src.QueryChainLength()))
	ch <- prometheus.MustNewConstMetric(c.difficulty, prometheus.GaugeValue, float64(c.src.QueryDifficulty()))
	ch <- prometheus.MustNewConstMetric(c.mempoolLength, prometheus.GaugeValue, float64(c.src.QueryMempoolLength()))

	var valid float64
	if c.src.IsValid() {
		valid = 1
	}
	ch <- prometheus.MustNewConstMetric(c.chainValid, prometheus.GaugeValue, valid)
}

// Register adds a collector for the ledger to the registerer.
func Register(reg prometheus.Registerer, namespace string, src Source) error {
	return reg.Register(NewCollector(namespace, src))
}
