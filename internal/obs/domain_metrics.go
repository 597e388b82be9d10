package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// TotalsBuiltTotal counts totals computations by outcome.
	TotalsBuiltTotal *prometheus.CounterVec
	// TotalsAdjustments records how many adjustments survive filtering per computation.
	TotalsAdjustments prometheus.Histogram
	// ResolutionTotal counts resolver chain outcomes per resolved kind.
	ResolutionTotal *prometheus.CounterVec
	// ResolutionCacheHits counts per-request cache hits per resolved kind.
	ResolutionCacheHits *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		TotalsBuiltTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "totals_built_total",
			Help:      "Count of order totals computations by outcome.",
		}, []string{"result"})
		TotalsAdjustments = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "totals_adjustments",
			Help:      "Number of displayed adjustments per totals computation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		})
		ResolutionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_total",
			Help:      "Count of resolver chain runs by kind and outcome.",
		}, []string{"kind", "outcome"})
		ResolutionCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_cache_hits_total",
			Help:      "Count of per-request resolution cache hits by kind.",
		}, []string{"kind"})

		mustRegisterCollector(reg, TotalsBuiltTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				TotalsBuiltTotal = v
			}
		})
		mustRegisterCollector(reg, TotalsAdjustments, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				TotalsAdjustments = v
			}
		})
		mustRegisterCollector(reg, ResolutionTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ResolutionTotal = v
			}
		})
		mustRegisterCollector(reg, ResolutionCacheHits, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ResolutionCacheHits = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
