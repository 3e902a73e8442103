package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// TransactionWritesTotal counts transaction write outcomes by operation.
	TransactionWritesTotal *prometheus.CounterVec
	// AnalyticsCacheTotal counts analytics report cache lookups by result.
	AnalyticsCacheTotal *prometheus.CounterVec
	// NotifyDeliveriesTotal counts event notifier dispatch outcomes.
	NotifyDeliveriesTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		TransactionWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_writes_total",
			Help:      "Count of transaction write outcomes by operation.",
		}, []string{"op", "result"})
		AnalyticsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_cache_total",
			Help:      "Count of analytics report cache lookups by result.",
		}, []string{"result"})
		NotifyDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_deliveries_total",
			Help:      "Count of event notifier dispatch outcomes.",
		}, []string{"notifier", "result"})

		mustRegisterCollector(reg, TransactionWritesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				TransactionWritesTotal = v
			}
		})
		mustRegisterCollector(reg, AnalyticsCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				AnalyticsCacheTotal = v
			}
		})
		mustRegisterCollector(reg, NotifyDeliveriesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				NotifyDeliveriesTotal = v
			}
		})
	})
}

// CountTransactionWrite records a transaction write outcome. Safe to call
// before metrics registration.
func CountTransactionWrite(op, result string) {
	if TransactionWritesTotal == nil {
		return
	}
	TransactionWritesTotal.WithLabelValues(op, result).Inc()
}

// CountAnalyticsCache records an analytics cache lookup result.
func CountAnalyticsCache(result string) {
	if AnalyticsCacheTotal == nil {
		return
	}
	AnalyticsCacheTotal.WithLabelValues(result).Inc()
}

// CountNotifyDelivery records a notifier dispatch outcome.
func CountNotifyDelivery(notifier, result string) {
	if NotifyDeliveriesTotal == nil {
		return
	}
	NotifyDeliveriesTotal.WithLabelValues(notifier, result).Inc()
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
