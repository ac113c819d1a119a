package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PricingComputeTotal counts totals recomputations.
	PricingComputeTotal prometheus.Counter
	// DiscountResolutionsTotal counts discount resolution outcomes. The
	// unknown_type outcome surfaces malformed catalog data that the engine
	// silently degrades on.
	DiscountResolutionsTotal *prometheus.CounterVec
	// SolverAppliedTotal counts reverse-solver applications.
	SolverAppliedTotal prometheus.Counter
	// DraftMutationsTotal counts draft line mutations by field.
	DraftMutationsTotal *prometheus.CounterVec
	// WorkerTaskTotal counts background task runs by task and result.
	WorkerTaskTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PricingComputeTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_compute_total",
			Help:      "Total number of order-total recomputations.",
		})
		DiscountResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_resolutions_total",
			Help:      "Count of discount resolutions by outcome.",
		}, []string{"outcome"})
		SolverAppliedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solver_applied_total",
			Help:      "Number of target-total solves applied to drafts.",
		})
		DraftMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_mutations_total",
			Help:      "Count of draft item mutations by field.",
		}, []string{"field"})
		WorkerTaskTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_task_total",
			Help:      "Count of background task runs by task and result.",
		}, []string{"task", "result"})

		mustRegisterCollector(reg, PricingComputeTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				PricingComputeTotal = v
			}
		})
		mustRegisterCollector(reg, DiscountResolutionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DiscountResolutionsTotal = v
			}
		})
		mustRegisterCollector(reg, SolverAppliedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				SolverAppliedTotal = v
			}
		})
		mustRegisterCollector(reg, DraftMutationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DraftMutationsTotal = v
			}
		})
		mustRegisterCollector(reg, WorkerTaskTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				WorkerTaskTotal = v
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
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
