package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// SettlementMetrics tracks the money-moving side effects of orders and payouts.
type SettlementMetrics struct {
	commissionsCreated *prometheus.CounterVec
	commissionsVoided  prometheus.Counter
	payoutsGenerated   *prometheus.CounterVec
	payoutAmount       *prometheus.CounterVec
	payoutsPaid        prometheus.Counter
	stockConflicts     prometheus.Counter
}

func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	m := &SettlementMetrics{
		commissionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commissions_created_total",
			Help:      "Commission records created, by tier.",
		}, []string{"type"}),
		commissionsVoided: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commissions_voided_total",
			Help:      "Commission records voided by refunds.",
		}),
		payoutsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payouts_generated_total",
			Help:      "Payouts generated, by trigger.",
		}, []string{"trigger"}),
		payoutAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payout_amount_total",
			Help:      "Sum of generated payout amounts, by trigger.",
		}, []string{"trigger"}),
		payoutsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payouts_paid_total",
			Help:      "Payouts marked as paid.",
		}),
		stockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_stock_conflicts_total",
			Help:      "Order creations rejected for insufficient stock.",
		}),
	}
	reg.MustRegister(m.commissionsCreated, m.commissionsVoided, m.payoutsGenerated, m.payoutAmount, m.payoutsPaid, m.stockConflicts)
	return m
}

func (m *SettlementMetrics) CommissionCreated(commissionType string) {
	if m == nil || m.commissionsCreated == nil {
		return
	}
	m.commissionsCreated.WithLabelValues(normalizeLabel(commissionType)).Inc()
}

func (m *SettlementMetrics) CommissionsVoided(count int) {
	if m == nil || m.commissionsVoided == nil || count <= 0 {
		return
	}
	m.commissionsVoided.Add(float64(count))
}

func (m *SettlementMetrics) PayoutGenerated(trigger string, amount decimal.Decimal) {
	if m == nil || m.payoutsGenerated == nil {
		return
	}
	m.payoutsGenerated.WithLabelValues(normalizeLabel(trigger)).Inc()
	m.payoutAmount.WithLabelValues(normalizeLabel(trigger)).Add(amount.InexactFloat64())
}

func (m *SettlementMetrics) PayoutPaid() {
	if m == nil || m.payoutsPaid == nil {
		return
	}
	m.payoutsPaid.Inc()
}

func (m *SettlementMetrics) StockConflict() {
	if m == nil || m.stockConflicts == nil {
		return
	}
	m.stockConflicts.Inc()
}
