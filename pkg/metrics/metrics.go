package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Marketplace records the counters operators watch on the order and OTP
// paths. A nil receiver (or nil registerer) turns every method into a no-op
// so tests and workers can skip registration.
type Marketplace struct {
	ordersPlaced   prometheus.Counter
	ordersRejected *prometheus.CounterVec
	otpIssued      prometheus.Counter
	otpVerified    *prometheus.CounterVec
}

// NewMarketplace registers the marketplace metrics on the provided registerer.
func NewMarketplace(reg prometheus.Registerer) *Marketplace {
	if reg == nil {
		return &Marketplace{}
	}
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Order line items committed successfully.",
	})
	ordersRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Order placement batches rolled back.",
	}, []string{"reason"})
	otpIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "otp_issued_total",
		Help: "One-time passcodes issued.",
	})
	otpVerified := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_verified_total",
		Help: "One-time passcode verification attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(ordersPlaced, ordersRejected, otpIssued, otpVerified)
	return &Marketplace{
		ordersPlaced:   ordersPlaced,
		ordersRejected: ordersRejected,
		otpIssued:      otpIssued,
		otpVerified:    otpVerified,
	}
}

// IncOrdersPlaced counts committed line items.
func (m *Marketplace) IncOrdersPlaced(n int) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Add(float64(n))
}

// IncOrdersRejected counts rolled-back batches by reason.
func (m *Marketplace) IncOrdersRejected(reason string) {
	if m == nil || m.ordersRejected == nil {
		return
	}
	m.ordersRejected.WithLabelValues(reason).Inc()
}

// IncOTPIssued counts issued passcodes.
func (m *Marketplace) IncOTPIssued() {
	if m == nil || m.otpIssued == nil {
		return
	}
	m.otpIssued.Inc()
}

// IncOTPVerified counts verification attempts by outcome.
func (m *Marketplace) IncOTPVerified(outcome string) {
	if m == nil || m.otpVerified == nil {
		return
	}
	m.otpVerified.WithLabelValues(outcome).Inc()
}
