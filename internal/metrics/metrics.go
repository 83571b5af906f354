package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_created_total",
		Help: "Orders created through the checkout endpoint, by provider.",
	}, []string{"provider"})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Inbound webhook deliveries by provider and outcome.",
	}, []string{"provider", "result"}) // result: processed | duplicate | ignored | rejected | error

	PaymentsCaptured = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_captured_total",
		Help: "Orders transitioned created to paid, by provider.",
	}, []string{"provider"})

	CreditsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "credits_issued_total",
		Help: "Credits granted from paid orders, by provider.",
	}, []string{"provider"})
)
