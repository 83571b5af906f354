package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"shipfire/config"
	"shipfire/internal/metrics"
	"shipfire/internal/service"
	"shipfire/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

type StripeWebhookHandler struct {
	cfg       *config.StripeConfig
	reconcile *service.ReconcileService
}

func NewStripeWebhookHandler(cfg *config.StripeConfig, reconcile *service.ReconcileService) *StripeWebhookHandler {
	return &StripeWebhookHandler{cfg: cfg, reconcile: reconcile}
}

// Handle processes Stripe webhook deliveries. Only captured payments progress
// an order; everything else is acknowledged and ignored.
func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if h.cfg.WebhookSecret == "" {
		// Fail closed rather than accept unverifiable events.
		log.Printf("[Stripe Webhook] rejected delivery: webhook secret not configured")
		metrics.WebhookEvents.WithLabelValues(payment.Stripe, "rejected").Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stripe webhook secret not configured"})
		return
	}

	event, err := webhook.ConstructEvent(body, c.GetHeader("Stripe-Signature"), h.cfg.WebhookSecret)
	if err != nil {
		log.Printf("[Stripe Webhook] signature verification failed: %v", err)
		metrics.WebhookEvents.WithLabelValues(payment.Stripe, "rejected").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	switch string(event.Type) {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			metrics.WebhookEvents.WithLabelValues(payment.Stripe, "error").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
			return
		}
		if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			// Completed session awaiting an async payment method; the
			// async_payment_succeeded event follows when funds land.
			metrics.WebhookEvents.WithLabelValues(payment.Stripe, "ignored").Inc()
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		ev := service.CaptureEvent{
			Provider:   payment.Stripe,
			EventID:    event.ID,
			EventType:  string(event.Type),
			OrderNo:    sess.Metadata["order_no"],
			SessionRef: sess.ID,
			PayerEmail: sess.Metadata["user_email"],
			Raw:        event.Data.Raw,
		}
		if err := h.reconcile.ApplyCapture(c.Request.Context(), ev); err != nil {
			log.Printf("[Stripe Webhook] apply failed: %v", err)
			metrics.WebhookEvents.WithLabelValues(payment.Stripe, "error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
			return
		}
		metrics.WebhookEvents.WithLabelValues(payment.Stripe, "processed").Inc()
	default:
		metrics.WebhookEvents.WithLabelValues(payment.Stripe, "ignored").Inc()
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
