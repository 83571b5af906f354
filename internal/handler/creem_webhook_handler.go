package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"shipfire/internal/metrics"
	"shipfire/internal/service"
	"shipfire/pkg/payment"

	"github.com/gin-gonic/gin"
)

// CreemVerifier is the slice of the Creem adapter the webhook path needs.
type CreemVerifier interface {
	VerifySignature(body []byte, signature string) bool
}

type CreemWebhookHandler struct {
	verifier  CreemVerifier
	reconcile *service.ReconcileService
}

func NewCreemWebhookHandler(verifier CreemVerifier, reconcile *service.ReconcileService) *CreemWebhookHandler {
	return &CreemWebhookHandler{verifier: verifier, reconcile: reconcile}
}

type creemWebhookEvent struct {
	ID        string `json:"id"`
	EventType string `json:"eventType"`
	Object    struct {
		ID        string `json:"id"`
		RequestID string `json:"request_id"`
		Metadata  struct {
			OrderNo   string `json:"order_no"`
			UserEmail string `json:"user_email"`
		} `json:"metadata"`
	} `json:"object"`
}

// Handle processes Creem webhook deliveries. Authenticity is an HMAC of the
// raw body in the creem-signature header; an unconfigured secret fails closed.
func (h *CreemWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if !h.verifier.VerifySignature(body, c.GetHeader("creem-signature")) {
		log.Printf("[Creem Webhook] signature verification failed")
		metrics.WebhookEvents.WithLabelValues(payment.Creem, "rejected").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var evt creemWebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		metrics.WebhookEvents.WithLabelValues(payment.Creem, "error").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	switch evt.EventType {
	case "checkout.completed":
		ev := service.CaptureEvent{
			Provider:   payment.Creem,
			EventID:    evt.ID,
			EventType:  evt.EventType,
			OrderNo:    firstNonEmpty(evt.Object.RequestID, evt.Object.Metadata.OrderNo),
			SessionRef: evt.Object.ID,
			PayerEmail: evt.Object.Metadata.UserEmail,
			Raw:        body,
		}
		if err := h.reconcile.ApplyCapture(c.Request.Context(), ev); err != nil {
			log.Printf("[Creem Webhook] apply failed: %v", err)
			metrics.WebhookEvents.WithLabelValues(payment.Creem, "error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
			return
		}
		metrics.WebhookEvents.WithLabelValues(payment.Creem, "processed").Inc()
	default:
		log.Printf("[Creem Webhook] unhandled event type %s", evt.EventType)
		metrics.WebhookEvents.WithLabelValues(payment.Creem, "ignored").Inc()
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
