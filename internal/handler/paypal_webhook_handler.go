package handler

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"shipfire/internal/metrics"
	"shipfire/internal/service"
	"shipfire/pkg/payment"

	"github.com/gin-gonic/gin"
)

// PayPalVerifier is the slice of the PayPal adapter the webhook path needs.
type PayPalVerifier interface {
	VerifyWebhookSignature(ctx context.Context, body []byte, headers payment.WebhookHeaders) (bool, error)
}

type PayPalWebhookHandler struct {
	verifier  PayPalVerifier
	reconcile *service.ReconcileService
}

func NewPayPalWebhookHandler(verifier PayPalVerifier, reconcile *service.ReconcileService) *PayPalWebhookHandler {
	return &PayPalWebhookHandler{verifier: verifier, reconcile: reconcile}
}

type paypalWebhookEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID                string `json:"id"`
		CustomID          string `json:"custom_id"`
		InvoiceID         string `json:"invoice_id"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

// Handle processes PayPal webhook notifications. Only capture events mark an
// order paid; CHECKOUT.ORDER.APPROVED means the buyer agreed but no funds
// moved, so it is acknowledged without a status change.
func (h *PayPalWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notify data"})
		return
	}

	ok, err := h.verifier.VerifyWebhookSignature(c.Request.Context(), body, payment.WebhookHeadersFromRequest(c.Request.Header))
	if err != nil || !ok {
		log.Printf("[PayPal Webhook] signature verification failed: ok=%v err=%v", ok, err)
		metrics.WebhookEvents.WithLabelValues(payment.PayPal, "rejected").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var evt paypalWebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		metrics.WebhookEvents.WithLabelValues(payment.PayPal, "error").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	switch evt.EventType {
	case "PAYMENT.CAPTURE.COMPLETED", "PAYMENT.SALE.COMPLETED":
		// custom_id carries our order_no; related_ids.order_id is the PayPal
		// order stored as session_ref.
		ev := service.CaptureEvent{
			Provider:   payment.PayPal,
			EventID:    evt.ID,
			EventType:  evt.EventType,
			OrderNo:    firstNonEmpty(evt.Resource.CustomID, evt.Resource.InvoiceID),
			SessionRef: firstNonEmpty(evt.Resource.SupplementaryData.RelatedIDs.OrderID, evt.Resource.ID),
			Raw:        body,
		}
		if err := h.reconcile.ApplyCapture(c.Request.Context(), ev); err != nil {
			log.Printf("[PayPal Webhook] apply failed: %v", err)
			metrics.WebhookEvents.WithLabelValues(payment.PayPal, "error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
			return
		}
		metrics.WebhookEvents.WithLabelValues(payment.PayPal, "processed").Inc()
	case "CHECKOUT.ORDER.APPROVED":
		log.Printf("[PayPal Webhook] order approved, awaiting capture (event %s)", evt.ID)
		metrics.WebhookEvents.WithLabelValues(payment.PayPal, "ignored").Inc()
	default:
		log.Printf("[PayPal Webhook] unhandled event type %s", evt.EventType)
		metrics.WebhookEvents.WithLabelValues(payment.PayPal, "ignored").Inc()
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
