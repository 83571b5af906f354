package handler

import (
	"context"
	"log"
	"net/http"
	"strings"

	"shipfire/config"
	"shipfire/internal/domain"
	"shipfire/internal/service"

	"github.com/gin-gonic/gin"
)

// PayPalCapturer is the slice of the PayPal adapter the redirect path needs.
type PayPalCapturer interface {
	CaptureOrder(ctx context.Context, paypalOrderID string) error
}

// PaySuccessHandler serves the return URLs buyers land on after an external
// payment page. The webhook is authoritative for order status; these handlers
// only nudge pending orders along and always redirect to the success page.
type PaySuccessHandler struct {
	app      *config.AppConfig
	orders   service.OrderStore
	capturer PayPalCapturer
}

func NewPaySuccessHandler(app *config.AppConfig, orders service.OrderStore, capturer PayPalCapturer) *PaySuccessHandler {
	return &PaySuccessHandler{app: app, orders: orders, capturer: capturer}
}

// PayPal handles GET /:locale/pay-success/paypal?order_no=...
// If the order is still created the capture call is made eagerly, since
// PayPal only fires PAYMENT.CAPTURE.COMPLETED after a capture.
func (h *PaySuccessHandler) PayPal(c *gin.Context) {
	orderNo := c.Query("order_no")
	if orderNo == "" {
		log.Printf("[PayPal Success] missing order_no, redirecting anyway")
		h.redirect(c)
		return
	}
	order, err := h.orders.FindByOrderNo(c.Request.Context(), orderNo)
	if err != nil || order == nil {
		log.Printf("[PayPal Success] order %s not found: %v", orderNo, err)
		h.redirect(c)
		return
	}
	switch order.Status {
	case domain.OrderStatusPaid:
		// Webhook already landed, nothing to do.
	case domain.OrderStatusCreated:
		if order.SessionRef == "" || h.capturer == nil {
			log.Printf("[PayPal Success] order %s has no session to capture", orderNo)
			break
		}
		// Best effort: a failure usually means the order was captured
		// already or the webhook will settle it.
		if err := h.capturer.CaptureOrder(c.Request.Context(), order.SessionRef); err != nil {
			log.Printf("[PayPal Success] capture %s failed: %v", order.SessionRef, err)
		}
	default:
		log.Printf("[PayPal Success] order %s in unexpected status %s", orderNo, order.Status)
	}
	h.redirect(c)
}

// Stripe handles GET /:locale/pay-success/stripe/:session_id. Stripe captures
// on its own; this just logs the landing and redirects.
func (h *PaySuccessHandler) Stripe(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID != "" {
		if order, err := h.orders.FindBySessionRef(c.Request.Context(), "stripe", sessionID); err == nil && order != nil {
			log.Printf("[Stripe Success] order %s landed with status %s", order.OrderNo, order.Status)
		}
	}
	h.redirect(c)
}

// Creem handles GET /:locale/pay-success/creem.
func (h *PaySuccessHandler) Creem(c *gin.Context) {
	h.redirect(c)
}

func (h *PaySuccessHandler) redirect(c *gin.Context) {
	target := h.app.PaySuccessURL
	if target == "" {
		target = "/"
	}
	if strings.HasPrefix(target, "/") {
		locale := c.Param("locale")
		if locale == "" {
			locale = "en"
		}
		target = h.app.WebURL + "/" + locale + target
	}
	c.Redirect(http.StatusFound, target)
}
