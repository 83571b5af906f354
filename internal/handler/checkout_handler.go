package handler

import (
	"errors"
	"log"
	"net/http"

	"shipfire/internal/metrics"
	"shipfire/internal/middleware"
	"shipfire/internal/service"
	"shipfire/pkg/payment"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkout *service.CheckoutService
}

func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// Create handles POST /api/v1/checkout. The response shape depends on the
// provider: redirect-based ones return an approval/checkout URL, Stripe
// returns a session id plus publishable key for the embedded widget.
func (h *CheckoutHandler) Create(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid params"})
		return
	}

	userUUID := middleware.GetUserUUID(c)
	userEmail := middleware.GetUserEmail(c)

	result, err := h.checkout.Checkout(c.Request.Context(), userUUID, userEmail, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	metrics.OrdersCreated.WithLabelValues(result.PayType).Inc()

	sess := result.Session
	switch result.PayType {
	case payment.Stripe:
		c.JSON(http.StatusOK, gin.H{
			"payment_method": payment.Stripe,
			"order_no":       result.OrderNo,
			"session_id":     sess.SessionRef,
			"public_key":     sess.PublicKey,
		})
	case payment.PayPal:
		c.JSON(http.StatusOK, gin.H{
			"payment_method": payment.PayPal,
			"order_no":       result.OrderNo,
			"order_id":       sess.SessionRef,
			"approval_url":   sess.CheckoutURL,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"payment_method": payment.Creem,
			"order_no":       result.OrderNo,
			"session_id":     sess.SessionRef,
			"checkout_url":   sess.CheckoutURL,
		})
	}
}

func (h *CheckoutHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidParams):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoAuth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidUser):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoProvider), errors.Is(err, service.ErrProviderDisabled):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[Checkout] failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
	}
}
