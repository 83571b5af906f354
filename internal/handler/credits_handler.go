package handler

import (
	"errors"
	"log"
	"net/http"

	"shipfire/config"
	"shipfire/internal/domain"
	"shipfire/internal/middleware"
	"shipfire/internal/service"

	"github.com/gin-gonic/gin"
)

type CreditsHandler struct {
	credits *service.CreditService
	cfg     *config.CreditsConfig
}

func NewCreditsHandler(credits *service.CreditService, cfg *config.CreditsConfig) *CreditsHandler {
	return &CreditsHandler{credits: credits, cfg: cfg}
}

// Me handles GET /api/v1/credits: the caller's balance and recent ledger.
func (h *CreditsHandler) Me(c *gin.Context) {
	userUUID := middleware.GetUserUUID(c)
	balance, err := h.credits.Balance(c.Request.Context(), userUUID)
	if err != nil {
		log.Printf("[Credits] balance lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "credits lookup failed"})
		return
	}
	history, err := h.credits.History(c.Request.Context(), userUUID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "credits lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"left_credits": balance, "records": history})
}

// Grant handles POST /api/v1/admin/credits/grant, an admin-only manual
// adjustment.
func (h *CreditsHandler) Grant(c *gin.Context) {
	var req struct {
		UserUUID string `json:"user_uuid" binding:"required"`
		Credits  int    `json:"credits" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid params"})
		return
	}
	if err := h.credits.Grant(c.Request.Context(), req.UserUUID, req.Credits); err != nil {
		log.Printf("[Credits] grant failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "grant failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ConsumeImageGen handles POST /api/v1/consume-image-credits, debiting the
// image-generation cost before a generation runs.
func (h *CreditsHandler) ConsumeImageGen(c *gin.Context) {
	userUUID := middleware.GetUserUUID(c)
	cost := h.cfg.ImageGenCost
	left, err := h.credits.Consume(c.Request.Context(), userUUID, cost, domain.CreditTransImageGen)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientCredits) {
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":        "insufficient credits",
				"insufficient": true,
				"required":     cost,
				"available":    left,
			})
			return
		}
		log.Printf("[Credits] consume failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "consume credits failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "left_credits": left})
}
