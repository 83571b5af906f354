package handler

import (
	"log"
	"net/http"
	"strconv"

	"shipfire/internal/middleware"
	"shipfire/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct {
	orders service.OrderStore
}

func NewOrdersHandler(orders service.OrderStore) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// List handles GET /api/v1/orders for the authenticated user.
func (h *OrdersHandler) List(c *gin.Context) {
	userUUID := middleware.GetUserUUID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	orders, err := h.orders.ListByUser(c.Request.Context(), userUUID, limit)
	if err != nil {
		log.Printf("[Orders] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "orders lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
