package handler

import (
	"net/http"

	"shipfire/internal/catalog"

	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	catalog *catalog.Catalog
}

func NewPricingHandler(cat *catalog.Catalog) *PricingHandler {
	return &PricingHandler{catalog: cat}
}

// List handles GET /api/v1/pricing. Public, so the storefront can render
// plans without a session.
func (h *PricingHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.catalog.Items()})
}
