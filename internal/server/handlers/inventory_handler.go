package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/domain/models"
	"github.com/mamadbah2/bubbel/internal/service/reporting"
)

// InventoryService adjusts stock levels.
type InventoryService interface {
	Restock(ctx context.Context, product string, quantity int) (models.InventoryItem, error)
	Consume(ctx context.Context, product string, quantity int) (models.InventoryItem, error)
}

// InventoryLister reads the classified inventory.
type InventoryLister interface {
	Inventory(ctx context.Context) ([]reporting.InventoryStatus, []string)
}

// InventoryHandler serves /api/inventory.
type InventoryHandler struct {
	svc    InventoryService
	lister InventoryLister
	logger *zap.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(svc InventoryService, lister InventoryLister, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, lister: lister, logger: logger}
}

type quantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// List returns every product with its stock status.
func (h *InventoryHandler) List(c *gin.Context) {
	items, warnings := h.lister.Inventory(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"items": items, "warnings": warnings})
}

// Restock adds the posted quantity to :product and logs the replenishment.
func (h *InventoryHandler) Restock(c *gin.Context) {
	h.adjust(c, h.svc.Restock)
}

// Consume removes the posted quantity from :product. Stock never drops below zero.
func (h *InventoryHandler) Consume(c *gin.Context) {
	h.adjust(c, h.svc.Consume)
}

func (h *InventoryHandler) adjust(c *gin.Context, op func(context.Context, string, int) (models.InventoryItem, error)) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}

	item, err := op(c.Request.Context(), c.Param("product"), req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reporting.InventoryStatus{InventoryItem: item, Status: item.Status()})
}
