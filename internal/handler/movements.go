package handler

import (
	"net/http"

	"github.com/Gotsutoki/car-management-website/internal/apierror"
	"github.com/Gotsutoki/car-management-website/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MovementsHandler exposes the stock movement audit trail. Read-only —
// movements are written exclusively by the sale engine and manual adjustments.
type MovementsHandler struct{ repo repository.StockMovementRepository }

func NewMovementsHandler(repo repository.StockMovementRepository) *MovementsHandler {
	return &MovementsHandler{repo: repo}
}

// List godoc
// @Summary      List stock movements
// @Tags         movements
// @Produce      json
// @Security     BearerAuth
// @Param        car   query string false "Filter by car UUID"
// @Param        type  query string false "sale | sale_update | sale_delete | manual_adjust"
// @Param        page  query int    false "Page (default 1)"
// @Param        limit query int    false "Items per page (default 50)"
// @Success      200 {object} map[string]interface{}
// @Router       /v1/movements [get]
func (h *MovementsHandler) List(c *gin.Context) {
	filter := repository.StockMovementFilter{
		Type: c.Query("type"),
	}
	if raw := c.Query("car"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid car UUID"))
			return
		}
		filter.CarID = &id
	}
	if v, err := parsePositiveQueryInt(c, "page"); err == nil {
		filter.Page = v
	}
	if v, err := parsePositiveQueryInt(c, "limit"); err == nil {
		filter.Limit = v
	}

	movements, total, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Movement query failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  movements,
		"total": total,
	})
}
