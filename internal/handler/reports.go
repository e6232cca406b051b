package handler

import (
	"net/http"

	"github.com/Gotsutoki/car-management-website/internal/apierror"
	"github.com/Gotsutoki/car-management-website/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// LowStock godoc
// @Summary      Low-stock report
// @Description  Cars whose stock is strictly below the configured threshold, lowest first.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.LowStockCar
// @Router       /v1/reports/low-stock [get]
func (h *ReportsHandler) LowStock(c *gin.Context) {
	rows, err := h.svc.LowStockCars(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Report query failed"))
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Expensive godoc
// @Summary      Expensive-cars report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        min_price query string false "Minimum price (default 5000000)"
// @Success      200 {array} dto.ExpensiveCar
// @Router       /v1/reports/expensive [get]
func (h *ReportsHandler) Expensive(c *gin.Context) {
	var minPrice *decimal.Decimal
	if raw := c.Query("min_price"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid min_price"))
			return
		}
		minPrice = &parsed
	}
	rows, err := h.svc.ExpensiveCars(c.Request.Context(), minPrice)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Report query failed"))
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Statistics godoc
// @Summary      Inventory statistics
// @Description  Totals, average price, and distinct model count. Cached briefly in redis.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.StatisticsResponse
// @Router       /v1/reports/statistics [get]
func (h *ReportsHandler) Statistics(c *gin.Context) {
	resp, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Report query failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AveragePrice godoc
// @Summary      Average car price
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.AveragePriceResponse
// @Router       /v1/reports/average-price [get]
func (h *ReportsHandler) AveragePrice(c *gin.Context) {
	resp, err := h.svc.AveragePrice(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Report query failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
