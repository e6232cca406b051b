package handler

import (
	"net/http"

	"github.com/Gotsutoki/car-management-website/internal/dto"
	"github.com/Gotsutoki/car-management-website/internal/service"

	"github.com/gin-gonic/gin"
)

type CarsHandler struct{ svc service.CarService }

func NewCarsHandler(svc service.CarService) *CarsHandler { return &CarsHandler{svc: svc} }

// Create godoc
// @Summary      Add a car to the inventory
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateCarRequest true "Car data"
// @Success      201  {object} dto.CarResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/cars [post]
func (h *CarsHandler) Create(c *gin.Context) {
	var req dto.CreateCarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List cars
// @Description  Paginated listing with brand/model search and year, price, and stock filters.
// @Tags         cars
// @Produce      json
// @Security     BearerAuth
// @Param        brand     query string false "Brand substring (case-insensitive)"
// @Param        model     query string false "Model substring (case-insensitive)"
// @Param        year_min  query int    false "Minimum year"
// @Param        year_max  query int    false "Maximum year"
// @Param        price_min query string false "Minimum price"
// @Param        price_max query string false "Maximum price"
// @Param        order_by  query string false "price | year | stock | created_at"
// @Param        page      query int    false "Page (default 1)"
// @Param        limit     query int    false "Items per page (default 20)"
// @Success      200 {object} dto.CarListResponse
// @Router       /v1/cars [get]
func (h *CarsHandler) List(c *gin.Context) {
	var filter dto.CarFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary      Get a car
// @Tags         cars
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Car UUID"
// @Success      200 {object} dto.CarResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/cars/{id} [get]
func (h *CarsHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update a car
// @Description  Partial update; omitted fields keep their values. Price changes never touch existing sales.
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string               true "Car UUID"
// @Param        body body dto.UpdateCarRequest true "Fields to update"
// @Success      200  {object} dto.CarResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/cars/{id} [put]
func (h *CarsHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdateCarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Remove a car
// @Description  Rejected with 409 while sales still reference the car.
// @Tags         cars
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Car UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/cars/{id} [delete]
func (h *CarsHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock godoc
// @Summary      Manually adjust stock
// @Description  Applies a signed delta under the same locking discipline as sales. Overdraws are rejected with 409.
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Car UUID"
// @Param        body body dto.AdjustStockRequest true "Delta and reason"
// @Success      200  {object} dto.CarResponse
// @Failure      409  {object} apierror.StockConflict
// @Router       /v1/cars/{id}/stock [patch]
func (h *CarsHandler) AdjustStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
