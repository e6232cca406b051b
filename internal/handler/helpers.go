package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/Gotsutoki/car-management-website/internal/apierror"
	"github.com/Gotsutoki/car-management-website/internal/service"
	"github.com/Gotsutoki/car-management-website/internal/stock"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQuery binds and validates query-string filters.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	if err := validate.Struct(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query parameters"))
		return false
	}
	return true
}

// parsePositiveQueryInt reads a positive integer query parameter.
func parsePositiveQueryInt(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return 0, errors.New("not a positive integer")
	}
	return v, nil
}

// parseIDParam parses the :id path parameter as a UUID.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps service-layer errors onto HTTP responses.
// Insufficient stock gets the 409 conflict envelope carrying the available
// count; exhausted contention retries get 503 so clients know to retry.
func writeServiceError(c *gin.Context, err error) {
	var insufficientErr *stock.InsufficientStockError
	var invariantErr *service.InvariantViolationError

	switch {
	case errors.As(err, &insufficientErr):
		c.JSON(http.StatusConflict, &apierror.StockConflict{
			Detail:    "Insufficient stock",
			CarID:     insufficientErr.CarID.String(),
			Available: insufficientErr.Available,
			Requested: insufficientErr.Requested,
		})
	case errors.Is(err, service.ErrCarNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrSaleNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrCarHasSales),
		errors.Is(err, service.ErrCustomerHasSales),
		errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrBusy):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, apierror.New("Resource busy, retry later"))
	case errors.As(err, &invariantErr):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
