package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"stone_sales/internal/models"
	"stone_sales/internal/redis"
	"stone_sales/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errForbidden = errors.New("forbidden")

// Services lists the collaborators the HTTP layer dispatches to.
type Services struct {
	Orders       services.OrderService
	CustomOrders services.CustomOrderService
	Catalog      services.CatalogService
	Employees    services.EmployeeService
	Accounts     services.AccountService
}

type APIHandler struct {
	orders       services.OrderService
	customOrders services.CustomOrderService
	catalog      services.CatalogService
	employees    services.EmployeeService
	accounts     services.AccountService
	logger       *zap.Logger
}

func NewAPIHandler(svc Services, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		orders:       svc.Orders,
		customOrders: svc.CustomOrders,
		catalog:      svc.Catalog,
		employees:    svc.Employees,
		accounts:     svc.Accounts,
		logger:       logger,
	}
}

// errorStatus maps a service error onto an HTTP status and a stable error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, models.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, services.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "invalid_transition"
	case errors.Is(err, services.ErrNoChange):
		return http.StatusOK, "no_change"
	case errors.Is(err, services.ErrOrderReadOnly):
		return http.StatusLocked, "order_read_only"
	case errors.Is(err, services.ErrAlreadyConverted):
		return http.StatusConflict, "already_converted"
	case errors.Is(err, services.ErrConcurrentUpdate):
		return http.StatusConflict, "concurrent_update"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *APIHandler) respondError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

func (h *APIHandler) badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message, "code": "invalid_input"})
}

// idParam reads a positive numeric path parameter, answering 400 when it is malformed.
func (h *APIHandler) idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// optionalUintQuery returns nil when the query parameter is absent.
func optionalUintQuery(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	id := uint(value)
	return &id, nil
}

// ownsCustomer reports whether the session may act for customerID.
func ownsCustomer(session *redis.SessionData, customerID uint) bool {
	if session.Role == models.RoleAdmin {
		return true
	}
	return session.CustomerID != nil && *session.CustomerID == customerID
}

func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
