package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"stone_sales/internal/models"
	"stone_sales/internal/repository"
	"stone_sales/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PlaceOrder lets customers buy for themselves. Admins must name the customer.
func (h *APIHandler) PlaceOrder(c *gin.Context) {
	var req services.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request format")
		return
	}

	session := currentSession(c)
	if session.Role == models.RoleCustomer {
		if session.CustomerID == nil {
			h.respondError(c, errForbidden)
			return
		}
		req.CustomerID = *session.CustomerID
	} else if req.CustomerID == 0 {
		h.badRequest(c, "customer_id is required")
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, services.NewOrderView(*order))
}

// ListOrders serves ?view=active|archived. Customers only ever see their own orders.
func (h *APIHandler) ListOrders(c *gin.Context) {
	filter, ok := h.orderFilter(c)
	if !ok {
		return
	}

	session := currentSession(c)
	if session.Role != models.RoleAdmin {
		if session.CustomerID == nil {
			h.respondError(c, errForbidden)
			return
		}
		filter.CustomerID = session.CustomerID
	}

	ctx := c.Request.Context()
	var (
		views []services.OrderView
		err   error
	)
	switch c.Query("view") {
	case "active":
		views, err = h.orders.ListActive(ctx, filter)
	case "archived":
		views, err = h.orders.ListArchived(ctx, filter)
	case "", "all":
		views, err = h.orders.ListOrders(ctx, filter)
	default:
		h.badRequest(c, "view must be active or archived")
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": views, "count": len(views)})
}

func (h *APIHandler) orderFilter(c *gin.Context) (repository.OrderFilter, bool) {
	var filter repository.OrderFilter
	var err error

	if filter.CustomerID, err = optionalUintQuery(c, "customer_id"); err != nil {
		h.badRequest(c, "Invalid customer_id")
		return filter, false
	}
	if filter.EmployeeID, err = optionalUintQuery(c, "employee_id"); err != nil {
		h.badRequest(c, "Invalid employee_id")
		return filter, false
	}
	for name, target := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.badRequest(c, "Invalid "+name+", expected RFC3339")
			return filter, false
		}
		parsed = parsed.UTC()
		*target = &parsed
	}
	return filter, true
}

func (h *APIHandler) GetOrder(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ownsCustomer(currentSession(c), order.CustomerID) {
		h.respondError(c, errForbidden)
		return
	}

	view := services.NewOrderView(*order)
	c.JSON(http.StatusOK, gin.H{
		"order":       view,
		"transitions": services.AllowedTransitions(order.Status),
	})
}

func (h *APIHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request format")
		return
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondTransition(c, id, status)
}

func (h *APIHandler) CancelOrder(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	h.respondTransition(c, id, models.OrderCancelled)
}

// respondTransition answers a same-status request with 200 and changed=false.
func (h *APIHandler) respondTransition(c *gin.Context, id uint, status models.OrderStatus) {
	order, err := h.orders.TransitionStatus(c.Request.Context(), id, status)
	if errors.Is(err, services.ErrNoChange) && order != nil {
		c.JSON(http.StatusOK, gin.H{"order": services.NewOrderView(*order), "changed": false})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": services.NewOrderView(*order), "changed": true})
}

func (h *APIHandler) AssignEmployee(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		EmployeeID uint `json:"employee_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request format")
		return
	}

	order, err := h.orders.AssignEmployee(c.Request.Context(), id, req.EmployeeID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.NewOrderView(*order))
}

func (h *APIHandler) UnassignEmployee(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.UnassignEmployee(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.NewOrderView(*order))
}

func (h *APIHandler) SubmitCustomOrder(c *gin.Context) {
	var req services.SubmitCustomOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request format")
		return
	}

	session := currentSession(c)
	if session.Role == models.RoleCustomer {
		if session.CustomerID == nil {
			h.respondError(c, errForbidden)
			return
		}
		req.CustomerID = *session.CustomerID
	} else if req.CustomerID == 0 {
		h.badRequest(c, "customer_id is required")
		return
	}

	customOrder, err := h.customOrders.Submit(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customOrder)
}

func (h *APIHandler) ListCustomOrders(c *gin.Context) {
	var filter services.CustomOrderFilter
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseCustomOrderStatus(raw)
		if err != nil {
			h.respondError(c, err)
			return
		}
		filter.Status = &status
	}

	session := currentSession(c)
	if session.Role == models.RoleAdmin {
		customerID, err := optionalUintQuery(c, "customer_id")
		if err != nil {
			h.badRequest(c, "Invalid customer_id")
			return
		}
		filter.CustomerID = customerID
	} else {
		if session.CustomerID == nil {
			h.respondError(c, errForbidden)
			return
		}
		filter.CustomerID = session.CustomerID
	}

	customOrders, err := h.customOrders.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"custom_orders": customOrders, "count": len(customOrders)})
}

func (h *APIHandler) GetCustomOrder(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	customOrder, err := h.customOrders.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ownsCustomer(currentSession(c), customOrder.CustomerID) {
		h.respondError(c, errForbidden)
		return
	}
	c.JSON(http.StatusOK, customOrder)
}

// ConvertCustomOrder accepts an optional body {"stone_id", "unit_price"} that
// prices the new order against a catalog stone.
func (h *APIHandler) ConvertCustomOrder(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		StoneID   *uint            `json:"stone_id"`
		UnitPrice *decimal.Decimal `json:"unit_price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, "Invalid request format")
		return
	}

	var pricing *services.ConversionPricing
	if req.StoneID != nil {
		pricing = &services.ConversionPricing{StoneID: *req.StoneID, UnitPrice: req.UnitPrice}
	} else if req.UnitPrice != nil {
		h.badRequest(c, "unit_price requires stone_id")
		return
	}

	orderID, err := h.customOrders.Convert(c.Request.Context(), id, pricing)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order_id": orderID, "custom_order_id": id})
}

func (h *APIHandler) RejectCustomOrder(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	customOrder, err := h.customOrders.Reject(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customOrder)
}
