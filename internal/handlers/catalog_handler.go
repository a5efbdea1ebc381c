package handlers

import (
	"net/http"

	"stone_sales/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) ListStones(c *gin.Context) {
	stones, err := h.catalog.ListStones(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stones": stones, "count": len(stones)})
}

func (h *APIHandler) GetStone(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	stone, err := h.catalog.GetStone(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stone)
}

func (h *APIHandler) CreateStone(c *gin.Context) {
	var input services.StoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "Invalid request format")
		return
	}

	stone, err := h.catalog.CreateStone(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stone)
}

func (h *APIHandler) UpdateStone(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input services.StoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "Invalid request format")
		return
	}

	stone, err := h.catalog.UpdateStone(c.Request.Context(), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stone)
}

func (h *APIHandler) DeleteStone(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteStone(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) RestockStone(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request format")
		return
	}

	stone, err := h.catalog.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stone)
}

func (h *APIHandler) ListEmployees(c *gin.Context) {
	employees, err := h.employees.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees, "count": len(employees)})
}

func (h *APIHandler) CreateEmployee(c *gin.Context) {
	var input services.EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "Invalid request format")
		return
	}

	employee, err := h.employees.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func (h *APIHandler) UpdateEmployee(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input services.EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "Invalid request format")
		return
	}

	employee, err := h.employees.Update(c.Request.Context(), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *APIHandler) DeleteEmployee(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	if err := h.employees.Remove(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
