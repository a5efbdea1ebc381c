package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"stone_sales/internal/models"
	"stone_sales/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrNotFound, http.StatusNotFound, "not_found"},
		{services.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{models.ErrInvalidStatus, http.StatusBadRequest, "invalid_input"},
		{services.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
		{&services.TransitionError{Err: services.ErrInvalidTransition}, http.StatusUnprocessableEntity, "invalid_transition"},
		{services.ErrNoChange, http.StatusOK, "no_change"},
		{fmt.Errorf("wrapped: %w", services.ErrOrderReadOnly), http.StatusLocked, "order_read_only"},
		{services.ErrAlreadyConverted, http.StatusConflict, "already_converted"},
		{services.ErrConcurrentUpdate, http.StatusConflict, "concurrent_update"},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{services.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{errForbidden, http.StatusForbidden, "forbidden"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		status, code := errorStatus(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("Bearer "))
}
