package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"ALREADY_EXISTS", http.StatusConflict},
		{"CONCURRENT_MODIFICATION", http.StatusConflict},
		{"INVALID_INPUT", http.StatusBadRequest},
		{"INVALID_TRANSITION", http.StatusUnprocessableEntity},
		{"UNBALANCED_TRANSACTION", http.StatusUnprocessableEntity},
		{"INSUFFICIENT_STOCK", http.StatusUnprocessableEntity},
		{ErrCodeTenant, http.StatusUnauthorized},
		{ErrCodeRateLimit, http.StatusTooManyRequests},
		// naming-convention fallthrough for ad-hoc domain validation codes
		{"INVALID_FEE_PERCENTAGE", http.StatusUnprocessableEntity},
		{"DUPLICATE_SKU", http.StatusUnprocessableEntity},
		// unknown codes stay opaque
		{"SOMETHING_ODD", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "Order not found", "req-123")

	assert.False(t, resp.Success)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2, 3}, 45, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	data, err := json.Marshal(resp)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "error")
}
