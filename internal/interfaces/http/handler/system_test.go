package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchantry/backend/internal/interfaces/http/dto"
)

func TestSystemHandler_Info(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("Merchantry Backend", "1.0.0")
	require.False(t, h.startTime.IsZero())

	engine := gin.New()
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Merchantry Backend", data["name"])
	assert.Equal(t, "1.0.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_Ping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("Merchantry Backend", "1.0.0")

	engine := gin.New()
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pong", data["message"])

	ts, err := time.Parse(time.RFC3339, data["timestamp"].(string))
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}
