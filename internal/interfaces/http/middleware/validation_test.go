package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchantry/backend/internal/interfaces/http/dto"
)

type validationTestPayload struct {
	CustomerName string   `json:"customer_name" binding:"required,max=10"`
	Items        []string `json:"items" binding:"required,min=1"`
}

func newValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	engine := gin.New()
	engine.POST("/orders", func(c *gin.Context) {
		var payload validationTestPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
	})
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestValidation_FieldLevelDetails(t *testing.T) {
	engine := newValidationRouter()

	w := postJSON(t, engine, `{"items": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)

	fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
	assert.Contains(t, fields, "customer_name")
	assert.Contains(t, fields, "items")
}

func TestValidation_UsesJSONFieldNames(t *testing.T) {
	engine := newValidationRouter()

	w := postJSON(t, engine, `{"customer_name": "far too long a name", "items": ["x"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "customer_name", resp.Error.Details[0].Field)
	assert.Equal(t, "Must be at most 10 characters", resp.Error.Details[0].Message)
}

func TestValidation_MalformedJSONFallsBack(t *testing.T) {
	engine := newValidationRouter()

	w := postJSON(t, engine, `{"customer_name": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
