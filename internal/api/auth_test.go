package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealwise/backend/internal/api"
	"github.com/mealwise/backend/internal/service"
	"github.com/mealwise/backend/internal/testhelpers"
)

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	handler := api.NewAuthHandler(service.NewAuthService(db, "test-secret"))

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	router := setupAuthRouter(t)

	w := postJSON(router, "/api/v1/auth/register", gin.H{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	// Duplicate email conflicts.
	w = postJSON(router, "/api/v1/auth/register", gin.H{
		"name":     "Ada Again",
		"email":    "ada@example.com",
		"password": "password456",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterEndpointValidation(t *testing.T) {
	router := setupAuthRouter(t)

	t.Run("invalid email", func(t *testing.T) {
		w := postJSON(router, "/api/v1/auth/register", gin.H{
			"name":     "Ada",
			"email":    "not-an-email",
			"password": "password123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		w := postJSON(router, "/api/v1/auth/register", gin.H{
			"name":     "Ada",
			"email":    "ada@example.com",
			"password": "ab",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	router := setupAuthRouter(t)

	w := postJSON(router, "/api/v1/auth/register", gin.H{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(router, "/api/v1/auth/login", gin.H{
		"email":    "ada@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	w = postJSON(router, "/api/v1/auth/login", gin.H{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
