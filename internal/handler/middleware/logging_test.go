//go:build unit

package middleware_test

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"rental-engine/internal/handler/httperr"
	"rental-engine/internal/handler/middleware"
	"rental-engine/internal/testutil/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggedRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := gin.New()
	router.Use(middleware.CustomRecovery(), middleware.RequestLogging(logger), middleware.ErrorHandler())
	router.GET("/orders/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": middleware.GetRequestID(c)})
	})
	router.GET("/boom", func(*gin.Context) {
		panic("ledger exploded")
	})
	router.GET("/deferred", func(c *gin.Context) {
		resp := httperr.Response{Status: http.StatusConflict}
		resp.Error.Message = "Invalid state transition"
		_ = c.Error(gin.Error{Err: errors.New("conflict"), Type: gin.ErrorTypePublic, Meta: resp})
	})
	return router
}

func TestRequestLogging(t *testing.T) {
	t.Run("generates and echoes a request id", func(t *testing.T) {
		var buf bytes.Buffer
		router := newLoggedRouter(&buf)
		orderID := uuid.New().String()

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/orders/"+orderID, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		id := rec.Header().Get(middleware.RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err, "generated ids are uuids")

		var body struct {
			RequestID string `json:"request_id"`
		}
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.Equal(t, id, body.RequestID)

		logs := buf.String()
		assert.Contains(t, logs, "route=/orders/:id")
		assert.Contains(t, logs, "order_id="+orderID)
		assert.Contains(t, logs, "status_code=200")
	})

	t.Run("keeps the caller's request id", func(t *testing.T) {
		var buf bytes.Buffer
		router := newLoggedRouter(&buf)

		rec := httptest.PerformRequestWithHeaders(t, router, http.MethodGet, "/orders/1", nil, "",
			map[string]string{middleware.RequestIDHeader: "gw-123"})
		assert.Equal(t, "gw-123", rec.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("replaces an oversized request id", func(t *testing.T) {
		var buf bytes.Buffer
		router := newLoggedRouter(&buf)

		rec := httptest.PerformRequestWithHeaders(t, router, http.MethodGet, "/orders/1", nil, "",
			map[string]string{middleware.RequestIDHeader: strings.Repeat("x", 65)})
		assert.NotEqual(t, strings.Repeat("x", 65), rec.Header().Get(middleware.RequestIDHeader))
	})
}

func TestCustomRecovery(t *testing.T) {
	var buf bytes.Buffer
	router := newLoggedRouter(&buf)

	rec := httptest.PerformRequest(t, router, http.MethodGet, "/boom", nil, "")
	httptest.AssertErrorResponse(t, rec, http.StatusInternalServerError, "Internal server error")
	assert.NotContains(t, rec.Body.String(), "ledger exploded")
}

func TestErrorHandler_RendersDeferredPublicError(t *testing.T) {
	var buf bytes.Buffer
	router := newLoggedRouter(&buf)

	rec := httptest.PerformRequest(t, router, http.MethodGet, "/deferred", nil, "")
	httptest.AssertErrorResponse(t, rec, http.StatusConflict, "Invalid state transition")
}
