package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func requestLogFixture(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	return router, recorded
}

func fieldMap(entry observer.LoggedEntry) map[string]zapcore.Field {
	fields := make(map[string]zapcore.Field, len(entry.Context))
	for _, f := range entry.Context {
		fields[f.Key] = f
	}
	return fields
}

func TestGinMiddleware(t *testing.T) {
	t.Run("successful request logs at info with request fields", func(t *testing.T) {
		router, recorded := requestLogFixture(t)
		router.GET("/listings", func(c *gin.Context) {
			c.Set("request_id", "req-7")
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/listings?area=%EC%84%9C%EC%9A%B8", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, 1, recorded.Len())
		entry := recorded.All()[0]
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		assert.Equal(t, "request", entry.Message)

		fields := fieldMap(entry)
		assert.Equal(t, "req-7", fields["request_id"].String)
		assert.Equal(t, "GET", fields["method"].String)
		assert.Equal(t, "/listings", fields["path"].String)
		assert.Equal(t, int64(http.StatusOK), fields["status"].Integer)
		assert.Contains(t, fields, "latency")
		assert.Contains(t, fields, "query")
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		router, recorded := requestLogFixture(t)
		router.GET("/listings", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/listings", nil))

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, zapcore.WarnLevel, recorded.All()[0].Level)
	})

	t.Run("server errors log at error and carry gin errors", func(t *testing.T) {
		router, recorded := requestLogFixture(t)
		router.POST("/listings/sync", func(c *gin.Context) {
			_ = c.Error(assert.AnError)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/listings/sync", nil))

		require.Equal(t, 1, recorded.Len())
		entry := recorded.All()[0]
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Contains(t, fieldMap(entry), "errors")
	})
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/listings/:id/analysis", func(c *gin.Context) {
		panic("nil comparator")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/listings/abc/analysis", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "panic recovered", entry.Message)

	fields := fieldMap(entry)
	assert.Equal(t, "/listings/abc/analysis", fields["path"].String)
	assert.Contains(t, fields, "stack")
}
