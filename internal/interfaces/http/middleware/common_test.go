package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newCORSRouter(cfg CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/listings", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestCORSWithConfig(t *testing.T) {
	t.Run("empty whitelist sets no headers for a cross-origin request", func(t *testing.T) {
		router := newCORSRouter(DefaultCORSConfig())

		req := httptest.NewRequest(http.MethodGet, "/listings", nil)
		req.Header.Set("Origin", "http://unknown.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("whitelisted origin gets CORS headers with credentials", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://houseping.example.com"}
		router := newCORSRouter(cfg)

		req := httptest.NewRequest(http.MethodGet, "/listings", nil)
		req.Header.Set("Origin", "https://houseping.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "https://houseping.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Request-ID")
	})

	t.Run("origin outside the whitelist gets no headers", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://houseping.example.com"}
		router := newCORSRouter(cfg)

		req := httptest.NewRequest(http.MethodGet, "/listings", nil)
		req.Header.Set("Origin", "https://other.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard allows any origin without credentials", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"*"}
		router := newCORSRouter(cfg)

		req := httptest.NewRequest(http.MethodGet, "/listings", nil)
		req.Header.Set("Origin", "http://anywhere.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight is answered with 204 and the allowed methods", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://houseping.example.com"}
		router := newCORSRouter(cfg)

		req := httptest.NewRequest(http.MethodOptions, "/listings", nil)
		req.Header.Set("Origin", "https://houseping.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.NotEmpty(t, w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("preflight from a disallowed origin is 204 without headers", func(t *testing.T) {
		router := newCORSRouter(DefaultCORSConfig())

		req := httptest.NewRequest(http.MethodOptions, "/listings", nil)
		req.Header.Set("Origin", "http://unknown.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	var seenContextID string
	router.GET("/listings", func(c *gin.Context) {
		seenContextID = c.GetString("request_id")
		c.String(http.StatusOK, "ok")
	})

	t.Run("generates an id when the header is absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/listings", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		id := w.Header().Get("X-Request-ID")
		require.NotEmpty(t, id)
		assert.Len(t, id, 32)
		assert.Equal(t, id, seenContextID)
	})

	t.Run("an inbound id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/listings", nil)
		req.Header.Set("X-Request-ID", "caller-supplied-id")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "caller-supplied-id", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "caller-supplied-id", seenContextID)
	})

	t.Run("consecutive requests get distinct ids", func(t *testing.T) {
		ids := make(map[string]bool)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/listings", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			ids[w.Header().Get("X-Request-ID")] = true
		}
		assert.Len(t, ids, 3)
	})
}

func TestSecure(t *testing.T) {
	router := gin.New()
	router.Use(Secure())
	router.GET("/listings", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/listings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
}
