package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kubecrud/items-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(RateLimitMiddleware(m, 10, 2)) // generous rate
	r.GET("/items", func(c *gin.Context) { c.JSON(200, []string{}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/items", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest("GET", "/items", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, http.StatusOK, w2.Code)
	require.Equal(t, 2.0, testutil.ToFloat64(m.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	// very low rate to force rejections
	r.Use(RateLimitMiddleware(m, 2, 1))
	r.GET("/items", func(c *gin.Context) { c.JSON(200, []string{}) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest("GET", "/items", nil))
	require.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest("GET", "/items", nil))
	require.Equal(t, http.StatusTooManyRequests, w2.Code)
	require.JSONEq(t, `{"error":"rate limit exceeded"}`, w2.Body.String())
	require.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitRejected.WithLabelValues("memory")))

	// one token is back after 0.5s
	time.Sleep(600 * time.Millisecond)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest("GET", "/items", nil))
	require.Equal(t, http.StatusOK, w3.Code)
}

func TestRateLimitMiddleware_PerClientIP(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(RateLimitMiddleware(m, 0.5, 1))
	r.GET("/items", func(c *gin.Context) { c.JSON(200, []string{}) })

	req := func(addr string) int {
		rq := httptest.NewRequest("GET", "/items", nil)
		rq.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, rq)
		return w.Code
	}
	require.Equal(t, http.StatusOK, req("10.0.0.1:1234"))
	require.Equal(t, http.StatusTooManyRequests, req("10.0.0.1:1234"))
	require.Equal(t, http.StatusOK, req("10.0.0.2:1234"))
}

func TestRateLimitMiddleware_EvictsIdleClients(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }
	limiters := newIPLimiters(0.001, 1, time.Minute, clock)

	r := gin.New()
	r.Use(rateLimit(metrics.New(), limiters))
	r.GET("/items", func(c *gin.Context) { c.JSON(200, []string{}) })

	req := func(addr string) int {
		rq := httptest.NewRequest("GET", "/items", nil)
		rq.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, rq)
		return w.Code
	}
	require.Equal(t, http.StatusOK, req("10.0.0.1:1234"))
	require.Equal(t, http.StatusOK, req("10.0.0.2:1234"))
	require.Equal(t, 2, limiters.size())

	now = now.Add(30 * time.Second)
	require.Equal(t, http.StatusTooManyRequests, req("10.0.0.1:1234"))

	// 10.0.0.2 has been idle for a full minute; 10.0.0.1 only for 30s.
	now = now.Add(30 * time.Second)
	require.Equal(t, http.StatusOK, req("10.0.0.3:1234"))
	require.Equal(t, 2, limiters.size())

	// an evicted client starts over with a full bucket
	now = now.Add(time.Minute)
	require.Equal(t, http.StatusOK, req("10.0.0.1:1234"))
	require.Equal(t, 1, limiters.size())
}
