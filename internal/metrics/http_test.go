package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("piivault")
	require.NoError(t, err)

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "piivault"))
	router.POST("/v1/anonymize", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/v1/anonymize", nil)
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	output := scrapeMetrics(t, provider)
	assertMetricLine(t, output, "piivault_http_requests_total",
		`path="/v1/anonymize"`, "1")
	assert.Contains(t, output, "piivault_http_request_duration_seconds")
}

func TestHTTPMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("piivault")
	require.NoError(t, err)

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "piivault"))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/nope", nil)
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	output := scrapeMetrics(t, provider)
	assertMetricLine(t, output, "piivault_http_requests_total",
		`path="unknown"`, "1")
}

func TestSanitizePath(t *testing.T) {
	assert.Equal(t, "unknown", sanitizePath(""))
	assert.Equal(t, "/v1/anonymize", sanitizePath("/v1/anonymize"))
}
