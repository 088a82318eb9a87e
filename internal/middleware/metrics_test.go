package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/feedback-api/internal/service"
)

func scrape(t *testing.T, metricsSvc *service.MetricsService) string {
	t.Helper()
	recorder := httptest.NewRecorder()
	metricsSvc.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	return recorder.Body.String()
}

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metricsSvc := service.NewMetricsService()

	router := gin.New()
	router.Use(Metrics(metricsSvc))
	router.GET("/api/teachers/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/teachers/7", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	body := scrape(t, metricsSvc)
	assert.Contains(t, body, `path="/api/teachers/:id"`)
	assert.NotContains(t, body, "/api/teachers/7")
}

func TestMetricsMiddlewareCollapsesUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metricsSvc := service.NewMetricsService()

	router := gin.New()
	router.Use(Metrics(metricsSvc))

	for _, target := range []string{"/wp-admin", "/backup.sql"} {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusNotFound, recorder.Code)
	}

	body := scrape(t, metricsSvc)
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, "wp-admin")
}

func TestMetricsMiddlewareSkipsScrapeEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metricsSvc := service.NewMetricsService()

	router := gin.New()
	router.Use(Metrics(metricsSvc))
	router.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	body := scrape(t, metricsSvc)
	assert.NotContains(t, body, `path="/metrics"`)
}
