package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"roomie/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID_GeneratesAndReuses(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, generated)
	require.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	require.Equal(t, "abc-123", w.Body.String())
}

func TestGetRequestID_Missing(t *testing.T) {
	require.Empty(t, GetRequestID(nil))
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	require.Empty(t, GetRequestID(c))
}

func TestRecovery_WritesEnvelope(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Recovery(nil))
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"success":false,"error":"Internal server error"}`, w.Body.String())
}

func TestRequestLogger_RecordsRoute(t *testing.T) {
	m := metrics.New()
	router := gin.New()
	router.Use(RequestLogger(nil, m))
	router.GET("/api/listings/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/listings/xyz", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() != "roomie_http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["route"] == "/api/listings/:id" && labels["status"] == "404" {
				found = true
			}
		}
	}
	require.True(t, found, "expected a request sample for the templated route")
}
