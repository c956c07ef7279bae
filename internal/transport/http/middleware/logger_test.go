package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	router := gin.New()
	router.Use(RequestLogger(logger), Recovery(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	requests := logs.FilterMessage("request").AllUntimed()
	require.Len(t, requests, 3)
	require.Equal(t, zapcore.InfoLevel, requests[0].Level)
	require.Equal(t, zapcore.WarnLevel, requests[1].Level)
	require.Equal(t, zapcore.ErrorLevel, requests[2].Level)
	require.Equal(t, int64(http.StatusInternalServerError), requests[2].ContextMap()["status"])
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}
