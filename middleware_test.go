package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"lg/hayl-fuel-api/logger"
)

func requestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestLogger(logger.Nop()))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})
	return router
}

func TestRequestLogger_GeneratesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	requestIDRouter().ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))

	id := w.Header().Get(requestIDHeader)
	if id == "" {
		t.Fatal("expected a generated X-Request-ID header")
	}
	if w.Body.String() != id {
		t.Errorf("context request_id = %q, header = %q", w.Body.String(), id)
	}
}

func TestRequestLogger_ReusesCallerRequestID(t *testing.T) {
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	w := httptest.NewRecorder()
	requestIDRouter().ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != "trace-123" {
		t.Errorf("X-Request-ID = %q, want trace-123", got)
	}
	if w.Body.String() != "trace-123" {
		t.Errorf("context request_id = %q, want trace-123", w.Body.String())
	}
}
