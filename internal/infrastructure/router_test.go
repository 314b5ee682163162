package infrastructure

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"Kanban/internal/usecase"
)

func TestRequestLogger_OmitsQueryString(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ws := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upgrade required", http.StatusUpgradeRequired)
	})
	router := NewRouter(ws, usecase.NewRegistry(), nil, zap.New(core))

	const secret = "eyJhbGciOiJIUzI1NiJ9.c2VjcmV0.c2lnbmF0dXJl"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/7?token="+secret, nil))

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("got %d access lines, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/ws/7" {
		t.Errorf("path = %v, want /ws/7", fields["path"])
	}
	if fields["status"] != int64(http.StatusUpgradeRequired) {
		t.Errorf("status = %v, want %d", fields["status"], http.StatusUpgradeRequired)
	}
	for key, value := range fields {
		if strings.Contains(fmt.Sprint(value), secret) {
			t.Errorf("field %s leaks the token: %v", key, value)
		}
	}
}
