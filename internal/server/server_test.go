package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bobmcallan/hubgate/internal/common"
	"github.com/bobmcallan/hubgate/internal/config"
	"github.com/bobmcallan/hubgate/internal/gateway"
	"github.com/bobmcallan/hubgate/internal/localdb"
	"github.com/bobmcallan/hubgate/internal/tools"
)

// testServer wires a real local-database adapter behind the full
// middleware chain, mirroring production startup.
func testServer(t *testing.T) *Server {
	t.Helper()

	logger := common.NewSilentLogger()

	store, err := localdb.NewStore(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER)`,
	} {
		if _, err := store.DB().Exec(stmt); err != nil {
			t.Fatalf("Failed to seed schema: %v", err)
		}
	}

	registry := tools.NewRegistry()
	for _, desc := range localdb.Tools(store) {
		registry.MustRegister(desc)
	}

	cfg := config.NewDefaultConfig()
	gw := gateway.New(registry, logger, cfg.Gateway.GetRequestTimeout())
	return New(cfg, logger, gw)
}

func TestToolsCall_ListTables_EndToEnd(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/tools/call",
		strings.NewReader(`{"tool":"list_tables","args":{}}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected HTTP 200, got %d", rec.Code)
	}

	var env struct {
		Status string   `json:"status"`
		Result []string `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Response is not a valid envelope: %v", err)
	}
	if env.Status != "success" {
		t.Fatalf("Expected success, got %s: %s", env.Status, rec.Body.String())
	}
	if want := []string{"users", "orders"}; !reflect.DeepEqual(env.Result, want) {
		t.Errorf("Expected result %v, got %v", want, env.Result)
	}
}

func TestToolsCall_UnknownTool_EndToEnd(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/tools/call",
		strings.NewReader(`{"tool":"bogus_tool","args":{}}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var env struct {
		Status  string `json:"status"`
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Response is not a valid envelope: %v", err)
	}
	if env.Kind != "UnknownTool" {
		t.Errorf("Expected kind UnknownTool, got %s", env.Kind)
	}
	if !strings.Contains(env.Message, "bogus_tool") {
		t.Errorf("Expected message to name the tool, got %q", env.Message)
	}
}

func TestToolsCatalog(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected HTTP 200, got %d", rec.Code)
	}

	var payload struct {
		Tools []struct {
			Name   string `json:"name"`
			Params []struct {
				Name     string `json:"name"`
				Required bool   `json:"required"`
			} `json:"params"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Catalog is not valid JSON: %v", err)
	}
	if len(payload.Tools) != 4 {
		t.Errorf("Expected 4 local tools, got %d", len(payload.Tools))
	}
	if payload.Tools[0].Name != "list_tables" {
		t.Errorf("Expected first tool list_tables, got %s", payload.Tools[0].Name)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected HTTP 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Health response is not valid JSON: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", resp["status"])
	}
}

func TestCorrelationIDHeader(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != "req-123" {
		t.Errorf("Expected correlation ID echoed back, got %q", got)
	}
}

func TestNotFound_JSON(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected HTTP 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON 404 body, got content type %q", ct)
	}
}
