package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/hubgate/internal/common"
)

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}

func TestProxy_CallTool_Success(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/tools/call" {
			t.Errorf("Expected /tools/call, got %s", r.URL.Path)
		}

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("Request body is not valid JSON: %v", err)
		}
		if req["tool"] != "list_tables" {
			t.Errorf("Expected tool=list_tables, got %v", req["tool"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","result":["users","orders"]}`))
	}))
	defer mockServer.Close()

	proxy := NewProxy(mockServer.URL, testLogger())
	result, err := proxy.CallTool(context.Background(), "list_tables", map[string]any{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(result) != `["users","orders"]` {
		t.Errorf("Unexpected result: %s", result)
	}
}

func TestProxy_CallTool_ErrorEnvelope(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"error","kind":"UnknownTool","message":"unknown tool \"bogus\""}`))
	}))
	defer mockServer.Close()

	proxy := NewProxy(mockServer.URL, testLogger())
	_, err := proxy.CallTool(context.Background(), "bogus", nil)
	if err == nil {
		t.Fatal("Expected error for error envelope")
	}
	if !strings.Contains(err.Error(), "UnknownTool") {
		t.Errorf("Expected error to carry the envelope kind, got %q", err.Error())
	}
}

func TestProxy_CallTool_GatewayUnavailable(t *testing.T) {
	proxy := NewProxy("http://localhost:1", testLogger())
	if _, err := proxy.CallTool(context.Background(), "list_tables", nil); err == nil {
		t.Fatal("Expected error when gateway is unavailable")
	}
}

func TestFetchCatalog_RetriesUntilAvailable(t *testing.T) {
	attempts := 0
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tools":[{"name":"list_tables","description":"List tables","params":[]}]}`))
	}))
	defer mockServer.Close()

	proxy := NewProxy(mockServer.URL, testLogger())
	proxy.retryDelay = time.Millisecond
	catalog, err := proxy.FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(catalog) != 1 || catalog[0].Name != "list_tables" {
		t.Errorf("Unexpected catalog: %+v", catalog)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestValidateCatalog_FiltersInvalidAndDuplicates(t *testing.T) {
	catalog := []CatalogTool{
		{Name: "list_tables"},
		{Name: ""},
		{Name: "list_tables"},
		{Name: "run_query"},
	}

	valid := ValidateCatalog(catalog, testLogger())
	if len(valid) != 2 {
		t.Fatalf("Expected 2 valid tools, got %d", len(valid))
	}
	if valid[0].Name != "list_tables" || valid[1].Name != "run_query" {
		t.Errorf("Unexpected filtered catalog: %+v", valid)
	}
}

func TestBuildMCPTool_SchemaMapping(t *testing.T) {
	ct := CatalogTool{
		Name:        "search_repositories",
		Description: "Search repositories",
		Params: []CatalogParam{
			{Name: "query", Type: "string", Required: true},
			{Name: "limit", Type: "int"},
			{Name: "archived", Type: "bool"},
		},
	}

	tool := BuildMCPTool(ct)
	if tool.Name != "search_repositories" {
		t.Errorf("Expected tool name preserved, got %s", tool.Name)
	}
	if len(tool.InputSchema.Properties) != 3 {
		t.Errorf("Expected 3 schema properties, got %d", len(tool.InputSchema.Properties))
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "query" {
		t.Errorf("Expected query required, got %v", tool.InputSchema.Required)
	}
}
