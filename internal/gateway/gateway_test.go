package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/hubgate/internal/common"
	"github.com/bobmcallan/hubgate/internal/tools"
)

func testGateway(t *testing.T, descriptors ...*tools.Descriptor) *Gateway {
	t.Helper()
	registry := tools.NewRegistry()
	for _, d := range descriptors {
		if err := registry.Register(d); err != nil {
			t.Fatalf("Failed to register %s: %v", d.Name, err)
		}
	}
	return New(registry, common.NewSilentLogger(), 2*time.Second)
}

func TestHandle_MalformedJSON(t *testing.T) {
	gw := testGateway(t)

	env := gw.Handle(context.Background(), []byte(`{"tool": "x", `))
	if env.Status != StatusError {
		t.Fatalf("Expected error status, got %s", env.Status)
	}
	if env.Kind != KindMalformedRequest {
		t.Errorf("Expected kind %s, got %s", KindMalformedRequest, env.Kind)
	}
}

func TestHandle_MissingToolName(t *testing.T) {
	gw := testGateway(t)

	env := gw.Handle(context.Background(), []byte(`{"args": {}}`))
	if env.Kind != KindMalformedRequest {
		t.Errorf("Expected kind %s, got %s", KindMalformedRequest, env.Kind)
	}
}

func TestDispatch_UnknownTool_MessageNamesTool(t *testing.T) {
	gw := testGateway(t)

	env := gw.Dispatch(context.Background(), "no_such_tool", nil)
	if env.Kind != KindUnknownTool {
		t.Fatalf("Expected kind %s, got %s", KindUnknownTool, env.Kind)
	}
	if !strings.Contains(env.Message, "no_such_tool") {
		t.Errorf("Expected message to contain the tool name, got %q", env.Message)
	}
}

func TestDispatch_ValidationFailsBeforeHandler(t *testing.T) {
	calls := 0
	gw := testGateway(t, &tools.Descriptor{
		Name: "describe_table",
		Params: []tools.Param{
			{Name: "name", Type: tools.TypeString, Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			calls++
			return nil, nil
		},
	})

	env := gw.Dispatch(context.Background(), "describe_table", map[string]any{})
	if env.Kind != KindInvalidArguments {
		t.Fatalf("Expected kind %s, got %s", KindInvalidArguments, env.Kind)
	}
	if calls != 0 {
		t.Errorf("Expected handler to not run on validation failure, got %d calls", calls)
	}
}

func TestDispatch_Success(t *testing.T) {
	gw := testGateway(t, &tools.Descriptor{
		Name: "list_tables",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return []string{"users", "orders"}, nil
		},
	})

	env := gw.Dispatch(context.Background(), "list_tables", nil)
	if env.Status != StatusSuccess {
		t.Fatalf("Expected success, got %s (%s: %s)", env.Status, env.Kind, env.Message)
	}
	if env.Kind != "" || env.Message != "" {
		t.Error("Expected success envelope to carry no error fields")
	}
}

func TestDispatch_TypedErrorPassthrough(t *testing.T) {
	gw := testGateway(t, &tools.Descriptor{
		Name: "run_query",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return nil, NewError(KindWriteRejected, "only SELECT statements are allowed")
		},
	})

	env := gw.Dispatch(context.Background(), "run_query", nil)
	if env.Kind != KindWriteRejected {
		t.Errorf("Expected kind %s, got %s", KindWriteRejected, env.Kind)
	}
}

func TestDispatch_RateLimitedCarriesRetryHint(t *testing.T) {
	gw := testGateway(t, &tools.Descriptor{
		Name: "search_repositories",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return nil, &Error{Kind: KindRateLimited, Message: "rate limit exceeded", RetryAfter: 30}
		},
	})

	env := gw.Dispatch(context.Background(), "search_repositories", nil)
	if env.Kind != KindRateLimited {
		t.Fatalf("Expected kind %s, got %s", KindRateLimited, env.Kind)
	}
	if env.RetryAfter != 30 {
		t.Errorf("Expected retry hint 30, got %d", env.RetryAfter)
	}
}

func TestDispatch_PanicBecomesInternalError(t *testing.T) {
	gw := testGateway(t, &tools.Descriptor{
		Name: "broken",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			panic("boom")
		},
	})

	env := gw.Dispatch(context.Background(), "broken", nil)
	if env.Kind != KindInternalError {
		t.Errorf("Expected kind %s, got %s", KindInternalError, env.Kind)
	}
}

func TestDispatch_TimeoutClassified(t *testing.T) {
	registry := tools.NewRegistry()
	registry.MustRegister(&tools.Descriptor{
		Name: "slow",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	gw := New(registry, common.NewSilentLogger(), 20*time.Millisecond)

	env := gw.Dispatch(context.Background(), "slow", nil)
	if env.Kind != KindTimeout {
		t.Errorf("Expected kind %s, got %s", KindTimeout, env.Kind)
	}
}

func TestServeHTTP_EnvelopeOnHTTP200(t *testing.T) {
	gw := testGateway(t, &tools.Descriptor{
		Name: "list_tables",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return []string{"users", "orders"}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/tools/call", strings.NewReader(`{"tool":"list_tables","args":{}}`))
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected HTTP 200, got %d", rec.Code)
	}

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Response is not a valid envelope: %v", err)
	}
	if env.Status != StatusSuccess {
		t.Errorf("Expected success, got %s (%s)", env.Status, env.Message)
	}
}

func TestServeHTTP_RejectsNonPOST(t *testing.T) {
	gw := testGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/tools/call", nil)
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Response is not a valid envelope: %v", err)
	}
	if env.Kind != KindMalformedRequest {
		t.Errorf("Expected kind %s, got %s", KindMalformedRequest, env.Kind)
	}
}

func TestClassify_ContextDeadline(t *testing.T) {
	env := Classify(context.DeadlineExceeded)
	if env.Kind != KindTimeout {
		t.Errorf("Expected kind %s, got %s", KindTimeout, env.Kind)
	}
}

func TestClassify_UnknownErrorIsUpstreamFailure(t *testing.T) {
	env := Classify(context.Canceled)
	if env.Kind != KindUpstreamFailure {
		t.Errorf("Expected kind %s, got %s", KindUpstreamFailure, env.Kind)
	}
}
