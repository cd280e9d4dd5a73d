package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/hubgate/internal/common"
	"github.com/bobmcallan/hubgate/internal/tools"
)

// Gateway is the single dispatch entry point. It owns the envelope
// contract: every request produces a well-formed envelope, never a raw
// transport fault.
type Gateway struct {
	registry *tools.Registry
	logger   *common.Logger
	timeout  time.Duration
}

// New creates a gateway over a populated registry. The timeout bounds each
// dispatched handler call; zero means 30s.
func New(registry *tools.Registry, logger *common.Logger, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		registry: registry,
		logger:   logger,
		timeout:  timeout,
	}
}

// Registry returns the registry backing this gateway.
func (g *Gateway) Registry() *tools.Registry {
	return g.registry
}

// Handle parses a raw request body and dispatches it.
// Request lifecycle: parse -> resolve -> validate -> dispatch -> wrap.
// Validation and routing failures are reported before any handler runs.
func (g *Gateway) Handle(ctx context.Context, body []byte) Envelope {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Failure(KindMalformedRequest, fmt.Sprintf("request body is not valid JSON: %v", err))
	}
	if strings.TrimSpace(req.Tool) == "" {
		return Failure(KindMalformedRequest, "request is missing the tool name")
	}

	return g.Dispatch(ctx, req.Tool, req.Args)
}

// Dispatch resolves, validates, and executes a single tool call.
func (g *Gateway) Dispatch(ctx context.Context, name string, args map[string]any) Envelope {
	desc, ok := g.registry.Resolve(name)
	if !ok {
		g.logger.Warn().
			Str("tool", name).
			Str("available", strings.Join(g.registry.Names(), ", ")).
			Msg("unknown tool requested")
		return Failure(KindUnknownTool, fmt.Sprintf("unknown tool %q — GET /tools lists the catalog", name))
	}

	normalized, err := tools.Validate(desc, args)
	if err != nil {
		g.logger.Warn().
			Str("tool", name).
			Str("error", err.Error()).
			Msg("argument validation failed")
		return Classify(err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	result, err := g.invoke(ctx, desc, normalized)
	duration := time.Since(start)

	if err != nil {
		env := Classify(err)
		g.logger.Warn().
			Str("tool", name).
			Str("kind", env.Kind).
			Str("error", env.Message).
			Dur("duration", duration).
			Msg("tool call failed")
		return env
	}

	g.logger.Info().
		Str("tool", name).
		Dur("duration", duration).
		Msg("tool call succeeded")

	return Success(result)
}

// invoke runs the handler, converting a panic into a classified error so
// a buggy handler cannot take down the transport.
func (g *Gateway) invoke(ctx context.Context, desc *tools.Descriptor, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(KindInternalError, "tool %s panicked: %v", desc.Name, r)
		}
	}()

	return desc.Handler(ctx, args)
}

// ServeHTTP handles POST /tools/call. The envelope always travels on
// HTTP 200; clients branch on the status field, not the transport code.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeEnvelope(w, Failure(KindMalformedRequest, "dispatch endpoint accepts POST only"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeEnvelope(w, Failure(KindMalformedRequest, fmt.Sprintf("failed to read request body: %v", err)))
		return
	}

	writeEnvelope(w, g.Handle(r.Context(), body))
}

func writeEnvelope(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		// Connection-level failure; nothing more we can do here.
		return
	}
}
