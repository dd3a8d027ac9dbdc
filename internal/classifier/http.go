package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tangled.org/pulse.social/pulse/internal/metrics"
	"tangled.org/pulse.social/pulse/internal/tracing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxResponseBytes bounds how much of a classifier response is read
const maxResponseBytes = 64 << 10

// HTTPClassifier posts classification requests to a remote model endpoint.
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
}

type httpRequest struct {
	Prompt Input          `json:"prompt"`
	Schema map[string]any `json:"schema"`
}

// NewHTTPClassifier creates a classifier calling endpoint. If client is nil a
// client with an otelhttp-instrumented transport is used. No timeout is set;
// callers bound the call through the context.
func NewHTTPClassifier(endpoint string, client *http.Client) *HTTPClassifier {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &HTTPClassifier{endpoint: endpoint, client: client}
}

// Classify sends the post to the endpoint and decodes the verdict.
func (c *HTTPClassifier) Classify(ctx context.Context, in Input) (result Result, err error) {
	ctx, span := tracing.ClassifierSpan(ctx, in.PostID)
	defer func() { tracing.Finish(span, err) }()

	start := time.Now()
	defer func() {
		metrics.ClassifierRequestDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(httpRequest{Prompt: in, Schema: ResultSchema})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var raw struct {
		IsBrainrot *bool  `json:"isBrainrot"`
		Reason     string `json:"reason"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&raw); err != nil {
		return Result{}, fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if raw.IsBrainrot == nil {
		return Result{}, fmt.Errorf("classifier response missing isBrainrot")
	}

	return Result{IsBrainrot: *raw.IsBrainrot, Reason: raw.Reason}, nil
}
