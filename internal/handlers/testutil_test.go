package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tangled.org/pulse.social/pulse/internal/ads"
	"tangled.org/pulse.social/pulse/internal/classifier"
	"tangled.org/pulse.social/pulse/internal/communities"
	"tangled.org/pulse.social/pulse/internal/filters"
	"tangled.org/pulse.social/pulse/internal/kv"

	"github.com/google/go-querystring/query"
)

// TestContext contains test dependencies
type TestContext struct {
	Handler    *Handler
	Store      *kv.MockStore
	Persister  *kv.Persister
	Classifier *classifier.MockClassifier
	Ads        *ads.Service
	Filters    *filters.Gate
	Ledger     *communities.Ledger
}

// NewTestContext wires a Handler over in-memory services. Background writes
// are drained when the test ends.
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	store := kv.NewMockStore()
	persister := kv.NewPersister(store)
	t.Cleanup(persister.Wait)

	clf := &classifier.MockClassifier{}
	adService := ads.NewService(ads.DefaultCatalog(), ads.DefaultConfig())
	gate := filters.NewGate(context.Background(), persister, clf)
	ledger := communities.NewLedger(context.Background(), persister, communities.SeedCommunities())

	return &TestContext{
		Handler:    NewHandler(adService, gate, ledger),
		Store:      store,
		Persister:  persister,
		Classifier: clf,
		Ads:        adService,
		Filters:    gate,
		Ledger:     ledger,
	}
}

// NewQueryRequest builds a request whose query string is encoded from params
// using `url` struct tags.
func NewQueryRequest(t *testing.T, method, path string, params any) *http.Request {
	t.Helper()
	values, err := query.Values(params)
	if err != nil {
		t.Fatalf("failed to encode query: %v", err)
	}
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return httptest.NewRequest(method, path, nil)
}

// NewJSONRequest builds a request with body encoded as JSON.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeResponse unmarshals the recorded body into v.
func DecodeResponse(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// AssertResponseCode checks if the response has the expected status code
func AssertResponseCode(t interface {
	Errorf(format string, args ...interface{})
}, rec *httptest.ResponseRecorder, expected int) {
	if rec.Code != expected {
		t.Errorf("Expected status code %d, got %d. Body: %s", expected, rec.Code, rec.Body.String())
	}
}
