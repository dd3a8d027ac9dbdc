package routing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tangled.org/pulse.social/pulse/internal/ads"
	"tangled.org/pulse.social/pulse/internal/classifier"
	"tangled.org/pulse.social/pulse/internal/communities"
	"tangled.org/pulse.social/pulse/internal/filters"
	"tangled.org/pulse.social/pulse/internal/handlers"
	"tangled.org/pulse.social/pulse/internal/kv"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	persister := kv.NewPersister(kv.NewMemoryStore())
	t.Cleanup(persister.Wait)

	h := handlers.NewHandler(
		ads.NewService(ads.DefaultCatalog(), ads.DefaultConfig()),
		filters.NewGate(context.Background(), persister, classifier.NewKeywordClassifier()),
		communities.NewLedger(context.Background(), persister, communities.SeedCommunities()),
	)

	srv := httptest.NewServer(SetupRouter(Config{Handlers: h, Logger: zerolog.Nop()}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, header map[string]string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/api/ads/native?index=4", "", http.StatusOK},
		{http.MethodGet, "/api/ads/interstitial?actions=15", "", http.StatusOK},
		{http.MethodGet, "/api/ads/banner", "", http.StatusOK},
		{http.MethodGet, "/api/ads/stats", "", http.StatusOK},
		{http.MethodGet, "/api/ads/rewarded", "", http.StatusOK},
		{http.MethodGet, "/api/ads/popup", "", http.StatusBadRequest},
		{http.MethodPost, "/api/ads/native-coffee/click", "", http.StatusNoContent},
		{http.MethodPost, "/api/ads/native-coffee/impression", `{"type":"native"}`, http.StatusNoContent},
		{http.MethodGet, "/api/revenue?impressions=1000&clicks=10&tier=vip", "", http.StatusOK},
		{http.MethodGet, "/api/filters", "", http.StatusOK},
		{http.MethodPatch, "/api/filters", `{"blockBrainrot":true}`, http.StatusOK},
		{http.MethodPost, "/api/filters/nsfw/toggle", "", http.StatusOK},
		{http.MethodPost, "/api/filters/brainrot/toggle", "", http.StatusOK},
		{http.MethodPost, "/api/filters/children-mode/toggle", "", http.StatusOK},
		{http.MethodPut, "/api/filters/content-types", `{"contentTypes":["text","image"]}`, http.StatusOK},
		{http.MethodPost, "/api/filters/content-types/video/toggle", "", http.StatusOK},
		{http.MethodPost, "/api/filters/brainrot/detect", `{"id":"p1","title":"hello"}`, http.StatusOK},
		{http.MethodPost, "/api/feed/filter", `{"posts":[{"id":"p1"}]}`, http.StatusOK},
		{http.MethodGet, "/api/communities", "", http.StatusOK},
		{http.MethodGet, "/api/communities/joined", "", http.StatusOK},
		{http.MethodGet, "/api/communities/seed-photography", "", http.StatusOK},
		{http.MethodGet, "/api/communities/missing", "", http.StatusNotFound},
		{http.MethodPost, "/api/communities/seed-photography/join", "", http.StatusOK},
		{http.MethodDelete, "/api/communities/seed-photography/join", "", http.StatusOK},
		{http.MethodPost, "/api/communities", `{"name":"Go","creatorId":"u1"}`, http.StatusCreated},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodDelete, "/api/filters", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body, nil)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRoutes_SecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/filters", "", nil)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestRoutes_CrossOriginMutationRejected(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/filters/nsfw/toggle", "", map[string]string{
		"Sec-Fetch-Site": "cross-site",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/filters", "", nil)
	var f filters.ContentFilters
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
	assert.False(t, f.ShowNSFW, "rejected toggle must not apply")
}

func TestRoutes_JoinThenList(t *testing.T) {
	srv := newTestServer(t)

	do(t, http.MethodPost, srv.URL+"/api/communities/seed-indie-games/join", "", nil)

	resp := do(t, http.MethodGet, srv.URL+"/api/communities", "", nil)
	var list []communities.CommunityWithStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))

	var found bool
	for _, c := range list {
		if c.ID == "seed-indie-games" {
			found = true
			assert.True(t, c.IsJoined)
		}
	}
	assert.True(t, found)
}
