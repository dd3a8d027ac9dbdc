package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tangled.org/pulse.social/pulse/internal/communities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func membershipRequest(method, id string) *http.Request {
	req := httptest.NewRequest(method, "/api/communities/"+id+"/join", nil)
	req.SetPathValue("id", id)
	return req
}

func TestHandleListCommunities(t *testing.T) {
	tc := NewTestContext(t)
	require.NoError(t, tc.Ledger.JoinCommunity("seed-home-cooking"))

	rec := httptest.NewRecorder()
	tc.Handler.HandleListCommunities(rec, httptest.NewRequest(http.MethodGet, "/api/communities", nil))

	AssertResponseCode(t, rec, http.StatusOK)
	var got []communities.CommunityWithStatus
	DecodeResponse(t, rec, &got)
	require.Len(t, got, len(communities.SeedCommunities()))

	for _, c := range got {
		assert.Equal(t, c.ID == "seed-home-cooking", c.IsJoined, c.ID)
	}
}

func TestHandleGetCommunity(t *testing.T) {
	tc := NewTestContext(t)

	req := httptest.NewRequest(http.MethodGet, "/api/communities/seed-indie-games", nil)
	req.SetPathValue("id", "seed-indie-games")
	rec := httptest.NewRecorder()
	tc.Handler.HandleGetCommunity(rec, req)

	AssertResponseCode(t, rec, http.StatusOK)
	var got communities.CommunityWithStatus
	DecodeResponse(t, rec, &got)
	assert.Equal(t, "Indie Games", got.Name)
	assert.False(t, got.IsJoined)

	req = httptest.NewRequest(http.MethodGet, "/api/communities/nope", nil)
	req.SetPathValue("id", "nope")
	rec = httptest.NewRecorder()
	tc.Handler.HandleGetCommunity(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleJoinAndLeaveCommunity(t *testing.T) {
	tc := NewTestContext(t)
	before, err := tc.Ledger.GetCommunity("seed-trail-running")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	tc.Handler.HandleJoinCommunity(rec, membershipRequest(http.MethodPost, "seed-trail-running"))

	AssertResponseCode(t, rec, http.StatusOK)
	var joined communities.CommunityWithStatus
	DecodeResponse(t, rec, &joined)
	assert.True(t, joined.IsJoined)
	assert.Equal(t, before.MemberCount+1, joined.MemberCount)

	rec = httptest.NewRecorder()
	tc.Handler.HandleLeaveCommunity(rec, membershipRequest(http.MethodDelete, "seed-trail-running"))

	AssertResponseCode(t, rec, http.StatusOK)
	var left communities.CommunityWithStatus
	DecodeResponse(t, rec, &left)
	assert.False(t, left.IsJoined)
	assert.Equal(t, before.MemberCount, left.MemberCount)
}

func TestHandleJoinCommunity_NotFound(t *testing.T) {
	tc := NewTestContext(t)

	rec := httptest.NewRecorder()
	tc.Handler.HandleJoinCommunity(rec, membershipRequest(http.MethodPost, "ghost"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	tc.Handler.HandleLeaveCommunity(rec, membershipRequest(http.MethodDelete, "ghost"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleJoinedCommunities(t *testing.T) {
	tc := NewTestContext(t)
	require.NoError(t, tc.Ledger.JoinCommunity("seed-photography"))

	rec := httptest.NewRecorder()
	tc.Handler.HandleJoinedCommunities(rec, httptest.NewRequest(http.MethodGet, "/api/communities/joined", nil))

	AssertResponseCode(t, rec, http.StatusOK)
	var got []communities.Community
	DecodeResponse(t, rec, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "seed-photography", got[0].ID)
}

func TestHandleCreateCommunity(t *testing.T) {
	tc := NewTestContext(t)

	rec := httptest.NewRecorder()
	tc.Handler.HandleCreateCommunity(rec, NewJSONRequest(t, http.MethodPost, "/api/communities", communities.CreateRequest{
		Name:      "Bouldering",
		Category:  "fitness",
		Rules:     []string{"Spot your friends"},
		CreatorID: "user-1",
	}))

	AssertResponseCode(t, rec, http.StatusCreated)
	var created communities.CommunityWithStatus
	DecodeResponse(t, rec, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Bouldering", created.Name)
	assert.Equal(t, 1, created.MemberCount)
	assert.True(t, created.IsJoined)
	assert.False(t, created.CreatedAt.IsZero())

	assert.True(t, tc.Ledger.IsJoined(created.ID))
	assert.Equal(t, len(communities.SeedCommunities())+1, tc.Ledger.Count())
}

func TestHandleCreateCommunity_BadRequests(t *testing.T) {
	tc := NewTestContext(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing name", `{"creatorId":"u1"}`, http.StatusBadRequest},
		{"missing creator", `{"name":"Knitting"}`, http.StatusBadRequest},
		{"name too long", `{"name":"` + strings.Repeat("n", communities.MaxNameLength+1) + `","creatorId":"u1"}`, http.StatusBadRequest},
		{"server-assigned field", `{"name":"Knitting","creatorId":"u1","memberCount":500}`, http.StatusBadRequest},
		{"malformed", `{"name":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/communities", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			tc.Handler.HandleCreateCommunity(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, len(communities.SeedCommunities()), tc.Ledger.Count())
}
