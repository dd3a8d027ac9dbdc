package handlers

import (
	"errors"
	"net/http"

	"tangled.org/pulse.social/pulse/internal/communities"

	"github.com/rs/zerolog/log"
)

// HandleListCommunities serves GET /api/communities.
func (h *Handler) HandleListCommunities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.communities.GetCommunitiesWithJoinStatus(), "communities")
}

// HandleJoinedCommunities serves GET /api/communities/joined.
func (h *Handler) HandleJoinedCommunities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.communities.JoinedCommunities(), "joined communities")
}

// HandleGetCommunity serves GET /api/communities/{id}.
func (h *Handler) HandleGetCommunity(w http.ResponseWriter, r *http.Request) {
	c, err := h.communities.GetCommunity(r.PathValue("id"))
	if err != nil {
		writeCommunityError(w, err)
		return
	}
	writeJSON(w, c, "community")
}

// HandleCreateCommunity serves POST /api/communities.
func (h *Handler) HandleCreateCommunity(w http.ResponseWriter, r *http.Request) {
	var req communities.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.communities.CreateCommunity(req)
	if err != nil {
		writeCommunityError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, communities.CommunityWithStatus{Community: c, IsJoined: true}, "community")
}

// HandleJoinCommunity serves POST /api/communities/{id}/join.
func (h *Handler) HandleJoinCommunity(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.communities.JoinCommunity)
}

// HandleLeaveCommunity serves DELETE /api/communities/{id}/join.
func (h *Handler) HandleLeaveCommunity(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.communities.LeaveCommunity)
}

func (h *Handler) changeMembership(w http.ResponseWriter, r *http.Request, change func(id string) error) {
	id := r.PathValue("id")
	if err := change(id); err != nil {
		writeCommunityError(w, err)
		return
	}
	c, err := h.communities.GetCommunity(id)
	if err != nil {
		writeCommunityError(w, err)
		return
	}
	writeJSON(w, c, "community")
}

func writeCommunityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, communities.ErrCommunityNotFound):
		http.Error(w, "Community not found", http.StatusNotFound)
	case errors.Is(err, communities.ErrNameRequired),
		errors.Is(err, communities.ErrNameTooLong),
		errors.Is(err, communities.ErrCreatorRequired),
		errors.Is(err, communities.ErrDescriptionTooLong),
		errors.Is(err, communities.ErrCategoryTooLong),
		errors.Is(err, communities.ErrTooManyRules),
		errors.Is(err, communities.ErrRuleTooLong):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("communities: request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
