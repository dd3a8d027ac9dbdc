package handlers

import (
	"net/http"

	"tangled.org/pulse.social/pulse/internal/filters"
)

// BrainrotResponse is the verdict for a single post.
type BrainrotResponse struct {
	PostID     string `json:"postId"`
	IsBrainrot bool   `json:"isBrainrot"`
}

type contentTypesRequest struct {
	ContentTypes []filters.ContentType `json:"contentTypes"`
}

type feedFilterRequest struct {
	Posts []filters.Post `json:"posts"`
}

type feedFilterResponse struct {
	Posts  []filters.Post `json:"posts"`
	Hidden int            `json:"hidden"`
}

// validContentTypes reports whether every entry is a known content type.
func validContentTypes(types []filters.ContentType) bool {
	for _, ct := range types {
		if _, ok := filters.ParseContentType(string(ct)); !ok {
			return false
		}
	}
	return true
}

// decodeBody rejects non-JSON and malformed bodies, writing the error
// response itself. It reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if !isJSONRequest(r) {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return false
	}
	if err := decodeJSON(r, target, false); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// HandleGetFilters serves GET /api/filters.
func (h *Handler) HandleGetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.filters.Filters(), "filters")
}

// HandleUpdateFilters serves PATCH /api/filters with a partial update.
func (h *Handler) HandleUpdateFilters(w http.ResponseWriter, r *http.Request) {
	var u filters.Update
	if !decodeBody(w, r, &u) {
		return
	}
	if !validContentTypes(u.ContentTypes) {
		http.Error(w, "Unknown content type", http.StatusBadRequest)
		return
	}
	writeJSON(w, h.filters.UpdateFilters(u), "filters")
}

// HandleToggleNSFW serves POST /api/filters/nsfw/toggle.
func (h *Handler) HandleToggleNSFW(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.filters.ToggleNSFW(), "filters")
}

// HandleToggleBrainrot serves POST /api/filters/brainrot/toggle.
func (h *Handler) HandleToggleBrainrot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.filters.ToggleBrainrot(), "filters")
}

// HandleToggleChildrenMode serves POST /api/filters/children-mode/toggle.
func (h *Handler) HandleToggleChildrenMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.filters.ToggleChildrenMode(), "filters")
}

// HandleSetContentTypes serves PUT /api/filters/content-types. An empty list
// leaves the state unchanged.
func (h *Handler) HandleSetContentTypes(w http.ResponseWriter, r *http.Request) {
	var req contentTypesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validContentTypes(req.ContentTypes) {
		http.Error(w, "Unknown content type", http.StatusBadRequest)
		return
	}
	writeJSON(w, h.filters.SetContentTypes(req.ContentTypes), "filters")
}

// HandleToggleContentType serves POST /api/filters/content-types/{type}/toggle.
func (h *Handler) HandleToggleContentType(w http.ResponseWriter, r *http.Request) {
	ct, ok := filters.ParseContentType(r.PathValue("type"))
	if !ok {
		http.Error(w, "Unknown content type", http.StatusBadRequest)
		return
	}
	writeJSON(w, h.filters.ToggleContentType(ct), "filters")
}

// HandleDetectBrainrot serves POST /api/filters/brainrot/detect with a post.
func (h *Handler) HandleDetectBrainrot(w http.ResponseWriter, r *http.Request) {
	var post filters.Post
	if !decodeBody(w, r, &post) {
		return
	}
	if post.ID == "" {
		http.Error(w, "Post id is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, BrainrotResponse{
		PostID:     post.ID,
		IsBrainrot: h.filters.DetectBrainrot(r.Context(), post),
	}, "brainrot verdict")
}

// HandleFilterFeed serves POST /api/feed/filter: the subset of the posted
// feed visible under the current filters.
func (h *Handler) HandleFilterFeed(w http.ResponseWriter, r *http.Request) {
	var req feedFilterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	for _, p := range req.Posts {
		if p.ID == "" {
			http.Error(w, "Every post needs an id", http.StatusBadRequest)
			return
		}
	}

	visible := h.filters.FilterPosts(r.Context(), req.Posts)
	writeJSON(w, feedFilterResponse{
		Posts:  visible,
		Hidden: len(req.Posts) - len(visible),
	}, "feed")
}
