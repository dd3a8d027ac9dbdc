package filters

// ContentType is a kind of post media a viewer can opt in or out of
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
)

// AllContentTypes returns every content type in display order
func AllContentTypes() []ContentType {
	return []ContentType{ContentTypeText, ContentTypeImage, ContentTypeVideo}
}

// ParseContentType converts a string to a ContentType, reporting whether it is known
func ParseContentType(s string) (ContentType, bool) {
	for _, ct := range AllContentTypes() {
		if string(ct) == s {
			return ct, true
		}
	}
	return "", false
}

// ContentFilters is the viewer's content visibility state.
// ChildrenMode implies !ShowNSFW.
type ContentFilters struct {
	ShowNSFW      bool          `json:"showNSFW"`
	BlockBrainrot bool          `json:"blockBrainrot"`
	ChildrenMode  bool          `json:"childrenMode"`
	ContentTypes  []ContentType `json:"contentTypes"`
}

// DefaultFilters returns the state used before anything is stored.
func DefaultFilters() ContentFilters {
	return ContentFilters{
		ShowNSFW:      false,
		BlockBrainrot: false,
		ChildrenMode:  false,
		ContentTypes:  AllContentTypes(),
	}
}

// Allows reports whether ct is in the enabled set.
func (f ContentFilters) Allows(ct ContentType) bool {
	for _, t := range f.ContentTypes {
		if t == ct {
			return true
		}
	}
	return false
}

func (f ContentFilters) clone() ContentFilters {
	out := f
	out.ContentTypes = append([]ContentType(nil), f.ContentTypes...)
	return out
}

// Update is a partial filter change. Nil fields are left untouched; a non-nil
// ContentTypes (even empty) replaces the set.
type Update struct {
	ShowNSFW      *bool         `json:"showNSFW,omitempty"`
	BlockBrainrot *bool         `json:"blockBrainrot,omitempty"`
	ChildrenMode  *bool         `json:"childrenMode,omitempty"`
	ContentTypes  []ContentType `json:"contentTypes,omitempty"`
}

// Post is the subset of a feed post the gate needs to decide visibility
type Post struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Content       string      `json:"content"`
	Tags          []string    `json:"tags"`
	Type          ContentType `json:"type,omitempty"`
	IsNSFW        bool        `json:"isNSFW"`
	IsHighQuality bool        `json:"isHighQuality"`
}

// dedupe drops repeated content types, keeping first occurrence order
func dedupe(types []ContentType) []ContentType {
	seen := make(map[ContentType]struct{}, len(types))
	out := make([]ContentType, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
