package communities

import (
	"errors"
	"strings"
	"time"
)

const (
	MaxNameLength        = 64
	MaxDescriptionLength = 500
	MaxCategoryLength    = 32
	MaxRules             = 20
	MaxRuleLength        = 200
)

var (
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name is too long")
	ErrCreatorRequired    = errors.New("creator is required")
	ErrDescriptionTooLong = errors.New("description is too long")
	ErrCategoryTooLong    = errors.New("category is too long")
	ErrTooManyRules       = errors.New("too many rules")
	ErrRuleTooLong        = errors.New("rule is too long")
	ErrCommunityNotFound  = errors.New("community not found")
)

// Community is a community record. MemberCount is a display counter and is
// never negative.
type Community struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Icon             string    `json:"icon"`
	MemberCount      int       `json:"memberCount"`
	Category         string    `json:"category"`
	Rules            []string  `json:"rules"`
	IsNSFW           bool      `json:"isNSFW"`
	PointsOfInterest []string  `json:"pointsOfInterest"`
	CreatorID        string    `json:"creatorId"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (c Community) clone() Community {
	c.Rules = append([]string(nil), c.Rules...)
	c.PointsOfInterest = append([]string(nil), c.PointsOfInterest...)
	return c
}

// CommunityWithStatus is a community plus the viewer's membership, which is
// computed on read and never stored.
type CommunityWithStatus struct {
	Community
	IsJoined bool `json:"isJoined"`
}

// CreateRequest carries the user-supplied fields of a new community.
type CreateRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Icon             string   `json:"icon"`
	Category         string   `json:"category"`
	Rules            []string `json:"rules"`
	IsNSFW           bool     `json:"isNSFW"`
	PointsOfInterest []string `json:"pointsOfInterest"`
	CreatorID        string   `json:"creatorId"`
}

func (r *CreateRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(r.CreatorID) == "" {
		return ErrCreatorRequired
	}
	if len(r.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if len(r.Category) > MaxCategoryLength {
		return ErrCategoryTooLong
	}
	if len(r.Rules) > MaxRules {
		return ErrTooManyRules
	}
	for _, rule := range r.Rules {
		if len(rule) > MaxRuleLength {
			return ErrRuleTooLong
		}
	}
	return nil
}
