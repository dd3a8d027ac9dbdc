// Package classifier provides the brainrot content classifier consumed by the
// content filter gate. The classifier is a black box: it receives a post's
// title, content and tags and answers whether the post is low-value
// engagement bait.
package classifier

import "context"

// Input is the structured prompt sent to a classifier
type Input struct {
	PostID  string   `json:"-"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// Result is the classifier's verdict
type Result struct {
	IsBrainrot bool   `json:"isBrainrot"`
	Reason     string `json:"reason"`
}

// Classifier decides whether a post is brainrot.
type Classifier interface {
	Classify(ctx context.Context, in Input) (Result, error)
}

// ResultSchema is the JSON schema a remote classifier must answer with.
var ResultSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"isBrainrot": map[string]any{
			"type":        "boolean",
			"description": "True if the content is low-quality, engagement-bait or brainrot",
		},
		"reason": map[string]any{
			"type":        "string",
			"description": "Short explanation of the decision",
		},
	},
	"required": []string{"isBrainrot", "reason"},
}
