package classifier

import (
	"context"
	"fmt"
	"strings"
)

// defaultKeywords are slang terms that mark engagement-bait posts
var defaultKeywords = []string{
	"skibidi",
	"gyatt",
	"rizz",
	"fanum tax",
	"mewing",
	"sigma grindset",
	"only in ohio",
	"what the sigma",
	"goofy ahh",
	"looksmaxxing",
}

// KeywordClassifier is a local heuristic used when no remote classifier is
// configured. A post is brainrot when it carries a "brainrot" tag or at
// least Threshold distinct keywords appear in its title, content or tags.
type KeywordClassifier struct {
	Keywords  []string
	Threshold int
}

// NewKeywordClassifier returns a heuristic classifier with the built-in word list.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{Keywords: defaultKeywords, Threshold: 2}
}

func (k *KeywordClassifier) Classify(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	for _, tag := range in.Tags {
		if strings.EqualFold(strings.TrimPrefix(tag, "#"), "brainrot") {
			return Result{IsBrainrot: true, Reason: "tagged as brainrot"}, nil
		}
	}

	text := strings.ToLower(in.Title + "\n" + in.Content + "\n" + strings.Join(in.Tags, " "))
	var hits []string
	for _, kw := range k.Keywords {
		if strings.Contains(text, kw) {
			hits = append(hits, kw)
		}
	}

	threshold := k.Threshold
	if threshold <= 0 {
		threshold = 1
	}
	if len(hits) >= threshold {
		return Result{IsBrainrot: true, Reason: fmt.Sprintf("matched %s", strings.Join(hits, ", "))}, nil
	}
	return Result{IsBrainrot: false, Reason: "no brainrot markers"}, nil
}
