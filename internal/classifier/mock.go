package classifier

import (
	"context"
	"sync/atomic"
)

// MockClassifier is a Classifier for tests. ClassifyFunc decides the verdict;
// when it is nil every post is classified as not brainrot.
type MockClassifier struct {
	ClassifyFunc func(ctx context.Context, in Input) (Result, error)

	calls atomic.Int32
}

func (m *MockClassifier) Classify(ctx context.Context, in Input) (Result, error) {
	m.calls.Add(1)
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, in)
	}
	return Result{}, nil
}

// Calls returns how many times Classify was invoked.
func (m *MockClassifier) Calls() int {
	return int(m.calls.Load())
}
