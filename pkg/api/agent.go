package api

import "context"

// Answerer turns a question into an answer. router.Router is the production
// implementation.
type Answerer interface {
	Route(ctx context.Context, prompt string) (string, error)
}

// RouteClassifier reports the route a prompt would take without answering it.
type RouteClassifier interface {
	Classify(prompt string) string
}
