// Package router is the entry point for a question: a literal reference
// without a commentary request is answered straight from the store, anything
// else goes to the reasoning loop.
package router

import (
	"context"
	"errors"
	"log/slog"

	"scriptura/pkg/llm"
	"scriptura/pkg/scripture"
	"scriptura/pkg/store"
	"scriptura/pkg/utils"
)

// Fast-path not-found outcomes.
var (
	ErrTranslationNotFound = store.ErrTranslationNotFound
	ErrBookNotFound        = store.ErrBookNotFound
	ErrChapterNotFound     = store.ErrChapterNotFound
	ErrVerseNotFound       = store.ErrVerseNotFound
)

// TranslationUnavailableError names the unknown code and the available ones.
type TranslationUnavailableError = store.TranslationUnavailableError

// ErrAgent is the only error delegated requests surface. The cause is logged.
var ErrAgent = errors.New("agent error: unable to answer right now")

// Delegator is the reasoning loop.
type Delegator interface {
	Run(ctx context.Context, conv *llm.Conversation) (string, error)
}

// PassageResolver is the part of store.Store the fast path needs.
type PassageResolver interface {
	Resolve(ctx context.Context, q scripture.Query) (scripture.Passage, error)
}

// Route is how a request was handled.
type Route string

const (
	RouteFastPath Route = "fast_path"
	RouteAgent    Route = "agent"
)

// Router decides per request between the fast path and delegation.
type Router struct {
	parser       *scripture.Parser
	store        PassageResolver
	agent        Delegator
	systemPrompt string
}

// New builds a router. agent may be nil, in which case delegated requests fail with ErrAgent.
func New(parser *scripture.Parser, s PassageResolver, agent Delegator, systemPrompt string) *Router {
	return &Router{parser: parser, store: s, agent: agent, systemPrompt: systemPrompt}
}

// Decide returns the route prompt would take and the parsed query, if any.
func (r *Router) Decide(prompt string) (Route, scripture.Query) {
	q, ok := r.parser.Parse(prompt)
	if !ok || scripture.WantsCommentary(prompt) {
		return RouteAgent, q
	}
	return RouteFastPath, q
}

// Route answers prompt. Fast-path misses come back as the named not-found
// errors; every delegated failure is ErrAgent.
func (r *Router) Route(ctx context.Context, prompt string) (string, error) {
	if llm.RequestIDFrom(ctx) == "" {
		ctx = llm.WithRequestID(ctx, utils.ShortID())
	}

	route, q := r.Decide(prompt)
	slog.InfoContext(ctx, "Routing request", "route", route, "prompt_len", len(prompt))

	if route == RouteFastPath {
		passage, err := r.store.Resolve(ctx, q)
		if err != nil {
			if !store.IsNotFound(err) {
				slog.ErrorContext(ctx, "Fast path lookup failed", "query", q.String(), "error", err)
			}
			return "", err
		}
		return passage.Format(), nil
	}

	return r.delegate(ctx, prompt)
}

func (r *Router) delegate(ctx context.Context, prompt string) (string, error) {
	if r.agent == nil {
		slog.ErrorContext(ctx, "No reasoning capability configured")
		return "", ErrAgent
	}

	conv := llm.NewConversation(llm.RequestIDFrom(ctx),
		llm.NewSystemMessage(r.systemPrompt),
		llm.NewUserMessage(prompt),
	)

	answer, err := r.agent.Run(ctx, conv)
	if err != nil {
		slog.ErrorContext(ctx, "Delegated reasoning failed", "error", err, "messages", conv.Len())
		return "", ErrAgent
	}
	return answer, nil
}

// Classify implements api.RouteClassifier.
func (r *Router) Classify(prompt string) string {
	route, _ := r.Decide(prompt)
	return string(route)
}
