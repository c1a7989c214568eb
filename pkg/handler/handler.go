package handler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"scriptura/pkg/api"
	"scriptura/pkg/llm"
	"scriptura/pkg/router"
	"scriptura/pkg/utils"
)

// QuestionHandler answers every inbound gateway message through an Answerer
// and sends the result back to the originating session.
type QuestionHandler struct {
	answerer  api.Answerer
	responder api.MessageResponder
	wg        sync.WaitGroup
}

var _ api.GatewayHandler = (*QuestionHandler)(nil)

// NewQuestionHandler creates a handler. The responder is injected by the
// gateway builder through SetResponder.
func NewQuestionHandler(answerer api.Answerer) *QuestionHandler {
	return &QuestionHandler{answerer: answerer}
}

// SetResponder implements api.ResponderAware.
func (h *QuestionHandler) SetResponder(responder api.MessageResponder) {
	h.responder = responder
}

// OnMessage implements api.MessageProcessor. Each message is answered on its
// own goroutine so a slow delegated request never blocks a channel's read loop.
func (h *QuestionHandler) OnMessage(msg *api.UnifiedMessage) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.Handle(context.Background(), msg)
	}()
}

// Wait blocks until every in-flight message has been answered.
func (h *QuestionHandler) Wait() {
	h.wg.Wait()
}

// Handle answers msg synchronously.
func (h *QuestionHandler) Handle(ctx context.Context, msg *api.UnifiedMessage) {
	if msg.RequestID == "" {
		msg.RequestID = utils.ShortID()
	}
	ctx = llm.WithRequestID(ctx, msg.RequestID)
	start := time.Now()

	route := ""
	if c, ok := h.answerer.(api.RouteClassifier); ok {
		route = c.Classify(msg.Content)
	}
	if route == string(router.RouteAgent) && h.responder != nil {
		if err := h.responder.SendSignal(msg.Session, llm.BlockTypeThinking); err != nil {
			slog.DebugContext(ctx, "Failed to send thinking signal", "error", err)
		}
	}

	answer, err := h.answerer.Route(ctx, msg.Content)
	if err != nil {
		answer = router.Explain(err)
	}

	slog.InfoContext(ctx, "Question answered",
		"channel", msg.Session.ChannelID,
		"route", route,
		"ok", err == nil,
		"duration", time.Since(start).String(),
	)

	h.reply(ctx, msg.Session, answer, route)
}

func (h *QuestionHandler) reply(ctx context.Context, session api.SessionContext, content, route string) {
	if h.responder == nil {
		slog.WarnContext(ctx, "No responder set, dropping answer")
		return
	}

	var err error
	if rr, ok := h.responder.(api.RoutedResponder); ok {
		err = rr.SendRoutedReply(session, content, route)
	} else {
		err = h.responder.SendReply(session, content)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to send reply", "channel", session.ChannelID, "error", err)
	}
}
