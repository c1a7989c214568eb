package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"scriptura/pkg/api"
	"scriptura/pkg/llm"
	"scriptura/pkg/router"
	"scriptura/pkg/scripture"
	"scriptura/pkg/store"
	"scriptura/pkg/utils"

	"github.com/gorilla/mux"
)

type verseJSON struct {
	Number int    `json:"verse_number"`
	Text   string `json:"verse_text"`
}

type passageJSON struct {
	Translation string                 `json:"translation"`
	Book        string                 `json:"book"`
	Chapter     map[string][]verseJSON `json:"chapter"`
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

type askResponse struct {
	Answer string `json:"answer"`
	Route  string `json:"route,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case store.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, router.ErrAgent):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorResponse{Detail: router.Explain(err)})
}

func (c *WebChannel) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"Health": "OK"})
}

func (c *WebChannel) handleTranslation(w http.ResponseWriter, r *http.Request) {
	if c.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "store not configured"})
		return
	}
	code := mux.Vars(r)["translation"]

	var tr *store.Translation
	err := c.store.View(r.Context(), func(rd store.Reader) error {
		var err error
		tr, err = rd.FindTranslation(r.Context(), code)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if tr == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Translation not found"})
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func (c *WebChannel) handleBook(w http.ResponseWriter, r *http.Request) {
	if c.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "store not configured"})
		return
	}
	vars := mux.Vars(r)

	var (
		tr   *store.Translation
		book *store.Book
	)
	err := c.store.View(r.Context(), func(rd store.Reader) error {
		var err error
		if tr, err = rd.FindTranslation(r.Context(), vars["translation"]); err != nil || tr == nil {
			return err
		}
		book, err = rd.FindBook(r.Context(), vars["book"])
		return err
	})
	switch {
	case err != nil:
		writeError(w, err)
	case tr == nil:
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Translation not found"})
	case book == nil:
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Book not found"})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"translation": tr, "book": book})
	}
}

func (c *WebChannel) handlePassage(w http.ResponseWriter, r *http.Request) {
	if c.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "store not configured"})
		return
	}
	vars := mux.Vars(r)

	q := scripture.Query{
		Book:        vars["book"],
		Translation: strings.ToUpper(vars["translation"]),
	}
	q.Chapter, _ = strconv.Atoi(vars["chapter"])
	if v, ok := vars["verse"]; ok {
		q.Verse, _ = strconv.Atoi(v)
		if q.Verse < 1 {
			writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Verse not found."})
			return
		}
	}
	if err := q.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}

	p, err := c.store.Resolve(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	verses := make([]verseJSON, 0, len(p.Lines))
	for _, l := range p.Lines {
		verses = append(verses, verseJSON{Number: l.Number, Text: l.Text})
	}
	writeJSON(w, http.StatusOK, passageJSON{
		Translation: p.Translation,
		Book:        p.Book,
		Chapter:     map[string][]verseJSON{strconv.Itoa(p.Chapter): verses},
	})
}

func (c *WebChannel) handleAsk(w http.ResponseWriter, r *http.Request) {
	if c.answerer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "question answering not configured"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "body must be {\"prompt\": \"...\"}"})
		return
	}

	ctx := llm.WithRequestID(r.Context(), utils.ShortID())
	answer, err := c.answerer.Route(ctx, req.Prompt)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := askResponse{Answer: answer}
	if cl, ok := c.answerer.(api.RouteClassifier); ok {
		resp.Route = cl.Classify(req.Prompt)
	}
	writeJSON(w, http.StatusOK, resp)
}
