package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"slideclaw/internal/deck"
	"slideclaw/internal/types"
)

func (h *handler) listPresentations(w http.ResponseWriter, r *http.Request) {
	presentations, skipped, err := h.deps.Deck.ListPresentations()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	summaries := make([]types.PresentationSummary, 0, len(presentations))
	for i := range presentations {
		summaries = append(summaries, types.Summarize(&presentations[i]))
	}

	if skipped > 0 {
		w.Header().Set("X-Skipped-Corrupt", strconv.Itoa(skipped))
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *handler) createPresentation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.deps.Deck.CreatePresentation(body.Title, body.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handler) getPresentation(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Deck.GetPresentation(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) deletePresentation(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Deck.DeletePresentation(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) addSlide(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
		HTML  string `json:"html"`
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slide, err := h.deps.Deck.AddSlide(chi.URLParam(r, "id"), body.Title, body.HTML, body.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, slide)
}

func (h *handler) updateSlide(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title *string `json:"title"`
		HTML  *string `json:"html"`
		Notes *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slide, err := h.deps.Deck.UpdateSlide(chi.URLParam(r, "id"), chi.URLParam(r, "slideId"), deck.SlidePatch{
		Title: body.Title,
		HTML:  body.HTML,
		Notes: body.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slide)
}

func (h *handler) deleteSlide(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Deck.DeleteSlide(chi.URLParam(r, "id"), chi.URLParam(r, "slideId")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) reorderSlides(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SlideIDs []string `json:"slideIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.deps.Deck.ReorderSlides(chi.URLParam(r, "id"), body.SlideIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
