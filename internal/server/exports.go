package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slideclaw/internal/types"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

func (h *handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "pdf", "application/pdf", h.deps.Export.ExportPDF)
}

func (h *handler) exportPPTX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "pptx", pptxContentType, h.deps.Export.ExportPPTX)
}

func (h *handler) export(w http.ResponseWriter, r *http.Request, ext, contentType string,
	build func(ctx context.Context, p *types.Presentation) ([]byte, error)) {
	id := chi.URLParam(r, "id")

	presentation, err := h.deps.Deck.GetPresentation(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := build(r.Context(), presentation)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("presentation-%s.%s", id, ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
