package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"slideclaw/internal/design"
	"slideclaw/internal/types"
)

func (h *handler) getDesignConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.deps.Store.DesignConfig()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"config":  cfg,
		"catalog": design.Catalog,
	})
}

func (h *handler) putDesignConfig(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Library string `json:"library"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !design.Valid(body.Library) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid library. Valid values: %s", strings.Join(design.Keys(), ", ")))
		return
	}

	cfg := types.DesignConfig{Library: body.Library}
	if err := h.deps.Store.SaveDesignConfig(cfg); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
