package cep

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clientregistry/pkg/sentinel"
)

// Handler exposes the postal lookup to the form frontend so browsers do
// not have to call the external service cross-origin. Misses are a plain
// 404; the frontend treats any failure as "no autofill".
type Handler struct {
	lookup Lookup
	logger *slog.Logger
}

func NewHandler(lookup Lookup, logger *slog.Logger) *Handler {
	return &Handler{lookup: lookup, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/cep/{code}", h.resolve)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	code := Normalize(chi.URLParam(r, "code"))
	if !Valid(code) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	res, err := h.lookup.Lookup(r.Context(), code)
	if errors.Is(err, sentinel.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Warn("cep resolve failed", "code", code, "error", err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		h.logger.Error("encode cep response failed", "error", err)
	}
}
