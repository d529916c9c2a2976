package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clientregistry/internal/registry/models"
	dErrors "clientregistry/pkg/domainerrors"
)

// Directory is the service surface the HTTP layer consumes.
type Directory interface {
	List(ctx context.Context, search string) ([]models.Client, error)
	Get(ctx context.Context, id models.ClientID) (models.Client, error)
	Create(ctx context.Context, draft models.Draft) (models.Client, error)
	Update(ctx context.Context, id models.ClientID, draft models.Draft) (models.Client, error)
	Delete(ctx context.Context, id models.ClientID) error
}

// Handler is the thin HTTP layer over the directory. It delegates to the
// service without embedding business logic so transport concerns stay
// isolated.
type Handler struct {
	directory Directory
	logger    *slog.Logger
}

func New(directory Directory, logger *slog.Logger) *Handler {
	return &Handler{directory: directory, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/clients", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.directory.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if records == nil {
		records = []models.Client{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clientID(w, r)
	if !ok {
		return
	}
	record, err := h.directory.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	record, err := h.directory.Create(r.Context(), draft)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clientID(w, r)
	if !ok {
		return
	}
	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	record, err := h.directory.Update(r.Context(), id, draft)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clientID(w, r)
	if !ok {
		return
	}
	if err := h.directory.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clientID(w http.ResponseWriter, r *http.Request) (models.ClientID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.writeError(w, dErrors.New(dErrors.CodeValidation, "invalid client id"))
		return 0, false
	}
	return models.ClientID(id), true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response failed", "error", err)
	}
}

// writeError centralizes domain error translation to HTTP responses so
// every endpoint produces the same JSON error envelope. Validation
// failures additionally carry the field→message map for inline rendering.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	status := http.StatusInternalServerError
	code := string(dErrors.CodeInternal)
	message := "internal error"
	if errors.As(err, &de) {
		status = dErrors.ToHTTPStatus(de.Code)
		code = string(de.Code)
		message = de.Message
	}

	body := map[string]any{"error": code, "message": message}
	if fields := dErrors.FieldsOf(err); len(fields) > 0 {
		body["fields"] = fields
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
