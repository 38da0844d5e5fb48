package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ancorit/notesauth/notes"
)

type notesHandler struct {
	notes  NotesService
	logger *slog.Logger
}

func (h *notesHandler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.notes.List(r.Context())
	if err != nil {
		h.writeNotesError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *notesHandler) search(w http.ResponseWriter, r *http.Request) {
	out, err := h.notes.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.writeNotesError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *notesHandler) get(w http.ResponseWriter, r *http.Request) {
	n, err := h.notes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeNotesError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *notesHandler) create(w http.ResponseWriter, r *http.Request) {
	var in notes.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	n, err := h.notes.Create(r.Context(), in)
	if err != nil {
		h.writeNotesError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *notesHandler) update(w http.ResponseWriter, r *http.Request) {
	var in notes.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	n, err := h.notes.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeNotesError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *notesHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeNotesError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *notesHandler) writeNotesError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *notes.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "Validation failed", verr.Errors...)
	case errors.Is(err, notes.ErrNotFound):
		writeError(w, http.StatusNotFound, "Note not found")
	case errors.Is(err, notes.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "Note already exists")
	default:
		h.logger.ErrorContext(r.Context(), "notes request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
