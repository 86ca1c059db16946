package handler

import (
	"encoding/json"
	"net/http"

	"mixtape/internal/auth"
	"mixtape/internal/playlist"

	"github.com/go-chi/chi/v5"
)

type PlaylistHandler struct {
	Svc *playlist.Service
}

// List is the bounded listing: up to 20 matches, newest first.
func (h *PlaylistHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	f, err := playlist.ParseFilters(r.URL.Query())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := h.Svc.List(r.Context(), f, uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  data,
		"count": len(data),
	})
}

// Feed is the paged feed with total count and has_more.
func (h *PlaylistHandler) Feed(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	f, err := playlist.ParseFilters(r.URL.Query())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pg, err := playlist.ParsePage(r.URL.Query())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	page, err := h.Svc.Feed(r.Context(), f, pg, uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *PlaylistHandler) Recent(w http.ResponseWriter, r *http.Request) {
	data, err := h.Svc.Recent(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data, "count": len(data)})
}

func (h *PlaylistHandler) Popular(w http.ResponseWriter, r *http.Request) {
	data, err := h.Svc.Popular(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data, "count": len(data)})
}

func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	p, err := h.Svc.GetByUlid(r.Context(), uid, chi.URLParam(r, "ulid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": p})
}

func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var in playlist.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	p, err := h.Svc.Create(r.Context(), uid, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"data":    p,
		"message": "Playlist created successfully",
	})
}

func (h *PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var in playlist.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	p, err := h.Svc.Update(r.Context(), uid, chi.URLParam(r, "ulid"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":    p,
		"message": "Playlist updated successfully",
	})
}

// Delete succeeds even when the playlist is already gone, so a retried
// delete never surfaces as a failure.
func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	if err := h.Svc.Delete(r.Context(), uid, chi.URLParam(r, "ulid")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Playlist deleted successfully",
	})
}
