package handler

import (
	"encoding/json"
	"net/http"

	"mixtape/internal/auth"
	"mixtape/internal/playlist"

	"github.com/go-chi/chi/v5"
)

type EngagementHandler struct {
	Svc *playlist.Service
}

func (h *EngagementHandler) Liked(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	liked, err := h.Svc.Liked(r.Context(), uid, chi.URLParam(r, "ulid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"liked": liked})
}

func (h *EngagementHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	liked, err := h.Svc.ToggleLike(r.Context(), uid, chi.URLParam(r, "ulid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	action := "unliked"
	if liked {
		action = "liked"
	}
	writeJSON(w, http.StatusOK, map[string]any{"action": action, "liked": liked})
}

// RecordPlay accepts anonymous plays; the user id is attached only when
// a session exists.
func (h *EngagementHandler) RecordPlay(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	err := h.Svc.RecordPlay(r.Context(), uid, chi.URLParam(r, "ulid"), r.UserAgent())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Play recorded"})
}

func (h *EngagementHandler) Share(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var in playlist.ShareInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	res, err := h.Svc.Share(r.Context(), uid, chi.URLParam(r, "ulid"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"data":    res,
		"message": "Playlist shared successfully",
	})
}
