package handler

import (
	"net/http"
	"strconv"

	"mixtape/internal/auth"
	"mixtape/internal/profile"
	"mixtape/internal/social"

	"github.com/go-chi/chi/v5"
)

type SocialHandler struct {
	Svc      *social.Service
	Profiles *profile.Service
}

func (h *SocialHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	target, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	following, err := h.Svc.ToggleFollow(r.Context(), uid, target)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	action := "unfollowed"
	if following {
		action = "followed"
	}
	writeJSON(w, http.StatusOK, map[string]any{"action": action, "following": following})
}

// UserProfile returns a public profile with its derived counts.
func (h *SocialHandler) UserProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Profiles.ByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	stats, err := h.Profiles.Stats(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": profile.WithStats{Profile: *p, Stats: stats},
	})
}

func (h *SocialHandler) Activities(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	feed, err := h.Svc.Feed(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": feed, "count": len(feed)})
}
