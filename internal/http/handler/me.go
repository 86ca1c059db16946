package handler

import (
	"encoding/json"
	"net/http"

	"mixtape/internal/auth"
	"mixtape/internal/profile"
)

type MeHandler struct {
	Profiles *profile.Service
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	p, err := h.Profiles.Get(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": uid,
		"profile": p,
	})
}

func (h *MeHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var in profile.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	p, err := h.Profiles.Update(r.Context(), uid, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":    p,
		"message": "Profile updated successfully",
	})
}
