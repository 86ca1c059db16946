package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mixtape/internal/auth"
	"mixtape/internal/playlist"
	"mixtape/internal/social"

	"github.com/go-chi/chi/v5"
)

// The services below are zero-valued: reaching the store would panic,
// so each passing test also proves the boundary check fires first.

func testToken(t *testing.T, j *auth.JWT, uid uint64) string {
	t.Helper()
	token, err := j.Sign(uid)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return "Bearer " + token
}

func TestCreatePlaylist_ShortContextStoryRejected(t *testing.T) {
	j := auth.NewJWT("test-secret")
	ph := &PlaylistHandler{Svc: &playlist.Service{}}

	r := chi.NewRouter()
	r.With(auth.RequireAuth(j)).Post("/api/playlists", ph.Create)

	body, _ := json.Marshal(map[string]any{
		"name":          "Rainy Day",
		"platform":      "custom",
		"context_story": "too short", // 9 characters
	})
	req := httptest.NewRequest("POST", "/api/playlists", bytes.NewReader(body))
	req.Header.Set("Authorization", testToken(t, j, 1))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	var resp map[string]any
	_ = json.NewDecoder(w.Body).Decode(&resp)
	if resp["error"] == nil {
		t.Error("expected an error body")
	}
}

func TestCreatePlaylist_Unauthenticated(t *testing.T) {
	j := auth.NewJWT("test-secret")
	ph := &PlaylistHandler{Svc: &playlist.Service{}}

	r := chi.NewRouter()
	r.With(auth.RequireAuth(j)).Post("/api/playlists", ph.Create)

	req := httptest.NewRequest("POST", "/api/playlists", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestFeed_RejectsBadPagination(t *testing.T) {
	ph := &PlaylistHandler{Svc: &playlist.Service{}}

	r := chi.NewRouter()
	r.Get("/api/playlists/infinite", ph.Feed)

	for _, q := range []string{"limit=0", "limit=-1", "page=-2", "platform=cassette"} {
		req := httptest.NewRequest("GET", "/api/playlists/infinite?"+q, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, w.Code)
		}
	}
}

func TestShare_FriendShareWithoutRecipientsRejected(t *testing.T) {
	j := auth.NewJWT("test-secret")
	eh := &EngagementHandler{Svc: &playlist.Service{}}

	r := chi.NewRouter()
	r.With(auth.RequireAuth(j)).Post("/api/playlists/{ulid}/share", eh.Share)

	body, _ := json.Marshal(map[string]any{"share_type": "friend"})
	req := httptest.NewRequest("POST", "/api/playlists/01ARZ3NDEKTSV4RRFFQ69G5FAV/share", bytes.NewReader(body))
	req.Header.Set("Authorization", testToken(t, j, 1))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestToggleFollow_SelfFollowRejected(t *testing.T) {
	j := auth.NewJWT("test-secret")
	sh := &SocialHandler{Svc: &social.Service{}}

	r := chi.NewRouter()
	r.With(auth.RequireAuth(j)).Post("/api/users/{id}/follow", sh.ToggleFollow)

	req := httptest.NewRequest("POST", "/api/users/7/follow", nil)
	req.Header.Set("Authorization", testToken(t, j, 7))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLiked_Unauthenticated(t *testing.T) {
	j := auth.NewJWT("test-secret")
	eh := &EngagementHandler{Svc: &playlist.Service{}}

	r := chi.NewRouter()
	r.With(auth.RequireAuth(j)).Get("/api/playlists/{ulid}/like", eh.Liked)

	req := httptest.NewRequest("GET", "/api/playlists/01ARZ3NDEKTSV4RRFFQ69G5FAV/like", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
