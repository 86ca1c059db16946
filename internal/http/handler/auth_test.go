package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"mixtape/internal/auth"
	"mixtape/internal/profile"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newAuthHandler(t *testing.T, withTables bool) *AuthHandler {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if withTables {
		stmts := []string{
			`create table users (
				id integer primary key autoincrement,
				email text not null unique,
				password_hash text not null,
				created_at datetime
			)`,
			`create table user_profiles (
				user_id integer primary key,
				username text not null unique,
				display_name text,
				bio text,
				avatar_url text,
				is_private integer not null default 0,
				profile_completed integer not null default 0,
				created_at datetime,
				updated_at datetime
			)`,
		}
		for _, s := range stmts {
			if err := gdb.Exec(s).Error; err != nil {
				t.Fatalf("schema: %v", err)
			}
		}
	}

	return &AuthHandler{
		DB:       gdb,
		JWT:      auth.NewJWT("test-secret"),
		Profiles: &profile.Service{DB: gdb},
	}
}

func postRegister(h *AuthHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	h.Register(w, req)
	return w
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	h := newAuthHandler(t, true)
	body := `{"email":"ana@example.com","password":"hunter2hunter2"}`

	if w := postRegister(h, body); w.Code != http.StatusOK {
		t.Fatalf("first register = %d, want 200", w.Code)
	}
	if w := postRegister(h, body); w.Code != http.StatusConflict {
		t.Errorf("second register = %d, want 409", w.Code)
	}
}

func TestRegister_StoreFailureIsNotAConflict(t *testing.T) {
	// no schema at all: the insert fails for a reason that is not a
	// duplicate, which must surface as the generic 500
	h := newAuthHandler(t, false)

	w := postRegister(h, `{"email":"ana@example.com","password":"hunter2hunter2"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
