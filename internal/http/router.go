package http

import (
	"net/http"

	"mixtape/internal/auth"
	"mixtape/internal/cache"
	"mixtape/internal/config"
	"mixtape/internal/http/handler"
	mw "mixtape/internal/http/middleware"
	"mixtape/internal/playlist"
	"mixtape/internal/profile"
	"mixtape/internal/social"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, coord *cache.Coordinator) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.RequestTimeout))

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	profiles := &profile.Service{DB: db}
	playlists := &playlist.Service{DB: db, Cache: coord}
	socials := &social.Service{DB: db}

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc, Profiles: profiles}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{Profiles: profiles}
	r.Route("/me", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))
		r.Get("/", me.Me)
		r.Put("/profile", me.UpdateProfile)
	})

	ph := &handler.PlaylistHandler{Svc: playlists}
	eh := &handler.EngagementHandler{Svc: playlists}
	sh := &handler.SocialHandler{Svc: socials, Profiles: profiles}

	r.Route("/api", func(r chi.Router) {
		r.Route("/playlists", func(r chi.Router) {
			r.With(auth.OptionalAuth(jwtSvc)).Get("/", ph.List)
			r.With(auth.OptionalAuth(jwtSvc)).Get("/infinite", ph.Feed)
			r.Get("/recent", ph.Recent)
			r.Get("/popular", ph.Popular)
			r.With(auth.RequireAuth(jwtSvc)).Post("/", ph.Create)

			r.Route("/{ulid}", func(r chi.Router) {
				r.With(auth.OptionalAuth(jwtSvc)).Get("/", ph.Get)
				r.With(auth.RequireAuth(jwtSvc)).Put("/", ph.Update)
				r.With(auth.RequireAuth(jwtSvc)).Delete("/", ph.Delete)

				r.With(auth.RequireAuth(jwtSvc)).Get("/like", eh.Liked)
				r.With(auth.RequireAuth(jwtSvc)).Post("/like", eh.ToggleLike)
				r.With(auth.OptionalAuth(jwtSvc)).Post("/plays", eh.RecordPlay)
				r.With(auth.RequireAuth(jwtSvc)).Post("/share", eh.Share)
			})
		})

		r.With(auth.RequireAuth(jwtSvc)).Post("/users/{id}/follow", sh.ToggleFollow)
		r.Get("/profiles/{username}", sh.UserProfile)
		r.With(auth.RequireAuth(jwtSvc)).Get("/activities", sh.Activities)
	})

	return r
}
