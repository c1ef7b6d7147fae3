package handlers

import (
	"time"

	"dalchat-backend/internal/models"
	"dalchat-backend/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var sugar *zap.SugaredLogger
var st *store.Store
var cfg *models.ConfigFile
var validate = validator.New()

// NewRouter wires the whole HTTP surface. main listens on it; tests drive it
// through httptest.
func NewRouter(_cfg *models.ConfigFile, _sugar *zap.SugaredLogger, _st *store.Store) chi.Router {
	cfg = _cfg
	sugar = _sugar
	st = _st

	r := chi.NewRouter()

	if cfg.Cors {
		r.Use(AllowCors)
	}
	if cfg.PrintHttpRequests {
		r.Use(middleware.Logger)
	}

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(api chi.Router) {
		api.Post("/signup", Register)
		api.Post("/login", Login)
		api.With(Auth).Post("/logout", Logout)

		api.Route("/servers", func(r chi.Router) {
			r.Use(Auth)
			r.Get("/", GetServerList)
			r.Post("/", CreateServer)

			r.Route("/{serverID}", func(r chi.Router) {
				r.Post("/join", JoinServer)

				r.Get("/channels", GetChannelList)
				r.Post("/channels", CreateChannel)
				r.Delete("/channels/{channelID}", DeleteChannel)

				r.Get("/messages/{channelID}", GetMessageList)
				r.Post("/messages/{channelID}", CreateMessage)

				r.Get("/members", GetMemberList)
				r.Put("/members/{userID}/role", SetMemberRole)
			})
		})

		api.Get("/email/confirm", ConfirmEmail)
	})

	r.With(Auth).Get("/ws", HandleWebSocket)

	return r
}
