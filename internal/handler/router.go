package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smartdaycare/chat-service/internal/observability"
)

// NewRouter wires the durable API and the live gateway onto one listener.
func NewRouter(chat *ChatHandler, gateway http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(observability.MetricsMiddleware())

	r.Route("/api/chats", func(r chi.Router) {
		r.Post("/", chat.Create)
		r.Post("/messages", chat.AppendMessage)
		r.Get("/user/{userID}", chat.ListForUser)
		r.Get("/user/{userID}/stats", chat.Stats)
		r.Get("/{chatID}/messages", chat.ListMessages)
		r.Put("/{chatID}/read", chat.MarkRead)
		r.Delete("/{chatID}", chat.Delete)
		r.Get("/{chatID}/participants", chat.Participants)
	})

	if gateway != nil {
		r.Handle("/ws", gateway)
	}

	return r
}
