package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	actionHandler "github.com/dominators/sagara/backend/internal/handler/action"
	"github.com/dominators/sagara/backend/internal/handler/chat"
	"github.com/dominators/sagara/backend/internal/handler/live"
	"github.com/dominators/sagara/backend/internal/handler/stream"
	middlewarePkg "github.com/dominators/sagara/backend/internal/middleware"
	"github.com/dominators/sagara/backend/internal/model/action"
	chatService "github.com/dominators/sagara/backend/internal/service/chat"
	"github.com/dominators/sagara/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(actions action.Store, chatSvc *chatService.Service, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	actionsHandler := actionHandler.New(actions)
	chatHandler := chat.New(chatSvc)
	streamHandler := stream.New(chatSvc)
	wsHandler := live.NewWebSocketHandler(chatSvc)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": chatSvc.Count(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		actionsHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		wsHandler.RegisterWebSocketRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				if errors.Is(err, chatService.ErrSessionNotFound) {
					utils.RespondError(w, http.StatusNotFound, err.Error())
					return
				}
				log.Printf("[stream] error handling request: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "streaming failed")
			}
		})
	})

	return r
}
