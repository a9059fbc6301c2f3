package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dominators/sagara/backend/internal/model/action"
	"github.com/dominators/sagara/backend/internal/model/dashboard"
	"github.com/dominators/sagara/backend/internal/render"
	chatService "github.com/dominators/sagara/backend/internal/service/chat"
	"github.com/dominators/sagara/backend/pkg/utils"
)

// Handler 会话服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建会话处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Route("/sessions/{sessionID}", func(session chi.Router) {
		session.Get("/", h.handleGetSession)
		session.Delete("/", h.handleEndSession)
		session.Post("/messages", h.handleSubmitMessage)
		session.Post("/actions", h.handleQuickAction)
		session.Post("/quality/refresh", h.handleRefreshQuality)
		session.Get("/stats", h.handleStats)
		session.Get("/transcript", h.handleTranscript)
	})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	controller := h.chatSvc.CreateSession(r.Context())
	utils.RespondJSON(w, http.StatusCreated, controller.Snapshot())
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, controller.Snapshot())
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.EndSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snapshot, err := controller.SubmitMessage(r.Context(), payload.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleQuickAction(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind, err := action.ParseKind(payload.Kind)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	snapshot, err := controller.TriggerQuickAction(r.Context(), kind)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleRefreshQuality(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, controller.RefreshQualityScore(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, dashboard.NewOverview(controller.Snapshot().QualityScore))
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.lookup(w, r)
	if !ok {
		return
	}

	html, err := render.HTML(controller.Snapshot().Conversation)
	if err != nil {
		log.Printf("[chat] transcript render failed session=%s: %v", controller.ID(), err)
		utils.RespondError(w, http.StatusInternalServerError, "transcript rendering failed")
		return
	}
	utils.RespondHTML(w, http.StatusOK, html)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*chatService.SessionController, bool) {
	controller, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return controller, true
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrInvalidInput), errors.Is(err, action.ErrUnknownAction):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[chat] request failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
