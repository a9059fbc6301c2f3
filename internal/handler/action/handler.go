package action

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dominators/sagara/backend/internal/model/action"
	"github.com/dominators/sagara/backend/pkg/utils"
)

// Handler 快捷操作目录的HTTP处理器
type Handler struct {
	actions action.Store
}

// New 创建快捷操作处理器
func New(actions action.Store) *Handler {
	return &Handler{actions: actions}
}

// RegisterRoutes 注册快捷操作相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/actions", h.handleListActions)
}

func (h *Handler) handleListActions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.actions.List())
}
