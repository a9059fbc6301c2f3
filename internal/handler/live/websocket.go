package live

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/dominators/sagara/backend/internal/model/action"
	chatservice "github.com/dominators/sagara/backend/internal/service/chat"
	"github.com/dominators/sagara/backend/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocketHandler WebSocket会话处理器
type WebSocketHandler struct {
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(chatSvc *chatservice.Service) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

// QuickActionMessage 快捷操作消息
type QuickActionMessage struct {
	Kind string `json:"kind"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	controller, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	// an open, answering connection counts as session activity
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		controller.Touch()
		return nil
	})

	go h.pingLoop(ctx, conn)

	h.send(conn, sessionID, "connected", controller.Snapshot())

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(conn, "session mismatch")
			continue
		}

		// the session may have been ended or expired since the upgrade
		current, err := h.chatSvc.GetSession(ctx, sessionID)
		if err != nil || current != controller || controller.Ended() {
			h.closeEnded(conn, sessionID)
			return
		}

		h.handleMessage(ctx, conn, controller, &msg)
	}
}

func (h *WebSocketHandler) closeEnded(conn *websocket.Conn, sessionID string) {
	log.Printf("[websocket] session %s ended, closing connection", sessionID)
	h.sendError(conn, chatservice.ErrSessionEnded.Error())
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended")
	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeTimeout)); err != nil {
		log.Printf("[websocket] close failed: %v", err)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *websocket.Conn, controller *chatservice.SessionController, msg *inboundMessage) {
	switch msg.Type {
	case "message":
		h.handleTextMessage(ctx, conn, controller, msg.Data)
	case "quick_action":
		h.handleQuickAction(ctx, conn, controller, msg.Data)
	case "refresh":
		h.send(conn, controller.ID(), "result", controller.RefreshQualityScore(ctx))
	case "snapshot":
		h.send(conn, controller.ID(), "result", controller.Snapshot())
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) handleTextMessage(ctx context.Context, conn *websocket.Conn, controller *chatservice.SessionController, raw json.RawMessage) {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		h.sendError(conn, "invalid text payload")
		return
	}

	// deltas are written off the session lock
	pump := utils.NewDeltaPump(func(delta string) {
		h.send(conn, controller.ID(), "delta", map[string]string{"text": delta})
	})
	snapshot, err := controller.SubmitMessageStream(ctx, text.Text, pump.Push)
	pump.Close()
	if err != nil {
		if errors.Is(err, chatservice.ErrSessionEnded) {
			h.closeEnded(conn, controller.ID())
			return
		}
		if !errors.Is(err, chatservice.ErrInvalidInput) {
			log.Printf("[websocket] submit failed session=%s: %v", controller.ID(), err)
		}
		h.sendError(conn, err.Error())
		return
	}

	h.send(conn, controller.ID(), "result", snapshot)
}

func (h *WebSocketHandler) handleQuickAction(ctx context.Context, conn *websocket.Conn, controller *chatservice.SessionController, raw json.RawMessage) {
	var payload QuickActionMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.sendError(conn, "invalid quick action payload")
		return
	}

	kind, err := action.ParseKind(payload.Kind)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	snapshot, err := controller.TriggerQuickAction(ctx, kind)
	if err != nil {
		if errors.Is(err, chatservice.ErrSessionEnded) {
			h.closeEnded(conn, controller.ID())
			return
		}
		h.sendError(conn, err.Error())
		return
	}

	h.send(conn, controller.ID(), "result", snapshot)
}

func (h *WebSocketHandler) send(conn *websocket.Conn, sessionID, kind string, data interface{}) {
	msg := outgoingMessage{
		Type:      kind,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", kind, err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

// pingLoop 定期发送ping消息。WriteControl 可与其他写操作并发调用。
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
