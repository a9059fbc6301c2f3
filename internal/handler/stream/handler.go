package stream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dominators/sagara/backend/internal/model/chat"
	chatService "github.com/dominators/sagara/backend/internal/service/chat"
	"github.com/dominators/sagara/backend/pkg/utils"
)

// per-frame bound on a client that stops reading
const writeTimeout = 10 * time.Second

// Handler streams copilot replies via Server-Sent Events
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string         `json:"event"`
	Content   string         `json:"content,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
	Snapshot  *chat.Snapshot `json:"snapshot,omitempty"`
	Finished  bool           `json:"finished,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// HandleStreamRequest submits userMessage to the session and streams the reply.
// Errors after the stream is opened are reported in-band as "error" events.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	controller, err := h.chatSvc.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	utils.SetupSSEHeaders(w)
	defer func() {
		_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	}()

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
		Content:   "Oceanic Copilot",
	})

	// deltas are written off the session lock
	pump := utils.NewDeltaPump(func(delta string) {
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "delta",
			SessionID: sessionID,
			Content:   delta,
		})
	})
	snapshot, err := controller.SubmitMessageStream(ctx, userMessage, pump.Push)
	pump.Close()
	if err != nil {
		if !errors.Is(err, chatService.ErrInvalidInput) {
			log.Printf("[stream] reply failed session=%s: %v", sessionID, err)
		}
		h.sendSSEError(w, flusher, err.Error())
		return nil
	}

	last, _ := snapshot.LastTurn()
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   last.Content,
		Snapshot:  &snapshot,
	})

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed response for session=%s turns=%d", sessionID, len(snapshot.Conversation))
	return nil
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	// writers without deadline support (e.g. recorders) just skip it
	_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(writeTimeout))
	utils.SendSSEChunk(w, flusher, response)
}

func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{
		Event: "error",
		Error: errorMsg,
	})
}
