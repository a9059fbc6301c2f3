package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// SendSSEChunk 发送Server-Sent Events数据块
func SendSSEChunk(w http.ResponseWriter, flusher http.Flusher, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[sse] failed to marshal payload: %v", err)
		return
	}

	frame := make([]byte, 0, len(data)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, data...)
	frame = append(frame, "\n\n"...)
	if _, err := w.Write(frame); err != nil {
		log.Printf("[sse] failed to write frame: %v", err)
		return
	}
	flusher.Flush()
}

// SetupSSEHeaders 设置Server-Sent Events响应头
// CORS headers come from the router middleware.
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}
