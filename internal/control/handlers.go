package control

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/tidwall/gjson"

	"loadbot/internal/queue"
	"loadbot/internal/transport"
)

type response struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message,omitempty"`
	Error        string        `json:"error,omitempty"`
	ClearedCount *int          `json:"clearedCount,omitempty"`
	Status       *queue.Status `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("⚠️  Failed to write response: %v", err)
	}
}

func fail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, response{Success: false, Error: msg})
}

// readBody returns the request body, or "{}" when it is empty.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return []byte("{}"), nil
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON body")
	}
	return body, nil
}

// quoteFor returns the stored reply context for chatID when wanted.
func (s *Server) quoteFor(chatID string, wanted bool) *transport.MessageRef {
	if !wanted || s.deps.Contexts == nil {
		return nil
	}
	entry, ok := s.deps.Contexts.Get(chatID)
	if !ok {
		return nil
	}
	ref := entry.Ref
	return &ref
}

// handleSendMessage sends free text or an image to a chat.
//
// Body:
//   - chat_id: Target chat (required)
//   - message: Text, or {"url": ..., "caption": ...} for images (required)
//   - message_type: "text" (default) or "image"
//   - reply_to_original: Quote the stored context message (default false)
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	chatID := gjson.GetBytes(body, "chat_id").String()
	message := gjson.GetBytes(body, "message")
	if chatID == "" || !message.Exists() || message.String() == "" {
		fail(w, http.StatusBadRequest, "chat_id and message are required")
		return
	}
	if s.deps.Sender == nil {
		fail(w, http.StatusInternalServerError, "Transport not available")
		return
	}

	quote := s.quoteFor(chatID, gjson.GetBytes(body, "reply_to_original").Bool())

	if gjson.GetBytes(body, "message_type").String() == "image" {
		img := transport.Image{
			URL:     message.Get("url").String(),
			Caption: message.Get("caption").String(),
		}
		if message.Type == gjson.String {
			img.URL = message.String()
		}
		if img.URL == "" {
			fail(w, http.StatusBadRequest, "image message requires url")
			return
		}
		err = s.deps.Sender.SendImage(r.Context(), chatID, img, quote)
	} else {
		err = s.deps.Sender.SendText(r.Context(), chatID, message.String(), quote)
	}

	if err != nil {
		log.Printf("❌ Error sending message to %s: %v", chatID, err)
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("✅ Message sent to %s", chatID)
	writeJSON(w, http.StatusOK, response{Success: true, Message: "Message sent successfully"})
}

// StatusText maps a status name and its data object to the chat text.
func StatusText(status string, data gjson.Result) string {
	switch status {
	case "processing":
		return "⏳ Processing your data..."
	case "completed":
		text := "✅ Processing completed successfully!"
		if result := data.Get("result"); result.Exists() && result.String() != "" {
			text += "\n\n📊 *Result:*\n" + result.String()
		}
		return text
	case "error":
		text := "❌ An error occurred during processing"
		if cause := data.Get("error"); cause.Exists() && cause.String() != "" {
			text += "\n\n*Error:* " + cause.String()
		}
		return text
	case "custom":
		if msg := data.Get("message").String(); msg != "" {
			return msg
		}
		return "Status update"
	default:
		return "📋 Status: " + status
	}
}

// handleSendStatus sends a canned status update.
//
// Body:
//   - chat_id, status: Required
//   - data: Optional object ({result}, {error} or {message})
//   - reply_to_original: Quote the stored context message (default true)
//
// Old reply contexts are swept afterwards.
func (s *Server) handleSendStatus(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	chatID := gjson.GetBytes(body, "chat_id").String()
	status := gjson.GetBytes(body, "status").String()
	if chatID == "" || status == "" {
		fail(w, http.StatusBadRequest, "chat_id and status are required")
		return
	}
	if s.deps.Sender == nil {
		fail(w, http.StatusInternalServerError, "Transport not available")
		return
	}

	replyFlag := gjson.GetBytes(body, "reply_to_original")
	quote := s.quoteFor(chatID, !replyFlag.Exists() || replyFlag.Bool())

	text := StatusText(status, gjson.GetBytes(body, "data"))
	if err := s.deps.Sender.SendText(r.Context(), chatID, text, quote); err != nil {
		log.Printf("❌ Error sending status to %s: %v", chatID, err)
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Printf("📋 Status %q sent to %s", status, chatID)

	if s.deps.Contexts != nil {
		if n := s.deps.Contexts.Sweep(s.now()); n > 0 {
			log.Printf("🧹 Cleaned up %d old message contexts", n)
		}
	}

	writeJSON(w, http.StatusOK, response{Success: true, Message: "Status sent successfully"})
}

func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	status := s.deps.Queue.Status()
	writeJSON(w, http.StatusOK, response{Success: true, Status: &status})
}

func (s *Server) handleClearQueue(w http.ResponseWriter, r *http.Request) {
	n := s.deps.Queue.Clear()
	writeJSON(w, http.StatusOK, response{
		Success:      true,
		Message:      fmt.Sprintf("Queue cleared. Removed %d requests", n),
		ClearedCount: &n,
	})
}

// handleClearContext forgets the reply context of chat_id, or of every chat
// when chat_id is absent.
func (s *Server) handleClearContext(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if chatID := gjson.GetBytes(body, "chat_id").String(); chatID != "" {
		s.deps.Contexts.Delete(chatID)
		log.Printf("🧹 Cleared message context for %s", chatID)
	} else {
		s.deps.Contexts.Clear()
		log.Println("🧹 Cleared all message contexts")
	}

	writeJSON(w, http.StatusOK, response{Success: true, Message: "Context cleared successfully"})
}
