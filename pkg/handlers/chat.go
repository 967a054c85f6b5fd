package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/services"
)

// ChatRequest for POST /projects/{pid}/chat
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatPageResponse for GET /projects/{pid}/chat
type ChatPageResponse struct {
	*services.ChatView
	Messages []models.ChatMessage `json:"messages"`
}

// ChatSendResponse for POST /projects/{pid}/chat
type ChatSendResponse struct {
	*services.ChatExchange
	Messages []models.ChatMessage `json:"messages"`
}

// ChatHandler handles the assistant tab. The transcript is kept in the
// session, one per project.
type ChatHandler struct {
	chatService services.ChatService
	sessions    *Sessions
	logger      *zap.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatService services.ChatService, sessions *Sessions, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		sessions:    sessions,
		logger:      logger,
	}
}

// RegisterRoutes registers the chat handler's routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /projects/{pid}/chat", h.Get)
	mux.HandleFunc("POST /projects/{pid}/chat", h.Send)
}

// Get handles GET /projects/{pid}/chat
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.chatService.GetChat(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to load chat", err, zap.String("project_id", projectID))
		return
	}
	writeData(w, h.logger, http.StatusOK, ChatPageResponse{
		ChatView: view,
		Messages: h.sessions.Transcript(r.Context(), projectID),
	})
}

// Send handles POST /projects/{pid}/chat
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req ChatRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	exchange, err := h.chatService.Ask(r.Context(), projectID, req.Message)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to answer chat message", err, zap.String("project_id", projectID))
		return
	}

	messages, err := h.sessions.AppendTranscript(r.Context(), projectID, exchange.User, exchange.Assistant)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to save chat transcript", err, zap.String("project_id", projectID))
		return
	}
	writeData(w, h.logger, http.StatusOK, ChatSendResponse{ChatExchange: exchange, Messages: messages})
}
