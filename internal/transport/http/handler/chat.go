package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"studyrag/internal/app"
	"studyrag/internal/rag"
	"studyrag/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type SendMessageRequest struct {
	WorkspaceID uint   `json:"workspace_id" binding:"required,gt=0"`
	Content     string `json:"content"`
	Mode        string `json:"mode"`
}

type QuickActionRequest struct {
	Topic string `json:"topic" binding:"max=256"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	mode, err := rag.ParseMode(req.Mode)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		UserID:      userID,
		WorkspaceID: req.WorkspaceID,
		Content:     req.Content,
		Mode:        mode,
	})
	if err != nil {
		writeChatError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) StreamMessage(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	mode, err := rag.ParseMode(req.Mode)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	result, err := h.chatService.StreamMessage(c.Request.Context(), app.SendMessageInput{
		UserID:      userID,
		WorkspaceID: req.WorkspaceID,
		Content:     req.Content,
		Mode:        mode,
	}, func(chunk string) error {
		if _, writeErr := c.Writer.Write([]byte("data: " + sanitizeSSE(chunk) + "\n\n")); writeErr != nil {
			return writeErr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if _, writeErr := c.Writer.Write([]byte(fmt.Sprintf("event: error\ndata: %s\n\n", sanitizeSSE(err.Error())))); writeErr == nil {
			flusher.Flush()
		}
		return
	}

	if _, writeErr := c.Writer.Write([]byte("event: done\ndata: " + sanitizeSSE(result.Answer) + "\n\n")); writeErr == nil {
		flusher.Flush()
	}
}

// QuickAction runs a one-shot study mode over the workspace: a preset
// question is asked in the mode the action maps to, with an optional topic
// narrowing the focus.
func (h *ChatHandler) QuickAction(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	workspaceID, err := parseUintParam(c, "id")
	if err != nil || workspaceID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid workspace id")
		return
	}

	mode, ok := actionMode(c.Param("action"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "unknown quick action")
		return
	}

	var req QuickActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
			return
		}
	}

	content := ""
	if topic := strings.TrimSpace(req.Topic); topic != "" {
		content = "Focus on: " + topic
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Content:     content,
		Mode:        mode,
	})
	if err != nil {
		writeChatError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	workspaceID := parseUintQuery(c, "workspace_id")
	if workspaceID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid workspace_id")
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			limit = parsed
		}
	}

	history, err := h.chatService.GetHistory(c.Request.Context(), userID, workspaceID, limit)
	if err != nil {
		writeChatError(c, err)
		return
	}

	response.OK(c, history)
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrWorkspaceNotFound):
		response.Error(c, http.StatusNotFound, response.CodeWorkspaceNotFound, err.Error())
	case errors.Is(err, app.ErrMessageEnqueue):
		response.Error(c, http.StatusServiceUnavailable, response.CodeInternalServer, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "chat request failed")
	}
}

func actionMode(action string) (rag.Mode, bool) {
	switch action {
	case "explain-simple":
		return rag.ModeTeacher, true
	case "important-points":
		return rag.ModePoints, true
	case "revise-fast":
		return rag.ModeSummary, true
	case "ask-questions":
		return rag.ModeExam, true
	case "flashcards":
		return rag.ModeFlashcards, true
	default:
		return "", false
	}
}

func sanitizeSSE(input string) string {
	replaced := strings.ReplaceAll(input, "\r\n", "\\n")
	replaced = strings.ReplaceAll(replaced, "\n", "\\n")
	return replaced
}
