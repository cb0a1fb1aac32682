package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studyrag/internal/app"
	"studyrag/internal/transport/http/middleware"
	"studyrag/internal/transport/http/response"
)

type WorkspaceHandler struct {
	workspaceService *app.WorkspaceService
}

type CreateWorkspaceRequest struct {
	Name     string `json:"name" binding:"max=128"`
	Category string `json:"category" binding:"max=64"`
}

func NewWorkspaceHandler(workspaceService *app.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	workspace, err := h.workspaceService.Create(app.CreateWorkspaceInput{
		UserID:   userID,
		Name:     req.Name,
		Category: req.Category,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create workspace failed")
		}
		return
	}

	response.OK(c, workspace)
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	workspaces, err := h.workspaceService.List(userID, c.Query("category"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list workspaces failed")
		return
	}

	response.OK(c, workspaces)
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
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

	workspace, err := h.workspaceService.Get(userID, workspaceID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrWorkspaceNotFound):
			response.Error(c, http.StatusNotFound, response.CodeWorkspaceNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get workspace failed")
		}
		return
	}

	response.OK(c, workspace)
}

func (h *WorkspaceHandler) Delete(c *gin.Context) {
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

	if err := h.workspaceService.Delete(c.Request.Context(), userID, workspaceID); err != nil {
		switch {
		case errors.Is(err, app.ErrWorkspaceNotFound):
			response.Error(c, http.StatusNotFound, response.CodeWorkspaceNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete workspace failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_workspace_id": workspaceID})
}

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	return uint(u), err
}
