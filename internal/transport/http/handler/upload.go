package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"studyrag/internal/app"
	"studyrag/internal/extract"
	"studyrag/internal/transport/http/response"
)

const maxUploadSize = 20 << 20 // 20 MB

type UploadHandler struct {
	ingestService *app.IngestService
}

func NewUploadHandler(ingestService *app.IngestService) *UploadHandler {
	return &UploadHandler{ingestService: ingestService}
}

// Upload accepts a multipart form with "file" plus optional "category" and
// "title", extracts text from the document and ingests it into the
// workspace's index.
func (h *UploadHandler) Upload(c *gin.Context) {
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

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 20MB)")
		return
	}

	extractor, err := extract.ForFile(file.Filename)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "unsupported file type: "+filepath.Ext(file.Filename))
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	extracted, err := extractor.Extract(f, file.Filename)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to extract text: "+err.Error())
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = extracted.Title
	}

	result, err := h.ingestService.Ingest(c.Request.Context(), app.IngestInput{
		UserID:      userID,
		WorkspaceID: workspaceID,
		FileName:    file.Filename,
		SourcePath:  file.Filename,
		Category:    c.PostForm("category"),
		Text:        extracted.Text,
		Title:       title,
		PageCount:   extracted.PageCount,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrNoExtractableText):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrWorkspaceNotFound):
			response.Error(c, http.StatusNotFound, response.CodeWorkspaceNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed: "+err.Error())
		}
		return
	}

	response.OK(c, result)
}

func (h *UploadHandler) List(c *gin.Context) {
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

	uploads, err := h.ingestService.ListUploads(userID, workspaceID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrWorkspaceNotFound):
			response.Error(c, http.StatusNotFound, response.CodeWorkspaceNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list uploads failed")
		}
		return
	}

	response.OK(c, uploads)
}

func parseUintQuery(c *gin.Context, key string) uint {
	s := c.Query(key)
	if s == "" {
		return 0
	}
	u, _ := strconv.ParseUint(s, 10, 64)
	return uint(u)
}
