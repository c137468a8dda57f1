package handlers

import (
	"mime"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/projhub/backend/internal/middleware"
	"github.com/projhub/backend/internal/models"
	"github.com/projhub/backend/internal/services"
	"github.com/projhub/backend/internal/storage"
	"github.com/projhub/backend/pkg/response"
	"gorm.io/gorm"
)

type DocumentHandler struct {
	documentService *services.DocumentService
	accessService   *services.AccessService
}

func NewDocumentHandler(db *gorm.DB, blobs storage.BlobStore) *DocumentHandler {
	return &DocumentHandler{
		documentService: services.NewDocumentService(db, blobs),
		accessService:   services.NewAccessService(db),
	}
}

// List returns the documents of a project
// GET /api/projects/:id/documents
func (h *DocumentHandler) List(c *gin.Context) {
	projectID, ok := parseID(c, "id", "invalid project id")
	if !ok {
		return
	}

	if _, err := h.accessService.RequireAccess(middleware.GetUserID(c), projectID, models.RoleParticipant); err != nil {
		response.Error(c, err)
		return
	}

	docs, err := h.documentService.List(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, docs)
}

// Upload stores a file into a project; any member may upload
// POST /api/projects/:id/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	projectID, ok := parseID(c, "id", "invalid project id")
	if !ok {
		return
	}

	if _, err := h.accessService.RequireAccess(middleware.GetUserID(c), projectID, models.RoleParticipant); err != nil {
		response.Error(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(
		c.Request.Context(),
		projectID,
		filepath.Base(fileHeader.Filename),
		file,
		fileHeader.Size,
		contentTypeFor(fileHeader.Filename),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, doc)
}

// Download streams a document's content as an attachment
// GET /api/documents/:id/download
func (h *DocumentHandler) Download(c *gin.Context) {
	documentID, ok := parseID(c, "id", "invalid document id")
	if !ok {
		return
	}

	projectID, err := h.documentService.ProjectFor(documentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.accessService.RequireAccess(middleware.GetUserID(c), projectID, models.RoleParticipant); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.documentService.Download(c.Request.Context(), documentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.Object.Reader.Close()

	c.DataFromReader(
		200,
		result.Object.Size,
		result.Object.ContentType,
		result.Object.Reader,
		map[string]string{
			"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": result.Document.Name}),
		},
	)
}

// Update replaces a document's content; owner only
// PUT /api/documents/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	documentID, ok := parseID(c, "id", "invalid document id")
	if !ok {
		return
	}

	projectID, err := h.documentService.ProjectFor(documentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.accessService.RequireAccess(middleware.GetUserID(c), projectID, models.RoleOwner); err != nil {
		response.Error(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	doc, err := h.documentService.Replace(
		c.Request.Context(),
		documentID,
		filepath.Base(fileHeader.Filename),
		file,
		fileHeader.Size,
		contentTypeFor(fileHeader.Filename),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, doc)
}

// Delete removes a document, its link and its blob; owner only
// DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID, ok := parseID(c, "id", "invalid document id")
	if !ok {
		return
	}

	projectID, err := h.documentService.ProjectFor(documentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.accessService.RequireAccess(middleware.GetUserID(c), projectID, models.RoleOwner); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), documentID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "document deleted successfully"})
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
