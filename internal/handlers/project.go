package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/projhub/backend/internal/middleware"
	"github.com/projhub/backend/internal/models"
	"github.com/projhub/backend/internal/services"
	"github.com/projhub/backend/internal/storage"
	"github.com/projhub/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	accessService  *services.AccessService
}

func NewProjectHandler(db *gorm.DB, blobs storage.BlobStore) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db, blobs),
		accessService:  services.NewAccessService(db),
	}
}

// Create creates a new project; the caller becomes its owner
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(&req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// List returns the caller's projects
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, projects)
}

// GetByID returns a project the caller has access to
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	projectID, ok := parseID(c, "id", "invalid project id")
	if !ok {
		return
	}

	if _, err := h.accessService.RequireAccess(middleware.GetUserID(c), projectID, models.RoleParticipant); err != nil {
		response.Error(c, err)
		return
	}

	project, err := h.projectService.GetByID(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Update overwrites project name and description; any member may do this
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := parseID(c, "id", "invalid project id")
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if _, err := h.accessService.RequireAccess(middleware.GetUserID(c), projectID, models.RoleParticipant); err != nil {
		response.Error(c, err)
		return
	}

	project, err := h.projectService.Update(projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Delete removes a project and cascades to its documents and members
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := parseID(c, "id", "invalid project id")
	if !ok {
		return
	}

	if _, err := h.accessService.RequireAccess(middleware.GetUserID(c), projectID, models.RoleOwner); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), projectID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "project deleted successfully"})
}

type inviteRequest struct {
	Username string `json:"username" binding:"required"`
}

// Invite grants a registered user participant access
// POST /api/projects/:id/invite
func (h *ProjectHandler) Invite(c *gin.Context) {
	projectID, ok := parseID(c, "id", "invalid project id")
	if !ok {
		return
	}

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if _, err := h.accessService.RequireAccess(middleware.GetUserID(c), projectID, models.RoleOwner); err != nil {
		response.Error(c, err)
		return
	}

	access, err := h.projectService.Invite(projectID, req.Username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, access)
}

// parseID reads a positive integer route parameter.
func parseID(c *gin.Context, param, msg string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, msg)
		return 0, false
	}
	return uint(id), true
}
