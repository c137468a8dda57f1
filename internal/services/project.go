package services

import (
	"context"
	"errors"
	"strings"

	"github.com/projhub/backend/internal/models"
	"github.com/projhub/backend/internal/storage"
	"github.com/projhub/backend/pkg/logger"
	"github.com/projhub/backend/pkg/response"
	"gorm.io/gorm"
)

// ProjectService maintains projects, their member relations and the
// document links scoped to them.
type ProjectService struct {
	db    *gorm.DB
	blobs storage.BlobStore
}

func NewProjectService(db *gorm.DB, blobs storage.BlobStore) *ProjectService {
	return &ProjectService{db: db, blobs: blobs}
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Create inserts the project and its owner access row in one transaction.
func (s *ProjectService) Create(req *CreateProjectRequest, ownerID uint) (*models.Project, error) {
	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   ownerID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return translateDuplicate(err, "project name already exists")
		}
		access := models.ProjectAccess{
			ProjectID: project.ID,
			UserID:    ownerID,
			Role:      models.RoleOwner,
		}
		return tx.Create(&access).Error
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// ListForUser returns the projects the user holds any access row for,
// in creation order.
func (s *ProjectService) ListForUser(userID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.
		Joins("JOIN project_accesses ON project_accesses.project_id = projects.id").
		Where("project_accesses.user_id = ?", userID).
		Order("projects.id ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// GetByID returns a project by ID. Access must already be verified.
func (s *ProjectService) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

// Update overwrites the project name and description. A name colliding
// with another project surfaces as a conflict through the unique index.
func (s *ProjectService) Update(id uint, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
	}
	if err := s.db.Model(project).Updates(updates).Error; err != nil {
		return nil, translateDuplicate(err, "project name already exists")
	}

	return project, nil
}

// Delete removes the project and everything exclusively reachable through
// it: document links, document rows, access rows, and the stored blobs.
// Relational rows go first, in one transaction; blobs are deleted after
// commit, so a crash leaves at most orphaned blobs rather than dangling
// references. Blob deletion is idempotent and its failure is surfaced,
// never swallowed.
func (s *ProjectService) Delete(ctx context.Context, id uint) error {
	var docs []models.Document
	err := s.db.
		Joins("JOIN project_documents ON project_documents.document_id = documents.id").
		Where("project_documents.project_id = ?", id).
		Find(&docs).Error
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectDocument{}).Error; err != nil {
			return err
		}
		for _, doc := range docs {
			if err := tx.Delete(&models.Document{}, doc.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectAccess{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, id).Error
	})
	if err != nil {
		return err
	}

	var failed []string
	for _, doc := range docs {
		if err := s.blobs.Delete(ctx, doc.BlobKey); err != nil {
			logger.Error().Err(err).Str("blob_key", doc.BlobKey).Uint("project_id", id).
				Msg("cascade delete: blob removal failed")
			failed = append(failed, doc.Name)
		}
	}
	if len(failed) > 0 {
		return response.NewServerError("project deleted but some document blobs could not be removed: " + strings.Join(failed, ", "))
	}

	return nil
}

// Invite grants participant access to a registered user. Only one access
// row may exist per (user, project) pair.
func (s *ProjectService) Invite(projectID uint, username string) (*models.ProjectAccess, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	var count int64
	err := s.db.Model(&models.ProjectAccess{}).
		Where("user_id = ?", user.ID).
		Where("project_id = ?", projectID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("user already has access to this project")
	}

	access := models.ProjectAccess{
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      models.RoleParticipant,
	}
	if err := s.db.Create(&access).Error; err != nil {
		return nil, translateDuplicate(err, "user already has access to this project")
	}

	return &access, nil
}

// translateDuplicate maps a unique-constraint violation to a conflict
// error and passes everything else through.
func translateDuplicate(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(err.Error()), "unique") ||
		strings.Contains(strings.ToLower(err.Error()), "duplicate") {
		return response.NewConflict(msg)
	}
	return err
}
