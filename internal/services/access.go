package services

import (
	"errors"

	"github.com/projhub/backend/internal/models"
	"github.com/projhub/backend/pkg/response"
	"gorm.io/gorm"
)

// AccessService answers "does user U hold at least role R on project P".
// It is consulted before every project and document operation. Checks
// always re-read the relation row; nothing is cached.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// RequireAccess fetches the (user, project) relation and verifies it meets
// the minimum role. Both predicates filter the query; a missing row and an
// insufficient role are reported as distinct forbidden errors.
func (s *AccessService) RequireAccess(userID, projectID uint, min models.Role) (*models.ProjectAccess, error) {
	var access models.ProjectAccess
	err := s.db.Where("user_id = ?", userID).
		Where("project_id = ?", projectID).
		First(&access).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewForbidden("no access to this project")
		}
		return nil, err
	}

	if !access.Role.Allows(min) {
		return nil, response.NewForbidden("no owner access")
	}

	return &access, nil
}

// ResolveUser maps a token identity claim to the stored user record.
func (s *AccessService) ResolveUser(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}
