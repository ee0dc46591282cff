package repo

import (
	"errors"

	"structura/backend/app/models"

	"gorm.io/gorm"
)

type WorkspaceRepository struct{ db *gorm.DB }

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) Create(w *models.Workspace) error { return r.db.Create(w).Error }

// DefaultForUser returns the user's default workspace, or nil when there is
// none.
func (r *WorkspaceRepository) DefaultForUser(ownerID string) (*models.Workspace, error) {
	var w models.Workspace
	err := r.db.Where("owner_id = ? AND is_default = ?", ownerID, true).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}
