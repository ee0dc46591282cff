package repo

import (
	"errors"

	"structura/backend/app/models"

	"gorm.io/gorm"
)

type BackupRepository struct{ db *gorm.DB }

func NewBackupRepository(db *gorm.DB) *BackupRepository { return &BackupRepository{db: db} }

func (r *BackupRepository) Create(b *models.Backup) error { return r.db.Create(b).Error }

// FindByID returns nil without error when the backup does not exist.
func (r *BackupRepository) FindByID(id string) (*models.Backup, error) {
	var b models.Backup
	err := r.db.Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindAll lists backups, newest first. A non-empty userID filters by owner.
func (r *BackupRepository) FindAll(userID string) ([]models.Backup, error) {
	q := r.db.Order("created_at DESC")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var out []models.Backup
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BackupRepository) Delete(id string) error {
	return r.db.Delete(&models.Backup{}, "id = ?", id).Error
}
