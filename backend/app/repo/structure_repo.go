package repo

import (
	"errors"

	"structura/backend/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StructureRepository struct{ db *gorm.DB }

func NewStructureRepository(db *gorm.DB) *StructureRepository {
	return &StructureRepository{db: db}
}

func (r *StructureRepository) Create(s *models.Structure) error { return r.db.Create(s).Error }

// FindByOwner loads the owner's structures with elements, their records and
// the structure maps eagerly attached. A non-empty structureID narrows the
// result to that one structure.
func (r *StructureRepository) FindByOwner(ownerID, structureID string) ([]models.Structure, error) {
	q := r.db.
		Preload("Elements", func(db *gorm.DB) *gorm.DB { return db.Order("elements.order_index ASC") }).
		Preload("Elements.Record").
		Preload("Maps").
		Where("owner_id = ?", ownerID)
	if structureID != "" {
		q = q.Where("id = ?", structureID)
	}
	var out []models.Structure
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StructureRepository) FindByID(id string) (*models.Structure, error) {
	var s models.Structure
	err := r.db.Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StructureRepository) Upsert(s *models.Structure) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":             s.Name,
			"title":            s.Title,
			"description":      s.Description,
			"owner_id":         s.OwnerID,
			"visibility":       s.Visibility,
			"workspace_id":     s.WorkspaceID,
			"image_url":        s.ImageURL,
			"markmap_show_wbs": s.MarkmapShowWbs,
			// created_at stays on update
		}),
	}).Create(s).Error
}

func (r *StructureRepository) Delete(id string) error {
	return r.db.Select(clause.Associations).Delete(&models.Structure{ID: id}).Error
}
