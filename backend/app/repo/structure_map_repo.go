package repo

import (
	"structura/backend/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StructureMapRepository struct{ db *gorm.DB }

func NewStructureMapRepository(db *gorm.DB) *StructureMapRepository {
	return &StructureMapRepository{db: db}
}

func (r *StructureMapRepository) Upsert(m *models.StructureMap) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"structure_id": m.StructureID,
			"name":         m.Name,
			"description":  m.Description,
		}),
	}).Create(m).Error
}

func (r *StructureMapRepository) FindByStructure(structureID string) ([]models.StructureMap, error) {
	var out []models.StructureMap
	if err := r.db.Where("structure_id = ?", structureID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
