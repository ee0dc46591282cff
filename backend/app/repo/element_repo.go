package repo

import (
	"structura/backend/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ElementRepository struct{ db *gorm.DB }

func NewElementRepository(db *gorm.DB) *ElementRepository { return &ElementRepository{db: db} }

func (r *ElementRepository) Create(e *models.Element) error { return r.db.Create(e).Error }

func (r *ElementRepository) Upsert(e *models.Element) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":            e.Name,
			"structure_id":    e.StructureID,
			"parent_id":       e.ParentID,
			"record_id":       e.RecordID,
			"element_link_id": e.ElementLinkID,
			"order_index":     e.OrderIndex,
			// created_at stays on update
		}),
	}).Create(e).Error
}

// SetLink patches only the link edge; used by the deferred second
// reconciliation pass once every node exists.
func (r *ElementRepository) SetLink(id string, linkID *string) error {
	return r.db.Model(&models.Element{}).Where("id = ?", id).Update("element_link_id", linkID).Error
}

// SetParent patches only the tree edge; full-account restores defer parent
// wiring the same way link wiring is deferred.
func (r *ElementRepository) SetParent(id string, parentID *string) error {
	return r.db.Model(&models.Element{}).Where("id = ?", id).Update("parent_id", parentID).Error
}

func (r *ElementRepository) FindByStructure(structureID string) ([]models.Element, error) {
	var out []models.Element
	if err := r.db.Where("structure_id = ?", structureID).Order("order_index ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
