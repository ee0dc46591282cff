package repo

import (
	"errors"

	"structura/backend/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecordRepository struct{ db *gorm.DB }

func NewRecordRepository(db *gorm.DB) *RecordRepository { return &RecordRepository{db: db} }

func (r *RecordRepository) Create(rec *models.Record) error { return r.db.Create(rec).Error }

func (r *RecordRepository) Upsert(rec *models.Record) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"metadata": rec.Metadata,
			"tags":     rec.Tags,
		}),
	}).Create(rec).Error
}

func (r *RecordRepository) FindByID(id string) (*models.Record, error) {
	var rec models.Record
	err := r.db.Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
