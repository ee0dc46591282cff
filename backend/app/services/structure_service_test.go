package services

import (
	"testing"

	"structura/backend/app/dto"
	"structura/backend/app/models"
	"structura/backend/app/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newStructureService(db *gorm.DB) *StructureService {
	return NewStructureService(
		repo.NewStructureRepository(db),
		repo.NewElementRepository(db),
		repo.NewRecordRepository(db),
		repo.NewWorkspaceRepository(db),
	)
}

func TestCreateStructureLandsInDefaultWorkspace(t *testing.T) {
	db := newTestDB(t)
	svc := newStructureService(db)
	seedUser(t, db, "alice")

	st, err := svc.CreateStructure("alice", dto.CreateStructureRequest{Name: "plan", Title: "Plan"})
	require.NoError(t, err)
	assert.Equal(t, "alice-ws", st.WorkspaceID)
	assert.Equal(t, "private", st.Visibility)

	_, err = svc.CreateStructure("nobody", dto.CreateStructureRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestAddElementWithRecord(t *testing.T) {
	db := newTestDB(t)
	svc := newStructureService(db)
	seedUser(t, db, "alice")

	st, err := svc.CreateStructure("alice", dto.CreateStructureRequest{Name: "plan"})
	require.NoError(t, err)

	el, err := svc.AddElement("alice", dto.CreateElementRequest{
		StructureID: st.ID,
		Name:        "node",
		Metadata:    `{"k":1}`,
		Tags:        "broken json",
	})
	require.NoError(t, err)
	require.NotNil(t, el.RecordID)

	rec, err := repo.NewRecordRepository(db).FindByID(*el.RecordID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.JSONEq(t, `{"k":1}`, rec.Metadata)
	assert.Equal(t, "[]", rec.Tags)
}

func TestAddElementEnforcesOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := newStructureService(db)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")

	st, err := svc.CreateStructure("alice", dto.CreateStructureRequest{Name: "plan"})
	require.NoError(t, err)

	_, err = svc.AddElement("bob", dto.CreateElementRequest{StructureID: st.ID, Name: "sneaky"})
	assert.ErrorIs(t, err, ErrStructureNotFound)
}

func TestDeleteStructureCascades(t *testing.T) {
	db := newTestDB(t)
	svc := newStructureService(db)
	seedUser(t, db, "alice")
	seedStructure(t, db, "alice", "st-1")

	require.NoError(t, svc.DeleteStructure("alice", "st-1"))

	st, err := repo.NewStructureRepository(db).FindByID("st-1")
	require.NoError(t, err)
	assert.Nil(t, st)
	var count int64
	require.NoError(t, db.Model(&models.Element{}).Where("structure_id = ?", "st-1").Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, svc.DeleteStructure("alice", "st-1"), ErrStructureNotFound)
}

func TestListStructuresCountsElements(t *testing.T) {
	db := newTestDB(t)
	svc := newStructureService(db)
	seedUser(t, db, "alice")
	seedStructure(t, db, "alice", "st-1")

	out, err := svc.ListStructures("alice")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].ElementCount)
}
