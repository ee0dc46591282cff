package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"structura/backend/app/models"
	"structura/backend/app/repo"
	"structura/backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBackupService(t *testing.T, db *gorm.DB) (*BackupService, string) {
	t.Helper()
	storageDir := t.TempDir()
	cfg := config.Backup{StoragePath: storageDir, Protocol: "http", BaseURL: "127.0.0.1:9200"}
	svc, err := NewBackupService(cfg, newTestCipher(t),
		repo.NewUserRepository(db), repo.NewStructureRepository(db), repo.NewBackupRepository(db))
	require.NoError(t, err)
	return svc, storageDir
}

func seedStructure(t *testing.T, db *gorm.DB, ownerID, structureID string) {
	t.Helper()
	require.NoError(t, repo.NewRecordRepository(db).Create(&models.Record{ID: structureID + "-rec", Metadata: `{"k":"v"}`, Tags: `["x"]`}))
	recID := structureID + "-rec"
	require.NoError(t, repo.NewStructureRepository(db).Create(&models.Structure{
		ID: structureID, Name: "plan", Title: "Plan", OwnerID: ownerID,
		Visibility: "private", WorkspaceID: ownerID + "-ws",
	}))
	elements := repo.NewElementRepository(db)
	require.NoError(t, elements.Create(&models.Element{ID: structureID + "-e1", Name: "root", StructureID: structureID, OrderIndex: 0}))
	parent := structureID + "-e1"
	require.NoError(t, elements.Create(&models.Element{ID: structureID + "-e2", Name: "child", StructureID: structureID, ParentID: &parent, RecordID: &recID, OrderIndex: 1}))
}

func TestCreateBackupWritesArchiveAndRegistryRow(t *testing.T) {
	db := newTestDB(t)
	svc, storageDir := newBackupService(t, db)
	seedUser(t, db, "alice")
	seedStructure(t, db, "alice", "st-1")

	resp, err := svc.CreateBackup("alice", "st-1")
	require.NoError(t, err)
	assert.Contains(t, resp.FileURL, "http://127.0.0.1:9200/public/backups/backup-")

	rows, err := svc.GetBackupsByUserID("alice")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Backup of plan", rows[0].Title)
	assert.Equal(t, storageDir, filepath.Dir(rows[0].BackupData.FilePath))

	// The stored archive is a zip wrapping the encrypted payload, never the
	// plaintext workbook.
	data, err := os.ReadFile(rows[0].BackupData.FilePath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "PK"))
}

func TestCreateBackupUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBackupService(t, db)

	_, err := svc.CreateBackup("ghost", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateBackupUnknownStructure(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBackupService(t, db)
	seedUser(t, db, "alice")

	_, err := svc.CreateBackup("alice", "missing")
	assert.ErrorIs(t, err, ErrStructureNotFound)
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBackupService(t, db)
	seedUser(t, db, "alice")
	seedStructure(t, db, "alice", "st-1")

	_, err := svc.CreateBackup("alice", "st-1")
	require.NoError(t, err)
	rows, err := svc.GetBackupsByUserID("alice")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	archiveBytes, err := os.ReadFile(rows[0].BackupData.FilePath)
	require.NoError(t, err)

	// Wipe the structure, then replay the archive into the same slot.
	require.NoError(t, repo.NewStructureRepository(db).Delete("st-1"))
	require.NoError(t, db.Where("structure_id = ?", "st-1").Delete(&models.Element{}).Error)

	restore := NewRestoreService(db, nil, newTestCipher(t))
	_, err = restore.RestoreBackup(archiveBytes, "st-1", "alice")
	require.NoError(t, err)

	elements, err := repo.NewElementRepository(db).FindByStructure("st-1")
	require.NoError(t, err)
	require.Len(t, elements, 2)
	for _, el := range elements {
		if el.ID == "st-1-e2" {
			require.NotNil(t, el.ParentID)
			assert.Equal(t, "st-1-e1", *el.ParentID)
		}
	}
}

func TestFullUserBackupRestoreRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBackupService(t, db)
	seedUser(t, db, "alice")
	seedStructure(t, db, "alice", "st-1")
	seedStructure(t, db, "alice", "st-2")

	resp, err := svc.CreateFullUserBackup("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.FileURL)

	rows, err := svc.GetBackupsByUserID("alice")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Full account backup", rows[0].Title)
	archiveBytes, err := os.ReadFile(rows[0].BackupData.FilePath)
	require.NoError(t, err)

	restore := NewRestoreService(db, nil, newTestCipher(t))
	_, err = restore.RestoreFullBackup(archiveBytes, "alice")
	require.NoError(t, err)

	for _, id := range []string{"st-1", "st-2"} {
		st, err := repo.NewStructureRepository(db).FindByID(id)
		require.NoError(t, err)
		require.NotNil(t, st)
		assert.Equal(t, "alice", st.OwnerID)
	}
}

func TestDeleteBackupRemovesRowAndFile(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBackupService(t, db)
	seedUser(t, db, "alice")
	seedStructure(t, db, "alice", "st-1")

	_, err := svc.CreateBackup("alice", "st-1")
	require.NoError(t, err)
	rows, err := svc.GetBackupsByUserID("alice")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, svc.DeleteBackup(rows[0].ID))
	_, err = svc.GetBackup(rows[0].ID)
	assert.ErrorIs(t, err, ErrBackupNotFound)
	_, statErr := os.Stat(rows[0].BackupData.FilePath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDeleteBackupToleratesMissingFile(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBackupService(t, db)
	seedUser(t, db, "alice")
	seedStructure(t, db, "alice", "st-1")

	_, err := svc.CreateBackup("alice", "st-1")
	require.NoError(t, err)
	rows, err := svc.GetBackupsByUserID("alice")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, os.Remove(rows[0].BackupData.FilePath))
	require.NoError(t, svc.DeleteBackup(rows[0].ID))
}

func TestDeleteBackupUnknownID(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newBackupService(t, db)

	err := svc.DeleteBackup("nope")
	assert.ErrorIs(t, err, ErrBackupNotFound)
}
