package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"structura/backend/app/models"
	"structura/backend/app/repo"

	"github.com/stretchr/testify/require"
)

func TestStorageWatcherDropsRowWhenArchiveVanishes(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()
	backups := repo.NewBackupRepository(db)

	path := filepath.Join(dir, "backup-x.zip")
	require.NoError(t, os.WriteFile(path, []byte("PK"), 0o644))
	require.NoError(t, backups.Create(&models.Backup{
		ID: "b1", UserID: "alice", Title: "t",
		BackupData: models.BackupData{FilePath: path},
	}))

	w, err := NewStorageWatcher(dir, backups)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		b, err := backups.FindByID("b1")
		return err == nil && b == nil
	}, 5*time.Second, 50*time.Millisecond)
}

func TestStorageWatcherIgnoresUnrelatedFiles(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()
	backups := repo.NewBackupRepository(db)

	require.NoError(t, backups.Create(&models.Backup{
		ID: "b1", UserID: "alice", Title: "t",
		BackupData: models.BackupData{FilePath: filepath.Join(dir, "backup-kept.zip")},
	}))

	other := filepath.Join(dir, "scratch.tmp")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	w, err := NewStorageWatcher(dir, backups)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.Remove(other))

	time.Sleep(300 * time.Millisecond)
	b, err := backups.FindByID("b1")
	require.NoError(t, err)
	require.NotNil(t, b)
}
