package services

import (
	"path/filepath"
	"sync"

	"structura/backend/app/repo"
	"structura/backend/global"

	"github.com/fsnotify/fsnotify"
)

// StorageWatcher keeps the backup registry consistent with the archive
// directory: when an archive file disappears from disk, the matching registry
// row is dropped so stale download URLs are never served.
type StorageWatcher struct {
	watcher *fsnotify.Watcher
	backups *repo.BackupRepository

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewStorageWatcher(storagePath string, backups *repo.BackupRepository) (*StorageWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(storagePath)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	return &StorageWatcher{watcher: watcher, backups: backups, stop: make(chan struct{})}, nil
}

func (w *StorageWatcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

func (w *StorageWatcher) Stop() {
	w.once.Do(func() {
		close(w.stop)
		w.watcher.Close()
	})
	w.wg.Wait()
}

func (w *StorageWatcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.reconcile(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			global.Logger.Warn().Err(err).Msg("backup storage watcher error")
		}
	}
}

// reconcile drops registry rows whose archive vanished at the given path.
func (w *StorageWatcher) reconcile(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	backups, err := w.backups.FindAll("")
	if err != nil {
		global.Logger.Warn().Err(err).Msg("storage watcher registry scan failed")
		return
	}
	for _, b := range backups {
		stored, err := filepath.Abs(b.BackupData.FilePath)
		if err != nil || stored != abs {
			continue
		}
		if err := w.backups.Delete(b.ID); err != nil {
			global.Logger.Warn().Err(err).Str("backup", b.ID).Msg("orphaned backup row cleanup failed")
			continue
		}
		global.Logger.Info().Str("backup", b.ID).Str("path", abs).Msg("archive removed on disk, registry row dropped")
	}
}
