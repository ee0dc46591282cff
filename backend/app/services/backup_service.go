package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"structura/backend/app/archive"
	"structura/backend/app/codec"
	cryptoutil "structura/backend/app/crypto"
	"structura/backend/app/dto"
	"structura/backend/app/models"
	"structura/backend/app/repo"
	"structura/backend/config"
	"structura/backend/global"

	"github.com/google/uuid"
)

// BackupService builds encrypted structure archives and keeps the backup
// registry. The pipeline is: flatten -> encode -> encrypt -> zip -> store.
type BackupService struct {
	cfg        config.Backup
	cipher     *cryptoutil.Cipher
	users      *repo.UserRepository
	structures *repo.StructureRepository
	backups    *repo.BackupRepository
}

func NewBackupService(cfg config.Backup, cipher *cryptoutil.Cipher, users *repo.UserRepository, structures *repo.StructureRepository, backups *repo.BackupRepository) (*BackupService, error) {
	if cfg.StoragePath == "" {
		cfg.StoragePath = "public/backups"
	}
	if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	return &BackupService{
		cfg:        cfg,
		cipher:     cipher,
		users:      users,
		structures: structures,
		backups:    backups,
	}, nil
}

// CreateBackup exports the user's structures into an encrypted zip archive.
// An empty structureID exports every structure the user owns.
func (s *BackupService) CreateBackup(userID, structureID string) (*dto.BackupCreatedResponse, error) {
	structures, err := s.loadStructures(userID, structureID)
	if err != nil {
		return nil, err
	}

	payload, err := codec.EncodeWorkbook(flattenSheets(structures))
	if err != nil {
		global.Logger.Error().Err(err).Str("user", userID).Msg("backup encode failed")
		return nil, fmt.Errorf("%w: %v", ErrBackupCreation, err)
	}

	title := "Structures backup"
	if structureID != "" && len(structures) > 0 {
		title = fmt.Sprintf("Backup of %s", structures[0].Name)
	}
	return s.finishBackup(userID, title, payload)
}

// CreateFullUserBackup exports the entire account as one nested JSON document
// instead of tabular sheets; the restore side accepts either form.
func (s *BackupService) CreateFullUserBackup(userID string) (*dto.BackupCreatedResponse, error) {
	structures, err := s.loadStructures(userID, "")
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(buildFullDocument(structures))
	if err != nil {
		global.Logger.Error().Err(err).Str("user", userID).Msg("full backup encode failed")
		return nil, fmt.Errorf("%w: %v", ErrBackupCreation, err)
	}
	return s.finishBackup(userID, "Full account backup", payload)
}

func (s *BackupService) loadStructures(userID, structureID string) ([]models.Structure, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	structures, err := s.structures.FindByOwner(userID, structureID)
	if err != nil {
		return nil, err
	}
	if structureID != "" && len(structures) == 0 {
		return nil, ErrStructureNotFound
	}
	return structures, nil
}

// finishBackup encrypts the payload, wraps it into a zip in the storage dir,
// persists the registry row and returns the download URL.
func (s *BackupService) finishBackup(userID, title string, payload []byte) (*dto.BackupCreatedResponse, error) {
	encrypted, err := s.cipher.Encrypt(payload)
	if err != nil {
		global.Logger.Error().Err(err).Str("user", userID).Msg("backup encryption failed")
		return nil, fmt.Errorf("%w: %v", ErrBackupCreation, err)
	}

	// The encrypted payload goes through a per-call temp file so concurrent
	// exports never collide.
	entryName := fmt.Sprintf("%s.enc", uuid.NewString())
	tempPath := filepath.Join(os.TempDir(), entryName)
	if err := os.WriteFile(tempPath, encrypted, 0o600); err != nil {
		global.Logger.Error().Err(err).Str("path", tempPath).Msg("backup temp write failed")
		return nil, fmt.Errorf("%w: %v", ErrBackupCreation, err)
	}
	defer os.Remove(tempPath)

	tempBody, err := os.ReadFile(tempPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackupCreation, err)
	}
	zipBytes, err := archive.Pack([]archive.Entry{{Name: entryName, Data: tempBody}})
	if err != nil {
		global.Logger.Error().Err(err).Msg("backup packaging failed")
		return nil, fmt.Errorf("%w: %v", ErrBackupCreation, err)
	}

	filename := fmt.Sprintf("backup-%s.zip", uuid.NewString())
	storedPath := filepath.Join(s.cfg.StoragePath, filename)
	if err := os.WriteFile(storedPath, zipBytes, 0o644); err != nil {
		global.Logger.Error().Err(err).Str("path", storedPath).Msg("backup store failed")
		return nil, fmt.Errorf("%w: %v", ErrBackupCreation, err)
	}

	fileURL := fmt.Sprintf("%s://%s/public/backups/%s", s.cfg.Protocol, s.cfg.BaseURL, filename)
	backup := &models.Backup{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		BackupData: models.BackupData{FilePath: storedPath},
		FileURL:    fileURL,
	}
	if err := s.backups.Create(backup); err != nil {
		// The archive already sits on disk at this point; the registry row is
		// the source of truth, so surface the failure.
		global.Logger.Error().Err(err).Str("path", storedPath).Msg("backup registry insert failed")
		return nil, fmt.Errorf("%w: %v", ErrBackupCreation, err)
	}

	global.Logger.Info().Str("user", userID).Str("backup", backup.ID).Str("url", fileURL).Msg("backup created")
	return &dto.BackupCreatedResponse{Message: "Backup created successfully", FileURL: fileURL}, nil
}

// GetBackup looks up one registry row.
func (s *BackupService) GetBackup(id string) (*models.Backup, error) {
	b, err := s.backups.FindByID(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBackupNotFound
	}
	return b, nil
}

// GetAllBackups lists registry rows; empty userID lists every user's.
func (s *BackupService) GetAllBackups(userID string) ([]models.Backup, error) {
	return s.backups.FindAll(userID)
}

func (s *BackupService) GetBackupsByUserID(userID string) ([]models.Backup, error) {
	return s.backups.FindAll(userID)
}

// DeleteBackup removes the registry row and the archive file, tolerating a
// file that is already gone.
func (s *BackupService) DeleteBackup(id string) error {
	b, err := s.backups.FindByID(id)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrBackupNotFound
	}
	if b.BackupData.FilePath != "" {
		if err := os.Remove(b.BackupData.FilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove archive: %w", err)
		}
	}
	return s.backups.Delete(id)
}

func flattenSheets(structures []models.Structure) map[string][]codec.Row {
	sheets := map[string][]codec.Row{
		codec.SheetStructures:    {},
		codec.SheetElements:      {},
		codec.SheetRecords:       {},
		codec.SheetStructureMaps: {},
	}
	for _, st := range structures {
		sheets[codec.SheetStructures] = append(sheets[codec.SheetStructures], codec.Row{
			"id":             st.ID,
			"name":           st.Name,
			"title":          st.Title,
			"description":    st.Description,
			"ownerId":        st.OwnerID,
			"visibility":     st.Visibility,
			"createdAt":      formatTime(st.CreatedAt),
			"updatedAt":      formatTime(st.UpdatedAt),
			"imageUrl":       st.ImageURL,
			"markmapShowWbs": strconv.FormatBool(st.MarkmapShowWbs),
		})
		for _, el := range st.Elements {
			sheets[codec.SheetElements] = append(sheets[codec.SheetElements], codec.Row{
				"id":            el.ID,
				"name":          el.Name,
				"structureId":   el.StructureID,
				"parentId":      deref(el.ParentID),
				"recordId":      deref(el.RecordID),
				"elementLinkId": deref(el.ElementLinkID),
				"orderIndex":    strconv.Itoa(el.OrderIndex),
				"createdAt":     formatTime(el.CreatedAt),
				"updatedAt":     formatTime(el.UpdatedAt),
			})
			if el.Record != nil {
				sheets[codec.SheetRecords] = append(sheets[codec.SheetRecords], codec.Row{
					"id":        el.Record.ID,
					"metadata":  el.Record.Metadata,
					"tags":      el.Record.Tags,
					"createdAt": formatTime(el.Record.CreatedAt),
					"updatedAt": formatTime(el.Record.UpdatedAt),
				})
			}
		}
		for _, m := range st.Maps {
			sheets[codec.SheetStructureMaps] = append(sheets[codec.SheetStructureMaps], codec.Row{
				"id":          m.ID,
				"structureId": m.StructureID,
				"name":        m.Name,
				"description": m.Description,
				"createdAt":   formatTime(m.CreatedAt),
				"updatedAt":   formatTime(m.UpdatedAt),
			})
		}
	}
	return sheets
}

func buildFullDocument(structures []models.Structure) dto.FullBackupDocument {
	doc := dto.FullBackupDocument{Structures: make([]dto.FullStructure, 0, len(structures))}
	for _, st := range structures {
		full := dto.FullStructure{
			ID:             st.ID,
			Name:           st.Name,
			Title:          st.Title,
			Description:    st.Description,
			OwnerID:        st.OwnerID,
			Visibility:     st.Visibility,
			ImageURL:       st.ImageURL,
			MarkmapShowWbs: st.MarkmapShowWbs,
			CreatedAt:      st.CreatedAt,
			UpdatedAt:      st.UpdatedAt,
		}
		for _, el := range st.Elements {
			fe := dto.FullElement{
				ID:            el.ID,
				Name:          el.Name,
				ParentID:      el.ParentID,
				ElementLinkID: el.ElementLinkID,
				OrderIndex:    el.OrderIndex,
			}
			if el.Record != nil {
				fe.Record = &dto.FullRecord{ID: el.Record.ID, Metadata: el.Record.Metadata, Tags: el.Record.Tags}
			}
			full.Elements = append(full.Elements, fe)
		}
		for _, m := range st.Maps {
			full.StructureMaps = append(full.StructureMaps, dto.FullStructureMap{ID: m.ID, Name: m.Name, Description: m.Description})
		}
		doc.Structures = append(doc.Structures, full)
	}
	return doc
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
