package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"structura/backend/app/archive"
	cryptoutil "structura/backend/app/crypto"
	"structura/backend/app/dto"
	"structura/backend/app/middleware"
	"structura/backend/app/services"
	"structura/backend/global"
)

const maxArchiveUpload = 64 << 20 // 64MB

type BackupController struct {
	Backups  *services.BackupService
	Restores *services.RestoreService
}

func NewBackupController(backups *services.BackupService, restores *services.RestoreService) *BackupController {
	return &BackupController{Backups: backups, Restores: restores}
}

func (c *BackupController) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var req dto.CreateBackupRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	resp, err := c.Backups.CreateBackup(claims.UserID, req.StructureID)
	if err != nil {
		writeBackupError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (c *BackupController) CreateFull(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	resp, err := c.Backups.CreateFullUserBackup(claims.UserID)
	if err != nil {
		writeBackupError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Restore accepts a multipart upload with the archive under "archive" and the
// target structure id under "structure_id".
func (c *BackupController) Restore(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	structureID := r.FormValue("structure_id")
	if structureID == "" {
		writeJSONError(w, http.StatusBadRequest, "missing structure_id")
		return
	}
	body, ok := readArchiveUpload(w, r)
	if !ok {
		return
	}
	resp, err := c.Restores.RestoreBackup(body, structureID, claims.UserID)
	if err != nil {
		writeBackupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *BackupController) RestoreFull(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	body, ok := readArchiveUpload(w, r)
	if !ok {
		return
	}
	resp, err := c.Restores.RestoreFullBackup(body, claims.UserID)
	if err != nil {
		writeBackupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *BackupController) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	userID := claims.UserID
	if claims.Role == "admin" && r.URL.Query().Get("all") == "true" {
		userID = ""
	}
	backups, err := c.Backups.GetAllBackups(userID)
	if err != nil {
		writeBackupError(w, err)
		return
	}
	out := make([]dto.BackupResponse, 0, len(backups))
	for _, b := range backups {
		out = append(out, dto.BackupResponse{ID: b.ID, UserID: b.UserID, Title: b.Title, FileURL: b.FileURL, CreatedAt: b.CreatedAt.Unix()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *BackupController) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing backup id")
		return
	}
	b, err := c.Backups.GetBackup(id)
	if err != nil {
		writeBackupError(w, err)
		return
	}
	if b.UserID != claims.UserID && claims.Role != "admin" {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, dto.BackupResponse{ID: b.ID, UserID: b.UserID, Title: b.Title, FileURL: b.FileURL, CreatedAt: b.CreatedAt.Unix()})
}

func (c *BackupController) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing backup id")
		return
	}
	b, err := c.Backups.GetBackup(id)
	if err != nil {
		writeBackupError(w, err)
		return
	}
	if b.UserID != claims.UserID && claims.Role != "admin" {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if err := c.Backups.DeleteBackup(id); err != nil {
		writeBackupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func readArchiveUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if err := r.ParseMultipartForm(maxArchiveUpload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, false
	}
	file, _, err := r.FormFile("archive")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "missing archive file")
		return nil, false
	}
	defer file.Close()
	body, err := io.ReadAll(io.LimitReader(file, maxArchiveUpload))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "unreadable archive")
		return nil, false
	}
	return body, true
}

// writeBackupError maps the backup/restore error taxonomy onto HTTP statuses.
// Internal causes are logged; the client sees the descriptive message only.
func writeBackupError(w http.ResponseWriter, err error) {
	var restoreErr *services.RestoreError
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrStructureNotFound),
		errors.Is(err, services.ErrBackupNotFound),
		errors.Is(err, services.ErrWorkspaceNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEmptyBackup),
		errors.Is(err, archive.ErrArchiveFormat),
		errors.Is(err, archive.ErrPayloadNotFound):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cryptoutil.ErrCrypto):
		writeJSONError(w, http.StatusBadRequest, "unable to decrypt backup payload")
	case errors.Is(err, services.ErrRestoreLocked):
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.As(err, &restoreErr):
		global.Logger.Error().Err(restoreErr.Err).Str("kind", restoreErr.Kind).Str("id", restoreErr.ID).Msg("restore aborted")
		writeJSONError(w, http.StatusInternalServerError, restoreErr.Error())
	default:
		global.Logger.Error().Err(err).Msg("backup operation failed")
		writeJSONError(w, http.StatusInternalServerError, "backup operation failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
