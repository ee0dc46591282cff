package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrStructureNotFound = errors.New("structure not found")
	ErrBackupNotFound    = errors.New("backup not found")
	ErrWorkspaceNotFound = errors.New("default workspace not found")
	ErrEmptyBackup       = errors.New("backup contains no structures")
	ErrRestoreLocked     = errors.New("structure is locked by another restore")
	ErrBackupCreation    = errors.New("backup creation failed")
)

// RestoreError reports the first row-level failure that aborted a restore.
type RestoreError struct {
	Kind string
	ID   string
	Err  error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restore failed on %s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *RestoreError) Unwrap() error { return e.Err }
