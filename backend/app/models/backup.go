package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BackupData is the JSON blob persisted with every backup row. FilePath is the
// authoritative on-disk location of the archive, used when the backup is
// deleted.
type BackupData struct {
	FilePath string `json:"filePath"`
}

func (d BackupData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *BackupData) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		*d = BackupData{}
		return nil
	default:
		return fmt.Errorf("unsupported backup data type %T", value)
	}
}

// Backup is one row per created archive.
type Backup struct {
	ID         string     `gorm:"primaryKey;size:191"`
	UserID     string     `gorm:"size:191;index"`
	Title      string     `gorm:"size:255"`
	BackupData BackupData `gorm:"type:text"`
	FileURL    string     `gorm:"size:512"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
}
