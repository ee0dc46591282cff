package models

import "time"

// Structure is the root of a tree document. Deleting a structure cascades to
// its elements and maps.
type Structure struct {
	ID             string `gorm:"primaryKey;size:191"`
	Name           string `gorm:"size:255"`
	Title          string `gorm:"size:255"`
	Description    string `gorm:"size:1024"`
	OwnerID        string `gorm:"size:191;index"`
	Visibility     string `gorm:"size:32;default:private"`
	WorkspaceID    string `gorm:"size:191;index"`
	ImageURL       string `gorm:"size:512"`
	MarkmapShowWbs bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Elements []Element      `gorm:"foreignKey:StructureID;constraint:OnDelete:CASCADE"`
	Maps     []StructureMap `gorm:"foreignKey:StructureID;constraint:OnDelete:CASCADE"`
}

// Element is a node in a structure's tree. ParentID forms the tree;
// ElementLinkID forms a second, possibly cyclic graph over the same nodes, so
// neither column carries a database-level constraint.
type Element struct {
	ID            string  `gorm:"primaryKey;size:191"`
	Name          string  `gorm:"size:255"`
	StructureID   string  `gorm:"size:191;index"`
	ParentID      *string `gorm:"size:191;index"`
	RecordID      *string `gorm:"size:191"`
	ElementLinkID *string `gorm:"size:191"`
	OrderIndex    int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Record *Record `gorm:"foreignKey:RecordID;references:ID"`
}

// Record holds free-form JSON attached to an element. Metadata and Tags are
// stored as serialized JSON text and re-parsed by consumers.
type Record struct {
	ID        string `gorm:"primaryKey;size:191"`
	Metadata  string `gorm:"type:text"`
	Tags      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StructureMap is auxiliary per-structure metadata.
type StructureMap struct {
	ID          string `gorm:"primaryKey;size:191"`
	StructureID string `gorm:"size:191;index"`
	Name        string `gorm:"size:255"`
	Description string `gorm:"size:1024"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
