package dto

import "time"

type CreateBackupRequest struct {
	StructureID string `json:"structure_id"`
}

type BackupCreatedResponse struct {
	Message string `json:"message"`
	FileURL string `json:"file_url"`
}

type RestoreResponse struct {
	Message string `json:"message"`
}

type BackupResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	FileURL   string `json:"file_url"`
	CreatedAt int64  `json:"created_at"`
}

// FullBackupDocument is the JSON payload of a full-account backup: every
// structure with its elements (and their records) and structure maps nested
// inline. Metadata and tags stay in their string-serialized form, same as the
// tabular sheets.
type FullBackupDocument struct {
	Structures []FullStructure `json:"structures"`
}

type FullStructure struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	OwnerID        string             `json:"ownerId"`
	Visibility     string             `json:"visibility"`
	ImageURL       string             `json:"imageUrl"`
	MarkmapShowWbs bool               `json:"markmapShowWbs"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
	Elements       []FullElement      `json:"elements"`
	StructureMaps  []FullStructureMap `json:"StructureMap"`
}

type FullElement struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	ParentID      *string     `json:"parentId"`
	ElementLinkID *string     `json:"elementLinkId"`
	OrderIndex    int         `json:"orderIndex"`
	Record        *FullRecord `json:"record"`
}

type FullRecord struct {
	ID       string `json:"id"`
	Metadata string `json:"metadata"`
	Tags     string `json:"tags"`
}

type FullStructureMap struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
