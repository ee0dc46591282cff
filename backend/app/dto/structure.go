package dto

type CreateStructureRequest struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	ImageURL    string `json:"image_url"`
}

type CreateElementRequest struct {
	StructureID   string  `json:"structure_id"`
	Name          string  `json:"name"`
	ParentID      *string `json:"parent_id"`
	ElementLinkID *string `json:"element_link_id"`
	OrderIndex    int     `json:"order_index"`
	Metadata      string  `json:"metadata"`
	Tags          string  `json:"tags"`
}

type StructureResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Visibility   string `json:"visibility"`
	WorkspaceID  string `json:"workspace_id"`
	ElementCount int    `json:"element_count"`
}
