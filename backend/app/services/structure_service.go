package services

import (
	"structura/backend/app/dto"
	"structura/backend/app/models"
	"structura/backend/app/repo"

	"github.com/google/uuid"
)

// StructureService is a thin CRUD surface over structures so the API can be
// exercised end to end; all the interesting behavior lives in the backup and
// restore services.
type StructureService struct {
	structures *repo.StructureRepository
	elements   *repo.ElementRepository
	records    *repo.RecordRepository
	workspaces *repo.WorkspaceRepository
}

func NewStructureService(structures *repo.StructureRepository, elements *repo.ElementRepository, records *repo.RecordRepository, workspaces *repo.WorkspaceRepository) *StructureService {
	return &StructureService{structures: structures, elements: elements, records: records, workspaces: workspaces}
}

func (s *StructureService) CreateStructure(ownerID string, req dto.CreateStructureRequest) (*models.Structure, error) {
	workspace, err := s.workspaces.DefaultForUser(ownerID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrWorkspaceNotFound
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = "private"
	}
	structure := &models.Structure{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     ownerID,
		Visibility:  visibility,
		WorkspaceID: workspace.ID,
		ImageURL:    req.ImageURL,
	}
	if err := s.structures.Create(structure); err != nil {
		return nil, err
	}
	return structure, nil
}

// AddElement creates an element, plus its record when metadata or tags are
// supplied. Incoming JSON fields go through the same safe-parse policy the
// restore path uses.
func (s *StructureService) AddElement(ownerID string, req dto.CreateElementRequest) (*models.Element, error) {
	structure, err := s.structures.FindByID(req.StructureID)
	if err != nil {
		return nil, err
	}
	if structure == nil || structure.OwnerID != ownerID {
		return nil, ErrStructureNotFound
	}

	element := &models.Element{
		ID:            uuid.NewString(),
		Name:          req.Name,
		StructureID:   structure.ID,
		ParentID:      req.ParentID,
		ElementLinkID: req.ElementLinkID,
		OrderIndex:    req.OrderIndex,
	}
	if req.Metadata != "" || req.Tags != "" {
		record := &models.Record{
			ID:       uuid.NewString(),
			Metadata: SafeParseObject("metadata", req.Metadata),
			Tags:     SafeParseArray("tags", req.Tags),
		}
		if err := s.records.Create(record); err != nil {
			return nil, err
		}
		element.RecordID = &record.ID
	}
	if err := s.elements.Create(element); err != nil {
		return nil, err
	}
	return element, nil
}

func (s *StructureService) ListStructures(ownerID string) ([]dto.StructureResponse, error) {
	structures, err := s.structures.FindByOwner(ownerID, "")
	if err != nil {
		return nil, err
	}
	out := make([]dto.StructureResponse, 0, len(structures))
	for _, st := range structures {
		out = append(out, dto.StructureResponse{
			ID:           st.ID,
			Name:         st.Name,
			Title:        st.Title,
			Description:  st.Description,
			Visibility:   st.Visibility,
			WorkspaceID:  st.WorkspaceID,
			ElementCount: len(st.Elements),
		})
	}
	return out, nil
}

func (s *StructureService) DeleteStructure(ownerID, id string) error {
	structure, err := s.structures.FindByID(id)
	if err != nil {
		return err
	}
	if structure == nil || structure.OwnerID != ownerID {
		return ErrStructureNotFound
	}
	return s.structures.Delete(id)
}
