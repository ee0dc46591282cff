package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"structura/backend/app/archive"
	"structura/backend/app/codec"
	cryptoutil "structura/backend/app/crypto"
	"structura/backend/app/dto"
	"structura/backend/app/models"
	"structura/backend/app/repo"
	"structura/backend/global"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const restoreLockTTL = 5 * time.Minute

// RestoreService replays backup archives into the database. The interesting
// part is reconciliation: entity identity is preserved only when the restoring
// user already owns the backed-up structure, otherwise the whole subtree is
// forked under fresh ids; and the element graph is rebuilt in two passes
// because link (and, for full backups, parent) references may point forward or
// form cycles.
type RestoreService struct {
	db     *gorm.DB
	rdb    *redis.Client
	cipher *cryptoutil.Cipher
}

func NewRestoreService(db *gorm.DB, rdb *redis.Client, cipher *cryptoutil.Cipher) *RestoreService {
	return &RestoreService{db: db, rdb: rdb, cipher: cipher}
}

// restorePayload is the decoded archive content, normalized so tabular and
// nested-JSON backups restore through the same code path.
type restorePayload struct {
	structures []structureRow
	elements   []elementRow
	records    []recordRow
	maps       []mapRow
}

type structureRow struct {
	ID             string
	Name           string
	Title          string
	Description    string
	OwnerID        string
	Visibility     string
	ImageURL       string
	MarkmapShowWbs bool
}

type elementRow struct {
	ID            string
	Name          string
	StructureID   string
	ParentID      *string
	RecordID      *string
	ElementLinkID *string
	OrderIndex    int
}

type recordRow struct {
	ID       string
	Metadata string
	Tags     string
}

type mapRow struct {
	ID          string
	StructureID string
	Name        string
	Description string
}

// structureIdentity is the per-structure restore decision: either the backup
// id is preserved, or the subtree is forked under a fresh id. Decided once and
// propagated to every nested row through the remap table.
type structureIdentity struct {
	OriginalID string
	FinalID    string
	Forked     bool
}

// RestoreBackup restores a single structure from an archive into the caller's
// default workspace.
func (s *RestoreService) RestoreBackup(archiveBytes []byte, targetStructureID, userID string) (*dto.RestoreResponse, error) {
	workspace, err := s.defaultWorkspace(userID)
	if err != nil {
		return nil, err
	}
	payload, err := s.decodeArchive(archiveBytes)
	if err != nil {
		return nil, err
	}
	if len(payload.structures) == 0 {
		return nil, ErrEmptyBackup
	}

	// Identity resolution: prefer the sheet row matching the requested target
	// id; otherwise the first row is restored into the requested slot.
	row := payload.structures[0]
	for _, st := range payload.structures {
		if st.ID == targetStructureID {
			row = st
			break
		}
	}
	identity := structureIdentity{OriginalID: row.ID, FinalID: targetStructureID, Forked: row.OwnerID != userID}
	if identity.Forked {
		// Fork, not overwrite: the original owner's ids must never be reused
		// under another tenant.
		identity.FinalID = uuid.NewString()
	}

	unlock, err := s.lockStructure(identity.FinalID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Records first: elements reference them and carry no other ordering
		// constraint.
		if err := s.restoreRecords(tx, payload.records); err != nil {
			return err
		}
		return s.restoreStructure(tx, payload, row, identity, userID, workspace.ID, false)
	})
	if err != nil {
		return nil, err
	}

	global.Logger.Info().Str("user", userID).Str("structure", identity.FinalID).Bool("forked", identity.Forked).Msg("backup restored")
	return &dto.RestoreResponse{Message: "Backup restored successfully"}, nil
}

// RestoreFullBackup restores every structure in the archive, applying the
// ownership-fork rule independently per structure. Parent edges are deferred
// to the second pass alongside link edges, since the nested JSON form gives no
// ordering guarantee for parents.
func (s *RestoreService) RestoreFullBackup(archiveBytes []byte, userID string) (*dto.RestoreResponse, error) {
	workspace, err := s.defaultWorkspace(userID)
	if err != nil {
		return nil, err
	}
	payload, err := s.decodeArchive(archiveBytes)
	if err != nil {
		return nil, err
	}
	if len(payload.structures) == 0 {
		return nil, ErrEmptyBackup
	}

	identities := make([]structureIdentity, len(payload.structures))
	for i, row := range payload.structures {
		identities[i] = structureIdentity{OriginalID: row.ID, FinalID: row.ID, Forked: row.OwnerID != userID}
		if identities[i].Forked {
			identities[i].FinalID = uuid.NewString()
		}
	}

	for _, id := range identities {
		unlock, err := s.lockStructure(id.FinalID)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.restoreRecords(tx, payload.records); err != nil {
			return err
		}
		for i, row := range payload.structures {
			if err := s.restoreStructure(tx, payload, row, identities[i], userID, workspace.ID, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	global.Logger.Info().Str("user", userID).Int("structures", len(payload.structures)).Msg("full backup restored")
	return &dto.RestoreResponse{Message: "Backup restored successfully"}, nil
}

func (s *RestoreService) defaultWorkspace(userID string) (*models.Workspace, error) {
	workspace, err := repo.NewWorkspaceRepository(s.db).DefaultForUser(userID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrWorkspaceNotFound
	}
	return workspace, nil
}

// decodeArchive unzips, decrypts and decodes a backup payload. The payload is
// either a nested JSON document (full-account backups) or a tabular workbook;
// the two are told apart by an explicit JSON validity check, not by trial and
// error.
func (s *RestoreService) decodeArchive(archiveBytes []byte) (*restorePayload, error) {
	entries, err := archive.Unpack(archiveBytes)
	if err != nil {
		return nil, err
	}
	payload, err := archive.FindBySuffix(entries, ".enc")
	if err != nil {
		return nil, err
	}
	plain, err := s.cipher.Decrypt(payload.Data)
	if err != nil {
		return nil, err
	}
	if json.Valid(plain) {
		var doc dto.FullBackupDocument
		if err := json.Unmarshal(plain, &doc); err != nil {
			return nil, fmt.Errorf("decode json payload: %w", err)
		}
		return payloadFromDocument(doc), nil
	}
	sheets, err := codec.DecodeWorkbook(plain)
	if err != nil {
		return nil, fmt.Errorf("decode workbook payload: %w", err)
	}
	return payloadFromSheets(sheets), nil
}

// restoreStructure upserts one structure and reconciles its element graph in
// two phases. Phase 1 inserts every element with its cross-references nulled
// (and remapped ids when forking); phase 2 patches the deferred edges once all
// nodes exist. Structure maps are rewritten to the final structure id.
func (s *RestoreService) restoreStructure(tx *gorm.DB, payload *restorePayload, row structureRow, identity structureIdentity, userID, workspaceID string, deferParents bool) error {
	structures := repo.NewStructureRepository(tx)
	elements := repo.NewElementRepository(tx)
	maps := repo.NewStructureMapRepository(tx)

	visibility := row.Visibility
	if visibility == "" {
		visibility = "private"
	}
	err := structures.Upsert(&models.Structure{
		ID:             identity.FinalID,
		Name:           row.Name,
		Title:          row.Title,
		Description:    row.Description,
		OwnerID:        userID,
		Visibility:     visibility,
		WorkspaceID:    workspaceID,
		ImageURL:       row.ImageURL,
		MarkmapShowWbs: row.MarkmapShowWbs,
	})
	if err != nil {
		return &RestoreError{Kind: "structure", ID: identity.FinalID, Err: err}
	}

	var own []elementRow
	present := make(map[string]struct{})
	for _, el := range payload.elements {
		if el.StructureID == identity.OriginalID {
			own = append(own, el)
			present[el.ID] = struct{}{}
		}
	}

	// Remap table: identity when the owner matched, fresh ids on fork.
	idMap := make(map[string]string, len(own))
	for _, el := range own {
		if identity.Forked {
			idMap[el.ID] = uuid.NewString()
		} else {
			idMap[el.ID] = el.ID
		}
	}

	type deferredEdges struct {
		finalID string
		link    *string
		parent  *string
	}
	var deferred []deferredEdges

	for _, el := range own {
		finalID := idMap[el.ID]
		edges := deferredEdges{finalID: finalID}

		// The link graph may be cyclic or point at nodes not inserted yet, so
		// it is never satisfiable in one pass.
		if el.ElementLinkID != nil {
			if mapped, ok := idMap[*el.ElementLinkID]; ok {
				edges.link = &mapped
			}
		}

		var parent *string
		if el.ParentID != nil {
			if mapped, ok := idMap[*el.ParentID]; ok {
				parent = &mapped
			}
			// Dangling parents are nulled, not rejected.
		}
		if deferParents {
			edges.parent = parent
			parent = nil
		}

		err := elements.Upsert(&models.Element{
			ID:          finalID,
			Name:        el.Name,
			StructureID: identity.FinalID,
			ParentID:    parent,
			RecordID:    el.RecordID,
			OrderIndex:  el.OrderIndex,
		})
		if err != nil {
			return &RestoreError{Kind: "element", ID: finalID, Err: err}
		}
		if edges.link != nil || edges.parent != nil {
			deferred = append(deferred, edges)
		}
	}

	for _, edges := range deferred {
		if edges.link != nil {
			if err := elements.SetLink(edges.finalID, edges.link); err != nil {
				return &RestoreError{Kind: "element", ID: edges.finalID, Err: err}
			}
		}
		if edges.parent != nil {
			if err := elements.SetParent(edges.finalID, edges.parent); err != nil {
				return &RestoreError{Kind: "element", ID: edges.finalID, Err: err}
			}
		}
	}

	for _, m := range payload.maps {
		if m.StructureID != identity.OriginalID {
			continue
		}
		mapID := m.ID
		if identity.Forked {
			mapID = uuid.NewString()
		}
		err := maps.Upsert(&models.StructureMap{
			ID:          mapID,
			StructureID: identity.FinalID,
			Name:        m.Name,
			Description: m.Description,
		})
		if err != nil {
			return &RestoreError{Kind: "structureMap", ID: mapID, Err: err}
		}
	}
	return nil
}

// restoreRecords upserts records by id. Records carry no structure reference,
// so they bypass reconciliation entirely; their JSON fields only pass through
// the safe-parse policy.
func (s *RestoreService) restoreRecords(tx *gorm.DB, rows []recordRow) error {
	records := repo.NewRecordRepository(tx)
	for _, rec := range rows {
		err := records.Upsert(&models.Record{
			ID:       rec.ID,
			Metadata: SafeParseObject("metadata", rec.Metadata),
			Tags:     SafeParseArray("tags", rec.Tags),
		})
		if err != nil {
			return &RestoreError{Kind: "record", ID: rec.ID, Err: err}
		}
	}
	return nil
}

// lockStructure takes a redis advisory lock on the restore target so two
// restores cannot interleave their upserts. Locking is disabled when no redis
// client is configured.
func (s *RestoreService) lockStructure(structureID string) (func(), error) {
	if s.rdb == nil {
		return func() {}, nil
	}
	ctx := context.Background()
	key := "restore:lock:" + structureID
	ok, err := s.rdb.SetNX(ctx, key, 1, restoreLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire restore lock: %w", err)
	}
	if !ok {
		return nil, ErrRestoreLocked
	}
	return func() { s.rdb.Del(ctx, key) }, nil
}

func payloadFromSheets(sheets map[string][]codec.Row) *restorePayload {
	p := &restorePayload{}
	for _, r := range sheets[codec.SheetStructures] {
		p.structures = append(p.structures, structureRow{
			ID:             r["id"],
			Name:           r["name"],
			Title:          r["title"],
			Description:    r["description"],
			OwnerID:        r["ownerId"],
			Visibility:     r["visibility"],
			ImageURL:       r["imageUrl"],
			MarkmapShowWbs: parseBool(r["markmapShowWbs"]),
		})
	}
	for _, r := range sheets[codec.SheetElements] {
		p.elements = append(p.elements, elementRow{
			ID:            r["id"],
			Name:          r["name"],
			StructureID:   r["structureId"],
			ParentID:      optional(r["parentId"]),
			RecordID:      optional(r["recordId"]),
			ElementLinkID: optional(r["elementLinkId"]),
			OrderIndex:    parseInt(r["orderIndex"]),
		})
	}
	for _, r := range sheets[codec.SheetRecords] {
		p.records = append(p.records, recordRow{ID: r["id"], Metadata: r["metadata"], Tags: r["tags"]})
	}
	for _, r := range sheets[codec.SheetStructureMaps] {
		p.maps = append(p.maps, mapRow{ID: r["id"], StructureID: r["structureId"], Name: r["name"], Description: r["description"]})
	}
	return p
}

func payloadFromDocument(doc dto.FullBackupDocument) *restorePayload {
	p := &restorePayload{}
	for _, st := range doc.Structures {
		p.structures = append(p.structures, structureRow{
			ID:             st.ID,
			Name:           st.Name,
			Title:          st.Title,
			Description:    st.Description,
			OwnerID:        st.OwnerID,
			Visibility:     st.Visibility,
			ImageURL:       st.ImageURL,
			MarkmapShowWbs: st.MarkmapShowWbs,
		})
		for _, el := range st.Elements {
			row := elementRow{
				ID:            el.ID,
				Name:          el.Name,
				StructureID:   st.ID,
				ParentID:      el.ParentID,
				ElementLinkID: el.ElementLinkID,
				OrderIndex:    el.OrderIndex,
			}
			if el.Record != nil {
				recID := el.Record.ID
				row.RecordID = &recID
				p.records = append(p.records, recordRow{ID: el.Record.ID, Metadata: el.Record.Metadata, Tags: el.Record.Tags})
			}
			p.elements = append(p.elements, row)
		}
		for _, m := range st.StructureMaps {
			p.maps = append(p.maps, mapRow{ID: m.ID, StructureID: st.ID, Name: m.Name, Description: m.Description})
		}
	}
	return p
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
