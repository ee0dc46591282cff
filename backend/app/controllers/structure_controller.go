package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"structura/backend/app/dto"
	"structura/backend/app/middleware"
	"structura/backend/app/services"
)

type StructureController struct {
	Structures *services.StructureService
}

func NewStructureController(structures *services.StructureService) *StructureController {
	return &StructureController{Structures: structures}
}

func (c *StructureController) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var req dto.CreateStructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	structure, err := c.Structures.CreateStructure(claims.UserID, req)
	if err != nil {
		writeBackupError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.StructureResponse{
		ID:          structure.ID,
		Name:        structure.Name,
		Title:       structure.Title,
		Description: structure.Description,
		Visibility:  structure.Visibility,
		WorkspaceID: structure.WorkspaceID,
	})
}

func (c *StructureController) AddElement(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var req dto.CreateElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StructureID == "" || req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	element, err := c.Structures.AddElement(claims.UserID, req)
	if err != nil {
		if errors.Is(err, services.ErrStructureNotFound) {
			writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		writeBackupError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": element.ID})
}

func (c *StructureController) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	out, err := c.Structures.ListStructures(claims.UserID)
	if err != nil {
		writeBackupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *StructureController) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing structure id")
		return
	}
	if err := c.Structures.DeleteStructure(claims.UserID, id); err != nil {
		if errors.Is(err, services.ErrStructureNotFound) {
			writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		writeBackupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
