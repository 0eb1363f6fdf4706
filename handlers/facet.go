package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/acquainted-app/acquaintedbackend/facets"
	"github.com/acquainted-app/acquaintedbackend/models"
	"github.com/acquainted-app/acquaintedbackend/repository"
	"github.com/acquainted-app/acquaintedbackend/services"
)

type FacetHandler struct {
	Facets repository.FacetRepositoryInterface
	Recent *services.RecentFacets
}

// ListFacets returns every facet with its link count, in natural label order
func (fh *FacetHandler) ListFacets(w http.ResponseWriter, r *http.Request) {
	withCounts, err := fh.Facets.GetWithCounts()
	if err != nil {
		log.Printf("Error listing facets: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve facets"})
		return
	}
	if withCounts == nil {
		withCounts = []models.FacetWithCount{}
	}
	writeJSON(w, http.StatusOK, withCounts)
}

// FindOrCreateFacet resolves a label/type pair to its canonical facet,
// creating one when no facet with the same normalized key exists
func (fh *FacetHandler) FindOrCreateFacet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
		Type  string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Label) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: label"})
		return
	}

	facet, err := fh.Facets.FindOrCreate(req.Label, req.Type)
	if err != nil {
		log.Printf("Error resolving facet '%s': %v", req.Label, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to resolve facet"})
		return
	}

	writeJSON(w, http.StatusOK, facet)
}

// SearchFacets performs a capped case-insensitive label substring search
func (fh *FacetHandler) SearchFacets(w http.ResponseWriter, r *http.Request) {
	result, err := fh.Facets.SearchByLabel(r.URL.Query().Get("q"))
	if err != nil {
		log.Printf("Error searching facets: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to search facets"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RecentFacets returns the most-recently-used facets, newest first.
// Ids whose facet has since been deleted are dropped.
func (fh *FacetHandler) RecentFacets(w http.ResponseWriter, r *http.Request) {
	ids := fh.Recent.IDs()
	found, err := fh.Facets.GetByIDs(ids)
	if err != nil {
		log.Printf("Error fetching recent facets: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve recent facets"})
		return
	}

	byID := make(map[string]models.Facet, len(found))
	for _, facet := range found {
		byID[facet.ID] = facet
	}
	ordered := make([]models.Facet, 0, len(ids))
	for _, id := range ids {
		if facet, ok := byID[id]; ok {
			ordered = append(ordered, facet)
		}
	}
	writeJSON(w, http.StatusOK, ordered)
}

// UpdateFacet renames or retypes a facet. The normalized key is
// recomputed here and checked for collisions before anything is written;
// a collision is reported as a conflict and the rename is not applied.
func (fh *FacetHandler) UpdateFacet(w http.ResponseWriter, r *http.Request) {
	facetID := chi.URLParam(r, "facet_id")

	var req struct {
		Label *string `json:"label"`
		Type  *string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Label != nil && strings.TrimSpace(*req.Label) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Label must not be empty"})
		return
	}

	facet, err := fh.Facets.GetByID(facetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Facet not found"})
		} else {
			log.Printf("Error getting facet %s: %v", facetID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve facet"})
		}
		return
	}

	if req.Label != nil {
		facet.Label = strings.TrimSpace(*req.Label)
	}
	if req.Type != nil {
		facet.Type = strings.TrimSpace(*req.Type)
	}

	newKey := facets.Normalize(facet.Label, facet.Type)
	if newKey != facet.NormalizedKey {
		existing, err := fh.Facets.GetByNormalizedKey(newKey)
		if err == nil && existing.ID != facetID {
			writeJSON(w, http.StatusConflict, map[string]string{"error": repository.ErrDuplicateKey.Error()})
			return
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error checking facet key %s: %v", newKey, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update facet"})
			return
		}
		facet.NormalizedKey = newKey
	}

	if err := fh.Facets.Update(facet); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Facet not found"})
		} else if errors.Is(err, repository.ErrDuplicateKey) {
			// another writer took the key between the pre-check and the write
			writeJSON(w, http.StatusConflict, map[string]string{"error": repository.ErrDuplicateKey.Error()})
		} else {
			log.Printf("Error updating facet %s: %v", facetID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update facet"})
		}
		return
	}

	writeJSON(w, http.StatusOK, facet)
}

func (fh *FacetHandler) DeleteFacet(w http.ResponseWriter, r *http.Request) {
	facetID := chi.URLParam(r, "facet_id")

	err := fh.Facets.Delete(facetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Facet not found"})
		} else {
			log.Printf("Error deleting facet %s: %v", facetID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete facet"})
		}
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
