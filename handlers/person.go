package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/acquainted-app/acquaintedbackend/models"
	"github.com/acquainted-app/acquaintedbackend/repository"
	"github.com/acquainted-app/acquaintedbackend/services"
)

type PersonHandler struct {
	People repository.PersonRepositoryInterface
	Facets repository.FacetRepositoryInterface
	Links  repository.LinkRepositoryInterface
	Filter *services.FilterService
	Recent *services.RecentFacets
}

// personDetail is a person plus their currently linked facet ids
type personDetail struct {
	models.Person
	FacetIDs []string `json:"facetIds"`
}

// facetInput names an initial facet by label/type on person creation
type facetInput struct {
	Label string `json:"label"`
	Type  string `json:"type"`
}

// ListPeople returns the filtered, sorted person list. Query params:
// search, facets (comma-separated ids), mode (and|or), sort (recency|name).
func (ph *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	opts := services.FilterOptions{
		SearchText: r.URL.Query().Get("search"),
		Mode:       r.URL.Query().Get("mode"),
		Sort:       r.URL.Query().Get("sort"),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("facets")); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				opts.FacetIDs = append(opts.FacetIDs, id)
			}
		}
	}
	if opts.Mode != "" && !services.IsValidFilterMode(opts.Mode) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid filter mode"})
		return
	}
	if opts.Sort != "" && !services.IsValidSortMode(opts.Sort) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid sort mode"})
		return
	}

	people, err := ph.Filter.FilterPeople(opts)
	if err != nil {
		log.Printf("Error filtering people: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve people"})
		return
	}
	if people == nil {
		people = []models.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

// SearchPeople performs a capped case-insensitive name substring search,
// used for duplicate hints while quick-adding
func (ph *PersonHandler) SearchPeople(w http.ResponseWriter, r *http.Request) {
	people, err := ph.Filter.SearchPeople(r.URL.Query().Get("q"))
	if err != nil {
		log.Printf("Error searching people: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to search people"})
		return
	}
	if people == nil {
		people = []models.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (ph *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string       `json:"name"`
		Notes    string       `json:"notes"`
		Reminder string       `json:"reminder"`
		Facets   []facetInput `json:"facets"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: name"})
		return
	}

	person := models.Person{
		Name:     strings.TrimSpace(req.Name),
		Notes:    req.Notes,
		Reminder: req.Reminder,
	}
	if err := ph.People.Create(&person); err != nil {
		log.Printf("Error creating person '%s': %v", req.Name, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create person"})
		return
	}

	facetIDs := make([]string, 0, len(req.Facets))
	for _, input := range req.Facets {
		if strings.TrimSpace(input.Label) == "" {
			continue
		}
		facet, err := ph.Facets.FindOrCreate(input.Label, input.Type)
		if err != nil {
			log.Printf("Error attaching initial facet '%s' to person %s: %v", input.Label, person.ID, err)
			continue
		}
		if err := ph.Links.AddLink(person.ID, facet.ID); err != nil {
			log.Printf("Error linking facet %s to person %s: %v", facet.ID, person.ID, err)
			continue
		}
		ph.Recent.Record(facet.ID)
		facetIDs = append(facetIDs, facet.ID)
	}

	writeJSON(w, http.StatusCreated, personDetail{Person: person, FacetIDs: facetIDs})
}

func (ph *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")

	person, err := ph.People.GetByID(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error getting person %s: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve person"})
		}
		return
	}

	facetIDs, err := ph.Links.GetFacetIDsForPerson(personID)
	if err != nil {
		log.Printf("Error fetching facets for person %s: %v", personID, err)
		facetIDs = []string{}
	}
	person.PinnedFacetIDs = person.SanitizePinned(facetIDs)

	if err := ph.People.TouchLastViewed(personID); err != nil {
		log.Printf("Error touching last viewed for person %s: %v", personID, err)
	}

	writeJSON(w, http.StatusOK, personDetail{Person: *person, FacetIDs: facetIDs})
}

func (ph *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")

	var req struct {
		Name           *string   `json:"name"`
		Notes          *string   `json:"notes"`
		Reminder       *string   `json:"reminder"`
		PinnedFacetIDs *[]string `json:"pinnedFacetIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Name must not be empty"})
		return
	}

	person, err := ph.People.GetByID(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error getting person %s: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve person"})
		}
		return
	}

	if req.Name != nil {
		person.Name = strings.TrimSpace(*req.Name)
	}
	if req.Notes != nil {
		person.Notes = *req.Notes
	}
	if req.Reminder != nil {
		person.Reminder = *req.Reminder
	}
	if req.PinnedFacetIDs != nil {
		// pins must stay a subset of the linked facets
		linked, err := ph.Links.GetFacetIDsForPerson(personID)
		if err != nil {
			log.Printf("Error fetching facets for person %s: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update person"})
			return
		}
		candidate := models.Person{PinnedFacetIDs: *req.PinnedFacetIDs}
		person.PinnedFacetIDs = candidate.SanitizePinned(linked)
	}

	if err := ph.People.Update(person); err != nil {
		log.Printf("Error updating person %s: %v", personID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update person"})
		return
	}

	writeJSON(w, http.StatusOK, person)
}

func (ph *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")

	err := ph.People.Delete(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error deleting person %s: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete person"})
		}
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// AddFacetToPerson links an existing facet to a person; adding an
// existing link is a no-op
func (ph *PersonHandler) AddFacetToPerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")
	facetID := chi.URLParam(r, "facet_id")

	if _, err := ph.People.GetByID(personID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error checking person %s before linking: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to verify person"})
		}
		return
	}
	if _, err := ph.Facets.GetByID(facetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Facet not found"})
		} else {
			log.Printf("Error checking facet %s before linking: %v", facetID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to verify facet"})
		}
		return
	}

	if err := ph.Links.AddLink(personID, facetID); err != nil {
		log.Printf("Error linking facet %s to person %s: %v", facetID, personID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to add facet"})
		return
	}
	ph.Recent.Record(facetID)

	writeJSON(w, http.StatusNoContent, nil)
}

// RemoveFacetFromPerson unlinks a facet from a person; removing a
// non-existent link is a no-op
func (ph *PersonHandler) RemoveFacetFromPerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")
	facetID := chi.URLParam(r, "facet_id")

	if err := ph.Links.RemoveLink(personID, facetID); err != nil {
		log.Printf("Error unlinking facet %s from person %s: %v", facetID, personID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to remove facet"})
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
