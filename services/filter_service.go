package services

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/acquainted-app/acquaintedbackend/models"
	"github.com/acquainted-app/acquaintedbackend/repository"
)

// FilterOptions describes one filtered-people query: optional free-text
// search, the set of required facet ids, AND/OR combination mode, and
// the sort order of the result.
type FilterOptions struct {
	SearchText string
	FacetIDs   []string
	Mode       string
	Sort       string
}

// FilterService computes the filtered, sorted person list by composing
// the link and person repositories. Facet filtering and text search
// commute on membership; facets are resolved first only because the
// link index makes that the cheap side.
type FilterService struct {
	people   repository.PersonRepositoryInterface
	links    repository.LinkRepositoryInterface
	collator *collate.Collator
}

// NewFilterService creates a new instance of FilterService
func NewFilterService(people repository.PersonRepositoryInterface, links repository.LinkRepositoryInterface) *FilterService {
	return &FilterService{
		people:   people,
		links:    links,
		collator: collate.New(language.Und),
	}
}

// FilterPeople returns the people matching the given options. With no
// facet ids the candidate set is everyone; otherwise it is the
// intersection (AND) or union (OR) of each facet's linked people.
func (s *FilterService) FilterPeople(opts FilterOptions) ([]models.Person, error) {
	mode := opts.Mode
	if mode == "" {
		mode = DefaultFilterMode
	}
	if !IsValidFilterMode(mode) {
		return nil, fmt.Errorf("invalid filter mode %q", opts.Mode)
	}
	sortMode := opts.Sort
	if sortMode == "" {
		sortMode = DefaultSortMode
	}
	if !IsValidSortMode(sortMode) {
		return nil, fmt.Errorf("invalid sort mode %q", opts.Sort)
	}

	var people []models.Person
	var err error
	if len(opts.FacetIDs) == 0 {
		people, err = s.people.ListAll()
	} else {
		var candidateIDs []string
		candidateIDs, err = s.candidateIDs(opts.FacetIDs, mode)
		if err == nil {
			people, err = s.people.GetByIDs(candidateIDs)
		}
	}
	if err != nil {
		return nil, err
	}

	if search := strings.TrimSpace(opts.SearchText); search != "" {
		lower := strings.ToLower(search)
		matched := make([]models.Person, 0, len(people))
		for _, person := range people {
			if strings.Contains(strings.ToLower(person.Name), lower) {
				matched = append(matched, person)
			}
		}
		people = matched
	}

	switch sortMode {
	case SortByName:
		sort.SliceStable(people, func(i, j int) bool {
			return s.collator.CompareString(people[i].Name, people[j].Name) < 0
		})
	default:
		sort.SliceStable(people, func(i, j int) bool {
			return people[i].UpdatedAt > people[j].UpdatedAt
		})
	}

	if err := s.sanitizePinned(people); err != nil {
		return nil, err
	}
	return people, nil
}

// SearchPeople performs the capped name substring search with the same
// read-time pin sanitization as the filtered list
func (s *FilterService) SearchPeople(query string) ([]models.Person, error) {
	people, err := s.people.SearchByName(query)
	if err != nil {
		return nil, err
	}
	if err := s.sanitizePinned(people); err != nil {
		return nil, err
	}
	return people, nil
}

// sanitizePinned restricts each person's pinned facet ids to the facets
// still linked to them. Pins go stale after link removals and facet
// deletes; the stored list is never trusted on a read path.
func (s *FilterService) sanitizePinned(people []models.Person) error {
	for i := range people {
		if len(people[i].PinnedFacetIDs) == 0 {
			continue
		}
		linked, err := s.links.GetFacetIDsForPerson(people[i].ID)
		if err != nil {
			return err
		}
		people[i].PinnedFacetIDs = people[i].SanitizePinned(linked)
	}
	return nil
}

// candidateIDs resolves the facet filter to a set of person ids. A
// single facet is just the degenerate case of the general rule.
func (s *FilterService) candidateIDs(facetIDs []string, mode string) ([]string, error) {
	if mode == FilterModeOr {
		union := make(map[string]struct{})
		for _, facetID := range facetIDs {
			ids, err := s.links.GetPersonIDsForFacet(facetID)
			if err != nil {
				return nil, err
			}
			for _, id := range ids {
				union[id] = struct{}{}
			}
		}
		return setToSlice(union), nil
	}

	var intersection map[string]struct{}
	for _, facetID := range facetIDs {
		ids, err := s.links.GetPersonIDsForFacet(facetID)
		if err != nil {
			return nil, err
		}
		current := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			current[id] = struct{}{}
		}
		if intersection == nil {
			intersection = current
			continue
		}
		for id := range intersection {
			if _, ok := current[id]; !ok {
				delete(intersection, id)
			}
		}
		if len(intersection) == 0 {
			break
		}
	}
	return setToSlice(intersection), nil
}

func setToSlice(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
