package repository

import (
	"github.com/acquainted-app/acquaintedbackend/models"
)

// searchResultLimit caps substring searches to bound UI cost; searches
// are unranked, so anything past the cap is noise anyway.
const searchResultLimit = 20

// PersonRepositoryInterface defines the methods for person data operations
type PersonRepositoryInterface interface {
	Create(person *models.Person) error
	GetByID(id string) (*models.Person, error)
	GetByIDs(ids []string) ([]models.Person, error)
	ListAll() ([]models.Person, error)
	SearchByName(query string) ([]models.Person, error)
	Update(person *models.Person) error
	Put(person *models.Person) error
	TouchLastViewed(id string) error
	Delete(id string) error
	Count() (int64, error)
	BulkPut(people []models.Person) error
}

// FacetRepositoryInterface defines the methods for facet data operations
type FacetRepositoryInterface interface {
	FindOrCreate(label, facetType string) (*models.Facet, error)
	GetByID(id string) (*models.Facet, error)
	GetByIDs(ids []string) ([]models.Facet, error)
	GetByNormalizedKey(key string) (*models.Facet, error)
	ListAll() ([]models.Facet, error)
	GetWithCounts() ([]models.FacetWithCount, error)
	SearchByLabel(query string) ([]models.Facet, error)
	Update(facet *models.Facet) error
	Put(facet *models.Facet) error
	Delete(id string) error
}

// LinkRepositoryInterface defines the methods for the person-facet
// many-to-many relation
type LinkRepositoryInterface interface {
	AddLink(personID, facetID string) error
	RemoveLink(personID, facetID string) error
	GetFacetIDsForPerson(personID string) ([]string, error)
	GetPersonIDsForFacet(facetID string) ([]string, error)
	RemoveLinksByPersonID(personID string) error
	RemoveLinksByFacetID(facetID string) error
	ListAll() ([]models.Link, error)
	BulkPut(links []models.Link) error
}
