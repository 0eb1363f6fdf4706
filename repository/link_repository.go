package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acquainted-app/acquaintedbackend/models"
)

// LinkRepository handles the person-facet many-to-many relation
type LinkRepository struct {
	DB *gorm.DB
}

// NewLinkRepository creates a new instance of LinkRepository
func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{DB: db}
}

// AddLink records that a person has a facet. Adding an existing link is
// a no-op, not an error.
func (r *LinkRepository) AddLink(personID, facetID string) error {
	link := models.Link{PersonID: personID, FacetID: facetID}
	err := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	if err != nil {
		return fmt.Errorf("failed to add link (%s, %s): %w", personID, facetID, err)
	}
	return nil
}

// RemoveLink removes a person-facet edge. Removing a non-existent link
// is a no-op.
func (r *LinkRepository) RemoveLink(personID, facetID string) error {
	err := r.DB.Where("person_id = ? AND facet_id = ?", personID, facetID).
		Delete(&models.Link{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove link (%s, %s): %w", personID, facetID, err)
	}
	return nil
}

// GetFacetIDsForPerson returns the facet ids linked to a person, unordered
func (r *LinkRepository) GetFacetIDsForPerson(personID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&models.Link{}).Where("person_id = ?", personID).
		Pluck("facet_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get facet IDs for person %s: %w", personID, err)
	}
	return ids, nil
}

// GetPersonIDsForFacet returns the person ids linked to a facet, unordered
func (r *LinkRepository) GetPersonIDsForFacet(facetID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&models.Link{}).Where("facet_id = ?", facetID).
		Pluck("person_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get person IDs for facet %s: %w", facetID, err)
	}
	return ids, nil
}

// RemoveLinksByPersonID deletes every link referencing a person; cascade
// helper for person deletion
func (r *LinkRepository) RemoveLinksByPersonID(personID string) error {
	err := r.DB.Where("person_id = ?", personID).Delete(&models.Link{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove links for person %s: %w", personID, err)
	}
	return nil
}

// RemoveLinksByFacetID deletes every link referencing a facet; cascade
// helper for facet deletion
func (r *LinkRepository) RemoveLinksByFacetID(facetID string) error {
	err := r.DB.Where("facet_id = ?", facetID).Delete(&models.Link{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove links for facet %s: %w", facetID, err)
	}
	return nil
}

// ListAll retrieves every link
func (r *LinkRepository) ListAll() ([]models.Link, error) {
	var links []models.Link
	err := r.DB.Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// BulkPut upserts a batch of links. Links carry no payload, so conflicts
// on the composite key are simply ignored.
func (r *LinkRepository) BulkPut(links []models.Link) error {
	if len(links) == 0 {
		return nil
	}
	err := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	if err != nil {
		return fmt.Errorf("failed to bulk put links: %w", err)
	}
	return nil
}
