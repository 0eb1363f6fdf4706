package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/facette/natsort"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acquainted-app/acquaintedbackend/facets"
	"github.com/acquainted-app/acquaintedbackend/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// FacetRepository handles database operations for Facet records
type FacetRepository struct {
	DB *gorm.DB
}

// NewFacetRepository creates a new instance of FacetRepository
func NewFacetRepository(db *gorm.DB) *FacetRepository {
	return &FacetRepository{DB: db}
}

// FindOrCreate returns the facet whose normalized key matches the given
// label and type, creating it if none exists. When the facet already
// exists the stored label wins; the new casing is ignored. The unique
// index on normalized_key backstops concurrent creation: losing the
// insert race degrades to returning the winner's row.
func (r *FacetRepository) FindOrCreate(label, facetType string) (*models.Facet, error) {
	key := facets.Normalize(label, facetType)

	var existing models.Facet
	err := r.DB.Where("normalized_key = ?", key).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up facet key %s: %w", key, err)
	}

	facet := models.Facet{
		ID:            uuid.NewString(),
		Label:         strings.TrimSpace(label),
		Type:          strings.TrimSpace(facetType),
		NormalizedKey: key,
		CreatedAt:     time.Now().UnixMilli(),
	}
	if err := r.DB.Create(&facet).Error; err != nil {
		// lost an insert race on the unique key: re-read the winner
		var winner models.Facet
		if lookupErr := r.DB.Where("normalized_key = ?", key).First(&winner).Error; lookupErr == nil {
			return &winner, nil
		}
		return nil, fmt.Errorf("failed to create facet '%s': %w", label, err)
	}
	return &facet, nil
}

// GetByID retrieves a facet by its ID
func (r *FacetRepository) GetByID(id string) (*models.Facet, error) {
	var facet models.Facet
	err := r.DB.Where("id = ?", id).First(&facet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get facet by ID %s: %w", id, err)
	}
	return &facet, nil
}

// GetByIDs retrieves the facets matching the given ids; unknown ids are
// absent from the result
func (r *FacetRepository) GetByIDs(ids []string) ([]models.Facet, error) {
	if len(ids) == 0 {
		return []models.Facet{}, nil
	}
	var result []models.Facet
	err := r.DB.Where("id IN ?", ids).Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get facets by IDs: %w", err)
	}
	return result, nil
}

// GetByNormalizedKey retrieves a facet by its canonical dedup key
func (r *FacetRepository) GetByNormalizedKey(key string) (*models.Facet, error) {
	var facet models.Facet
	err := r.DB.Where("normalized_key = ?", key).First(&facet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get facet by key %s: %w", key, err)
	}
	return &facet, nil
}

// ListAll retrieves all facets
func (r *FacetRepository) ListAll() ([]models.Facet, error) {
	var result []models.Facet
	err := r.DB.Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list facets: %w", err)
	}
	return result, nil
}

// GetWithCounts returns every facet annotated with the number of links
// referencing it, in case-insensitive natural ascending label order
func (r *FacetRepository) GetWithCounts() ([]models.FacetWithCount, error) {
	queryBuilder := psql.
		Select("facets.*", "COUNT(links.facet_id) AS count").
		From("facets").
		LeftJoin("links ON links.facet_id = facets.id").
		GroupBy("facets.id")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build facet counts query: %w", err)
	}

	var result []models.FacetWithCount
	if err := r.DB.Raw(sqlStr, args...).Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to query facet counts: %w", err)
	}

	sort.SliceStable(result, func(i, j int) bool {
		// fold case so "archery" sorts before "Book Club"
		return natsort.Compare(strings.ToLower(result[i].Label), strings.ToLower(result[j].Label))
	})
	return result, nil
}

// SearchByLabel performs a case-insensitive substring match against
// labels, capped at searchResultLimit rows in unranked order
func (r *FacetRepository) SearchByLabel(query string) ([]models.Facet, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Facet{}, nil
	}
	likeQuery := "%" + strings.ToLower(query) + "%"
	var result []models.Facet
	err := r.DB.Where("LOWER(label) LIKE ?", likeQuery).Limit(searchResultLimit).Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search facets by label for '%s': %w", query, err)
	}
	return result, nil
}

// Update persists label, type and normalized key of an existing facet.
// The caller recomputes the normalized key; the unique index is the
// authority on collisions, surfaced as ErrDuplicateKey.
func (r *FacetRepository) Update(facet *models.Facet) error {
	result := r.DB.Model(&models.Facet{}).Where("id = ?", facet.ID).
		Select("label", "type", "normalized_key").Updates(facet)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "UNIQUE constraint") {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to update facet ID %s: %w", facet.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Put upserts a facet verbatim, preserving its id. Used by import.
func (r *FacetRepository) Put(facet *models.Facet) error {
	err := r.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(facet).Error
	if err != nil {
		return fmt.Errorf("failed to put facet ID %s: %w", facet.ID, err)
	}
	return nil
}

// Delete removes a facet and cascades deletion of all links referencing
// it in a single transaction. People keep their own records; only the
// edges go.
func (r *FacetRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("facet_id = ?", id).Delete(&models.Link{}).Error; err != nil {
			return fmt.Errorf("failed to delete links for facet ID %s: %w", id, err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Facet{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete facet ID %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
