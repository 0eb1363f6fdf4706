package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acquainted-app/acquaintedbackend/models"
)

// PersonRepository handles database operations for Person records
type PersonRepository struct {
	DB *gorm.DB
}

// NewPersonRepository creates a new instance of PersonRepository
func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{DB: db}
}

// Create creates a new person record, generating an id and timestamps
// when the caller left them unset
func (r *PersonRepository) Create(person *models.Person) error {
	now := time.Now().UnixMilli()
	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	if person.CreatedAt == 0 {
		person.CreatedAt = now
	}
	if person.UpdatedAt == 0 {
		person.UpdatedAt = now
	}

	err := r.DB.Create(person).Error
	if err != nil {
		return fmt.Errorf("failed to create person %s: %w", person.Name, err)
	}
	return nil
}

// GetByID retrieves a person by their ID
func (r *PersonRepository) GetByID(id string) (*models.Person, error) {
	var person models.Person
	err := r.DB.Where("id = ?", id).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by ID %s: %w", id, err)
	}
	return &person, nil
}

// GetByIDs retrieves the people matching the given ids. Ids with no
// matching row are simply absent from the result.
func (r *PersonRepository) GetByIDs(ids []string) ([]models.Person, error) {
	if len(ids) == 0 {
		return []models.Person{}, nil
	}
	var people []models.Person
	err := r.DB.Where("id IN ?", ids).Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get people by IDs: %w", err)
	}
	return people, nil
}

// ListAll retrieves all people, most recently updated first
func (r *PersonRepository) ListAll() ([]models.Person, error) {
	var people []models.Person
	err := r.DB.Order("updated_at DESC").Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return people, nil
}

// SearchByName performs a case-insensitive substring match against
// names, capped at searchResultLimit rows in unranked order
func (r *PersonRepository) SearchByName(query string) ([]models.Person, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Person{}, nil
	}
	likeQuery := "%" + strings.ToLower(query) + "%"
	var people []models.Person
	err := r.DB.Where("LOWER(name) LIKE ?", likeQuery).Limit(searchResultLimit).Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search people by name for '%s': %w", query, err)
	}
	return people, nil
}

// Update persists all fields of an already-loaded person and bumps
// updatedAt. Callers load via GetByID first, so a missing row has
// already surfaced as not-found.
func (r *PersonRepository) Update(person *models.Person) error {
	person.UpdatedAt = time.Now().UnixMilli()
	if err := r.DB.Save(person).Error; err != nil {
		return fmt.Errorf("failed to update person ID %s: %w", person.ID, err)
	}
	return nil
}

// Put upserts a person verbatim, without touching timestamps. Used by
// import, where the snapshot's own timestamps must be preserved.
func (r *PersonRepository) Put(person *models.Person) error {
	err := r.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(person).Error
	if err != nil {
		return fmt.Errorf("failed to put person ID %s: %w", person.ID, err)
	}
	return nil
}

// TouchLastViewed records a detail-view access. Deliberately does not
// bump updatedAt: viewing is not an edit.
func (r *PersonRepository) TouchLastViewed(id string) error {
	err := r.DB.Model(&models.Person{}).Where("id = ?", id).
		UpdateColumn("last_viewed_at", time.Now().UnixMilli()).Error
	if err != nil {
		return fmt.Errorf("failed to touch last viewed for person ID %s: %w", id, err)
	}
	return nil
}

// Delete removes a person and cascades deletion of all links referencing
// them in a single transaction
func (r *PersonRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("person_id = ?", id).Delete(&models.Link{}).Error; err != nil {
			return fmt.Errorf("failed to delete links for person ID %s: %w", id, err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Person{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete person ID %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Count returns the total number of people
func (r *PersonRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&models.Person{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count people: %w", err)
	}
	return count, nil
}

// BulkPut upserts a batch of people keyed by id
func (r *PersonRepository) BulkPut(people []models.Person) error {
	if len(people) == 0 {
		return nil
	}
	err := r.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&people).Error
	if err != nil {
		return fmt.Errorf("failed to bulk put people: %w", err)
	}
	return nil
}
