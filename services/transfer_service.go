package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/acquainted-app/acquaintedbackend/facets"
	"github.com/acquainted-app/acquaintedbackend/models"
	"github.com/acquainted-app/acquaintedbackend/repository"
)

// ErrInvalidFormat is returned when an import payload is structurally
// malformed. Validation runs before any mutation, so a payload rejected
// with this error has touched nothing.
var ErrInvalidFormat = errors.New("invalid export file format")

const exportFilenamePrefix = "acquainted-export-"

// ImportSummary reports the outcome of a merge: counts cover facets and
// people; links are deduplicated silently and not counted.
type ImportSummary struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// TransferService serializes the full dataset to a portable snapshot and
// merges external snapshots into the local store. It is the only
// component touching all three collections.
type TransferService struct {
	db     *gorm.DB
	people repository.PersonRepositoryInterface
	facets repository.FacetRepositoryInterface
	links  repository.LinkRepositoryInterface
}

// NewTransferService creates a new instance of TransferService
func NewTransferService(db *gorm.DB, people repository.PersonRepositoryInterface, facetRepo repository.FacetRepositoryInterface, links repository.LinkRepositoryInterface) *TransferService {
	return &TransferService{db: db, people: people, facets: facetRepo, links: links}
}

// ExportFilename returns the conventional download name for a snapshot
// taken at t: acquainted-export-<ISO date>.json
func ExportFilename(t time.Time) string {
	return exportFilenamePrefix + t.UTC().Format("2006-01-02") + ".json"
}

// Export produces a complete snapshot of all three collections, verbatim
func (s *TransferService) Export() (*models.ExportData, error) {
	people, err := s.people.ListAll()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	facetList, err := s.facets.ListAll()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	links, err := s.links.ListAll()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	// empty collections must serialize as [], not null, to stay importable
	if people == nil {
		people = []models.Person{}
	}
	if facetList == nil {
		facetList = []models.Facet{}
	}
	if links == nil {
		links = []models.Link{}
	}

	return &models.ExportData{
		SchemaVersion: models.SchemaVersion,
		ExportedAt:    time.Now().UnixMilli(),
		People:        people,
		Facets:        facetList,
		Links:         links,
	}, nil
}

// ParseExport validates a raw snapshot payload: the schema version must
// be present and non-zero and all three collections must be arrays.
// Anything else fails with ErrInvalidFormat before any mutation.
func ParseExport(raw []byte) (*models.ExportData, error) {
	var data models.ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if data.SchemaVersion == 0 || data.People == nil || data.Facets == nil || data.Links == nil {
		return nil, ErrInvalidFormat
	}
	return &data, nil
}

// Import merges a snapshot into the local store.
//
// Facets dedupe by normalized key with local wins; colliding imported
// facets are remapped onto the local id. People merge by id with
// last-writer-wins on updatedAt. Links are remapped through the facet id
// map, deduplicated, and bulk-upserted — import is additive and never
// removes existing links. The merge is not atomic across collections; a
// mid-import failure leaves earlier steps applied, which readers
// tolerate (dangling link targets drop out of joins).
func (s *TransferService) Import(data *models.ExportData) (ImportSummary, error) {
	var summary ImportSummary

	facetIDMap := make(map[string]string, len(data.Facets))
	for _, imported := range data.Facets {
		key := imported.NormalizedKey
		if key == "" {
			key = facets.Normalize(imported.Label, imported.Type)
		}

		existing, err := s.facets.GetByNormalizedKey(key)
		if err == nil {
			facetIDMap[imported.ID] = existing.ID
			summary.Skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return summary, fmt.Errorf("import facets: %w", err)
		}

		facet := imported
		facet.NormalizedKey = key
		if err := s.facets.Put(&facet); err != nil {
			return summary, fmt.Errorf("import facets: %w", err)
		}
		facetIDMap[imported.ID] = imported.ID
		summary.Imported++
	}

	for _, imported := range data.People {
		existing, err := s.people.GetByID(imported.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return summary, fmt.Errorf("import people: %w", err)
		}

		if existing != nil {
			if imported.UpdatedAt > existing.UpdatedAt {
				person := imported
				if err := s.people.Put(&person); err != nil {
					return summary, fmt.Errorf("import people: %w", err)
				}
				summary.Updated++
			} else {
				summary.Skipped++
			}
			continue
		}

		person := imported
		if err := s.people.Put(&person); err != nil {
			return summary, fmt.Errorf("import people: %w", err)
		}
		summary.Imported++
	}

	// remap link facet ids and dedupe by (personId, facetId); unmapped
	// facet ids pass through unchanged as a fallback for malformed input
	unique := make(map[string]models.Link, len(data.Links))
	for _, link := range data.Links {
		facetID := link.FacetID
		if mapped, ok := facetIDMap[facetID]; ok {
			facetID = mapped
		}
		remapped := models.Link{PersonID: link.PersonID, FacetID: facetID}
		unique[remapped.PersonID+":"+remapped.FacetID] = remapped
	}
	links := make([]models.Link, 0, len(unique))
	for _, link := range unique {
		links = append(links, link)
	}
	if err := s.links.BulkPut(links); err != nil {
		return summary, fmt.Errorf("import links: %w", err)
	}

	return summary, nil
}

// ClearAll wipes all three collections in a single transaction, backing
// the erase-all-data settings action
func (s *TransferService) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"links", "facets", "people"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
		}
		return nil
	})
}
