package models

// Facet represents a free-form tag, optionally categorized by a type
// string (e.g. "relationship"). Label casing is preserved as the first
// writer entered it; NormalizedKey is the canonical dedup key derived
// from (label, type) and is unique across all facets.
type Facet struct {
	ID            string `gorm:"primaryKey" json:"id"`
	Label         string `gorm:"not null" json:"label"`
	Type          string `json:"type,omitempty"`
	NormalizedKey string `gorm:"uniqueIndex;not null" json:"normalizedKey"`
	CreatedAt     int64  `gorm:"not null" json:"createdAt"`
}

// TableName explicitly sets the table name for GORM.
func (Facet) TableName() string {
	return "facets"
}

// FacetWithCount is a Facet annotated with the number of links
// referencing it, used by the browse-by-tag listing.
type FacetWithCount struct {
	Facet
	Count int64 `gorm:"column:count" json:"count"`
}
