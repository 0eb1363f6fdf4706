package models

// Link is the many-to-many edge recording that a person has a facet.
// The composite primary key keeps the relation a set: at most one row
// per (personId, facetId) pair.
type Link struct {
	PersonID string `gorm:"primaryKey" json:"personId"`
	FacetID  string `gorm:"primaryKey;index" json:"facetId"`
}

// TableName explicitly sets the table name for GORM.
func (Link) TableName() string {
	return "links"
}
