package models

// Person represents a contact in the database using GORM.
// It corresponds to the 'people' table. Timestamps are epoch
// milliseconds; the JSON field names match the export file format.
type Person struct {
	ID             string   `gorm:"primaryKey" json:"id"`
	Name           string   `gorm:"not null;index" json:"name"`
	Reminder       string   `json:"reminder,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	CreatedAt      int64    `gorm:"not null;index" json:"createdAt"`
	UpdatedAt      int64    `gorm:"not null;index" json:"updatedAt"`
	PinnedFacetIDs []string `gorm:"serializer:json" json:"pinnedFacetIds,omitempty"`
	LastViewedAt   int64    `json:"lastViewedAt,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "people"
}

// SanitizePinned returns the pinned facet ids restricted to ids that are
// still linked to this person. Pinned entries can go stale when a link or
// facet is removed, so read paths filter them instead of trusting the
// stored list.
func (p *Person) SanitizePinned(linkedFacetIDs []string) []string {
	if len(p.PinnedFacetIDs) == 0 {
		return nil
	}
	linked := make(map[string]struct{}, len(linkedFacetIDs))
	for _, id := range linkedFacetIDs {
		linked[id] = struct{}{}
	}
	pinned := make([]string, 0, len(p.PinnedFacetIDs))
	for _, id := range p.PinnedFacetIDs {
		if _, ok := linked[id]; ok {
			pinned = append(pinned, id)
		}
	}
	if len(pinned) == 0 {
		return nil
	}
	return pinned
}
