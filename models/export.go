package models

// SchemaVersion is the current version of the export file format.
const SchemaVersion = 1

// ExportData is the portable snapshot envelope: a complete copy of all
// three collections, not a diff. The JSON shape must round-trip through
// export and import with zero data loss.
type ExportData struct {
	SchemaVersion int      `json:"schemaVersion"`
	ExportedAt    int64    `json:"exportedAt"`
	People        []Person `json:"people"`
	Facets        []Facet  `json:"facets"`
	Links         []Link   `json:"links"`
}
