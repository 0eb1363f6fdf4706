package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acquainted-app/acquaintedbackend/models"
)

func newTransfer(env *testEnv) *TransferService {
	return NewTransferService(env.db, env.people, env.facets, env.links)
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "acquainted-export-2024-03-09.json", ExportFilename(at))
}

func TestParseExport(t *testing.T) {
	valid := []byte(`{"schemaVersion":1,"exportedAt":123,"people":[],"facets":[],"links":[]}`)
	data, err := ParseExport(valid)
	require.NoError(t, err)
	assert.Equal(t, 1, data.SchemaVersion)

	invalid := [][]byte{
		[]byte(`not json`),
		[]byte(`{"people":[],"facets":[],"links":[]}`),                   // missing schemaVersion
		[]byte(`{"schemaVersion":1,"facets":[],"links":[]}`),             // missing people
		[]byte(`{"schemaVersion":1,"people":null,"facets":[],"links":[]}`),
		[]byte(`{"schemaVersion":1,"people":{},"facets":[],"links":[]}`), // people not an array
	}
	for _, raw := range invalid {
		_, err := ParseExport(raw)
		assert.ErrorIs(t, err, ErrInvalidFormat, "payload: %s", raw)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	source := setupTestEnv(t)

	ada := source.addPerson(t, "Ada", 100)
	bob := source.addPerson(t, "Bob", 200)
	coworker := source.addFacet(t, "Coworker", "relationship")
	book := source.addFacet(t, "book club", "")
	source.link(t, ada, coworker)
	source.link(t, ada, book)
	source.link(t, bob, coworker)

	snapshot, err := newTransfer(source).Export()
	require.NoError(t, err)
	assert.Equal(t, models.SchemaVersion, snapshot.SchemaVersion)
	assert.NotZero(t, snapshot.ExportedAt)

	// the snapshot survives serialization unchanged
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)
	parsed, err := ParseExport(raw)
	require.NoError(t, err)

	// import into an empty store reproduces everything verbatim
	dest := setupTestEnv(t)
	summary, err := newTransfer(dest).Import(parsed)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Imported: 4, Updated: 0, Skipped: 0}, summary)

	people, err := dest.people.ListAll()
	require.NoError(t, err)
	require.Len(t, people, 2)

	imported, err := dest.people.GetByID(ada.ID)
	require.NoError(t, err)
	assert.Equal(t, ada.Name, imported.Name)
	assert.Equal(t, ada.UpdatedAt, imported.UpdatedAt)

	importedFacets, err := dest.facets.ListAll()
	require.NoError(t, err)
	assert.Len(t, importedFacets, 2)

	links, err := dest.links.ListAll()
	require.NoError(t, err)
	assert.Len(t, links, 3)
}

func TestImportIsIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	service := newTransfer(env)

	ada := env.addPerson(t, "Ada", 100)
	coworker := env.addFacet(t, "Coworker", "relationship")
	env.link(t, ada, coworker)

	snapshot, err := service.Export()
	require.NoError(t, err)

	// re-importing our own export changes nothing and skips everything
	summary, err := service.Import(snapshot)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Imported: 0, Updated: 0, Skipped: 2}, summary)

	links, err := env.links.ListAll()
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestImportPeopleLastWriterWins(t *testing.T) {
	env := setupTestEnv(t)
	service := newTransfer(env)

	local := env.addPerson(t, "Ada (local)", 500)

	older := models.ExportData{
		SchemaVersion: models.SchemaVersion,
		People: []models.Person{
			{ID: local.ID, Name: "Ada (old)", CreatedAt: 100, UpdatedAt: 400},
		},
		Facets: []models.Facet{},
		Links:  []models.Link{},
	}
	summary, err := service.Import(&older)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Skipped: 1}, summary)

	kept, err := env.people.GetByID(local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada (local)", kept.Name)

	newer := models.ExportData{
		SchemaVersion: models.SchemaVersion,
		People: []models.Person{
			{ID: local.ID, Name: "Ada (new)", CreatedAt: 100, UpdatedAt: 600},
		},
		Facets: []models.Facet{},
		Links:  []models.Link{},
	}
	summary, err = service.Import(&newer)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Updated: 1}, summary)

	replaced, err := env.people.GetByID(local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada (new)", replaced.Name)
	assert.Equal(t, int64(600), replaced.UpdatedAt)
}

func TestImportFacetCollisionRemapsLinks(t *testing.T) {
	env := setupTestEnv(t)
	service := newTransfer(env)

	local := env.addFacet(t, "Coworker", "relationship")
	require.Equal(t, "relationship:coworker", local.NormalizedKey)

	data := models.ExportData{
		SchemaVersion: models.SchemaVersion,
		People: []models.Person{
			{ID: "p-import", Name: "Bob", CreatedAt: 1, UpdatedAt: 1},
		},
		Facets: []models.Facet{
			// same key under a different id and casing
			{ID: "f-import", Label: "coworker", Type: "Relationship", CreatedAt: 1},
		},
		Links: []models.Link{
			{PersonID: "p-import", FacetID: "f-import"},
		},
	}

	summary, err := service.Import(&data)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Imported: 1, Skipped: 1}, summary)

	// no second facet was created; the local label casing survives
	all, err := env.facets.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Coworker", all[0].Label)

	// the imported link now points at the local facet
	links, err := env.links.ListAll()
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, local.ID, links[0].FacetID)
	assert.Equal(t, "p-import", links[0].PersonID)
}

func TestImportDeduplicatesLinks(t *testing.T) {
	env := setupTestEnv(t)
	service := newTransfer(env)

	data := models.ExportData{
		SchemaVersion: models.SchemaVersion,
		People: []models.Person{
			{ID: "p1", Name: "Ada", CreatedAt: 1, UpdatedAt: 1},
		},
		Facets: []models.Facet{
			{ID: "f1", Label: "hiking", NormalizedKey: "tag:hiking", CreatedAt: 1},
		},
		Links: []models.Link{
			{PersonID: "p1", FacetID: "f1"},
			{PersonID: "p1", FacetID: "f1"},
			{PersonID: "p1", FacetID: "f1"},
		},
	}

	_, err := service.Import(&data)
	require.NoError(t, err)

	links, err := env.links.ListAll()
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestImportUnmappedLinkFacetIDPassesThrough(t *testing.T) {
	env := setupTestEnv(t)
	service := newTransfer(env)

	data := models.ExportData{
		SchemaVersion: models.SchemaVersion,
		People:        []models.Person{},
		Facets:        []models.Facet{},
		Links: []models.Link{
			{PersonID: "p1", FacetID: "f-unknown"},
		},
	}

	_, err := service.Import(&data)
	require.NoError(t, err)

	// dangling targets are tolerated; readers treat them as absent
	links, err := env.links.ListAll()
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "f-unknown", links[0].FacetID)
}

func TestImportComputesMissingNormalizedKey(t *testing.T) {
	env := setupTestEnv(t)
	service := newTransfer(env)

	local := env.addFacet(t, "Coworker", "relationship")

	data := models.ExportData{
		SchemaVersion: models.SchemaVersion,
		People:        []models.Person{},
		Facets: []models.Facet{
			{ID: "f-import", Label: "COWORKER!", Type: "relationship", CreatedAt: 1},
		},
		Links: []models.Link{},
	}

	summary, err := service.Import(&data)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Skipped: 1}, summary)

	all, err := env.facets.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, local.ID, all[0].ID)
}

func TestClearAll(t *testing.T) {
	env := setupTestEnv(t)
	service := newTransfer(env)

	ada := env.addPerson(t, "Ada", 100)
	facet := env.addFacet(t, "hiking", "")
	env.link(t, ada, facet)

	require.NoError(t, service.ClearAll())

	count, err := env.people.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	remainingFacets, err := env.facets.ListAll()
	require.NoError(t, err)
	assert.Empty(t, remainingFacets)

	links, err := env.links.ListAll()
	require.NoError(t, err)
	assert.Empty(t, links)
}
