package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/acquainted-app/acquaintedbackend/database"
	"github.com/acquainted-app/acquaintedbackend/models"
	"github.com/acquainted-app/acquaintedbackend/repository"
)

type testEnv struct {
	db     *gorm.DB
	people *repository.PersonRepository
	facets *repository.FacetRepository
	links  *repository.LinkRepository
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrateModels(db))

	return &testEnv{
		db:     db,
		people: repository.NewPersonRepository(db),
		facets: repository.NewFacetRepository(db),
		links:  repository.NewLinkRepository(db),
	}
}

func (e *testEnv) addPerson(t *testing.T, name string, updatedAt int64) models.Person {
	t.Helper()
	person := models.Person{Name: name, CreatedAt: updatedAt, UpdatedAt: updatedAt}
	require.NoError(t, e.people.Create(&person))
	return person
}

func (e *testEnv) addFacet(t *testing.T, label, facetType string) models.Facet {
	t.Helper()
	facet, err := e.facets.FindOrCreate(label, facetType)
	require.NoError(t, err)
	return *facet
}

func (e *testEnv) link(t *testing.T, person models.Person, facet models.Facet) {
	t.Helper()
	require.NoError(t, e.links.AddLink(person.ID, facet.ID))
}
