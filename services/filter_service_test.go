package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acquainted-app/acquaintedbackend/models"
)

func personNames(people []models.Person) []string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}
	return names
}

// dataset: onlyA has facet A, onlyB has B, both has A and B, neither has none
type filterFixture struct {
	env            *testEnv
	service        *FilterService
	facetA, facetB models.Facet
}

func setupFilterFixture(t *testing.T) *filterFixture {
	env := setupTestEnv(t)

	onlyA := env.addPerson(t, "Only A", 40)
	onlyB := env.addPerson(t, "Only B", 30)
	both := env.addPerson(t, "Both", 20)
	env.addPerson(t, "Neither", 10)

	facetA := env.addFacet(t, "A", "")
	facetB := env.addFacet(t, "B", "")

	env.link(t, onlyA, facetA)
	env.link(t, both, facetA)
	env.link(t, onlyB, facetB)
	env.link(t, both, facetB)

	return &filterFixture{
		env:     env,
		service: NewFilterService(env.people, env.links),
		facetA:  facetA,
		facetB:  facetB,
	}
}

func TestFilterPeopleNoFacetsReturnsEveryone(t *testing.T) {
	f := setupFilterFixture(t)

	people, err := f.service.FilterPeople(FilterOptions{})
	require.NoError(t, err)
	// default sort is recency, newest first
	assert.Equal(t, []string{"Only A", "Only B", "Both", "Neither"}, personNames(people))
}

func TestFilterPeopleAndMode(t *testing.T) {
	f := setupFilterFixture(t)

	people, err := f.service.FilterPeople(FilterOptions{
		FacetIDs: []string{f.facetA.ID, f.facetB.ID},
		Mode:     FilterModeAnd,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Both"}, personNames(people))
}

func TestFilterPeopleAndModeSingleFacet(t *testing.T) {
	f := setupFilterFixture(t)

	people, err := f.service.FilterPeople(FilterOptions{
		FacetIDs: []string{f.facetA.ID},
		Mode:     FilterModeAnd,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Only A", "Both"}, personNames(people))
}

func TestFilterPeopleOrMode(t *testing.T) {
	f := setupFilterFixture(t)

	people, err := f.service.FilterPeople(FilterOptions{
		FacetIDs: []string{f.facetA.ID, f.facetB.ID},
		Mode:     FilterModeOr,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Only A", "Only B", "Both"}, personNames(people))
}

func TestFilterPeopleUnknownFacetMatchesNothing(t *testing.T) {
	f := setupFilterFixture(t)

	people, err := f.service.FilterPeople(FilterOptions{
		FacetIDs: []string{"ghost"},
		Mode:     FilterModeAnd,
	})
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestFilterPeopleTextSearch(t *testing.T) {
	f := setupFilterFixture(t)

	people, err := f.service.FilterPeople(FilterOptions{SearchText: "only"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Only A", "Only B"}, personNames(people))

	// search composes with facet filtering without changing membership rules
	people, err = f.service.FilterPeople(FilterOptions{
		SearchText: "only",
		FacetIDs:   []string{f.facetA.ID, f.facetB.ID},
		Mode:       FilterModeOr,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Only A", "Only B"}, personNames(people))

	// whitespace-only search is a no-op
	people, err = f.service.FilterPeople(FilterOptions{SearchText: "   "})
	require.NoError(t, err)
	assert.Len(t, people, 4)
}

func TestFilterPeopleSortByName(t *testing.T) {
	f := setupFilterFixture(t)

	people, err := f.service.FilterPeople(FilterOptions{Sort: SortByName})
	require.NoError(t, err)
	assert.Equal(t, []string{"Both", "Neither", "Only A", "Only B"}, personNames(people))
}

func TestFilterPeopleInvalidOptions(t *testing.T) {
	f := setupFilterFixture(t)

	_, err := f.service.FilterPeople(FilterOptions{Mode: "xor"})
	assert.Error(t, err)

	_, err = f.service.FilterPeople(FilterOptions{Sort: "shoe size"})
	assert.Error(t, err)
}

func TestFilterPeopleDropsStalePinnedFacets(t *testing.T) {
	env := setupTestEnv(t)
	service := NewFilterService(env.people, env.links)

	person := env.addPerson(t, "Ada", 10)
	linked := env.addFacet(t, "hiking", "")
	unlinked := env.addFacet(t, "archery", "")
	env.link(t, person, linked)
	env.link(t, person, unlinked)

	person.PinnedFacetIDs = []string{linked.ID, unlinked.ID}
	require.NoError(t, env.people.Update(&person))

	// the pin outlives the link in storage; reads must drop it
	require.NoError(t, env.links.RemoveLink(person.ID, unlinked.ID))

	people, err := service.FilterPeople(FilterOptions{})
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, []string{linked.ID}, people[0].PinnedFacetIDs)
}

func TestSearchPeopleDropsStalePinnedFacets(t *testing.T) {
	env := setupTestEnv(t)
	service := NewFilterService(env.people, env.links)

	person := env.addPerson(t, "Ada", 10)
	facet := env.addFacet(t, "hiking", "")
	env.link(t, person, facet)

	person.PinnedFacetIDs = []string{facet.ID}
	require.NoError(t, env.people.Update(&person))
	require.NoError(t, env.links.RemoveLink(person.ID, facet.ID))

	people, err := service.SearchPeople("ada")
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Empty(t, people[0].PinnedFacetIDs)
}

func TestFilterPeopleStableAcrossCalls(t *testing.T) {
	f := setupFilterFixture(t)

	opts := FilterOptions{FacetIDs: []string{f.facetA.ID, f.facetB.ID}, Mode: FilterModeOr}
	first, err := f.service.FilterPeople(opts)
	require.NoError(t, err)
	second, err := f.service.FilterPeople(opts)
	require.NoError(t, err)
	assert.Equal(t, personNames(first), personNames(second))
}
