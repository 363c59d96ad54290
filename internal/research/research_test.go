package research

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtroom/internal/types"
)

func loadCat(t *testing.T) *Catalogue {
	t.Helper()
	cat, err := LoadCatalogue()
	require.NoError(t, err)
	require.NotEmpty(t, cat.entries)
	return cat
}

func TestCatalogueLoads(t *testing.T) {
	cat := loadCat(t)
	for _, e := range cat.entries {
		assert.NotEmpty(t, e.ID)
		assert.NotEmpty(t, e.Citation)
		assert.NotEmpty(t, e.Keywords)
		assert.Contains(t, []Bucket{BucketCore, BucketSupporting, BucketPeripheral}, e.Bucket)
	}
}

func TestSearchByKeywordContainment(t *testing.T) {
	s := NewState(loadCat(t), 5)
	res, err := s.Search("breach of contract damages")
	require.NoError(t, err)
	require.NotEmpty(t, res.Entries)
	assert.Equal(t, "meril-v-okafor", res.Entries[0].ID, "best keyword match ranks first")
	assert.Equal(t, 4, s.SearchesLeft())

	st, ok := s.Discovered("meril-v-okafor")
	require.True(t, ok)
	assert.Equal(t, StatusDiscovered, st)
}

func TestSearchBudgetExhaustion(t *testing.T) {
	s := NewState(loadCat(t), 1)
	_, err := s.Search("contract")
	require.NoError(t, err)
	_, err = s.Search("hearsay")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrResourceExhausted))
	assert.Equal(t, 0, s.SearchesLeft())
}

func TestOveruseCostsPatience(t *testing.T) {
	s := NewState(loadCat(t), 4)
	res, err := s.Search("contract")
	require.NoError(t, err)
	assert.Zero(t, res.PatienceCost, "early searches are tolerated")

	_, err = s.Search("hearsay")
	require.NoError(t, err)
	res, err = s.Search("damages")
	require.NoError(t, err)
	assert.Greater(t, res.PatienceCost, 0, "past half the budget the court's patience frays")
}

func TestMarkCitedRequiresDiscovery(t *testing.T) {
	s := NewState(loadCat(t), 5)
	_, err := s.MarkCited("state-v-harmon")
	require.Error(t, err)

	_, err = s.Search("hearsay exception")
	require.NoError(t, err)
	e, err := s.MarkCited("state-v-harmon")
	require.NoError(t, err)
	assert.Equal(t, "State v. Harmon (1998)", e.Citation)

	st, _ := s.Discovered("state-v-harmon")
	assert.Equal(t, StatusCited, st)
}

func TestDisplayView(t *testing.T) {
	s := NewState(loadCat(t), 5)
	_, err := s.Search("contract breach")
	require.NoError(t, err)
	v := s.DisplayView()
	assert.Equal(t, 1, v.SearchesUsed)
	assert.Equal(t, 4, v.SearchesLeft)
	require.Len(t, v.Searches, 1)
	assert.NotEmpty(t, v.Discovered)
}
