package release

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/dorindex/internal/model"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func tag(to string, release bool, date *time.Time, what string) model.ReleaseTag {
	return model.ReleaseTag{To: to, Release: release, Date: date, What: what}
}

func TestResolve_LatestPerDestinationWins(t *testing.T) {
	// Given: a history of item directives
	item := []model.ReleaseTag{
		tag("Project", true, at("2016-11-16T22:52:35Z"), ""),
		tag("Project", false, at("2016-12-21T17:31:18Z"), ""),
		tag("Project", true, at("2021-05-12T21:05:21Z"), ""),
		tag("test_target", true, nil, ""),
		tag("test_nontarget", false, at("2016-12-16T22:52:35Z"), ""),
		tag("test_nontarget", true, at("2016-11-16T22:52:35Z"), ""),
	}

	// When: resolving without parents
	d := Resolve(nil, item)

	// Then: only the latest directive per destination counts
	assert.Equal(t, []string{"Project", "test_target"}, d.Released())
}

func TestResolve_NamedDates(t *testing.T) {
	item := []model.ReleaseTag{
		tag("Searchworks", true, at("2021-05-12T21:05:21Z"), "self"),
		tag("Earthworks", true, at("2016-11-16T22:52:35Z"), "self"),
	}

	d := Resolve(nil, item)

	assert.Equal(t, []string{"Searchworks", "Earthworks"}, d.Released())
	date, ok := d.Date("Earthworks")
	require.True(t, ok)
	assert.Equal(t, "2016-11-16T22:52:35Z", date.Format(time.RFC3339))
}

func TestResolve_DatedBeatsUndated(t *testing.T) {
	// Undated directive listed after a dated one must not win
	d := Resolve(nil, []model.ReleaseTag{
		tag("Searchworks", false, at("2020-01-01T00:00:00Z"), "self"),
		tag("Searchworks", true, nil, "self"),
	})
	assert.Empty(t, d.Released())

	// and the reverse order gives the same answer
	d = Resolve(nil, []model.ReleaseTag{
		tag("Searchworks", true, nil, "self"),
		tag("Searchworks", false, at("2020-01-01T00:00:00Z"), "self"),
	})
	assert.Empty(t, d.Released())
}

func TestResolve_EqualDatesFirstWins(t *testing.T) {
	same := at("2020-01-01T00:00:00Z")
	d := Resolve(nil, []model.ReleaseTag{
		tag("Searchworks", true, same, "self"),
		tag("Searchworks", false, same, "self"),
	})

	assert.Equal(t, []string{"Searchworks"}, d.Released())
}

func TestResolve_CollectionScopeOnlyInherited(t *testing.T) {
	// Given: a parent carrying one self and one collection directive
	parent := []model.ReleaseTag{
		tag("Project", true, at("2016-11-16T22:52:35Z"), "self"),
		tag("test_target", true, at("2016-12-21T17:31:18Z"), "collection"),
	}

	// When: resolving an item without own directives
	d := Resolve([][]model.ReleaseTag{parent}, nil)

	// Then: only the collection-scoped directive is inherited
	assert.Equal(t, []string{"test_target"}, d.Released())
}

func TestResolve_ItemOverridesCollection(t *testing.T) {
	parent := []model.ReleaseTag{
		tag("test_target", true, at("2016-12-21T17:31:18Z"), "collection"),
	}

	t.Run("undated item false beats newer collection true", func(t *testing.T) {
		d := Resolve([][]model.ReleaseTag{parent}, []model.ReleaseTag{tag("test_target", false, nil, "")})
		assert.Empty(t, d.Released())
	})

	t.Run("older item true beats collection false", func(t *testing.T) {
		withdrawn := []model.ReleaseTag{tag("test_target", false, at("2024-01-01T00:00:00Z"), "collection")}
		d := Resolve([][]model.ReleaseTag{withdrawn}, []model.ReleaseTag{tag("test_target", true, at("2001-01-01T00:00:00Z"), "self")})
		assert.Equal(t, []string{"test_target"}, d.Released())
	})

	t.Run("item true and collection true", func(t *testing.T) {
		d := Resolve([][]model.ReleaseTag{parent}, []model.ReleaseTag{tag("test_target", true, nil, "")})
		assert.Equal(t, []string{"test_target"}, d.Released())
	})
}

func TestResolve_LatestAcrossParents(t *testing.T) {
	first := []model.ReleaseTag{tag("Searchworks", true, at("2022-01-01T00:00:00Z"), "collection")}
	second := []model.ReleaseTag{tag("Searchworks", false, at("2021-01-01T00:00:00Z"), "collection")}

	d := Resolve([][]model.ReleaseTag{first, second}, nil)

	assert.Equal(t, []string{"Searchworks"}, d.Released())
	tagged, ok := d.Effective("Searchworks")
	require.True(t, ok)
	assert.Equal(t, "collection", tagged.What)
}

func TestResolve_Empty(t *testing.T) {
	d := Resolve(nil, nil)

	assert.Empty(t, d.Released())
	_, ok := d.Date("Searchworks")
	assert.False(t, ok)
}

func TestDecision_DateOnlyForReleased(t *testing.T) {
	d := Resolve(nil, []model.ReleaseTag{tag("Earthworks", false, at("2020-01-01T00:00:00Z"), "self")})

	_, ok := d.Date("Earthworks")
	assert.False(t, ok)
}
