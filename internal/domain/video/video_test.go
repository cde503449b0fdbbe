package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	t.Run("structured json", func(t *testing.T) {
		loc := ParseLocation(`{"latitude":44.8,"longitude":20.4,"address":"Belgrade"}`)
		require.NotNil(t, loc)
		assert.Equal(t, LocationStructured, loc.Kind())
		assert.Equal(t, 44.8, *loc.Latitude)
		assert.Equal(t, 20.4, *loc.Longitude)
		assert.Equal(t, "Belgrade", loc.Address)
	})

	t.Run("broken json degrades to address", func(t *testing.T) {
		raw := `{"latitude":44.8,`
		loc := ParseLocation(raw)
		require.NotNil(t, loc)
		assert.Equal(t, LocationAddress, loc.Kind())
		assert.Equal(t, raw, loc.Address)
		assert.Nil(t, loc.Latitude)
		assert.Nil(t, loc.Longitude)
	})

	t.Run("plain text is an address", func(t *testing.T) {
		loc := ParseLocation("Kopaonik, Serbia")
		require.NotNil(t, loc)
		assert.Equal(t, LocationAddress, loc.Kind())
		assert.Equal(t, "Kopaonik, Serbia", loc.Address)
	})

	t.Run("empty is absent", func(t *testing.T) {
		loc := ParseLocation("")
		assert.Nil(t, loc)
		assert.Equal(t, LocationAbsent, loc.Kind())
	})
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, NormalizeTags([]string{"b", " a", "b", "", "c", "a "}))
	assert.Equal(t, []string{}, NormalizeTags(nil))
}

func TestPage_Normalize(t *testing.T) {
	p := Page{Page: -2, Size: 500, SortDir: "sideways"}.Normalize()
	assert.Equal(t, Page{Page: 0, Size: 10, SortBy: "createdAt", SortDir: SortDesc}, p)

	p = Page{Page: 3, Size: 25, SortBy: "title", SortDir: SortAsc}.Normalize()
	assert.Equal(t, Page{Page: 3, Size: 25, SortBy: "title", SortDir: SortAsc}, p)
}

func TestVideo_ToggleLike(t *testing.T) {
	v := Video{Likes: 3}

	v.ToggleLike()
	assert.True(t, v.IsLiked)
	assert.Equal(t, 4, v.Likes)

	v.ToggleLike()
	assert.False(t, v.IsLiked)
	assert.Equal(t, 3, v.Likes)
}
