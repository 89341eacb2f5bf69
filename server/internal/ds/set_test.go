package ds_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trovedash/console/server/internal/ds"
)

func TestSet(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		s := ds.Set[string]{}
		s.Add("mongodb")
		s.Add("vertica")
		s.Add("mongodb")

		assert.True(t, s.Has("mongodb"))
		assert.True(t, s.Has("vertica"))
		assert.False(t, s.Has("redis"))
		assert.Equal(t, 2, s.Size())
	})

	t.Run("ToSortedSlice", func(t *testing.T) {
		s := ds.NewSet("redis", "cassandra", "pxc")

		assert.Equal(t, []string{"cassandra", "pxc", "redis"}, s.ToSortedSlice(strings.Compare))
		assert.Empty(t, ds.NewSet[string]().ToSortedSlice(strings.Compare))
	})
}
