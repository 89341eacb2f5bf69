package cluster_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trovedash/console/server/internal/cluster"
)

func TestGrowManager(t *testing.T) {
	t.Run("add list remove", func(t *testing.T) {
		m := cluster.NewGrowManager(time.Hour)

		assert.Empty(t, m.List("c1"))

		m.Add("c1", cluster.PendingInstance{ID: "a", FlavorID: "1", VolumeSizeGB: 1})
		m.Add("c1", cluster.PendingInstance{ID: "b", FlavorID: "2", VolumeSizeGB: 2})
		m.Add("c2", cluster.PendingInstance{ID: "c", FlavorID: "3"})

		assert.Equal(t, []cluster.PendingInstance{
			{ID: "a", FlavorID: "1", VolumeSizeGB: 1},
			{ID: "b", FlavorID: "2", VolumeSizeGB: 2},
		}, m.List("c1"))

		assert.Equal(t, 0, m.Remove("c1", "missing"))
		assert.Equal(t, 1, m.Remove("c1", "a"))
		assert.Equal(t, []cluster.PendingInstance{
			{ID: "b", FlavorID: "2", VolumeSizeGB: 2},
		}, m.List("c1"))

		assert.Equal(t, 1, m.Remove("c1", "b", "missing"))
		assert.Empty(t, m.List("c1"))
		assert.Len(t, m.List("c2"), 1)
	})

	t.Run("remove keeps instances added later", func(t *testing.T) {
		m := cluster.NewGrowManager(time.Hour)
		m.Add("c1", cluster.PendingInstance{ID: "a"})
		m.Add("c1", cluster.PendingInstance{ID: "b"})

		submitted := m.List("c1")
		m.Add("c1", cluster.PendingInstance{ID: "c"})

		assert.Equal(t, 2, m.Remove("c1", submitted[0].ID, submitted[1].ID))
		assert.Equal(t, []cluster.PendingInstance{{ID: "c"}}, m.List("c1"))
	})

	t.Run("list returns a copy", func(t *testing.T) {
		m := cluster.NewGrowManager(time.Hour)
		m.Add("c1", cluster.PendingInstance{ID: "a"})

		list := m.List("c1")
		list[0].ID = "changed"
		assert.Equal(t, "a", m.List("c1")[0].ID)
	})

	t.Run("expires", func(t *testing.T) {
		m := cluster.NewGrowManager(10 * time.Millisecond)
		m.Add("c1", cluster.PendingInstance{ID: "a"})

		assert.Eventually(t, func() bool {
			return len(m.List("c1")) == 0
		}, time.Second, 5*time.Millisecond)
	})
}
