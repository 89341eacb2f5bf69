package cluster_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovedash/console/server/internal/cluster"
	"github.com/trovedash/console/server/internal/form"
	"github.com/trovedash/console/server/internal/notice"
	"github.com/trovedash/console/server/internal/testutils"
	"github.com/trovedash/console/server/internal/trove"
	"github.com/trovedash/console/server/internal/trove/trovetest"
	"github.com/trovedash/console/server/internal/utils"
)

func newService(t *testing.T) (*cluster.Service, *trovetest.Fake) {
	t.Helper()

	fake := trovetest.NewFake()
	fake.Flavors = []trove.Flavor{
		{ID: "1", Name: "m1.tiny", RAM: 512},
		{ID: "2", Name: "m1.small", RAM: 2048},
	}
	fake.DatastoreFlavors[trovetest.FlavorKey("mongodb", "3.0")] = []trove.Flavor{
		{ID: "2", Name: "m1.small"},
		{ID: "1", Name: "m1.tiny"},
		{ID: "3", Name: "m1.medium"},
	}
	fake.Clusters = []*trove.Cluster{
		{
			ID:        "c1",
			Name:      "orders",
			Datastore: trove.DatastoreRef{Type: "mongodb", Version: "3.0"},
			Task:      trove.ClusterTask{ID: 1, Name: "NONE", Description: "No tasks for the cluster."},
			Instances: []trove.ClusterInstance{
				{
					ID:     "i1",
					Name:   "orders-member-1",
					Type:   "member",
					Status: "ACTIVE",
					Flavor: trove.ResourceRef{ID: "2"},
					Volume: trove.InstanceSize{Size: 2},
					IP:     []string{"10.0.0.4"},
				},
			},
			Created: time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC),
		},
	}

	svc := cluster.NewService(fake, cluster.NewGrowManager(time.Hour), testutils.Logger(t))
	return svc, fake
}

func TestServiceViews(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		svc, fake := newService(t)

		views, err := svc.List(context.Background())
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, &cluster.View{
			ID:               "c1",
			Name:             "orders",
			Datastore:        "mongodb",
			DatastoreVersion: "3.0",
			Task:             "NONE",
			TaskDescription:  "No tasks for the cluster.",
			Size:             1,
			Created:          "2026-10-01 12:30:00",
			Instances: []cluster.InstanceView{
				{
					ID:         "i1",
					Name:       "orders-member-1",
					Type:       "member",
					Status:     "ACTIVE",
					FlavorID:   "2",
					FlavorName: "m1.small",
					VolumeSize: "2.0 GiB",
					IP:         []string{"10.0.0.4"},
				},
			},
		}, views[0])
		assert.Equal(t, 1, fake.CallCount("ListFlavors"))
	})

	t.Run("flavor lookup failure keeps the view", func(t *testing.T) {
		svc, fake := newService(t)
		fake.FailOn("ListFlavors", errors.New("boom"))

		view, err := svc.Get(context.Background(), "c1")
		require.NoError(t, err)
		assert.Equal(t, "2", view.Instances[0].FlavorID)
		assert.Empty(t, view.Instances[0].FlavorName)
	})

	t.Run("not found", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, trove.ErrNotFound)
	})

	t.Run("list failure", func(t *testing.T) {
		svc, fake := newService(t)
		fake.FailOn("ListClusters", errors.New("boom"))

		_, err := svc.List(context.Background())
		assert.ErrorContains(t, err, "failed to list clusters: boom")
	})
}

func TestAddInstance(t *testing.T) {
	t.Run("form offers sorted datastore flavors", func(t *testing.T) {
		svc, _ := newService(t)
		var notices notice.List

		out, err := svc.AddInstanceForm(context.Background(), &notices, "c1")
		require.NoError(t, err)
		assert.Equal(t, []form.Choice{
			{Value: "3", Label: "m1.medium"},
			{Value: "2", Label: "m1.small"},
			{Value: "1", Label: "m1.tiny"},
		}, out.Flavors)
		assert.Equal(t, 1, out.Initial["volume"])
		assert.Empty(t, notices.Notices())
	})

	t.Run("form flavor failure", func(t *testing.T) {
		svc, fake := newService(t)
		fake.FailOn("ListDatastoreFlavors", errors.New("boom"))
		var notices notice.List

		out, err := svc.AddInstanceForm(context.Background(), &notices, "c1")
		require.NoError(t, err)
		assert.Empty(t, out.Flavors)
		assert.Equal(t, []notice.Notice{
			{Level: notice.LevelWarning, Message: "Unable to obtain flavors."},
		}, notices.Notices())
	})

	t.Run("stages pending instance", func(t *testing.T) {
		svc, _ := newService(t)
		var notices notice.List

		pending, err := svc.AddInstance(context.Background(), &notices, "c1", cluster.AddInstanceInput{
			FlavorID:     "2",
			VolumeSizeGB: utils.PointerTo(5),
			Name:         "extra",
			Type:         "query_router",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, pending.ID)
		assert.Equal(t, "m1.small", pending.FlavorName)

		assert.Equal(t, []cluster.PendingInstance{*pending}, svc.PendingInstances("c1"))
	})

	t.Run("validation", func(t *testing.T) {
		svc, fake := newService(t)
		var notices notice.List

		_, err := svc.AddInstance(context.Background(), &notices, "c1", cluster.AddInstanceInput{
			VolumeSizeGB: utils.PointerTo(-1),
		})
		var errs form.Errors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, form.Errors{
			"flavor": "This field is required.",
			"volume": "Ensure this value is greater than or equal to 0.",
		}, errs)

		_, err = svc.AddInstance(context.Background(), &notices, "c1", cluster.AddInstanceInput{FlavorID: "1"})
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, form.Errors{"volume": "This field is required."}, errs)
		assert.Equal(t, 0, fake.CallCount("GetFlavor"))
	})

	t.Run("unknown flavor", func(t *testing.T) {
		svc, _ := newService(t)
		var notices notice.List

		_, err := svc.AddInstance(context.Background(), &notices, "c1", cluster.AddInstanceInput{
			FlavorID:     "9",
			VolumeSizeGB: utils.PointerTo(1),
		})
		assert.ErrorIs(t, err, trove.ErrNotFound)
		assert.Empty(t, svc.PendingInstances("c1"))
		require.Equal(t, 1, notices.Len())
		assert.Equal(t, notice.LevelError, notices.Notices()[0].Level)
		assert.Contains(t, notices.Notices()[0].Message, "Unable to grow cluster. not found")
	})
}

// stagingClient stages another instance while a grow request is being
// handled by the backend.
type stagingClient struct {
	*trovetest.Fake
	grow *cluster.GrowManager
}

func (c *stagingClient) GrowCluster(ctx context.Context, clusterID string, instances []trove.ClusterInstanceSpec) error {
	c.grow.Add(clusterID, cluster.PendingInstance{ID: "staged-during-grow", FlavorID: "1"})
	return c.Fake.GrowCluster(ctx, clusterID, instances)
}

func TestGrow(t *testing.T) {
	stage := func(t *testing.T, svc *cluster.Service) {
		t.Helper()
		for _, flavorID := range []string{"1", "2"} {
			_, err := svc.AddInstance(context.Background(), &notice.List{}, "c1", cluster.AddInstanceInput{
				FlavorID:     flavorID,
				VolumeSizeGB: utils.PointerTo(1),
			})
			require.NoError(t, err)
		}
	}

	t.Run("submits and clears", func(t *testing.T) {
		svc, fake := newService(t)
		stage(t, svc)
		var notices notice.List

		require.NoError(t, svc.Grow(context.Background(), &notices, "c1"))
		assert.Equal(t, []trove.ClusterInstanceSpec{
			{FlavorID: "1", VolumeSizeGB: 1},
			{FlavorID: "2", VolumeSizeGB: 1},
		}, fake.Grown["c1"])
		assert.Empty(t, svc.PendingInstances("c1"))
		assert.Equal(t, notice.LevelSuccess, notices.Notices()[0].Level)
	})

	t.Run("keeps instances staged while the grow is in flight", func(t *testing.T) {
		_, fake := newService(t)
		grow := cluster.NewGrowManager(time.Hour)
		client := &stagingClient{Fake: fake, grow: grow}
		svc := cluster.NewService(client, grow, testutils.Logger(t))
		stage(t, svc)

		require.NoError(t, svc.Grow(context.Background(), &notice.List{}, "c1"))
		assert.Len(t, fake.Grown["c1"], 2)
		assert.Equal(t, []cluster.PendingInstance{{ID: "staged-during-grow", FlavorID: "1"}}, svc.PendingInstances("c1"))
	})

	t.Run("failure keeps pending instances", func(t *testing.T) {
		svc, fake := newService(t)
		stage(t, svc)
		fake.FailOn("GrowCluster", errors.New("Cluster is busy"))
		var notices notice.List

		err := svc.Grow(context.Background(), &notices, "c1")
		assert.ErrorContains(t, err, "Cluster is busy")
		assert.Len(t, svc.PendingInstances("c1"), 2)
		assert.Equal(t, []notice.Notice{
			{Level: notice.LevelError, Message: "Unable to grow cluster. Cluster is busy"},
		}, notices.Notices())
	})

	t.Run("nothing pending", func(t *testing.T) {
		svc, fake := newService(t)

		err := svc.Grow(context.Background(), &notice.List{}, "c1")
		assert.ErrorIs(t, err, cluster.ErrNoPendingInstances)
		assert.Equal(t, 0, fake.CallCount("GrowCluster"))
	})

	t.Run("remove pending", func(t *testing.T) {
		svc, _ := newService(t)
		stage(t, svc)

		pending := svc.PendingInstances("c1")
		assert.True(t, svc.RemovePendingInstance("c1", pending[0].ID))
		assert.False(t, svc.RemovePendingInstance("c1", pending[0].ID))
		assert.Len(t, svc.PendingInstances("c1"), 1)
	})
}

func TestShrink(t *testing.T) {
	svc, fake := newService(t)

	err := svc.Shrink(context.Background(), &notice.List{}, "c1", nil)
	assert.ErrorIs(t, err, cluster.ErrNoInstancesSelected)

	var notices notice.List
	require.NoError(t, svc.Shrink(context.Background(), &notices, "c1", []string{"i1"}))
	assert.Equal(t, []string{"i1"}, fake.Shrunk["c1"])
	assert.Equal(t, 1, notices.Len())

	fake.FailOn("ShrinkCluster", errors.New("boom"))
	notices = notice.List{}
	assert.Error(t, svc.Shrink(context.Background(), &notices, "c1", []string{"i1"}))
	assert.Equal(t, "Unable to shrink cluster. boom", notices.Notices()[0].Message)
}

func TestResetPassword(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, fake := newService(t)
		var notices notice.List

		require.NoError(t, svc.ResetPassword(context.Background(), &notices, "c1", "s3cret"))
		assert.Equal(t, "s3cret", fake.RootPasswords["c1"])
		assert.Equal(t, []notice.Notice{
			{Level: notice.LevelSuccess, Message: `Root password updated for cluster "c1"`},
		}, notices.Notices())
	})

	t.Run("password required", func(t *testing.T) {
		svc, fake := newService(t)

		err := svc.ResetPassword(context.Background(), &notice.List{}, "c1", "")
		var errs form.Errors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, form.Errors{"password": "This field is required."}, errs)
		assert.Equal(t, 0, fake.CallCount("SetClusterRootPassword"))
	})

	t.Run("backend failure", func(t *testing.T) {
		svc, fake := newService(t)
		fake.FailOn("SetClusterRootPassword", errors.New("Cluster is busy"))
		var notices notice.List

		err := svc.ResetPassword(context.Background(), &notices, "c1", "s3cret")
		assert.Error(t, err)
		assert.Equal(t, []notice.Notice{
			{Level: notice.LevelError, Message: "Unable to reset password. Cluster is busy"},
		}, notices.Notices())
	})
}
