package launch_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovedash/console/server/internal/datastore"
	"github.com/trovedash/console/server/internal/form"
	"github.com/trovedash/console/server/internal/launch"
	"github.com/trovedash/console/server/internal/notice"
	"github.com/trovedash/console/server/internal/testutils"
	"github.com/trovedash/console/server/internal/trove"
	"github.com/trovedash/console/server/internal/utils"
)

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name     string
		fields   launch.Fields
		expected form.Errors
	}{
		{
			name:   "no datastore skips conditional checks",
			fields: launch.Fields{"name": "c1"},
		},
		{
			name: "vertica missing root password",
			fields: launch.Fields{
				"datastore":      "vertica-7.1",
				"vertica_flavor": "2",
			},
			expected: form.Errors{
				"root_password": "Password for root user must be specified.",
			},
		},
		{
			name: "vertica blank root password",
			fields: launch.Fields{
				"datastore":      "vertica-7.1",
				"vertica_flavor": "2",
				"root_password":  "   ",
			},
			expected: form.Errors{
				"root_password": "Password for root user must be specified.",
			},
		},
		{
			name: "vertica variant name missing everything",
			fields: launch.Fields{
				"datastore": "Vertica_CE-9.0",
			},
			expected: form.Errors{
				"vertica_flavor": "The flavor must be specified.",
				"root_password":  "Password for root user must be specified.",
			},
		},
		{
			name: "vertica ignores default fields",
			fields: launch.Fields{
				"datastore":      "vertica-7.1",
				"vertica_flavor": "2",
				"root_password":  "x",
				"num_instances":  "0",
				"num_shards":     "0",
			},
		},
		{
			name: "mongodb zero shards",
			fields: launch.Fields{
				"datastore":     "mongodb-3.0",
				"flavor":        "1",
				"num_instances": "3",
				"num_shards":    "0",
			},
			expected: form.Errors{
				"num_shards": "The number of shards must be greater than 1.",
			},
		},
		{
			name: "mongodb one shard",
			fields: launch.Fields{
				"datastore":     "mongodb-3.0",
				"flavor":        "1",
				"num_instances": "3",
				"num_shards":    "1",
			},
		},
		{
			name: "mongodb missing shards",
			fields: launch.Fields{
				"datastore":     "mongodb-3.0",
				"flavor":        "1",
				"num_instances": "3",
			},
			expected: form.Errors{
				"num_shards": "The number of shards must be greater than 1.",
			},
		},
		{
			name: "default zero instances",
			fields: launch.Fields{
				"datastore":     "mysql-5.6",
				"flavor":        "1",
				"num_instances": "0",
			},
			expected: form.Errors{
				"num_instances": "The number of instances must be greater than 1.",
			},
		},
		{
			name: "default one instance",
			fields: launch.Fields{
				"datastore":     "mysql-5.6",
				"flavor":        "1",
				"num_instances": "1",
			},
		},
		{
			name: "default ignores shards",
			fields: launch.Fields{
				"datastore":     "mysql-5.6",
				"flavor":        "1",
				"num_instances": "2",
				"num_shards":    "0",
			},
		},
		{
			name: "default errors are accumulated",
			fields: launch.Fields{
				"datastore":     "redis-3.0",
				"num_instances": "three",
			},
			expected: form.Errors{
				"flavor":        "The flavor must be specified.",
				"num_instances": "The number of instances must be greater than 1.",
			},
		},
		{
			name: "negative instances",
			fields: launch.Fields{
				"datastore":     "mysql-5.6",
				"flavor":        "1",
				"num_instances": "-2",
			},
			expected: form.Errors{
				"num_instances": "The number of instances must be greater than 1.",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := launch.NewBuilder(newFake(), nil, testutils.Logger(t))

			_, errs := b.Validate(tc.fields)
			if tc.expected == nil {
				assert.Empty(t, errs)
			} else {
				assert.Equal(t, tc.expected, errs)
			}
		})
	}
}

func TestBuildRequest(t *testing.T) {
	t.Run("vertica", func(t *testing.T) {
		b := launch.NewBuilder(newFake(), nil, testutils.Logger(t))

		validated, errs := b.Validate(launch.Fields{
			"datastore":      "vertica-7.1",
			"vertica_flavor": "2",
			"root_password":  "x",
		})
		require.Empty(t, errs)

		req := b.BuildRequest(validated)
		assert.Equal(t, "2", req.FlavorID)
		assert.Equal(t, utils.PointerTo("x"), req.RootPassword)
		assert.Equal(t, 3, req.NumInstances)
		assert.Equal(t, "vertica", req.Datastore)
		assert.Equal(t, "7.1", req.DatastoreVersion)
		assert.Equal(t, 1, req.VolumeSizeGB)
	})

	t.Run("vertica instance count", func(t *testing.T) {
		b := launch.NewBuilder(newFake(), nil, testutils.Logger(t))

		validated, errs := b.Validate(launch.Fields{
			"datastore":             "vertica-7.1",
			"vertica_flavor":        "2",
			"flavor":                "9",
			"root_password":         "x",
			"num_instances":         "1",
			"num_instances_vertica": "5",
		})
		require.Empty(t, errs)

		req := b.BuildRequest(validated)
		assert.Equal(t, "2", req.FlavorID)
		assert.Equal(t, 5, req.NumInstances)
	})

	t.Run("mongodb has no root password", func(t *testing.T) {
		b := launch.NewBuilder(newFake(), nil, testutils.Logger(t))

		validated, errs := b.Validate(launch.Fields{
			"name":           "c1",
			"datastore":      "mongodb-3.0",
			"flavor":         "3",
			"vertica_flavor": "2",
			"root_password":  "ignored",
			"num_instances":  "4",
			"num_shards":     "1",
			"volume":         "10",
			"network":        "net-1",
		})
		require.Empty(t, errs)

		assert.Equal(t, &trove.ClusterCreateRequest{
			Name:             "c1",
			VolumeSizeGB:     10,
			FlavorID:         "3",
			NumInstances:     4,
			Datastore:        "mongodb",
			DatastoreVersion: "3.0",
			NetworkID:        "net-1",
		}, b.BuildRequest(validated))
	})
}

func TestCleanFields(t *testing.T) {
	valid := func() launch.Fields {
		return launch.Fields{
			"name":          "c1",
			"datastore":     "mongodb-3.0",
			"flavor":        "3",
			"num_instances": "3",
			"num_shards":    "1",
			"volume":        "1",
			"network":       "net-1",
		}
	}

	for _, tc := range []struct {
		name     string
		modify   func(f launch.Fields)
		expected form.Errors
	}{
		{
			name:   "valid",
			modify: func(f launch.Fields) {},
		},
		{
			name: "missing name and datastore",
			modify: func(f launch.Fields) {
				delete(f, "name")
				delete(f, "datastore")
			},
			expected: form.Errors{
				"name":      "This field is required.",
				"datastore": "This field is required.",
			},
		},
		{
			name: "long name",
			modify: func(f launch.Fields) {
				f["name"] = strings.Repeat("a", 81)
			},
			expected: form.Errors{
				"name": "Ensure this value has at most 80 characters.",
			},
		},
		{
			name: "unknown datastore",
			modify: func(f launch.Fields) {
				f["datastore"] = "mysql-5.6"
			},
			expected: form.Errors{
				"datastore": "Select a valid choice. That choice is not one of the available choices.",
			},
		},
		{
			name: "negative volume",
			modify: func(f launch.Fields) {
				f["volume"] = "-1"
			},
			expected: form.Errors{
				"volume": "Ensure this value is greater than or equal to 0.",
			},
		},
		{
			name: "volume not a number",
			modify: func(f launch.Fields) {
				f["volume"] = "abc"
			},
			expected: form.Errors{
				"volume": "Enter a whole number.",
			},
		},
		{
			name: "zero volume",
			modify: func(f launch.Fields) {
				f["volume"] = "0"
			},
		},
		{
			name: "unknown network",
			modify: func(f launch.Fields) {
				f["network"] = "net-9"
			},
			expected: form.Errors{
				"network": "Select a valid choice. That choice is not one of the available choices.",
			},
		},
		{
			name: "flavor not offered for datastore",
			modify: func(f launch.Fields) {
				f["flavor"] = "4"
			},
			expected: form.Errors{
				"flavor": "Select a valid choice. That choice is not one of the available choices.",
			},
		},
		{
			name: "vertica minimum instances",
			modify: func(f launch.Fields) {
				f["datastore"] = "vertica-7.1"
				f["vertica_flavor"] = "4"
				f["num_instances_vertica"] = "2"
			},
			expected: form.Errors{
				"num_instances_vertica": "Ensure this value is greater than or equal to 3.",
			},
		},
		{
			name: "vertica count ignored for other datastores",
			modify: func(f launch.Fields) {
				f["num_instances_vertica"] = "2"
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := launch.NewBuilder(newFake(), nil, testutils.Logger(t))
			fields := valid()
			tc.modify(fields)

			errs := b.CleanFields(tenantContext(), fields)
			if tc.expected == nil {
				assert.Empty(t, errs)
			} else {
				assert.Equal(t, tc.expected, errs)
			}
		})
	}
}

func TestLaunch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := newFake()
		b := launch.NewBuilder(fake, nil, testutils.Logger(t))

		id, err := b.Launch(tenantContext(), launch.Fields{
			"name":           "analytics",
			"datastore":      "vertica-7.1",
			"vertica_flavor": "4",
			"root_password":  "secret",
			"volume":         "5",
		})
		require.NoError(t, err)
		assert.Equal(t, "cluster-1", id)

		require.Len(t, fake.Created, 1)
		assert.Equal(t, &trove.ClusterCreateRequest{
			Name:             "analytics",
			VolumeSizeGB:     5,
			FlavorID:         "4",
			NumInstances:     3,
			Datastore:        "vertica",
			DatastoreVersion: "7.1",
			RootPassword:     utils.PointerTo("secret"),
		}, fake.Created[0])
		assert.Equal(t, []notice.Notice{
			{Level: notice.LevelSuccess, Message: `Launched cluster "analytics"`},
		}, b.Notices())
	})

	t.Run("invalid input never reaches the backend", func(t *testing.T) {
		fake := newFake()
		b := launch.NewBuilder(fake, nil, testutils.Logger(t))

		_, err := b.Launch(tenantContext(), launch.Fields{
			"datastore": "mongodb-3.0",
			"flavor":    "3",
		})

		var fieldErrs form.Errors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, form.Errors{
			"name":          "This field is required.",
			"num_instances": "The number of instances must be greater than 1.",
			"num_shards":    "The number of shards must be greater than 1.",
		}, fieldErrs)
		assert.Equal(t, 0, fake.CallCount("CreateCluster"))
	})

	t.Run("backend failure", func(t *testing.T) {
		fake := newFake()
		fake.FailOn("CreateCluster", errors.New("Quota exceeded for instances."))
		b := launch.NewBuilder(fake, datastore.NewPolicy("mysql"), testutils.Logger(t))

		_, err := b.Launch(tenantContext(), launch.Fields{
			"name":          "c1",
			"datastore":     "mysql-5.6",
			"flavor":        "1",
			"num_instances": "2",
		})
		assert.ErrorContains(t, err, "failed to create cluster: Quota exceeded for instances.")
		assert.Equal(t, 1, fake.CallCount("CreateCluster"))
		assert.Equal(t, []notice.Notice{
			{Level: notice.LevelError, Message: "Unable to launch cluster. Quota exceeded for instances."},
		}, b.Notices())
	})
}
