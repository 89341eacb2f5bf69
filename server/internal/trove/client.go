package trove

import "context"

// MetadataClient lists the backend metadata used to populate launch forms.
type MetadataClient interface {
	ListDatastores(ctx context.Context) ([]Datastore, error)
	ListDatastoreVersions(ctx context.Context, datastoreName string) ([]DatastoreVersion, error)
	ListDatastoreFlavors(ctx context.Context, datastoreName, datastoreVersion string) ([]Flavor, error)
	ListFlavors(ctx context.Context) ([]Flavor, error)
	GetFlavor(ctx context.Context, flavorID string) (*Flavor, error)
	ListNetworksForTenant(ctx context.Context, tenantID string) ([]Network, error)
}

type ClusterClient interface {
	CreateCluster(ctx context.Context, req *ClusterCreateRequest) (string, error)
	ListClusters(ctx context.Context) ([]*Cluster, error)
	GetCluster(ctx context.Context, clusterID string) (*Cluster, error)
	GrowCluster(ctx context.Context, clusterID string, instances []ClusterInstanceSpec) error
	ShrinkCluster(ctx context.Context, clusterID string, instanceIDs []string) error
	SetClusterRootPassword(ctx context.Context, clusterID, password string) error
}

type InstanceClient interface {
	ListInstances(ctx context.Context) ([]*Instance, error)
	GetInstance(ctx context.Context, instanceID string) (*Instance, error)
	ListDatabases(ctx context.Context, instanceID string) ([]Database, error)
	ListUserAccess(ctx context.Context, instanceID, userName, host string) ([]Database, error)
	IsRootEnabled(ctx context.Context, instanceID string) (bool, error)
	ResizeVolume(ctx context.Context, instanceID string, sizeGB int) error
	ResizeInstance(ctx context.Context, instanceID, flavorID string) error
	CreateDatabase(ctx context.Context, instanceID string, req *DatabaseCreateRequest) error
	CreateUser(ctx context.Context, instanceID string, req *UserCreateRequest) error
	UpdateUser(ctx context.Context, instanceID, userName, host string, req *UserUpdateRequest) error
	PromoteToReplicaSource(ctx context.Context, instanceID string) error
}

// Client is the full Backend Service Client.
type Client interface {
	MetadataClient
	ClusterClient
	InstanceClient
}
