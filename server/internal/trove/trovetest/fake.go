package trovetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/trovedash/console/server/internal/trove"
)

var _ trove.Client = (*Fake)(nil)

// Fake is an in-memory trove.Client. Errors can be injected per method name,
// and every call is counted so tests can assert on caching behavior.
type Fake struct {
	mu sync.Mutex

	Datastores       []trove.Datastore
	Versions         map[string][]trove.DatastoreVersion
	DatastoreFlavors map[string][]trove.Flavor
	Flavors          []trove.Flavor
	Networks         map[string][]trove.Network
	Clusters         []*trove.Cluster
	Instances        []*trove.Instance
	Databases        map[string][]trove.Database
	UserAccess       map[string][]trove.Database
	RootEnabled      map[string]bool

	Created       []*trove.ClusterCreateRequest
	Grown         map[string][]trove.ClusterInstanceSpec
	Shrunk        map[string][]string
	RootPasswords map[string]string
	VolumeResizes map[string]int
	FlavorResizes map[string]string
	Promoted      []string
	UserUpdates   map[string]trove.UserUpdateRequest

	errors map[string]error
	calls  map[string]int
}

func NewFake() *Fake {
	return &Fake{
		Versions:         map[string][]trove.DatastoreVersion{},
		DatastoreFlavors: map[string][]trove.Flavor{},
		Networks:         map[string][]trove.Network{},
		Databases:        map[string][]trove.Database{},
		UserAccess:       map[string][]trove.Database{},
		RootEnabled:      map[string]bool{},
		Grown:            map[string][]trove.ClusterInstanceSpec{},
		Shrunk:           map[string][]string{},
		RootPasswords:    map[string]string{},
		VolumeResizes:    map[string]int{},
		FlavorResizes:    map[string]string{},
		UserUpdates:      map[string]trove.UserUpdateRequest{},
		errors:           map[string]error{},
		calls:            map[string]int{},
	}
}

// FlavorKey is the DatastoreFlavors map key for a datastore version.
func FlavorKey(datastoreName, version string) string {
	return datastoreName + "/" + version
}

// AccessKey is the UserAccess map key for an instance user.
func AccessKey(instanceID, userName string) string {
	return instanceID + "/" + userName
}

// FailOn makes every subsequent call to the named method return err.
func (f *Fake) FailOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.errors[method] = err
}

// CallCount returns how many times the named method has been called.
func (f *Fake) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[method]
}

func (f *Fake) record(method string) error {
	f.calls[method]++
	return f.errors[method]
}

func (f *Fake) ListDatastores(_ context.Context) ([]trove.Datastore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ListDatastores"); err != nil {
		return nil, err
	}
	return append([]trove.Datastore(nil), f.Datastores...), nil
}

func (f *Fake) ListDatastoreVersions(_ context.Context, datastoreName string) ([]trove.DatastoreVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ListDatastoreVersions"); err != nil {
		return nil, err
	}
	return append([]trove.DatastoreVersion(nil), f.Versions[datastoreName]...), nil
}

func (f *Fake) ListDatastoreFlavors(_ context.Context, datastoreName, datastoreVersion string) ([]trove.Flavor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ListDatastoreFlavors"); err != nil {
		return nil, err
	}
	return append([]trove.Flavor(nil), f.DatastoreFlavors[FlavorKey(datastoreName, datastoreVersion)]...), nil
}

func (f *Fake) ListFlavors(_ context.Context) ([]trove.Flavor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ListFlavors"); err != nil {
		return nil, err
	}
	return append([]trove.Flavor(nil), f.Flavors...), nil
}

func (f *Fake) GetFlavor(_ context.Context, flavorID string) (*trove.Flavor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("GetFlavor"); err != nil {
		return nil, err
	}
	for _, flavor := range f.Flavors {
		if flavor.ID == flavorID {
			out := flavor
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: flavor %s", trove.ErrNotFound, flavorID)
}

func (f *Fake) ListNetworksForTenant(_ context.Context, tenantID string) ([]trove.Network, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ListNetworksForTenant"); err != nil {
		return nil, err
	}
	return append([]trove.Network(nil), f.Networks[tenantID]...), nil
}

func (f *Fake) CreateCluster(_ context.Context, req *trove.ClusterCreateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("CreateCluster"); err != nil {
		return "", err
	}
	f.Created = append(f.Created, req)
	id := fmt.Sprintf("cluster-%d", len(f.Created))
	f.Clusters = append(f.Clusters, &trove.Cluster{
		ID:   id,
		Name: req.Name,
		Datastore: trove.DatastoreRef{
			Type:    req.Datastore,
			Version: req.DatastoreVersion,
		},
	})
	return id, nil
}

func (f *Fake) ListClusters(_ context.Context) ([]*trove.Cluster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ListClusters"); err != nil {
		return nil, err
	}
	return append([]*trove.Cluster(nil), f.Clusters...), nil
}

func (f *Fake) GetCluster(_ context.Context, clusterID string) (*trove.Cluster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("GetCluster"); err != nil {
		return nil, err
	}
	for _, c := range f.Clusters {
		if c.ID == clusterID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: cluster %s", trove.ErrNotFound, clusterID)
}

func (f *Fake) GrowCluster(_ context.Context, clusterID string, instances []trove.ClusterInstanceSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("GrowCluster"); err != nil {
		return err
	}
	f.Grown[clusterID] = append(f.Grown[clusterID], instances...)
	return nil
}

func (f *Fake) ShrinkCluster(_ context.Context, clusterID string, instanceIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ShrinkCluster"); err != nil {
		return err
	}
	f.Shrunk[clusterID] = append(f.Shrunk[clusterID], instanceIDs...)
	return nil
}

func (f *Fake) SetClusterRootPassword(_ context.Context, clusterID, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("SetClusterRootPassword"); err != nil {
		return err
	}
	f.RootPasswords[clusterID] = password
	return nil
}

func (f *Fake) ListInstances(_ context.Context) ([]*trove.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ListInstances"); err != nil {
		return nil, err
	}
	return append([]*trove.Instance(nil), f.Instances...), nil
}

func (f *Fake) GetInstance(_ context.Context, instanceID string) (*trove.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("GetInstance"); err != nil {
		return nil, err
	}
	for _, inst := range f.Instances {
		if inst.ID == instanceID {
			return inst, nil
		}
	}
	return nil, fmt.Errorf("%w: instance %s", trove.ErrNotFound, instanceID)
}

func (f *Fake) ListDatabases(_ context.Context, instanceID string) ([]trove.Database, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ListDatabases"); err != nil {
		return nil, err
	}
	return append([]trove.Database(nil), f.Databases[instanceID]...), nil
}

func (f *Fake) ListUserAccess(_ context.Context, instanceID, userName, _ string) ([]trove.Database, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ListUserAccess"); err != nil {
		return nil, err
	}
	return append([]trove.Database(nil), f.UserAccess[AccessKey(instanceID, userName)]...), nil
}

func (f *Fake) IsRootEnabled(_ context.Context, instanceID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("IsRootEnabled"); err != nil {
		return false, err
	}
	return f.RootEnabled[instanceID], nil
}

func (f *Fake) ResizeVolume(_ context.Context, instanceID string, sizeGB int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ResizeVolume"); err != nil {
		return err
	}
	f.VolumeResizes[instanceID] = sizeGB
	return nil
}

func (f *Fake) ResizeInstance(_ context.Context, instanceID, flavorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ResizeInstance"); err != nil {
		return err
	}
	f.FlavorResizes[instanceID] = flavorID
	return nil
}

func (f *Fake) CreateDatabase(_ context.Context, instanceID string, req *trove.DatabaseCreateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("CreateDatabase"); err != nil {
		return err
	}
	f.Databases[instanceID] = append(f.Databases[instanceID], trove.Database{Name: req.Name})
	return nil
}

func (f *Fake) CreateUser(_ context.Context, instanceID string, req *trove.UserCreateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("CreateUser"); err != nil {
		return err
	}
	key := AccessKey(instanceID, req.Name)
	f.UserAccess[key] = []trove.Database{}
	for _, name := range req.Databases {
		f.UserAccess[key] = append(f.UserAccess[key], trove.Database{Name: name})
	}
	return nil
}

func (f *Fake) UpdateUser(_ context.Context, instanceID, userName, _ string, req *trove.UserUpdateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("UpdateUser"); err != nil {
		return err
	}
	f.UserUpdates[AccessKey(instanceID, userName)] = *req
	return nil
}

func (f *Fake) PromoteToReplicaSource(_ context.Context, instanceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("PromoteToReplicaSource"); err != nil {
		return err
	}
	f.Promoted = append(f.Promoted, instanceID)
	return nil
}
