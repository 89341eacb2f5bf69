package trove

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack"
	"github.com/gophercloud/gophercloud/openstack/db/v1/databases"
	"github.com/gophercloud/gophercloud/openstack/db/v1/datastores"
	"github.com/gophercloud/gophercloud/openstack/db/v1/users"
	"github.com/gophercloud/gophercloud/openstack/networking/v2/networks"
	"github.com/rs/zerolog"

	"github.com/trovedash/console/server/internal/config"
	"github.com/trovedash/console/server/internal/utils"
)

var _ Client = (*OpenStackClient)(nil)

// Trove omits the zone designator from its timestamps.
const troveTimeLayout = "2006-01-02T15:04:05"

// OpenStackClient talks to the Trove v1 API, and to Neutron for tenant
// networks. network is nil when the catalog has no network endpoint.
type OpenStackClient struct {
	db      *gophercloud.ServiceClient
	network *gophercloud.ServiceClient
}

func NewOpenStackClient(db, network *gophercloud.ServiceClient) *OpenStackClient {
	return &OpenStackClient{
		db:      db,
		network: network,
	}
}

// Connect authenticates against Keystone and resolves the database and
// network endpoints from the service catalog.
func Connect(cfg config.OpenStack, logger zerolog.Logger) (*OpenStackClient, error) {
	opts := gophercloud.AuthOptions{
		IdentityEndpoint: cfg.IdentityEndpoint,
		Username:         cfg.Username,
		UserID:           cfg.UserID,
		Password:         cfg.Password,
		TenantID:         cfg.ProjectID,
		TenantName:       cfg.ProjectName,
		DomainID:         cfg.DomainID,
		DomainName:       cfg.DomainName,
		TokenID:          cfg.TokenID,
		AllowReauth:      cfg.AllowReauth,
	}
	provider, err := openstack.AuthenticatedClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", translateErr(err))
	}

	eo := gophercloud.EndpointOpts{Region: cfg.Region}
	db, err := openstack.NewDBV1(provider, eo)
	if err != nil {
		return nil, fmt.Errorf("failed to locate database endpoint: %w", err)
	}

	network, err := openstack.NewNetworkV2(provider, eo)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("network endpoint not found, network selection will be disabled")
		network = nil
	}

	return NewOpenStackClient(db, network), nil
}

func (c *OpenStackClient) ListDatastores(ctx context.Context) ([]Datastore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pages, err := datastores.List(c.db).AllPages()
	if err != nil {
		return nil, fmt.Errorf("failed to list datastores: %w", translateErr(err))
	}
	list, err := datastores.ExtractDatastores(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to extract datastores: %w", err)
	}
	out := make([]Datastore, len(list))
	for i, d := range list {
		out[i] = Datastore{ID: d.ID, Name: d.Name}
	}
	return out, nil
}

func (c *OpenStackClient) ListDatastoreVersions(ctx context.Context, datastoreName string) ([]DatastoreVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pages, err := datastores.ListVersions(c.db, datastoreName).AllPages()
	if err != nil {
		return nil, fmt.Errorf("failed to list versions for datastore %q: %w", datastoreName, translateErr(err))
	}
	list, err := datastores.ExtractVersions(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to extract datastore versions: %w", err)
	}
	out := make([]DatastoreVersion, len(list))
	for i, v := range list {
		out[i] = DatastoreVersion{ID: v.ID, Name: v.Name}
	}
	return out, nil
}

type flavorBody struct {
	ID    FlexibleID `json:"id"`
	StrID string     `json:"str_id"`
	Name  string     `json:"name"`
	RAM   int        `json:"ram"`
}

func (f flavorBody) toFlavor() Flavor {
	id := f.StrID
	if id == "" {
		id = f.ID.String()
	}
	return Flavor{ID: id, Name: f.Name, RAM: f.RAM}
}

func toFlavors(in []flavorBody) []Flavor {
	out := make([]Flavor, len(in))
	for i, f := range in {
		out[i] = f.toFlavor()
	}
	return out
}

func (c *OpenStackClient) ListDatastoreFlavors(ctx context.Context, datastoreName, datastoreVersion string) ([]Flavor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp struct {
		Flavors []flavorBody `json:"flavors"`
	}
	u := c.db.ServiceURL("datastores", datastoreName, "versions", datastoreVersion, "flavors")
	if _, err := c.db.Get(u, &resp, nil); err != nil {
		return nil, fmt.Errorf("failed to list flavors for %s %s: %w", datastoreName, datastoreVersion, translateErr(err))
	}
	return toFlavors(resp.Flavors), nil
}

func (c *OpenStackClient) ListFlavors(ctx context.Context) ([]Flavor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp struct {
		Flavors []flavorBody `json:"flavors"`
	}
	if _, err := c.db.Get(c.db.ServiceURL("flavors"), &resp, nil); err != nil {
		return nil, fmt.Errorf("failed to list flavors: %w", translateErr(err))
	}
	return toFlavors(resp.Flavors), nil
}

func (c *OpenStackClient) GetFlavor(ctx context.Context, flavorID string) (*Flavor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp struct {
		Flavor flavorBody `json:"flavor"`
	}
	if _, err := c.db.Get(c.db.ServiceURL("flavors", flavorID), &resp, nil); err != nil {
		return nil, fmt.Errorf("failed to get flavor %q: %w", flavorID, translateErr(err))
	}
	flavor := resp.Flavor.toFlavor()
	return &flavor, nil
}

func (c *OpenStackClient) ListNetworksForTenant(ctx context.Context, tenantID string) ([]Network, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.network == nil {
		return nil, ErrServiceUnavailable
	}
	pages, err := networks.List(c.network, networks.ListOpts{TenantID: tenantID}).AllPages()
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", translateErr(err))
	}
	list, err := networks.ExtractNetworks(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to extract networks: %w", err)
	}
	out := make([]Network, len(list))
	for i, n := range list {
		out[i] = Network{ID: n.ID, Name: n.Name}
	}
	return out, nil
}

type instanceBody struct {
	FlavorRef string      `json:"flavorRef"`
	Volume    *volumeBody `json:"volume,omitempty"`
	NICs      []nicBody   `json:"nics,omitempty"`
	Name      string      `json:"name,omitempty"`
	Type      string      `json:"type,omitempty"`
	RelatedTo string      `json:"related_to,omitempty"`
}

type volumeBody struct {
	Size int `json:"size"`
}

type nicBody struct {
	NetID string `json:"net-id"`
}

func volumeFor(sizeGB int) *volumeBody {
	if sizeGB <= 0 {
		return nil
	}
	return &volumeBody{Size: sizeGB}
}

type clusterCreateBody struct {
	Name         string         `json:"name"`
	Datastore    DatastoreRef   `json:"datastore"`
	Instances    []instanceBody `json:"instances"`
	RootPassword string         `json:"root_password,omitempty"`
}

func (c *OpenStackClient) CreateCluster(ctx context.Context, req *ClusterCreateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	instances := make([]instanceBody, req.NumInstances)
	for i := range instances {
		instances[i] = instanceBody{
			FlavorRef: req.FlavorID,
			Volume:    volumeFor(req.VolumeSizeGB),
		}
		if req.NetworkID != "" {
			instances[i].NICs = []nicBody{{NetID: req.NetworkID}}
		}
	}
	body := map[string]any{
		"cluster": clusterCreateBody{
			Name: req.Name,
			Datastore: DatastoreRef{
				Type:    req.Datastore,
				Version: req.DatastoreVersion,
			},
			Instances:    instances,
			RootPassword: utils.FromPointer(req.RootPassword),
		},
	}
	var resp struct {
		Cluster clusterResponse `json:"cluster"`
	}
	_, err := c.db.Post(c.db.ServiceURL("clusters"), body, &resp, &gophercloud.RequestOpts{
		OkCodes: []int{http.StatusOK, http.StatusCreated, http.StatusAccepted},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create cluster: %w", translateErr(err))
	}
	return resp.Cluster.ID, nil
}

type clusterResponse struct {
	Cluster
	CreatedAt string `json:"created"`
	UpdatedAt string `json:"updated"`
}

func (r clusterResponse) toCluster() *Cluster {
	cluster := r.Cluster
	cluster.Created = parseTime(r.CreatedAt)
	cluster.Updated = parseTime(r.UpdatedAt)
	return &cluster
}

func (c *OpenStackClient) ListClusters(ctx context.Context) ([]*Cluster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp struct {
		Clusters []clusterResponse `json:"clusters"`
	}
	if _, err := c.db.Get(c.db.ServiceURL("clusters"), &resp, nil); err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", translateErr(err))
	}
	out := make([]*Cluster, len(resp.Clusters))
	for i, cl := range resp.Clusters {
		out[i] = cl.toCluster()
	}
	return out, nil
}

func (c *OpenStackClient) GetCluster(ctx context.Context, clusterID string) (*Cluster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp struct {
		Cluster clusterResponse `json:"cluster"`
	}
	if _, err := c.db.Get(c.db.ServiceURL("clusters", clusterID), &resp, nil); err != nil {
		return nil, fmt.Errorf("failed to get cluster %q: %w", clusterID, translateErr(err))
	}
	return resp.Cluster.toCluster(), nil
}

func (c *OpenStackClient) GrowCluster(ctx context.Context, clusterID string, instances []ClusterInstanceSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	grow := make([]instanceBody, len(instances))
	for i, inst := range instances {
		grow[i] = instanceBody{
			FlavorRef: inst.FlavorID,
			Volume:    volumeFor(inst.VolumeSizeGB),
			Name:      inst.Name,
			Type:      inst.Type,
			RelatedTo: inst.RelatedTo,
		}
	}
	return c.clusterAction(clusterID, map[string]any{"grow": grow}, "grow")
}

func (c *OpenStackClient) ShrinkCluster(ctx context.Context, clusterID string, instanceIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	shrink := make([]map[string]string, len(instanceIDs))
	for i, id := range instanceIDs {
		shrink[i] = map[string]string{"id": id}
	}
	return c.clusterAction(clusterID, map[string]any{"shrink": shrink}, "shrink")
}

func (c *OpenStackClient) clusterAction(clusterID string, body map[string]any, action string) error {
	_, err := c.db.Post(c.db.ServiceURL("clusters", clusterID), body, nil, &gophercloud.RequestOpts{
		OkCodes: []int{http.StatusOK, http.StatusAccepted},
	})
	if err != nil {
		return fmt.Errorf("failed to %s cluster %q: %w", action, clusterID, translateErr(err))
	}
	return nil
}

func (c *OpenStackClient) SetClusterRootPassword(ctx context.Context, clusterID, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := map[string]any{"password": password}
	_, err := c.db.Post(c.db.ServiceURL("clusters", clusterID, "root"), body, nil, &gophercloud.RequestOpts{
		OkCodes: []int{http.StatusOK},
	})
	if err != nil {
		return fmt.Errorf("failed to set root password for cluster %q: %w", clusterID, translateErr(err))
	}
	return nil
}

type instanceResponse struct {
	Instance
	CreatedAt string `json:"created"`
	UpdatedAt string `json:"updated"`
}

func (r instanceResponse) toInstance() *Instance {
	instance := r.Instance
	instance.Created = parseTime(r.CreatedAt)
	instance.Updated = parseTime(r.UpdatedAt)
	return &instance
}

func (c *OpenStackClient) ListInstances(ctx context.Context) ([]*Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp struct {
		Instances []instanceResponse `json:"instances"`
	}
	if _, err := c.db.Get(c.db.ServiceURL("instances"), &resp, nil); err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", translateErr(err))
	}
	out := make([]*Instance, len(resp.Instances))
	for i, inst := range resp.Instances {
		out[i] = inst.toInstance()
	}
	return out, nil
}

func (c *OpenStackClient) GetInstance(ctx context.Context, instanceID string) (*Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp struct {
		Instance instanceResponse `json:"instance"`
	}
	if _, err := c.db.Get(c.db.ServiceURL("instances", instanceID), &resp, nil); err != nil {
		return nil, fmt.Errorf("failed to get instance %q: %w", instanceID, translateErr(err))
	}
	return resp.Instance.toInstance(), nil
}

func (c *OpenStackClient) ListDatabases(ctx context.Context, instanceID string) ([]Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pages, err := databases.List(c.db, instanceID).AllPages()
	if err != nil {
		return nil, fmt.Errorf("failed to list databases for instance %q: %w", instanceID, translateErr(err))
	}
	list, err := databases.ExtractDBs(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to extract databases: %w", err)
	}
	out := make([]Database, len(list))
	for i, d := range list {
		out[i] = Database{Name: d.Name}
	}
	return out, nil
}

func (c *OpenStackClient) ListUserAccess(ctx context.Context, instanceID, userName, host string) ([]Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp struct {
		Databases []Database `json:"databases"`
	}
	u := c.db.ServiceURL("instances", instanceID, "users", userHostPath(userName, host), "databases")
	if _, err := c.db.Get(u, &resp, nil); err != nil {
		return nil, fmt.Errorf("failed to list access for user %q: %w", userName, translateErr(err))
	}
	return resp.Databases, nil
}

// userHostPath encodes a user and optional host the way Trove expects them
// in the users resource path.
func userHostPath(userName, host string) string {
	if host == "" {
		return url.PathEscape(userName)
	}
	return url.PathEscape(userName + "@" + host)
}

func (c *OpenStackClient) IsRootEnabled(ctx context.Context, instanceID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var resp struct {
		RootEnabled bool `json:"rootEnabled"`
	}
	if _, err := c.db.Get(c.db.ServiceURL("instances", instanceID, "root"), &resp, nil); err != nil {
		return false, fmt.Errorf("failed to check root status for instance %q: %w", instanceID, translateErr(err))
	}
	return resp.RootEnabled, nil
}

func (c *OpenStackClient) ResizeVolume(ctx context.Context, instanceID string, sizeGB int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := map[string]any{
		"resize": map[string]any{
			"volume": volumeBody{Size: sizeGB},
		},
	}
	return c.instanceAction(instanceID, body, "resize volume of")
}

func (c *OpenStackClient) ResizeInstance(ctx context.Context, instanceID, flavorID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := map[string]any{
		"resize": map[string]any{
			"flavorRef": flavorID,
		},
	}
	return c.instanceAction(instanceID, body, "resize")
}

func (c *OpenStackClient) CreateDatabase(ctx context.Context, instanceID string, req *DatabaseCreateRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := databases.BatchCreateOpts{
		{Name: req.Name, CharSet: req.CharSet, Collate: req.Collate},
	}
	if err := databases.Create(c.db, instanceID, opts).ExtractErr(); err != nil {
		return fmt.Errorf("failed to create database %q on instance %q: %w", req.Name, instanceID, translateErr(err))
	}
	return nil
}

func (c *OpenStackClient) CreateUser(ctx context.Context, instanceID string, req *UserCreateRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	grants := make(databases.BatchCreateOpts, len(req.Databases))
	for i, name := range req.Databases {
		grants[i] = databases.CreateOpts{Name: name}
	}
	opts := users.BatchCreateOpts{
		{
			Name:      req.Name,
			Password:  req.Password,
			Host:      req.Host,
			Databases: grants,
		},
	}
	if err := users.Create(c.db, instanceID, opts).ExtractErr(); err != nil {
		return fmt.Errorf("failed to create user %q on instance %q: %w", req.Name, instanceID, translateErr(err))
	}
	return nil
}

func (c *OpenStackClient) UpdateUser(ctx context.Context, instanceID, userName, host string, req *UserUpdateRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	user := map[string]any{}
	if req.Name != "" {
		user["name"] = req.Name
	}
	if req.Password != "" {
		user["password"] = req.Password
	}
	if req.Host != "" {
		user["host"] = req.Host
	}
	u := c.db.ServiceURL("instances", instanceID, "users", userHostPath(userName, host))
	_, err := c.db.Put(u, map[string]any{"user": user}, nil, &gophercloud.RequestOpts{
		OkCodes: []int{http.StatusAccepted},
	})
	if err != nil {
		return fmt.Errorf("failed to update user %q on instance %q: %w", userName, instanceID, translateErr(err))
	}
	return nil
}

func (c *OpenStackClient) PromoteToReplicaSource(ctx context.Context, instanceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := map[string]any{
		"promote_to_replica_source": map[string]any{},
	}
	return c.instanceAction(instanceID, body, "promote")
}

func (c *OpenStackClient) instanceAction(instanceID string, body map[string]any, action string) error {
	_, err := c.db.Post(c.db.ServiceURL("instances", instanceID, "action"), body, nil, &gophercloud.RequestOpts{
		OkCodes: []int{http.StatusAccepted},
	})
	if err != nil {
		return fmt.Errorf("failed to %s instance %q: %w", action, instanceID, translateErr(err))
	}
	return nil
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{troveTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
