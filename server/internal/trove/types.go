package trove

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type Datastore struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DatastoreVersion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Flavor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// RAM is in megabytes.
	RAM int `json:"ram"`
}

type Network struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NameOrID returns the network name, or a shortened ID when the network is
// unnamed.
func (n Network) NameOrID() string {
	if n.Name != "" {
		return n.Name
	}
	id := n.ID
	if len(id) > 13 {
		id = id[:13]
	}
	return "(" + id + ")"
}

type DatastoreRef struct {
	Type    string `json:"type"`
	Version string `json:"version"`
}

// ClusterCreateRequest is the validated input for a cluster launch. It is
// built once per submission and consumed by a single CreateCluster call.
type ClusterCreateRequest struct {
	Name             string
	VolumeSizeGB     int
	FlavorID         string
	NumInstances     int
	Datastore        string
	DatastoreVersion string
	NetworkID        string
	RootPassword     *string
}

// ClusterInstanceSpec describes one instance to add to an existing cluster.
type ClusterInstanceSpec struct {
	FlavorID     string
	VolumeSizeGB int
	Name         string
	Type         string
	RelatedTo    string
}

type ClusterTask struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ClusterInstance struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Type   string       `json:"type"`
	Status string       `json:"status"`
	Flavor ResourceRef  `json:"flavor"`
	Volume InstanceSize `json:"volume"`
	IP     []string     `json:"ip"`
}

type Cluster struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Datastore DatastoreRef      `json:"datastore"`
	Task      ClusterTask       `json:"task"`
	Instances []ClusterInstance `json:"instances"`
	Created   time.Time         `json:"-"`
	Updated   time.Time         `json:"-"`
}

type ResourceRef struct {
	ID FlexibleID `json:"id"`
}

type InstanceSize struct {
	Size int     `json:"size"`
	Used float64 `json:"used"`
}

type Instance struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Status    string       `json:"status"`
	Hostname  string       `json:"hostname"`
	IP        []string     `json:"ip"`
	Flavor    ResourceRef  `json:"flavor"`
	Volume    InstanceSize `json:"volume"`
	Datastore DatastoreRef `json:"datastore"`
	ReplicaOf *ResourceRef `json:"replica_of,omitempty"`
	Created   time.Time    `json:"-"`
	Updated   time.Time    `json:"-"`
}

type Database struct {
	Name string `json:"name"`
}

type DatabaseCreateRequest struct {
	Name    string
	CharSet string
	Collate string
}

// UserCreateRequest creates a user on an instance. Databases lists the
// databases the user is granted access to.
type UserCreateRequest struct {
	Name      string
	Password  string
	Host      string
	Databases []string
}

// UserUpdateRequest changes a user's attributes. Empty fields are left
// unchanged.
type UserUpdateRequest struct {
	Name     string
	Password string
	Host     string
}

// FlexibleID accepts both string and numeric identifiers. Older Trove
// deployments return integer flavor IDs.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid identifier %s: %w", string(data), err)
	}
	*f = FlexibleID(n.String())
	return nil
}

func (f FlexibleID) String() string {
	return string(f)
}
