package cluster

import (
	"slices"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// PendingInstance is an instance the user has staged for a cluster grow but
// not yet submitted.
type PendingInstance struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	FlavorID     string `json:"flavor_id"`
	FlavorName   string `json:"flavor_name"`
	VolumeSizeGB int    `json:"volume_size_gb"`
	Type         string `json:"type,omitempty"`
	RelatedTo    string `json:"related_to,omitempty"`
}

// GrowManager keeps the pending instances of each cluster. A cluster's list
// expires when it has not been modified for the configured TTL.
type GrowManager struct {
	mu    sync.Mutex
	cache *ttlcache.Cache[string, []PendingInstance]
}

func NewGrowManager(ttl time.Duration) *GrowManager {
	return &GrowManager{
		cache: ttlcache.New(
			ttlcache.WithTTL[string, []PendingInstance](ttl),
			ttlcache.WithDisableTouchOnHit[string, []PendingInstance](),
		),
	}
}

// Start runs the expiration loop until Stop is called.
func (m *GrowManager) Start() {
	go m.cache.Start()
}

func (m *GrowManager) Stop() {
	m.cache.Stop()
}

func (m *GrowManager) list(clusterID string) []PendingInstance {
	item := m.cache.Get(clusterID)
	if item == nil {
		return nil
	}
	return item.Value()
}

// Add appends an instance to the cluster's pending list.
func (m *GrowManager) Add(clusterID string, instance PendingInstance) {
	m.mu.Lock()
	defer m.mu.Unlock()

	instances := append(slices.Clone(m.list(clusterID)), instance)
	m.cache.Set(clusterID, instances, ttlcache.DefaultTTL)
}

// Remove drops the given pending instances and returns how many were
// present. Instances added since the caller read the list are kept.
func (m *GrowManager) Remove(clusterID string, instanceIDs ...string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	instances := m.list(clusterID)
	remaining := slices.DeleteFunc(slices.Clone(instances), func(p PendingInstance) bool {
		return slices.Contains(instanceIDs, p.ID)
	})
	removed := len(instances) - len(remaining)
	switch {
	case removed == 0:
	case len(remaining) == 0:
		m.cache.Delete(clusterID)
	default:
		m.cache.Set(clusterID, remaining, ttlcache.DefaultTTL)
	}
	return removed
}

// List returns a copy of the cluster's pending instances in the order they
// were added.
func (m *GrowManager) List(clusterID string) []PendingInstance {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.list(clusterID))
}
