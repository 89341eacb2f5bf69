package datastore

import (
	"strings"

	"github.com/trovedash/console/server/internal/ds"
)

// DefaultClusterDatastores are the datastore name tokens that support
// clustering when no explicit list is configured.
var DefaultClusterDatastores = []string{
	"cassandra",
	"mariadb",
	"mongodb",
	"pxc",
	"redis",
	"vertica",
}

// Policy decides which datastores may be offered for cluster launches.
type Policy struct {
	tokens ds.Set[string]
}

func NewPolicy(tokens ...string) *Policy {
	if len(tokens) == 0 {
		tokens = DefaultClusterDatastores
	}
	set := ds.NewSet[string]()
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set.Add(t)
		}
	}
	return &Policy{tokens: set}
}

// IsClusterCapable returns true if the datastore name contains any of the
// policy's tokens.
func (p *Policy) IsClusterCapable(name string) bool {
	lower := strings.ToLower(name)
	for token := range p.tokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func (p *Policy) Tokens() []string {
	return p.tokens.ToSortedSlice(strings.Compare)
}
