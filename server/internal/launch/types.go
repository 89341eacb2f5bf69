package launch

import (
	"strconv"
	"strings"

	"github.com/trovedash/console/server/internal/datastore"
	"github.com/trovedash/console/server/internal/form"
)

// Fields are the raw values submitted with the launch form, keyed by the
// datastore.Field* constants.
type Fields map[string]string

func (f Fields) get(key string) string {
	return strings.TrimSpace(f[key])
}

// intValue parses an integer field. Absent and blank values yield def.
func (f Fields) intValue(key string, def int) (int, error) {
	raw := f.get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// ValidatedFields holds the parsed submission once Validate has accepted it.
type ValidatedFields struct {
	Name                string
	Datastore           string
	DatastoreVersion    string
	Class               datastore.Class
	Flavor              string
	VerticaFlavor       string
	Network             string
	RootPassword        string
	VolumeSizeGB        int
	NumInstances        int
	NumInstancesVertica int
	NumShards           int
}

// DatastoreChoice is one datastore option offered for a cluster launch. Fields
// lists the form fields that become visible and required when it is selected.
type DatastoreChoice struct {
	Key       string                        `json:"key"`
	Label     string                        `json:"label"`
	Datastore string                        `json:"datastore"`
	Version   string                        `json:"version"`
	Class     datastore.Class               `json:"class"`
	Fields    datastore.FieldRequirementSet `json:"fields"`
	Flavors   []form.Choice                 `json:"flavors,omitempty"`
}

// FlavorField returns the key of the field that selects a flavor for this
// option.
func (c DatastoreChoice) FlavorField() string {
	if c.Class == datastore.ClassVertica {
		return datastore.FieldVerticaFlavor
	}
	return datastore.FieldFlavor
}

const (
	defaultVolumeSizeGB        = 1
	defaultNumInstances        = 3
	defaultNumInstancesVertica = 3
	defaultNumShards           = 1
	maxNameLength              = 80
)

// Form is everything needed to render the launch form.
type Form struct {
	Datastores     []DatastoreChoice `json:"datastores"`
	Flavors        []form.Choice     `json:"flavors"`
	VerticaFlavors []form.Choice     `json:"vertica_flavors"`
	Networks       []form.Choice     `json:"networks"`
	NetworkHidden  bool              `json:"network_hidden"`
	Initial        map[string]int    `json:"initial"`
}

func initialValues() map[string]int {
	return map[string]int{
		datastore.FieldVolume:              defaultVolumeSizeGB,
		datastore.FieldNumInstances:        defaultNumInstances,
		datastore.FieldNumInstancesVertica: defaultNumInstancesVertica,
		datastore.FieldNumShards:           defaultNumShards,
	}
}
