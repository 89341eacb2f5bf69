package datastore

// Launch form field keys.
const (
	FieldName                = "name"
	FieldDatastore           = "datastore"
	FieldFlavor              = "flavor"
	FieldVerticaFlavor       = "vertica_flavor"
	FieldNetwork             = "network"
	FieldVolume              = "volume"
	FieldRootPassword        = "root_password"
	FieldNumInstances        = "num_instances"
	FieldNumInstancesVertica = "num_instances_vertica"
	FieldNumShards           = "num_shards"
)

// FieldRequirement is a form field that must be shown and required when a
// datastore option is selected.
type FieldRequirement struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type FieldRequirementSet []FieldRequirement

var defaultFields = FieldRequirementSet{
	{Key: FieldFlavor, Label: "Flavor"},
	{Key: FieldNumInstances, Label: "Number of Instances"},
}

var mongoDBFields = append(defaultFields.clone(),
	FieldRequirement{Key: FieldNumShards, Label: "Number of Shards"},
)

var verticaFields = FieldRequirementSet{
	{Key: FieldNumInstancesVertica, Label: "Number of Instances"},
	{Key: FieldVerticaFlavor, Label: "Flavor"},
	{Key: FieldRootPassword, Label: "Root Password"},
}

// FieldsFor returns a copy of the field requirement set for the given class.
func FieldsFor(class Class) FieldRequirementSet {
	switch class {
	case ClassMongoDB:
		return mongoDBFields.clone()
	case ClassVertica:
		return verticaFields.clone()
	default:
		return defaultFields.clone()
	}
}

// Has returns true if the set contains the given field key.
func (s FieldRequirementSet) Keys() []string {
	keys := make([]string, len(s))
	for i, f := range s {
		keys[i] = f.Key
	}
	return keys
}

func (s FieldRequirementSet) clone() FieldRequirementSet {
	out := make(FieldRequirementSet, len(s))
	copy(out, s)
	return out
}
