package launch

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/trovedash/console/server/internal/datastore"
	"github.com/trovedash/console/server/internal/form"
	"github.com/trovedash/console/server/internal/trove"
)

const (
	msgFlavorRequired       = "The flavor must be specified."
	msgRootPasswordRequired = "Password for root user must be specified."
	msgNumInstancesInvalid  = "The number of instances must be greater than 1."
	msgNumShardsInvalid     = "The number of shards must be greater than 1."
)

// atLeast builds rules that reject values below min. ozzo skips zero values
// for threshold rules, so Required covers zero when min is positive.
func atLeast(min int, msg string) []validation.Rule {
	if min <= 0 {
		return []validation.Rule{validation.Min(min).Error(msg)}
	}
	return []validation.Rule{
		validation.Required.Error(msg),
		validation.Min(min).Error(msg),
	}
}

// validateCount validates an integer field. Values that do not parse are
// rejected with msg.
func validateCount(fields Fields, key string, min int, msg string) error {
	n, err := fields.intValue(key, 0)
	if err != nil {
		return errors.New(msg)
	}
	return validation.Validate(n, atLeast(min, msg)...)
}

// Validate applies the requirements that depend on the selected datastore.
// Only the fields of the selected datastore's class are checked. When no
// datastore is selected nothing is checked here; CleanFields reports the
// missing selection.
func (b *Builder) Validate(fields Fields) (ValidatedFields, form.Errors) {
	v := ValidatedFields{
		Name:          fields.get(datastore.FieldName),
		Flavor:        fields.get(datastore.FieldFlavor),
		VerticaFlavor: fields.get(datastore.FieldVerticaFlavor),
		Network:       fields.get(datastore.FieldNetwork),
		RootPassword:  fields.get(datastore.FieldRootPassword),
	}
	v.VolumeSizeGB, _ = fields.intValue(datastore.FieldVolume, defaultVolumeSizeGB)
	v.NumInstances, _ = fields.intValue(datastore.FieldNumInstances, 0)
	v.NumInstancesVertica, _ = fields.intValue(datastore.FieldNumInstancesVertica, defaultNumInstancesVertica)
	v.NumShards, _ = fields.intValue(datastore.FieldNumShards, 0)

	selection := fields.get(datastore.FieldDatastore)
	if selection == "" {
		return v, nil
	}
	name, version, ok := datastore.ParseSelection(selection)
	if !ok {
		name = selection
	}
	v.Datastore = name
	v.DatastoreVersion = version
	v.Class = datastore.Classify(name)

	var errs validation.Errors
	switch v.Class {
	case datastore.ClassVertica:
		errs = validation.Errors{
			datastore.FieldVerticaFlavor: validation.Validate(v.VerticaFlavor,
				validation.Required.Error(msgFlavorRequired)),
			datastore.FieldRootPassword: validation.Validate(v.RootPassword,
				validation.Required.Error(msgRootPasswordRequired)),
		}
	default:
		errs = validation.Errors{
			datastore.FieldFlavor: validation.Validate(v.Flavor,
				validation.Required.Error(msgFlavorRequired)),
			datastore.FieldNumInstances: validateCount(fields, datastore.FieldNumInstances, 1, msgNumInstancesInvalid),
		}
		if v.Class == datastore.ClassMongoDB {
			errs[datastore.FieldNumShards] = validateCount(fields, datastore.FieldNumShards, 1, msgNumShardsInvalid)
		}
	}

	return v, form.FromValidation(errs.Filter())
}

// CleanFields applies the checks that hold for every launch regardless of
// datastore. Choice fields are checked against what the form offers, so this
// performs (cached) backend lookups.
func (b *Builder) CleanFields(ctx context.Context, fields Fields) form.Errors {
	selection := fields.get(datastore.FieldDatastore)
	choice, found := b.findChoice(ctx, selection)

	errs := validation.Errors{
		datastore.FieldName: validation.Validate(fields.get(datastore.FieldName),
			validation.Required.Error(form.MsgRequired),
			validation.RuneLength(0, maxNameLength).
				Error(fmt.Sprintf("Ensure this value has at most %d characters.", maxNameLength)),
		),
		datastore.FieldDatastore: validation.Validate(selection,
			validation.Required.Error(form.MsgRequired),
			validation.By(func(any) error {
				if !found {
					return errors.New(form.MsgInvalidChoice)
				}
				return nil
			}),
		),
		datastore.FieldVolume: validateOptionalInt(fields, datastore.FieldVolume, 0),
	}

	if network := fields.get(datastore.FieldNetwork); network != "" {
		networks, available := b.ListNetworks(ctx)
		if available {
			errs[datastore.FieldNetwork] = validation.Validate(network,
				validation.In(networkIDs(networks)...).Error(form.MsgInvalidChoice))
		}
	}

	if found {
		if choice.Class == datastore.ClassVertica {
			errs[datastore.FieldNumInstancesVertica] = validateOptionalInt(fields, datastore.FieldNumInstancesVertica, defaultNumInstancesVertica)
		}
		flavorField := choice.FlavorField()
		if flavor := fields.get(flavorField); flavor != "" {
			offered := b.ListFlavors(ctx, choice.Datastore, choice.Version)
			if len(offered) > 0 {
				errs[flavorField] = validation.Validate(flavor,
					validation.In(flavorIDs(offered)...).Error(form.MsgInvalidChoice))
			}
		}
	}

	return form.FromValidation(errs.Filter())
}

func validateOptionalInt(fields Fields, key string, min int) error {
	if fields.get(key) == "" {
		return nil
	}
	if _, err := fields.intValue(key, 0); err != nil {
		return errors.New(form.MsgWholeNumber)
	}
	return validateCount(fields, key, min, fmt.Sprintf("Ensure this value is greater than or equal to %d.", min))
}

func networkIDs(networks []trove.Network) []any {
	out := make([]any, len(networks))
	for i, n := range networks {
		out[i] = n.ID
	}
	return out
}

func flavorIDs(flavors []trove.Flavor) []any {
	out := make([]any, len(flavors))
	for i, f := range flavors {
		out[i] = f.ID
	}
	return out
}

// BuildRequest picks the flavor, instance count and root password that apply
// to the selected datastore's class.
func (b *Builder) BuildRequest(v ValidatedFields) *trove.ClusterCreateRequest {
	req := &trove.ClusterCreateRequest{
		Name:             v.Name,
		VolumeSizeGB:     v.VolumeSizeGB,
		FlavorID:         v.Flavor,
		NumInstances:     v.NumInstances,
		Datastore:        v.Datastore,
		DatastoreVersion: v.DatastoreVersion,
		NetworkID:        v.Network,
	}
	if v.Class == datastore.ClassVertica {
		password := v.RootPassword
		req.FlavorID = v.VerticaFlavor
		req.NumInstances = v.NumInstancesVertica
		req.RootPassword = &password
	}
	return req
}

// Launch validates the submission and creates the cluster. Invalid input is
// returned as form.Errors without calling the backend. A backend failure is
// reported as a notice and returned; it is not retried.
func (b *Builder) Launch(ctx context.Context, fields Fields) (string, error) {
	errs := b.CleanFields(ctx, fields)
	validated, conditional := b.Validate(fields)
	errs = errs.Merge(conditional)
	if len(errs) > 0 {
		return "", errs
	}

	req := b.BuildRequest(validated)
	b.logger.Info().
		Str("name", req.Name).
		Int("volume", req.VolumeSizeGB).
		Str("flavor", req.FlavorID).
		Int("num_instances", req.NumInstances).
		Str("datastore", req.Datastore).
		Str("datastore_version", req.DatastoreVersion).
		Strs("fields", datastore.FieldsFor(validated.Class).Keys()).
		Msg("launching cluster")

	clusterID, err := b.client.CreateCluster(ctx, req)
	if err != nil {
		b.notices.Error(fmt.Sprintf("Unable to launch cluster. %s", err))
		return "", fmt.Errorf("failed to create cluster: %w", err)
	}
	b.notices.Success(fmt.Sprintf(`Launched cluster "%s"`, req.Name))

	return clusterID, nil
}
