package launch

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/trovedash/console/server/internal/datastore"
	"github.com/trovedash/console/server/internal/form"
	"github.com/trovedash/console/server/internal/notice"
	"github.com/trovedash/console/server/internal/session"
	"github.com/trovedash/console/server/internal/trove"
)

const (
	msgDatastoresFailed = "Unable to obtain datastores."
	msgVersionsFailed   = "Unable to obtain datastore versions."
	msgFlavorsFailed    = "Unable to obtain flavors."
	msgNetworksFailed   = "Unable to retrieve networks."
)

// inactiveToken marks a soft-deprecated datastore version.
const inactiveToken = "inactive"

type cacheKey struct {
	method string
	args   string
}

func newCacheKey(method string, args ...string) cacheKey {
	return cacheKey{method: method, args: strings.Join(args, "\x00")}
}

type networkLookup struct {
	networks  []trove.Network
	available bool
}

// Builder turns a launch form submission into a cluster create request. A
// Builder serves one request: backend lookups are cached for its lifetime
// and it must not be shared between requests.
type Builder struct {
	client  trove.Client
	policy  *datastore.Policy
	logger  zerolog.Logger
	notices notice.List
	cache   map[cacheKey]any
}

func NewBuilder(client trove.Client, policy *datastore.Policy, logger zerolog.Logger) *Builder {
	if policy == nil {
		policy = datastore.NewPolicy()
	}
	return &Builder{
		client: client,
		policy: policy,
		logger: logger.With().Str("component", "cluster_launch").Logger(),
		cache:  map[cacheKey]any{},
	}
}

// Notices returns the notices produced so far.
func (b *Builder) Notices() []notice.Notice {
	return b.notices.Notices()
}

// cached returns the value stored under key, calling fetch on the first
// access. Whatever fetch returns is cached, including on failure, so a failed
// lookup is reported once and never retried by the same Builder.
func cached[T any](b *Builder, key cacheKey, failure string, fetch func() (T, error)) T {
	if v, ok := b.cache[key]; ok {
		return v.(T)
	}
	v, err := fetch()
	if err != nil {
		b.notices.Degraded(b.logger, err, failure)
	}
	b.cache[key] = v
	return v
}

func (b *Builder) allDatastores(ctx context.Context) []trove.Datastore {
	return cached(b, newCacheKey("datastores"), msgDatastoresFailed, func() ([]trove.Datastore, error) {
		datastores, err := b.client.ListDatastores(ctx)
		if err != nil {
			return nil, err
		}
		return datastores, nil
	})
}

// ListEligibleDatastores returns the cluster-capable datastores in backend
// order.
func (b *Builder) ListEligibleDatastores(ctx context.Context) []trove.Datastore {
	var out []trove.Datastore
	for _, ds := range b.allDatastores(ctx) {
		if b.policy.IsClusterCapable(ds.Name) {
			out = append(out, ds)
		}
	}
	return out
}

// ListVersions returns the versions of a datastore, skipping inactive ones.
func (b *Builder) ListVersions(ctx context.Context, datastoreName string) []trove.DatastoreVersion {
	versions := cached(b, newCacheKey("datastore_versions", datastoreName), msgVersionsFailed, func() ([]trove.DatastoreVersion, error) {
		versions, err := b.client.ListDatastoreVersions(ctx, datastoreName)
		if err != nil {
			return nil, err
		}
		return versions, nil
	})

	var out []trove.DatastoreVersion
	for _, v := range versions {
		if strings.Contains(v.Name, inactiveToken) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ListFlavors returns the flavors usable with a datastore version, sorted by
// name.
func (b *Builder) ListFlavors(ctx context.Context, datastoreName, version string) []trove.Flavor {
	return cached(b, newCacheKey("datastore_flavors", datastoreName, version), msgFlavorsFailed, func() ([]trove.Flavor, error) {
		flavors, err := b.client.ListDatastoreFlavors(ctx, datastoreName, version)
		if err != nil {
			return nil, err
		}
		sorted := slices.Clone(flavors)
		slices.SortStableFunc(sorted, func(a, b trove.Flavor) int {
			return cmp.Compare(a.Name, b.Name)
		})
		return sorted, nil
	})
}

// ListNetworks returns the networks of the caller's tenant. available is false
// when the deployment has no network service, in which case the network field
// is not offered at all.
func (b *Builder) ListNetworks(ctx context.Context) (networks []trove.Network, available bool) {
	tenantID := session.TenantID(ctx)
	lookup := cached(b, newCacheKey("networks", tenantID), msgNetworksFailed, func() (networkLookup, error) {
		networks, err := b.client.ListNetworksForTenant(ctx, tenantID)
		switch {
		case errors.Is(err, trove.ErrServiceUnavailable):
			return networkLookup{}, nil
		case err != nil:
			// The field stays visible but has nothing to offer.
			return networkLookup{available: true}, err
		}
		return networkLookup{networks: networks, available: true}, nil
	})
	return lookup.networks, lookup.available
}

// BuildDatastoreChoiceSpace returns one option per eligible datastore and
// active version, in backend order. Datastores without an active version
// produce no options.
func (b *Builder) BuildDatastoreChoiceSpace(ctx context.Context) []DatastoreChoice {
	var choices []DatastoreChoice
	for _, ds := range b.ListEligibleDatastores(ctx) {
		class := datastore.Classify(ds.Name)
		for _, v := range b.ListVersions(ctx, ds.Name) {
			choices = append(choices, DatastoreChoice{
				Key:       datastore.SelectionKey(ds.Name, v.Name),
				Label:     datastore.SelectionLabel(ds.Name, v.Name),
				Datastore: ds.Name,
				Version:   v.Name,
				Class:     class,
				Fields:    datastore.FieldsFor(class),
			})
		}
	}
	return choices
}

func (b *Builder) findChoice(ctx context.Context, key string) (DatastoreChoice, bool) {
	for _, c := range b.BuildDatastoreChoiceSpace(ctx) {
		if c.Key == key {
			return c, true
		}
	}
	return DatastoreChoice{}, false
}

func flavorChoices(flavors []trove.Flavor) []form.Choice {
	out := make([]form.Choice, len(flavors))
	for i, f := range flavors {
		out[i] = form.Choice{Value: f.ID, Label: f.Name}
	}
	return out
}

// LaunchForm assembles the choices for the launch form. Lookup failures leave
// the affected choices empty and are reported through Notices.
func (b *Builder) LaunchForm(ctx context.Context) *Form {
	out := &Form{
		Datastores:     []DatastoreChoice{},
		Flavors:        []form.Choice{},
		VerticaFlavors: []form.Choice{},
		Networks:       []form.Choice{},
		Initial:        initialValues(),
	}

	seen := map[string]map[string]bool{
		datastore.FieldFlavor:        {},
		datastore.FieldVerticaFlavor: {},
	}
	for _, choice := range b.BuildDatastoreChoiceSpace(ctx) {
		flavors := b.ListFlavors(ctx, choice.Datastore, choice.Version)
		choice.Flavors = flavorChoices(flavors)
		out.Datastores = append(out.Datastores, choice)

		field := choice.FlavorField()
		for _, f := range choice.Flavors {
			if seen[field][f.Value] {
				continue
			}
			seen[field][f.Value] = true
			if field == datastore.FieldVerticaFlavor {
				out.VerticaFlavors = append(out.VerticaFlavors, f)
			} else {
				out.Flavors = append(out.Flavors, f)
			}
		}
	}
	form.SortChoices(out.Flavors)
	form.SortChoices(out.VerticaFlavors)

	networks, available := b.ListNetworks(ctx)
	out.NetworkHidden = !available
	for _, n := range networks {
		out.Networks = append(out.Networks, form.Choice{Value: n.ID, Label: n.NameOrID()})
	}

	return out
}
