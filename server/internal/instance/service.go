package instance

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"

	"github.com/trovedash/console/server/internal/form"
	"github.com/trovedash/console/server/internal/notice"
	"github.com/trovedash/console/server/internal/trove"
)

type View struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Status           string   `json:"status"`
	Hostname         string   `json:"hostname,omitempty"`
	IP               []string `json:"ip,omitempty"`
	Datastore        string   `json:"datastore"`
	DatastoreVersion string   `json:"datastore_version"`
	FlavorID         string   `json:"flavor_id"`
	FlavorName       string   `json:"flavor_name,omitempty"`
	RAM              string   `json:"ram,omitempty"`
	VolumeSizeGB     int      `json:"volume_size_gb"`
	VolumeSize       string   `json:"volume_size,omitempty"`
	VolumeUsed       string   `json:"volume_used,omitempty"`
	ReplicaOf        string   `json:"replica_of,omitempty"`
}

func newView(inst *trove.Instance, flavor *trove.Flavor) *View {
	v := &View{
		ID:               inst.ID,
		Name:             inst.Name,
		Status:           inst.Status,
		Hostname:         inst.Hostname,
		IP:               inst.IP,
		Datastore:        inst.Datastore.Type,
		DatastoreVersion: inst.Datastore.Version,
		FlavorID:         inst.Flavor.ID.String(),
		VolumeSizeGB:     inst.Volume.Size,
	}
	if inst.Volume.Size > 0 {
		v.VolumeSize = humanize.IBytes(uint64(inst.Volume.Size) * humanize.GiByte)
	}
	if inst.Volume.Used > 0 {
		v.VolumeUsed = humanize.IBytes(uint64(inst.Volume.Used * humanize.GiByte))
	}
	if inst.ReplicaOf != nil {
		v.ReplicaOf = inst.ReplicaOf.ID.String()
	}
	if flavor != nil {
		v.FlavorName = flavor.Name
		if flavor.RAM > 0 {
			v.RAM = humanize.IBytes(uint64(flavor.RAM) * humanize.MiByte)
		}
	}
	return v
}

// DatabaseAccess reports whether a user has been granted a database.
type DatabaseAccess struct {
	Name   string `json:"name"`
	Access bool   `json:"access"`
}

type RootStatus struct {
	InstanceID   string `json:"instance_id"`
	InstanceName string `json:"instance_name"`
	Enabled      bool   `json:"enabled"`
}

// Service implements the standalone instance pages.
type Service struct {
	client trove.Client
	logger zerolog.Logger
}

func NewService(client trove.Client, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		logger: logger.With().Str("component", "instance_service").Logger(),
	}
}

// List returns every instance. Flavors are looked up once for the whole page;
// if that fails the sizes are left blank and a notice is added.
func (s *Service) List(ctx context.Context, notices *notice.List) ([]*View, error) {
	instances, err := s.client.ListInstances(ctx)
	if err != nil {
		notices.Error("Unable to retrieve database instances.")
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}

	flavors := map[string]*trove.Flavor{}
	all, err := s.client.ListFlavors(ctx)
	if err != nil {
		notices.Degraded(s.logger, err, "Unable to retrieve database size information.")
	}
	for i := range all {
		flavors[all[i].ID] = &all[i]
	}

	views := make([]*View, len(instances))
	for i, inst := range instances {
		views[i] = newView(inst, flavors[inst.Flavor.ID.String()])
	}
	return views, nil
}

// Get returns one instance. A failed flavor lookup is only logged.
func (s *Service) Get(ctx context.Context, instanceID string) (*View, error) {
	inst, err := s.client.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get instance %s: %w", instanceID, err)
	}
	flavor, err := s.client.GetFlavor(ctx, inst.Flavor.ID.String())
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("instance_id", instanceID).
			Msg("unable to retrieve flavor details for instance")
		flavor = nil
	}
	return newView(inst, flavor), nil
}

// Access lists every database on the instance, flagging the ones the user
// has been granted, ordered by name.
func (s *Service) Access(ctx context.Context, notices *notice.List, instanceID, userName, host string) []DatabaseAccess {
	databases, err := s.client.ListDatabases(ctx, instanceID)
	if err != nil {
		notices.Degraded(s.logger, err, "Unable to retrieve databases.")
	}
	granted, err := s.client.ListUserAccess(ctx, instanceID, userName, host)
	if err != nil {
		notices.Degraded(s.logger, err, "Unable to retrieve accessible databases.")
	}

	names := make(map[string]bool, len(granted))
	for _, db := range granted {
		names[db.Name] = true
	}
	out := make([]DatabaseAccess, len(databases))
	for i, db := range databases {
		out[i] = DatabaseAccess{Name: db.Name, Access: names[db.Name]}
	}
	slices.SortStableFunc(out, func(a, b DatabaseAccess) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

func (s *Service) Root(ctx context.Context, notices *notice.List, instanceID string) (*RootStatus, error) {
	inst, err := s.client.GetInstance(ctx, instanceID)
	if err != nil {
		notices.Error("Unable to retrieve instance details.")
		return nil, fmt.Errorf("failed to get instance %s: %w", instanceID, err)
	}
	enabled, err := s.client.IsRootEnabled(ctx, instanceID)
	if err != nil {
		notices.Error("Unable to determine if instance root is enabled.")
		return nil, fmt.Errorf("failed to get root status of instance %s: %w", instanceID, err)
	}
	return &RootStatus{
		InstanceID:   inst.ID,
		InstanceName: inst.Name,
		Enabled:      enabled,
	}, nil
}

// ResizeVolume grows the instance's volume. Volumes can only grow, so the
// new size must exceed the current one.
func (s *Service) ResizeVolume(ctx context.Context, notices *notice.List, instanceID string, newSizeGB *int) error {
	inst, err := s.client.GetInstance(ctx, instanceID)
	if err != nil {
		notices.Error("Unable to retrieve instance details.")
		return fmt.Errorf("failed to get instance %s: %w", instanceID, err)
	}

	errs := form.FromValidation(validation.Errors{
		"new_size": validation.Validate(newSizeGB,
			validation.NotNil.Error(form.MsgRequired),
			validation.By(func(any) error {
				if newSizeGB != nil && *newSizeGB <= inst.Volume.Size {
					return errors.New("New size for volume must be greater than current size.")
				}
				return nil
			}),
		),
	}.Filter())
	if len(errs) > 0 {
		return errs
	}

	if err := s.client.ResizeVolume(ctx, instanceID, *newSizeGB); err != nil {
		notices.Error(fmt.Sprintf("Unable to resize volume. %s", err))
		return fmt.Errorf("failed to resize volume of instance %s: %w", instanceID, err)
	}
	notices.Success(fmt.Sprintf(`Resizing volume "%s"`, inst.Name))

	return nil
}

type ResizeInstanceForm struct {
	InstanceID    string        `json:"instance_id"`
	OldFlavorID   string        `json:"old_flavor_id"`
	OldFlavorName string        `json:"old_flavor_name"`
	Flavors       []form.Choice `json:"flavors"`
}

// ResizeInstanceForm lists the flavors the instance can be resized to.
func (s *Service) ResizeInstanceForm(ctx context.Context, notices *notice.List, instanceID string) (*ResizeInstanceForm, error) {
	inst, err := s.client.GetInstance(ctx, instanceID)
	if err != nil {
		notices.Error("Unable to retrieve instance details.")
		return nil, fmt.Errorf("failed to get instance %s: %w", instanceID, err)
	}

	out := &ResizeInstanceForm{
		InstanceID:  inst.ID,
		OldFlavorID: inst.Flavor.ID.String(),
		Flavors:     []form.Choice{},
	}
	flavors, err := s.client.ListFlavors(ctx)
	if err != nil {
		notices.Degraded(s.logger, err, "Unable to retrieve flavors.")
	}
	for _, f := range flavors {
		if f.ID == out.OldFlavorID {
			out.OldFlavorName = f.Name
			continue
		}
		out.Flavors = append(out.Flavors, form.Choice{Value: f.ID, Label: f.Name})
	}
	form.SortChoices(out.Flavors)

	return out, nil
}

// ResizeInstance moves the instance to another flavor.
func (s *Service) ResizeInstance(ctx context.Context, notices *notice.List, instanceID, flavorID string) error {
	inst, err := s.client.GetInstance(ctx, instanceID)
	if err != nil {
		notices.Error("Unable to retrieve instance details.")
		return fmt.Errorf("failed to get instance %s: %w", instanceID, err)
	}

	errs := form.FromValidation(validation.Errors{
		"new_flavor": validation.Validate(flavorID,
			validation.Required.Error(form.MsgRequired),
			validation.NotIn(inst.Flavor.ID.String()).
				Error("Please choose a new flavor that is not the same as the old one."),
		),
	}.Filter())
	if len(errs) > 0 {
		return errs
	}

	if err := s.client.ResizeInstance(ctx, instanceID, flavorID); err != nil {
		notices.Error(fmt.Sprintf("Unable to resize instance. %s", err))
		return fmt.Errorf("failed to resize instance %s: %w", instanceID, err)
	}
	notices.Success(fmt.Sprintf(`Resizing instance "%s"`, inst.Name))

	return nil
}
