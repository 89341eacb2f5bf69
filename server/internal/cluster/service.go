package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trovedash/console/server/internal/form"
	"github.com/trovedash/console/server/internal/notice"
	"github.com/trovedash/console/server/internal/trove"
)

var (
	ErrNoPendingInstances  = errors.New("no pending instances to add")
	ErrNoInstancesSelected = errors.New("no instances selected")
)

const defaultVolumeSizeGB = 1

type InstanceView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       string   `json:"type,omitempty"`
	Status     string   `json:"status"`
	FlavorID   string   `json:"flavor_id"`
	FlavorName string   `json:"flavor_name,omitempty"`
	VolumeSize string   `json:"volume_size,omitempty"`
	IP         []string `json:"ip,omitempty"`
}

type View struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Datastore        string         `json:"datastore"`
	DatastoreVersion string         `json:"datastore_version"`
	Task             string         `json:"task"`
	TaskDescription  string         `json:"task_description,omitempty"`
	Size             int            `json:"size"`
	Created          string         `json:"created,omitempty"`
	Instances        []InstanceView `json:"instances"`
}

func volumeSize(sizeGB int) string {
	if sizeGB <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(sizeGB) * humanize.GiByte)
}

func newView(c *trove.Cluster, flavorNames map[string]string) *View {
	v := &View{
		ID:               c.ID,
		Name:             c.Name,
		Datastore:        c.Datastore.Type,
		DatastoreVersion: c.Datastore.Version,
		Task:             c.Task.Name,
		TaskDescription:  c.Task.Description,
		Size:             len(c.Instances),
		Instances:        make([]InstanceView, len(c.Instances)),
	}
	if !c.Created.IsZero() {
		v.Created = c.Created.UTC().Format("2006-01-02 15:04:05")
	}
	for i, inst := range c.Instances {
		flavorID := inst.Flavor.ID.String()
		v.Instances[i] = InstanceView{
			ID:         inst.ID,
			Name:       inst.Name,
			Type:       inst.Type,
			Status:     inst.Status,
			FlavorID:   flavorID,
			FlavorName: flavorNames[flavorID],
			VolumeSize: volumeSize(inst.Volume.Size),
			IP:         inst.IP,
		}
	}
	return v
}

// Service implements the cluster pages other than launch.
type Service struct {
	client trove.Client
	grow   *GrowManager
	logger zerolog.Logger
}

func NewService(client trove.Client, grow *GrowManager, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		grow:   grow,
		logger: logger.With().Str("component", "cluster_service").Logger(),
	}
}

// flavorNames maps flavor IDs to names. A failed lookup only costs the
// names, so it is logged and otherwise ignored.
func (s *Service) flavorNames(ctx context.Context) map[string]string {
	flavors, err := s.client.ListFlavors(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list flavors")
		return map[string]string{}
	}
	names := make(map[string]string, len(flavors))
	for _, f := range flavors {
		names[f.ID] = f.Name
	}
	return names
}

func (s *Service) List(ctx context.Context) ([]*View, error) {
	clusters, err := s.client.ListClusters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	names := s.flavorNames(ctx)
	views := make([]*View, len(clusters))
	for i, c := range clusters {
		views[i] = newView(c, names)
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, clusterID string) (*View, error) {
	c, err := s.client.GetCluster(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster %s: %w", clusterID, err)
	}
	return newView(c, s.flavorNames(ctx)), nil
}

type AddInstanceForm struct {
	ClusterID string             `json:"cluster_id"`
	Datastore trove.DatastoreRef `json:"datastore"`
	Flavors   []form.Choice      `json:"flavors"`
	Initial   map[string]int     `json:"initial"`
	Pending   []PendingInstance  `json:"pending"`
}

// AddInstanceForm returns the flavors that can be used to grow the cluster.
// A failed flavor lookup leaves the list empty and adds a notice.
func (s *Service) AddInstanceForm(ctx context.Context, notices *notice.List, clusterID string) (*AddInstanceForm, error) {
	c, err := s.client.GetCluster(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster %s: %w", clusterID, err)
	}

	out := &AddInstanceForm{
		ClusterID: c.ID,
		Datastore: c.Datastore,
		Flavors:   []form.Choice{},
		Initial:   map[string]int{"volume": defaultVolumeSizeGB},
		Pending:   s.grow.List(c.ID),
	}
	flavors, err := s.client.ListDatastoreFlavors(ctx, c.Datastore.Type, c.Datastore.Version)
	if err != nil {
		notices.Degraded(s.logger, err, "Unable to obtain flavors.")
		return out, nil
	}
	for _, f := range flavors {
		out.Flavors = append(out.Flavors, form.Choice{Value: f.ID, Label: f.Name})
	}
	form.SortChoices(out.Flavors)

	return out, nil
}

type AddInstanceInput struct {
	FlavorID     string `json:"flavor"`
	VolumeSizeGB *int   `json:"volume"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	RelatedTo    string `json:"related_to"`
}

func (in AddInstanceInput) validate() form.Errors {
	return form.FromValidation(validation.Errors{
		"flavor": validation.Validate(in.FlavorID, validation.Required.Error(form.MsgRequired)),
		"volume": validation.Validate(in.VolumeSizeGB,
			validation.NotNil.Error(form.MsgRequired),
			validation.Min(0).Error("Ensure this value is greater than or equal to 0."),
		),
	}.Filter())
}

// AddInstance stages an instance for the next grow of the cluster. Nothing is
// sent to the backend apart from the flavor lookup.
func (s *Service) AddInstance(ctx context.Context, notices *notice.List, clusterID string, in AddInstanceInput) (*PendingInstance, error) {
	if errs := in.validate(); len(errs) > 0 {
		return nil, errs
	}

	flavor, err := s.client.GetFlavor(ctx, in.FlavorID)
	if err != nil {
		notices.Error(fmt.Sprintf("Unable to grow cluster. %s", err))
		return nil, fmt.Errorf("failed to get flavor %s: %w", in.FlavorID, err)
	}

	pending := PendingInstance{
		ID:           uuid.NewString(),
		Name:         in.Name,
		FlavorID:     in.FlavorID,
		FlavorName:   flavor.Name,
		VolumeSizeGB: *in.VolumeSizeGB,
		Type:         in.Type,
		RelatedTo:    in.RelatedTo,
	}
	s.grow.Add(clusterID, pending)

	s.logger.Info().
		Str("cluster_id", clusterID).
		Str("pending_instance_id", pending.ID).
		Str("flavor", pending.FlavorID).
		Msg("staged instance for cluster grow")

	return &pending, nil
}

func (s *Service) PendingInstances(clusterID string) []PendingInstance {
	return s.grow.List(clusterID)
}

func (s *Service) RemovePendingInstance(clusterID, instanceID string) bool {
	return s.grow.Remove(clusterID, instanceID) > 0
}

// Grow submits every pending instance of the cluster in a single request.
// Only the submitted instances are removed, and only when the backend
// accepts them.
func (s *Service) Grow(ctx context.Context, notices *notice.List, clusterID string) error {
	pending := s.grow.List(clusterID)
	if len(pending) == 0 {
		return ErrNoPendingInstances
	}

	specs := make([]trove.ClusterInstanceSpec, len(pending))
	submitted := make([]string, len(pending))
	for i, p := range pending {
		submitted[i] = p.ID
		specs[i] = trove.ClusterInstanceSpec{
			FlavorID:     p.FlavorID,
			VolumeSizeGB: p.VolumeSizeGB,
			Name:         p.Name,
			Type:         p.Type,
			RelatedTo:    p.RelatedTo,
		}
	}
	if err := s.client.GrowCluster(ctx, clusterID, specs); err != nil {
		notices.Error(fmt.Sprintf("Unable to grow cluster. %s", err))
		return fmt.Errorf("failed to grow cluster %s: %w", clusterID, err)
	}
	s.grow.Remove(clusterID, submitted...)
	notices.Success("Scheduled growing of cluster.")

	return nil
}

func (s *Service) Shrink(ctx context.Context, notices *notice.List, clusterID string, instanceIDs []string) error {
	if len(instanceIDs) == 0 {
		return ErrNoInstancesSelected
	}
	if err := s.client.ShrinkCluster(ctx, clusterID, instanceIDs); err != nil {
		notices.Error(fmt.Sprintf("Unable to shrink cluster. %s", err))
		return fmt.Errorf("failed to shrink cluster %s: %w", clusterID, err)
	}
	notices.Success("Scheduled shrinking of cluster.")

	return nil
}

// ResetPassword sets the root password of every instance in the cluster.
func (s *Service) ResetPassword(ctx context.Context, notices *notice.List, clusterID, password string) error {
	errs := form.FromValidation(validation.Errors{
		"password": validation.Validate(password, validation.Required.Error(form.MsgRequired)),
	}.Filter())
	if len(errs) > 0 {
		return errs
	}

	if err := s.client.SetClusterRootPassword(ctx, clusterID, password); err != nil {
		notices.Error(fmt.Sprintf("Unable to reset password. %s", err))
		return fmt.Errorf("failed to set root password for cluster %s: %w", clusterID, err)
	}
	notices.Success(fmt.Sprintf(`Root password updated for cluster "%s"`, clusterID))

	return nil
}
