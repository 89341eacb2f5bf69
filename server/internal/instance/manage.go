package instance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/trovedash/console/server/internal/form"
	"github.com/trovedash/console/server/internal/notice"
	"github.com/trovedash/console/server/internal/trove"
)

var ErrNotReplica = errors.New("instance is not a replica")

const maxDatabaseNameLength = 64

type CreateDatabaseInput struct {
	Name    string `json:"name"`
	CharSet string `json:"character_set"`
	Collate string `json:"collation"`
}

func (in CreateDatabaseInput) validate() form.Errors {
	return form.FromValidation(validation.Errors{
		"name": validation.Validate(strings.TrimSpace(in.Name),
			validation.Required.Error(form.MsgRequired),
			validation.RuneLength(0, maxDatabaseNameLength).
				Error(fmt.Sprintf("Ensure this value has at most %d characters.", maxDatabaseNameLength)),
		),
	}.Filter())
}

func (s *Service) CreateDatabase(ctx context.Context, notices *notice.List, instanceID string, in CreateDatabaseInput) error {
	if errs := in.validate(); len(errs) > 0 {
		return errs
	}

	req := &trove.DatabaseCreateRequest{
		Name:    strings.TrimSpace(in.Name),
		CharSet: strings.TrimSpace(in.CharSet),
		Collate: strings.TrimSpace(in.Collate),
	}
	if err := s.client.CreateDatabase(ctx, instanceID, req); err != nil {
		notices.Error(fmt.Sprintf("Unable to create database. %s", err))
		return fmt.Errorf("failed to create database on instance %s: %w", instanceID, err)
	}
	notices.Success(fmt.Sprintf(`Created database "%s".`, req.Name))

	return nil
}

type CreateUserInput struct {
	Name      string   `json:"name"`
	Password  string   `json:"password"`
	Host      string   `json:"host"`
	Databases []string `json:"databases"`
}

func (in CreateUserInput) validate() form.Errors {
	return form.FromValidation(validation.Errors{
		"name": validation.Validate(strings.TrimSpace(in.Name),
			validation.Required.Error(form.MsgRequired)),
		"password": validation.Validate(strings.TrimSpace(in.Password),
			validation.Required.Error(form.MsgRequired)),
	}.Filter())
}

// CreateUser adds a user to the instance and grants it the listed databases.
func (s *Service) CreateUser(ctx context.Context, notices *notice.List, instanceID string, in CreateUserInput) error {
	if errs := in.validate(); len(errs) > 0 {
		return errs
	}

	req := &trove.UserCreateRequest{
		Name:     strings.TrimSpace(in.Name),
		Password: in.Password,
		Host:     strings.TrimSpace(in.Host),
	}
	for _, db := range in.Databases {
		if db = strings.TrimSpace(db); db != "" {
			req.Databases = append(req.Databases, db)
		}
	}
	if err := s.client.CreateUser(ctx, instanceID, req); err != nil {
		notices.Error(fmt.Sprintf("Unable to create user. %s", err))
		return fmt.Errorf("failed to create user on instance %s: %w", instanceID, err)
	}
	notices.Success(fmt.Sprintf(`Created user "%s".`, req.Name))

	return nil
}

const msgEditUserEmpty = "At least one of new name, new password or new host must be specified."

type EditUserInput struct {
	Host        string `json:"host"`
	NewName     string `json:"new_name"`
	NewPassword string `json:"new_password"`
	NewHost     string `json:"new_host"`
}

// EditUser renames a user or changes its password or host. At least one
// change is required.
func (s *Service) EditUser(ctx context.Context, notices *notice.List, instanceID, userName string, in EditUserInput) error {
	req := &trove.UserUpdateRequest{
		Name:     strings.TrimSpace(in.NewName),
		Password: in.NewPassword,
		Host:     strings.TrimSpace(in.NewHost),
	}
	if req.Name == "" && strings.TrimSpace(req.Password) == "" && req.Host == "" {
		return form.Errors{"new_name": msgEditUserEmpty}
	}
	if strings.TrimSpace(req.Password) == "" {
		req.Password = ""
	}

	if err := s.client.UpdateUser(ctx, instanceID, userName, strings.TrimSpace(in.Host), req); err != nil {
		notices.Error(fmt.Sprintf("Unable to modify user. %s", err))
		return fmt.Errorf("failed to update user on instance %s: %w", instanceID, err)
	}
	notices.Success(fmt.Sprintf(`Updated user "%s".`, userName))

	return nil
}

// PromoteForm shows a replica next to the instance it currently replicates.
type PromoteForm struct {
	Replica       *View `json:"replica"`
	ReplicaSource *View `json:"replica_source"`
}

func (s *Service) replicaPair(ctx context.Context, notices *notice.List, instanceID string) (*trove.Instance, *trove.Instance, error) {
	replica, err := s.client.GetInstance(ctx, instanceID)
	if err != nil {
		notices.Error("Unable to retrieve instance details.")
		return nil, nil, fmt.Errorf("failed to get instance %s: %w", instanceID, err)
	}
	if replica.ReplicaOf == nil || replica.ReplicaOf.ID == "" {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotReplica, instanceID)
	}
	sourceID := replica.ReplicaOf.ID.String()
	source, err := s.client.GetInstance(ctx, sourceID)
	if err != nil {
		notices.Error("Unable to retrieve instance details.")
		return nil, nil, fmt.Errorf("failed to get replica source %s: %w", sourceID, err)
	}
	return replica, source, nil
}

func (s *Service) PromoteForm(ctx context.Context, notices *notice.List, instanceID string) (*PromoteForm, error) {
	replica, source, err := s.replicaPair(ctx, notices, instanceID)
	if err != nil {
		return nil, err
	}
	return &PromoteForm{
		Replica:       newView(replica, nil),
		ReplicaSource: newView(source, nil),
	}, nil
}

// PromoteToReplicaSource makes a replica the new source of its replication
// set.
func (s *Service) PromoteToReplicaSource(ctx context.Context, notices *notice.List, instanceID string) error {
	replica, source, err := s.replicaPair(ctx, notices, instanceID)
	if err != nil {
		return err
	}
	if err := s.client.PromoteToReplicaSource(ctx, replica.ID); err != nil {
		notices.Error(fmt.Sprintf("Unable to promote replica as the new replica source. %s", err))
		return fmt.Errorf("failed to promote instance %s: %w", replica.ID, err)
	}
	notices.Success(fmt.Sprintf(`Promoted replica "%s" as the new replica source (was "%s").`, replica.Name, source.Name))

	return nil
}
