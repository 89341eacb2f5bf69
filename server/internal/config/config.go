package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/trovedash/console/server/internal/datastore"
)

type Logging struct {
	Level  string `koanf:"level" json:"level,omitempty"`
	Pretty bool   `koanf:"pretty" json:"pretty,omitempty"`
}

func (l Logging) validate() []error {
	var errs []error
	if _, err := zerolog.ParseLevel(l.Level); err != nil {
		errs = append(errs, fmt.Errorf("level: invalid log level %q: %w", l.Level, err))
	}
	return errs
}

var loggingDefault = Logging{
	Level: "info",
}

type HTTP struct {
	Enabled  bool   `koanf:"enabled" json:"enabled,omitempty"`
	BindAddr string `koanf:"bind_addr" json:"bind_addr,omitempty"`
	Port     int    `koanf:"port" json:"port,omitempty"`
}

func (h HTTP) validate() []error {
	if !h.Enabled {
		return nil
	}
	var errs []error
	if h.BindAddr == "" {
		errs = append(errs, errors.New("bind_addr cannot be empty"))
	}
	if h.Port <= 0 || h.Port > 65535 {
		errs = append(errs, fmt.Errorf("port: invalid port %d", h.Port))
	}
	return errs
}

var httpDefault = HTTP{
	Enabled:  true,
	BindAddr: "0.0.0.0",
	Port:     3000,
}

// OpenStack holds the Keystone credentials used to reach the Trove and
// Neutron endpoints.
type OpenStack struct {
	IdentityEndpoint string `koanf:"identity_endpoint" json:"identity_endpoint,omitempty"`
	Username         string `koanf:"username" json:"username,omitempty"`
	UserID           string `koanf:"user_id" json:"user_id,omitempty"`
	Password         string `koanf:"password" json:"password,omitempty"`
	ProjectID        string `koanf:"project_id" json:"project_id,omitempty"`
	ProjectName      string `koanf:"project_name" json:"project_name,omitempty"`
	DomainID         string `koanf:"domain_id" json:"domain_id,omitempty"`
	DomainName       string `koanf:"domain_name" json:"domain_name,omitempty"`
	Region           string `koanf:"region" json:"region,omitempty"`
	AllowReauth      bool   `koanf:"allow_reauth" json:"allow_reauth,omitempty"`
	TokenID          string `koanf:"token_id" json:"token_id,omitempty"`
}

func (o OpenStack) validate() []error {
	var errs []error
	if o.IdentityEndpoint == "" {
		errs = append(errs, errors.New("identity_endpoint cannot be empty"))
	}
	if o.TokenID != "" {
		return errs
	}
	if o.Username == "" && o.UserID == "" {
		errs = append(errs, errors.New("username or user_id must be set when token_id is empty"))
	}
	if o.Password == "" {
		errs = append(errs, errors.New("password cannot be empty when token_id is empty"))
	}
	return errs
}

type Config struct {
	Logging               Logging   `koanf:"logging" json:"logging,omitzero"`
	HTTP                  HTTP      `koanf:"http" json:"http,omitzero"`
	OpenStack             OpenStack `koanf:"openstack" json:"openstack,omitzero"`
	ClusterDatastores     []string  `koanf:"cluster_datastores" json:"cluster_datastores,omitempty"`
	GrowSessionTTLSeconds int64     `koanf:"grow_session_ttl_seconds" json:"grow_session_ttl_seconds,omitempty"`
	ProfilingEnabled      bool      `koanf:"profiling_enabled" json:"profiling_enabled,omitempty"`
}

func (c Config) Validate() error {
	var errs []error
	for _, err := range c.Logging.validate() {
		errs = append(errs, fmt.Errorf("logging.%w", err))
	}
	for _, err := range c.HTTP.validate() {
		errs = append(errs, fmt.Errorf("http.%w", err))
	}
	for _, err := range c.OpenStack.validate() {
		errs = append(errs, fmt.Errorf("openstack.%w", err))
	}
	for idx, token := range c.ClusterDatastores {
		if strings.TrimSpace(token) == "" {
			errs = append(errs, fmt.Errorf("cluster_datastores[%d]: cannot be empty", idx))
		}
	}
	if c.GrowSessionTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("grow_session_ttl_seconds: must be positive, got %d", c.GrowSessionTTLSeconds))
	}
	return errors.Join(errs...)
}

func DefaultConfig() Config {
	return Config{
		Logging:               loggingDefault,
		HTTP:                  httpDefault,
		ClusterDatastores:     append([]string(nil), datastore.DefaultClusterDatastores...),
		GrowSessionTTLSeconds: 3600,
	}
}
