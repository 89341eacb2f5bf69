package api

import (
	"net/http"

	"github.com/rs/zerolog"
	goahttp "goa.design/goa/v3/http"

	"github.com/trovedash/console/server/internal/cluster"
	"github.com/trovedash/console/server/internal/instance"
	"github.com/trovedash/console/server/internal/launch"
	"github.com/trovedash/console/server/internal/notice"
	"github.com/trovedash/console/server/internal/version"
)

type Service struct {
	launch    *launch.Factory
	clusters  *cluster.Service
	instances *instance.Service
	logger    zerolog.Logger
}

func NewService(
	factory *launch.Factory,
	clusters *cluster.Service,
	instances *instance.Service,
	logger zerolog.Logger,
) *Service {
	return &Service{
		launch:    factory,
		clusters:  clusters,
		instances: instances,
		logger:    logger,
	}
}

// Mount registers every API route on the muxer.
func (s *Service) Mount(mux goahttp.Muxer) {
	mux.Handle("GET", "/v1/version", s.getVersion)

	mux.Handle("GET", "/v1/clusters", s.listClusters)
	mux.Handle("GET", "/v1/clusters/launch", s.launchForm)
	mux.Handle("POST", "/v1/clusters/launch", s.launchCluster)
	mux.Handle("GET", "/v1/clusters/{cluster_id}", s.getCluster(mux))
	mux.Handle("GET", "/v1/clusters/{cluster_id}/add_instance", s.addInstanceForm(mux))
	mux.Handle("POST", "/v1/clusters/{cluster_id}/add_instance", s.addInstance(mux))
	mux.Handle("GET", "/v1/clusters/{cluster_id}/cluster_grow_details", s.pendingInstances(mux))
	mux.Handle("DELETE", "/v1/clusters/{cluster_id}/cluster_grow_details/{instance_id}", s.removePendingInstance(mux))
	mux.Handle("POST", "/v1/clusters/{cluster_id}/grow", s.growCluster(mux))
	mux.Handle("POST", "/v1/clusters/{cluster_id}/shrink", s.shrinkCluster(mux))
	mux.Handle("POST", "/v1/clusters/{cluster_id}/reset_password", s.resetPassword(mux))

	mux.Handle("GET", "/v1/instances", s.listInstances)
	mux.Handle("GET", "/v1/instances/{instance_id}", s.getInstance(mux))
	mux.Handle("GET", "/v1/instances/{instance_id}/users/{user_name}/access", s.instanceAccess(mux))
	mux.Handle("GET", "/v1/instances/{instance_id}/root", s.instanceRoot(mux))
	mux.Handle("POST", "/v1/instances/{instance_id}/resize_volume", s.resizeVolume(mux))
	mux.Handle("GET", "/v1/instances/{instance_id}/resize_instance", s.resizeInstanceForm(mux))
	mux.Handle("POST", "/v1/instances/{instance_id}/resize_instance", s.resizeInstance(mux))
	mux.Handle("POST", "/v1/instances/{instance_id}/databases", s.createDatabase(mux))
	mux.Handle("POST", "/v1/instances/{instance_id}/users", s.createUser(mux))
	mux.Handle("PUT", "/v1/instances/{instance_id}/users/{user_name}", s.editUser(mux))
	mux.Handle("GET", "/v1/instances/{instance_id}/promote_to_replica_source", s.promoteForm(mux))
	mux.Handle("POST", "/v1/instances/{instance_id}/promote_to_replica_source", s.promoteToReplicaSource(mux))
}

type noticesResponse struct {
	Notices []notice.Notice `json:"notices"`
}

func (s *Service) getVersion(w http.ResponseWriter, r *http.Request) {
	info, err := version.GetInfo()
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeResponse(w, r, http.StatusOK, info)
}
