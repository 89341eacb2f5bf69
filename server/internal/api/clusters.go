package api

import (
	"net/http"

	goahttp "goa.design/goa/v3/http"

	"github.com/trovedash/console/server/internal/cluster"
	"github.com/trovedash/console/server/internal/launch"
	"github.com/trovedash/console/server/internal/notice"
)

type listClustersResponse struct {
	Clusters []*cluster.View `json:"clusters"`
}

type launchFormResponse struct {
	*launch.Form
	Notices []notice.Notice `json:"notices"`
}

type launchClusterResponse struct {
	ClusterID string          `json:"cluster_id"`
	Notices   []notice.Notice `json:"notices"`
}

type addInstanceFormResponse struct {
	*cluster.AddInstanceForm
	Notices []notice.Notice `json:"notices"`
}

type addInstanceResponse struct {
	Instance *cluster.PendingInstance `json:"instance"`
	Notices  []notice.Notice          `json:"notices"`
}

type pendingInstancesResponse struct {
	Instances []cluster.PendingInstance `json:"instances"`
}

type shrinkRequest struct {
	InstanceIDs []string `json:"instance_ids"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Service) listClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := s.clusters.List(r.Context())
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeResponse(w, r, http.StatusOK, &listClustersResponse{Clusters: clusters})
}

// Each request gets its own builder so lookups are never cached across
// requests.
func (s *Service) launchForm(w http.ResponseWriter, r *http.Request) {
	b := s.launch.New()
	lf := b.LaunchForm(r.Context())
	writeResponse(w, r, http.StatusOK, &launchFormResponse{
		Form:    lf,
		Notices: b.Notices(),
	})
}

func (s *Service) launchCluster(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	b := s.launch.New()
	clusterID, err := b.Launch(r.Context(), fields)
	if err != nil {
		writeError(w, r, err, b.Notices())
		return
	}
	writeResponse(w, r, http.StatusCreated, &launchClusterResponse{
		ClusterID: clusterID,
		Notices:   b.Notices(),
	})
}

func (s *Service) getCluster(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.clusters.Get(r.Context(), mux.Vars(r)["cluster_id"])
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeResponse(w, r, http.StatusOK, c)
	}
}

func (s *Service) addInstanceForm(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var notices notice.List
		f, err := s.clusters.AddInstanceForm(r.Context(), &notices, mux.Vars(r)["cluster_id"])
		if err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusOK, &addInstanceFormResponse{
			AddInstanceForm: f,
			Notices:         notices.Notices(),
		})
	}
}

func (s *Service) addInstance(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in cluster.AddInstanceInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		var notices notice.List
		pending, err := s.clusters.AddInstance(r.Context(), &notices, mux.Vars(r)["cluster_id"], in)
		if err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusCreated, &addInstanceResponse{
			Instance: pending,
			Notices:  notices.Notices(),
		})
	}
}

func (s *Service) pendingInstances(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending := s.clusters.PendingInstances(mux.Vars(r)["cluster_id"])
		if pending == nil {
			pending = []cluster.PendingInstance{}
		}
		writeResponse(w, r, http.StatusOK, &pendingInstancesResponse{Instances: pending})
	}
}

func (s *Service) removePendingInstance(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if !s.clusters.RemovePendingInstance(vars["cluster_id"], vars["instance_id"]) {
			writeResponse(w, r, http.StatusNotFound, newAPIError(errNotFound, "pending instance not found"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Service) growCluster(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var notices notice.List
		if err := s.clusters.Grow(r.Context(), &notices, mux.Vars(r)["cluster_id"]); err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusAccepted, &noticesResponse{Notices: notices.Notices()})
	}
}

func (s *Service) shrinkCluster(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shrinkRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		var notices notice.List
		if err := s.clusters.Shrink(r.Context(), &notices, mux.Vars(r)["cluster_id"], req.InstanceIDs); err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusAccepted, &noticesResponse{Notices: notices.Notices()})
	}
}

func (s *Service) resetPassword(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		var notices notice.List
		if err := s.clusters.ResetPassword(r.Context(), &notices, mux.Vars(r)["cluster_id"], req.Password); err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusOK, &noticesResponse{Notices: notices.Notices()})
	}
}
