package api

import (
	"net/http"

	goahttp "goa.design/goa/v3/http"

	"github.com/trovedash/console/server/internal/instance"
	"github.com/trovedash/console/server/internal/notice"
)

type listInstancesResponse struct {
	Instances []*instance.View `json:"instances"`
	Notices   []notice.Notice  `json:"notices"`
}

type accessResponse struct {
	Databases []instance.DatabaseAccess `json:"databases"`
	Notices   []notice.Notice           `json:"notices"`
}

type rootResponse struct {
	*instance.RootStatus
	Notices []notice.Notice `json:"notices"`
}

type resizeInstanceFormResponse struct {
	*instance.ResizeInstanceForm
	Notices []notice.Notice `json:"notices"`
}

type promoteFormResponse struct {
	*instance.PromoteForm
	Notices []notice.Notice `json:"notices"`
}

type resizeVolumeRequest struct {
	NewSizeGB *int `json:"new_size"`
}

type resizeInstanceRequest struct {
	NewFlavor string `json:"new_flavor"`
}

func (s *Service) listInstances(w http.ResponseWriter, r *http.Request) {
	var notices notice.List
	instances, err := s.instances.List(r.Context(), &notices)
	if err != nil {
		writeError(w, r, err, notices.Notices())
		return
	}
	writeResponse(w, r, http.StatusOK, &listInstancesResponse{
		Instances: instances,
		Notices:   notices.Notices(),
	})
}

func (s *Service) getInstance(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inst, err := s.instances.Get(r.Context(), mux.Vars(r)["instance_id"])
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeResponse(w, r, http.StatusOK, inst)
	}
}

func (s *Service) instanceAccess(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		var notices notice.List
		databases := s.instances.Access(r.Context(), &notices,
			vars["instance_id"], vars["user_name"], r.URL.Query().Get("host"))
		if databases == nil {
			databases = []instance.DatabaseAccess{}
		}
		writeResponse(w, r, http.StatusOK, &accessResponse{
			Databases: databases,
			Notices:   notices.Notices(),
		})
	}
}

func (s *Service) instanceRoot(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var notices notice.List
		status, err := s.instances.Root(r.Context(), &notices, mux.Vars(r)["instance_id"])
		if err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusOK, &rootResponse{
			RootStatus: status,
			Notices:    notices.Notices(),
		})
	}
}

func (s *Service) resizeVolume(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resizeVolumeRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		var notices notice.List
		if err := s.instances.ResizeVolume(r.Context(), &notices, mux.Vars(r)["instance_id"], req.NewSizeGB); err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusAccepted, &noticesResponse{Notices: notices.Notices()})
	}
}

func (s *Service) resizeInstanceForm(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var notices notice.List
		f, err := s.instances.ResizeInstanceForm(r.Context(), &notices, mux.Vars(r)["instance_id"])
		if err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusOK, &resizeInstanceFormResponse{
			ResizeInstanceForm: f,
			Notices:            notices.Notices(),
		})
	}
}

func (s *Service) resizeInstance(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resizeInstanceRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		var notices notice.List
		if err := s.instances.ResizeInstance(r.Context(), &notices, mux.Vars(r)["instance_id"], req.NewFlavor); err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusAccepted, &noticesResponse{Notices: notices.Notices()})
	}
}

func (s *Service) createDatabase(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in instance.CreateDatabaseInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		var notices notice.List
		if err := s.instances.CreateDatabase(r.Context(), &notices, mux.Vars(r)["instance_id"], in); err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusAccepted, &noticesResponse{Notices: notices.Notices()})
	}
}

func (s *Service) createUser(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in instance.CreateUserInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		var notices notice.List
		if err := s.instances.CreateUser(r.Context(), &notices, mux.Vars(r)["instance_id"], in); err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusAccepted, &noticesResponse{Notices: notices.Notices()})
	}
}

func (s *Service) editUser(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in instance.EditUserInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		vars := mux.Vars(r)
		var notices notice.List
		if err := s.instances.EditUser(r.Context(), &notices, vars["instance_id"], vars["user_name"], in); err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusAccepted, &noticesResponse{Notices: notices.Notices()})
	}
}

func (s *Service) promoteForm(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var notices notice.List
		f, err := s.instances.PromoteForm(r.Context(), &notices, mux.Vars(r)["instance_id"])
		if err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusOK, &promoteFormResponse{
			PromoteForm: f,
			Notices:     notices.Notices(),
		})
	}
}

func (s *Service) promoteToReplicaSource(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var notices notice.List
		if err := s.instances.PromoteToReplicaSource(r.Context(), &notices, mux.Vars(r)["instance_id"]); err != nil {
			writeError(w, r, err, notices.Notices())
			return
		}
		writeResponse(w, r, http.StatusAccepted, &noticesResponse{Notices: notices.Notices()})
	}
}
