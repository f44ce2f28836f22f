package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/services"
	"github.com/desertthunder/curator/internal/tasks"
)

type createEditRequest struct {
	Name           string       `json:"name" validate:"required,max=120"`
	Description    string       `json:"description" validate:"max=2000"`
	Rules          models.Rules `json:"rules"`
	AutoRegenerate bool         `json:"auto_regenerate"`
}

type productIDsRequest struct {
	ProductIDs []int64 `json:"product_ids" validate:"required,min=1,max=1000,dive,gt=0"`
}

type approveRequest struct {
	ProductIDs []int64 `json:"product_ids" validate:"required_without=All,max=1000,dive,gt=0"`
	All        bool    `json:"all"`
}

type previewRequest struct {
	Limit int `json:"limit" validate:"gte=0,lte=500"`
}

type rulesRequest struct {
	Rules          *models.Rules `json:"rules" validate:"required"`
	AutoRegenerate *bool         `json:"auto_regenerate"`
}

type batchRegenerateRequest struct {
	IDs  []string `json:"ids" validate:"required_without=Auto,max=200,dive,required"`
	Auto bool     `json:"auto"`
}

type batchSyncRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=200,dive,required"`
}

type seoRequest struct {
	Description     string `json:"description" validate:"max=5000"`
	MetaDescription string `json:"meta_description" validate:"max=320"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	Success(w, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) handleListEdits(w http.ResponseWriter, r *http.Request) {
	edits, err := s.engine.List(r.URL.Query().Get("status"))
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Success(w, models.EditViews(edits), s.logger)
}

func (s *Server) handleCreateEdit(w http.ResponseWriter, r *http.Request) {
	var req createEditRequest
	if err := s.decode(w, r, &req, false); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	edit, err := s.engine.CreateEdit(req.Name, req.Description, req.Rules, req.AutoRegenerate)
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Created(w, models.NewEditView(edit), s.logger)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	result, err := s.seeder.Seed()
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Success(w, result, s.logger)
}

func (s *Server) handleBatchRegenerate(w http.ResponseWriter, r *http.Request) {
	var req batchRegenerateRequest
	if err := s.decode(w, r, &req, false); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	if req.Auto {
		result, err := s.engine.RegenerateAuto(r.Context(), nil)
		if err != nil {
			HandleError(w, err, s.logger)
			return
		}
		Success(w, result, s.logger)
		return
	}
	Success(w, s.engine.RegenerateMany(r.Context(), req.IDs, nil), s.logger)
}

func (s *Server) handleBatchSync(w http.ResponseWriter, r *http.Request) {
	var req batchSyncRequest
	if err := s.decode(w, r, &req, false); err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Success(w, s.engine.SyncMany(r.Context(), req.IDs, nil), s.logger)
}

func (s *Server) handleGetEdit(w http.ResponseWriter, r *http.Request) {
	detail, err := s.engine.Detail(chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Success(w, models.NewEditExport(detail.Edit, detail.Memberships, detail.Stats), s.logger)
}

func (s *Server) handleDeleteEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.engine.DeleteEdit(id); err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Success(w, map[string]string{"id": id}, s.logger)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := s.decode(w, r, &req, true); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	candidates, err := s.engine.Preview(r.Context(), chi.URLParam(r, "id"), req.Limit)
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Success(w, candidates, s.logger)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.Regenerate(r.Context(), chi.URLParam(r, "id"), nil)
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Success(w, result, s.logger)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := s.decode(w, r, &req, false); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	id := chi.URLParam(r, "id")
	var (
		result *tasks.Summary
		err    error
	)
	if req.All {
		result, err = s.engine.ApproveAllPending(id)
	} else {
		result, err = s.engine.Approve(id, req.ProductIDs)
	}
	s.writeSummary(w, result, err)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var req productIDsRequest
	if err := s.decode(w, r, &req, false); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	result, err := s.engine.Reject(chi.URLParam(r, "id"), req.ProductIDs)
	s.writeSummary(w, result, err)
}

func (s *Server) handleAddProducts(w http.ResponseWriter, r *http.Request) {
	var req productIDsRequest
	if err := s.decode(w, r, &req, false); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	result, err := s.engine.AddProducts(chi.URLParam(r, "id"), req.ProductIDs)
	s.writeSummary(w, result, err)
}

func (s *Server) handleUpdateRules(w http.ResponseWriter, r *http.Request) {
	var req rulesRequest
	if err := s.decode(w, r, &req, false); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	edit, err := s.engine.UpdateRules(chi.URLParam(r, "id"), *req.Rules, req.AutoRegenerate)
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Success(w, models.NewEditView(edit), s.logger)
}

func (s *Server) handleCreateTerm(w http.ResponseWriter, r *http.Request) {
	termID, err := s.engine.CreateTerm(r.Context(), chi.URLParam(r, "id"), nil)
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Success(w, map[string]int64{"term_id": termID}, s.logger)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.Sync(r.Context(), chi.URLParam(r, "id"), nil)
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Success(w, result, s.logger)
}

func (s *Server) handleGetSEO(w http.ResponseWriter, r *http.Request) {
	meta, err := s.engine.SEO(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Success(w, meta, s.logger)
}

func (s *Server) handleUpdateSEO(w http.ResponseWriter, r *http.Request) {
	var req seoRequest
	if err := s.decode(w, r, &req, false); err != nil {
		HandleError(w, err, s.logger)
		return
	}

	meta := services.TermMeta{Description: req.Description, MetaDescription: req.MetaDescription}
	if err := s.engine.UpdateSEO(r.Context(), chi.URLParam(r, "id"), meta); err != nil {
		HandleError(w, err, s.logger)
		return
	}
	Success(w, meta, s.logger)
}

// writeSummary writes the result of an approval-style operation. A refused transition still returns
// the counts alongside the 409.
func (s *Server) writeSummary(w http.ResponseWriter, result *tasks.Summary, err error) {
	switch {
	case err == nil:
		Success(w, result, s.logger)
	case result != nil && errors.Is(err, models.ErrInvalidTransition):
		ErrorWithData(w, StatusFor(err), err.Error(), result, s.logger)
	default:
		HandleError(w, err, s.logger)
	}
}
