package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soaringjerry/Rasch/internal/middleware"
	"github.com/soaringjerry/Rasch/internal/rasch"
	"github.com/soaringjerry/Rasch/internal/services"
	"github.com/soaringjerry/Rasch/internal/utils"
)

type authRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	TenantName string `json:"tenant_name,omitempty"`
}

type authResponse struct {
	Token    string `json:"token"`
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
}

// summaryResponse adds localized status texts to a summary.
type summaryResponse struct {
	*services.AnalysisSummary
	StatusText map[rasch.FitStatus]string `json:"status_text"`
	Notice     string                     `json:"notice,omitempty"`
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	loc := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": utils.T(loc, "health.ok")})
}

func (rt *Router) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": rt.version})
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, r, services.NewInvalidError("invalid json"))
		return
	}
	res, err := rt.authSvc.Register(req.Email, req.Password, req.TenantName)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: res.Token, TenantID: res.TenantID, UserID: res.UserID})
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, r, services.NewInvalidError("invalid json"))
		return
	}
	res, err := rt.authSvc.Login(req.Email, req.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: res.Token, TenantID: res.TenantID, UserID: res.UserID})
}

// POST /api/datasets accepts a JSON matrix or a text/csv body named by ?name=.
func (rt *Router) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUpload)
	var (
		d   *services.Dataset
		err error
	)
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if strings.HasPrefix(ct, "text/csv") || strings.HasPrefix(ct, "text/plain") {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload"
		}
		d, err = rt.datasets.CreateFromCSV(tenantID(r), name, r.Body)
	} else {
		var in services.DatasetInput
		if decErr := json.NewDecoder(r.Body).Decode(&in); decErr != nil {
			err = decodeError(decErr)
		} else {
			d, err = rt.datasets.Create(tenantID(r), in)
		}
	}
	if err != nil {
		rt.writeError(w, r, uploadError(err))
		return
	}
	writeJSON(w, http.StatusCreated, d.View(false))
}

func (rt *Router) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	ds, err := rt.datasets.List(tenantID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	out := make([]services.DatasetView, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.View(false))
	}
	writeJSON(w, http.StatusOK, map[string]any{"datasets": out})
}

func (rt *Router) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	d, err := rt.datasets.Get(tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d.View(true))
}

func (rt *Router) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := rt.datasets.Delete(tenantID(r), chi.URLParam(r, "id")); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleSubmitAnalysis(w http.ResponseWriter, r *http.Request) {
	job, err := rt.analyses.Submit(tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/analyses/"+job.ID)
	writeJSON(w, http.StatusAccepted, job.View())
}

func (rt *Router) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	job, err := rt.analyses.Job(tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job.View())
}

func (rt *Router) handleAnalysisSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := rt.analyses.Summary(tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	loc := middleware.LocaleFromContext(r.Context())
	resp := summaryResponse{AnalysisSummary: sum, StatusText: map[rasch.FitStatus]string{}}
	for _, s := range []rasch.FitStatus{rasch.FitProductive, rasch.FitUnderfit, rasch.FitOverfit, rasch.FitUndetermined} {
		resp.StatusText[s] = utils.T(loc, "fit."+string(s))
	}
	if !sum.Empty && !sum.Converged {
		resp.Notice = utils.T(loc, "analysis.capped")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := rt.exports.Export(tenantID(r), services.ExportParams{
		JobID:  chi.URLParam(r, "id"),
		Format: r.URL.Query().Get("format"),
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+res.Filename)
	_, _ = w.Write(res.Data)
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return services.NewInvalidError("invalid json")
}

// uploadError turns an oversized body into a client error.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return services.NewInvalidError("upload too large")
	}
	return err
}
