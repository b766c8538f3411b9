package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appprefs "github.com/bryanwahyu/finsight/internal/application/preferences"
	appprojects "github.com/bryanwahyu/finsight/internal/application/projects"
	"github.com/bryanwahyu/finsight/internal/domain/errs"
	"github.com/bryanwahyu/finsight/internal/domain/projects"
	"github.com/bryanwahyu/finsight/internal/middleware"
)

// projectID reads {id}; ids that cannot exist are reported as not found.
func projectID(req *http.Request) (projects.ProjectID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateID(id); err != nil {
		return "", errs.NotFound("Project not found")
	}
	return projects.ProjectID(id), nil
}

// POST /api/projects (multipart, field "file")
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	sizeMsg := "File size too large. Maximum size is " + strconv.FormatInt(r.maxUpload>>20, 10) + "MB."
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload+(1<<20))
	if err := req.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return errs.Input("%s", sizeMsg)
		}
		return errs.Input("Please upload a file.")
	}
	defer func() { _ = req.MultipartForm.RemoveAll() }()

	file, header, err := req.FormFile("file")
	if err != nil {
		return errs.Input("Please upload a file.")
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if err := middleware.ValidateUpload(header.Filename, mimeType, header.Size, r.maxUpload); err != nil {
		return errs.Input("%s", err.Error())
	}

	p, err := r.projects.Upload(req.Context(), appprojects.UploadCommand{
		UserID:   middleware.UserID(req.Context()),
		Filename: middleware.SanitizeString(header.Filename),
		MimeType: mimeType,
		Body:     file,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, p)
	return nil
}

// GET /api/projects
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	list, err := r.projects.List(req.Context(), middleware.UserID(req.Context()))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /api/projects/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := projectID(req)
	if err != nil {
		return err
	}
	p, err := r.projects.Get(req.Context(), middleware.UserID(req.Context()), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}

// PATCH /api/projects/{id}
func (r *Router) handleUpdate(w http.ResponseWriter, req *http.Request) error {
	id, err := projectID(req)
	if err != nil {
		return err
	}
	var body struct {
		Summary  string   `json:"summary"`
		Insights []string `json:"insights"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	p, err := r.projects.UpdateDetails(req.Context(), middleware.UserID(req.Context()), id, body.Summary, body.Insights)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}

// PATCH /api/projects/{id}/status
func (r *Router) handleUpdateStatus(w http.ResponseWriter, req *http.Request) error {
	id, err := projectID(req)
	if err != nil {
		return err
	}
	var body struct {
		Status projects.Status `json:"status"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	p, err := r.projects.UpdateStatus(req.Context(), middleware.UserID(req.Context()), id, body.Status)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}

// DELETE /api/projects/{id}
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	id, err := projectID(req)
	if err != nil {
		return err
	}
	if err := r.projects.Delete(req.Context(), middleware.UserID(req.Context()), id); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted successfully"})
	return nil
}

// POST /api/projects/analyze/{id}
// Pipeline jalan pakai context tanpa cancel: client disconnect tidak membatalkan analisa.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	id, err := projectID(req)
	if err != nil {
		return err
	}
	ctx := context.WithoutCancel(req.Context())
	p, err := r.projects.Analyze(ctx, middleware.UserID(ctx), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}

// GET /api/projects/search/{id}?query=
func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) error {
	id, err := projectID(req)
	if err != nil {
		return err
	}
	ctx := context.WithoutCancel(req.Context())
	query := middleware.SanitizeString(req.URL.Query().Get("query"))
	res, err := r.projects.Query(ctx, middleware.UserID(ctx), id, query)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// GET /api/projects/charts/{id}
func (r *Router) handleCharts(w http.ResponseWriter, req *http.Request) error {
	id, err := projectID(req)
	if err != nil {
		return err
	}
	view, err := r.projects.Charts(req.Context(), middleware.UserID(req.Context()), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, view)
	return nil
}

// GET /api/projects/predictions/{id}
func (r *Router) handlePredictions(w http.ResponseWriter, req *http.Request) error {
	id, err := projectID(req)
	if err != nil {
		return err
	}
	view, err := r.projects.Predictions(req.Context(), middleware.UserID(req.Context()), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, view)
	return nil
}

// GET /api/projects/failures/{id}?limit=
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	id, err := projectID(req)
	if err != nil {
		return err
	}
	limit := middleware.ValidateLimit(req.URL.Query().Get("limit"))
	list, err := r.projects.ListFailures(req.Context(), middleware.UserID(req.Context()), id, limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /api/projects/form
func (r *Router) handleGetPreferences(w http.ResponseWriter, req *http.Request) error {
	p, err := r.prefs.Get(req.Context(), middleware.UserID(req.Context()))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}

// POST /api/projects/form
func (r *Router) handleSavePreferences(w http.ResponseWriter, req *http.Request) error {
	var body appprefs.SaveCommand
	if err := decode(w, req, &body); err != nil {
		return err
	}
	body.UserID = middleware.UserID(req.Context())
	body.CustomPrompt = middleware.SanitizeString(body.CustomPrompt)
	p, err := r.prefs.Save(req.Context(), body)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Preferences saved successfully",
		"preferences": p,
	})
	return nil
}
