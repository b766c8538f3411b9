package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	domain "github.com/bryanwahyu/finsight/internal/domain/comparisons"
	"github.com/bryanwahyu/finsight/internal/domain/errs"
	"github.com/bryanwahyu/finsight/internal/middleware"
)

// GET /api/compare?projectIds=a,b[,c...]
// Precondition failures answer {message}; pipeline failures answer
// {success:false, message, error} classified by the error text.
func (r *Router) handleCompare(w http.ResponseWriter, req *http.Request) {
	ctx := context.WithoutCancel(req.Context())
	res, err := r.comparisons.Compare(ctx, middleware.UserID(ctx), req.URL.Query().Get("projectIds"))
	if err == nil {
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": res})
		return
	}

	switch errs.KindOf(err) {
	case errs.KindInput, errs.KindNotFound:
		writeJSON(w, statusOf(err), map[string]string{"message": errs.MessageOf(err)})
		return
	}

	detail := errs.MessageOf(err)
	status, message := compareFailure(detail)
	zerolog.Ctx(ctx).Error().Err(err).Int("status", status).Msg("comparison failed")
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
		"error":   detail,
	})
}

func compareFailure(detail string) (int, string) {
	switch {
	case strings.Contains(detail, "validation failed"):
		return http.StatusBadRequest, "Invalid data format"
	case strings.Contains(detail, "Invalid"):
		return http.StatusBadGateway, "AI analysis failed - invalid response format"
	default:
		return http.StatusInternalServerError, "Comparison processing failed"
	}
}

// GET /api/compare/history?page=&page_size=
func (r *Router) handleCompareHistory(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	page := middleware.ValidatePage(q.Get("page"))
	size := middleware.ValidateLimit(q.Get("page_size"))
	list, err := r.comparisons.History(req.Context(), middleware.UserID(req.Context()), page, size)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /api/compare/{id}
func (r *Router) handleCompareGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if middleware.ValidateID(id) != nil {
		return errs.NotFound("Comparative analysis not found")
	}
	ca, err := r.comparisons.Get(req.Context(), middleware.UserID(req.Context()), domain.ID(id))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, ca)
	return nil
}
