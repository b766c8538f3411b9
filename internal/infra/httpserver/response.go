package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/finsight/internal/domain/errs"
)

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps the error kind to a status code and writes {"message": ...}.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status := statusOf(err)
		log := zerolog.Ctx(req.Context())
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("kind", errs.KindOf(err).String()).Msg("request failed")
		} else {
			log.Debug().Err(err).Msg("request rejected")
		}
		writeJSON(w, status, map[string]string{"message": errs.MessageOf(err)})
	}
}

func statusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindInput:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const maxJSONBody = 1 << 20

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, req *http.Request, v any) error {
	body := http.MaxBytesReader(w, req.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errs.Input("Invalid request body")
	}
	return nil
}
