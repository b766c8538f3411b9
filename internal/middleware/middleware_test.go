package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/finsight/internal/domain/failures"
)

type verifierFunc func(string) (string, error)

func (f verifierFunc) Verify(token string) (string, error) { return f(token) }

func TestBearerAuth(t *testing.T) {
	v := verifierFunc(func(tok string) (string, error) {
		if tok == "good" {
			return "u1", nil
		}
		return "", errors.New("bad token")
	})
	var seen string
	h := BearerAuth(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserID(r.Context())
	}))

	for _, header := range []string{"", "good", "Basic good", "Bearer ", "Bearer bad"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, header)
		assert.JSONEq(t, `{"message":"Incorrect Credential"}`, rec.Body.String())
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", seen)
}

func TestLogging_AttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	h := Logging(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	out := buf.String()
	assert.Contains(t, out, `"message":"inside"`)
	assert.Contains(t, out, `"path":"/x"`)
	assert.Contains(t, out, `"status":418`)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	m.Pipeline(failures.OpCompare, true)
	m.Pipeline(failures.OpCompare, false)
	m.Pipeline(failures.OpAnalyze, false)

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap["requests_total"])
	assert.EqualValues(t, 1, snap["requests_failed"])
	assert.EqualValues(t, 2, snap["comparisons_total"])
	assert.EqualValues(t, 1, snap["comparisons_failed"])
	assert.EqualValues(t, 1, snap["analyses_failed"])
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, 0)
	t.Cleanup(rl.Close)
	h := rl.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		req = req.WithContext(WithUserID(req.Context(), "u1"))
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)

	// other user, same IP, fresh bucket
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	h.ServeHTTP(rec, req.WithContext(WithUserID(req.Context(), "u2")))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type checkFunc func(context.Context) error

func (f checkFunc) Check(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	h := HealthHandler(map[string]HealthChecker{
		"database": checkFunc(func(context.Context) error { return nil }),
		"uploads":  checkFunc(func(context.Context) error { return errors.New("missing") }),
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"missing"`)
}

func TestValidateUpload(t *testing.T) {
	const xlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	require.NoError(t, ValidateUpload("Report.XLSX", xlsx, 1024, 0))
	require.NoError(t, ValidateUpload("old.xls", "application/vnd.ms-excel", 1024, 0))

	err := ValidateUpload("notes.pdf", "application/pdf", 10, 0)
	assert.EqualError(t, err, "Invalid file type. Only Excel files (.xls, .xlsx) are allowed.")
	err = ValidateUpload("fake.xlsx", "application/pdf", 10, 0)
	assert.Error(t, err)
	err = ValidateUpload("big.xlsx", xlsx, MaxUploadSize+1, 0)
	assert.EqualError(t, err, "File size too large. Maximum size is 10MB.")
}

func TestValidateIDAndPaging(t *testing.T) {
	assert.NoError(t, ValidateID("3f2b8c1e-0000-4000-8000-000000000000"))
	assert.Error(t, ValidateID("../etc"))
	assert.Equal(t, 1, ValidatePage("abc"))
	assert.Equal(t, 3, ValidatePage("3"))
	assert.Equal(t, 10, ValidateLimit(""))
	assert.Equal(t, 100, ValidateLimit("1000"))
}
