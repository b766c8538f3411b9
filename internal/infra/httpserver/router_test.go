package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/bryanwahyu/finsight/internal/application"
	appai "github.com/bryanwahyu/finsight/internal/application/ai"
	appauth "github.com/bryanwahyu/finsight/internal/application/auth"
	appcompare "github.com/bryanwahyu/finsight/internal/application/comparisons"
	appprefs "github.com/bryanwahyu/finsight/internal/application/preferences"
	appprojects "github.com/bryanwahyu/finsight/internal/application/projects"
	domainai "github.com/bryanwahyu/finsight/internal/domain/ai"
	"github.com/bryanwahyu/finsight/internal/domain/preferences"
	"github.com/bryanwahyu/finsight/internal/infra/ai/prompt"
	"github.com/bryanwahyu/finsight/internal/infra/db/memory"
	"github.com/bryanwahyu/finsight/internal/infra/spreadsheet"
	"github.com/bryanwahyu/finsight/internal/infra/storage"
	"github.com/bryanwahyu/finsight/internal/middleware"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const compareReply = `Sure, here it is:
{
  "Analysis": {
    "KeyMetrics": {"Revenue": "Acme 120, Globex 90"},
    "Trends": "Acme grows faster",
    "Recommendations": ["Globex should cut costs"],
    "PerformanceRanking": ["Acme", "Globex"]
  },
  "ComparativeCharts": {
    "TimeSeriesComparison": {"labels": ["2022", "2023"],
      "datasets": [{"label": "Acme", "data": ["100", 120]}, {"label": "Globex", "data": [80, "90"]}]},
    "GrowthRateComparison": {"labels": ["2023"],
      "datasets": [{"label": "Acme", "data": ["20%"]}, {"label": "Globex", "data": ["12.5%"]}]}
  }
}`

type testServer struct {
	handler http.Handler
	prefs   *memory.PreferencesRepository
	reply   string
	calls   int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	ts := &testServer{prefs: memory.NewPreferencesRepository()}
	fake := domainai.CompleterFunc(func(context.Context, domainai.Request) (string, error) {
		ts.calls++
		return ts.reply, nil
	})
	dispatcher := appai.NewService(map[preferences.ModelType]domainai.Completer{
		preferences.ModelGemini: fake,
		preferences.ModelGemma:  fake,
	}, 0)

	clock := application.FixedClock{T: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)}
	projectRepo := memory.NewProjectRepository()
	failureRepo := memory.NewFailureRepository()
	metrics := middleware.NewMetrics()
	extractor := &spreadsheet.Extractor{Parallel: 2}

	ts.handler = NewRouter(Deps{
		Projects: &appprojects.Service{
			Repo: projectRepo, Prefs: ts.prefs, Files: disk, Extractor: extractor,
			Prompts: prompt.Builder{}, AI: dispatcher, Failures: failureRepo, Metrics: metrics, Clock: clock,
		},
		Comparisons: &appcompare.Service{
			Repo: memory.NewComparisonRepository(), Projects: projectRepo, Prefs: ts.prefs, Extractor: extractor,
			Prompts: prompt.Builder{}, AI: dispatcher, Failures: failureRepo, Metrics: metrics, Clock: clock,
		},
		Preferences: &appprefs.Service{Repo: ts.prefs, Clock: clock},
		Auth: &appauth.Service{
			Users: memory.NewUserRepository(), Secret: []byte("secret"), Clock: application.SystemClock{}, Cost: bcrypt.MinCost,
		},
		Logger:  zerolog.Nop(),
		Metrics: metrics,
		Health:  map[string]middleware.HealthChecker{"uploads": disk},
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": "tester", "email": email, "password": "pw123456"})
	rec := ts.do(t, http.MethodPost, "/api/auth/signup", "", body, "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", body, "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Token        string `json:"token"`
		TrimmedEmail string `json:"trimmedemail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func (ts *testServer) savePrefs(t *testing.T, token, model string) {
	t.Helper()
	body := []byte(`{"modelType":"` + model + `","profession":"Financial analyst","style":"Concise"}`)
	rec := ts.do(t, http.MethodPost, "/api/projects/form", token, body, "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func spreadsheetBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func multipartBody(t *testing.T, field, filename, mimeType string, content []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func (ts *testServer) upload(t *testing.T, token, name string, rows [][]any) string {
	t.Helper()
	body, ct := multipartBody(t, "file", name, xlsxMime, spreadsheetBytes(t, rows))
	rec := ts.do(t, http.MethodPost, "/api/projects", token, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "uploaded", p.Status)
	return p.ID
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	s, _ := body["message"].(string)
	return s
}

func TestProtectedRoutesRequireCredential(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/api/projects", "/api/auth/me", "/api/compare?projectIds=a,b", "/api/projects/form"} {
		rec := ts.do(t, http.MethodGet, path, "", nil, "")
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Equal(t, "Incorrect Credential", message(t, rec))
	}
	rec := ts.do(t, http.MethodGet, "/api/projects", "not-a-jwt", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "ana@example.com")

	body := []byte(`{"username":"x","email":"ana@example.com","password":"pw"}`)
	rec := ts.do(t, http.MethodPost, "/api/auth/signup", "", body, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", message(t, rec))

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", []byte(`{"email":"ana@example.com","password":"nope"}`), "application/json")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", message(t, rec))

	rec = ts.do(t, http.MethodGet, "/api/auth/me", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ana@example.com"`)
	assert.NotContains(t, rec.Body.String(), "PasswordHash")
}

func TestUploadRejections(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "up@example.com")

	rec := ts.do(t, http.MethodPost, "/api/projects", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please upload a file.", message(t, rec))

	body, ct := multipartBody(t, "other", "a.xlsx", xlsxMime, []byte("x"))
	rec = ts.do(t, http.MethodPost, "/api/projects", token, body, ct)
	assert.Equal(t, "Please upload a file.", message(t, rec))

	body, ct = multipartBody(t, "file", "notes.pdf", "application/pdf", []byte("%PDF"))
	rec = ts.do(t, http.MethodPost, "/api/projects", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid file type. Only Excel files (.xls, .xlsx) are allowed.", message(t, rec))

	body, ct = multipartBody(t, "file", "huge.xlsx", xlsxMime, bytes.Repeat([]byte("a"), int(middleware.MaxUploadSize)+1))
	rec = ts.do(t, http.MethodPost, "/api/projects", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File size too large. Maximum size is 10MB.", message(t, rec))
}

func TestAnalyzeFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "an@example.com")
	id := ts.upload(t, token, "acme.xlsx", [][]any{{"Year", "Revenue"}, {2023, 120}})

	rec := ts.do(t, http.MethodPost, "/api/projects/analyze/"+id, token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User preferences not found. Please set your preferences first.", message(t, rec))

	ts.savePrefs(t, token, "gemma2-9b-it")

	ts.reply = "Invalid JSON"
	rec = ts.do(t, http.MethodPost, "/api/projects/analyze/"+id, token, nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Invalid JSON response from LLM", message(t, rec))

	rec = ts.do(t, http.MethodGet, "/api/projects/failures/"+id, token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phase":"normalize"`)

	rec = ts.do(t, http.MethodGet, "/api/projects/charts/"+id, token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ts.reply = `{"Summary":"Good","KeyInsights":["Up"],"ChartData":{"Revenue":{"labels":["2023"],"datasets":[{"label":"Rev","data":["120"]}]}}}`
	rec = ts.do(t, http.MethodPost, "/api/projects/analyze/"+id, token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"analyzed"`)

	rec = ts.do(t, http.MethodGet, "/api/projects/charts/"+id, token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"summary":"Good","insights":["Up"],"chartData":{"Revenue":{"labels":["2023"],"datasets":[{"label":"Rev","data":[120]}]}}}`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/projects/predictions/"+id, token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Predictions not available yet", message(t, rec))

	other := ts.login(t, "other@example.com")
	rec = ts.do(t, http.MethodGet, "/api/projects/"+id, other, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", message(t, rec))
}

func TestAnalyze_InvalidModelType(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "model@example.com")
	id := ts.upload(t, token, "a.xlsx", [][]any{{"x", 1}})

	rec := ts.do(t, http.MethodGet, "/api/auth/me", token, nil, "")
	var me struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.NoError(t, ts.prefs.Upsert(context.Background(), &preferences.Preferences{
		UserID: me.User.ID, ModelType: "invalid", Profession: "x", Style: preferences.StyleNormal,
	}))

	rec = ts.do(t, http.MethodPost, "/api/projects/analyze/"+id, token, nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Invalid model type in preferences", message(t, rec))
	assert.Zero(t, ts.calls)
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "q@example.com")
	id := ts.upload(t, token, "a.xlsx", [][]any{{"Q1", 10}, {"Q2", 20}})
	ts.savePrefs(t, token, "gemini-2.0-flash")

	rec := ts.do(t, http.MethodGet, "/api/projects/search/"+id, token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ts.reply = `{"Answer":"Q2","RelevantData":["Q2 20"],"ChartData":{"Distribution":{"labels":["Q1","Q2"],"data":["10","20"]}}}`
	rec = ts.do(t, http.MethodGet, "/api/projects/search/"+id+"?query=best+quarter", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"Answer":"Q2","RelevantData":["Q2 20"],"ChartData":{"Distribution":{"labels":["Q1","Q2"],"data":[10,20]}}}`, rec.Body.String())
}

func TestCompareFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "cmp@example.com")
	a := ts.upload(t, token, "acme.xlsx", [][]any{{"Year", "Revenue"}, {2022, 100}, {2023, 120}})
	b := ts.upload(t, token, "globex.xlsx", [][]any{{"Year", "Revenue"}, {2022, 80}, {2023, 90}})

	rec := ts.do(t, http.MethodGet, "/api/comparing?projectIds="+a, token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "At least two projects required for comparison", message(t, rec))

	rec = ts.do(t, http.MethodGet, "/api/compare?projectIds="+a+",missing", token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts.savePrefs(t, token, "gemma2-9b-it")
	ts.reply = compareReply
	rec = ts.do(t, http.MethodGet, "/api/comparing?projectIds="+a+","+b, token, nil, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		Success bool `json:"success"`
		Data    struct {
			ID                    string `json:"id"`
			BestPerformingCompany string `json:"bestPerformingCompany"`
			Charts                struct {
				TimeSeriesComparison struct {
					Datasets []struct {
						Data []any `json:"data"`
					} `json:"datasets"`
				} `json:"TimeSeriesComparison"`
			} `json:"charts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "Acme", res.Data.BestPerformingCompany)
	require.NotEmpty(t, res.Data.Charts.TimeSeriesComparison.Datasets)
	for _, ds := range res.Data.Charts.TimeSeriesComparison.Datasets {
		for _, v := range ds.Data {
			assert.IsType(t, float64(0), v)
		}
	}

	rec = ts.do(t, http.MethodGet, "/api/compare/"+res.Data.ID, token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bestPerformingCompany":"Acme"`)

	rec = ts.do(t, http.MethodGet, "/api/compare/history?page=1&page_size=5", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalItems":1`)
}

func TestCompareFailureClassification(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		status  int
		message string
	}{
		{"no json", "Invalid JSON", http.StatusBadGateway, "AI analysis failed - invalid response format"},
		{
			"ranking not array",
			`{"Analysis":{"KeyMetrics":"k","Trends":"t","Recommendations":"r","PerformanceRanking":"Acme"},"ComparativeCharts":{}}`,
			http.StatusBadRequest, "Invalid data format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			token := ts.login(t, "f@example.com")
			a := ts.upload(t, token, "a.xlsx", [][]any{{"x", 1}})
			b := ts.upload(t, token, "b.xlsx", [][]any{{"y", 2}})
			ts.savePrefs(t, token, "gemma2-9b-it")
			ts.reply = tt.reply

			rec := ts.do(t, http.MethodGet, "/api/compare?projectIds="+a+","+b, token, nil, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, message(t, rec))
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
	status, msg := compareFailure("disk full")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Comparison processing failed", msg)
}

func TestProjectEditsAndDelete(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "ed@example.com")
	id := ts.upload(t, token, "a.xlsx", [][]any{{"x", 1}})

	rec := ts.do(t, http.MethodPatch, "/api/projects/"+id+"/status", token, []byte(`{"status":"bogus"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/api/projects/"+id+"/status", token, []byte(`{"status":"Pending"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Pending"`)

	rec = ts.do(t, http.MethodPatch, "/api/projects/"+id, token, []byte(`{"summary":"Edited","insights":["a"]}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"summary":"Edited"`)

	rec = ts.do(t, http.MethodGet, "/api/projects", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "["))

	rec = ts.do(t, http.MethodDelete, "/api/projects/"+id, token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Project deleted successfully", message(t, rec))

	rec = ts.do(t, http.MethodDelete, "/api/projects/"+id, token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/live", "", nil, "")
	assert.Equal(t, "ok", rec.Body.String())
	rec = ts.do(t, http.MethodGet, "/metrics", "", nil, "")
	assert.Contains(t, rec.Body.String(), "requests_total")
}
