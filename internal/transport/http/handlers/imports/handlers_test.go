package importshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrimport/internal/auth"
	"hrimport/internal/domain/imports"
	"hrimport/internal/transport/http/middleware"
)

const testSecret = "test-secret"

type stubBackend struct {
	mu      sync.Mutex
	updated map[string]imports.UpdateEmployeePayload
	created int
}

func (s *stubBackend) FetchReferenceData(context.Context) (imports.ReferenceData, error) {
	return imports.ReferenceData{
		Departments: []imports.ReferenceEntity{{ID: "d1", Name: "Engineering"}},
	}, nil
}

func (s *stubBackend) ListEmployeeNumbers(context.Context) ([]string, error) {
	return []string{"EMP 004"}, nil
}

func (s *stubBackend) BulkCreateEmployees(_ context.Context, records []imports.NewEmployeePayload) (*imports.BulkCreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created += len(records)
	return nil, nil
}

func (s *stubBackend) UpdateEmployee(_ context.Context, employeeID string, fields imports.UpdateEmployeePayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updated == nil {
		s.updated = map[string]imports.UpdateEmployeePayload{}
	}
	s.updated[employeeID] = fields
	return nil
}

type stubStore struct {
	mu   sync.Mutex
	seq  int
	jobs map[string]*imports.Job
}

func (s *stubStore) Create(_ context.Context, userID string, mode imports.Mode, filename string, rowCount int, requestID string) (*imports.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.jobs == nil {
		s.jobs = map[string]*imports.Job{}
	}
	s.seq++
	job := &imports.Job{
		ID:        fmt.Sprintf("job-%d", s.seq),
		UserID:    userID,
		Mode:      mode,
		Filename:  filename,
		RowCount:  rowCount,
		State:     imports.StatePreviewing,
		CreatedAt: time.Now(),
	}
	s.jobs[job.ID] = job
	return job, nil
}

func (s *stubStore) UpdateState(_ context.Context, jobID, userID string, state imports.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.UserID != userID {
		return imports.ErrJobNotFound
	}
	job.State = state
	return nil
}

func (s *stubStore) Finalize(_ context.Context, jobID, userID string, state imports.State, outcome *imports.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.UserID != userID {
		return imports.ErrJobNotFound
	}
	job.State = state
	job.Outcome = outcome
	return nil
}

func (s *stubStore) Get(_ context.Context, jobID, userID string) (*imports.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.UserID != userID {
		return nil, imports.ErrJobNotFound
	}
	return job, nil
}

func (s *stubStore) List(_ context.Context, userID string, _, _ int) ([]*imports.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*imports.Job
	for _, job := range s.jobs {
		if job.UserID == userID {
			out = append(out, job)
		}
	}
	return out, nil
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, string, string, string, string, string, string, any) error {
	return nil
}

func newTestRouter(t *testing.T, backend imports.EmployeeAPI) http.Handler {
	t.Helper()
	service := imports.NewService(backend, &stubStore{}, noopAudit{}, "org-1", time.Hour)
	handler := NewHandler(service, nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Auth(testSecret))
	r.Route("/api/v1", handler.RegisterRoutes)
	return r
}

func bearerToken(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: "u1", Email: "hr@example.com", Role: role}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func multipartUpload(t *testing.T, mode, filename, contents string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("mode", mode))
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, contents)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "body: %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestUploadPreviewConfirm(t *testing.T) {
	backend := &stubBackend{}
	router := newTestRouter(t, backend)
	token := bearerToken(t, auth.RoleHR)

	body, contentType := multipartUpload(t, "new", "people.csv",
		"Name,Email,Department\nJane,jane@example.com,Engineering\nNoEmail,,\n")
	rec := doRequest(t, router, http.MethodPost, "/api/v1/imports/", token, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var preview imports.Preview
	decodeData(t, rec, &preview)
	assert.Equal(t, 2, preview.Job.RowCount)
	assert.NotEmpty(t, preview.Warnings)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/imports/"+preview.Job.ID+"/confirm", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var outcome imports.Outcome
	decodeData(t, rec, &outcome)
	assert.Equal(t, 1, outcome.SuccessCount)
	assert.Zero(t, outcome.FailureCount)
	assert.Equal(t, 1, backend.created)
}

func TestUploadRejectsBadMode(t *testing.T) {
	router := newTestRouter(t, &stubBackend{})
	token := bearerToken(t, auth.RoleHR)

	body, contentType := multipartUpload(t, "bulk", "people.csv", "Name\nJane\n")
	rec := doRequest(t, router, http.MethodPost, "/api/v1/imports/", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	router := newTestRouter(t, &stubBackend{})
	token := bearerToken(t, auth.RoleHR)

	body, contentType := multipartUpload(t, "new", "people.csv", "\n\n")
	rec := doRequest(t, router, http.MethodPost, "/api/v1/imports/", token, body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestImportsRequireHRRole(t *testing.T) {
	router := newTestRouter(t, &stubBackend{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/imports/", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "anonymous request")

	rec = doRequest(t, router, http.MethodGet, "/api/v1/imports/", bearerToken(t, auth.RoleEmployee), nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "employee role")
}

func TestTemplateDownload(t *testing.T) {
	router := newTestRouter(t, &stubBackend{})
	token := bearerToken(t, auth.RoleHR)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/imports/templates/existing", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "existing_employee_template.csv")
	assert.Contains(t, rec.Body.String(), "Employee ID")

	rec = doRequest(t, router, http.MethodGet, "/api/v1/imports/templates/bulk", token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmUnknownJob(t *testing.T) {
	router := newTestRouter(t, &stubBackend{})
	token := bearerToken(t, auth.RoleHR)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/imports/nope/confirm", token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDismissAfterConfirm(t *testing.T) {
	router := newTestRouter(t, &stubBackend{})
	token := bearerToken(t, auth.RoleHR)

	body, contentType := multipartUpload(t, "existing", "people.csv", "Employee ID,Phone\nEMP 001,555-0100\n")
	rec := doRequest(t, router, http.MethodPost, "/api/v1/imports/", token, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)

	var preview imports.Preview
	decodeData(t, rec, &preview)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/imports/"+preview.Job.ID+"/confirm", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/imports/"+preview.Job.ID, token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/imports/"+preview.Job.ID, token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "a dismissed session is gone")
}

func TestReportDownload(t *testing.T) {
	router := newTestRouter(t, &stubBackend{})
	token := bearerToken(t, auth.RoleHR)

	body, contentType := multipartUpload(t, "new", "people.csv", "Name,Email\nJane,jane@example.com\n")
	rec := doRequest(t, router, http.MethodPost, "/api/v1/imports/", token, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)

	var preview imports.Preview
	decodeData(t, rec, &preview)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/imports/"+preview.Job.ID+"/confirm", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/imports/"+preview.Job.ID+"/report.pdf", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")), "response is a PDF document")
}
