// Package hrapi is the HTTP client for the upstream employee-management
// backend. It implements the submission interface of the imports domain.
package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hrimport/internal/domain/imports"
)

// Client talks to the HR backend with a bearer token. All calls honor the
// caller's context and the configured request timeout.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// envelope mirrors the backend's response wrapper. Only the fields the
// importer reads are declared.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s", method, path, errorMessage(res.StatusCode, raw))
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}

// errorMessage derives a human-readable failure from a non-2xx response,
// preferring the envelope's error message over the raw body.
func errorMessage(status int, raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 200 {
		return text
	}
	return fmt.Sprintf("backend returned status %d", status)
}

// FetchReferenceData loads the lookup collections the resolver matches
// against. Manager candidates come from the employee listing.
func (c *Client) FetchReferenceData(ctx context.Context) (imports.ReferenceData, error) {
	var refs imports.ReferenceData
	for _, part := range []struct {
		path string
		dst  *[]imports.ReferenceEntity
	}{
		{"/api/v1/departments", &refs.Departments},
		{"/api/v1/designations", &refs.Designations},
		{"/api/v1/locations", &refs.Locations},
		{"/api/v1/shifts", &refs.Shifts},
		{"/api/v1/employees/managers", &refs.Managers},
	} {
		if err := c.do(ctx, http.MethodGet, part.path, nil, part.dst); err != nil {
			return imports.ReferenceData{}, err
		}
	}
	return refs, nil
}

// ListEmployeeNumbers returns every employee number already taken.
func (c *Client) ListEmployeeNumbers(ctx context.Context) ([]string, error) {
	var numbers []string
	if err := c.do(ctx, http.MethodGet, "/api/v1/employees/numbers", nil, &numbers); err != nil {
		return nil, err
	}
	return numbers, nil
}

// bulkCreateResponse tolerates both backend versions: older ones return a
// bare success with no breakdown, newer ones report per-item failures.
type bulkCreateResponse struct {
	CreatedCount *int                    `json:"createdCount"`
	Failed       []imports.BulkItemError `json:"failed"`
}

// BulkCreateEmployees submits the whole create batch in one call. A nil
// result with a nil error means the batch succeeded without per-item detail.
func (c *Client) BulkCreateEmployees(ctx context.Context, records []imports.NewEmployeePayload) (*imports.BulkCreateResult, error) {
	body := map[string]any{"employees": records}
	var res bulkCreateResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/employees/bulk", body, &res); err != nil {
		return nil, err
	}
	if res.CreatedCount == nil && len(res.Failed) == 0 {
		return nil, nil
	}
	result := &imports.BulkCreateResult{Failed: res.Failed}
	if res.CreatedCount != nil {
		result.CreatedCount = *res.CreatedCount
	} else {
		result.CreatedCount = len(records) - len(res.Failed)
	}
	return result, nil
}

// UpdateEmployee patches one employee with a sparse field set.
func (c *Client) UpdateEmployee(ctx context.Context, employeeID string, fields imports.UpdateEmployeePayload) error {
	path := "/api/v1/employees/" + url.PathEscape(employeeID)
	return c.do(ctx, http.MethodPatch, path, fields, nil)
}
