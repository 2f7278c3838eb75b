package hrapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrimport/internal/domain/imports"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, "test-token", 5*time.Second)
}

func TestFetchReferenceData(t *testing.T) {
	mux := http.NewServeMux()
	collections := map[string][]imports.ReferenceEntity{
		"/api/v1/departments":        {{ID: "d1", Name: "Engineering"}},
		"/api/v1/designations":       {{ID: "g1", Name: "Software Engineer"}},
		"/api/v1/locations":          {{ID: "l1", Name: "Bengaluru"}},
		"/api/v1/shifts":             {{ID: "s1", Name: "General"}},
		"/api/v1/employees/managers": {{ID: "m1", Name: "Priya Sharma"}},
	}
	for path, entities := range collections {
		entities := entities
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": entities})
		})
	}

	client := newTestClient(t, mux)
	refs, err := client.FetchReferenceData(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "d1", refs.Departments[0].ID)
	assert.Equal(t, "Priya Sharma", refs.Managers[0].Name)
}

func TestListEmployeeNumbers(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/employees/numbers", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []string{"EMP 001", "EMP 007"}})
	}))

	numbers, err := client.ListEmployeeNumbers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"EMP 001", "EMP 007"}, numbers)
}

func TestBulkCreateEmployeesBareSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body struct {
			Employees []imports.NewEmployeePayload `json:"employees"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Employees, 2)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	result, err := client.BulkCreateEmployees(context.Background(), make([]imports.NewEmployeePayload, 2))
	require.NoError(t, err)
	assert.Nil(t, result, "no per-item breakdown means a bare success")
}

func TestBulkCreateEmployeesPerItemBreakdown(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"createdCount": 1,
				"failed":       []map[string]string{{"identifier": "john@example.com", "message": "duplicate email"}},
			},
		})
	}))

	result, err := client.BulkCreateEmployees(context.Background(), make([]imports.NewEmployeePayload, 2))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.CreatedCount)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "duplicate email", result.Failed[0].Message)
}

func TestBulkCreateEmployeesRejectedBatch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]string{"message": "duplicate email: jane@example.com"},
		})
	}))

	_, err := client.BulkCreateEmployees(context.Background(), make([]imports.NewEmployeePayload, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate email: jane@example.com", "the envelope message surfaces verbatim")
}

func TestUpdateEmployee(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/employees/EMP 007", r.URL.Path)
		var fields map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		assert.Equal(t, "555-0199", fields["phone"])
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	err := client.UpdateEmployee(context.Background(), "EMP 007", imports.UpdateEmployeePayload{"phone": "555-0199"})
	require.NoError(t, err)
}

func TestUpdateEmployeeNonJSONError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))

	err := client.UpdateEmployee(context.Background(), "EMP 007", imports.UpdateEmployeePayload{"phone": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream unavailable", "plain-text bodies still surface")
}
