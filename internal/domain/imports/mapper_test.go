package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRefs() ReferenceData {
	return ReferenceData{
		Departments:  []ReferenceEntity{{ID: "d1", Name: "Engineering"}},
		Designations: []ReferenceEntity{{ID: "g1", Name: "Software Engineer"}},
		Locations:    []ReferenceEntity{{ID: "l1", Name: "Bengaluru"}},
		Shifts:       []ReferenceEntity{{ID: "s1", Name: "General"}},
		Managers:     []ReferenceEntity{{ID: "m1", Name: "Priya Sharma"}},
	}
}

func TestMapNewEmployeeFullRow(t *testing.T) {
	row := Row{
		"Full Name":         "Jane Doe",
		"Email Address":     "jane@example.com",
		"Phone Number":      "555-0100",
		"Department":        "engineering",
		"Designation":       "Software Engineer",
		"Location":          "Bengaluru",
		"Reporting Manager": "priya sharma",
		"Date of Joining":   "2026-01-15",
		"Shift":             "General",
		"Time Zone":         "Europe/Berlin",
		"Employment Type":   "contract",
	}

	payload := MapNewEmployee(row, testRefs(), "org-1", "EMP 010")

	assert.Equal(t, "Jane Doe", payload.Name)
	assert.Equal(t, "jane@example.com", payload.Email)
	assert.Equal(t, "d1", payload.DepartmentID)
	assert.Equal(t, "g1", payload.DesignationID)
	assert.Equal(t, "l1", payload.LocationID)
	require.NotNil(t, payload.ReportingManagerID)
	assert.Equal(t, "m1", *payload.ReportingManagerID)
	assert.Equal(t, "s1", payload.ShiftID)
	assert.Equal(t, "Europe/Berlin", payload.TimeZone)
	assert.Equal(t, "contract", payload.EmploymentType)
	assert.Equal(t, "EMP 010", payload.EmployeeNumber)
	assert.Equal(t, "org-1", payload.OrganizationID)
	assert.Equal(t, DefaultRole, payload.Role)
}

func TestMapNewEmployeeDefaults(t *testing.T) {
	row := Row{"Name": "Jane", "Email": "jane@example.com"}

	payload := MapNewEmployee(row, testRefs(), "org-1", "EMP 001")

	assert.Equal(t, DefaultTimeZone, payload.TimeZone)
	assert.Equal(t, DefaultEmploymentType, payload.EmploymentType)
	assert.Nil(t, payload.ReportingManagerID, "unresolved manager stays unset, never an empty pointer")
	assert.Empty(t, payload.DepartmentID)
}

func TestMapNewEmployeeSynonymPriority(t *testing.T) {
	row := Row{
		"Full Name":     "Priority Name",
		"Name":          "Fallback Name",
		"Email":         "fallback@example.com",
		"Email Address": "priority@example.com",
	}

	payload := MapNewEmployee(row, ReferenceData{}, "org-1", "EMP 001")

	assert.Equal(t, "Priority Name", payload.Name)
	assert.Equal(t, "priority@example.com", payload.Email)
}

func TestMapNewEmployeeSynonymFallsThroughEmptyCell(t *testing.T) {
	row := Row{"Full Name": "   ", "Name": "Jane", "Email": "jane@example.com"}

	payload := MapNewEmployee(row, ReferenceData{}, "org-1", "EMP 001")
	assert.Equal(t, "Jane", payload.Name, "empty cell under the preferred header falls through to the next synonym")
}

func TestMapEmployeeUpdateSparse(t *testing.T) {
	row := Row{
		"Employee ID": "EMP 007",
		"Phone":       "555-0199",
		"Department":  "Engineering",
		"Location":    "Atlantis",
		"Time Zone":   "",
	}

	fields := MapEmployeeUpdate(row, testRefs())

	assert.Equal(t, UpdateEmployeePayload{
		"phone":        "555-0199",
		"departmentId": "d1",
	}, fields)
	assert.NotContains(t, fields, "locationId", "unresolvable label is omitted, not sent empty")
	assert.NotContains(t, fields, "timeZone", "update flow never applies defaults")
}

func TestRowEmployeeID(t *testing.T) {
	assert.Equal(t, "EMP 007", Row{"Employee ID": "EMP 007"}.EmployeeID())
	assert.Equal(t, "EMP 008", Row{"employee number": " EMP 008 "}.EmployeeID())
	assert.Equal(t, "EMP 009", Row{"Emp ID": "EMP 009"}.EmployeeID())
	assert.Equal(t, "", Row{"Name": "Jane"}.EmployeeID())
}

func TestRowHasNameAndEmail(t *testing.T) {
	assert.True(t, Row{"Name": "Jane", "Email": "jane@example.com"}.HasNameAndEmail())
	assert.False(t, Row{"Name": "Jane"}.HasNameAndEmail())
	assert.False(t, Row{"Email": "jane@example.com"}.HasNameAndEmail())
	assert.False(t, Row{"Name": "  ", "Email": "jane@example.com"}.HasNameAndEmail())
}
