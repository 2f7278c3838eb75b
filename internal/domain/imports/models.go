package imports

import "context"

// Mode selects which submission flow an import session drives.
type Mode string

const (
	// ModeNew creates employees that do not exist yet; employee numbers are
	// allocated locally before submission.
	ModeNew Mode = "new"
	// ModeExisting updates employees addressed by the Employee ID column of
	// each row.
	ModeExisting Mode = "existing"
)

func (m Mode) Valid() bool {
	return m == ModeNew || m == ModeExisting
}

// Row is one data record from an uploaded file, keyed by column header.
// Column order is irrelevant; the order of rows in a parsed sequence matches
// the source file.
type Row map[string]string

// ReferenceEntity is a pre-existing organizational object used only for
// name-to-id lookup during an import.
type ReferenceEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReferenceData holds the read-only lookup collections fetched from the HR
// backend before an import session opens.
type ReferenceData struct {
	Departments  []ReferenceEntity
	Designations []ReferenceEntity
	Locations    []ReferenceEntity
	Shifts       []ReferenceEntity
	Managers     []ReferenceEntity
}

// NewEmployeePayload is the full create-flow record shape expected by the
// backend's bulk endpoint.
type NewEmployeePayload struct {
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	DepartmentID       string  `json:"departmentId"`
	DesignationID      string  `json:"designationId"`
	LocationID         string  `json:"locationId"`
	ReportingManagerID *string `json:"reportingManagerId"`
	DateOfJoining      string  `json:"dateOfJoining"`
	ShiftID            string  `json:"shiftId"`
	TimeZone           string  `json:"timeZone"`
	EmploymentType     string  `json:"employmentType"`
	EmployeeNumber     string  `json:"employeeNumber"`
	OrganizationID     string  `json:"organizationId"`
	Role               string  `json:"role"`
}

// UpdateEmployeePayload is a sparse field set for the update flow: only the
// fields whose source column was present and non-empty appear.
type UpdateEmployeePayload map[string]any

// BulkItemError is one per-record failure reported by the backend's bulk
// create endpoint.
type BulkItemError struct {
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

// BulkCreateResult is the optional per-item breakdown some backend versions
// return from the bulk create call. A nil result means the batch succeeded
// with no per-item detail.
type BulkCreateResult struct {
	CreatedCount int
	Failed       []BulkItemError
}

// EmployeeAPI is the subset of the HR backend this package submits to. The
// backend is a black box; only request/response shapes are assumed.
type EmployeeAPI interface {
	FetchReferenceData(ctx context.Context) (ReferenceData, error)
	ListEmployeeNumbers(ctx context.Context) ([]string, error)
	BulkCreateEmployees(ctx context.Context, records []NewEmployeePayload) (*BulkCreateResult, error)
	UpdateEmployee(ctx context.Context, employeeID string, fields UpdateEmployeePayload) error
}

// MaxFailureMessages caps the failure list carried on an Outcome. Counts stay
// accurate even when the list is truncated.
const MaxFailureMessages = 5

// Outcome is the aggregate result of one submission attempt.
type Outcome struct {
	Flow            Mode     `json:"flow"`
	SuccessCount    int      `json:"successCount"`
	FailureCount    int      `json:"failureCount"`
	FailureMessages []string `json:"failureMessages,omitempty"`
}

func (o *Outcome) addFailure(message string) {
	o.FailureCount++
	if len(o.FailureMessages) < MaxFailureMessages {
		o.FailureMessages = append(o.FailureMessages, message)
	}
}
