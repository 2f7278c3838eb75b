package imports

import "strings"

// Fixed defaults applied in the create flow when a column resolves to
// nothing. The update flow never applies defaults; absent means untouched.
const (
	DefaultTimeZone       = "Asia/Kolkata"
	DefaultEmploymentType = "full_time"
	DefaultRole           = "employee"
)

// Header synonyms per target field, in priority order: the first non-empty
// cell under any of these headers wins.
var (
	nameHeaders           = []string{"Full Name", "Name", "Employee Name"}
	emailHeaders          = []string{"Email Address", "Email"}
	phoneHeaders          = []string{"Phone Number", "Phone", "Mobile"}
	departmentHeaders     = []string{"Department"}
	designationHeaders    = []string{"Designation", "Job Title", "Title"}
	locationHeaders       = []string{"Location", "Branch"}
	managerHeaders        = []string{"Reporting Manager", "Manager"}
	dateOfJoiningHeaders  = []string{"Date of Joining", "Joining Date", "Start Date"}
	shiftHeaders          = []string{"Shift"}
	timeZoneHeaders       = []string{"Time Zone", "Timezone"}
	employmentTypeHeaders = []string{"Employment Type", "Type"}
	employeeIDHeaders     = []string{"Employee ID", "Employee Number", "Emp ID"}
)

// Lookup returns the first non-empty trimmed cell under any of the given
// headers. Header comparison is case-insensitive.
func (r Row) Lookup(headers ...string) string {
	for _, want := range headers {
		for key, value := range r {
			if !strings.EqualFold(strings.TrimSpace(key), want) {
				continue
			}
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// HasNameAndEmail reports whether a row qualifies for the create flow.
func (r Row) HasNameAndEmail() bool {
	return r.Lookup(nameHeaders...) != "" && r.Lookup(emailHeaders...) != ""
}

// EmployeeID extracts the update-flow addressing identifier from a row.
func (r Row) EmployeeID() string {
	return r.Lookup(employeeIDHeaders...)
}

// MapNewEmployee shapes one row into a create-flow record. It never fails:
// unresolved optional fields default, unresolved required fields stay empty
// and are judged by the caller.
func MapNewEmployee(row Row, refs ReferenceData, organizationID, employeeNumber string) NewEmployeePayload {
	payload := NewEmployeePayload{
		Name:           row.Lookup(nameHeaders...),
		Email:          row.Lookup(emailHeaders...),
		Phone:          row.Lookup(phoneHeaders...),
		DepartmentID:   Resolve(row.Lookup(departmentHeaders...), refs.Departments),
		DesignationID:  Resolve(row.Lookup(designationHeaders...), refs.Designations),
		LocationID:     Resolve(row.Lookup(locationHeaders...), refs.Locations),
		DateOfJoining:  row.Lookup(dateOfJoiningHeaders...),
		ShiftID:        Resolve(row.Lookup(shiftHeaders...), refs.Shifts),
		TimeZone:       row.Lookup(timeZoneHeaders...),
		EmploymentType: row.Lookup(employmentTypeHeaders...),
		EmployeeNumber: employeeNumber,
		OrganizationID: organizationID,
		Role:           DefaultRole,
	}
	if managerID := Resolve(row.Lookup(managerHeaders...), refs.Managers); managerID != "" {
		payload.ReportingManagerID = &managerID
	}
	if payload.TimeZone == "" {
		payload.TimeZone = DefaultTimeZone
	}
	if payload.EmploymentType == "" {
		payload.EmploymentType = DefaultEmploymentType
	}
	return payload
}

// MapEmployeeUpdate shapes one row into a sparse update-flow field set.
// Entity-name columns go through the resolver; a label that resolves to
// nothing is omitted rather than sent empty.
func MapEmployeeUpdate(row Row, refs ReferenceData) UpdateEmployeePayload {
	fields := UpdateEmployeePayload{}
	put := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	put("name", row.Lookup(nameHeaders...))
	put("email", row.Lookup(emailHeaders...))
	put("phone", row.Lookup(phoneHeaders...))
	put("departmentId", Resolve(row.Lookup(departmentHeaders...), refs.Departments))
	put("designationId", Resolve(row.Lookup(designationHeaders...), refs.Designations))
	put("locationId", Resolve(row.Lookup(locationHeaders...), refs.Locations))
	put("reportingManagerId", Resolve(row.Lookup(managerHeaders...), refs.Managers))
	put("dateOfJoining", row.Lookup(dateOfJoiningHeaders...))
	put("shiftId", Resolve(row.Lookup(shiftHeaders...), refs.Shifts))
	put("timeZone", row.Lookup(timeZoneHeaders...))
	put("employmentType", row.Lookup(employmentTypeHeaders...))
	return fields
}
