package imports

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// RowWarning is a non-blocking preview finding for one row. Warnings never
// exclude a row from submission; the create flow's name/email filter and the
// update flow's identifier check are the only hard gates.
type RowWarning struct {
	RowNumber int    `json:"rowNumber"`
	Field     string `json:"field"`
	Message   string `json:"message"`
}

// ValidateRows inspects parsed rows ahead of submission and collects
// advisory findings: rows the create flow would drop, malformed email
// addresses, and entity labels that resolve to nothing. Row numbers are
// 1-based over the parsed sequence.
func ValidateRows(mode Mode, rows []Row, refs ReferenceData) []RowWarning {
	var warnings []RowWarning
	add := func(n int, field, message string) {
		warnings = append(warnings, RowWarning{RowNumber: n, Field: field, Message: message})
	}

	for i, row := range rows {
		n := i + 1

		if mode == ModeNew && !row.HasNameAndEmail() {
			add(n, "name", "row lacks a name or email and will be skipped")
		}
		if mode == ModeExisting && row.EmployeeID() == "" {
			add(n, "employee_id", "row lacks an employee identifier and will fail")
		}

		if email := row.Lookup(emailHeaders...); email != "" {
			if err := validation.Validate(email, is.EmailFormat); err != nil {
				add(n, "email", fmt.Sprintf("%q is not a valid email address", email))
			}
		}

		for _, check := range []struct {
			field      string
			headers    []string
			candidates []ReferenceEntity
		}{
			{"department", departmentHeaders, refs.Departments},
			{"designation", designationHeaders, refs.Designations},
			{"location", locationHeaders, refs.Locations},
			{"reporting_manager", managerHeaders, refs.Managers},
			{"shift", shiftHeaders, refs.Shifts},
		} {
			label := row.Lookup(check.headers...)
			if label != "" && Resolve(label, check.candidates) == "" {
				add(n, check.field, fmt.Sprintf("%q does not match any known %s and will be omitted", label, check.field))
			}
		}
	}
	return warnings
}
