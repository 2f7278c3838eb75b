package imports

import (
	"fmt"
	"strings"
)

// templateColumns are the downloadable starter headers per mode. The update
// template leads with the addressing column; every other column is optional
// and sparse.
var templateColumns = map[Mode][]string{
	ModeNew: {
		"Full Name", "Email Address", "Phone Number", "Department",
		"Designation", "Location", "Reporting Manager", "Date of Joining",
		"Shift", "Time Zone", "Employment Type",
	},
	ModeExisting: {
		"Employee ID", "Full Name", "Email Address", "Phone Number",
		"Department", "Designation", "Location", "Reporting Manager",
		"Date of Joining", "Shift", "Time Zone", "Employment Type",
	},
}

// Template renders the header-only CSV for a mode, prefixed with a UTF-8 BOM
// so spreadsheet applications open it without an encoding prompt.
func Template(mode Mode) (filename string, contents []byte, err error) {
	columns, ok := templateColumns[mode]
	if !ok {
		return "", nil, fmt.Errorf("unknown import mode %q", mode)
	}
	var b strings.Builder
	b.WriteString("\uFEFF")
	b.WriteString(strings.Join(columns, ","))
	b.WriteString("\r\n")
	return fmt.Sprintf("%s_employee_template.csv", mode), []byte(b.String()), nil
}
