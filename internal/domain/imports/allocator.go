package imports

import (
	"fmt"
	"regexp"
	"strconv"
)

// EmployeeNumberPrefix is the literal prefix of the human-facing employee
// code, e.g. "EMP 007".
const EmployeeNumberPrefix = "EMP"

var employeeNumberPattern = regexp.MustCompile(`(?i)^emp\s+(\d+)$`)

// AllocateEmployeeNumbers computes count fresh employee numbers following the
// highest numeric suffix found among the existing identifiers. Identifiers
// that do not match the prefix-whitespace-digits pattern are ignored for the
// max computation, so fresh numbers are only guaranteed disjoint from the
// well-formed existing ones.
func AllocateEmployeeNumbers(count int, existing []string) []string {
	maxSeen := uint64(0)
	for _, id := range existing {
		match := employeeNumberPattern.FindStringSubmatch(id)
		if match == nil {
			continue
		}
		value, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		if value > maxSeen {
			maxSeen = value
		}
	}

	allocated := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		allocated = append(allocated, fmt.Sprintf("%s %03d", EmployeeNumberPrefix, maxSeen+uint64(i)))
	}
	return allocated
}
