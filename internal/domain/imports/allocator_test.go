package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocateEmployeeNumbersContinuesFromMax(t *testing.T) {
	got := AllocateEmployeeNumbers(3, []string{"EMP 001", "EMP 007", "EMP003X"})
	assert.Equal(t, []string{"EMP 008", "EMP 009", "EMP 010"}, got)
}

func TestAllocateEmployeeNumbersEmptyExisting(t *testing.T) {
	got := AllocateEmployeeNumbers(2, nil)
	assert.Equal(t, []string{"EMP 001", "EMP 002"}, got)
}

func TestAllocateEmployeeNumbersIgnoresMalformed(t *testing.T) {
	got := AllocateEmployeeNumbers(1, []string{"CONTRACTOR 99", "emp", "EMP-12", "EMP 0x5"})
	assert.Equal(t, []string{"EMP 001"}, got)
}

func TestAllocateEmployeeNumbersCaseAndWidth(t *testing.T) {
	got := AllocateEmployeeNumbers(2, []string{"emp 42", "EMP   0099"})
	assert.Equal(t, []string{"EMP 100", "EMP 101"}, got)
}

func TestAllocateEmployeeNumbersWideSuffix(t *testing.T) {
	got := AllocateEmployeeNumbers(1, []string{"EMP 1000"})
	assert.Equal(t, []string{"EMP 1001"}, got, "width grows past three digits without truncation")
}

func TestAllocateEmployeeNumbersZeroCount(t *testing.T) {
	assert.Empty(t, AllocateEmployeeNumbers(0, []string{"EMP 001"}))
}
