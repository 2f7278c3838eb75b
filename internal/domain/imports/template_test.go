package imports

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateNewMode(t *testing.T) {
	filename, contents, err := Template(ModeNew)
	require.NoError(t, err)

	assert.Equal(t, "new_employee_template.csv", filename)
	text := string(contents)
	assert.True(t, strings.HasPrefix(text, "\uFEFF"), "template carries a UTF-8 BOM")
	assert.Contains(t, text, "Full Name,Email Address")
	assert.NotContains(t, text, "Employee ID", "the create template never carries the addressing column")
}

func TestTemplateExistingMode(t *testing.T) {
	filename, contents, err := Template(ModeExisting)
	require.NoError(t, err)

	assert.Equal(t, "existing_employee_template.csv", filename)
	assert.True(t, strings.HasPrefix(string(contents), "\uFEFFEmployee ID,"))
}

func TestTemplateUnknownMode(t *testing.T) {
	_, _, err := Template(Mode("bulk"))
	assert.Error(t, err)
}

func TestTemplateRoundTripsThroughParser(t *testing.T) {
	for _, mode := range []Mode{ModeNew, ModeExisting} {
		_, contents, err := Template(mode)
		require.NoError(t, err)

		rows, err := ParseUpload("template.csv", contents)
		require.NoError(t, err)
		assert.Empty(t, rows, "a pristine template has a header and no data rows")
	}
}
