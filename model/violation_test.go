package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	for _, s := range []string{"off", "warning", "error"} {
		sev, err := ParseSeverity(s)
		require.NoError(t, err)
		assert.Equal(t, Severity(s), sev)
	}

	_, err := ParseSeverity("fatal")
	assert.Error(t, err)
}

func TestFamilyIsValid(t *testing.T) {
	for _, f := range AllFamilies() {
		assert.True(t, f.IsValid(), f)
	}
	assert.False(t, Family("style").IsValid())
	assert.Len(t, ImportBoundaryFamilies(), 4)
}

func TestReportFinalize(t *testing.T) {
	t.Run("warnings only pass", func(t *testing.T) {
		r := &Report{Violations: []Violation{
			{Rule: "jsdoc/require-description", File: "b.ts", Severity: SeverityWarning},
		}}
		r.Finalize()
		assert.True(t, r.Passed)
		assert.Equal(t, 1, r.Count(SeverityWarning))
	})

	t.Run("any error fails and output is sorted", func(t *testing.T) {
		r := &Report{Violations: []Violation{
			{Rule: "naming/actions", File: "b.ts", Line: 1, Severity: SeverityError},
			{Rule: "layer-order/repositories", File: "a.ts", Line: 9, Severity: SeverityWarning},
			{Rule: "cardinality/actions", File: "a.ts", Line: 3, Severity: SeverityError},
		}}
		r.Finalize()
		assert.False(t, r.Passed)
		require.Len(t, r.Violations, 3)
		assert.Equal(t, "a.ts", r.Violations[0].File)
		assert.Equal(t, 3, r.Violations[0].Line)
		assert.Equal(t, "b.ts", r.Violations[2].File)
	})
}

func TestViolationString(t *testing.T) {
	v := Violation{Rule: "naming/actions", File: "x.ts", Line: 4, Message: "bad"}
	assert.Equal(t, "x.ts:4: [naming/actions] bad", v.String())
	v.Line = 0
	assert.Equal(t, "x.ts: [naming/actions] bad", v.String())
}
