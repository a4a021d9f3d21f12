package diagnostic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		name string
		d    Diagnostic
		want string
	}{
		{"full", Diagnostic{Code: "missing-field", Message: "not bound", Object: "WORKORDER", Field: "RISK"}, "[WORKORDER] RISK: [missing-field] not bound"},
		{"object only", Diagnostic{Message: "m", Object: "B1"}, "[B1]: m"},
		{"field only", Diagnostic{Code: "c", Message: "m", Field: "F"}, "F: [c] m"},
		{"bare", Diagnostic{Message: "m"}, "m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
}

func TestDiagnostics_AddRoutesBySeverity(t *testing.T) {
	var d Diagnostics
	d.AddInfo("i", "info", "", "")
	d.AddWarning("w", "warn", "", "")
	d.Add(Diagnostic{Severity: "fatal", Code: "x", Message: "odd"})
	require.Len(t, d.Infos, 1)
	require.Len(t, d.Warnings, 1)
	require.Len(t, d.Errors, 1)
	assert.Equal(t, SeverityError, d.Errors[0].Severity, "unknown severities are errors")
	assert.True(t, d.HasErrors())
}

func TestDiagnostics_MergeAndErr(t *testing.T) {
	var d Diagnostics
	assert.NoError(t, d.Err())

	var other Diagnostics
	other.AddError(CodeInvalidField, "bad area", "", "A")
	other.AddError(CodeInvalidField, "bad type", "", "B")
	other.AddWarning(CodeDanglingEdge, "gone", "r1", "")
	other.AddWarning(CodeNamingConvention, "stray", "", "X")
	d.Merge(other)

	assert.EqualError(t, d.Err(), "A: [invalid-field] bad area; B: [invalid-field] bad type")
	assert.Len(t, d.WithCode(CodeDanglingEdge), 1)
	assert.Empty(t, d.WithCode(CodeInvalidField), "only warnings are filtered")
}

func TestDiagnostics_JSON(t *testing.T) {
	var d Diagnostics
	d.AddWarning(CodeMissingField, "m", "O", "")
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"warnings":[{"severity":"warning","code":"missing-field","message":"m","object":"O"}]}`, string(b))
}
