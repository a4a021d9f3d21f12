package field

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNumber_DecodesPermissively(t *testing.T) {
	tests := []struct {
		in   string
		want Number
	}{
		{`12`, 12},
		{`"30"`, 30},
		{`" 7 "`, 7},
		{`4.9`, 4},
		{`"abc"`, 0},
		{`""`, 0},
		{`null`, 0},
		{`true`, 0},
	}
	for _, tt := range tests {
		var n Number
		require.NoError(t, json.Unmarshal([]byte(tt.in), &n), tt.in)
		assert.Equal(t, tt.want, n, tt.in)
	}
}

func TestDefinition_DecodesFromJSONAndYAML(t *testing.T) {
	var fromJSON Definition
	require.NoError(t, json.Unmarshal([]byte(`{"fieldName":"QTY","area":"detail","relationship":"LINES","length":"x","scale":"2","persistent":false}`), &fromJSON))
	assert.Equal(t, Number(0), fromJSON.Length)
	assert.Equal(t, Number(2), fromJSON.Scale)
	assert.False(t, fromJSON.IsPersistent())

	var fromYAML Definition
	require.NoError(t, yaml.Unmarshal([]byte("fieldName: QTY\narea: detail\nrelationship: LINES\nlength: ten\nwidth: 8\n"), &fromYAML))
	assert.Equal(t, Number(0), fromYAML.Length)
	assert.Equal(t, Number(8), fromYAML.Width)
	assert.True(t, fromYAML.IsPersistent())
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr string
	}{
		{"valid header", Definition{FieldName: "A", Area: AreaHeader}, ""},
		{"valid detail", Definition{FieldName: "A", Area: AreaDetail, Relationship: "REL"}, ""},
		{"missing name", Definition{Area: AreaHeader}, "fieldName is required"},
		{"detail without relationship", Definition{FieldName: "A", Area: AreaDetail}, "relationship is required"},
		{"unknown area", Definition{FieldName: "A", Area: "heder"}, "did you mean 'header'?"},
		{"unknown type", Definition{FieldName: "A", Area: AreaHeader, Type: "textbx"}, "did you mean 'textbox'?"},
		{"unknown mode", Definition{FieldName: "A", Area: AreaHeader, InputMode: "mandatory"}, `unknown inputMode "mandatory"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefinition_ValueErrorIsTyped(t *testing.T) {
	err := Definition{FieldName: "A", Area: AreaHeader, Type: "chekbox"}.Validate()
	var ve *ValueError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "type", ve.Attribute)
	assert.Equal(t, "checkbox", ve.Suggestion)
	assert.Contains(t, ve.Allowed, "textbox")
}

func TestDefinition_Defaults(t *testing.T) {
	d := Definition{FieldName: "A", Area: AreaDetail}
	assert.Equal(t, TypeTableColumn, d.Control())
	assert.Equal(t, InputOptional, d.Mode())
	assert.Equal(t, "A", d.DisplayLabel())
	assert.True(t, d.Bound())

	d.Title = "Schema title"
	assert.Equal(t, "Schema title", d.DisplayLabel())
	d.Label = "Label"
	assert.Equal(t, "Label", d.DisplayLabel())

	h := Definition{FieldName: "B", Area: AreaHeader}
	assert.Equal(t, TypeTextBox, h.Control())
	h.Type = TypeStaticText
	assert.False(t, h.Bound())
}

func TestNaming_Attribute(t *testing.T) {
	std := Metadata{MainObject: "workorder", IsStandardObject: true}
	custom := Metadata{MainObject: "zzinsp"}
	n := DefaultNaming()

	tests := []struct {
		name string
		meta Metadata
		def  Definition
		want string
	}{
		{"vendor field", std, Definition{FieldName: "description"}, "DESCRIPTION"},
		{"new field on vendor object", std, Definition{FieldName: "risk", MaxType: "ALN"}, "ZZ_RISK"},
		{"already prefixed", std, Definition{FieldName: "zz_risk", MaxType: "ALN"}, "ZZ_RISK"},
		{"secondary object", std, Definition{FieldName: "risk", MaxType: "ALN", ObjectName: "asset"}, "RISK"},
		{"new object", custom, Definition{FieldName: "risk", MaxType: "ALN"}, "RISK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Attribute(tt.meta, tt.def))
		})
	}
}

func TestNaming_OwnershipAndObjects(t *testing.T) {
	std := Metadata{MainObject: "WORKORDER", IsStandardObject: true}
	custom := Metadata{MainObject: "ZZINSP"}
	n := Naming{Prefix: "cx_"}

	assert.True(t, n.IsCustom("CX_RISK"))
	assert.False(t, n.IsCustom("ZZ_RISK"))
	assert.Equal(t, "CX_RISK", n.Attribute(std, Definition{FieldName: "risk", MaxType: "ALN"}))

	assert.True(t, n.OwnsColumns(custom, "ZZINSP", "ANYTHING"))
	assert.False(t, n.OwnsColumns(custom, "ASSET", "ANYTHING"))
	assert.True(t, n.OwnsColumns(custom, "ASSET", "CX_ANY"))
	assert.False(t, n.OwnsColumns(std, "WORKORDER", "WONUM"))

	assert.Equal(t, "ASSET", n.Object(std, Definition{ObjectName: "asset"}))
	assert.Equal(t, "WORKORDER", n.Object(std, Definition{}))
	assert.False(t, n.IsPrimary(std, Definition{ObjectName: "asset"}))
}

func TestMetadata_Defaults(t *testing.T) {
	m := Metadata{MainObject: " zzinsp "}
	assert.Equal(t, "ZZINSP", m.Object())
	assert.Equal(t, "ZZINSP_SETUP", m.ScriptNameOrDefault())
	assert.Equal(t, "ZZINSPID", m.Key())
	assert.Equal(t, "ZZINSP", m.AppID())
	assert.Equal(t, DefaultService, m.ServiceOrDefault())

	m.ScriptName, m.KeyAttribute, m.ID, m.Service = "CUSTOM", "inspnum", "inspect", "plusc"
	assert.Equal(t, "CUSTOM", m.ScriptNameOrDefault())
	assert.Equal(t, "INSPNUM", m.Key())
	assert.Equal(t, "INSPECT", m.AppID())
	assert.Equal(t, "PLUSC", m.ServiceOrDefault())
}

func TestClosest(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"detial", "detail"},
		{"HEADER", "header"},
		{"heder", "header"},
		{"lsit", "list"},
		{"zzzzzzzz", ""},
		{"x", ""},
	}
	for _, tt := range tests {
		got, ok := closest(tt.in, knownAreas)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.want != "", ok, tt.in)
	}
}

func TestTypoDistance(t *testing.T) {
	d := func(a, b string) int { return typoDistance([]rune(a), []rune(b)) }
	assert.Equal(t, 3, d("kitten", "sitting"))
	assert.Equal(t, 1, d("ab", "ba"), "adjacent swap is one edit")
	assert.Equal(t, 0, d("區域", "區域"))
	assert.Equal(t, 4, d("", "list"))
}

func TestValueError_ListsAllowedWithoutSuggestion(t *testing.T) {
	err := Definition{FieldName: "A", Area: "zzzzzzzz"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown area "zzzzzzzz" (want one of `)
}
