package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/formforge/internal/diagnostic"
	"github.com/matthewbaird/formforge/internal/field"
)

func header(name, tab string) field.Definition {
	return field.Definition{FieldName: name, Area: field.AreaHeader, TabName: tab}
}

func detail(name, tab, rel, sub string) field.Definition {
	return field.Definition{FieldName: name, Area: field.AreaDetail, TabName: tab, Relationship: rel, SubTabName: sub}
}

func TestGroup_HeaderAndDetail(t *testing.T) {
	defs := []field.Definition{
		header("DESCRIPTION", "Main"),
		detail("LINENUM", "Main", "MYDETAIL", ""),
	}

	layout, diags := Group(defs, Options{})
	require.Empty(t, diags.Warnings)
	require.Len(t, layout.Tabs, 1)

	tab := layout.Tabs[0]
	assert.Equal(t, "Main", tab.Name)
	assert.Equal(t, "main", tab.ID)
	require.Len(t, tab.HeaderFields, 1)
	assert.Equal(t, "DESCRIPTION", tab.HeaderFields[0].FieldName)

	dt, ok := tab.Detail("MYDETAIL")
	require.True(t, ok)
	require.Len(t, dt.Fields, 1)
	assert.Equal(t, "LINENUM", dt.Fields[0].FieldName)
	assert.Equal(t, DefaultMainDetailLabel, tab.MainDetailLabel)
	assert.True(t, tab.HasTabGroup())
}

func TestGroup_SubTabsCreatedOnFirstReference(t *testing.T) {
	defs := []field.Definition{
		detail("A", "Main", "REL1", "Costs"),
		detail("B", "Main", "REL2", "Labor"),
		detail("C", "Main", "REL1", "Costs"),
	}

	layout, _ := Group(defs, Options{})
	tab := layout.Tabs[0]

	require.Len(t, tab.SubTabs, 2)
	assert.Equal(t, "Costs", tab.SubTabs[0].Name)
	assert.Equal(t, "Labor", tab.SubTabs[1].Name)
	assert.Empty(t, tab.DetailTables)
	assert.Empty(t, tab.MainDetailLabel, "no own detail tables means no default label")
	assert.True(t, tab.HasTabGroup())

	costs, ok := tab.SubTab("Costs")
	require.True(t, ok)
	rel1, ok := costs.Detail("REL1")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "C"}, names(rel1.Fields))
}

func TestGroup_ListFieldsAreGlobal(t *testing.T) {
	defs := []field.Definition{
		{FieldName: "WONUM", Area: field.AreaList, TabName: "Other", Filterable: true},
		header("DESCRIPTION", "Main"),
		{FieldName: "STATUS", Area: field.AreaList},
	}

	layout, _ := Group(defs, Options{})
	require.Len(t, layout.Tabs, 1, "list fields never create tabs")
	assert.Equal(t, []string{"WONUM", "STATUS"}, names(layout.ListFields))
}

func TestGroup_InputOrderPreserved(t *testing.T) {
	defs := []field.Definition{
		header("Z", "Main"),
		header("A", "Main"),
		header("M", "Main"),
	}

	layout, _ := Group(defs, Options{})
	assert.Equal(t, []string{"Z", "A", "M"}, names(layout.Tabs[0].HeaderFields))
}

func TestGroup_MainDetailLabelOverride(t *testing.T) {
	defs := []field.Definition{
		detail("A", "Main", "REL", ""),
		detail("B", "Second", "REL2", ""),
		header("C", "Third"),
	}

	layout, _ := Group(defs, Options{
		MainDetailLabels:       map[string]string{"Main": "Lines"},
		DefaultMainDetailLabel: "Primary",
	})

	main, _ := layout.Tab("Main")
	second, _ := layout.Tab("Second")
	third, _ := layout.Tab("Third")
	assert.Equal(t, "Lines", main.MainDetailLabel)
	assert.Equal(t, "Primary", second.MainDetailLabel)
	assert.Empty(t, third.MainDetailLabel)
	assert.False(t, third.HasTabGroup())
}

func TestGroup_DetailWithoutRelationshipReported(t *testing.T) {
	defs := []field.Definition{
		{FieldName: "ORPHAN", Area: field.AreaDetail, TabName: "Main"},
	}

	layout, diags := Group(defs, Options{})
	assert.Empty(t, layout.Tabs)
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, diagnostic.CodeMissingRelationship, diags.Warnings[0].Code)
	assert.Equal(t, "ORPHAN", diags.Warnings[0].Field)
}

func TestGroup_EmptyTabNameUsesDefault(t *testing.T) {
	layout, _ := Group([]field.Definition{header("A", "")}, Options{})
	require.Len(t, layout.Tabs, 1)
	assert.Equal(t, DefaultTabName, layout.Tabs[0].Name)
}

func TestGroup_FreshTreePerCall(t *testing.T) {
	defs := []field.Definition{header("A", "Main")}
	first, _ := Group(defs, Options{})
	first.Tabs[0].HeaderFields[0].FieldName = "CHANGED"

	second, _ := Group(defs, Options{})
	assert.Equal(t, "A", second.Tabs[0].HeaderFields[0].FieldName)
	assert.Equal(t, "A", defs[0].FieldName)
}

func TestFlatten_RoundTrip(t *testing.T) {
	cases := map[string][]field.Definition{
		"mixed": {
			header("DESCRIPTION", "Main"),
			{FieldName: "WONUM", Area: field.AreaList},
			detail("LINE", "Main", "LINES", ""),
			detail("COST", "Main", "COSTS", "Costs"),
			header("NOTES", "Notes"),
			detail("HOURS", "Main", "LABOR", "Labor"),
			detail("QTY", "Main", "LINES", ""),
			header("STATUS", ""),
		},
		"only list": {
			{FieldName: "A", Area: field.AreaList},
		},
		"duplicate ids": {
			header("A", "主頁"),
			header("B", "次頁"),
		},
		"empty": nil,
	}

	for name, defs := range cases {
		t.Run(name, func(t *testing.T) {
			opts := Options{MainDetailLabels: map[string]string{"Notes": "Extra"}}
			first, _ := Group(defs, opts)
			second, _ := Group(Flatten(first), opts)
			assert.Equal(t, first, second)
		})
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Main", "main"},
		{"Work Order Lines", "work_order_lines"},
		{"主頁", "tab"},
		{" TAB-1 ", "tab_1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Identifier(tt.in), tt.in)
	}
}

func TestGroup_DuplicateIdentifiersAreSuffixed(t *testing.T) {
	layout, _ := Group([]field.Definition{header("A", "主頁"), header("B", "次頁")}, Options{})
	require.Len(t, layout.Tabs, 2)
	assert.Equal(t, "tab", layout.Tabs[0].ID)
	assert.Equal(t, "tab_2", layout.Tabs[1].ID)
}

func names(defs []field.Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.FieldName
	}
	return out
}
