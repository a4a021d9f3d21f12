package fmb

// RecordKind identifies the element a SpecRecord describes.
type RecordKind string

const (
	KindBlock       RecordKind = "block"
	KindField       RecordKind = "field"
	KindLOV         RecordKind = "lov"
	KindButton      RecordKind = "button"
	KindRecordGroup RecordKind = "recordgroup"
)

// SpecRecord is one display-oriented row of the functional specification
// extracted from a form.
type SpecRecord struct {
	Kind          RecordKind `json:"kind"`
	Block         string     `json:"block,omitempty"`
	Name          string     `json:"name"`
	Prompt        string     `json:"prompt,omitempty"`
	Hint          string     `json:"hint,omitempty"`
	ItemType      string     `json:"itemType,omitempty"`
	DataType      string     `json:"dataType,omitempty"`
	MaxLength     int        `json:"maxLength,omitempty"`
	Required      bool       `json:"required,omitempty"`
	X             int        `json:"x,omitempty"`
	Y             int        `json:"y,omitempty"`
	InsertAllowed bool       `json:"insertAllowed,omitempty"`
	UpdateAllowed bool       `json:"updateAllowed,omitempty"`
	QueryAllowed  bool       `json:"queryAllowed,omitempty"`
	LOV           string     `json:"lov,omitempty"`
	RecordGroup   string     `json:"recordGroup,omitempty"`
	Table         string     `json:"table,omitempty"`
	TabPage       string     `json:"tabPage,omitempty"`
	Query         string     `json:"query,omitempty"`
	QueryType     string     `json:"queryType,omitempty"`
	Columns       int        `json:"columns,omitempty"`
}

// ExtractSpec flattens m into specification rows: each block followed by
// its fields, then lists of values, buttons and record groups.
func ExtractSpec(m Module) []SpecRecord {
	var out []SpecRecord
	for _, b := range m.Blocks {
		out = append(out, SpecRecord{
			Kind:  KindBlock,
			Name:  b.Name,
			Table: b.QueryDataSource,
		})
		for _, it := range b.Items {
			out = append(out, SpecRecord{
				Kind:          KindField,
				Block:         b.Name,
				Name:          it.Name,
				Prompt:        it.Prompt,
				Hint:          it.Hint,
				ItemType:      it.ItemType,
				DataType:      it.DataType,
				MaxLength:     it.MaxLength,
				Required:      it.Required,
				X:             it.X,
				Y:             it.Y,
				InsertAllowed: it.InsertAllowed,
				UpdateAllowed: it.UpdateAllowed,
				QueryAllowed:  it.QueryAllowed,
				LOV:           it.LOV,
				TabPage:       it.TabPage,
			})
		}
	}
	for _, l := range m.LOVs {
		out = append(out, SpecRecord{
			Kind:        KindLOV,
			Name:        l.Name,
			Prompt:      l.Title,
			RecordGroup: l.RecordGroup,
			Columns:     len(l.Columns),
		})
	}
	for _, btn := range m.Buttons {
		out = append(out, SpecRecord{
			Kind:    KindButton,
			Block:   btn.Block,
			Name:    btn.Name,
			Prompt:  btn.Label,
			TabPage: btn.TabPage,
		})
	}
	for _, rg := range m.RecordGroups {
		out = append(out, SpecRecord{
			Kind:      KindRecordGroup,
			Name:      rg.Name,
			Query:     rg.Query,
			QueryType: rg.QueryType,
			Columns:   len(rg.Columns),
		})
	}
	return out
}
