// Package fmb extracts the structure of a legacy form-definition document:
// blocks with their items and triggers, canvases and tab pages, lists of
// values, record groups, buttons and master/detail relations.
//
// The input is treated as attribute soup. Items are attached to blocks by
// name (see Ownership), not by nesting, and every attribute accessor has a
// default, so Parse never fails on partially conformant documents.
package fmb

import "github.com/matthewbaird/formforge/internal/diagnostic"

// Item types with special handling.
const (
	ItemText       = "Text Item"
	ItemDisplay    = "Display Item"
	ItemCheckBox   = "Check Box"
	ItemPushButton = "Push Button"
	ItemImage      = "Image"
)

// Module is a parsed form document.
type Module struct {
	Name         string                 `json:"name"`
	Title        string                 `json:"title"`
	Blocks       []Block                `json:"blocks"`
	Canvases     []Canvas               `json:"canvases"`
	TabPages     []TabPage              `json:"tabPages"`
	LOVs         []LOV                  `json:"lovs"`
	RecordGroups []RecordGroup          `json:"recordGroups"`
	Buttons      []Button               `json:"buttons"`
	Triggers     []Trigger              `json:"triggers,omitempty"`
	Diagnostics  diagnostic.Diagnostics `json:"diagnostics"`
}

// Block is a data block.
type Block struct {
	Name            string     `json:"name"`
	QueryDataSource string     `json:"queryDataSource"`
	SingleRecord    bool       `json:"singleRecord"`
	Items           []Item     `json:"items"`
	Triggers        []Trigger  `json:"triggers,omitempty"`
	Relations       []Relation `json:"relations,omitempty"`
}

// Item is one field of a block.
type Item struct {
	Name          string `json:"name"`
	ItemType      string `json:"itemType"`
	Prompt        string `json:"prompt"`
	Hint          string `json:"hint"`
	DataType      string `json:"dataType"`
	MaxLength     int    `json:"maxLength"`
	Required      bool   `json:"required"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	LOV           string `json:"lov,omitempty"`
	Canvas        string `json:"canvas,omitempty"`
	TabPage       string `json:"tabPage,omitempty"`
	InsertAllowed bool   `json:"insertAllowed"`
	UpdateAllowed bool   `json:"updateAllowed"`
	QueryAllowed  bool   `json:"queryAllowed"`
	Visible       bool   `json:"visible"`
	DatabaseItem  bool   `json:"databaseItem"`
	Column        string `json:"column,omitempty"`
	MultiLine     bool   `json:"multiLine,omitempty"`
}

// Canvas is a drawing surface; tab canvases carry tab pages.
type Canvas struct {
	Name       string    `json:"name"`
	CanvasType string    `json:"canvasType"`
	TabPages   []TabPage `json:"tabPages,omitempty"`
}

// TabPage is one page of a tab canvas.
type TabPage struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Canvas string `json:"canvas,omitempty"`
}

// LOV is a list of values bound to a record group.
type LOV struct {
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	RecordGroup string      `json:"recordGroup"`
	Columns     []LOVColumn `json:"columns"`
}

// LOVColumn maps one record-group column to a return item. Empty strings
// stand for absent attributes.
type LOVColumn struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	ReturnItem string `json:"returnItem"`
}

// RecordGroup is a query or static row source.
type RecordGroup struct {
	Name      string   `json:"name"`
	QueryType string   `json:"queryType"`
	Query     string   `json:"query"`
	Columns   []string `json:"columns,omitempty"`
}

// Button is a user push button. Vendor system buttons are filtered out.
type Button struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Block   string `json:"block,omitempty"`
	Canvas  string `json:"canvas,omitempty"`
	TabPage string `json:"tabPage,omitempty"`
}

// Relation is a master/detail link declared on the master block.
type Relation struct {
	Name        string `json:"name"`
	MasterBlock string `json:"masterBlock"`
	DetailBlock string `json:"detailBlock"`
}

// Trigger is a named code unit.
type Trigger struct {
	Name string `json:"name"`
	Text string `json:"text,omitempty"`
}

// Block returns the block with the given name.
func (m Module) Block(name string) (Block, bool) {
	for _, b := range m.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return Block{}, false
}

// LOV returns the list of values with the given name.
func (m Module) LOV(name string) (LOV, bool) {
	for _, l := range m.LOVs {
		if l.Name == name {
			return l, true
		}
	}
	return LOV{}, false
}

// TabPage returns the tab page with the given name.
func (m Module) TabPage(name string) (TabPage, bool) {
	for _, tp := range m.TabPages {
		if tp.Name == name {
			return tp, true
		}
	}
	return TabPage{}, false
}

// Table returns the record the block is bound to, or the block name for
// blocks without a data source.
func (b Block) Table() string {
	if b.QueryDataSource != "" {
		return b.QueryDataSource
	}
	return b.Name
}
