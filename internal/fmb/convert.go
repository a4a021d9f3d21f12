package fmb

import (
	"strings"

	"github.com/matthewbaird/formforge/internal/field"
)

// maxListFields caps the list-view columns taken from the primary block.
const maxListFields = 4

// ToFields converts a parsed module into pipeline input. The first
// single-record block is the primary record. Single-record blocks become
// header fields, multi-record blocks become detail tables keyed by block
// name. Hidden items are skipped.
func ToFields(m Module) (field.Metadata, []field.Definition) {
	meta := field.Metadata{
		ID:          strings.ToUpper(m.Name),
		Description: m.Title,
	}
	primary, ok := primaryBlock(m)
	if !ok {
		return meta, nil
	}
	meta.MainObject = strings.ToUpper(primary.Table())
	if len(primary.Items) > 0 {
		meta.KeyAttribute = attributeName(primary.Items[0])
	}

	var defs []field.Definition
	listed := 0
	for _, it := range primary.Items {
		if listed == maxListFields {
			break
		}
		if !it.Visible || !it.QueryAllowed || it.MultiLine {
			continue
		}
		d := definition(it)
		d.Area = field.AreaList
		d.Type = field.TypeTableColumn
		d.InputMode = ""
		d.Filterable, d.Sortable = true, true
		defs = append(defs, d)
		listed++
	}

	for _, b := range m.Blocks {
		fallback := blockTab(m, b)
		table := strings.ToUpper(b.Table())
		for _, it := range b.Items {
			if !it.Visible {
				continue
			}
			d := definition(it)
			d.TabName = tabLabel(m, it.TabPage, fallback)
			if table != meta.MainObject {
				d.ObjectName = table
			}
			if b.SingleRecord {
				d.Area = field.AreaHeader
				if b.Name != primary.Name {
					d.Relationship = strings.ToUpper(b.Name)
				}
			} else {
				d.Area = field.AreaDetail
				d.Relationship = strings.ToUpper(b.Name)
				if d.Type != field.TypeCheckbox {
					d.Type = field.TypeTableColumn
				}
			}
			defs = append(defs, d)
		}
	}
	return meta, defs
}

func primaryBlock(m Module) (Block, bool) {
	for _, b := range m.Blocks {
		if b.SingleRecord {
			return b, true
		}
	}
	if len(m.Blocks) > 0 {
		return m.Blocks[0], true
	}
	return Block{}, false
}

func definition(it Item) field.Definition {
	d := field.Definition{
		FieldName: attributeName(it),
		Label:     firstNonEmpty(it.Prompt, it.Name),
		Title:     it.Prompt,
		Lookup:    it.LOV,
		Width:     field.Number(it.Width),
		MaxType:   MaxType(it),
		Length:    field.Number(it.MaxLength),
	}
	if !it.DatabaseItem {
		d.Persistent = field.Bool(false)
	}
	switch {
	case strings.EqualFold(it.ItemType, ItemCheckBox):
		d.Type = field.TypeCheckbox
	case it.MultiLine:
		d.Type = field.TypeMultiLineText
	default:
		d.Type = field.TypeTextBox
	}
	switch {
	case it.Required:
		d.InputMode = field.InputRequired
	case strings.EqualFold(it.ItemType, ItemDisplay), !it.InsertAllowed && !it.UpdateAllowed:
		d.InputMode = field.InputReadonly
	}
	if d.Type == field.TypeCheckbox {
		d.Length = 0
	}
	return d
}

func attributeName(it Item) string {
	if it.DatabaseItem && it.Column != "" {
		return strings.ToUpper(it.Column)
	}
	return strings.ToUpper(it.Name)
}

// MaxType maps an item's data type to a storage tag.
func MaxType(it Item) string {
	if strings.EqualFold(it.ItemType, ItemCheckBox) {
		return "YORN"
	}
	switch strings.ToUpper(strings.TrimSpace(it.DataType)) {
	case "NUMBER":
		if it.MaxLength > 0 && it.MaxLength <= 10 {
			return "INTEGER"
		}
		return "DECIMAL"
	case "INTEGER", "INT":
		return "INTEGER"
	case "DATE":
		return "DATE"
	case "DATETIME":
		return "DATETIME"
	case "LONG":
		return "CLOB"
	default:
		return "ALN"
	}
}

// blockTab is the tab a block's items fall back to: the tab page of its
// first item that has one, else the block name.
func blockTab(m Module, b Block) string {
	for _, it := range b.Items {
		if it.TabPage != "" {
			return tabLabel(m, it.TabPage, b.Name)
		}
	}
	return b.Name
}

func tabLabel(m Module, page, fallback string) string {
	if page == "" {
		return fallback
	}
	if tp, ok := m.TabPage(page); ok && tp.Label != "" {
		return tp.Label
	}
	return page
}
