package grouping

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/matthewbaird/formforge/internal/field"
)

// builder accumulates one grouping pass. Insertion order is tracked
// alongside the index maps so the resulting slices follow first reference.
type builder struct {
	tabs  []*tabAcc
	index map[string]*tabAcc
	list  []field.Definition
}

type tabAcc struct {
	name    string
	header  []field.Definition
	tables  tableSet
	subs    []*subAcc
	subByID map[string]*subAcc
}

type subAcc struct {
	name   string
	tables tableSet
}

type tableSet struct {
	order []string
	rows  map[string][]field.Definition
}

func newBuilder() *builder {
	return &builder{index: make(map[string]*tabAcc)}
}

func (b *builder) tab(name string) *tabAcc {
	if t, ok := b.index[name]; ok {
		return t
	}
	t := &tabAcc{name: name, subByID: make(map[string]*subAcc)}
	b.index[name] = t
	b.tabs = append(b.tabs, t)
	return t
}

func (t *tabAcc) sub(name string) *subAcc {
	if s, ok := t.subByID[name]; ok {
		return s
	}
	s := &subAcc{name: name}
	t.subByID[name] = s
	t.subs = append(t.subs, s)
	return s
}

func (ts *tableSet) add(rel string, d field.Definition) {
	if ts.rows == nil {
		ts.rows = make(map[string][]field.Definition)
	}
	if _, ok := ts.rows[rel]; !ok {
		ts.order = append(ts.order, rel)
	}
	ts.rows[rel] = append(ts.rows[rel], d)
}

func (ts tableSet) build() []DetailTable {
	return lo.Map(ts.order, func(rel string, _ int) DetailTable {
		return DetailTable{Relationship: rel, Fields: clone(ts.rows[rel])}
	})
}

func (b *builder) build(opts Options) Layout {
	defaultLabel := opts.DefaultMainDetailLabel
	if defaultLabel == "" {
		defaultLabel = DefaultMainDetailLabel
	}

	ids := newIDSet()
	out := Layout{ListFields: clone(b.list)}
	for _, acc := range b.tabs {
		tab := Tab{
			ID:           ids.next(acc.name),
			Name:         acc.name,
			Label:        acc.name,
			HeaderFields: clone(acc.header),
			DetailTables: acc.tables.build(),
		}
		for _, s := range acc.subs {
			tab.SubTabs = append(tab.SubTabs, SubTab{
				ID:           ids.next(acc.name + "_" + s.name),
				Name:         s.name,
				DetailTables: s.tables.build(),
			})
		}
		if label, ok := opts.MainDetailLabels[acc.name]; ok && label != "" {
			tab.MainDetailLabel = label
		} else if len(tab.DetailTables) > 0 {
			tab.MainDetailLabel = defaultLabel
		}
		out.Tabs = append(out.Tabs, tab)
	}
	return out
}

func clone(defs []field.Definition) []field.Definition {
	if len(defs) == 0 {
		return nil
	}
	out := make([]field.Definition, len(defs))
	copy(out, defs)
	return out
}

// idSet produces identifiers that are unique within one layout.
type idSet map[string]int

func newIDSet() idSet { return make(idSet) }

func (s idSet) next(name string) string {
	base := Identifier(name)
	s[base]++
	if n := s[base]; n > 1 {
		return base + "_" + strconv.Itoa(n)
	}
	return base
}

// Identifier lower-cases name and replaces every rune that is not an ASCII
// letter or digit with an underscore. Names without any usable rune map to
// "tab".
func Identifier(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	id := strings.Trim(b.String(), "_")
	if id == "" {
		return "tab"
	}
	return id
}
