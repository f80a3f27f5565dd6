// Package study holds the interactive vocabulary table state machine:
// row layout, collapse/expand state, learned-word toggles and the
// aggregate checkbox reconciliation that keeps unit, lesson and chapter
// checkboxes in sync with the progress set.
package study

import (
	"github.com/hskhub/hskhub/pkg/progress"
	"github.com/hskhub/hskhub/pkg/vocab"
)

// NodeID addresses a node in the group tree. Lesson is -1 for a unit or
// flat chapter, otherwise the index of a lesson under the unit.
type NodeID struct {
	Unit   int
	Lesson int
}

// UnitNode returns the NodeID of a top-level group.
func UnitNode(unit int) NodeID { return NodeID{Unit: unit, Lesson: -1} }

// RowKind discriminates the row types of the rendered table.
type RowKind int

const (
	RowWord RowKind = iota
	RowUnitHeader
	RowLessonHeader
)

// Row is one rendered table line. Word rows carry a serial number that
// increases monotonically across the entire table, never resetting per
// group. Checked mirrors the progress set for words and the derived
// aggregate completion for headers.
type Row struct {
	Kind      RowKind
	Node      NodeID
	Word      vocab.Word
	Serial    int
	Title     string
	WordTotal int
	Checked   bool
}

// PersistFunc writes the progress set durably. It is called synchronously
// after every mutation; there is no batching.
type PersistFunc func(progress.Set) error

// Table is the hierarchy renderer state: normalized groups plus the
// learned set, with collapse state per header node.
type Table struct {
	groups   []vocab.Group
	set      progress.Set
	persist  PersistFunc
	rows     []Row
	expanded map[NodeID]bool
	total    int
}

// NewTable builds the table from normalized groups and the loaded learned
// set. All headers start collapsed. persist may be nil when the caller
// handles persistence itself.
func NewTable(groups []vocab.Group, set progress.Set, persist PersistFunc) *Table {
	if set == nil {
		set = progress.NewSet()
	}
	t := &Table{
		groups:   groups,
		set:      set,
		persist:  persist,
		expanded: make(map[NodeID]bool),
		total:    vocab.WordCount(groups),
	}
	t.rebuild()
	return t
}

func (t *Table) rebuild() {
	t.rows = t.rows[:0]
	serial := 1
	for u, g := range t.groups {
		unit := UnitNode(u)
		if g.Title != "" {
			t.rows = append(t.rows, Row{
				Kind:      RowUnitHeader,
				Node:      unit,
				Title:     g.Title,
				WordTotal: len(g.WordIDs()),
			})
		}
		for _, w := range g.Words {
			t.rows = append(t.rows, Row{Kind: RowWord, Node: unit, Word: w, Serial: serial})
			serial++
		}
		for l, sub := range g.SubGroups {
			node := NodeID{Unit: u, Lesson: l}
			t.rows = append(t.rows, Row{
				Kind:      RowLessonHeader,
				Node:      node,
				Title:     sub.Title,
				WordTotal: len(sub.Words),
			})
			for _, w := range sub.Words {
				t.rows = append(t.rows, Row{Kind: RowWord, Node: node, Word: w, Serial: serial})
				serial++
			}
		}
	}
	t.reconcile()
}

// reconcile recomputes every checkbox state from the progress set: word
// rows from membership, header rows from aggregate completion. It is a
// full, unconditional sweep run after every mutation.
func (t *Table) reconcile() {
	for i := range t.rows {
		row := &t.rows[i]
		if row.Kind == RowWord {
			row.Checked = t.set.Has(row.Word.ID)
		} else {
			row.Checked = t.NodeLearned(row.Node)
		}
	}
}

// Rows returns every row regardless of collapse state.
func (t *Table) Rows() []Row { return t.rows }

// Visible returns the rows currently shown: headers are always candidates,
// lesson headers require their unit expanded, and word rows require every
// enclosing header expanded. Words of an untitled group are always shown.
func (t *Table) Visible() []Row {
	out := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		if t.rowVisible(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table) rowVisible(row Row) bool {
	switch row.Kind {
	case RowUnitHeader:
		return true
	case RowLessonHeader:
		return t.expanded[UnitNode(row.Node.Unit)]
	default:
		if row.Node.Lesson >= 0 {
			return t.expanded[UnitNode(row.Node.Unit)] && t.expanded[row.Node]
		}
		if t.groups[row.Node.Unit].Title == "" {
			return true
		}
		return t.expanded[row.Node]
	}
}

// Expanded reports the collapse state of a header node.
func (t *Table) Expanded(n NodeID) bool { return t.expanded[n] }

// Toggle flips a header between collapsed and expanded. Collapsing a unit
// force-collapses its lessons so no stale expanded state survives.
func (t *Table) Toggle(n NodeID) {
	now := !t.expanded[n]
	t.expanded[n] = now
	if n.Lesson == -1 && !now {
		for l := range t.groups[n.Unit].SubGroups {
			t.expanded[NodeID{Unit: n.Unit, Lesson: l}] = false
		}
	}
}

func (t *Table) headerNodes() []NodeID {
	var nodes []NodeID
	for u, g := range t.groups {
		if g.Title != "" {
			nodes = append(nodes, UnitNode(u))
		}
		for l := range g.SubGroups {
			nodes = append(nodes, NodeID{Unit: u, Lesson: l})
		}
	}
	return nodes
}

// ExpandAll expands every unit and lesson header.
func (t *Table) ExpandAll() {
	for _, n := range t.headerNodes() {
		t.expanded[n] = true
	}
}

// CollapseAll collapses every header.
func (t *Table) CollapseAll() {
	for _, n := range t.headerNodes() {
		t.expanded[n] = false
	}
}

// AllExpanded reports whether every header is expanded. The bulk control
// label is derived from this rather than tracked independently.
func (t *Table) AllExpanded() bool {
	nodes := t.headerNodes()
	if len(nodes) == 0 {
		return false
	}
	for _, n := range nodes {
		if !t.expanded[n] {
			return false
		}
	}
	return true
}

func (t *Table) nodeWordIDs(n NodeID) []string {
	if n.Lesson >= 0 {
		return t.groups[n.Unit].SubGroups[n.Lesson].WordIDs()
	}
	return t.groups[n.Unit].WordIDs()
}

// NodeLearned derives aggregate completion: true iff the node's word list
// is non-empty and every word is learned. Empty groups are never complete.
func (t *Table) NodeLearned(n NodeID) bool {
	ids := t.nodeWordIDs(n)
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !t.set.Has(id) {
			return false
		}
	}
	return true
}

// WordLearned reports membership of a single word.
func (t *Table) WordLearned(id string) bool { return t.set.Has(id) }

// Set exposes the live progress set.
func (t *Table) Set() progress.Set { return t.set }

func (t *Table) save() error {
	if t.persist == nil {
		return nil
	}
	return t.persist(t.set)
}

// ToggleWord flips one word's learned state, persists, and reconciles all
// aggregate checkboxes.
func (t *Table) ToggleWord(id string) error {
	if t.set.Has(id) {
		t.set.RemoveAll([]string{id})
	} else {
		t.set.AddAll([]string{id})
	}
	err := t.save()
	t.reconcile()
	return err
}

// SetNodeLearned bulk-marks a unit, lesson or chapter. The node's full
// word list is applied as one set union or difference, persisted once.
func (t *Table) SetNodeLearned(n NodeID, learned bool) error {
	ids := t.nodeWordIDs(n)
	if learned {
		t.set.AddAll(ids)
	} else {
		t.set.RemoveAll(ids)
	}
	err := t.save()
	t.reconcile()
	return err
}

// ResetAll replaces the progress set with an empty one and persists.
// Callers follow up with a full reload rather than patching in place.
func (t *Table) ResetAll() error {
	t.set = progress.NewSet()
	err := t.save()
	t.reconcile()
	return err
}

// Summary returns learned and total word counts. Total is fixed at build
// time; learned is recounted on every call.
func (t *Table) Summary() (learned, total int) {
	for _, row := range t.rows {
		if row.Kind == RowWord && t.set.Has(row.Word.ID) {
			learned++
		}
	}
	return learned, t.total
}

// Percent returns completion as a whole percentage.
func (t *Table) Percent() int {
	learned, total := t.Summary()
	if total == 0 {
		return 0
	}
	return learned * 100 / total
}
