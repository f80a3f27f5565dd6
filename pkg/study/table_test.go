package study

import (
	"reflect"
	"testing"

	"github.com/hskhub/hskhub/pkg/progress"
	"github.com/hskhub/hskhub/pkg/vocab"
)

func words(ids ...string) []vocab.Word {
	out := make([]vocab.Word, len(ids))
	for i, id := range ids {
		out[i] = vocab.Word{ID: id}
	}
	return out
}

func nestedGroups() []vocab.Group {
	return []vocab.Group{
		{
			Title: "Unit 1",
			SubGroups: []vocab.Group{
				{Title: "Lesson 1", Words: words("一", "二")},
				{Title: "Lesson 2", Words: words("三")},
			},
		},
		{
			Title: "Unit 2",
			SubGroups: []vocab.Group{
				{Title: "Lesson 1", Words: words("四", "五")},
			},
		},
	}
}

func TestSerialNumbersSpanGroups(t *testing.T) {
	tbl := NewTable(nestedGroups(), nil, nil)
	var serials []int
	for _, row := range tbl.Rows() {
		if row.Kind == RowWord {
			serials = append(serials, row.Serial)
		}
	}
	if !reflect.DeepEqual(serials, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("serials = %v", serials)
	}
}

func TestInitialStateCollapsed(t *testing.T) {
	tbl := NewTable(nestedGroups(), nil, nil)
	visible := tbl.Visible()
	for _, row := range visible {
		if row.Kind != RowUnitHeader {
			t.Fatalf("expected only unit headers visible initially, saw kind %d", row.Kind)
		}
	}
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible rows, got %d", len(visible))
	}
}

func TestToggleVisibility(t *testing.T) {
	tbl := NewTable(nestedGroups(), nil, nil)

	tbl.Toggle(UnitNode(0))
	visible := tbl.Visible()
	// Unit 1 header + its two lesson headers + unit 2 header.
	if len(visible) != 4 {
		t.Fatalf("after unit expand: %d visible rows", len(visible))
	}

	tbl.Toggle(NodeID{Unit: 0, Lesson: 0})
	visible = tbl.Visible()
	// Lesson 1's two words now also show.
	if len(visible) != 6 {
		t.Fatalf("after lesson expand: %d visible rows", len(visible))
	}

	tbl.Toggle(NodeID{Unit: 0, Lesson: 0})
	if len(tbl.Visible()) != 4 {
		t.Fatalf("lesson should collapse again")
	}
}

func TestCollapsingUnitForceCollapsesLessons(t *testing.T) {
	tbl := NewTable(nestedGroups(), nil, nil)
	tbl.Toggle(UnitNode(0))
	tbl.Toggle(NodeID{Unit: 0, Lesson: 0})

	tbl.Toggle(UnitNode(0)) // collapse unit
	if tbl.Expanded(NodeID{Unit: 0, Lesson: 0}) {
		t.Fatalf("lesson survived unit collapse")
	}

	// Re-expanding the unit must not resurrect the lesson's expansion.
	tbl.Toggle(UnitNode(0))
	for _, row := range tbl.Visible() {
		if row.Kind == RowWord {
			t.Fatalf("word rows visible after re-expanding unit only")
		}
	}
}

func TestUntitledGroupAlwaysVisible(t *testing.T) {
	groups := []vocab.Group{{Words: words("一", "二")}}
	tbl := NewTable(groups, nil, nil)
	if len(tbl.Visible()) != 2 {
		t.Fatalf("untitled group words should always render, got %d rows", len(tbl.Visible()))
	}
	if tbl.AllExpanded() {
		t.Fatalf("a table with no headers has no aggregate expansion state")
	}
}

func TestExpandAllCollapseAll(t *testing.T) {
	tbl := NewTable(nestedGroups(), nil, nil)
	if tbl.AllExpanded() {
		t.Fatalf("fresh table must not report all-expanded")
	}
	tbl.ExpandAll()
	if !tbl.AllExpanded() {
		t.Fatalf("expand all did not expand everything")
	}
	if got := len(tbl.Visible()); got != len(tbl.Rows()) {
		t.Fatalf("all rows should be visible, got %d of %d", got, len(tbl.Rows()))
	}
	tbl.CollapseAll()
	if tbl.AllExpanded() {
		t.Fatalf("collapse all left headers expanded")
	}
	if len(tbl.Visible()) != 3 {
		t.Fatalf("only unit headers should remain, got %d", len(tbl.Visible()))
	}
}

func TestAggregateCompletion(t *testing.T) {
	tbl := NewTable(nestedGroups(), nil, nil)
	lesson := NodeID{Unit: 0, Lesson: 0}

	if err := tbl.ToggleWord("一"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if tbl.NodeLearned(lesson) {
		t.Fatalf("lesson complete with one of two words learned")
	}

	if err := tbl.ToggleWord("二"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !tbl.NodeLearned(lesson) {
		t.Fatalf("lesson should be complete with both words learned")
	}
	if tbl.NodeLearned(UnitNode(0)) {
		t.Fatalf("unit not complete while lesson 2 unlearned")
	}

	if err := tbl.ToggleWord("一"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if tbl.NodeLearned(lesson) {
		t.Fatalf("unmarking a word must clear the aggregate")
	}
}

func TestBulkMarkIsMonotonicUnion(t *testing.T) {
	tbl := NewTable(nestedGroups(), progress.NewSet("四"), nil)

	before := tbl.Set().Clone()
	if err := tbl.SetNodeLearned(UnitNode(0), true); err != nil {
		t.Fatalf("bulk mark: %v", err)
	}
	for id := range before {
		if !tbl.Set().Has(id) {
			t.Fatalf("bulk mark removed unrelated word %q", id)
		}
	}
	for _, id := range []string{"一", "二", "三"} {
		if !tbl.Set().Has(id) {
			t.Fatalf("bulk mark missed %q", id)
		}
	}
	if !tbl.NodeLearned(UnitNode(0)) {
		t.Fatalf("unit aggregate not complete after bulk mark")
	}
}

func TestBulkUncheckRemovesExactlyNodeWords(t *testing.T) {
	set := progress.NewSet("一", "二", "三", "四", "五")
	tbl := NewTable(nestedGroups(), set, nil)

	if err := tbl.SetNodeLearned(UnitNode(0), false); err != nil {
		t.Fatalf("bulk uncheck: %v", err)
	}
	for _, id := range []string{"一", "二", "三"} {
		if tbl.Set().Has(id) {
			t.Fatalf("%q should be unlearned", id)
		}
	}
	for _, id := range []string{"四", "五"} {
		if !tbl.Set().Has(id) {
			t.Fatalf("unrelated %q was removed", id)
		}
	}
}

func TestEmptyGroupNeverLearned(t *testing.T) {
	groups := []vocab.Group{{Title: "Empty Chapter"}}
	tbl := NewTable(groups, progress.NewSet("一", "二"), nil)
	if tbl.NodeLearned(UnitNode(0)) {
		t.Fatalf("empty group must never be fully learned")
	}
	for _, row := range tbl.Rows() {
		if row.Kind == RowUnitHeader && row.Checked {
			t.Fatalf("empty chapter checkbox should be unchecked")
		}
	}
}

func TestResetClearsAll(t *testing.T) {
	saves := 0
	tbl := NewTable(nestedGroups(), progress.NewSet("一", "二", "三"), func(progress.Set) error {
		saves++
		return nil
	})
	if err := tbl.ResetAll(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if saves != 1 {
		t.Fatalf("reset should persist exactly once, persisted %d times", saves)
	}
	if len(tbl.Set()) != 0 {
		t.Fatalf("set not empty after reset: %v", tbl.Set().Sorted())
	}
	for _, row := range tbl.Rows() {
		if row.Checked {
			t.Fatalf("row still checked after reset: %+v", row)
		}
	}
}

func TestCheckboxReconciliation(t *testing.T) {
	tbl := NewTable(nestedGroups(), nil, nil)
	if err := tbl.SetNodeLearned(NodeID{Unit: 0, Lesson: 1}, true); err != nil {
		t.Fatalf("mark lesson: %v", err)
	}
	var lessonChecked, unitChecked bool
	for _, row := range tbl.Rows() {
		switch {
		case row.Kind == RowLessonHeader && row.Node == (NodeID{Unit: 0, Lesson: 1}):
			lessonChecked = row.Checked
		case row.Kind == RowUnitHeader && row.Node == UnitNode(0):
			unitChecked = row.Checked
		}
	}
	if !lessonChecked {
		t.Fatalf("lesson header checkbox not reconciled")
	}
	if unitChecked {
		t.Fatalf("unit header checked while lesson 1 incomplete")
	}
}

func TestSummaryAndPercent(t *testing.T) {
	tbl := NewTable(nestedGroups(), nil, nil)
	learned, total := tbl.Summary()
	if learned != 0 || total != 5 {
		t.Fatalf("summary = %d/%d", learned, total)
	}
	if err := tbl.SetNodeLearned(UnitNode(1), true); err != nil {
		t.Fatalf("mark: %v", err)
	}
	learned, _ = tbl.Summary()
	if learned != 2 {
		t.Fatalf("learned = %d", learned)
	}
	if tbl.Percent() != 40 {
		t.Fatalf("percent = %d", tbl.Percent())
	}
	if err := tbl.SetNodeLearned(UnitNode(0), true); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if tbl.Percent() != 100 {
		t.Fatalf("percent = %d", tbl.Percent())
	}
}

func TestEveryMutationPersists(t *testing.T) {
	saves := 0
	tbl := NewTable(nestedGroups(), nil, func(progress.Set) error {
		saves++
		return nil
	})
	tbl.ToggleWord("一")
	tbl.SetNodeLearned(UnitNode(0), true)
	tbl.SetNodeLearned(UnitNode(0), false)
	if saves != 3 {
		t.Fatalf("expected 3 persisted writes, got %d", saves)
	}
}
