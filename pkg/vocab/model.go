package vocab

// Word is a single vocabulary entry. ID is the hanzi form and doubles as
// the learned-word identifier in the progress store.
type Word struct {
	ID            string
	Pronunciation string
	Meaning       string
	PartOfSpeech  string
	Example       *ExampleSentence
}

// ExampleSentence is an optional usage example attached to a word.
type ExampleSentence struct {
	Text          string
	Pronunciation string
	Meaning       string
}

// Group is a canonical container of words, optionally holding one level of
// sub-grouping (unit -> lesson). A group is either a leaf (Words populated)
// or a parent (SubGroups populated), never both.
type Group struct {
	// Title is the rendered header. Empty means the group has no visual
	// header and its words are rendered directly.
	Title     string
	Words     []Word
	SubGroups []Group
}

// IsParent reports whether the group contains sub-groups.
func (g Group) IsParent() bool { return len(g.SubGroups) > 0 }

// WordIDs returns the identifiers of every word in the group, including
// words of nested sub-groups, in render order.
func (g Group) WordIDs() []string {
	ids := make([]string, 0, len(g.Words))
	for _, w := range g.Words {
		ids = append(ids, w.ID)
	}
	for _, sub := range g.SubGroups {
		ids = append(ids, sub.WordIDs()...)
	}
	return ids
}

// WordCount returns the total number of words across all groups, nested
// sub-groups included.
func WordCount(groups []Group) int {
	total := 0
	for _, g := range groups {
		total += len(g.Words)
		total += WordCount(g.SubGroups)
	}
	return total
}
