package speech

import "strings"

// Voice identifies a synthesized voice. ID is an engine-specific handle
// (ElevenLabs voice IDs); local engines address voices by Name alone.
type Voice struct {
	Name string
	Lang string
	ID   string
}

// Gender is the best-effort classification of a voice by its name.
type Gender int

const (
	GenderUnknown Gender = iota
	GenderFemale
	GenderMale
)

// Classifier decides a voice's likely gender from its name. It is a
// pluggable strategy so tests can stub it without a real voice catalog.
type Classifier func(name string) Gender

// Common identifiers seen in Chinese voice names: Huihui and Yaoyao are
// female, Kangkang male.
var (
	femaleKeywords = []string{"female", "woman", "girl", "huihui", "yaoyao", "lili"}
	maleKeywords   = []string{"male", "man", "boy", "kangkang", "danny", "qiang"}
)

// KeywordClassifier matches gendered keywords against the lowercased
// voice name. Female keywords are checked first so that names containing
// "female" never match the "male" substring.
func KeywordClassifier(name string) Gender {
	n := strings.ToLower(name)
	for _, k := range femaleKeywords {
		if strings.Contains(n, k) {
			return GenderFemale
		}
	}
	for _, k := range maleKeywords {
		if strings.Contains(n, k) {
			return GenderMale
		}
	}
	return GenderUnknown
}

// Assignment maps speakers to voices for one playback sequence.
type Assignment struct {
	// A is the primary voice; unlabeled (narrator) lines always use it.
	A Voice
	// B is the complementary voice for the second speaker.
	B Voice

	bySpeaker map[string]Voice
}

// AssignVoices picks two voices from the available catalog and assigns
// them to the distinct speakers of the sequence. When a female- and a
// male-classified voice both exist they become the pair (female first);
// a single gendered match pairs with any other voice; with nothing
// classifiable the first two catalog voices are used, degrading to the
// engine default when the catalog is empty. The first speaker gets voice
// A, the second voice B, and later speakers alternate by appearance
// parity.
func AssignVoices(lines []Line, voices []Voice, classify Classifier) Assignment {
	if classify == nil {
		classify = KeywordClassifier
	}

	var a, b Voice
	if len(voices) > 0 {
		a = voices[0]
		b = a
		if len(voices) > 1 {
			b = voices[1]
		}
	}

	female, femaleOK := findClassified(voices, classify, GenderFemale, Voice{}, false)
	male, maleOK := findClassified(voices, classify, GenderMale, female, femaleOK)

	switch {
	case femaleOK && maleOK:
		a, b = female, male
	case femaleOK:
		a = female
		if other, ok := findOther(voices, female); ok {
			b = other
		}
	case maleOK:
		b = male
		if other, ok := findOther(voices, male); ok {
			a = other
		}
	}

	asg := Assignment{A: a, B: b, bySpeaker: make(map[string]Voice)}
	for i, sp := range Speakers(lines) {
		switch {
		case i == 0:
			asg.bySpeaker[sp] = a
		case i == 1:
			asg.bySpeaker[sp] = b
		case i%2 == 0:
			asg.bySpeaker[sp] = a
		default:
			asg.bySpeaker[sp] = b
		}
	}
	return asg
}

func findClassified(voices []Voice, classify Classifier, g Gender, exclude Voice, excludeSet bool) (Voice, bool) {
	for _, v := range voices {
		if excludeSet && v == exclude {
			continue
		}
		if classify(v.Name) == g {
			return v, true
		}
	}
	return Voice{}, false
}

func findOther(voices []Voice, not Voice) (Voice, bool) {
	for _, v := range voices {
		if v != not {
			return v, true
		}
	}
	return Voice{}, false
}

// VoiceFor returns the voice assigned to a speaker. Unknown and empty
// speakers fall back to voice A.
func (a Assignment) VoiceFor(speaker string) Voice {
	if speaker == "" {
		return a.A
	}
	if v, ok := a.bySpeaker[speaker]; ok {
		return v
	}
	return a.A
}
