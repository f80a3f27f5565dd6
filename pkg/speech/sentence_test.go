package speech

import (
	"reflect"
	"testing"
)

func TestSplitSpeakerFullWidthColon(t *testing.T) {
	speaker, content := SplitSpeaker("小明：你好")
	if speaker != "小明" {
		t.Errorf("expected speaker 小明, got %q", speaker)
	}
	if content != "你好" {
		t.Errorf("expected content 你好, got %q", content)
	}
}

func TestSplitSpeakerASCIIColon(t *testing.T) {
	speaker, content := SplitSpeaker("Wang: 我很好")
	if speaker != "Wang" {
		t.Errorf("expected speaker Wang, got %q", speaker)
	}
	if content != "我很好" {
		t.Errorf("expected content 我很好, got %q", content)
	}
}

func TestSplitSpeakerNoSeparator(t *testing.T) {
	speaker, content := SplitSpeaker("今天天气很好。")
	if speaker != "" {
		t.Errorf("expected no speaker, got %q", speaker)
	}
	if content != "今天天气很好。" {
		t.Errorf("content should be the full sentence, got %q", content)
	}
}

func TestSplitSpeakerLeadingColon(t *testing.T) {
	for _, s := range []string{"：你好", ":hello"} {
		speaker, _ := SplitSpeaker(s)
		if speaker != "" {
			t.Errorf("sentence %q starting with a separator should have no speaker, got %q", s, speaker)
		}
	}
}

func TestSplitSpeakerTrimsWhitespace(t *testing.T) {
	speaker, content := SplitSpeaker("  小红 ：  谢谢你  ")
	if speaker != "小红" {
		t.Errorf("expected trimmed speaker, got %q", speaker)
	}
	if content != "谢谢你" {
		t.Errorf("expected trimmed content, got %q", content)
	}
}

func TestSplitSpeakerOnlyFirstSeparator(t *testing.T) {
	speaker, content := SplitSpeaker("老师：时间是三点：半")
	if speaker != "老师" {
		t.Errorf("expected speaker 老师, got %q", speaker)
	}
	if content != "时间是三点：半" {
		t.Errorf("later separators must stay in the content, got %q", content)
	}
}

func TestSpokenText(t *testing.T) {
	labeled := Line{Speaker: "小明", Content: "你好", Raw: "小明：你好"}
	if got := labeled.SpokenText(); got != "你好" {
		t.Errorf("labeled line should speak content only, got %q", got)
	}
	narration := Line{Raw: "今天天气很好。", Content: "今天天气很好。"}
	if got := narration.SpokenText(); got != "今天天气很好。" {
		t.Errorf("narration should speak the full sentence, got %q", got)
	}
}

func TestParseLinesKeepsRaw(t *testing.T) {
	lines := ParseLines([]string{"小明：你好", "今天天气很好。"})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Raw != "小明：你好" {
		t.Errorf("raw text must be untouched, got %q", lines[0].Raw)
	}
	if lines[1].Speaker != "" {
		t.Errorf("narration line should have no speaker, got %q", lines[1].Speaker)
	}
}

func TestSpeakersFirstSeenOrder(t *testing.T) {
	lines := ParseLines([]string{
		"小明：你好",
		"小红：你好，小明",
		"今天他们见面了。",
		"小明：最近怎么样？",
		"老师：上课了",
	})
	got := Speakers(lines)
	want := []string{"小明", "小红", "老师"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected speakers %v, got %v", want, got)
	}
}
