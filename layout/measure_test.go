package layout

import (
	"reflect"
	"strings"
	"testing"
)

func TestWrapTextRespectsWidth(t *testing.T) {
	ts := &monoTypesetter{}
	font := FontResource{Size: 10} // 每字符 5px
	text := "Bharat Mandampam | Jan 10-18 | Entry Free | Theme: valour & Wisdom"
	for _, limit := range []int{60, 100, 150, 400} {
		lines, err := WrapText(text, font, limit, ts)
		if err != nil {
			t.Fatalf("WrapText error: %v", err)
		}
		if got := strings.Join(lines, " "); got != strings.Join(strings.Fields(text), " ") {
			t.Fatalf("折行后内容丢失: %q", got)
		}
		for i, l := range lines {
			ext, _ := ts.Measure(l, font)
			if ext.Width > limit {
				t.Fatalf("limit=%d 第 %d 行超宽: %q (%d)", limit, i, l, ext.Width)
			}
		}
	}
}

func TestWrapTextKeepsOversizeWordWhole(t *testing.T) {
	lines, err := WrapText("a supercalifragilistic b", FontResource{Size: 10}, 30, &monoTypesetter{})
	if err != nil {
		t.Fatalf("WrapText error: %v", err)
	}
	want := []string{"a", "supercalifragilistic", "b"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %q, want %q", lines, want)
	}
}

func TestWrapTextEmpty(t *testing.T) {
	lines, err := WrapText(" \t\n ", FontResource{Size: 10}, 100, &monoTypesetter{})
	if err != nil || len(lines) != 0 {
		t.Fatalf("空白文本应得到 0 行，got %q err=%v", lines, err)
	}
}

func TestTruncateLeavesShortInputAlone(t *testing.T) {
	ts := &monoTypesetter{}
	in := []string{"one", "two"}
	out, err := Truncate(in, FontResource{Size: 10}, 10, ts)
	if err != nil || !reflect.DeepEqual(out, in) {
		t.Fatalf("两行以内不截断，got %q err=%v", out, err)
	}
	if ts.calls != 0 {
		t.Fatalf("两行以内不应测量")
	}
}

func TestTruncateConverges(t *testing.T) {
	font := FontResource{Size: 10}
	ts := &monoTypesetter{}
	in := []string{"first line", "second line here", "third"}
	out, err := Truncate(in, font, 50, ts)
	if err != nil {
		t.Fatalf("Truncate error: %v", err)
	}
	if len(out) != 2 || out[1] != "second ..." {
		t.Fatalf("unexpected truncation: %q", out)
	}
	if ext, _ := ts.Measure(out[1], font); ext.Width > 50 {
		t.Fatalf("截断后仍超宽: %d", ext.Width)
	}
	// 每次删除一个字符，测量次数以字符数为上界。
	if ts.calls > len([]rune(in[1]))+1 {
		t.Fatalf("测量次数过多: %d", ts.calls)
	}
	if in[1] != "second line here" || len(in) != 3 {
		t.Fatalf("Truncate 不应修改输入")
	}
}

func TestTruncateKeepsLineWhenEllipsisNeverFits(t *testing.T) {
	out, err := Truncate([]string{"a", "bcd", "e"}, FontResource{Size: 10}, 10, &monoTypesetter{})
	if err != nil {
		t.Fatalf("Truncate error: %v", err)
	}
	if !reflect.DeepEqual(out, []string{"a", "bcd"}) {
		t.Fatalf("省略号放不下时保留原第二行，got %q", out)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	out, err := Truncate([]string{"一", "二三四五六", "七"}, FontResource{Size: 10}, 25, &monoTypesetter{})
	if err != nil {
		t.Fatalf("Truncate error: %v", err)
	}
	if out[1] != "二三..." {
		t.Fatalf("应按字符删除，got %q", out[1])
	}
}

func TestBlockExtent(t *testing.T) {
	w, h, lh := blockExtent([]TextLine{{Width: 30, Height: 10}, {Width: 50, Height: 12}}, 4)
	if w != 50 || h != 30 || lh != 12 {
		t.Fatalf("got w=%d h=%d lh=%d", w, h, lh)
	}
}
