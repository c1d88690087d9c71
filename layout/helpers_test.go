package layout

import (
	"errors"
	"testing"
	"unicode/utf8"
)

// monoTypesetter 是等宽测量桩：每个字符宽 Size/2 像素，行高等于字号。
type monoTypesetter struct {
	calls int
}

func (m *monoTypesetter) Measure(content string, font FontResource) (Extent, error) {
	m.calls++
	return Extent{Width: utf8.RuneCountInString(content) * font.Size / 2, Height: font.Size}, nil
}

type failingTypesetter struct{}

var errMeasure = errors.New("字体不可用")

func (failingTypesetter) Measure(string, FontResource) (Extent, error) {
	return Extent{}, errMeasure
}

func pt(x, y int) *Point  { return &Point{X: x, Y: y} }
func sz(w, h int) *Size   { return &Size{W: w, H: h} }
func ip(n int) *int       { return &n }
func bp(b bool) *bool     { return &b }
func span(x, w int) *Span { return &Span{X: x, W: w} }

// cardTemplate 模拟一张通知卡片：白色卡片、图标、应用名、标题、描述与页脚。
func cardTemplate() *Template {
	return &Template{
		ID:         "test",
		Canvas:     Size{W: 400, H: 800},
		Background: Background{Color: Black},
		CardTop:    DefaultCardTop,
		CardColor:  White,
		Rectangles: []Rectangle{
			{ID: "card", Pos: pt(20, 175), Size: sz(360, 200), Color: White, Radius: 12},
		},
		Icons: []Icon{
			{ID: "icon", Pos: pt(40, 190), Size: sz(40, 40), Rounded: true},
		},
		Texts: []Text{
			{ID: "app_name", Pos: pt(0, 190), FontSize: 20, Color: Black,
				Rel: Relations{RelativeToX: "icon", AlignYTo: "icon"}},
			{ID: "title", Pos: pt(40, 250), FontSize: 20, Bold: true, Color: Black, MaxWidth: 200},
			{ID: "description", Pos: pt(40, 300), FontSize: 10, Color: Black, MaxWidth: 200},
			{ID: "footer", Pos: pt(40, 340), FontSize: 10, Color: Black, Content: "static"},
		},
	}
}

func cardValues(title string) map[string]string {
	return map[string]string{
		"app_name":    "Demo",
		"title":       title,
		"description": "short desc",
		"icon_path":   "assets/icons/bell.png",
	}
}

func buildCard(t testing.TB, tpl *Template, values map[string]string) *Result {
	t.Helper()
	content, _ := BindContent(tpl, values)
	res, err := Build(tpl, content, BuildOptions{Typesetter: &monoTypesetter{}})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

func mustFind(t testing.TB, res *Result, id string) Element {
	t.Helper()
	el, ok := res.Find(id)
	if !ok {
		t.Fatalf("布局中缺少元素 %s", id)
	}
	return el
}
