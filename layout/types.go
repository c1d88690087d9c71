package layout

// 该文件定义布局结果，供布局计算、渲染与调试 JSON 共用。

// Result 保存一次解析后的完整布局。Build 返回后不再修改。
type Result struct {
	TemplateID string     `json:"templateId"`
	Canvas     Size       `json:"canvas"`
	Background Background `json:"background"`
	// 按绘制顺序分组：矩形 → 图标 → 横幅 → 文本，组内保持解析顺序。
	Rects   []Element `json:"rects"`
	Icons   []Element `json:"icons"`
	Banners []Element `json:"banners"`
	Texts   []Element `json:"texts"`
	// ContentBottom 为卡片区域内元素到达的最低 y。
	ContentBottom int `json:"contentBottom"`
	// Shift 为解析结束时累计的级联位移。
	Shift int `json:"shift"`
}

// Element 是单个元素的最终几何与绘制数据。
type Element struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"kind"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	Color   Color  `json:"color"`             // rect / text
	Radius  int    `json:"radius,omitempty"`  // rect / banner
	Rounded bool   `json:"rounded,omitempty"` // icon
	Path    string `json:"path,omitempty"`    // icon / banner

	Lines       []TextLine   `json:"lines,omitempty"`
	Font        FontResource `json:"font"`
	LineSpacing int          `json:"lineSpacing,omitempty"`
}

// Bottom 返回元素下边缘的 y。
func (e Element) Bottom() int { return e.Y + e.Height }

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content string `json:"content"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// FontResource 描述一次测量/绘制所需的字体。
// Path 为空时使用内置字体；Size 为像素字号。
type FontResource struct {
	Path string `json:"path,omitempty"`
	Bold bool   `json:"bold,omitempty"`
	Size int    `json:"size"`
}

// All 按绘制顺序返回全部元素。
func (r *Result) All() []Element {
	out := make([]Element, 0, len(r.Rects)+len(r.Icons)+len(r.Banners)+len(r.Texts))
	out = append(out, r.Rects...)
	out = append(out, r.Icons...)
	out = append(out, r.Banners...)
	out = append(out, r.Texts...)
	return out
}

// Find 按 id 查找已布局的元素。
func (r *Result) Find(id string) (Element, bool) {
	for _, e := range r.All() {
		if e.ID == id {
			return e, true
		}
	}
	return Element{}, false
}
