package layout

import (
	"errors"
	"fmt"
)

// 该文件定义模板声明（Element Model）：四类元素、定位关系以及结构校验。

// 模板级默认值。
const (
	DefaultCardTop     = 175
	DefaultSpacing     = 10
	DefaultLineSpacing = 10
)

// ErrInvalidTemplate 表示模板结构不合法，具体信息见 *TemplateError。
var ErrInvalidTemplate = errors.New("模板结构不合法")

// TemplateError 指明出错的模板、元素与字段。
type TemplateError struct {
	TemplateID string
	ElementID  string
	Field      string
	Reason     string
}

func (e *TemplateError) Error() string {
	if e.ElementID == "" {
		return fmt.Sprintf("模板 %s: %s %s", e.TemplateID, e.Field, e.Reason)
	}
	return fmt.Sprintf("模板 %s 元素 %s: %s %s", e.TemplateID, e.ElementID, e.Field, e.Reason)
}

func (e *TemplateError) Unwrap() error { return ErrInvalidTemplate }

// Kind 区分四类元素。
type Kind int

const (
	KindRect Kind = iota
	KindIcon
	KindBanner
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindIcon:
		return "icon"
	case KindBanner:
		return "banner"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// MarshalText 让 Kind 在调试 JSON 中以名称输出。
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Relations 描述元素相对其他元素的定位方式。
// 只有在排序中位于本元素之前、已经解析完毕的目标才会生效。
type Relations struct {
	RelativeToX string `json:"relativeToX,omitempty"`
	Spacing     *int   `json:"spacing,omitempty"` // 为空时取 DefaultSpacing
	AlignYTo    string `json:"alignYTo,omitempty"`
	Center      bool   `json:"center,omitempty"`
	CenterOnX   *Span  `json:"centerOnX,omitempty"`
}

func (r Relations) spacing() int {
	if r.Spacing == nil {
		return DefaultSpacing
	}
	return *r.Spacing
}

// Rectangle 是纯色（可圆角）矩形。
type Rectangle struct {
	ID     string    `json:"id"`
	Pos    *Point    `json:"pos"`
	Size   *Size     `json:"size"`
	Color  Color     `json:"color"`
	Radius int       `json:"radius,omitempty"`
	Rel    Relations `json:"rel"`
}

// Icon 是缩放到固定尺寸的图片，可选圆形遮罩。
type Icon struct {
	ID      string    `json:"id"`
	Pos     *Point    `json:"pos"`
	Size    *Size     `json:"size"`
	Path    string    `json:"path,omitempty"`
	Rounded bool      `json:"rounded,omitempty"`
	Rel     Relations `json:"rel"`
}

// Banner 是缩放到固定尺寸的大图，可选圆角遮罩。
type Banner struct {
	ID     string    `json:"id"`
	Pos    *Point    `json:"pos"`
	Size   *Size     `json:"size"`
	Path   string    `json:"path,omitempty"`
	Radius int       `json:"radius,omitempty"`
	Rel    Relations `json:"rel"`
}

// Text 是自动折行的文本块。
type Text struct {
	ID          string    `json:"id"`
	Pos         *Point    `json:"pos"`
	FontSize    int       `json:"fontSize"`
	Bold        bool      `json:"bold,omitempty"`
	FontPath    string    `json:"fontPath,omitempty"`
	Color       Color     `json:"color"`
	MaxWidth    int       `json:"maxWidth,omitempty"` // 0 表示画布宽度减去两倍 x
	LineSpacing *int      `json:"lineSpacing,omitempty"`
	Content     string    `json:"content,omitempty"`
	Dynamic     *bool     `json:"dynamic,omitempty"` // 为空时由 BuildOptions.Dynamic 决定
	Rel         Relations `json:"rel"`
}

func (t Text) lineSpacing() int {
	if t.LineSpacing == nil {
		return DefaultLineSpacing
	}
	return *t.LineSpacing
}

// Background 为纯色或图片路径，二者互斥；Path 非空时优先。
type Background struct {
	Color Color  `json:"color"`
	Path  string `json:"path,omitempty"`
}

// Template 是一次渲染所用的完整声明，渲染期间只读。
type Template struct {
	ID         string      `json:"id"`
	Canvas     Size        `json:"canvas"`
	Background Background  `json:"background"`
	Rectangles []Rectangle `json:"rectangles"`
	Icons      []Icon      `json:"icons"`
	Banners    []Banner    `json:"banners"`
	Texts      []Text      `json:"texts"`
	// CardTop 以下（含）的元素属于内容卡片区域，会受级联位移影响。
	CardTop int `json:"cardTop"`
	// CardColor 标记可自动增高的背景卡片矩形。
	CardColor Color `json:"cardColor"`
}

// RectID 返回第 i 个矩形的默认 id。
func RectID(i int) string { return fmt.Sprintf("rectangles[%d]", i) }

// Kind 查找 id 对应的元素类型。
func (t *Template) Kind(id string) (Kind, bool) {
	for i, r := range t.Rectangles {
		if rectID(r, i) == id {
			return KindRect, true
		}
	}
	for _, e := range t.Icons {
		if e.ID == id {
			return KindIcon, true
		}
	}
	for _, e := range t.Banners {
		if e.ID == id {
			return KindBanner, true
		}
	}
	for _, e := range t.Texts {
		if e.ID == id {
			return KindText, true
		}
	}
	return 0, false
}

// IDs 按声明顺序返回全部元素 id（矩形、图标、横幅、文本）。
func (t *Template) IDs() []string {
	ids := make([]string, 0, len(t.Rectangles)+len(t.Icons)+len(t.Banners)+len(t.Texts))
	for i, r := range t.Rectangles {
		ids = append(ids, rectID(r, i))
	}
	for _, e := range t.Icons {
		ids = append(ids, e.ID)
	}
	for _, e := range t.Banners {
		ids = append(ids, e.ID)
	}
	for _, e := range t.Texts {
		ids = append(ids, e.ID)
	}
	return ids
}

// Validate 检查每类元素的必填字段与 id 唯一性。
// 关系目标不存在不算错误，解析时会退回到声明位置。
func (t *Template) Validate() error {
	fail := func(elem, field, reason string) error {
		return &TemplateError{TemplateID: t.ID, ElementID: elem, Field: field, Reason: reason}
	}
	if t.Canvas.W <= 0 || t.Canvas.H <= 0 {
		return fail("", "canvas_size", "缺失或不为正数")
	}
	seen := map[string]bool{}
	check := func(id string, pos *Point, size *Size, needSize bool) error {
		if id == "" {
			return fail(id, "id", "不能为空")
		}
		if seen[id] {
			return fail(id, "id", "重复")
		}
		seen[id] = true
		if pos == nil {
			return fail(id, "pos", "缺失")
		}
		if needSize {
			if size == nil {
				return fail(id, "size", "缺失")
			}
			if size.W < 0 || size.H < 0 {
				return fail(id, "size", "不能为负数")
			}
		}
		return nil
	}
	for i, r := range t.Rectangles {
		if err := check(rectID(r, i), r.Pos, r.Size, true); err != nil {
			return err
		}
		if r.Radius < 0 {
			return fail(rectID(r, i), "radius", "不能为负数")
		}
	}
	for _, e := range t.Icons {
		if err := check(e.ID, e.Pos, e.Size, true); err != nil {
			return err
		}
	}
	for _, e := range t.Banners {
		if err := check(e.ID, e.Pos, e.Size, true); err != nil {
			return err
		}
	}
	for _, e := range t.Texts {
		if err := check(e.ID, e.Pos, nil, false); err != nil {
			return err
		}
		if e.FontSize <= 0 {
			return fail(e.ID, "font_size", "缺失或不为正数")
		}
		if e.MaxWidth < 0 {
			return fail(e.ID, "max_width", "不能为负数")
		}
	}
	return nil
}

func rectID(r Rectangle, i int) string {
	if r.ID != "" {
		return r.ID
	}
	return RectID(i)
}
