package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/cardshot/layout"
)

// 文件结构与原始 templates.json 保持一致：icons、banners、texts 是以 id 为键的映射，
// 其顺序即声明顺序，因此用 yaml.Node 逐项解码而不是 map。

type fileCatalog struct {
	Version   string    `yaml:"version"`
	Defaults  Defaults  `yaml:"defaults"`
	Templates yaml.Node `yaml:"templates"`
}

type fileTemplate struct {
	CanvasSize []int      `yaml:"canvas_size"`
	Background string     `yaml:"background"`
	CardTop    *int       `yaml:"card_top"`
	CardColor  string     `yaml:"card_color"`
	Rectangles []fileRect `yaml:"rectangles"`
	Icons      yaml.Node  `yaml:"icons"`
	Banners    yaml.Node  `yaml:"banners"`
	Texts      yaml.Node  `yaml:"texts"`
}

type fileRelations struct {
	RelativeToX string `yaml:"relative_to_x"`
	Spacing     *int   `yaml:"spacing"`
	AlignYTo    string `yaml:"align_y_to"`
	Center      bool   `yaml:"center"`
	CenterOnX   []int  `yaml:"center_on_x"`
}

type fileRect struct {
	ID     string        `yaml:"id"`
	Pos    []int         `yaml:"pos"`
	Size   []int         `yaml:"size"`
	Color  string        `yaml:"color"`
	Radius int           `yaml:"radius"`
	Rel    fileRelations `yaml:",inline"`
}

type fileIcon struct {
	Pos     []int         `yaml:"pos"`
	Size    []int         `yaml:"size"`
	Path    string        `yaml:"path"`
	Rounded bool          `yaml:"rounded"`
	Rel     fileRelations `yaml:",inline"`
}

type fileBanner struct {
	Pos    []int         `yaml:"pos"`
	Size   []int         `yaml:"size"`
	Path   string        `yaml:"path"`
	Radius int           `yaml:"radius"`
	Rel    fileRelations `yaml:",inline"`
}

type fileText struct {
	Pos         []int         `yaml:"pos"`
	FontSize    int           `yaml:"font_size"`
	Bold        bool          `yaml:"bold"`
	FontPath    string        `yaml:"font_path"`
	Color       string        `yaml:"color"`
	MaxWidth    int           `yaml:"max_width"`
	LineSpacing *int          `yaml:"line_spacing"`
	Content     string        `yaml:"content"`
	Dynamic     *bool         `yaml:"dynamic"`
	Rel         fileRelations `yaml:",inline"`
}

// Parse 解析 YAML 或 JSON 格式的模板目录。
func Parse(data []byte) (*Catalog, error) {
	raw := fileCatalog{Defaults: DefaultDefaults()}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析模板目录失败: %w", err)
	}
	v, err := checkVersion(raw.Version)
	if err != nil {
		return nil, err
	}
	cardColor, err := layout.ParseColor(raw.Defaults.CardColor)
	if err != nil {
		return nil, fmt.Errorf("defaults.card_color: %w", err)
	}
	c := newCatalog(v, raw.Defaults)
	err = eachEntry(&raw.Templates, "templates", func(id string, node *yaml.Node) error {
		var ft fileTemplate
		if err := node.Decode(&ft); err != nil {
			return fmt.Errorf("模板 %s: %w", id, err)
		}
		t, err := ft.convert(id, raw.Defaults.CardTop, cardColor)
		if err != nil {
			return err
		}
		return c.add(t)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// eachEntry 按声明顺序遍历映射节点，缺省或 null 时什么也不做。
func eachEntry(n *yaml.Node, what string, fn func(id string, value *yaml.Node) error) error {
	if n.Kind == 0 || n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%s 必须是以 id 为键的映射（第 %d 行）", what, n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (ft fileTemplate) convert(id string, cardTop int, cardColor layout.Color) (*layout.Template, error) {
	t := &layout.Template{ID: id, CardTop: cardTop, CardColor: cardColor}
	fail := func(elem, field, reason string) error {
		return &layout.TemplateError{TemplateID: id, ElementID: elem, Field: field, Reason: reason}
	}

	if len(ft.CanvasSize) != 0 {
		if len(ft.CanvasSize) != 2 {
			return nil, fail("", "canvas_size", "应为 [w, h]")
		}
		t.Canvas = layout.Size{W: ft.CanvasSize[0], H: ft.CanvasSize[1]}
	}
	if ft.CardTop != nil {
		t.CardTop = *ft.CardTop
	}
	if ft.CardColor != "" {
		c, err := layout.ParseColor(ft.CardColor)
		if err != nil {
			return nil, fail("", "card_color", err.Error())
		}
		t.CardColor = c
	}
	bg, err := parseBackground(ft.Background)
	if err != nil {
		return nil, fail("", "background", err.Error())
	}
	t.Background = bg

	for i, fr := range ft.Rectangles {
		elem := fr.ID
		if elem == "" {
			elem = layout.RectID(i)
		}
		pos, size, rel, ferr := geometry(fr.Pos, fr.Size, fr.Rel)
		if ferr != nil {
			return nil, fail(elem, ferr.field, ferr.reason)
		}
		color, cerr := colorOr(fr.Color, layout.White)
		if cerr != nil {
			return nil, fail(elem, "color", cerr.Error())
		}
		t.Rectangles = append(t.Rectangles, layout.Rectangle{
			ID: fr.ID, Pos: pos, Size: size, Color: color, Radius: fr.Radius, Rel: rel,
		})
	}

	err = eachEntry(&ft.Icons, "icons", func(elem string, node *yaml.Node) error {
		var fi fileIcon
		if err := node.Decode(&fi); err != nil {
			return fmt.Errorf("模板 %s 图标 %s: %w", id, elem, err)
		}
		pos, size, rel, ferr := geometry(fi.Pos, fi.Size, fi.Rel)
		if ferr != nil {
			return fail(elem, ferr.field, ferr.reason)
		}
		t.Icons = append(t.Icons, layout.Icon{ID: elem, Pos: pos, Size: size, Path: fi.Path, Rounded: fi.Rounded, Rel: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachEntry(&ft.Banners, "banners", func(elem string, node *yaml.Node) error {
		var fb fileBanner
		if err := node.Decode(&fb); err != nil {
			return fmt.Errorf("模板 %s 横幅 %s: %w", id, elem, err)
		}
		pos, size, rel, ferr := geometry(fb.Pos, fb.Size, fb.Rel)
		if ferr != nil {
			return fail(elem, ferr.field, ferr.reason)
		}
		t.Banners = append(t.Banners, layout.Banner{ID: elem, Pos: pos, Size: size, Path: fb.Path, Radius: fb.Radius, Rel: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachEntry(&ft.Texts, "texts", func(elem string, node *yaml.Node) error {
		var tx fileText
		if err := node.Decode(&tx); err != nil {
			return fmt.Errorf("模板 %s 文本 %s: %w", id, elem, err)
		}
		pos, _, rel, ferr := geometry(tx.Pos, nil, tx.Rel)
		if ferr != nil {
			return fail(elem, ferr.field, ferr.reason)
		}
		color, cerr := colorOr(tx.Color, layout.Black)
		if cerr != nil {
			return fail(elem, "color", cerr.Error())
		}
		t.Texts = append(t.Texts, layout.Text{
			ID:          elem,
			Pos:         pos,
			FontSize:    tx.FontSize,
			Bold:        tx.Bold,
			FontPath:    tx.FontPath,
			Color:       color,
			MaxWidth:    tx.MaxWidth,
			LineSpacing: tx.LineSpacing,
			Content:     tx.Content,
			Dynamic:     tx.Dynamic,
			Rel:         rel,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

type fieldError struct {
	field, reason string
}

// geometry 把 [x, y]、[w, h] 与关系字段转换为布局类型，缺失的 pos/size 留给 Validate 报告。
func geometry(pos, size []int, fr fileRelations) (*layout.Point, *layout.Size, layout.Relations, *fieldError) {
	var (
		p *layout.Point
		s *layout.Size
	)
	switch len(pos) {
	case 0:
	case 2:
		p = &layout.Point{X: pos[0], Y: pos[1]}
	default:
		return nil, nil, layout.Relations{}, &fieldError{"pos", "应为 [x, y]"}
	}
	switch len(size) {
	case 0:
	case 2:
		s = &layout.Size{W: size[0], H: size[1]}
	default:
		return nil, nil, layout.Relations{}, &fieldError{"size", "应为 [w, h]"}
	}
	rel := layout.Relations{
		RelativeToX: fr.RelativeToX,
		Spacing:     fr.Spacing,
		AlignYTo:    fr.AlignYTo,
		Center:      fr.Center,
	}
	switch len(fr.CenterOnX) {
	case 0:
	case 2:
		rel.CenterOnX = &layout.Span{X: fr.CenterOnX[0], W: fr.CenterOnX[1]}
	default:
		return nil, nil, layout.Relations{}, &fieldError{"center_on_x", "应为 [x, w]"}
	}
	return p, s, rel, nil
}

func colorOr(value string, fallback layout.Color) (layout.Color, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return layout.ParseColor(value)
}

// parseBackground 以 # 开头或颜色名视为纯色，否则视为图片路径；缺省为黑色。
func parseBackground(value string) (layout.Background, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return layout.Background{Color: layout.Black}, nil
	}
	if strings.HasPrefix(v, "#") {
		c, err := layout.ParseColor(v)
		return layout.Background{Color: c}, err
	}
	if c, err := layout.ParseColor(v); err == nil {
		return layout.Background{Color: c}, nil
	}
	return layout.Background{Color: layout.Black, Path: v}, nil
}
