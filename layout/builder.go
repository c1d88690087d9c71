package layout

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ByLCY/cardshot/binding"
)

// Build 根据模板与运行时内容计算完整布局。
//
// 所有元素按声明的 y 升序（稳定排序）逐个解析，relative_to_x 与 align_y_to
// 只能引用排在前面的元素，引用不到时静默退回声明位置。卡片区域内的动态文本
// 折行后多出的高度会累加到级联位移，推动其后所有卡片元素下移；最后标记为卡片
// 颜色的矩形会增高以包住全部内容。
func Build(tpl *Template, content Content, opts BuildOptions) (*Result, error) {
	if tpl == nil {
		return nil, fmt.Errorf("模板为空")
	}
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少测量后端 Typesetter")
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	p := newPass(tpl, content, opts)
	for _, d := range collectDecls(tpl) {
		if err := p.resolve(d); err != nil {
			return nil, err
		}
	}
	p.result.ContentBottom = p.contentBottom
	p.result.Shift = p.shift
	AutoGrow(p.result, tpl.CardColor)
	return p.result, nil
}

// AutoGrow 把颜色等于 card 的矩形增高到 ContentBottom，位置不变。
// 已经覆盖 ContentBottom 的矩形不受影响，因此重复调用是幂等的。
func AutoGrow(r *Result, card Color) {
	for i := range r.Rects {
		rc := &r.Rects[i]
		if rc.Color != card || r.ContentBottom <= rc.Bottom() {
			continue
		}
		Logger().Debug("卡片自动增高", slog.String("id", rc.ID), slog.Int("from", rc.Height), slog.Int("to", r.ContentBottom-rc.Y))
		rc.Height = r.ContentBottom - rc.Y
	}
}

// decl 是扁平化后的一条元素声明。
type decl struct {
	kind  Kind
	index int
	id    string
	pos   Point
	rel   Relations
}

// collectDecls 按矩形、图标、横幅、文本的顺序展开，再按 y 稳定排序，
// 相同 y 时保持各类内部的声明顺序。
func collectDecls(t *Template) []decl {
	var ds []decl
	for i, r := range t.Rectangles {
		ds = append(ds, decl{kind: KindRect, index: i, id: rectID(r, i), pos: *r.Pos, rel: r.Rel})
	}
	for i, e := range t.Icons {
		ds = append(ds, decl{kind: KindIcon, index: i, id: e.ID, pos: *e.Pos, rel: e.Rel})
	}
	for i, e := range t.Banners {
		ds = append(ds, decl{kind: KindBanner, index: i, id: e.ID, pos: *e.Pos, rel: e.Rel})
	}
	for i, e := range t.Texts {
		ds = append(ds, decl{kind: KindText, index: i, id: e.ID, pos: *e.Pos, rel: e.Rel})
	}
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].pos.Y < ds[j].pos.Y })
	return ds
}

// box 是已解析元素在关系表中的几何信息。
type box struct {
	x, y, w, h int
}

// pass 持有一次解析的全部可变状态，不在调用之间共享。
type pass struct {
	tpl     *Template
	content Content
	opts    BuildOptions
	dynamic map[string]bool

	shift         int
	contentBottom int
	resolved      map[string]box
	result        *Result
}

func newPass(tpl *Template, content Content, opts BuildOptions) *pass {
	ids := opts.Dynamic
	if len(ids) == 0 {
		ids = DefaultDynamic
	}
	dynamic := make(map[string]bool, len(ids))
	for _, id := range ids {
		dynamic[id] = true
	}
	return &pass{
		tpl:      tpl,
		content:  content,
		opts:     opts,
		dynamic:  dynamic,
		resolved: map[string]box{},
		result: &Result{
			TemplateID: tpl.ID,
			Canvas:     tpl.Canvas,
			Background: tpl.Background,
		},
	}
}

func (p *pass) resolve(d decl) error {
	y := d.pos.Y
	if y >= p.tpl.CardTop {
		y += p.shift
	}

	x := d.pos.X
	if target := d.rel.RelativeToX; target != "" {
		if t, ok := p.resolved[target]; ok {
			x = t.x + t.w + d.rel.spacing()
		} else {
			Logger().Debug("relative_to_x 目标未解析，使用声明位置", slog.String("id", d.id), slog.String("target", target))
		}
	}
	if target := d.rel.AlignYTo; target != "" {
		if t, ok := p.resolved[target]; ok {
			y = t.y + floorDiv(t.h-p.intrinsicHeight(d), 2)
		} else {
			Logger().Debug("align_y_to 目标未解析，使用声明位置", slog.String("id", d.id), slog.String("target", target))
		}
	}

	var (
		el      Element
		present bool
	)
	switch d.kind {
	case KindRect:
		el, present = p.rect(d, x, y), true
	case KindIcon:
		el, present = p.icon(d, x, y)
	case KindBanner:
		el, present = p.banner(d, x, y)
	case KindText:
		var err error
		el, present, err = p.text(d, x, y)
		if err != nil {
			return fmt.Errorf("模板 %s 文本 %s: %w", p.tpl.ID, d.id, err)
		}
	}

	if !present {
		// 被省略的元素仍可作为关系目标，但尺寸为零。
		p.resolved[d.id] = box{x: x, y: y}
		return nil
	}
	p.resolved[d.id] = box{x: el.X, y: el.Y, w: el.Width, h: el.Height}
	if el.Y >= p.tpl.CardTop {
		p.contentBottom = max(p.contentBottom, el.Bottom())
	}
	switch d.kind {
	case KindRect:
		p.result.Rects = append(p.result.Rects, el)
	case KindIcon:
		p.result.Icons = append(p.result.Icons, el)
	case KindBanner:
		p.result.Banners = append(p.result.Banners, el)
	case KindText:
		p.result.Texts = append(p.result.Texts, el)
	}
	return nil
}

// intrinsicHeight 是 align_y_to 使用的自身高度估计：文本取字号（折行前无法得知真实高度）。
func (p *pass) intrinsicHeight(d decl) int {
	switch d.kind {
	case KindRect:
		return p.tpl.Rectangles[d.index].Size.H
	case KindIcon:
		return p.tpl.Icons[d.index].Size.H
	case KindBanner:
		return p.tpl.Banners[d.index].Size.H
	default:
		return p.tpl.Texts[d.index].FontSize
	}
}

func (p *pass) rect(d decl, x, y int) Element {
	cfg := p.tpl.Rectangles[d.index]
	return Element{
		ID:     d.id,
		Kind:   KindRect,
		X:      x,
		Y:      y,
		Width:  cfg.Size.W,
		Height: cfg.Size.H,
		Color:  cfg.Color,
		Radius: cfg.Radius,
	}
}

func (p *pass) icon(d decl, x, y int) (Element, bool) {
	cfg := p.tpl.Icons[d.index]
	path := p.content.asset(d.id, cfg.Path)
	if path == "" {
		Logger().Debug("图标没有可用路径，已省略", slog.String("id", d.id))
		return Element{}, false
	}
	return Element{
		ID:      d.id,
		Kind:    KindIcon,
		X:       x,
		Y:       y,
		Width:   cfg.Size.W,
		Height:  cfg.Size.H,
		Path:    path,
		Rounded: cfg.Rounded,
	}, true
}

func (p *pass) banner(d decl, x, y int) (Element, bool) {
	cfg := p.tpl.Banners[d.index]
	path := p.content.asset(d.id, cfg.Path)
	if path == "" {
		Logger().Debug("横幅没有可用路径，已省略", slog.String("id", d.id))
		return Element{}, false
	}
	return Element{
		ID:     d.id,
		Kind:   KindBanner,
		X:      x,
		Y:      y,
		Width:  cfg.Size.W,
		Height: cfg.Size.H,
		Path:   path,
		Radius: cfg.Radius,
	}, true
}

func (p *pass) text(d decl, x, y int) (Element, bool, error) {
	cfg := p.tpl.Texts[d.index]
	content := p.content.text(d.id, "")
	if content == "" {
		content = binding.Interpolate(cfg.Content, p.content.Values)
	}
	if strings.TrimSpace(content) == "" {
		return Element{}, false, nil
	}

	font := p.font(cfg)
	maxWidth := cfg.MaxWidth
	if maxWidth == 0 {
		maxWidth = max(p.tpl.Canvas.W-2*x, 0)
	}
	dynamic := p.dynamic[d.id]
	if cfg.Dynamic != nil {
		dynamic = *cfg.Dynamic
	}

	wrapped, err := WrapText(content, font, maxWidth, p.opts.Typesetter)
	if err != nil {
		return Element{}, false, err
	}
	if dynamic {
		if wrapped, err = Truncate(wrapped, font, maxWidth, p.opts.Typesetter); err != nil {
			return Element{}, false, err
		}
	}
	lines, err := measureLines(wrapped, font, p.opts.Typesetter)
	if err != nil {
		return Element{}, false, err
	}

	spacing := cfg.lineSpacing()
	width, height, lineHeight := blockExtent(lines, spacing)

	// 居中依赖测量后的宽度，只能放在测量之后。
	if cfg.Rel.Center {
		x = floorDiv(p.tpl.Canvas.W-width, 2)
	} else if c := cfg.Rel.CenterOnX; c != nil {
		x = c.X + floorDiv(c.W-width, 2)
	}

	if grow := height - (lineHeight + spacing); dynamic && len(lines) > 1 && grow > 0 {
		p.shift += grow
		Logger().Debug("动态文本增高，级联位移", slog.String("id", d.id), slog.Int("lines", len(lines)), slog.Int("grow", grow), slog.Int("shift", p.shift))
	}

	return Element{
		ID:          d.id,
		Kind:        KindText,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Color:       cfg.Color,
		Lines:       lines,
		Font:        font,
		LineSpacing: spacing,
	}, true, nil
}

func (p *pass) font(cfg Text) FontResource {
	path := cfg.FontPath
	if path == "" {
		if cfg.Bold {
			path = p.opts.Fonts.Bold
		} else {
			path = p.opts.Fonts.Regular
		}
	}
	return FontResource{Path: path, Bold: cfg.Bold, Size: cfg.FontSize}
}
